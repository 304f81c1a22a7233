package measure

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// RNG is the minimal interface PacketLoss sampling needs from the network's
// pseudo-random source: a single stream of uniformly-distributed u64s.
type RNG interface {
	Uint64() uint64
}

// PacketLoss is either no loss at all, or a validated drop probability.
type PacketLoss struct {
	hasRate bool
	rate    float64
}

// NoPacketLoss is the zero value: all packets are forwarded.
var NoPacketLoss = PacketLoss{}

// NewPacketLossRate validates rate is in [0,1] (rejecting NaN) and returns a
// PacketLoss sampling at that rate.
func NewPacketLossRate(rate float64) (PacketLoss, error) {
	if math.IsNaN(rate) || rate < 0.0 || rate > 1.0 {
		return PacketLoss{}, errors.Errorf("packet loss rate must be in [0.0, 1.0], got %v", rate)
	}
	return PacketLoss{hasRate: true, rate: rate}, nil
}

// IsNone reports whether this is the no-loss variant.
func (p PacketLoss) IsNone() bool { return !p.hasRate }

// Rate returns the configured drop probability, or 0 for the none variant.
func (p PacketLoss) Rate() float64 { return p.rate }

// ShouldDrop draws one sample from rng and reports whether a packet sent
// over a link configured with this loss model should be dropped.
func (p PacketLoss) ShouldDrop(rng RNG) bool {
	if !p.hasRate {
		return false
	}
	bits := rng.Uint64()
	sample := float64(bits) * (1.0 / (float64(math.MaxUint64) + 1.0))
	return sample < p.rate
}

func (p PacketLoss) String() string {
	if !p.hasRate {
		return "0%"
	}
	pct := p.rate * 100.0
	if pct == math.Trunc(pct) {
		return strconv.FormatUint(uint64(pct), 10) + "%"
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// ParsePacketLoss parses strings like "0%", "5%", "12.30%".
func ParsePacketLoss(s string) (PacketLoss, error) {
	s = strings.TrimSpace(s)
	num, ok := strings.CutSuffix(s, "%")
	if !ok {
		return PacketLoss{}, errors.New("expected '%' suffix")
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return PacketLoss{}, errors.New("invalid number before '%'")
	}
	rate := pct / 100.0
	if rate == 0.0 {
		return NoPacketLoss, nil
	}
	return NewPacketLossRate(rate)
}
