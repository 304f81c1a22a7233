package measure

import (
	"math"
	"math/bits"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	kib uint64 = 1024
	mib uint64 = 1024 * 1024
	gib uint64 = 1024 * 1024 * 1024
)

// Bandwidth is a rate expressed as data bytes transferable per duration.
// Only Capacity is exported for computing per-round byte budgets; the zero
// value is meaningless, use NewBandwidth or MaxBandwidth.
type Bandwidth struct {
	data uint64
	per  time.Duration
}

// MaxBandwidth is the effectively unlimited default bandwidth.
var MaxBandwidth = NewBandwidth(math.MaxUint64, time.Second)

// NewBandwidth creates a Bandwidth of data bytes per the given duration.
func NewBandwidth(data uint64, per time.Duration) Bandwidth {
	return Bandwidth{data: data, per: per}
}

// DefaultBandwidth returns MaxBandwidth, the zero-value-safe default.
func DefaultBandwidth() Bandwidth { return MaxBandwidth }

// TimeBase returns the duration basis of the bandwidth.
func (b Bandwidth) TimeBase() time.Duration { return b.per }

// DataBase returns the bytes transferable per TimeBase.
func (b Bandwidth) DataBase() uint64 { return b.data }

// Capacity returns how many bytes can be transferred during elapsed, with
// microsecond precision.
func (b Bandwidth) Capacity(elapsed time.Duration) uint64 {
	elapsedUs := uint64(elapsed.Microseconds())
	timeBaseUs := uint64(b.per.Microseconds())
	if timeBaseUs == 0 {
		return 0
	}
	// data * elapsed can overflow 64 bits (e.g. MaxBandwidth); compute the
	// full 128-bit product and divide, saturating instead of overflowing.
	hi, lo := bits.Mul64(b.data, elapsedUs)
	if hi >= timeBaseUs {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, timeBaseUs)
	return q
}

// MinimumStepDuration returns the smallest dt such that this bandwidth
// yields at least one byte of capacity.
func (b Bandwidth) MinimumStepDuration() time.Duration {
	if b.data == 0 {
		return time.Duration(math.MaxInt64)
	}
	perUs := uint64(b.per.Microseconds())
	us := perUs / b.data
	if perUs%b.data != 0 {
		us++
	}
	return time.Duration(us) * time.Microsecond
}

func (b Bandwidth) String() string {
	capacity := b.Capacity(time.Second)

	v := capacity
	k := capacity / kib
	m := capacity / mib
	g := capacity / gib

	vr := capacity % kib
	kr := capacity % mib
	mr := capacity % gib

	switch {
	case v < kib || vr != 0:
		return strconv.FormatUint(v, 10) + "bps"
	case v < mib || kr != 0:
		return strconv.FormatUint(k, 10) + "kbps"
	case v < gib || mr != 0:
		return strconv.FormatUint(m, 10) + "mbps"
	default:
		return strconv.FormatUint(g, 10) + "gbps"
	}
}

// ParseBandwidth parses strings of the form "<N>(bps|kbps|mbps|gbps)".
func ParseBandwidth(s string) (Bandwidth, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return Bandwidth{}, errors.Errorf("expecting to parse a number in %q", s)
	}
	number, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		return Bandwidth{}, errors.Wrapf(err, "invalid number in bandwidth %q", s)
	}
	unit := strings.TrimSpace(s[i:])
	var bps uint64
	switch unit {
	case "bps":
		bps = number
	case "kbps":
		bps = number * kib
	case "mbps":
		bps = number * mib
	case "gbps":
		bps = number * gib
	case "":
		return Bandwidth{}, errors.Errorf("expecting a unit (bps, kbps, ...), got none in %q", s)
	default:
		return Bandwidth{}, errors.Errorf("expecting a unit (bps, kbps, ...), got %q", unit)
	}
	return NewBandwidth(bps, time.Second), nil
}
