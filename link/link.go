// Package link models bidirectional links between nodes: latency, a pair
// of per-direction congestion channels, and a packet-loss policy. A Link's
// channels are shared across every transit traversing it; each transit
// instead gets its own latency countdown via Duplicate.
package link

import (
	"time"

	"netsim/measure"
	"netsim/node"
)

// Id is the unordered pair of two node ids, canonicalized as (min, max) so
// Id(a, b) == Id(b, a).
type Id struct {
	a, b node.Id
}

// NewId canonicalizes a and b into an unordered pair.
func NewId(a, b node.Id) Id {
	if a.Uint64() > b.Uint64() {
		a, b = b, a
	}
	return Id{a: a, b: b}
}

// Nodes returns the pair's two ids in canonical (min, max) order.
func (i Id) Nodes() (node.Id, node.Id) { return i.a, i.b }

func (i Id) String() string { return i.a.String() + "-" + i.b.String() }

// Link is bidirectional link state: a fixed latency, two directional
// congestion channels (forward and reverse), and a loss policy. Built via
// Network.configure_link; replacing a Link does not affect transits that
// already duplicated its previous state.
type Link struct {
	latency    measure.Latency
	forward    *measure.CongestionChannel
	reverse    *measure.CongestionChannel
	packetLoss measure.PacketLoss
}

// New creates a Link with the given latency, per-direction bandwidth and
// loss policy.
func New(latency measure.Latency, forwardBandwidth, reverseBandwidth measure.Bandwidth, loss measure.PacketLoss) *Link {
	return &Link{
		latency:    latency,
		forward:    measure.NewCongestionChannel(forwardBandwidth),
		reverse:    measure.NewCongestionChannel(reverseBandwidth),
		packetLoss: loss,
	}
}

// Latency returns the link's configured latency.
func (l *Link) Latency() measure.Latency { return l.latency }

// PacketLoss returns the link's configured loss policy.
func (l *Link) PacketLoss() measure.PacketLoss { return l.packetLoss }

// ForwardChannel returns the channel used for a → b traffic, where (a, b)
// is the canonical node order of this link's Id.
func (l *Link) ForwardChannel() *measure.CongestionChannel { return l.forward }

// ReverseChannel returns the channel used for b → a traffic.
func (l *Link) ReverseChannel() *measure.CongestionChannel { return l.reverse }

// ShouldDropPacket samples the link's loss policy using rng.
func (l *Link) ShouldDropPacket(rng measure.RNG) bool {
	return l.packetLoss.ShouldDrop(rng)
}

// ChannelTowards returns the directional channel a transit from `from` to
// `to` should drain through, given this link's canonical node order.
func (l *Link) ChannelTowards(id Id, from node.Id) *measure.CongestionChannel {
	a, _ := id.Nodes()
	if from == a {
		return l.forward
	}
	return l.reverse
}

// Half is a per-transit copy of one directional leg of a Link: a fresh
// latency countdown paired with a shared reference to the directional
// congestion channel. Bytes never cross rem_latency before it reaches
// zero.
type Half struct {
	pending    uint64
	remLatency time.Duration
	channel    *measure.CongestionChannel
	round      measure.Round
}

// Duplicate returns a fresh Half for a new transit travelling from `from`
// to the link's other endpoint, sharing the directional channel but with
// its own latency countdown.
func (l *Link) Duplicate(id Id, from node.Id) *Half {
	return &Half{
		remLatency: l.latency.Duration(),
		channel:    l.ChannelTowards(id, from),
	}
}

// UpdateCapacity advances the half to round, spending dt against the
// latency countdown first and handing any remainder to the congestion
// channel.
func (h *Half) UpdateCapacity(round measure.Round, dt time.Duration) {
	if round.Uint64() == h.round.Uint64() {
		return
	}
	h.round = round

	consumed := h.remLatency
	if dt < consumed {
		consumed = dt
	}
	h.remLatency -= consumed
	h.channel.UpdateCapacity(round, dt-consumed)
}

// Process accepts incoming bytes into the pending buffer; while
// rem_latency has not drained to zero nothing is released downstream.
// Once drained, it reserves from the channel up to pending+incoming and
// returns the bytes that advance.
func (h *Half) Process(incoming uint64) uint64 {
	h.pending += incoming
	if h.remLatency > 0 {
		return 0
	}
	outgoing := h.channel.Reserve(h.pending)
	h.pending -= outgoing
	return outgoing
}

// Pending returns the bytes currently held behind the latency/bandwidth
// barrier for this leg.
func (h *Half) Pending() uint64 { return h.pending }

// RemainingLatency returns the time remaining before this leg's latency
// countdown drains to zero.
func (h *Half) RemainingLatency() time.Duration { return h.remLatency }

// Completed reports whether this leg has no pending bytes and its latency
// countdown has fully drained.
func (h *Half) Completed() bool { return h.pending == 0 && h.remLatency == 0 }
