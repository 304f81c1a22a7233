// Package network is the top-level simulation core: node and link
// registries, the in-flight transit list, the packet-id generator, the
// round counter, and the RNG that drives loss sampling. It is the single
// entry point callers use to build a topology, submit packets, and
// advance the logical clock.
package network

import (
	"container/list"
	"math/rand"
	"time"

	"netsim/internal/netlog"
	"netsim/link"
	"netsim/measure"
	"netsim/node"
	"netsim/packet"
	"netsim/route"
	"netsim/transit"

	"go.uber.org/zap"
)

// OnDeliver is invoked once per successfully completed transit, with
// ownership of the delivered packet's payload.
type OnDeliver func(pkt *packet.Packet)

// OnCorrupt is invoked once per transit whose byte-conservation invariant
// was violated or whose receiver overflowed.
type OnCorrupt func(t *transit.Transit)

// Network owns every node, link, and in-flight transit in a simulation. Its
// mutating operations (Send, AdvanceWithReport, the configure_* builders)
// require exclusive access by a single caller; the Gauge/CongestionChannel
// state they share with an external wrapper is independently thread-safe
// (spec.md §5).
type Network struct {
	idGen *packet.IdGenerator

	nodes    map[node.Id]*node.Node
	nextNode uint64

	links map[link.Id]*link.Link

	transits *list.List // of *transit.Transit

	round measure.Round
	rng   *rand.Rand

	log *zap.Logger

	// Per-sender drop counters, supplemented from original_source/'s
	// NodeStats.packets_dropped (see SPEC_FULL.md): purely additive
	// bookkeeping that never changes Send's control flow or return value.
	lossDrops       map[node.Id]uint64
	bufferFullDrops map[node.Id]uint64
}

// New creates an empty Network: no nodes, no links, round 0, RNG seeded
// with 0.
func New() *Network {
	return &Network{
		idGen:           packet.NewIdGenerator(),
		nodes:           make(map[node.Id]*node.Node),
		links:           make(map[link.Id]*link.Link),
		transits:        list.New(),
		rng:             rand.New(rand.NewSource(0)),
		log:             netlog.Logger.Named("network"),
		lossDrops:       make(map[node.Id]uint64),
		bufferFullDrops: make(map[node.Id]uint64),
	}
}

// SetSeed reseeds the network's RNG, for reproducible test runs.
func (n *Network) SetSeed(seed uint64) {
	n.rng = rand.New(rand.NewSource(int64(seed)))
}

// PacketIDGenerator returns the generator packet builders should draw ids
// from.
func (n *Network) PacketIDGenerator() *packet.IdGenerator { return n.idGen }

// Round returns the current round counter.
func (n *Network) Round() measure.Round { return n.round }

// PacketsInTransit returns the number of currently in-flight transits.
func (n *Network) PacketsInTransit() int { return n.transits.Len() }

// Node looks up a registered node by id.
func (n *Network) Node(id node.Id) (*node.Node, bool) {
	v, ok := n.nodes[id]
	return v, ok
}

// Nodes returns every registered node.
func (n *Network) Nodes() []*node.Node {
	out := make([]*node.Node, 0, len(n.nodes))
	for _, v := range n.nodes {
		out = append(out, v)
	}
	return out
}

// Link looks up a configured link by id.
func (n *Network) Link(id link.Id) (*link.Link, bool) {
	v, ok := n.links[id]
	return v, ok
}

// Links returns every configured link.
func (n *Network) Links() map[link.Id]*link.Link { return n.links }

// NewNode returns a Builder that, on Build, registers a fresh Node.
func (n *Network) NewNode() *NodeBuilder {
	return &NodeBuilder{network: n, inner: node.NewBuilder()}
}

// NodeBuilder defers node registration until Build is called.
type NodeBuilder struct {
	network *Network
	inner   *node.Builder
}

// UploadBandwidth sets the node's upload bandwidth.
func (b *NodeBuilder) UploadBandwidth(bw measure.Bandwidth) *NodeBuilder {
	b.inner.UploadBandwidth(bw)
	return b
}

// DownloadBandwidth sets the node's download bandwidth.
func (b *NodeBuilder) DownloadBandwidth(bw measure.Bandwidth) *NodeBuilder {
	b.inner.DownloadBandwidth(bw)
	return b
}

// UploadBufferSize sets the node's upload buffer capacity.
func (b *NodeBuilder) UploadBufferSize(n uint64) *NodeBuilder {
	b.inner.UploadBufferSize(n)
	return b
}

// DownloadBufferSize sets the node's download buffer capacity.
func (b *NodeBuilder) DownloadBufferSize(n uint64) *NodeBuilder {
	b.inner.DownloadBufferSize(n)
	return b
}

// Build registers the node with its owning Network and returns its id.
func (b *NodeBuilder) Build() node.Id {
	b.network.nextNode++
	id := node.NewId(b.network.nextNode)
	b.network.nodes[id] = b.inner.Build(id)
	b.network.log.Debug("node registered", zap.Uint64("node", id.Uint64()))
	return id
}

// ConfigureLink returns a Builder that, on Apply, installs a fresh Link
// between a and b, replacing any existing link. In-flight transits retain
// the link-half state they duplicated at send time.
func (n *Network) ConfigureLink(a, b node.Id) *LinkBuilder {
	return &LinkBuilder{
		network:          n,
		a:                a,
		b:                b,
		latency:          measure.DefaultLatencyValue(),
		forwardBandwidth: measure.DefaultBandwidth(),
		reverseBandwidth: measure.DefaultBandwidth(),
		loss:             measure.NoPacketLoss,
	}
}

// LinkBuilder defers installing a Link until Apply is called.
type LinkBuilder struct {
	network                            *Network
	a, b                               node.Id
	latency                            measure.Latency
	forwardBandwidth, reverseBandwidth measure.Bandwidth
	loss                               measure.PacketLoss
}

// Latency sets the link's fixed delay.
func (b *LinkBuilder) Latency(l measure.Latency) *LinkBuilder {
	b.latency = l
	return b
}

// Bandwidth sets both directions of the link to the same bandwidth.
func (b *LinkBuilder) Bandwidth(bw measure.Bandwidth) *LinkBuilder {
	b.forwardBandwidth = bw
	b.reverseBandwidth = bw
	return b
}

// ForwardBandwidth sets the canonical-order (min id → max id) direction's
// bandwidth.
func (b *LinkBuilder) ForwardBandwidth(bw measure.Bandwidth) *LinkBuilder {
	b.forwardBandwidth = bw
	return b
}

// ReverseBandwidth sets the non-canonical direction's bandwidth.
func (b *LinkBuilder) ReverseBandwidth(bw measure.Bandwidth) *LinkBuilder {
	b.reverseBandwidth = bw
	return b
}

// PacketLoss sets the link's loss policy.
func (b *LinkBuilder) PacketLoss(p measure.PacketLoss) *LinkBuilder {
	b.loss = p
	return b
}

// Apply installs the configured link, replacing any existing link between
// the same two nodes.
func (b *LinkBuilder) Apply() {
	id := link.NewId(b.a, b.b)
	b.network.links[id] = link.New(b.latency, b.forwardBandwidth, b.reverseBandwidth, b.loss)
	b.network.log.Debug("link configured", zap.String("link", id.String()))
}

// ConfigureNode returns a Builder that, on Apply, mutates an existing
// node's bandwidth/buffer settings. Unknown ids are silently ignored
// (returned for API symmetry, per spec.md §4.8).
func (n *Network) ConfigureNode(id node.Id) *NodeReconfigBuilder {
	return &NodeReconfigBuilder{network: n, id: id, inner: node.NewReconfiguration()}
}

// NodeReconfigBuilder defers node reconfiguration until Apply is called.
type NodeReconfigBuilder struct {
	network *Network
	id      node.Id
	inner   *node.Reconfiguration
}

// UploadBandwidth stages an upload bandwidth change.
func (b *NodeReconfigBuilder) UploadBandwidth(bw measure.Bandwidth) *NodeReconfigBuilder {
	b.inner.WithUploadBandwidth(bw)
	return b
}

// DownloadBandwidth stages a download bandwidth change.
func (b *NodeReconfigBuilder) DownloadBandwidth(bw measure.Bandwidth) *NodeReconfigBuilder {
	b.inner.WithDownloadBandwidth(bw)
	return b
}

// UploadBufferSize stages an upload buffer capacity change.
func (b *NodeReconfigBuilder) UploadBufferSize(n uint64) *NodeReconfigBuilder {
	b.inner.WithUploadBufferSize(n)
	return b
}

// DownloadBufferSize stages a download buffer capacity change.
func (b *NodeReconfigBuilder) DownloadBufferSize(n uint64) *NodeReconfigBuilder {
	b.inner.WithDownloadBufferSize(n)
	return b
}

// Apply commits the staged changes, silently doing nothing if the node id
// is unknown.
func (b *NodeReconfigBuilder) Apply() {
	n, ok := b.network.nodes[b.id]
	if !ok {
		return
	}
	b.inner.Apply(n)
}

// Route resolves from and to against the registered nodes and their link.
func (n *Network) Route(from, to node.Id) (*route.Route, error) {
	fromNode, ok := n.nodes[from]
	if !ok {
		return nil, &route.Error{Kind: route.SenderNotFound, From: from, To: to}
	}
	toNode, ok := n.nodes[to]
	if !ok {
		return nil, &route.Error{Kind: route.RecipientNotFound, From: from, To: to}
	}
	lk := n.links[link.NewId(from, to)]
	return route.New(fromNode, toNode, lk)
}

// Send evaluates the link's loss policy (a dropped packet never charges
// the sender's buffer and returns Ok(nil) — silent UDP-style loss), then
// routes and admits pkt as a new in-flight Transit.
func (n *Network) Send(pkt *packet.Packet) *route.SendError {
	id := link.NewId(pkt.From(), pkt.To())
	if lk, ok := n.links[id]; ok && lk.ShouldDropPacket(n.rng) {
		n.log.Debug("packet dropped by link loss policy",
			zap.String("packet", pkt.Id().String()),
			zap.String("link", id.String()))
		n.lossDrops[pkt.From()]++
		pkt.Drop()
		return nil
	}

	r, err := n.Route(pkt.From(), pkt.To())
	if err != nil {
		n.log.Warn("send failed to route", zap.Error(err))
		pkt.Drop()
		routeErr, _ := err.(*route.Error)
		return &route.SendError{Route: routeErr}
	}

	t, sendErr := r.Transit(pkt)
	if sendErr != nil {
		n.log.Warn("send rejected: sender buffer full",
			zap.Uint64("sender", sendErr.Sender.Uint64()),
			zap.Uint64("max", sendErr.BufferMaxSize),
			zap.Uint64("used", sendErr.BufferCurrentSize),
			zap.Uint64("packet", sendErr.PacketSize))
		n.bufferFullDrops[pkt.From()]++
		return sendErr
	}

	n.transits.PushBack(t)
	return nil
}

// AdvanceWith advances the network by dt, invoking onDeliver for every
// transit that completes this round. Corrupted transits are silently
// discarded; use AdvanceWithReport to observe them.
func (n *Network) AdvanceWith(dt time.Duration, onDeliver OnDeliver) {
	n.AdvanceWithReport(dt, onDeliver, nil)
}

// AdvanceWithReport increments the round counter, drains one round's worth
// of bytes through every in-flight transit, and removes + reports every
// transit that completed or became corrupted this round. Transits are
// visited in insertion (send) order.
func (n *Network) AdvanceWithReport(dt time.Duration, onDeliver OnDeliver, onCorrupt OnCorrupt) {
	n.round = n.round.Next()

	var next *list.Element
	for e := n.transits.Front(); e != nil; e = next {
		next = e.Next()
		t := e.Value.(*transit.Transit)

		t.Advance(n.round, dt)

		if !t.Completed() && !t.Corrupted() {
			continue
		}

		n.transits.Remove(e)
		pkt, ok := t.Complete()
		if ok {
			n.log.Debug("packet delivered", zap.String("packet", pkt.Id().String()))
			if onDeliver != nil {
				onDeliver(pkt)
			}
			continue
		}
		n.log.Warn("transit corrupted", zap.String("packet", pkt.Id().String()))
		if onCorrupt != nil {
			onCorrupt(t)
		}
	}
}

// MinimumStepDuration returns the largest minimum-step-duration across
// every node and link channel currently configured: the smallest dt below
// which some channel would budget zero bytes for the round.
func (n *Network) MinimumStepDuration() time.Duration {
	var max time.Duration
	consider := func(bw measure.Bandwidth) {
		if d := bw.MinimumStepDuration(); d > max {
			max = d
		}
	}
	for _, nd := range n.nodes {
		consider(nd.UploadChannel().Bandwidth())
		consider(nd.DownloadChannel().Bandwidth())
	}
	for _, lk := range n.links {
		consider(lk.ForwardChannel().Bandwidth())
		consider(lk.ReverseChannel().Bandwidth())
	}
	return max
}

// Transits returns every currently in-flight transit, in insertion order.
func (n *Network) Transits() []*transit.Transit {
	out := make([]*transit.Transit, 0, n.transits.Len())
	for e := n.transits.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*transit.Transit))
	}
	return out
}

// DropCounts returns, for the given sender node, how many packets it has
// sent were dropped by link loss sampling versus rejected for
// SenderBufferFull. Purely additive bookkeeping (SPEC_FULL.md); does not
// affect Send's control flow.
func (n *Network) DropCounts(id node.Id) (lossDrops, bufferFullDrops uint64) {
	return n.lossDrops[id], n.bufferFullDrops[id]
}

// BytesInTransit sums the bytes currently held anywhere in the pipeline of
// every transit traversing the given link.
func (n *Network) BytesInTransit(id link.Id) uint64 {
	var total uint64
	for e := n.transits.Front(); e != nil; e = e.Next() {
		t := e.Value.(*transit.Transit)
		a, b := id.Nodes()
		if (t.Packet().From() == a && t.Packet().To() == b) || (t.Packet().From() == b && t.Packet().To() == a) {
			total += t.Packet().BytesSize()
		}
	}
	return total
}
