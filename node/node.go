// Package node models simulation endpoints: identifiers and the per-node
// upload/download buffer and bandwidth state shared by every transit that
// touches a node.
package node

import (
	"strconv"

	"netsim/measure"
)

// Id is an opaque node identifier. Id(0) is a reserved sentinel never
// assigned to a real node.
type Id struct{ n uint64 }

// NewId wraps a raw counter value into an Id.
func NewId(n uint64) Id { return Id{n: n} }

// Uint64 returns the id's raw counter value.
func (i Id) Uint64() uint64 { return i.n }

func (i Id) String() string { return strconv.FormatUint(i.n, 10) }

// Node is a registered simulation endpoint: its upload-side buffer and
// congestion channel, and its download-side buffer and congestion channel.
// These are shared (via pointer) across every transit that sends to or
// receives from this node.
type Node struct {
	id Id

	uploadBuffer  *measure.Gauge
	uploadChannel *measure.CongestionChannel

	downloadBuffer  *measure.Gauge
	downloadChannel *measure.CongestionChannel
}

// Id returns the node's identifier.
func (n *Node) Id() Id { return n.id }

// UploadBuffer returns the node's upload-side buffer gauge.
func (n *Node) UploadBuffer() *measure.Gauge { return n.uploadBuffer }

// UploadChannel returns the node's upload-side congestion channel.
func (n *Node) UploadChannel() *measure.CongestionChannel { return n.uploadChannel }

// DownloadBuffer returns the node's download-side buffer gauge.
func (n *Node) DownloadBuffer() *measure.Gauge { return n.downloadBuffer }

// DownloadChannel returns the node's download-side congestion channel.
func (n *Node) DownloadChannel() *measure.CongestionChannel { return n.downloadChannel }

// Builder constructs a Node. Nothing is registered until Build is called by
// the owning Network.
type Builder struct {
	uploadBandwidth   measure.Bandwidth
	downloadBandwidth measure.Bandwidth
	uploadBuffer      uint64
	downloadBuffer    uint64
}

// NewBuilder creates a Builder with unlimited bandwidth and buffer defaults.
func NewBuilder() *Builder {
	return &Builder{
		uploadBandwidth:   measure.DefaultBandwidth(),
		downloadBandwidth: measure.DefaultBandwidth(),
		uploadBuffer:      ^uint64(0),
		downloadBuffer:    ^uint64(0),
	}
}

// UploadBandwidth sets the node's upload bandwidth.
func (b *Builder) UploadBandwidth(bw measure.Bandwidth) *Builder {
	b.uploadBandwidth = bw
	return b
}

// DownloadBandwidth sets the node's download bandwidth.
func (b *Builder) DownloadBandwidth(bw measure.Bandwidth) *Builder {
	b.downloadBandwidth = bw
	return b
}

// UploadBufferSize sets the node's upload buffer's maximum capacity.
func (b *Builder) UploadBufferSize(n uint64) *Builder {
	b.uploadBuffer = n
	return b
}

// DownloadBufferSize sets the node's download buffer's maximum capacity.
func (b *Builder) DownloadBufferSize(n uint64) *Builder {
	b.downloadBuffer = n
	return b
}

// Build materializes the Node with the given id. Only the owning Network
// should call this, after allocating a fresh Id.
func (b *Builder) Build(id Id) *Node {
	return &Node{
		id:              id,
		uploadBuffer:    measure.NewGaugeWithCapacity(b.uploadBuffer),
		uploadChannel:   measure.NewCongestionChannel(b.uploadBandwidth),
		downloadBuffer:  measure.NewGaugeWithCapacity(b.downloadBuffer),
		downloadChannel: measure.NewCongestionChannel(b.downloadBandwidth),
	}
}

// Reconfiguration stages bandwidth/buffer changes for an already-built Node,
// used by Network.configure_node. Fields that were never staged are left
// untouched by Apply; set only the fields to change via the With* methods
// below.
type Reconfiguration struct {
	uploadBandwidth   *measure.Bandwidth
	downloadBandwidth *measure.Bandwidth
	uploadBuffer      *uint64
	downloadBuffer    *uint64
}

// NewReconfiguration creates an empty Reconfiguration (no-op until
// WithX methods are chained).
func NewReconfiguration() *Reconfiguration { return &Reconfiguration{} }

// WithUploadBandwidth stages an upload bandwidth change.
func (r *Reconfiguration) WithUploadBandwidth(bw measure.Bandwidth) *Reconfiguration {
	r.uploadBandwidth = &bw
	return r
}

// WithDownloadBandwidth stages a download bandwidth change.
func (r *Reconfiguration) WithDownloadBandwidth(bw measure.Bandwidth) *Reconfiguration {
	r.downloadBandwidth = &bw
	return r
}

// WithUploadBufferSize stages an upload buffer capacity change.
func (r *Reconfiguration) WithUploadBufferSize(n uint64) *Reconfiguration {
	r.uploadBuffer = &n
	return r
}

// WithDownloadBufferSize stages a download buffer capacity change.
func (r *Reconfiguration) WithDownloadBufferSize(n uint64) *Reconfiguration {
	r.downloadBuffer = &n
	return r
}

// Apply commits the staged changes to n. Called via Network.configure_node;
// unknown node ids are handled by the Network (this never runs for them).
func (r *Reconfiguration) Apply(n *Node) {
	if r.uploadBandwidth != nil {
		n.uploadChannel.SetBandwidth(*r.uploadBandwidth)
	}
	if r.downloadBandwidth != nil {
		n.downloadChannel.SetBandwidth(*r.downloadBandwidth)
	}
	if r.uploadBuffer != nil {
		n.uploadBuffer.SetMaximumCapacity(*r.uploadBuffer)
	}
	if r.downloadBuffer != nil {
		n.downloadBuffer.SetMaximumCapacity(*r.downloadBuffer)
	}
}
