// Package stats implements the read-only observability snapshot
// supplemented from original_source/netsim-core/src/stats.rs (see
// SPEC_FULL.md): per-node buffer/bandwidth state, per-link bytes in
// transit, and per-node drop counters, plus a compact binary encoding for
// handing a snapshot to an external wrapper or test harness without
// reflection-based serialization.
package stats

import (
	"bytes"
	"io"
	"time"

	"github.com/quic-go/quic-go/quicvarint"

	"netsim/link"
	"netsim/measure"
	"netsim/network"
	"netsim/node"
)

const secondDuration = time.Second

func microDuration(us uint64) time.Duration { return time.Duration(us) * time.Microsecond }

// NodeStats is a point-in-time view of one node's buffer occupancy and
// configured bandwidth.
type NodeStats struct {
	Id                 node.Id
	UploadBufferUsed   uint64
	UploadBufferMax    uint64
	UploadBandwidth    measure.Bandwidth
	DownloadBufferUsed uint64
	DownloadBufferMax  uint64
	DownloadBandwidth  measure.Bandwidth
	PacketsDroppedLoss uint64
	PacketsDroppedFull uint64
}

// LinkStats is a point-in-time view of one link's configuration and
// current load.
type LinkStats struct {
	Id               link.Id
	Latency          measure.Latency
	ForwardBandwidth measure.Bandwidth
	ReverseBandwidth measure.Bandwidth
	PacketLoss       measure.PacketLoss
	BytesInTransit   uint64
}

// NetworkStats bundles every node's and link's stats taken at the same
// instant (the same Snapshot call).
type NetworkStats struct {
	Round uint64
	Nodes []NodeStats
	Links []LinkStats
}

// Snapshot reads n's current state into a NetworkStats value. This never
// mutates n.
func Snapshot(n *network.Network) NetworkStats {
	s := NetworkStats{Round: n.Round().Uint64()}

	for _, nd := range n.Nodes() {
		lossDrops, fullDrops := n.DropCounts(nd.Id())
		s.Nodes = append(s.Nodes, NodeStats{
			Id:                 nd.Id(),
			UploadBufferUsed:   nd.UploadBuffer().UsedCapacity(),
			UploadBufferMax:    nd.UploadBuffer().MaximumCapacity(),
			UploadBandwidth:    nd.UploadChannel().Bandwidth(),
			DownloadBufferUsed: nd.DownloadBuffer().UsedCapacity(),
			DownloadBufferMax:  nd.DownloadBuffer().MaximumCapacity(),
			DownloadBandwidth:  nd.DownloadChannel().Bandwidth(),
			PacketsDroppedLoss: lossDrops,
			PacketsDroppedFull: fullDrops,
		})
	}

	for id, lk := range n.Links() {
		s.Links = append(s.Links, LinkStats{
			Id:               id,
			Latency:          lk.Latency(),
			ForwardBandwidth: lk.ForwardChannel().Bandwidth(),
			ReverseBandwidth: lk.ReverseChannel().Bandwidth(),
			PacketLoss:       lk.PacketLoss(),
			BytesInTransit:   n.BytesInTransit(id),
		})
	}

	return s
}

// MarshalSnapshot encodes s as a compact QUIC-varint-framed byte stream:
// round, node count, each node's fields, link count, each link's fields.
// Bandwidths are encoded as their Capacity(1s) in bytes-per-second; this
// loses sub-second precision the same way the in-memory Bandwidth.String
// form already does.
func (s NetworkStats) MarshalSnapshot() []byte {
	var buf []byte
	buf = quicvarint.Append(buf, s.Round)
	buf = quicvarint.Append(buf, uint64(len(s.Nodes)))
	for _, nd := range s.Nodes {
		buf = quicvarint.Append(buf, nd.Id.Uint64())
		buf = quicvarint.Append(buf, clampVarint(nd.UploadBufferUsed))
		buf = quicvarint.Append(buf, clampVarint(nd.UploadBufferMax))
		buf = quicvarint.Append(buf, bandwidthBps(nd.UploadBandwidth))
		buf = quicvarint.Append(buf, clampVarint(nd.DownloadBufferUsed))
		buf = quicvarint.Append(buf, clampVarint(nd.DownloadBufferMax))
		buf = quicvarint.Append(buf, bandwidthBps(nd.DownloadBandwidth))
		buf = quicvarint.Append(buf, nd.PacketsDroppedLoss)
		buf = quicvarint.Append(buf, nd.PacketsDroppedFull)
	}
	buf = quicvarint.Append(buf, uint64(len(s.Links)))
	for _, lk := range s.Links {
		a, b := lk.Id.Nodes()
		buf = quicvarint.Append(buf, a.Uint64())
		buf = quicvarint.Append(buf, b.Uint64())
		buf = quicvarint.Append(buf, uint64(lk.Latency.Duration().Microseconds()))
		buf = quicvarint.Append(buf, bandwidthBps(lk.ForwardBandwidth))
		buf = quicvarint.Append(buf, bandwidthBps(lk.ReverseBandwidth))
		buf = quicvarint.Append(buf, packetLossBasisPoints(lk.PacketLoss))
		buf = quicvarint.Append(buf, lk.BytesInTransit)
	}
	return buf
}

// packetLossBasisPoints encodes a loss rate in [0,1] as an integer in
// [0,10000] so it fits the varint wire form without a float encoding.
func packetLossBasisPoints(p measure.PacketLoss) uint64 {
	if p.IsNone() {
		return 0
	}
	return uint64(p.Rate() * 10_000)
}

// maxVarintValue is the largest value a QUIC variable-length integer can
// encode (62 usable bits); unlimited buffers/bandwidths saturate to it
// rather than overflowing the varint encoding.
const maxVarintValue = (uint64(1) << 62) - 1

func clampVarint(v uint64) uint64 {
	if v > maxVarintValue {
		return maxVarintValue
	}
	return v
}

func bandwidthBps(bw measure.Bandwidth) uint64 {
	return clampVarint(bw.Capacity(time.Second))
}

// UnmarshalSnapshot decodes the wire form MarshalSnapshot produces back
// into node/link identifiers and their scalar fields. Bandwidths round-trip
// as bytes-per-second measure.Bandwidth values (see MarshalSnapshot).
func UnmarshalSnapshot(data []byte) (NetworkStats, error) {
	r := quicvarint.NewReader(bytes.NewReader(data))
	var s NetworkStats

	round, err := quicvarint.Read(r)
	if err != nil {
		return s, err
	}
	s.Round = round

	nodeCount, err := quicvarint.Read(r)
	if err != nil {
		return s, err
	}
	for i := uint64(0); i < nodeCount; i++ {
		var nd NodeStats
		id, err := readAll(r, 9)
		if err != nil {
			return s, err
		}
		nd.Id = node.NewId(id[0])
		nd.UploadBufferUsed = id[1]
		nd.UploadBufferMax = id[2]
		nd.UploadBandwidth = measure.NewBandwidth(id[3], secondDuration)
		nd.DownloadBufferUsed = id[4]
		nd.DownloadBufferMax = id[5]
		nd.DownloadBandwidth = measure.NewBandwidth(id[6], secondDuration)
		nd.PacketsDroppedLoss = id[7]
		nd.PacketsDroppedFull = id[8]
		s.Nodes = append(s.Nodes, nd)
	}

	linkCount, err := quicvarint.Read(r)
	if err != nil {
		return s, err
	}
	for i := uint64(0); i < linkCount; i++ {
		fields, err := readAll(r, 7)
		if err != nil {
			return s, err
		}
		var lk LinkStats
		lk.Id = link.NewId(node.NewId(fields[0]), node.NewId(fields[1]))
		lk.Latency = measure.NewLatency(microDuration(fields[2]))
		lk.ForwardBandwidth = measure.NewBandwidth(fields[3], secondDuration)
		lk.ReverseBandwidth = measure.NewBandwidth(fields[4], secondDuration)
		if fields[5] == 0 {
			lk.PacketLoss = measure.NoPacketLoss
		} else {
			lk.PacketLoss, err = measure.NewPacketLossRate(float64(fields[5]) / 10_000)
			if err != nil {
				return s, err
			}
		}
		lk.BytesInTransit = fields[6]
		s.Links = append(s.Links, lk)
	}

	return s, nil
}

func readAll(r io.ByteReader, n int) ([]uint64, error) {
	out := make([]uint64, n)
	for i := range out {
		v, err := quicvarint.Read(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
