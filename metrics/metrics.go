// Package metrics exposes a Network's stats snapshot as Prometheus gauges
// via a custom prometheus.Collector, the pattern used by the pack's
// runZeroInc-sockstats exporter: Collect() takes a fresh snapshot on every
// scrape rather than maintaining its own counters, so the exported values
// are always consistent with the simulator's current round.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"netsim/network"
	"netsim/stats"
)

const namespace = "netsim"

// Collector adapts a *network.Network into a prometheus.Collector.
// Register it with a prometheus.Registry (or the default one) to expose
// per-node and per-link gauges on every scrape.
type Collector struct {
	net *network.Network

	round              *prometheus.Desc
	uploadBufferUsed   *prometheus.Desc
	uploadBufferMax    *prometheus.Desc
	downloadBufferUsed *prometheus.Desc
	downloadBufferMax  *prometheus.Desc
	packetsDroppedLoss *prometheus.Desc
	packetsDroppedFull *prometheus.Desc
	linkBytesInTransit *prometheus.Desc
}

// NewCollector creates a Collector over n.
func NewCollector(n *network.Network) *Collector {
	return &Collector{
		net: n,
		round: prometheus.NewDesc(
			namespace+"_round", "current round counter", nil, nil),
		uploadBufferUsed: prometheus.NewDesc(
			namespace+"_node_upload_buffer_used_bytes", "bytes currently held in a node's upload buffer",
			[]string{"node"}, nil),
		uploadBufferMax: prometheus.NewDesc(
			namespace+"_node_upload_buffer_max_bytes", "a node's upload buffer capacity",
			[]string{"node"}, nil),
		downloadBufferUsed: prometheus.NewDesc(
			namespace+"_node_download_buffer_used_bytes", "bytes currently held in a node's download buffer",
			[]string{"node"}, nil),
		downloadBufferMax: prometheus.NewDesc(
			namespace+"_node_download_buffer_max_bytes", "a node's download buffer capacity",
			[]string{"node"}, nil),
		packetsDroppedLoss: prometheus.NewDesc(
			namespace+"_node_packets_dropped_loss_total", "packets dropped at send time by link loss sampling",
			[]string{"node"}, nil),
		packetsDroppedFull: prometheus.NewDesc(
			namespace+"_node_packets_dropped_buffer_full_total", "packets rejected by Send for SenderBufferFull",
			[]string{"node"}, nil),
		linkBytesInTransit: prometheus.NewDesc(
			namespace+"_link_bytes_in_transit", "bytes currently in flight on a link",
			[]string{"link"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.round
	ch <- c.uploadBufferUsed
	ch <- c.uploadBufferMax
	ch <- c.downloadBufferUsed
	ch <- c.downloadBufferMax
	ch <- c.packetsDroppedLoss
	ch <- c.packetsDroppedFull
	ch <- c.linkBytesInTransit
}

// Collect implements prometheus.Collector, taking a fresh stats.Snapshot
// of the underlying Network on every call.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := stats.Snapshot(c.net)

	ch <- prometheus.MustNewConstMetric(c.round, prometheus.CounterValue, float64(snap.Round))

	for _, nd := range snap.Nodes {
		label := nd.Id.String()
		ch <- prometheus.MustNewConstMetric(c.uploadBufferUsed, prometheus.GaugeValue, float64(nd.UploadBufferUsed), label)
		ch <- prometheus.MustNewConstMetric(c.uploadBufferMax, prometheus.GaugeValue, float64(nd.UploadBufferMax), label)
		ch <- prometheus.MustNewConstMetric(c.downloadBufferUsed, prometheus.GaugeValue, float64(nd.DownloadBufferUsed), label)
		ch <- prometheus.MustNewConstMetric(c.downloadBufferMax, prometheus.GaugeValue, float64(nd.DownloadBufferMax), label)
		ch <- prometheus.MustNewConstMetric(c.packetsDroppedLoss, prometheus.CounterValue, float64(nd.PacketsDroppedLoss), label)
		ch <- prometheus.MustNewConstMetric(c.packetsDroppedFull, prometheus.CounterValue, float64(nd.PacketsDroppedFull), label)
	}

	for _, lk := range snap.Links {
		ch <- prometheus.MustNewConstMetric(c.linkBytesInTransit, prometheus.GaugeValue, float64(lk.BytesInTransit), lk.Id.String())
	}
}
