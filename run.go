package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"netsim/config"
	"netsim/internal/netlog"
	"netsim/network"
	"netsim/node"
	"netsim/packet"
	"netsim/parse"
	"netsim/transit"
)

func main() {
	conf := flag.String("config", "", "Path to config file")
	rounds := flag.Int("rounds", 10, "Number of advance steps to run")
	step := flag.Duration("step", 10*time.Millisecond, "Duration of dt per advance step")
	flag.Parse()

	if *conf != "" {
		if err := config.Reload(*conf); err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	defer netlog.Logger.Sync()
	netlog.Logger.Info("netsim starting")

	net := network.New()
	nodesByName, err := buildTopology(net, config.GlobalCfg)
	if err != nil {
		netlog.Logger.Error("failed to build topology from config", zap.Error(err))
		os.Exit(1)
	}

	delivered := 0
	corrupted := 0
	for i := 0; i < *rounds; i++ {
		net.AdvanceWithReport(*step,
			func(pkt *packet.Packet) { delivered++ },
			func(t *transit.Transit) { corrupted++ },
		)
	}

	netlog.Logger.Info("netsim run complete",
		zap.Int("nodes", len(nodesByName)),
		zap.Uint64("round", net.Round().Uint64()),
		zap.Int("delivered", delivered),
		zap.Int("corrupted", corrupted))
}

// buildTopology registers every node and link described by cfg against
// net, returning the node ids keyed by their configured name.
func buildTopology(net *network.Network, cfg *config.NetworkConfig) (map[string]node.Id, error) {
	ids := make(map[string]node.Id, len(cfg.Nodes))

	for _, nc := range cfg.Nodes {
		builder := net.NewNode()
		if nc.UploadBandwidth != "" {
			bw, err := parse.Bandwidth(nc.UploadBandwidth)
			if err != nil {
				return nil, err
			}
			builder.UploadBandwidth(bw)
		}
		if nc.DownloadBandwidth != "" {
			bw, err := parse.Bandwidth(nc.DownloadBandwidth)
			if err != nil {
				return nil, err
			}
			builder.DownloadBandwidth(bw)
		}
		if nc.UploadBuffer > 0 {
			builder.UploadBufferSize(nc.UploadBuffer)
		}
		if nc.DownloadBuffer > 0 {
			builder.DownloadBufferSize(nc.DownloadBuffer)
		}
		ids[nc.Name] = builder.Build()
	}

	for _, lc := range cfg.Links {
		a, ok := ids[lc.A]
		if !ok {
			return nil, errors.Errorf("link references unknown node %q", lc.A)
		}
		b, ok := ids[lc.B]
		if !ok {
			return nil, errors.Errorf("link references unknown node %q", lc.B)
		}

		builder := net.ConfigureLink(a, b)
		if lc.Latency != "" {
			l, err := parse.Latency(lc.Latency)
			if err != nil {
				return nil, err
			}
			builder.Latency(l)
		}
		if lc.ForwardBandwidth != "" {
			bw, err := parse.Bandwidth(lc.ForwardBandwidth)
			if err != nil {
				return nil, err
			}
			builder.ForwardBandwidth(bw)
		}
		if lc.ReverseBandwidth != "" {
			bw, err := parse.Bandwidth(lc.ReverseBandwidth)
			if err != nil {
				return nil, err
			}
			builder.ReverseBandwidth(bw)
		}
		if lc.PacketLoss != "" {
			loss, err := parse.PacketLoss(lc.PacketLoss)
			if err != nil {
				return nil, err
			}
			builder.PacketLoss(loss)
		}
		builder.Apply()
	}

	return ids, nil
}
