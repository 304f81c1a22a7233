// Package config loads a declarative description of a Network topology —
// nodes, links, and logging — from JSON, the way the teacher's setting.go
// loads its listen-rule configuration. It lets a caller assemble a Network
// from a file instead of hand-calling builders, without changing the
// core's builder-based public API (see network.Network.NewNode /
// ConfigureLink).
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// LogConfig describes the structured-logging sink, mirroring the
// teacher's log section of setting.json.
type LogConfig struct {
	Level string `json:"level"`
	Path  string `json:"path"`
}

// NodeConfig describes one node to register at startup, with
// human-readable bandwidth strings in the §6 grammar (parsed via the
// parse package).
type NodeConfig struct {
	Name              string `json:"name"`
	UploadBandwidth   string `json:"upload_bandwidth"`
	DownloadBandwidth string `json:"download_bandwidth"`
	UploadBuffer      uint64 `json:"upload_buffer"`
	DownloadBuffer    uint64 `json:"download_buffer"`
}

// LinkConfig describes one link to configure at startup, referencing two
// NodeConfig entries by name.
type LinkConfig struct {
	A                string `json:"a"`
	B                string `json:"b"`
	Latency          string `json:"latency"`
	ForwardBandwidth string `json:"forward_bandwidth"`
	ReverseBandwidth string `json:"reverse_bandwidth"`
	PacketLoss       string `json:"packet_loss"`
}

// NetworkConfig is the top-level configuration document: the declared
// nodes and links plus logging settings.
type NetworkConfig struct {
	Log   LogConfig     `json:"log"`
	Nodes []*NodeConfig `json:"nodes"`
	Links []*LinkConfig `json:"links"`
}

// GlobalCfg is the configuration in effect process-wide, mirroring the
// teacher's package-level GlobalCfg. Populated at init from NETSIM_CONFIG
// (or the default path) and replaceable via Reload.
var GlobalCfg *NetworkConfig

const defaultConfigPath = "config/setting.json"

func init() {
	path := os.Getenv("NETSIM_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := load(path)
	if err != nil {
		// No config file is a normal startup mode: callers of the core
		// build topologies programmatically via network.Network's
		// builders instead. GlobalCfg stays usable but empty.
		GlobalCfg = &NetworkConfig{}
		return
	}
	GlobalCfg = cfg
}

// Reload reads and validates the configuration at path, replacing
// GlobalCfg only if it parses and verifies successfully.
func Reload(path string) error {
	cfg, err := load(path)
	if err != nil {
		return err
	}
	GlobalCfg = cfg
	return nil
}

func load(path string) (*NetworkConfig, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %q", path)
	}
	var cfg NetworkConfig
	if err := json.Unmarshal(buf, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %q", path)
	}
	if err := cfg.verify(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %q", path)
	}
	return &cfg, nil
}

// verify validates the document well enough to build a topology from it,
// the way Rule.verify checked required fields and compiled regexes.
func (c *NetworkConfig) verify() error {
	seen := make(map[string]bool, len(c.Nodes))
	for i, n := range c.Nodes {
		if n.Name == "" {
			return errors.Errorf("node at pos %d: empty name", i)
		}
		if seen[n.Name] {
			return errors.Errorf("node at pos %d: duplicate name %q", i, n.Name)
		}
		seen[n.Name] = true
	}
	for i, l := range c.Links {
		if l.A == "" || l.B == "" {
			return errors.Errorf("link at pos %d: both endpoints required", i)
		}
		if !seen[l.A] {
			return errors.Errorf("link at pos %d: unknown node %q", i, l.A)
		}
		if !seen[l.B] {
			return errors.Errorf("link at pos %d: unknown node %q", i, l.B)
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}
