// Package parse wraps the measure package's bandwidth/latency/packet-loss
// string lexers (spec.md §6) with a short-lived memo cache, the way
// controller/server.go memoizes per-IP request counts in ipCache: a config
// reload that re-parses the same literal strings (shared across many
// node/link declarations) hits the cache instead of re-lexing every time.
package parse

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"netsim/measure"
)

// defaultExpiration matches ipCache's window: entries outlive one config
// reload cycle but are evicted well before they could go stale against a
// edited config file reread from disk.
const (
	defaultExpiration = 30 * time.Second
	cleanupInterval   = 1 * time.Minute
)

var cache = gocache.New(defaultExpiration, cleanupInterval)

type cachedResult struct {
	bandwidth  measure.Bandwidth
	latency    measure.Latency
	packetLoss measure.PacketLoss
	err        error
}

// Bandwidth parses s as a Bandwidth (spec.md §6 grammar), memoizing the
// result.
func Bandwidth(s string) (measure.Bandwidth, error) {
	key := "bw:" + s
	if v, ok := cache.Get(key); ok {
		r := v.(cachedResult)
		return r.bandwidth, r.err
	}
	bw, err := measure.ParseBandwidth(s)
	cache.Set(key, cachedResult{bandwidth: bw, err: err}, gocache.DefaultExpiration)
	return bw, err
}

// Latency parses s as a Latency (spec.md §6 grammar), memoizing the
// result.
func Latency(s string) (measure.Latency, error) {
	key := "lat:" + s
	if v, ok := cache.Get(key); ok {
		r := v.(cachedResult)
		return r.latency, r.err
	}
	l, err := measure.ParseLatency(s)
	cache.Set(key, cachedResult{latency: l, err: err}, gocache.DefaultExpiration)
	return l, err
}

// PacketLoss parses s as a PacketLoss (spec.md §6 grammar: "<P>%"),
// memoizing the result.
func PacketLoss(s string) (measure.PacketLoss, error) {
	key := "loss:" + s
	if v, ok := cache.Get(key); ok {
		r := v.(cachedResult)
		return r.packetLoss, r.err
	}
	p, err := measure.ParsePacketLoss(s)
	cache.Set(key, cachedResult{packetLoss: p, err: err}, gocache.DefaultExpiration)
	return p, err
}
