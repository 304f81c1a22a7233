// Package measure implements the bandwidth/buffer accounting primitives
// that back every node and link: Gauge, CongestionChannel, Bandwidth,
// Latency, PacketLoss, Upload and Download.
package measure

import "sync/atomic"

// Gauge is a thread-safe capacity counter with reserve/free semantics.
//
// Gauge is not copyable; share it behind a pointer. reserve and free are
// each individually linearizable via compare-and-swap loops, but a
// concurrent SetMaximumCapacity is not atomically coordinated against a
// concurrent Reserve — an accepted trade-off (see spec.md §4.1).
type Gauge struct {
	maximumCapacity atomic.Uint64
	usedCapacity    atomic.Uint64
}

// NewGauge creates a Gauge with an effectively unlimited maximum capacity.
func NewGauge() *Gauge {
	return NewGaugeWithCapacity(^uint64(0))
}

// NewGaugeWithCapacity creates a Gauge with the given maximum capacity.
func NewGaugeWithCapacity(maximumCapacity uint64) *Gauge {
	g := &Gauge{}
	g.maximumCapacity.Store(maximumCapacity)
	return g
}

// MaximumCapacity returns the gauge's maximum capacity.
func (g *Gauge) MaximumCapacity() uint64 { return g.maximumCapacity.Load() }

// SetMaximumCapacity updates the maximum capacity.
func (g *Gauge) SetMaximumCapacity(n uint64) { g.maximumCapacity.Store(n) }

// UsedCapacity returns the currently used capacity.
func (g *Gauge) UsedCapacity() uint64 { return g.usedCapacity.Load() }

// RemainingCapacity returns MaximumCapacity - UsedCapacity, saturating at 0.
func (g *Gauge) RemainingCapacity() uint64 {
	max := g.MaximumCapacity()
	used := g.UsedCapacity()
	if used >= max {
		return 0
	}
	return max - used
}

// Reserve attempts to reserve up to n units of capacity, returning the
// amount actually reserved (k <= min(n, remaining)). Reserve(0) is a no-op.
func (g *Gauge) Reserve(n uint64) uint64 {
	prev := g.usedCapacity.Load()
	for {
		max := g.maximumCapacity.Load()
		var remaining uint64
		if prev < max {
			remaining = max - prev
		}
		actual := n
		if remaining < actual {
			actual = remaining
		}
		next := prev + actual
		if next < prev { // overflow guard, saturate
			next = ^uint64(0)
		}
		if g.usedCapacity.CompareAndSwap(prev, next) {
			return actual
		}
		prev = g.usedCapacity.Load()
	}
}

// Free attempts to free up to n units of used capacity, returning the
// amount actually freed (k <= min(n, used)). Free(0) is a no-op.
func (g *Gauge) Free(n uint64) uint64 {
	prev := g.usedCapacity.Load()
	for {
		actual := n
		if prev < actual {
			actual = prev
		}
		next := prev - actual
		if g.usedCapacity.CompareAndSwap(prev, next) {
			return actual
		}
		prev = g.usedCapacity.Load()
	}
}
