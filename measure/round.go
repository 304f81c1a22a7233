package measure

import "strconv"

// Round is a monotonically increasing logical-clock tick identifier.
// Round(0) is a reserved sentinel never assigned to a real advance step;
// wraparound at MaxUint64 is permitted since no useful simulation runs long
// enough to reach it.
type Round struct {
	n uint64
}

// NewRound returns the sentinel Round(0), the value a fresh Network starts
// at before its first advance.
func NewRound() Round { return Round{} }

// Next returns the next round after r.
func (r Round) Next() Round { return Round{n: r.n + 1} }

// Uint64 returns the round's raw counter value.
func (r Round) Uint64() uint64 { return r.n }

func (r Round) String() string { return strconv.FormatUint(r.n, 10) }
