package measure

import "time"

// DefaultLatency is the latency applied to a link when none is configured.
const DefaultLatency = 5 * time.Millisecond

// Latency is a fixed per-link delay, stored with microsecond resolution.
// Sub-microsecond components of a constructing Duration are truncated.
type Latency struct {
	micros uint64
}

// ZeroLatency is the zero-delay latency.
var ZeroLatency = NewLatency(0)

// NewLatency truncates d to microsecond precision.
func NewLatency(d time.Duration) Latency {
	return Latency{micros: uint64(d.Microseconds())}
}

// Duration returns the latency as a time.Duration.
func (l Latency) Duration() time.Duration {
	return time.Duration(l.micros) * time.Microsecond
}

// DefaultLatencyValue returns the latency applied when a link leaves latency
// unconfigured.
func DefaultLatencyValue() Latency { return NewLatency(DefaultLatency) }

func (l Latency) String() string {
	return formatDuration(l.Duration())
}

// ParseLatency parses a space-separated sum of "<n><unit>" components
// (ns, us, μs, µs, ms, s, m).
func ParseLatency(s string) (Latency, error) {
	d, err := parseDuration(s)
	if err != nil {
		return Latency{}, err
	}
	return NewLatency(d), nil
}
