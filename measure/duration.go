package measure

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// formatDuration renders d the way the reference implementation's internal
// duration type does: a concatenation of non-zero "<n><unit>" components in
// descending unit order (minutes, seconds, milliseconds, microseconds,
// nanoseconds), or "0ms" for the zero duration.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0ms"
	}

	ns := d.Nanoseconds()
	minutes := ns / int64(time.Minute)
	ns -= minutes * int64(time.Minute)
	seconds := ns / int64(time.Second)
	ns -= seconds * int64(time.Second)
	millis := ns / int64(time.Millisecond)
	ns -= millis * int64(time.Millisecond)
	micros := ns / int64(time.Microsecond)
	ns -= micros * int64(time.Microsecond)
	nanos := ns

	var b strings.Builder
	if minutes > 0 {
		b.WriteString(strconv.FormatInt(minutes, 10))
		b.WriteByte('m')
	}
	if seconds > 0 {
		b.WriteString(strconv.FormatInt(seconds, 10))
		b.WriteByte('s')
	}
	if millis > 0 {
		b.WriteString(strconv.FormatInt(millis, 10))
		b.WriteString("ms")
	}
	if micros > 0 {
		b.WriteString(strconv.FormatInt(micros, 10))
		b.WriteString("µs")
	}
	if nanos > 0 {
		b.WriteString(strconv.FormatInt(nanos, 10))
		b.WriteString("ns")
	}
	return b.String()
}

// parseDuration parses a space-separated sum of "<n><unit>" components,
// where unit is one of ns, us, μs, µs, ms, s, m. At least one component is
// required.
func parseDuration(s string) (time.Duration, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, errors.Errorf("failed to parse: %q", s)
	}

	var total time.Duration
	for _, field := range fields {
		for _, part := range splitDurationComponents(field) {
			d, err := parseDurationComponent(part)
			if err != nil {
				return 0, err
			}
			total += d
		}
	}
	return total, nil
}

// splitDurationComponents splits a run of concatenated components like
// "1s542ms" into ["1s", "542ms"].
func splitDurationComponents(s string) []string {
	var parts []string
	start := 0
	i := 0
	n := len(s)
	for i < n {
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		for i < n && !(s[i] >= '0' && s[i] <= '9') {
			i++
		}
		parts = append(parts, s[start:i])
		start = i
	}
	return parts
}

func parseDurationComponent(s string) (time.Duration, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, errors.Errorf("expecting duration to start with a number, cannot parse %q", s)
	}
	number, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid number in duration %q", s)
	}
	unit := s[i:]
	switch unit {
	case "ns":
		return time.Duration(number) * time.Nanosecond, nil
	case "us", "μs", "µs":
		return time.Duration(number) * time.Microsecond, nil
	case "ms":
		return time.Duration(number) * time.Millisecond, nil
	case "s":
		return time.Duration(number) * time.Second, nil
	case "m":
		return time.Duration(number) * 60 * time.Second, nil
	case "":
		return 0, errors.Errorf("expecting a unit, failed to parse %q", s)
	default:
		return 0, errors.Errorf("unknown duration unit %q in %q", unit, s)
	}
}
