package measure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseBandwidth(t *testing.T) {
	cases := map[string]uint64{
		"0bps":    0,
		"42bps":   42,
		"42kbps":  42 * kib,
		"42mbps":  42 * mib,
	}
	for s, want := range cases {
		bw, err := ParseBandwidth(s)
		require.NoError(t, err)
		require.Equal(t, NewBandwidth(want, time.Second), bw)
	}
}

func TestPrintBandwidth(t *testing.T) {
	cases := map[uint64]string{
		0:             "0bps",
		42:            "42bps",
		42 * kib:      "42kbps",
		42 * mib:      "42mbps",
		42 * gib:      "42gbps",
		12345:         "12345bps",
		12345 * kib:   "12345kbps",
		12345 * mib:   "12345mbps",
	}
	for data, want := range cases {
		require.Equal(t, want, NewBandwidth(data, time.Second).String())
	}
}

func TestBandwidthCapacity1Bps(t *testing.T) {
	bw := NewBandwidth(1, time.Second)

	require.Equal(t, uint64(0), bw.Capacity(100*time.Microsecond))
	require.Equal(t, uint64(0), bw.Capacity(time.Millisecond))
	require.Equal(t, uint64(1), bw.Capacity(time.Second))
	require.Equal(t, uint64(100), bw.Capacity(100*time.Second))
}

func TestBandwidthCapacity12kbp2s100ms(t *testing.T) {
	bw := NewBandwidth(12_000, 2*time.Second+100*time.Millisecond)

	require.Equal(t, uint64(0), bw.Capacity(100*time.Microsecond))
	require.Equal(t, uint64(5), bw.Capacity(time.Millisecond))
	require.Equal(t, uint64(5714), bw.Capacity(time.Second))
	require.Equal(t, uint64(571428), bw.Capacity(100*time.Second))
}

func TestBandwidthRoundTripDisplay(t *testing.T) {
	for _, s := range []string{"0bps", "42bps", "42kbps", "42mbps", "42gbps"} {
		bw, err := ParseBandwidth(s)
		require.NoError(t, err)
		require.Equal(t, s, bw.String())
	}
}

func TestParseBandwidthInvalid(t *testing.T) {
	for _, s := range []string{"", "bps", "42", "42xbps", "abc"} {
		_, err := ParseBandwidth(s)
		require.Error(t, err, s)
	}
}
