package measure

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGaugeUpperBound(t *testing.T) {
	g := NewGaugeWithCapacity(10)

	require.Equal(t, uint64(0), g.Reserve(0))
	require.Equal(t, uint64(10), g.Reserve(10))
	require.Equal(t, uint64(0), g.Reserve(10))
}

func TestGaugeLowerBound(t *testing.T) {
	g := NewGauge()

	require.Equal(t, uint64(0), g.Free(10))

	g.Reserve(100)
	require.Equal(t, uint64(90), g.Free(90))
	require.Equal(t, uint64(0), g.Free(0))
	require.Equal(t, uint64(10), g.Free(20))
	require.Equal(t, uint64(0), g.Free(20))
	require.Equal(t, uint64(0), g.Free(0))
}

func TestGaugeZeroCapacityReservesNothing(t *testing.T) {
	g := NewGaugeWithCapacity(0)
	require.Equal(t, uint64(0), g.Reserve(1))
	require.Equal(t, uint64(0), g.Reserve(1000))
	require.Equal(t, uint64(0), g.UsedCapacity())
}

func TestGaugeSetMaximumCapacityLimitsFutureReserves(t *testing.T) {
	g := NewGauge()
	g.Reserve(500)
	require.Equal(t, uint64(500), g.UsedCapacity())

	g.SetMaximumCapacity(600)
	reserved := g.Reserve(200)
	require.Equal(t, uint64(100), reserved)
	require.Equal(t, uint64(600), g.UsedCapacity())
}

func TestGaugeFreeMoreThanUsedCapsAtZero(t *testing.T) {
	g := NewGaugeWithCapacity(100)
	g.Reserve(30)
	require.Equal(t, uint64(30), g.Free(1000))
	require.Equal(t, uint64(0), g.UsedCapacity())
}

func TestGaugeReserveAndFreeZeroAreNoops(t *testing.T) {
	g := NewGaugeWithCapacity(100)
	g.Reserve(50)

	require.Equal(t, uint64(0), g.Reserve(0))
	require.Equal(t, uint64(0), g.Free(0))
	require.Equal(t, uint64(50), g.UsedCapacity())
}
