package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAngNormalizeReducesToHalfOpenRange(t *testing.T) {
	require.InDelta(t, 180.0, angNormalize(180.0), 1e-9)
	require.InDelta(t, 180.0, angNormalize(-180.0), 1e-9)
	require.InDelta(t, -90.0, angNormalize(270.0), 1e-9)
}

func TestLatFixRejectsOutOfRangeLatitude(t *testing.T) {
	require.True(t, math.IsNaN(latFix(91.0)))
	require.Equal(t, 45.0, latFix(45.0))
}

func TestSincosdExactAtMultiplesOf90(t *testing.T) {
	sin90, cos90 := sincosd(90.0)
	require.InDelta(t, 1.0, sin90, 1e-12)
	require.InDelta(t, 0.0, cos90, 1e-12)

	sin180, cos180 := sincosd(180.0)
	require.InDelta(t, 0.0, sin180, 1e-12)
	require.InDelta(t, -1.0, cos180, 1e-12)
}

func TestNormProducesUnitVector(t *testing.T) {
	x, y := 3.0, 4.0
	norm(&x, &y)
	require.InDelta(t, 1.0, math.Hypot(x, y), 1e-12)
}
