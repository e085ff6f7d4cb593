package quant

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasf/errs"
)

func requireRoundTrip(t *testing.T, a Axis, values []float64) {
	t.Helper()

	for _, v := range values {
		raw, err := a.Quantize(v)
		require.NoError(t, err, "value %v", v)
		require.Less(t, math.Abs(a.Dequantize(raw)-v), a.Scale, "value %v", v)
	}
}

func TestEstimateAxis(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		scale  float64
		offset float64
	}{
		{"centimeter data", []float64{1.25, 3.5, 10.75}, 0.01, 1},
		{"integers", []float64{10, 20, 35}, 1, 10},
		{"negative", []float64{-12.5, -3.25}, 0.01, -13},
		{"utm easting in mm", []float64{512345.678, 512999.001}, 0.001, 512345},
		{"single point", []float64{42.5}, 0.1, 42},
		{"zero span integer", []float64{7, 7, 7}, 1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := EstimateAxis(tt.values)
			require.NoError(t, err)
			require.InDelta(t, tt.scale, a.Scale, tt.scale*1e-9)
			require.Equal(t, tt.offset, a.Offset)
			requireRoundTrip(t, a, tt.values)
		})
	}
}

func TestEstimateAxisBudgets(t *testing.T) {
	t.Run("int32 budget", func(t *testing.T) {
		// Span of ~1234 needs 4 integer digits, leaving 5 decimals.
		values := []float64{0.123456789, 1234.987654321}
		a, err := EstimateAxis(values)
		require.NoError(t, err)
		require.InDelta(t, 1e-5, a.Scale, 1e-15)
		requireRoundTrip(t, a, values)
	})

	t.Run("significant digit guard", func(t *testing.T) {
		// 12 integer digits leave only 2 decimals under the 14 digit guard.
		values := []float64{123456789012.3456789, 123456789012.9876543}
		a, err := EstimateAxis(values)
		require.NoError(t, err)
		require.InDelta(t, 0.01, a.Scale, 1e-12)
		requireRoundTrip(t, a, values)
	})

	t.Run("huge span uses coarse scale", func(t *testing.T) {
		values := []float64{0, 5e9}
		a, err := EstimateAxis(values)
		require.NoError(t, err)
		require.InDelta(t, 10, a.Scale, 1e-9)
		requireRoundTrip(t, a, values)
	})

	t.Run("max decimals cap", func(t *testing.T) {
		values := []float64{0.123456, 9.87654}
		a, err := EstimateAxis(values, WithMaxDecimals(2))
		require.NoError(t, err)
		require.InDelta(t, 0.01, a.Scale, 1e-12)
		requireRoundTrip(t, a, values)
	})
}

func TestEstimateAxisEdgeCases(t *testing.T) {
	a, err := EstimateAxis(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultAxis, a)

	_, err = EstimateAxis([]float64{1, math.NaN()})
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = EstimateAxis([]float64{1}, WithMaxDecimals(10))
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestEstimateRandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		base := (rng.Float64() - 0.5) * math.Pow10(rng.Intn(8))
		span := math.Pow10(rng.Intn(7)) * rng.Float64()

		points := make([]Vec3, 200)
		for j := range points {
			points[j] = Vec3{
				X: base + rng.Float64()*span,
				Y: -base + rng.Float64()*span,
				Z: rng.Float64() * 100,
			}
		}

		p, err := Estimate(points)
		require.NoError(t, err)
		require.NoError(t, p.Validate())

		for _, v := range points {
			x, y, z, err := p.Quantize(v)
			require.NoError(t, err)
			got := p.Dequantize(x, y, z)
			require.Less(t, math.Abs(got.X-v.X), p.X.Scale)
			require.Less(t, math.Abs(got.Y-v.Y), p.Y.Scale)
			require.Less(t, math.Abs(got.Z-v.Z), p.Z.Scale)
		}
	}
}

func TestEstimateFixedZ(t *testing.T) {
	points := []Vec3{{1.123, 2.5, 100.123}, {3.456, 4.5, 250.987}}

	p, err := Estimate(points, WithZScale(0.01))
	require.NoError(t, err)
	require.Equal(t, 0.01, p.Z.Scale)
	require.Equal(t, 100.0, p.Z.Offset)
	require.InDelta(t, 0.001, p.X.Scale, 1e-12)
	require.InDelta(t, 0.1, p.Y.Scale, 1e-12)

	_, err = Estimate(points, WithZScale(0))
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = Estimate([]Vec3{{0, 0, 0}, {0, 0, 1e9}}, WithZScale(0.01))
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestEstimateEmpty(t *testing.T) {
	p, err := Estimate(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultParams(), p)

	p, err = Estimate(nil, WithZScale(0.01))
	require.NoError(t, err)
	require.Equal(t, 0.01, p.Z.Scale)
}
