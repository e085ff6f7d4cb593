package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordLength(t *testing.T) {
	expected := map[PointFormat]int{
		Point0: 20, Point1: 28, Point2: 26, Point3: 34, Point4: 57, Point5: 63,
		Point6: 30, Point7: 36, Point8: 38, Point9: 59, Point10: 67,
	}

	for f, want := range expected {
		t.Run(f.String(), func(t *testing.T) {
			require.Equal(t, want, f.RecordLength())
		})
	}

	require.Equal(t, 0, PointFormat(11).RecordLength())
	require.False(t, PointFormat(11).IsValid())
}

func TestFieldSets(t *testing.T) {
	tests := []struct {
		f                               PointFormat
		extended, gps, color, nir, wave bool
	}{
		{Point0, false, false, false, false, false},
		{Point1, false, true, false, false, false},
		{Point2, false, false, true, false, false},
		{Point3, false, true, true, false, false},
		{Point4, false, true, false, false, true},
		{Point5, false, true, true, false, true},
		{Point6, true, true, false, false, false},
		{Point7, true, true, true, false, false},
		{Point8, true, true, true, true, false},
		{Point9, true, true, false, false, true},
		{Point10, true, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			require.Equal(t, tt.extended, tt.f.IsExtended())
			require.Equal(t, tt.gps, tt.f.HasGPSTime())
			require.Equal(t, tt.color, tt.f.HasColor())
			require.Equal(t, tt.nir, tt.f.HasNIR())
			require.Equal(t, tt.wave, tt.f.HasWavePacket())
		})
	}
}

func TestMinVersionMinor(t *testing.T) {
	require.Equal(t, uint8(0), Point1.MinVersionMinor())
	require.Equal(t, uint8(2), Point3.MinVersionMinor())
	require.Equal(t, uint8(3), Point5.MinVersionMinor())
	require.Equal(t, uint8(4), Point6.MinVersionMinor())
	require.Equal(t, uint8(4), Point10.MinVersionMinor())
}

func TestString(t *testing.T) {
	require.Equal(t, "Point7", Point7.String())
	require.Equal(t, "Unknown(42)", PointFormat(42).String())
	require.Equal(t, "Zstd", CompressionZstd.String())
	require.Equal(t, "Unknown", CompressionType(0).String())
}
