package lasf

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasf/format"
	"github.com/arloliu/lasf/internal/pool"
	"github.com/arloliu/lasf/point"
	"github.com/arloliu/lasf/quant"
)

var allFormats = []format.PointFormat{
	format.Point0, format.Point1, format.Point2, format.Point3, format.Point4, format.Point5,
	format.Point6, format.Point7, format.Point8, format.Point9, format.Point10,
}

func sampleLegacy(i int) point.Legacy {
	return point.Legacy{
		Intensity:        uint16(i * 13),
		ReturnNumber:     uint8(i%3 + 1),
		NumberOfReturns:  3,
		ScanDirection:    i%2 == 0,
		EdgeOfFlightLine: i%5 == 0,
		Classification:   uint8(i % 32),
		KeyPoint:         i%7 == 0,
		ScanAngleRank:    int8(i%181 - 90),
		UserData:         uint8(i),
		PointSourceID:    uint16(1000 + i),
	}
}

func sampleExtended(i int) point.Extended {
	return point.Extended{
		Intensity:           uint16(i * 13),
		ReturnNumber:        uint8(i%3 + 1),
		NumberOfReturns:     3,
		ClassificationFlags: point.ClassFlagOverlap,
		ScannerChannel:      uint8(i % 4),
		ScanDirection:       i%2 == 1,
		Classification:      uint8(i % 256),
		UserData:            uint8(i),
		ScanAngle:           int16(i*100 - 5000),
		PointSourceID:       uint16(2000 + i),
		GPSTime:             float64(i) + 0.25,
	}
}

func sampleColor(i int) point.Color {
	return point.Color{Red: uint16(i), Green: uint16(i * 2), Blue: uint16(i * 3)}
}

func sampleWave(i int) point.WavePacket {
	return point.WavePacket{
		DescriptorIndex:     1,
		ByteOffset:          uint64(i) * 256,
		PacketSize:          256,
		ReturnPointLocation: 12.5,
		DX:                  0.25,
		DY:                  -0.5,
		DZ:                  1,
	}
}

// sampleRecord returns a record of format f with every non-coordinate field populated.
func sampleRecord(f format.PointFormat, i int) point.Record {
	gps := float64(i) * 1.5
	switch f {
	case format.Point0:
		return &point.Point0{Legacy: sampleLegacy(i)}
	case format.Point1:
		return &point.Point1{Legacy: sampleLegacy(i), GPSTime: gps}
	case format.Point2:
		return &point.Point2{Legacy: sampleLegacy(i), Color: sampleColor(i)}
	case format.Point3:
		return &point.Point3{Legacy: sampleLegacy(i), GPSTime: gps, Color: sampleColor(i)}
	case format.Point4:
		return &point.Point4{Legacy: sampleLegacy(i), GPSTime: gps, WavePacket: sampleWave(i)}
	case format.Point5:
		return &point.Point5{Legacy: sampleLegacy(i), GPSTime: gps, Color: sampleColor(i), WavePacket: sampleWave(i)}
	case format.Point6:
		return &point.Point6{Extended: sampleExtended(i)}
	case format.Point7:
		return &point.Point7{Extended: sampleExtended(i), Color: sampleColor(i)}
	case format.Point8:
		return &point.Point8{Extended: sampleExtended(i), Color: sampleColor(i), NIR: uint16(i * 5)}
	case format.Point9:
		return &point.Point9{Extended: sampleExtended(i), WavePacket: sampleWave(i)}
	default:
		return &point.Point10{Extended: sampleExtended(i), Color: sampleColor(i), NIR: uint16(i * 5), WavePacket: sampleWave(i)}
	}
}

// samplePosition spreads points over a UTM-like tile with centimeter resolution.
func samplePosition(i int) quant.Vec3 {
	return quant.Vec3{
		X: 512000 + float64(i%100)*0.37,
		Y: 4100000 + float64(i/100)*0.53,
		Z: 100 + float64(i%17)*0.25,
	}
}

// writeFile writes n sample records of format f and returns the file bytes.
func writeFile(t testing.TB, f format.PointFormat, n int, opts ...WriterOption) []byte {
	t.Helper()

	bb := pool.NewByteBuffer(1024)
	w, err := NewWriter(bb, f, opts...)
	require.NoError(t, err)

	for i := range n {
		require.NoError(t, w.Add(sampleRecord(f, i), samplePosition(i)))
	}
	require.NoError(t, w.Finish())

	return bytes.Clone(bb.Bytes())
}

func openFile(t testing.TB, data []byte, opts ...ReaderOption) *Reader {
	t.Helper()

	r, err := NewReader(bytes.NewReader(data), opts...)
	require.NoError(t, err)

	return r
}

func requireNear(t *testing.T, want, got quant.Vec3, tol float64) {
	t.Helper()

	require.LessOrEqual(t, math.Abs(want.X-got.X), tol, "x: want %v, got %v", want.X, got.X)
	require.LessOrEqual(t, math.Abs(want.Y-got.Y), tol, "y: want %v, got %v", want.Y, got.Y)
	require.LessOrEqual(t, math.Abs(want.Z-got.Z), tol, "z: want %v, got %v", want.Z, got.Z)
}

type closeRecorder struct {
	*pool.ByteBuffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

type readSeekCloser struct {
	*bytes.Reader
	closed bool
}

func (r *readSeekCloser) Close() error {
	r.closed = true
	return nil
}
