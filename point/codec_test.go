package point

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/format"
)

func sampleLegacy(i int) Legacy {
	return Legacy{
		X:                int32(1000 + i),
		Y:                int32(-2000 - i),
		Z:                int32(300 * i),
		Intensity:        uint16(100 + i),
		ReturnNumber:     uint8(1 + i%3),
		NumberOfReturns:  3,
		ScanDirection:    i%2 == 0,
		EdgeOfFlightLine: i%5 == 0,
		Classification:   2,
		KeyPoint:         i%2 == 1,
		ScanAngleRank:    int8(-15 + i),
		UserData:         7,
		PointSourceID:    42,
	}
}

func sampleExtended(i int) Extended {
	return Extended{
		X:                   int32(5000 + i),
		Y:                   int32(6000 + i),
		Z:                   int32(-70 - i),
		Intensity:           uint16(900 + i),
		ReturnNumber:        uint8(1 + i%15),
		NumberOfReturns:     15,
		ClassificationFlags: ClassFlagOverlap,
		ScannerChannel:      uint8(i % 4),
		ScanDirection:       true,
		Classification:      200,
		UserData:            1,
		ScanAngle:           int16(-12000 + i),
		PointSourceID:       9,
		GPSTime:             1.5e8 + float64(i)/10,
	}
}

var (
	sampleColor = Color{Red: 65535, Green: 1234, Blue: 0}
	sampleWave  = WavePacket{
		DescriptorIndex:     1,
		ByteOffset:          1 << 40,
		PacketSize:          256,
		ReturnPointLocation: 1234.5,
		DX:                  0.25, DY: -0.5, DZ: 1,
	}
)

// sampleRecord builds a fully populated record of format f.
func sampleRecord(f format.PointFormat, i int) Record {
	l, e := sampleLegacy(i), sampleExtended(i)
	gps := 4.5e5 + float64(i)

	switch f {
	case format.Point0:
		return &Point0{Legacy: l}
	case format.Point1:
		return &Point1{Legacy: l, GPSTime: gps}
	case format.Point2:
		return &Point2{Legacy: l, Color: sampleColor}
	case format.Point3:
		return &Point3{Legacy: l, GPSTime: gps, Color: sampleColor}
	case format.Point4:
		return &Point4{Legacy: l, GPSTime: gps, WavePacket: sampleWave}
	case format.Point5:
		return &Point5{Legacy: l, GPSTime: gps, Color: sampleColor, WavePacket: sampleWave}
	case format.Point6:
		return &Point6{Extended: e}
	case format.Point7:
		return &Point7{Extended: e, Color: sampleColor}
	case format.Point8:
		return &Point8{Extended: e, Color: sampleColor, NIR: 4321}
	case format.Point9:
		return &Point9{Extended: e, WavePacket: sampleWave}
	case format.Point10:
		return &Point10{Extended: e, Color: sampleColor, NIR: 4321, WavePacket: sampleWave}
	default:
		panic("unknown format")
	}
}

func allFormats() []format.PointFormat {
	out := make([]format.PointFormat, 0, format.MaxPointFormat+1)
	for f := format.Point0; f <= format.MaxPointFormat; f++ {
		out = append(out, f)
	}

	return out
}

func TestNew(t *testing.T) {
	for _, f := range allFormats() {
		r, err := New(f)
		require.NoError(t, err)
		require.Equal(t, f, r.Format())
	}

	_, err := New(11)
	require.ErrorIs(t, err, errs.ErrUnsupportedPointFormat)
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestEncodeLengthMatchesTable(t *testing.T) {
	for _, f := range allFormats() {
		t.Run(f.String(), func(t *testing.T) {
			data, err := AppendRecord(nil, sampleRecord(f, 1))
			require.NoError(t, err)
			require.Len(t, data, f.RecordLength())
		})
	}
}

func TestRecordRoundTrip(t *testing.T) {
	for _, f := range allFormats() {
		t.Run(f.String(), func(t *testing.T) {
			want := sampleRecord(f, 3)

			buf := make([]byte, f.RecordLength())
			require.NoError(t, Encode(buf, want))

			got, err := Decode(buf, f)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLegacyCoreBytes(t *testing.T) {
	p := &Point0{Legacy: Legacy{
		X: 100, Y: 200, Z: 300,
		Intensity:       0x0102,
		ReturnNumber:    1,
		NumberOfReturns: 2,
		Classification:  2,
		ScanAngleRank:   -1,
		UserData:        9,
		PointSourceID:   0x0304,
	}}

	buf := make([]byte, 20)
	require.NoError(t, Encode(buf, p))

	want := []byte{
		100, 0, 0, 0,
		200, 0, 0, 0,
		0x2c, 0x01, 0, 0,
		0x02, 0x01,
		0b0001_0001,
		2,
		0xff,
		9,
		0x04, 0x03,
	}
	require.Equal(t, want, buf)
}

func TestFormatDispatchSharedPrefix(t *testing.T) {
	// The same three points under format 1 and 3 differ only after the 20-byte core.
	for i := range 3 {
		core := sampleLegacy(i)
		gps := 1000.25 * float64(i+1)

		p1, err := AppendRecord(nil, &Point1{Legacy: core, GPSTime: gps})
		require.NoError(t, err)
		p3, err := AppendRecord(nil, &Point3{Legacy: core, GPSTime: gps, Color: sampleColor})
		require.NoError(t, err)

		require.Equal(t, p1[:format.LegacyCoreSize], p3[:format.LegacyCoreSize])
		require.Equal(t, p1[format.LegacyCoreSize:], p3[format.LegacyCoreSize:format.LegacyCoreSize+format.GPSTimeSize])
		require.Len(t, p3, len(p1)+format.ColorSize)
	}
}

func TestEncodeRejectsOutOfRangeWithoutWriting(t *testing.T) {
	p := &Point1{Legacy: Legacy{ReturnNumber: 9}}
	buf := bytes.Repeat([]byte{0xAA}, 28)

	err := Encode(buf, p)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	require.Equal(t, bytes.Repeat([]byte{0xAA}, 28), buf)

	e := &Point6{Extended: Extended{ScannerChannel: 4}}
	_, err = AppendRecord(nil, e)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestEncodeShortBuffer(t *testing.T) {
	err := Encode(make([]byte, 10), &Point0{})
	require.ErrorIs(t, err, errs.ErrTruncated)
}

func encodeBatch(t *testing.T, f format.PointFormat, n int) ([]Record, []byte) {
	t.Helper()

	records := make([]Record, n)
	var data []byte
	for i := range records {
		records[i] = sampleRecord(f, i)
		var err error
		data, err = AppendRecord(data, records[i])
		require.NoError(t, err)
	}

	return records, data
}

func TestDecodeAll(t *testing.T) {
	for _, f := range allFormats() {
		t.Run(f.String(), func(t *testing.T) {
			want, data := encodeBatch(t, f, 10)

			got, err := DecodeAll(data, f, f.RecordLength(), len(want))
			require.NoError(t, err)
			require.Empty(t, cmp.Diff(want, got))
		})
	}
}

func TestDecodeAllExtraBytes(t *testing.T) {
	want, packed := encodeBatch(t, format.Point2, 4)

	// Re-lay the records with 3 trailing extra bytes each.
	stride := format.Point2.RecordLength() + 3
	data := make([]byte, 0, stride*len(want))
	for i := range want {
		rec := packed[i*format.Point2.RecordLength() : (i+1)*format.Point2.RecordLength()]
		data = append(data, rec...)
		data = append(data, 0xde, 0xad, 0xbe)
	}

	got, err := DecodeAll(data, format.Point2, stride, len(want))
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(want, got))
}

func TestDecodeAllErrors(t *testing.T) {
	_, data := encodeBatch(t, format.Point0, 3)

	_, err := DecodeAll(data, format.Point0, 20, 4)
	require.ErrorIs(t, err, errs.ErrTruncated)

	_, err = DecodeAll(data, format.Point0, 19, 3)
	require.ErrorIs(t, err, errs.ErrInconsistentHeader)

	_, err = DecodeAll(data, 12, 20, 3)
	require.ErrorIs(t, err, errs.ErrUnsupportedPointFormat)

	got, err := DecodeAll(nil, format.Point0, 20, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecodeParallelPreservesOrder(t *testing.T) {
	want, data := encodeBatch(t, format.Point7, 1000)

	for _, workers := range []int{1, 3, 8, 2000} {
		got, err := DecodeParallel(context.Background(), data, format.Point7, format.Point7.RecordLength(), len(want), workers)
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(want, got))
	}

	_, err := DecodeParallel(context.Background(), data, format.Point7, format.Point7.RecordLength(), len(want), 0)
	require.ErrorIs(t, err, errs.ErrInvalidWorkers)
}

func TestDecodeParallelCanceled(t *testing.T) {
	_, data := encodeBatch(t, format.Point0, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DecodeParallel(ctx, data, format.Point0, 20, 100, 4)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReadRecords(t *testing.T) {
	want, data := encodeBatch(t, format.Point9, 5)

	got, err := ReadRecords(bytes.NewReader(data), format.Point9, format.Point9.RecordLength(), 5, 1000)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(want, got))

	_, err = ReadRecords(bytes.NewReader(data[:len(data)-1]), format.Point9, format.Point9.RecordLength(), 5, 1000)
	var te *errs.TruncatedError
	require.ErrorAs(t, err, &te)
	require.Equal(t, int64(1000), te.Offset)
	require.Equal(t, len(data), te.Expected)
	require.Equal(t, len(data)-1, te.Actual)
}

func TestReadWindowInflatedCount(t *testing.T) {
	_, data := encodeBatch(t, format.Point0, 3)

	const count = 2_000_000_000
	_, err := ReadWindow(bytes.NewReader(data), format.Point0, format.Point0.RecordLength(), count, 227)
	require.ErrorIs(t, err, errs.ErrTruncated)

	var te *errs.TruncatedError
	require.ErrorAs(t, err, &te)
	require.Equal(t, count*format.Point0.RecordLength(), te.Expected)
	require.Equal(t, len(data), te.Actual)
}

func TestDigest(t *testing.T) {
	_, data := encodeBatch(t, format.Point1, 8)

	sum := Digest(data)
	require.Equal(t, sum, Digest(append([]byte(nil), data...)))

	data[0] ^= 1
	require.NotEqual(t, sum, Digest(data))
}
