package section

import (
	"bytes"
	"io"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasf/endian"
	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/format"
	"github.com/arloliu/lasf/quant"
)

func sampleHeader(t *testing.T, f format.PointFormat, minor uint8) Header {
	t.Helper()

	var byReturn [ExtendedReturnCount]uint64
	byReturn[0], byReturn[1] = 7, 3

	b := NewHeaderBuilder(f).
		Version(minor).
		SystemIdentifier("unit test").
		GeneratingSoftware("lasf").
		CreationDate(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)).
		FileSourceID(17).
		GlobalEncoding(GlobalEncodingGPSStandardTime).
		ProjectID(ProjectID{Data1: 0xDEADBEEF, Data2: 1, Data3: 2, Data4: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}}).
		Quantization(quant.Params{
			X: quant.Axis{Scale: 0.01, Offset: 500000},
			Y: quant.Axis{Scale: 0.01, Offset: 4100000},
			Z: quant.Axis{Scale: 0.001, Offset: 0},
		}).
		VLRs(54*2+10, 2).
		Stats(10, byReturn, Bounds{
			Min: quant.Vec3{X: 500001.5, Y: 4100002.25, Z: 12.125},
			Max: quant.Vec3{X: 500101.5, Y: 4100202.25, Z: 99.5},
		})

	if minor >= 4 {
		b.EVLRs(4096, 1)
	}

	h, err := b.Build()
	require.NoError(t, err)

	return h
}

func TestHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		f     format.PointFormat
		minor uint8
		size  int
	}{
		{"1.2 format 1", format.Point1, 2, LegacyHeaderSize},
		{"1.2 format 3", format.Point3, 2, LegacyHeaderSize},
		{"1.3 format 5", format.Point5, 3, Header13Size},
		{"1.4 format 3", format.Point3, 4, Header14Size},
		{"1.4 format 6", format.Point6, 4, Header14Size},
		{"1.4 format 10", format.Point10, 4, Header14Size},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := sampleHeader(t, tt.f, tt.minor)

			data := h.Bytes()
			require.Len(t, data, tt.size)

			parsed, err := ParseHeader(data)
			require.NoError(t, err)
			require.Empty(t, cmp.Diff(h, parsed))
			require.Empty(t, parsed.Validate())

			read, err := ReadHeader(bytes.NewReader(data))
			require.NoError(t, err)
			require.Empty(t, cmp.Diff(h, read))
		})
	}
}

func TestHeaderByteLayout(t *testing.T) {
	h := sampleHeader(t, format.Point6, 4)
	data := h.Bytes()
	engine := endian.GetLittleEndianEngine()

	require.Equal(t, []byte("LASF"), data[0:4])
	require.Equal(t, uint16(17), engine.Uint16(data[4:6]))
	require.Equal(t, uint16(GlobalEncodingGPSStandardTime), engine.Uint16(data[6:8]))
	require.Equal(t, []byte{1, 4}, data[24:26])
	require.Equal(t, "unit test", string(bytes.TrimRight(data[26:58], "\x00")))
	require.Equal(t, uint16(60), engine.Uint16(data[90:92]))
	require.Equal(t, uint16(2024), engine.Uint16(data[92:94]))
	require.Equal(t, uint16(Header14Size), engine.Uint16(data[94:96]))
	require.Equal(t, uint32(Header14Size+118), engine.Uint32(data[96:100]))
	require.Equal(t, uint32(2), engine.Uint32(data[100:104]))
	require.Equal(t, byte(6), data[104])
	require.Equal(t, uint16(30), engine.Uint16(data[105:107]))
	require.Equal(t, uint32(0), engine.Uint32(data[107:111]), "legacy count is zero for extended formats")
	require.Equal(t, 0.01, endian.Float64(engine, data[131:139]))
	require.Equal(t, 500000.0, endian.Float64(engine, data[155:163]))
	require.Equal(t, 500101.5, endian.Float64(engine, data[179:187]), "max x comes first")
	require.Equal(t, 500001.5, endian.Float64(engine, data[187:195]))
	require.Equal(t, uint64(4096), engine.Uint64(data[235:243]))
	require.Equal(t, uint32(1), engine.Uint32(data[243:247]))
	require.Equal(t, uint64(10), engine.Uint64(data[247:255]))
	require.Equal(t, uint64(7), engine.Uint64(data[255:263]))
	require.Equal(t, uint64(3), engine.Uint64(data[263:271]))
}

func TestParseHeaderErrors(t *testing.T) {
	valid := sampleHeader(t, format.Point1, 2).Bytes()

	t.Run("bad signature", func(t *testing.T) {
		data := bytes.Clone(valid)
		copy(data, "LASX")
		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidSignature)
		require.ErrorIs(t, err, errs.ErrFormat)
	})

	t.Run("unsupported version", func(t *testing.T) {
		for _, v := range [][2]byte{{2, 0}, {1, 5}, {0, 9}} {
			data := bytes.Clone(valid)
			data[24], data[25] = v[0], v[1]
			_, err := ParseHeader(data)
			require.ErrorIs(t, err, errs.ErrUnsupportedVersion, "version %d.%d", v[0], v[1])
		}
	})

	t.Run("unsupported point format", func(t *testing.T) {
		for _, id := range []byte{11, 0x83} {
			data := bytes.Clone(valid)
			data[104] = id
			_, err := ParseHeader(data)
			require.ErrorIs(t, err, errs.ErrUnsupportedPointFormat)
		}
	})

	t.Run("short legacy block", func(t *testing.T) {
		_, err := ParseHeader(valid[:100])
		var te *errs.TruncatedError
		require.ErrorAs(t, err, &te)
		require.Equal(t, "header", te.Section)
		require.Equal(t, LegacyHeaderSize, te.Expected)
		require.Equal(t, 100, te.Actual)
	})

	t.Run("short 1.4 block", func(t *testing.T) {
		data := sampleHeader(t, format.Point6, 4).Bytes()
		_, err := ParseHeader(data[:300])
		var te *errs.TruncatedError
		require.ErrorAs(t, err, &te)
		require.Equal(t, Header14Size, te.Expected)
		require.Equal(t, 300, te.Actual)
	})
}

func TestReadHeader(t *testing.T) {
	t.Run("leaves reader at first vlr", func(t *testing.T) {
		data := append(sampleHeader(t, format.Point7, 4).Bytes(), 0xAA)
		r := bytes.NewReader(data)

		_, err := ReadHeader(r)
		require.NoError(t, err)

		next, err := r.ReadByte()
		require.NoError(t, err)
		require.Equal(t, byte(0xAA), next)
	})

	t.Run("skips user defined header bytes", func(t *testing.T) {
		data := sampleHeader(t, format.Point1, 3).Bytes()
		endian.GetLittleEndianEngine().PutUint16(data[94:96], Header13Size+5)
		data = append(data, 1, 2, 3, 4, 5, 0xAA)
		r := bytes.NewReader(data)

		h, err := ReadHeader(r)
		require.NoError(t, err)
		require.Equal(t, uint16(Header13Size+5), h.HeaderSize)

		next, err := r.ReadByte()
		require.NoError(t, err)
		require.Equal(t, byte(0xAA), next)
	})

	t.Run("truncated remainder", func(t *testing.T) {
		data := sampleHeader(t, format.Point6, 4).Bytes()

		_, err := ReadHeader(bytes.NewReader(data[:300]))
		var te *errs.TruncatedError
		require.ErrorAs(t, err, &te)
		require.Equal(t, Header14Size, te.Expected)
		require.Equal(t, 300, te.Actual)
	})

	t.Run("empty stream", func(t *testing.T) {
		_, err := ReadHeader(bytes.NewReader(nil))
		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("read error", func(t *testing.T) {
		_, err := ReadHeader(io.MultiReader(bytes.NewReader([]byte("LAS")), errReader{}))
		require.ErrorIs(t, err, errBoom)
	})
}

func TestHeaderNumberOfPoints(t *testing.T) {
	h := Header{VersionMinor: 2, LegacyPointCount: 12, PointCount: 99}
	require.Equal(t, uint64(12), h.NumberOfPoints(), "1.2 ignores 64-bit fields")

	h.VersionMinor = 4
	require.Equal(t, uint64(99), h.NumberOfPoints())

	h.PointCount = 0
	require.Equal(t, uint64(12), h.NumberOfPoints(), "falls back to legacy count")
}

func TestHeaderReturnCount(t *testing.T) {
	h := sampleHeader(t, format.Point1, 4)
	require.Equal(t, uint64(7), h.ReturnCount(1))
	require.Equal(t, uint64(3), h.ReturnCount(2))
	require.Equal(t, uint64(0), h.ReturnCount(0))
	require.Equal(t, uint64(0), h.ReturnCount(16))

	legacy := sampleHeader(t, format.Point1, 2)
	require.Equal(t, uint64(7), legacy.ReturnCount(1))
	require.Equal(t, uint64(0), legacy.ReturnCount(6))
}

func TestHeaderValidate(t *testing.T) {
	base := sampleHeader(t, format.Point1, 4)

	fields := func(issues []*errs.InconsistentHeaderError) []string {
		out := make([]string, len(issues))
		for i, issue := range issues {
			out[i] = issue.Field
		}

		return out
	}

	t.Run("consistent", func(t *testing.T) {
		require.Empty(t, base.Validate())
	})

	t.Run("short record length", func(t *testing.T) {
		h := base
		h.PointRecordLength = 20
		issues := h.Validate()
		require.Equal(t, []string{"point data record length"}, fields(issues))
		require.Equal(t, int64(20), issues[0].Declared)
		require.Equal(t, int64(28), issues[0].Expected)
		require.ErrorIs(t, issues[0], errs.ErrInconsistentHeader)
	})

	t.Run("extra bytes reported", func(t *testing.T) {
		h := base
		h.PointRecordLength = 32
		issues := h.Validate()
		require.Equal(t, []string{"point data record length"}, fields(issues))
		require.Equal(t, int64(32), issues[0].Declared)
		require.Equal(t, int64(28), issues[0].Expected)
	})

	t.Run("format needs newer version", func(t *testing.T) {
		h := sampleHeader(t, format.Point1, 2)
		h.PointFormat = format.Point6
		h.PointRecordLength = 30
		require.Contains(t, fields(h.Validate()), "version minor")
	})

	t.Run("min above max", func(t *testing.T) {
		h := base
		h.Bounds.Min.Z = 200
		require.Equal(t, []string{"min z"}, fields(h.Validate()))
	})

	t.Run("legacy count mismatch", func(t *testing.T) {
		h := base
		h.LegacyPointCount = 9
		issues := h.Validate()
		require.Equal(t, []string{"legacy point count"}, fields(issues))
		require.Equal(t, int64(10), issues[0].Expected)
	})

	t.Run("extended format with legacy count", func(t *testing.T) {
		h := sampleHeader(t, format.Point6, 4)
		h.LegacyPointCount = 10
		require.Equal(t, []string{"legacy point count"}, fields(h.Validate()))
	})

	t.Run("header size and offset", func(t *testing.T) {
		h := base
		h.HeaderSize = LegacyHeaderSize
		h.OffsetToPointData = 100
		require.Equal(t, []string{"header size", "offset to point data"}, fields(h.Validate()))
	})
}

func TestHeaderAccessors(t *testing.T) {
	h := sampleHeader(t, format.Point3, 2)

	require.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), h.CreationDate())
	require.True(t, h.HasGlobalEncoding(GlobalEncodingGPSStandardTime))
	require.False(t, h.HasGlobalEncoding(GlobalEncodingWKT))

	b := h.Bound()
	require.Equal(t, 500001.5, b.Min.X())
	require.Equal(t, 4100202.25, b.Max.Y())

	require.True(t, Header{}.CreationDate().IsZero())
}

func TestSizeForVersion(t *testing.T) {
	require.Equal(t, 227, SizeForVersion(0))
	require.Equal(t, 227, SizeForVersion(2))
	require.Equal(t, 235, SizeForVersion(3))
	require.Equal(t, 375, SizeForVersion(4))
	require.Equal(t, math.MaxUint16, MaxVLRPayload)
}
