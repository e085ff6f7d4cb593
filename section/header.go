package section

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/arloliu/lasf/endian"
	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/format"
	"github.com/arloliu/lasf/quant"
)

var engine = endian.GetLittleEndianEngine()

// ProjectID is the optional project GUID stored in the header.
type ProjectID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// Bounds is the bounding box of the dequantized point coordinates.
type Bounds struct {
	Min quant.Vec3
	Max quant.Vec3
}

// Bound returns the XY extent.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min.X, b.Min.Y},
		Max: orb.Point{b.Max.X, b.Max.Y},
	}
}

// Header is the public header block at the start of a LAS file.
//
// Header is a value type. Use HeaderBuilder to create one for writing, or ParseHeader
// and ReadHeader to decode one.
type Header struct {
	FileSourceID   uint16    // byte offset 4-5
	GlobalEncoding uint16    // byte offset 6-7
	ProjectID      ProjectID // byte offset 8-23

	VersionMajor uint8 // byte offset 24
	VersionMinor uint8 // byte offset 25

	// SystemIdentifier and GeneratingSoftware are NUL padded on disk.
	SystemIdentifier   string // byte offset 26-57
	GeneratingSoftware string // byte offset 58-89

	CreationDayOfYear uint16 // byte offset 90-91
	CreationYear      uint16 // byte offset 92-93

	// HeaderSize is the declared size of this block. It may exceed SizeForVersion when the
	// producer appended user-defined bytes.
	HeaderSize uint16 // byte offset 94-95
	// OffsetToPointData equals HeaderSize plus the framed size of every VLR.
	OffsetToPointData uint32 // byte offset 96-99
	NumberOfVLRs      uint32 // byte offset 100-103

	PointFormat       format.PointFormat // byte offset 104
	PointRecordLength uint16             // byte offset 105-106

	// Legacy counters. Zero for formats 6-10.
	LegacyPointCount     uint32                    // byte offset 107-110
	LegacyPointsByReturn [LegacyReturnCount]uint32 // byte offset 111-130

	Quantization quant.Params // byte offset 131-178
	Bounds       Bounds       // byte offset 179-226

	WaveformDataOffset uint64 // byte offset 227-234, LAS 1.3+

	FirstEVLROffset uint64                      // byte offset 235-242, LAS 1.4
	NumberOfEVLRs   uint32                      // byte offset 243-246, LAS 1.4
	PointCount      uint64                      // byte offset 247-254, LAS 1.4
	PointsByReturn  [ExtendedReturnCount]uint64 // byte offset 255-374, LAS 1.4
}

// Size returns the header size mandated by the version.
func (h Header) Size() int {
	return SizeForVersion(h.VersionMinor)
}

// NumberOfPoints returns the 64-bit point count for LAS 1.4 headers that set it, and the
// legacy 32-bit count otherwise.
func (h Header) NumberOfPoints() uint64 {
	if h.VersionMinor >= 4 && h.PointCount != 0 {
		return h.PointCount
	}

	return uint64(h.LegacyPointCount)
}

// ReturnCount returns the number of points with the given 1-based return number.
func (h Header) ReturnCount(returnNumber int) uint64 {
	if returnNumber < 1 || returnNumber > ExtendedReturnCount {
		return 0
	}

	if h.VersionMinor >= 4 && h.PointCount != 0 {
		return h.PointsByReturn[returnNumber-1]
	}

	if returnNumber > LegacyReturnCount {
		return 0
	}

	return uint64(h.LegacyPointsByReturn[returnNumber-1])
}

// HasGlobalEncoding reports whether every bit of mask is set in GlobalEncoding.
func (h Header) HasGlobalEncoding(mask uint16) bool {
	return h.GlobalEncoding&mask == mask
}

// CreationDate returns the creation day as a UTC date, or the zero time when unset.
func (h Header) CreationDate() time.Time {
	if h.CreationYear == 0 {
		return time.Time{}
	}

	return time.Date(int(h.CreationYear), time.January, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, int(h.CreationDayOfYear)-1)
}

// Bound returns the XY extent of the points.
func (h Header) Bound() orb.Bound {
	return h.Bounds.Bound()
}

// Bytes serializes the header into exactly Size() bytes.
func (h Header) Bytes() []byte {
	b := make([]byte, h.Size())

	copy(b, Signature)
	engine.PutUint16(b[offFileSourceID:], h.FileSourceID)
	engine.PutUint16(b[offGlobalEncoding:], h.GlobalEncoding)
	engine.PutUint32(b[offProjectID:], h.ProjectID.Data1)
	engine.PutUint16(b[offProjectID+4:], h.ProjectID.Data2)
	engine.PutUint16(b[offProjectID+6:], h.ProjectID.Data3)
	copy(b[offProjectID+8:offVersion], h.ProjectID.Data4[:])

	b[offVersion] = h.VersionMajor
	b[offVersion+1] = h.VersionMinor
	putString(b[offSystemIdentifier:offGeneratingSoftware], h.SystemIdentifier)
	putString(b[offGeneratingSoftware:offCreationDay], h.GeneratingSoftware)
	engine.PutUint16(b[offCreationDay:], h.CreationDayOfYear)
	engine.PutUint16(b[offCreationYear:], h.CreationYear)

	engine.PutUint16(b[offHeaderSize:], h.HeaderSize)
	engine.PutUint32(b[offPointDataOffset:], h.OffsetToPointData)
	engine.PutUint32(b[offNumberOfVLRs:], h.NumberOfVLRs)
	b[offPointFormat] = uint8(h.PointFormat)
	engine.PutUint16(b[offPointRecordLength:], h.PointRecordLength)

	engine.PutUint32(b[offLegacyPointCount:], h.LegacyPointCount)
	for i, n := range h.LegacyPointsByReturn {
		engine.PutUint32(b[offLegacyByReturn+4*i:], n)
	}

	q := h.Quantization
	putFloats(b[offScale:], q.X.Scale, q.Y.Scale, q.Z.Scale)
	putFloats(b[offOffset:], q.X.Offset, q.Y.Offset, q.Z.Offset)
	lo, hi := h.Bounds.Min, h.Bounds.Max
	putFloats(b[offBounds:], hi.X, lo.X, hi.Y, lo.Y, hi.Z, lo.Z)

	if h.VersionMinor >= 3 {
		engine.PutUint64(b[offWaveformData:], h.WaveformDataOffset)
	}

	if h.VersionMinor >= 4 {
		engine.PutUint64(b[offFirstEVLR:], h.FirstEVLROffset)
		engine.PutUint32(b[offNumberOfEVLRs:], h.NumberOfEVLRs)
		engine.PutUint64(b[offPointCount:], h.PointCount)
		for i, n := range h.PointsByReturn {
			engine.PutUint64(b[offPointsByReturn+8*i:], n)
		}
	}

	return b
}

// WriteTo writes the serialized header to w.
func (h Header) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.Bytes())

	return int64(n), err
}

// Validate cross-checks header fields and returns every inconsistency found.
// A nil result means the header is self-consistent.
func (h Header) Validate() []*errs.InconsistentHeaderError {
	var issues []*errs.InconsistentHeaderError

	if want := h.Size(); int(h.HeaderSize) < want {
		issues = append(issues, errs.Inconsistent("header size", int64(h.HeaderSize), int64(want)))
	}

	if h.OffsetToPointData < uint32(h.HeaderSize) {
		issues = append(issues, errs.Inconsistent("offset to point data", int64(h.OffsetToPointData), int64(h.HeaderSize)))
	}

	if want := h.PointFormat.RecordLength(); want != 0 && int(h.PointRecordLength) != want {
		issues = append(issues, errs.Inconsistent("point data record length", int64(h.PointRecordLength), int64(want)))
	}

	if want := h.PointFormat.MinVersionMinor(); h.VersionMinor < want {
		issues = append(issues, errs.Inconsistent("version minor", int64(h.VersionMinor), int64(want)))
	}

	if h.NumberOfPoints() > 0 {
		lo, hi := h.Bounds.Min, h.Bounds.Max
		for _, axis := range [...]struct {
			name   string
			lo, hi float64
		}{{"min x", lo.X, hi.X}, {"min y", lo.Y, hi.Y}, {"min z", lo.Z, hi.Z}} {
			if axis.lo > axis.hi {
				issues = append(issues, errs.Inconsistent(axis.name, int64(math.Floor(axis.lo)), int64(math.Floor(axis.hi))))
			}
		}
	}

	if h.VersionMinor >= 4 {
		switch {
		case h.PointFormat.IsExtended() && h.LegacyPointCount != 0:
			issues = append(issues, errs.Inconsistent("legacy point count", int64(h.LegacyPointCount), 0))
		case !h.PointFormat.IsExtended() && h.PointCount != 0 && h.PointCount <= math.MaxUint32 &&
			uint64(h.LegacyPointCount) != h.PointCount:
			issues = append(issues, errs.Inconsistent("legacy point count", int64(h.LegacyPointCount), int64(h.PointCount)))
		}
	}

	return issues
}

// ParseHeader decodes a header from data, which must hold at least the header size of
// the declared version. Bytes past that size are ignored.
//
// Returns:
//   - errs.ErrInvalidSignature if data does not start with "LASF"
//   - errs.ErrUnsupportedVersion for versions other than 1.0 - 1.4
//   - errs.ErrUnsupportedPointFormat for point format ids above 10
//   - *errs.TruncatedError if data is too short
func ParseHeader(data []byte) (Header, error) {
	if err := checkPreamble(data); err != nil {
		return Header{}, err
	}

	var h Header
	h.VersionMajor = data[offVersion]
	h.VersionMinor = data[offVersion+1]

	if size := h.Size(); len(data) < size {
		return Header{}, errs.Truncated("header", 0, size, len(data))
	}

	h.PointFormat = format.PointFormat(data[offPointFormat])
	if !h.PointFormat.IsValid() {
		return Header{}, fmt.Errorf("%w: %d", errs.ErrUnsupportedPointFormat, data[offPointFormat])
	}

	h.FileSourceID = engine.Uint16(data[offFileSourceID:])
	h.GlobalEncoding = engine.Uint16(data[offGlobalEncoding:])
	h.ProjectID.Data1 = engine.Uint32(data[offProjectID:])
	h.ProjectID.Data2 = engine.Uint16(data[offProjectID+4:])
	h.ProjectID.Data3 = engine.Uint16(data[offProjectID+6:])
	copy(h.ProjectID.Data4[:], data[offProjectID+8:offVersion])

	h.SystemIdentifier = cString(data[offSystemIdentifier:offGeneratingSoftware])
	h.GeneratingSoftware = cString(data[offGeneratingSoftware:offCreationDay])
	h.CreationDayOfYear = engine.Uint16(data[offCreationDay:])
	h.CreationYear = engine.Uint16(data[offCreationYear:])

	h.HeaderSize = engine.Uint16(data[offHeaderSize:])
	h.OffsetToPointData = engine.Uint32(data[offPointDataOffset:])
	h.NumberOfVLRs = engine.Uint32(data[offNumberOfVLRs:])
	h.PointRecordLength = engine.Uint16(data[offPointRecordLength:])

	h.LegacyPointCount = engine.Uint32(data[offLegacyPointCount:])
	for i := range h.LegacyPointsByReturn {
		h.LegacyPointsByReturn[i] = engine.Uint32(data[offLegacyByReturn+4*i:])
	}

	f := floats(data[offScale:], 12)
	h.Quantization = quant.Params{
		X: quant.Axis{Scale: f[0], Offset: f[3]},
		Y: quant.Axis{Scale: f[1], Offset: f[4]},
		Z: quant.Axis{Scale: f[2], Offset: f[5]},
	}
	h.Bounds = Bounds{
		Max: quant.Vec3{X: f[6], Y: f[8], Z: f[10]},
		Min: quant.Vec3{X: f[7], Y: f[9], Z: f[11]},
	}

	if h.VersionMinor >= 3 {
		h.WaveformDataOffset = engine.Uint64(data[offWaveformData:])
	}

	if h.VersionMinor >= 4 {
		h.FirstEVLROffset = engine.Uint64(data[offFirstEVLR:])
		h.NumberOfEVLRs = engine.Uint32(data[offNumberOfEVLRs:])
		h.PointCount = engine.Uint64(data[offPointCount:])
		for i := range h.PointsByReturn {
			h.PointsByReturn[i] = engine.Uint64(data[offPointsByReturn+8*i:])
		}
	}

	return h, nil
}

// ReadHeader reads and decodes a header from r. It consumes the legacy 227-byte block,
// then the remainder announced by the version and the HeaderSize field, so r is left
// positioned at the first VLR.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, LegacyHeaderSize)
	if err := readFull(r, buf, "header", 0); err != nil {
		return Header{}, err
	}

	if err := checkPreamble(buf); err != nil {
		return Header{}, err
	}

	need := max(SizeForVersion(buf[offVersion+1]), int(engine.Uint16(buf[offHeaderSize:])))
	if need > len(buf) {
		rest := make([]byte, need-len(buf))
		if err := readFull(r, rest, "header", int64(len(buf))); err != nil {
			var te *errs.TruncatedError
			if errors.As(err, &te) {
				return Header{}, errs.Truncated("header", 0, need, len(buf)+te.Actual)
			}

			return Header{}, err
		}
		buf = append(buf, rest...)
	}

	return ParseHeader(buf)
}

func checkPreamble(data []byte) error {
	if len(data) < LegacyHeaderSize {
		return errs.Truncated("header", 0, LegacyHeaderSize, len(data))
	}

	if string(data[:len(Signature)]) != Signature {
		return fmt.Errorf("%w: %q", errs.ErrInvalidSignature, data[:len(Signature)])
	}

	major, minor := data[offVersion], data[offVersion+1]
	if major != VersionMajor || minor > MaxVersionMinor {
		return fmt.Errorf("%w: %d.%d", errs.ErrUnsupportedVersion, major, minor)
	}

	return nil
}

// putString copies s into a NUL padded fixed-width field.
func putString(dst []byte, s string) {
	n := copy(dst, s)
	clear(dst[n:])
}

// cString returns the field up to its first NUL.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}

	return string(b)
}

func putFloats(b []byte, values ...float64) {
	for i, v := range values {
		endian.PutFloat64(engine, b[8*i:], v)
	}
}

func floats(b []byte, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = endian.Float64(engine, b[8*i:])
	}

	return out
}

func readFull(r io.Reader, buf []byte, section string, offset int64) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.Truncated(section, offset, len(buf), n)
	}

	return err
}
