package section

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/format"
	"github.com/arloliu/lasf/quant"
)

// HeaderBuilder assembles a Header for writing. Setters record the first error and
// Build reports it, so calls can be chained.
//
// Derived fields (HeaderSize, OffsetToPointData, PointRecordLength and the legacy
// counters) are computed by Build and cannot be set directly.
type HeaderBuilder struct {
	h        Header
	vlrBytes int
	count    uint64
	byReturn [ExtendedReturnCount]uint64
	err      error
}

// NewHeaderBuilder starts a header for point format f. The version defaults to the lowest
// one that supports f, but never below 1.2.
func NewHeaderBuilder(f format.PointFormat) *HeaderBuilder {
	b := &HeaderBuilder{}
	b.h.VersionMajor = VersionMajor
	b.h.VersionMinor = max(2, f.MinVersionMinor())
	b.h.PointFormat = f
	b.h.Quantization = quant.DefaultParams()

	if !f.IsValid() {
		b.err = fmt.Errorf("%w: %d", errs.ErrUnsupportedPointFormat, uint8(f))
	}

	return b
}

func (b *HeaderBuilder) fail(err error) *HeaderBuilder {
	if b.err == nil {
		b.err = err
	}

	return b
}

// Version sets the minor version (LAS 1.minor).
func (b *HeaderBuilder) Version(minor uint8) *HeaderBuilder {
	if minor > MaxVersionMinor {
		return b.fail(fmt.Errorf("%w: 1.%d", errs.ErrUnsupportedVersion, minor))
	}
	b.h.VersionMinor = minor

	return b
}

// SystemIdentifier sets the 32-byte system identifier.
func (b *HeaderBuilder) SystemIdentifier(s string) *HeaderBuilder {
	if len(s) > SystemIdentifierSize {
		return b.fail(errs.OutOfRange("system identifier length", int64(len(s)), 0, SystemIdentifierSize))
	}
	b.h.SystemIdentifier = s

	return b
}

// GeneratingSoftware sets the 32-byte generating software name.
func (b *HeaderBuilder) GeneratingSoftware(s string) *HeaderBuilder {
	if len(s) > GeneratingSoftwareSize {
		return b.fail(errs.OutOfRange("generating software length", int64(len(s)), 0, GeneratingSoftwareSize))
	}
	b.h.GeneratingSoftware = s

	return b
}

// CreationDate sets the creation day of year and year from t.
func (b *HeaderBuilder) CreationDate(t time.Time) *HeaderBuilder {
	if t.IsZero() {
		b.h.CreationDayOfYear, b.h.CreationYear = 0, 0
		return b
	}

	if y := t.Year(); y < 0 || y > math.MaxUint16 {
		return b.fail(errs.OutOfRange("creation year", int64(y), 0, math.MaxUint16))
	}
	b.h.CreationDayOfYear = uint16(t.YearDay())
	b.h.CreationYear = uint16(t.Year())

	return b
}

// FileSourceID sets the file source (flight line) id.
func (b *HeaderBuilder) FileSourceID(id uint16) *HeaderBuilder {
	b.h.FileSourceID = id
	return b
}

// GlobalEncoding sets the global encoding bit field.
func (b *HeaderBuilder) GlobalEncoding(bits uint16) *HeaderBuilder {
	b.h.GlobalEncoding = bits
	return b
}

// ProjectID sets the project GUID.
func (b *HeaderBuilder) ProjectID(id ProjectID) *HeaderBuilder {
	b.h.ProjectID = id
	return b
}

// Quantization sets the scale and offset of every axis.
func (b *HeaderBuilder) Quantization(p quant.Params) *HeaderBuilder {
	if err := p.Validate(); err != nil {
		return b.fail(err)
	}
	b.h.Quantization = p

	return b
}

// VLRs declares count VLRs whose framed size totals totalBytes.
func (b *HeaderBuilder) VLRs(totalBytes, count int) *HeaderBuilder {
	if totalBytes < 0 || count < 0 {
		return b.fail(errs.OutOfRange("vlr bytes", int64(totalBytes), 0, math.MaxUint32))
	}
	b.vlrBytes = totalBytes
	b.h.NumberOfVLRs = uint32(count)

	return b
}

// EVLRs declares count extended VLRs starting at offset. Requires LAS 1.4.
func (b *HeaderBuilder) EVLRs(offset uint64, count uint32) *HeaderBuilder {
	b.h.FirstEVLROffset = offset
	b.h.NumberOfEVLRs = count

	return b
}

// Stats sets the point count, the per-return counts (index 0 is return number 1) and the
// bounding box of the dequantized coordinates.
func (b *HeaderBuilder) Stats(count uint64, byReturn [ExtendedReturnCount]uint64, bounds Bounds) *HeaderBuilder {
	b.count = count
	b.byReturn = byReturn
	b.h.Bounds = bounds

	return b
}

// Build validates the collected values and returns the header.
func (b *HeaderBuilder) Build() (Header, error) {
	if b.err != nil {
		return Header{}, b.err
	}

	h := b.h
	f := h.PointFormat

	if need := f.MinVersionMinor(); h.VersionMinor < need {
		return Header{}, fmt.Errorf("%w: point format %s requires LAS 1.%d, got 1.%d",
			errs.ErrUnsupportedVersion, f, need, h.VersionMinor)
	}

	if h.VersionMinor < 4 && h.NumberOfEVLRs > 0 {
		return Header{}, fmt.Errorf("%w: extended VLRs require LAS 1.4, got 1.%d",
			errs.ErrUnsupportedVersion, h.VersionMinor)
	}

	size := h.Size()
	h.HeaderSize = uint16(size)
	h.PointRecordLength = uint16(f.RecordLength())

	offset := uint64(size) + uint64(b.vlrBytes)
	if offset > math.MaxUint32 {
		return Header{}, errs.OutOfRange("offset to point data", int64(offset), 0, math.MaxUint32)
	}
	h.OffsetToPointData = uint32(offset)

	if err := b.setCounts(&h); err != nil {
		return Header{}, err
	}

	if issues := h.Validate(); len(issues) > 0 {
		return Header{}, errors.Join(toErrors(issues)...)
	}

	return h, nil
}

// setCounts fills the legacy and 64-bit counters.
func (b *HeaderBuilder) setCounts(h *Header) error {
	legacyFits := b.count <= math.MaxUint32

	if h.VersionMinor < 4 {
		if !legacyFits {
			return errs.OutOfRange("point count", saturate(b.count), 0, math.MaxUint32)
		}
	} else {
		h.PointCount = b.count
		h.PointsByReturn = b.byReturn
	}

	if h.PointFormat.IsExtended() || !legacyFits {
		return nil
	}

	h.LegacyPointCount = uint32(b.count)
	for i := range h.LegacyPointsByReturn {
		n := b.byReturn[i]
		if n > math.MaxUint32 {
			// the legacy array cannot represent it; readers fall back to the 64-bit counts
			h.LegacyPointsByReturn = [LegacyReturnCount]uint32{}
			break
		}
		h.LegacyPointsByReturn[i] = uint32(n)
	}

	return nil
}

func saturate(n uint64) int64 {
	if n > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(n)
}

func toErrors(issues []*errs.InconsistentHeaderError) []error {
	out := make([]error, len(issues))
	for i, issue := range issues {
		out[i] = issue
	}

	return out
}
