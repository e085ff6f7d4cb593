package lasf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/paulmach/orb"

	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/internal/hash"
	"github.com/arloliu/lasf/point"
	"github.com/arloliu/lasf/quant"
	"github.com/arloliu/lasf/section"
)

// Reader decodes a LAS file in strict file order: header, VLRs, point records.
//
// Note: The Reader is NOT thread-safe. ReadAll may decode on several goroutines, but a
// Reader instance must be driven by a single goroutine at a time.
type Reader struct {
	rs       io.ReadSeeker
	cfg      *ReaderConfig
	header   section.Header
	vlrs     *section.VLRSet
	base     int64  // stream position of the "LASF" signature
	size     int64  // stream position of the end of the file
	stride   int    // declared record length
	total    uint64 // records in the file
	next     uint64 // index of the next record to read
	warnings []*errs.InconsistentHeaderError
}

// NewReader decodes the header and the VLRs of the LAS file starting at the current
// position of rs, then positions rs at the first point record.
//
// Header inconsistencies go to the configured InconsistencyHandler. By default they are
// tolerated, logged and collected in Warnings.
func NewReader(rs io.ReadSeeker, opts ...ReaderOption) (*Reader, error) {
	cfg, err := newReaderConfig(opts)
	if err != nil {
		return nil, err
	}

	base, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	h, err := section.ReadHeader(rs)
	if err != nil {
		return nil, err
	}

	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		rs:     rs,
		cfg:    cfg,
		header: h,
		base:   base,
		size:   size,
		stride: int(h.PointRecordLength),
		total:  h.NumberOfPoints(),
	}

	for _, issue := range h.Validate() {
		if err := r.inconsistent(issue); err != nil {
			return nil, err
		}
	}

	if err := r.readVLRs(); err != nil {
		return nil, err
	}

	if err := r.checkPointCount(); err != nil {
		return nil, err
	}

	if err := r.Rewind(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Reader) readVLRs() error {
	start := int64(max(int(r.header.HeaderSize), r.header.Size()))
	if _, err := r.rs.Seek(r.base+start, io.SeekStart); err != nil {
		return err
	}

	vlrs, err := section.ReadVLRsAt(r.rs, int(r.header.NumberOfVLRs), start)
	if err != nil {
		return err
	}
	r.vlrs = section.NewVLRSet(vlrs)

	end := start
	for _, v := range vlrs {
		end += int64(v.Size())
	}

	declared := int64(r.header.OffsetToPointData)
	switch {
	case declared < end:
		return r.inconsistent(errs.Inconsistent("offset to point data", declared, end))
	case declared > end:
		r.cfg.logger.Debug("skipping bytes between VLRs and point data",
			"offset", end, "length", declared-end)
	}

	return nil
}

// checkPointCount reports a declared point count the stream cannot hold.
func (r *Reader) checkPointCount() error {
	if r.total == 0 || r.stride == 0 {
		return nil
	}

	avail := max(r.pointsEnd()-int64(r.header.OffsetToPointData), 0)
	fits := uint64(avail / int64(r.stride))
	if r.total <= fits {
		return nil
	}

	return r.inconsistent(errs.Inconsistent("point count", int64(min(r.total, math.MaxInt64)), int64(fits)))
}

func (r *Reader) inconsistent(issue *errs.InconsistentHeaderError) error {
	if r.cfg.handler != nil {
		if err := r.cfg.handler(issue); err != nil {
			return err
		}
	}

	r.warnings = append(r.warnings, issue)
	r.cfg.logger.Warn("tolerating inconsistent LAS header",
		"field", issue.Field,
		"declared", issue.Declared,
		"expected", issue.Expected)

	return nil
}

// Header returns the decoded public header.
func (r *Reader) Header() section.Header {
	return r.header
}

// VLRs returns the variable length records that follow the header.
func (r *Reader) VLRs() *section.VLRSet {
	return r.vlrs
}

// Quantization returns the scale and offset of every axis.
func (r *Reader) Quantization() quant.Params {
	return r.header.Quantization
}

// Bound returns the XY extent declared by the header.
func (r *Reader) Bound() orb.Bound {
	return r.header.Bound()
}

// Warnings returns the header inconsistencies that were tolerated.
func (r *Reader) Warnings() []*errs.InconsistentHeaderError {
	out := make([]*errs.InconsistentHeaderError, len(r.warnings))
	copy(out, r.warnings)

	return out
}

// Remaining returns the number of records not read yet.
func (r *Reader) Remaining() uint64 {
	return r.total - r.next
}

// Position returns the dequantized coordinates of rec.
func (r *Reader) Position(rec point.Record) quant.Vec3 {
	return r.header.Quantization.Dequantize(rec.Raw())
}

// Read decodes the next n records, or DefaultBatchSize (see WithBatchSize) records when
// n <= 0. The last batch may be shorter; after it Read returns io.EOF.
func (r *Reader) Read(n int) ([]point.Record, error) {
	remaining := r.Remaining()
	if remaining == 0 {
		return nil, io.EOF
	}

	if n <= 0 {
		n = r.cfg.batchSize
	}
	count := int(min(uint64(n), remaining))
	if err := r.checkWindow(count); err != nil {
		return nil, err
	}

	recs, err := point.ReadRecords(r.rs, r.header.PointFormat, r.stride, count, r.offsetOf(r.next))
	if err != nil {
		return nil, err
	}
	r.next += uint64(count)

	return recs, nil
}

// ReadAll decodes every remaining record. With WithWorkers(n > 1) the window is decoded
// by n goroutines; records are still returned in file order.
func (r *Reader) ReadAll(ctx context.Context) ([]point.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	remaining := r.Remaining()
	if remaining == 0 {
		return []point.Record{}, nil
	}

	if remaining > uint64(math.MaxInt32) {
		return nil, errs.OutOfRange("points in memory", int64(min(remaining, math.MaxInt64)), 0, math.MaxInt32)
	}
	count := int(remaining)
	if err := r.checkWindow(count); err != nil {
		return nil, err
	}

	f := r.header.PointFormat
	data, err := point.ReadWindow(r.rs, f, r.stride, count, r.offsetOf(r.next))
	if err != nil {
		return nil, err
	}

	var recs []point.Record
	if r.cfg.workers > 1 {
		recs, err = point.DecodeParallel(ctx, data, f, r.stride, count, r.cfg.workers)
	} else {
		recs, err = point.DecodeAll(data, f, r.stride, count)
	}
	if err != nil {
		return nil, err
	}
	r.next += uint64(count)

	return recs, nil
}

// ReadWithin scans the remaining records and returns those whose XY position lies in b.
// Records are tested one batch at a time; there is no spatial index.
func (r *Reader) ReadWithin(ctx context.Context, b orb.Bound) ([]point.Record, error) {
	var out []point.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := r.Read(r.cfg.batchSize)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		for _, rec := range batch {
			pos := r.Position(rec)
			if b.Contains(orb.Point{pos.X, pos.Y}) {
				out = append(out, rec)
			}
		}
	}
}

// Rewind positions the reader at the first point record.
func (r *Reader) Rewind() error {
	if _, err := r.rs.Seek(r.base+int64(r.header.OffsetToPointData), io.SeekStart); err != nil {
		return err
	}
	r.next = 0

	return nil
}

// ReadEVLRs decodes the extended VLRs of a LAS 1.4 file. The read position of the point
// records is preserved.
func (r *Reader) ReadEVLRs() ([]section.EVLR, error) {
	h := r.header
	if h.VersionMinor < 4 || h.NumberOfEVLRs == 0 {
		return nil, nil
	}

	if h.FirstEVLROffset > math.MaxInt64 {
		return nil, errs.OutOfRange("first evlr offset", math.MaxInt64, 0, math.MaxInt64)
	}
	start := int64(h.FirstEVLROffset)

	if _, err := r.rs.Seek(r.base+start, io.SeekStart); err != nil {
		return nil, err
	}

	evlrs, err := section.ReadEVLRsAt(r.rs, int(h.NumberOfEVLRs), start)
	if err != nil {
		return nil, err
	}

	if err := r.restore(); err != nil {
		return nil, err
	}

	return evlrs, nil
}

// PointDataDigest returns the xxHash64 of the raw point record window. The read position
// of the point records is preserved.
func (r *Reader) PointDataDigest() (uint64, error) {
	if r.total > math.MaxInt64/uint64(max(r.stride, 1)) {
		return 0, errs.OutOfRange("point data length", math.MaxInt64, 0, math.MaxInt64)
	}
	length := int64(r.total) * int64(r.stride)

	if _, err := r.rs.Seek(r.base+int64(r.header.OffsetToPointData), io.SeekStart); err != nil {
		return 0, err
	}

	d := hash.NewDigest()
	n, err := io.CopyN(d, r.rs, length)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errs.Truncated("points", int64(r.header.OffsetToPointData), int(length), int(n))
		}

		return 0, err
	}

	if err := r.restore(); err != nil {
		return 0, err
	}

	return d.Sum64(), nil
}

// Close closes the underlying stream when it is an io.Closer.
func (r *Reader) Close() error {
	if c, ok := r.rs.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close reader: %w", err)
		}
	}

	return nil
}

// checkWindow fails with a TruncatedError when the next count records run past the end
// of the stream, before any buffer is sized from the count.
func (r *Reader) checkWindow(count int) error {
	offset := r.offsetOf(r.next)
	need := int64(count) * int64(r.stride)
	if avail := max(r.pointsEnd()-offset, 0); need > avail {
		return errs.Truncated("points", offset, int(need), int(avail))
	}

	return nil
}

// pointsEnd returns the file offset where point data must end: the first EVLR when one is
// declared inside the stream, else the end of the stream.
func (r *Reader) pointsEnd() int64 {
	end := r.size - r.base
	h := r.header
	if h.VersionMinor >= 4 && h.NumberOfEVLRs > 0 &&
		h.FirstEVLROffset >= uint64(h.OffsetToPointData) && h.FirstEVLROffset < uint64(max(end, 0)) {
		end = int64(h.FirstEVLROffset)
	}

	return end
}

// restore seeks back to the next unread record.
func (r *Reader) restore() error {
	_, err := r.rs.Seek(r.base+r.offsetOf(r.next), io.SeekStart)
	return err
}

// offsetOf returns the file offset of record i.
func (r *Reader) offsetOf(i uint64) int64 {
	return int64(r.header.OffsetToPointData) + int64(i)*int64(r.stride)
}
