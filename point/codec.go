package point

import (
	"context"
	"errors"
	"io"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/format"
	"github.com/arloliu/lasf/internal/hash"
)

// cancelCheckInterval is how many records a parallel worker decodes between context checks.
const cancelCheckInterval = 4096

// layout describes how one format is materialized. Selected once per batch.
type layout struct {
	size     int
	newOne   func() Record
	newBatch func(n int) []Record
}

var layouts = [...]layout{
	{format.Point0.RecordLength(), newOf[Point0], batchOf[Point0]},
	{format.Point1.RecordLength(), newOf[Point1], batchOf[Point1]},
	{format.Point2.RecordLength(), newOf[Point2], batchOf[Point2]},
	{format.Point3.RecordLength(), newOf[Point3], batchOf[Point3]},
	{format.Point4.RecordLength(), newOf[Point4], batchOf[Point4]},
	{format.Point5.RecordLength(), newOf[Point5], batchOf[Point5]},
	{format.Point6.RecordLength(), newOf[Point6], batchOf[Point6]},
	{format.Point7.RecordLength(), newOf[Point7], batchOf[Point7]},
	{format.Point8.RecordLength(), newOf[Point8], batchOf[Point8]},
	{format.Point9.RecordLength(), newOf[Point9], batchOf[Point9]},
	{format.Point10.RecordLength(), newOf[Point10], batchOf[Point10]},
}

func newOf[T any, P interface {
	*T
	Record
}]() Record {
	return P(new(T))
}

// batchOf backs n records with one contiguous allocation.
func batchOf[T any, P interface {
	*T
	Record
}](n int) []Record {
	items := make([]T, n)
	out := make([]Record, n)
	for i := range items {
		out[i] = P(&items[i])
	}

	return out
}

func lookup(f format.PointFormat) (layout, error) {
	if !f.IsValid() {
		return layout{}, errs.ErrUnsupportedPointFormat
	}

	return layouts[f], nil
}

// checkStride validates the per-record stride against the format's fixed length.
// A larger stride means the file carries extra bytes per record, which are skipped.
func checkStride(l layout, stride int) error {
	if stride < l.size {
		return errs.Inconsistent("point data record length", int64(stride), int64(l.size))
	}

	return nil
}

// New returns a zero record of format f.
func New(f format.PointFormat) (Record, error) {
	l, err := lookup(f)
	if err != nil {
		return nil, err
	}

	return l.newOne(), nil
}

// Encode writes r into dst[0:RecordLength].
//
// Returns:
//   - errs.ErrUnsupportedPointFormat for an unknown record type
//   - *errs.TruncatedError if dst is shorter than the record length
//   - *errs.RangeError if a bit field is out of range; dst is left untouched
func Encode(dst []byte, r Record) error {
	l, err := lookup(r.Format())
	if err != nil {
		return err
	}

	if len(dst) < l.size {
		return errs.Truncated("record buffer", 0, l.size, len(dst))
	}

	return r.put(dst[:l.size])
}

// AppendRecord appends the encoding of r to dst.
func AppendRecord(dst []byte, r Record) ([]byte, error) {
	l, err := lookup(r.Format())
	if err != nil {
		return dst, err
	}

	start := len(dst)
	dst = append(dst, make([]byte, l.size)...)
	if err := r.put(dst[start:]); err != nil {
		return dst[:start], err
	}

	return dst, nil
}

// Decode decodes a single record of format f from src.
func Decode(src []byte, f format.PointFormat) (Record, error) {
	l, err := lookup(f)
	if err != nil {
		return nil, err
	}

	if len(src) < l.size {
		return nil, errs.Truncated("point record", 0, l.size, len(src))
	}

	r := l.newOne()
	r.load(src[:l.size])

	return r, nil
}

// DecodeAll decodes count records laid out every stride bytes in data.
//
// Parameters:
//   - data: point data window (at least stride*count bytes)
//   - f: point data record format from the header
//   - stride: declared record length; must be >= f.RecordLength()
//   - count: number of records
//
// Returns the records in file order, or an error. No partial result is returned.
func DecodeAll(data []byte, f format.PointFormat, stride, count int) ([]Record, error) {
	l, err := prepare(data, f, stride, count)
	if err != nil {
		return nil, err
	}

	out := l.newBatch(count)
	for i, r := range out {
		off := i * stride
		r.load(data[off : off+l.size])
	}

	return out, nil
}

// DecodeParallel is DecodeAll split across workers. Each worker decodes a disjoint,
// contiguous range into its own result slots, so output order equals input order.
func DecodeParallel(ctx context.Context, data []byte, f format.PointFormat, stride, count, workers int) ([]Record, error) {
	if workers <= 0 {
		return nil, errs.ErrInvalidWorkers
	}

	l, err := prepare(data, f, stride, count)
	if err != nil {
		return nil, err
	}

	out := l.newBatch(count)
	if count == 0 {
		return out, nil
	}

	chunk := (count + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < count; start += chunk {
		end := min(start+chunk, count)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%cancelCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				off := i * stride
				out[i].load(data[off : off+l.size])
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// ReadRecords reads exactly stride*count bytes from r in one pass and decodes them.
// offset is the stream position of the first record and is only used for error context.
func ReadRecords(r io.Reader, f format.PointFormat, stride, count int, offset int64) ([]Record, error) {
	data, err := ReadWindow(r, f, stride, count, offset)
	if err != nil {
		return nil, err
	}

	return DecodeAll(data, f, stride, count)
}

// windowPrealloc is the largest point window allocated up front.
const windowPrealloc = 64 << 20

// ReadWindow reads the raw bytes of count records without decoding them.
func ReadWindow(r io.Reader, f format.PointFormat, stride, count int, offset int64) ([]byte, error) {
	l, err := lookup(f)
	if err != nil {
		return nil, err
	}

	if err := checkStride(l, stride); err != nil {
		return nil, err
	}

	need := stride * count
	if need > windowPrealloc {
		// count is untrusted; grow the window while reading
		data, err := io.ReadAll(io.LimitReader(r, int64(need)))
		if err != nil {
			return nil, err
		}
		if len(data) < need {
			return nil, errs.Truncated("points", offset, need, len(data))
		}

		return data, nil
	}

	data := make([]byte, need)
	n, err := io.ReadFull(r, data)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errs.Truncated("points", offset, need, n)
		}

		return nil, err
	}

	return data, nil
}

// Digest returns the xxHash64 fingerprint of a raw point data window.
func Digest(data []byte) uint64 {
	return hash.Sum(data)
}

func prepare(data []byte, f format.PointFormat, stride, count int) (layout, error) {
	l, err := lookup(f)
	if err != nil {
		return layout{}, err
	}

	if err := checkStride(l, stride); err != nil {
		return layout{}, err
	}

	if count < 0 {
		return layout{}, errs.OutOfRange("point count", int64(count), 0, math.MaxInt64)
	}

	if need := stride * count; len(data) < need {
		return layout{}, errs.Truncated("points", 0, need, len(data))
	}

	return l, nil
}
