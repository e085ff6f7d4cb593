// Package lasf reads and writes ASPRS LAS point clouds (LAS 1.0 - 1.4, point data record
// formats 0 - 10).
//
// A LAS file is a public header, a list of variable length records (VLRs), a contiguous
// array of fixed-length point records and, for LAS 1.4, extended VLRs (EVLRs). Point
// coordinates are stored as int32 values that map to real coordinates through a per-axis
// scale and offset.
//
// # Core Features
//
//   - All eleven point record layouts, selected once per file from the header
//   - Bit-exact legacy (formats 0-5) and extended (formats 6-10) flag packing
//   - Scale/offset estimation from point extents with a bounded round-trip error
//   - Lenient or strict handling of inconsistent headers
//   - Parallel decoding with preserved record order
//   - Whole-file Zstd, S2 and LZ4 containers (not LAZ)
//
// # Basic Usage
//
// Writing a file, letting the writer pick scale and offset:
//
//	f, _ := os.Create("out.las")
//	w, _ := lasf.NewWriter(f, format.Point1, lasf.WithSystemIdentifier("survey"))
//	for _, s := range samples {
//	    rec := &point.Point1{GPSTime: s.Time}
//	    rec.ReturnNumber, rec.NumberOfReturns = 1, 1
//	    _ = w.Add(rec, quant.Vec3{X: s.X, Y: s.Y, Z: s.Z})
//	}
//	_ = w.Close() // rewrites the header, then closes f
//
// Reading it back:
//
//	f, _ := os.Open("out.las")
//	r, _ := lasf.NewReader(f, lasf.WithWorkers(runtime.NumCPU()))
//	defer r.Close()
//
//	recs, _ := r.ReadAll(ctx)
//	for _, rec := range recs {
//	    pos := r.Position(rec)
//	    fmt.Printf("%.3f %.3f %.3f\n", pos.X, pos.Y, pos.Z)
//	}
//
// # Package Structure
//
// This package orchestrates the sub-packages in file order. For finer control use them
// directly: section (header and VLR framing), point (record codecs), quant (quantization
// and estimation) and compress (container codecs).
package lasf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/lasf/compress"
	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/format"
	"github.com/arloliu/lasf/internal/pool"
	"github.com/arloliu/lasf/point"
	"github.com/arloliu/lasf/quant"
	"github.com/arloliu/lasf/section"
)

// DefaultGeneratingSoftware is written to the header unless WithGeneratingSoftware is given.
const DefaultGeneratingSoftware = "lasf"

// DecodeHeader reads the public header at the current position of r.
func DecodeHeader(r io.Reader) (section.Header, error) {
	return section.ReadHeader(r)
}

// DecodeVLRs reads count VLRs at the current position of r.
func DecodeVLRs(r io.Reader, count int) ([]section.VLR, error) {
	return section.ReadVLRs(r, count)
}

// DecodePoints reads count records laid out as h declares, starting at the current
// position of r.
func DecodePoints(r io.Reader, h section.Header, count int) ([]point.Record, error) {
	return point.ReadRecords(r, h.PointFormat, int(h.PointRecordLength), count, int64(h.OffsetToPointData))
}

// EncodeHeader writes h to w.
func EncodeHeader(w io.Writer, h section.Header) error {
	_, err := h.WriteTo(w)
	return err
}

// EncodeVLRs writes vlrs to w back to back.
func EncodeVLRs(w io.Writer, vlrs []section.VLR) error {
	for i, v := range vlrs {
		if _, err := v.WriteTo(w); err != nil {
			return fmt.Errorf("vlr %d: %w", i, err)
		}
	}

	return nil
}

// EncodePoints writes records with the format and record length h declares. Bytes past the
// format's fixed length are zero filled.
func EncodePoints(w io.Writer, h section.Header, records []point.Record) error {
	stride := int(h.PointRecordLength)
	if size := h.PointFormat.RecordLength(); size == 0 {
		return errs.ErrUnsupportedPointFormat
	} else if stride < size {
		return errs.Inconsistent("point data record length", int64(stride), int64(size))
	}

	bb := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(bb)

	for i, rec := range records {
		if rec.Format() != h.PointFormat {
			return fmt.Errorf("point %d: %w: got %s, want %s", i, errs.ErrFormatMismatch, rec.Format(), h.PointFormat)
		}

		start := bb.Len()
		bb.ExtendOrGrow(stride)
		clear(bb.B[start:])
		if err := point.Encode(bb.B[start:], rec); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}

		if bb.Len() >= pool.RecordBufferDefaultSize {
			if _, err := bb.WriteTo(w); err != nil {
				return err
			}
			bb.Reset()
		}
	}

	_, err := bb.WriteTo(w)

	return err
}

// EstimateScaleOffset derives the scale and offset of one axis from its values.
func EstimateScaleOffset(values []float64, opts ...quant.EstimateOption) (quant.Axis, error) {
	return quant.EstimateAxis(values, opts...)
}

// NewReaderFromCompressed opens a LAS file wrapped in a whole-file container.
func NewReaderFromCompressed(data []byte, ct format.CompressionType, opts ...ReaderOption) (*Reader, error) {
	raw, err := compress.Decompress(ct, data)
	if err != nil {
		return nil, err
	}

	return NewReader(bytes.NewReader(raw), opts...)
}

// WriteCompressed assembles a LAS file in memory with a Writer passed to build, then
// writes it to dst wrapped in a container of type ct.
//
// Example:
//
//	stats, err := lasf.WriteCompressed(f, format.CompressionZstd, format.Point0,
//	    func(w *lasf.Writer) error {
//	        return w.Add(&point.Point0{}, quant.Vec3{X: 1, Y: 2, Z: 3})
//	    })
func WriteCompressed(dst io.Writer, ct format.CompressionType, f format.PointFormat, build func(w *Writer) error, opts ...WriterOption) (compress.Stats, error) {
	if _, err := compress.GetCodec(ct); err != nil {
		return compress.Stats{}, err
	}

	bb := pool.GetFileBuffer()
	defer pool.PutFileBuffer(bb)

	w, err := NewWriter(bb, f, opts...)
	if err != nil {
		return compress.Stats{}, err
	}

	if err := build(w); err != nil {
		return compress.Stats{}, err
	}

	if err := w.Finish(); err != nil {
		return compress.Stats{}, err
	}

	out, stats, err := compress.Compress(ct, bb.Bytes())
	if err != nil {
		return compress.Stats{}, err
	}

	if _, err := dst.Write(out); err != nil {
		return compress.Stats{}, err
	}

	return stats, nil
}
