package lasf

import (
	"fmt"
	"io"

	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/format"
	"github.com/arloliu/lasf/internal/pool"
	"github.com/arloliu/lasf/point"
	"github.com/arloliu/lasf/quant"
	"github.com/arloliu/lasf/section"
)

// maxRecordLength is the longest fixed record (format 10).
const maxRecordLength = format.ExtendedCoreSize + format.ColorSize + format.NIRSize + format.WavePacketSize

// Writer encodes a LAS file.
//
// In buffered mode (the default) records and their real coordinates are kept until
// Finish, which estimates scale and offset from the whole point set. With
// WithQuantization the Writer streams: the header and VLRs are written when the first
// record arrives and records are encoded in pooled batches.
//
// Either way Finish appends the EVLRs and rewrites the header in place with the final
// point counts and bounds, so ws must support seeking back to where the file started.
//
// Note: The Writer is NOT thread-safe and NOT reusable. After Finish a new Writer must
// be created.
type Writer struct {
	ws       io.WriteSeeker
	cfg      *WriterConfig
	format   format.PointFormat
	version  uint8
	base     int64 // stream position of the "LASF" signature
	written  int64 // bytes written since base
	vlrs     []section.VLR
	vlrBytes int
	evlrs    []section.EVLR
	params   quant.Params
	stats    stats

	// buffered mode
	pending   []point.Record
	positions []quant.Vec3

	// streaming mode
	batch *pool.ByteBuffer

	started  bool // a record was added; VLRs are frozen
	preamble bool // header and VLRs are on disk
	finished bool
	header   section.Header
}

// NewWriter starts a LAS file with point format f at the current position of ws.
func NewWriter(ws io.WriteSeeker, f format.PointFormat, opts ...WriterOption) (*Writer, error) {
	cfg, err := newWriterConfig(f, opts)
	if err != nil {
		return nil, err
	}

	// surface invalid header settings before anything is written
	h, err := cfg.builder.Build()
	if err != nil {
		return nil, err
	}

	base, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		ws:      ws,
		cfg:     cfg,
		format:  f,
		version: h.VersionMinor,
		base:    base,
		params:  h.Quantization,
		header:  h,
	}

	return w, nil
}

// Streaming reports whether records are encoded as they are added.
func (w *Writer) Streaming() bool {
	return w.cfg.params != nil
}

// Header returns the header written by Finish. Before Finish it holds the configured
// fields with zero counters.
func (w *Writer) Header() section.Header {
	return w.header
}

// AddVLR appends a variable length record. VLRs precede the point records, so they must
// all be added before the first record.
func (w *Writer) AddVLR(v section.VLR) error {
	if w.finished {
		return errs.ErrWriterFinished
	}

	if w.started {
		return errs.ErrPointsStarted
	}

	if err := v.Validate(); err != nil {
		return err
	}

	w.vlrs = append(w.vlrs, v)
	w.vlrBytes += v.Size()

	return nil
}

// AddEVLR appends an extended variable length record, written after the point records.
// Requires LAS 1.4.
func (w *Writer) AddEVLR(e section.EVLR) error {
	if w.finished {
		return errs.ErrWriterFinished
	}

	if w.version < 4 {
		return fmt.Errorf("%w: extended VLRs require LAS 1.4, got 1.%d", errs.ErrUnsupportedVersion, w.version)
	}

	if err := e.Validate(); err != nil {
		return err
	}
	w.evlrs = append(w.evlrs, e)

	return nil
}

// Add appends a record placed at pos. The raw coordinates of rec are set from pos when
// the record is quantized: immediately in streaming mode, in Finish otherwise. In
// buffered mode the Writer keeps rec until Finish.
func (w *Writer) Add(rec point.Record, pos quant.Vec3) error {
	if err := w.accept(rec); err != nil {
		return err
	}

	if !w.Streaming() {
		w.pending = append(w.pending, rec)
		w.positions = append(w.positions, pos)

		return nil
	}

	x, y, z, err := w.params.Quantize(pos)
	if err != nil {
		return err
	}
	rec.SetRaw(x, y, z)

	return w.encode(rec)
}

// AddRaw appends a record whose raw coordinates are already quantized with the fixed
// parameters given to WithQuantization.
func (w *Writer) AddRaw(rec point.Record) error {
	if err := w.accept(rec); err != nil {
		return err
	}

	if !w.Streaming() {
		return errs.ErrQuantizationRequired
	}

	return w.encode(rec)
}

func (w *Writer) accept(rec point.Record) error {
	if w.finished {
		return errs.ErrWriterFinished
	}

	if got := rec.Format(); got != w.format {
		return fmt.Errorf("%w: got %s, want %s", errs.ErrFormatMismatch, got, w.format)
	}
	w.started = true

	return nil
}

// encode writes rec into the current batch, flushing full batches to ws.
func (w *Writer) encode(rec point.Record) error {
	if !w.preamble {
		if err := w.writePreamble(); err != nil {
			return err
		}
	}

	var scratch [maxRecordLength]byte
	n := w.format.RecordLength()
	if err := point.Encode(scratch[:n], rec); err != nil {
		return fmt.Errorf("point %d: %w", w.stats.count, err)
	}

	if w.batch == nil {
		w.batch = pool.GetRecordBuffer()
	}
	_, _ = w.batch.Write(scratch[:n])
	w.stats.add(rec, w.params)

	if w.batch.Len() >= pool.RecordBufferDefaultSize {
		return w.flush()
	}

	return nil
}

func (w *Writer) flush() error {
	if w.batch == nil || w.batch.Len() == 0 {
		return nil
	}

	n, err := w.batch.WriteTo(w.ws)
	w.written += n
	w.batch.Reset()

	return err
}

// writePreamble writes a provisional header followed by the VLRs.
func (w *Writer) writePreamble() error {
	h, err := w.build()
	if err != nil {
		return err
	}

	if err := w.write(h); err != nil {
		return err
	}

	for _, v := range w.vlrs {
		if err := w.write(v); err != nil {
			return err
		}
	}
	w.preamble = true

	return nil
}

func (w *Writer) write(wt io.WriterTo) error {
	n, err := wt.WriteTo(w.ws)
	w.written += n

	return err
}

func (w *Writer) build() (section.Header, error) {
	return w.cfg.builder.
		Quantization(w.params).
		VLRs(w.vlrBytes, len(w.vlrs)).
		Stats(w.stats.count, w.stats.byReturn, w.stats.bounds()).
		Build()
}

// Finish writes every buffered record and the EVLRs, then rewrites the header with the
// final counters and bounds. ws is left positioned at the end of the file.
func (w *Writer) Finish() error {
	if w.finished {
		return errs.ErrWriterFinished
	}
	w.finished = true
	defer w.release()

	if !w.Streaming() {
		if err := w.encodePending(); err != nil {
			return err
		}
	}

	if !w.preamble {
		if err := w.writePreamble(); err != nil {
			return err
		}
	}

	if err := w.flush(); err != nil {
		return err
	}

	if len(w.evlrs) > 0 {
		w.cfg.builder.EVLRs(uint64(w.written), uint32(len(w.evlrs)))
		for _, e := range w.evlrs {
			if err := w.write(e); err != nil {
				return err
			}
		}
	}

	h, err := w.build()
	if err != nil {
		return err
	}

	end := w.written
	if _, err := w.ws.Seek(w.base, io.SeekStart); err != nil {
		return fmt.Errorf("rewrite header: %w", err)
	}
	if _, err := h.WriteTo(w.ws); err != nil {
		return fmt.Errorf("rewrite header: %w", err)
	}
	if _, err := w.ws.Seek(w.base+end, io.SeekStart); err != nil {
		return err
	}
	w.header = h

	w.cfg.logger.Debug("finished LAS file",
		"format", w.format.String(),
		"version", fmt.Sprintf("1.%d", h.VersionMinor),
		"points", h.NumberOfPoints(),
		"vlrs", len(w.vlrs),
		"evlrs", len(w.evlrs),
		"bytes", end)

	return nil
}

// encodePending estimates the quantization of the buffered records and encodes them.
func (w *Writer) encodePending() error {
	if len(w.pending) > 0 {
		p, err := quant.Estimate(w.positions, w.cfg.estimate...)
		if err != nil {
			return fmt.Errorf("estimate scale/offset: %w", err)
		}
		w.params = p
		w.cfg.logger.Debug("estimated quantization",
			"scale_x", p.X.Scale, "scale_y", p.Y.Scale, "scale_z", p.Z.Scale,
			"offset_x", p.X.Offset, "offset_y", p.Y.Offset, "offset_z", p.Z.Offset)
	}

	for i, rec := range w.pending {
		x, y, z, err := w.params.Quantize(w.positions[i])
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		rec.SetRaw(x, y, z)

		if err := w.encode(rec); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) release() {
	w.pending, w.positions = nil, nil
	if w.batch != nil {
		pool.PutRecordBuffer(w.batch)
		w.batch = nil
	}
}

// Close finishes the file and closes ws when it is an io.Closer. The header is always
// rewritten before the stream is closed.
func (w *Writer) Close() error {
	var err error
	if !w.finished {
		err = w.Finish()
	}

	if c, ok := w.ws.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close writer: %w", cerr)
		}
	}

	return err
}
