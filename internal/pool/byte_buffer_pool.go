package pool

import (
	"errors"
	"io"
	"sync"
)

// Default buffer sizes of the shared pools.
const (
	RecordBufferDefaultSize  = 1024 * 64        // 64KiB, one batch of encoded point records
	RecordBufferMaxThreshold = 1024 * 1024      // 1MiB
	FileBufferDefaultSize    = 1024 * 1024      // 1MiB, a whole in-memory LAS file
	FileBufferMaxThreshold   = 1024 * 1024 * 64 // 64MiB
)

var errNegativePosition = errors.New("pool: negative position")

// ByteBuffer is a growable byte slice with a write position. It implements io.Writer,
// io.Seeker and io.WriterTo, so a complete LAS file (including the header rewrite at
// offset 0) can be assembled in memory.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B   []byte
	pos int
}

var (
	_ io.WriteSeeker = (*ByteBuffer)(nil)
	_ io.WriterTo    = (*ByteBuffer)(nil)
)

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer and rewinds the position, retaining the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
	bb.pos = 0
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Pos returns the current write position.
func (bb *ByteBuffer) Pos() int {
	return bb.pos
}

// ExtendOrGrow appends n bytes to the buffer, growing it if necessary, and moves the
// position to the new end. The appended bytes are not zeroed; callers overwrite them.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
	bb.pos = len(bb.B)
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes without reallocating.
// If the buffer has sufficient capacity, Grow does nothing.
//
// The growth strategy is as follows:
//   - For small buffers, grow by RecordBufferDefaultSize to minimize reallocations.
//   - For larger buffers, grow by 25% of current capacity to balance memory usage and reallocation cost.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := RecordBufferDefaultSize
	if cap(bb.B) > 4*RecordBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write writes data at the current position, overwriting existing bytes and extending the
// buffer as needed. A gap left by seeking past the end is zero filled.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	if bb.pos == len(bb.B) {
		bb.B = append(bb.B, data...)
		bb.pos = len(bb.B)

		return len(data), nil
	}

	end := bb.pos + len(data)
	if oldLen := len(bb.B); end > oldLen {
		bb.Grow(end - oldLen)
		bb.B = bb.B[:end]
		if bb.pos > oldLen {
			clear(bb.B[oldLen:bb.pos])
		}
	}

	copy(bb.B[bb.pos:end], data)
	bb.pos = end

	return len(data), nil
}

// Seek sets the position for the next Write.
func (bb *ByteBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(bb.pos)
	case io.SeekEnd:
		base = int64(len(bb.B))
	default:
		return 0, errors.New("pool: invalid whence")
	}

	next := base + offset
	if next < 0 {
		return 0, errNegativePosition
	}
	bb.pos = int(next)

	return next, nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers.
// The pool can be configured with a maximum size threshold to avoid retaining
// overly large buffers that could lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	recordDefaultPool = NewByteBufferPool(RecordBufferDefaultSize, RecordBufferMaxThreshold)
	fileDefaultPool   = NewByteBufferPool(FileBufferDefaultSize, FileBufferMaxThreshold)
)

// GetRecordBuffer retrieves a buffer for a batch of encoded point records.
func GetRecordBuffer() *ByteBuffer {
	return recordDefaultPool.Get()
}

// PutRecordBuffer returns a record batch buffer to its pool.
func PutRecordBuffer(bb *ByteBuffer) {
	recordDefaultPool.Put(bb)
}

// GetFileBuffer retrieves a buffer for a whole in-memory LAS file.
func GetFileBuffer() *ByteBuffer {
	return fileDefaultPool.Get()
}

// PutFileBuffer returns a file buffer to its pool.
func PutFileBuffer(bb *ByteBuffer) {
	fileDefaultPool.Put(bb)
}
