package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/lasf/format"
)

// lz4WriterPool and lz4ReaderPool reuse frame writers and readers; both carry internal
// block buffers.
var (
	lz4WriterPool = sync.Pool{
		New: func() any {
			return lz4.NewWriter(nil)
		},
	}
	lz4ReaderPool = sync.Pool{
		New: func() any {
			return lz4.NewReader(nil)
		},
	}
)

// LZ4Codec stores the LAS bytes as an LZ4 frame, readable by the lz4 command line tool.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates an LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Type returns format.CompressionLZ4.
func (c LZ4Codec) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress writes data as one LZ4 frame. The frame header records the content size.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.Grow(lz4.CompressBlockBound(len(data)) + 32)

	zw, _ := lz4WriterPool.Get().(*lz4.Writer)
	defer lz4WriterPool.Put(zw)

	zw.Reset(&buf)
	if err := zw.Apply(lz4.SizeOption(uint64(len(data)))); err != nil {
		return nil, err
	}

	if _, err := zw.Write(data); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress reads one LZ4 frame.
func (c LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	zr, _ := lz4ReaderPool.Get().(*lz4.Reader)
	defer lz4ReaderPool.Put(zr)

	zr.Reset(bytes.NewReader(data))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
