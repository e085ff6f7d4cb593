package compress

import (
	"github.com/klauspost/compress/s2"

	"github.com/arloliu/lasf/format"
)

// S2Codec stores the LAS bytes as a single S2 block.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates an S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Type returns format.CompressionS2.
func (c S2Codec) Type() format.CompressionType {
	return format.CompressionS2
}

// Compress compresses data with S2 using the better-ratio encoder; LAS containers are
// written once and read many times.
func (c S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.EncodeBetter(nil, data), nil
}

// Decompress decodes an S2 block.
func (c S2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
