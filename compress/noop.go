package compress

import "github.com/arloliu/lasf/format"

// NoOpCodec passes plain LAS bytes through unchanged.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a pass-through codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Type returns format.CompressionNone.
func (c NoOpCodec) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress returns data itself. The result shares memory with the input.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself. The result shares memory with the input.
func (c NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
