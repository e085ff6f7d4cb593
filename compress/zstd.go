package compress

import "github.com/arloliu/lasf/format"

// ZstdCodec stores the LAS bytes as a Zstandard frame (.las.zst).
//
// The default build uses the pure Go klauspost/compress implementation. Building with
// -tags gozstd on a cgo toolchain switches to the libzstd binding from valyala/gozstd.
// Both produce standard frames, so containers written by one are read by the other.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a Zstandard codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

// Type returns format.CompressionZstd.
func (c ZstdCodec) Type() format.CompressionType {
	return format.CompressionZstd
}
