package compress

import (
	"fmt"

	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/format"
)

// Compressor compresses a complete LAS byte stream.
type Compressor interface {
	// Compress returns the compressed form of data. The returned slice is owned by the
	// caller; data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a LAS byte stream produced by the matching Compressor.
type Decompressor interface {
	// Decompress returns the original bytes, or an error if data is corrupt or was produced
	// by a different algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions for one container type.
type Codec interface {
	Compressor
	Decompressor
	// Type returns the container type the codec handles.
	Type() format.CompressionType
}

// Stats describes one container compression.
type Stats struct {
	Algorithm      format.CompressionType
	OriginalSize   int64
	CompressedSize int64
}

// CompressionRatio returns compressed size / original size, or 0 for empty input.
func (s Stats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space saved as a percentage.
func (s Stats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec returns the built-in codec for the container type.
//
// Returns errs.ErrUnsupportedCompression for unknown types.
func GetCodec(ct format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[ct]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, ct)
}

// Compress compresses data with the codec for ct and reports the sizes.
func Compress(ct format.CompressionType, data []byte) ([]byte, Stats, error) {
	codec, err := GetCodec(ct)
	if err != nil {
		return nil, Stats{}, err
	}

	out, err := codec.Compress(data)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%s compress: %w", ct, err)
	}

	return out, Stats{Algorithm: ct, OriginalSize: int64(len(data)), CompressedSize: int64(len(out))}, nil
}

// Decompress restores data with the codec for ct.
func Decompress(ct format.CompressionType, data []byte) ([]byte, error) {
	codec, err := GetCodec(ct)
	if err != nil {
		return nil, err
	}

	out, err := codec.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", ct, err)
	}

	return out, nil
}
