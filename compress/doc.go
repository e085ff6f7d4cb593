// Package compress provides whole-file container codecs for LAS data.
//
// A container is a complete LAS file (header, VLRs, point records, EVLRs) passed through a
// general purpose compressor, e.g. survey.las.zst. This is not LAZ: the point records are
// not modeled, the bytes are compressed as a single opaque payload.
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	    Type() format.CompressionType
//	}
//
// # Supported Algorithms
//
//	Type                    | Container                | Implementation
//	------------------------|--------------------------|--------------------------------
//	format.CompressionNone  | plain .las               | NoOpCodec
//	format.CompressionZstd  | Zstandard frame (.zst)   | klauspost/compress/zstd, or valyala/gozstd with -tags gozstd
//	format.CompressionS2    | S2 block                 | klauspost/compress/s2
//	format.CompressionLZ4   | LZ4 frame (.lz4)         | pierrec/lz4/v4
//
// Point records are fixed-width and their integer coordinates change slowly along a scan
// line, so all three real codecs shrink typical LAS files substantially. Zstd gives the
// best ratio, LZ4 the fastest decode.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(lasBytes)
//
// The root package wires these codecs into lasf.WriteCompressed and
// lasf.NewReaderFromCompressed.
//
// # Thread Safety
//
// All codecs are stateless values backed by pooled encoders and decoders and are safe for
// concurrent use.
package compress
