// Package endian provides the byte order engine used by every lasf structure.
//
// LAS files are little-endian throughout, so callers normally obtain the engine once:
//
//	engine := endian.GetLittleEndianEngine()
//	engine.PutUint32(b[0:4], uint32(x))
//	x := int32(engine.Uint32(b[0:4]))
//
// The engine also covers the IEEE-754 floating point fields (scale factors, offsets,
// bounds, GPS time, waveform parameters) through the Float32/Float64 helpers.
//
// All functions and methods in this package are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"math"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// PutFloat64 stores v into b[0:8].
func PutFloat64(engine EndianEngine, b []byte, v float64) {
	engine.PutUint64(b, math.Float64bits(v))
}

// Float64 decodes b[0:8].
func Float64(engine EndianEngine, b []byte) float64 {
	return math.Float64frombits(engine.Uint64(b))
}

// PutFloat32 stores v into b[0:4].
func PutFloat32(engine EndianEngine, b []byte, v float32) {
	engine.PutUint32(b, math.Float32bits(v))
}

// Float32 decodes b[0:4].
func Float32(engine EndianEngine, b []byte) float32 {
	return math.Float32frombits(engine.Uint32(b))
}

// AppendFloat64 appends the 8-byte encoding of v.
func AppendFloat64(engine EndianEngine, b []byte, v float64) []byte {
	return engine.AppendUint64(b, math.Float64bits(v))
}
