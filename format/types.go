// Package format defines the selectors that parameterize the lasf codecs: the point data
// record format id and the whole-file container compression type.
package format

import "fmt"

type (
	PointFormat     uint8
	CompressionType uint8
)

const (
	Point0  PointFormat = 0  // Point0 is the core legacy record.
	Point1  PointFormat = 1  // Point1 adds GPS time.
	Point2  PointFormat = 2  // Point2 adds RGB.
	Point3  PointFormat = 3  // Point3 adds GPS time and RGB.
	Point4  PointFormat = 4  // Point4 adds GPS time and a wave packet descriptor.
	Point5  PointFormat = 5  // Point5 adds GPS time, RGB and a wave packet descriptor.
	Point6  PointFormat = 6  // Point6 is the core extended record (includes GPS time).
	Point7  PointFormat = 7  // Point7 adds RGB.
	Point8  PointFormat = 8  // Point8 adds RGB and NIR.
	Point9  PointFormat = 9  // Point9 adds a wave packet descriptor.
	Point10 PointFormat = 10 // Point10 adds RGB, NIR and a wave packet descriptor.

	MaxPointFormat = Point10

	CompressionNone CompressionType = 0x1 // CompressionNone stores the LAS bytes as-is.
	CompressionZstd CompressionType = 0x2 // CompressionZstd wraps the LAS bytes with Zstandard.
	CompressionS2   CompressionType = 0x3 // CompressionS2 wraps the LAS bytes with S2.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 wraps the LAS bytes in an LZ4 frame.
)

// Component sizes in bytes.
const (
	LegacyCoreSize   = 20
	ExtendedCoreSize = 30
	GPSTimeSize      = 8
	ColorSize        = 6
	NIRSize          = 2
	WavePacketSize   = 29
)

// recordLengths is indexed by format id.
var recordLengths = [...]int{
	LegacyCoreSize,
	LegacyCoreSize + GPSTimeSize,
	LegacyCoreSize + ColorSize,
	LegacyCoreSize + GPSTimeSize + ColorSize,
	LegacyCoreSize + GPSTimeSize + WavePacketSize,
	LegacyCoreSize + GPSTimeSize + ColorSize + WavePacketSize,
	ExtendedCoreSize,
	ExtendedCoreSize + ColorSize,
	ExtendedCoreSize + ColorSize + NIRSize,
	ExtendedCoreSize + WavePacketSize,
	ExtendedCoreSize + ColorSize + NIRSize + WavePacketSize,
}

// IsValid reports whether f is one of the eleven defined formats.
func (f PointFormat) IsValid() bool {
	return f <= MaxPointFormat
}

// RecordLength returns the fixed byte length of one record, or 0 for an unknown format.
func (f PointFormat) RecordLength() int {
	if !f.IsValid() {
		return 0
	}

	return recordLengths[f]
}

// IsExtended reports whether f uses the extended (LAS 1.4) core with 4-bit return fields.
func (f PointFormat) IsExtended() bool {
	return f >= Point6 && f.IsValid()
}

// HasGPSTime reports whether records carry a GPS time.
func (f PointFormat) HasGPSTime() bool {
	return f == Point1 || (f >= Point3 && f.IsValid())
}

// HasColor reports whether records carry an RGB triplet.
func (f PointFormat) HasColor() bool {
	switch f { //nolint: exhaustive
	case Point2, Point3, Point5, Point7, Point8, Point10:
		return true
	default:
		return false
	}
}

// HasNIR reports whether records carry a near-infrared channel.
func (f PointFormat) HasNIR() bool {
	return f == Point8 || f == Point10
}

// HasWavePacket reports whether records carry a wave packet descriptor.
func (f PointFormat) HasWavePacket() bool {
	switch f { //nolint: exhaustive
	case Point4, Point5, Point9, Point10:
		return true
	default:
		return false
	}
}

// MinVersionMinor returns the lowest LAS 1.x minor version able to store f.
func (f PointFormat) MinVersionMinor() uint8 {
	switch {
	case f.IsExtended():
		return 4
	case f.HasWavePacket():
		return 3
	case f >= Point2:
		return 2
	default:
		return 0
	}
}

func (f PointFormat) String() string {
	if !f.IsValid() {
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}

	return fmt.Sprintf("Point%d", uint8(f))
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
