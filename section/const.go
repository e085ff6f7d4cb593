package section

import "math"

// Signature opens every LAS file.
const Signature = "LASF"

// Fixed structure sizes in bytes.
const (
	LegacyHeaderSize = 227 // LAS 1.0 - 1.2
	Header13Size     = 235 // LAS 1.3, adds the waveform data offset
	Header14Size     = 375 // LAS 1.4, adds EVLRs and 64-bit counters
	VLRHeaderSize    = 54
	EVLRHeaderSize   = 60

	SystemIdentifierSize   = 32
	GeneratingSoftwareSize = 32
	UserIDSize             = 16
	DescriptionSize        = 32

	LegacyReturnCount   = 5
	ExtendedReturnCount = 15

	MaxVLRPayload = math.MaxUint16
)

// Supported versions. Only major version 1 exists.
const (
	VersionMajor    = 1
	MaxVersionMinor = 4
)

// GlobalEncoding bits.
const (
	GlobalEncodingGPSStandardTime  uint16 = 0x0001 // bit 0: GPS time is standard GPS time minus 1e9
	GlobalEncodingWaveformInternal uint16 = 0x0002 // bit 1: waveform packets stored in this file (deprecated)
	GlobalEncodingWaveformExternal uint16 = 0x0004 // bit 2: waveform packets stored in a .wdp file
	GlobalEncodingSyntheticReturns uint16 = 0x0008 // bit 3: return numbers were generated synthetically
	GlobalEncodingWKT              uint16 = 0x0010 // bit 4: CRS is WKT (required for formats 6-10)
)

// Byte offsets of the public header fields.
const (
	offFileSourceID       = 4
	offGlobalEncoding     = 6
	offProjectID          = 8
	offVersion            = 24
	offSystemIdentifier   = 26
	offGeneratingSoftware = 58
	offCreationDay        = 90
	offCreationYear       = 92
	offHeaderSize         = 94
	offPointDataOffset    = 96
	offNumberOfVLRs       = 100
	offPointFormat        = 104
	offPointRecordLength  = 105
	offLegacyPointCount   = 107
	offLegacyByReturn     = 111
	offScale              = 131
	offOffset             = 155
	offBounds             = 179
	offWaveformData       = 227
	offFirstEVLR          = 235
	offNumberOfEVLRs      = 243
	offPointCount         = 247
	offPointsByReturn     = 255
)

// SizeForVersion returns the public header size mandated by LAS 1.minor.
func SizeForVersion(minor uint8) int {
	switch {
	case minor >= 4:
		return Header14Size
	case minor == 3:
		return Header13Size
	default:
		return LegacyHeaderSize
	}
}
