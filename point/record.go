package point

import (
	"github.com/arloliu/lasf/endian"
	"github.com/arloliu/lasf/format"
)

var engine = endian.GetLittleEndianEngine()

// Record is one point data record. The interface is closed: it is implemented only by
// *Point0 ... *Point10.
type Record interface {
	// Format returns the point data record format of the record type.
	Format() format.PointFormat
	// Raw returns the quantized coordinates as stored on disk.
	Raw() (x, y, z int32)
	// SetRaw replaces the quantized coordinates.
	SetRaw(x, y, z int32)
	// Returns returns the return number and the number of returns of the pulse.
	Returns() (returnNumber, numberOfReturns uint8)

	put(b []byte) error
	load(b []byte)
}

// Legacy holds the fields shared by formats 0-5.
type Legacy struct {
	X, Y, Z          int32
	Intensity        uint16
	ReturnNumber     uint8 // 0-7
	NumberOfReturns  uint8 // 0-7, 0 means unknown
	ScanDirection    bool
	EdgeOfFlightLine bool
	Classification   uint8 // 0-31
	Synthetic        bool
	KeyPoint         bool
	Withheld         bool
	ScanAngleRank    int8 // degrees, -90..90
	UserData         uint8
	PointSourceID    uint16
}

func (p *Legacy) Raw() (x, y, z int32) {
	return p.X, p.Y, p.Z
}

func (p *Legacy) SetRaw(x, y, z int32) {
	p.X, p.Y, p.Z = x, y, z
}

func (p *Legacy) Returns() (returnNumber, numberOfReturns uint8) {
	return p.ReturnNumber, p.NumberOfReturns
}

// put writes b[0:20]. Bit fields are validated before anything is written.
func (p *Legacy) put(b []byte) error {
	flags, err := PackLegacyFlags(p.ReturnNumber, p.NumberOfReturns, p.ScanDirection, p.EdgeOfFlightLine)
	if err != nil {
		return err
	}

	class, err := PackLegacyClassification(p.Classification, p.Synthetic, p.KeyPoint, p.Withheld)
	if err != nil {
		return err
	}

	_ = b[format.LegacyCoreSize-1]
	putXYZ(b, p.X, p.Y, p.Z)
	engine.PutUint16(b[12:14], p.Intensity)
	b[14] = flags
	b[15] = class
	b[16] = byte(p.ScanAngleRank)
	b[17] = p.UserData
	engine.PutUint16(b[18:20], p.PointSourceID)

	return nil
}

func (p *Legacy) load(b []byte) {
	_ = b[format.LegacyCoreSize-1]
	p.X, p.Y, p.Z = loadXYZ(b)
	p.Intensity = engine.Uint16(b[12:14])
	p.ReturnNumber, p.NumberOfReturns, p.ScanDirection, p.EdgeOfFlightLine = UnpackLegacyFlags(b[14])
	p.Classification, p.Synthetic, p.KeyPoint, p.Withheld = UnpackLegacyClassification(b[15])
	p.ScanAngleRank = int8(b[16])
	p.UserData = b[17]
	p.PointSourceID = engine.Uint16(b[18:20])
}

// Extended holds the fields shared by formats 6-10, GPS time included.
type Extended struct {
	X, Y, Z             int32
	Intensity           uint16
	ReturnNumber        uint8 // 0-15
	NumberOfReturns     uint8 // 0-15, 0 means unknown
	ClassificationFlags uint8 // ClassFlag* bits, 0-15
	ScannerChannel      uint8 // 0-3
	ScanDirection       bool
	EdgeOfFlightLine    bool
	Classification      uint8
	UserData            uint8
	ScanAngle           int16 // 0.006 degree increments
	PointSourceID       uint16
	GPSTime             float64
}

func (p *Extended) Raw() (x, y, z int32) {
	return p.X, p.Y, p.Z
}

func (p *Extended) SetRaw(x, y, z int32) {
	p.X, p.Y, p.Z = x, y, z
}

func (p *Extended) Returns() (returnNumber, numberOfReturns uint8) {
	return p.ReturnNumber, p.NumberOfReturns
}

// HasClassificationFlag reports whether the ClassFlag* bit is set.
func (p *Extended) HasClassificationFlag(flag uint8) bool {
	return p.ClassificationFlags&flag != 0
}

// put writes b[0:30]. Bit fields are validated before anything is written.
func (p *Extended) put(b []byte) error {
	returns, err := PackExtendedReturns(p.ReturnNumber, p.NumberOfReturns)
	if err != nil {
		return err
	}

	flags, err := PackExtendedFlags(p.ClassificationFlags, p.ScannerChannel, p.ScanDirection, p.EdgeOfFlightLine)
	if err != nil {
		return err
	}

	_ = b[format.ExtendedCoreSize-1]
	putXYZ(b, p.X, p.Y, p.Z)
	engine.PutUint16(b[12:14], p.Intensity)
	b[14] = returns
	b[15] = flags
	b[16] = p.Classification
	b[17] = p.UserData
	engine.PutUint16(b[18:20], uint16(p.ScanAngle)) //nolint: gosec
	engine.PutUint16(b[20:22], p.PointSourceID)
	endian.PutFloat64(engine, b[22:30], p.GPSTime)

	return nil
}

func (p *Extended) load(b []byte) {
	_ = b[format.ExtendedCoreSize-1]
	p.X, p.Y, p.Z = loadXYZ(b)
	p.Intensity = engine.Uint16(b[12:14])
	p.ReturnNumber, p.NumberOfReturns = UnpackExtendedReturns(b[14])
	p.ClassificationFlags, p.ScannerChannel, p.ScanDirection, p.EdgeOfFlightLine = UnpackExtendedFlags(b[15])
	p.Classification = b[16]
	p.UserData = b[17]
	p.ScanAngle = int16(engine.Uint16(b[18:20])) //nolint: gosec
	p.PointSourceID = engine.Uint16(b[20:22])
	p.GPSTime = endian.Float64(engine, b[22:30])
}

// Color is a 16-bit per channel RGB triplet.
type Color struct {
	Red, Green, Blue uint16
}

func (c *Color) put(b []byte) {
	_ = b[format.ColorSize-1]
	engine.PutUint16(b[0:2], c.Red)
	engine.PutUint16(b[2:4], c.Green)
	engine.PutUint16(b[4:6], c.Blue)
}

func (c *Color) load(b []byte) {
	_ = b[format.ColorSize-1]
	c.Red = engine.Uint16(b[0:2])
	c.Green = engine.Uint16(b[2:4])
	c.Blue = engine.Uint16(b[4:6])
}

// WavePacket is the fixed waveform descriptor. The waveform samples themselves are
// not decoded.
type WavePacket struct {
	DescriptorIndex     uint8
	ByteOffset          uint64 // offset of the waveform data packet
	PacketSize          uint32
	ReturnPointLocation float32 // picoseconds
	DX, DY, DZ          float32 // parametric line direction
}

func (w *WavePacket) put(b []byte) {
	_ = b[format.WavePacketSize-1]
	b[0] = w.DescriptorIndex
	engine.PutUint64(b[1:9], w.ByteOffset)
	engine.PutUint32(b[9:13], w.PacketSize)
	endian.PutFloat32(engine, b[13:17], w.ReturnPointLocation)
	endian.PutFloat32(engine, b[17:21], w.DX)
	endian.PutFloat32(engine, b[21:25], w.DY)
	endian.PutFloat32(engine, b[25:29], w.DZ)
}

func (w *WavePacket) load(b []byte) {
	_ = b[format.WavePacketSize-1]
	w.DescriptorIndex = b[0]
	w.ByteOffset = engine.Uint64(b[1:9])
	w.PacketSize = engine.Uint32(b[9:13])
	w.ReturnPointLocation = endian.Float32(engine, b[13:17])
	w.DX = endian.Float32(engine, b[17:21])
	w.DY = endian.Float32(engine, b[21:25])
	w.DZ = endian.Float32(engine, b[25:29])
}

func putXYZ(b []byte, x, y, z int32) {
	engine.PutUint32(b[0:4], uint32(x))  //nolint: gosec
	engine.PutUint32(b[4:8], uint32(y))  //nolint: gosec
	engine.PutUint32(b[8:12], uint32(z)) //nolint: gosec
}

func loadXYZ(b []byte) (x, y, z int32) {
	return int32(engine.Uint32(b[0:4])), int32(engine.Uint32(b[4:8])), int32(engine.Uint32(b[8:12])) //nolint: gosec
}
