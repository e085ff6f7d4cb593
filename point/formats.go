package point

import (
	"github.com/arloliu/lasf/endian"
	"github.com/arloliu/lasf/format"
)

// Field offsets after the core.
const (
	legacyTail   = format.LegacyCoreSize
	extendedTail = format.ExtendedCoreSize
)

// Point0 is format 0: the legacy core only.
type Point0 struct {
	Legacy
}

// Point1 is format 0 plus GPS time.
type Point1 struct {
	Legacy
	GPSTime float64
}

// Point2 is format 0 plus RGB.
type Point2 struct {
	Legacy
	Color
}

// Point3 is format 0 plus GPS time and RGB.
type Point3 struct {
	Legacy
	GPSTime float64
	Color
}

// Point4 is format 1 plus a wave packet descriptor.
type Point4 struct {
	Legacy
	GPSTime float64
	WavePacket
}

// Point5 is format 3 plus a wave packet descriptor.
type Point5 struct {
	Legacy
	GPSTime float64
	Color
	WavePacket
}

// Point6 is the extended core only.
type Point6 struct {
	Extended
}

// Point7 is format 6 plus RGB.
type Point7 struct {
	Extended
	Color
}

// Point8 is format 7 plus near infrared.
type Point8 struct {
	Extended
	Color
	NIR uint16
}

// Point9 is format 6 plus a wave packet descriptor.
type Point9 struct {
	Extended
	WavePacket
}

// Point10 is format 8 plus a wave packet descriptor.
type Point10 struct {
	Extended
	Color
	NIR uint16
	WavePacket
}

var (
	_ Record = (*Point0)(nil)
	_ Record = (*Point1)(nil)
	_ Record = (*Point2)(nil)
	_ Record = (*Point3)(nil)
	_ Record = (*Point4)(nil)
	_ Record = (*Point5)(nil)
	_ Record = (*Point6)(nil)
	_ Record = (*Point7)(nil)
	_ Record = (*Point8)(nil)
	_ Record = (*Point9)(nil)
	_ Record = (*Point10)(nil)
)

func (*Point0) Format() format.PointFormat  { return format.Point0 }
func (*Point1) Format() format.PointFormat  { return format.Point1 }
func (*Point2) Format() format.PointFormat  { return format.Point2 }
func (*Point3) Format() format.PointFormat  { return format.Point3 }
func (*Point4) Format() format.PointFormat  { return format.Point4 }
func (*Point5) Format() format.PointFormat  { return format.Point5 }
func (*Point6) Format() format.PointFormat  { return format.Point6 }
func (*Point7) Format() format.PointFormat  { return format.Point7 }
func (*Point8) Format() format.PointFormat  { return format.Point8 }
func (*Point9) Format() format.PointFormat  { return format.Point9 }
func (*Point10) Format() format.PointFormat { return format.Point10 }

func (p *Point0) put(b []byte) error { return p.Legacy.put(b) }
func (p *Point0) load(b []byte)      { p.Legacy.load(b) }

func (p *Point1) put(b []byte) error {
	if err := p.Legacy.put(b); err != nil {
		return err
	}
	endian.PutFloat64(engine, b[legacyTail:], p.GPSTime)

	return nil
}

func (p *Point1) load(b []byte) {
	p.Legacy.load(b)
	p.GPSTime = endian.Float64(engine, b[legacyTail:])
}

func (p *Point2) put(b []byte) error {
	if err := p.Legacy.put(b); err != nil {
		return err
	}
	p.Color.put(b[legacyTail:])

	return nil
}

func (p *Point2) load(b []byte) {
	p.Legacy.load(b)
	p.Color.load(b[legacyTail:])
}

func (p *Point3) put(b []byte) error {
	if err := p.Legacy.put(b); err != nil {
		return err
	}
	endian.PutFloat64(engine, b[legacyTail:], p.GPSTime)
	p.Color.put(b[legacyTail+format.GPSTimeSize:])

	return nil
}

func (p *Point3) load(b []byte) {
	p.Legacy.load(b)
	p.GPSTime = endian.Float64(engine, b[legacyTail:])
	p.Color.load(b[legacyTail+format.GPSTimeSize:])
}

func (p *Point4) put(b []byte) error {
	if err := p.Legacy.put(b); err != nil {
		return err
	}
	endian.PutFloat64(engine, b[legacyTail:], p.GPSTime)
	p.WavePacket.put(b[legacyTail+format.GPSTimeSize:])

	return nil
}

func (p *Point4) load(b []byte) {
	p.Legacy.load(b)
	p.GPSTime = endian.Float64(engine, b[legacyTail:])
	p.WavePacket.load(b[legacyTail+format.GPSTimeSize:])
}

func (p *Point5) put(b []byte) error {
	if err := p.Legacy.put(b); err != nil {
		return err
	}
	endian.PutFloat64(engine, b[legacyTail:], p.GPSTime)
	p.Color.put(b[legacyTail+format.GPSTimeSize:])
	p.WavePacket.put(b[legacyTail+format.GPSTimeSize+format.ColorSize:])

	return nil
}

func (p *Point5) load(b []byte) {
	p.Legacy.load(b)
	p.GPSTime = endian.Float64(engine, b[legacyTail:])
	p.Color.load(b[legacyTail+format.GPSTimeSize:])
	p.WavePacket.load(b[legacyTail+format.GPSTimeSize+format.ColorSize:])
}

func (p *Point6) put(b []byte) error { return p.Extended.put(b) }
func (p *Point6) load(b []byte)      { p.Extended.load(b) }

func (p *Point7) put(b []byte) error {
	if err := p.Extended.put(b); err != nil {
		return err
	}
	p.Color.put(b[extendedTail:])

	return nil
}

func (p *Point7) load(b []byte) {
	p.Extended.load(b)
	p.Color.load(b[extendedTail:])
}

func (p *Point8) put(b []byte) error {
	if err := p.Extended.put(b); err != nil {
		return err
	}
	p.Color.put(b[extendedTail:])
	engine.PutUint16(b[extendedTail+format.ColorSize:], p.NIR)

	return nil
}

func (p *Point8) load(b []byte) {
	p.Extended.load(b)
	p.Color.load(b[extendedTail:])
	p.NIR = engine.Uint16(b[extendedTail+format.ColorSize:])
}

func (p *Point9) put(b []byte) error {
	if err := p.Extended.put(b); err != nil {
		return err
	}
	p.WavePacket.put(b[extendedTail:])

	return nil
}

func (p *Point9) load(b []byte) {
	p.Extended.load(b)
	p.WavePacket.load(b[extendedTail:])
}

func (p *Point10) put(b []byte) error {
	if err := p.Extended.put(b); err != nil {
		return err
	}
	p.Color.put(b[extendedTail:])
	engine.PutUint16(b[extendedTail+format.ColorSize:], p.NIR)
	p.WavePacket.put(b[extendedTail+format.ColorSize+format.NIRSize:])

	return nil
}

func (p *Point10) load(b []byte) {
	p.Extended.load(b)
	p.Color.load(b[extendedTail:])
	p.NIR = engine.Uint16(b[extendedTail+format.ColorSize:])
	p.WavePacket.load(b[extendedTail+format.ColorSize+format.NIRSize:])
}
