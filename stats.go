package lasf

import (
	"github.com/paulmach/orb"

	"github.com/arloliu/lasf/point"
	"github.com/arloliu/lasf/quant"
	"github.com/arloliu/lasf/section"
)

// stats accumulates the header counters of the records a Writer has encoded.
// Extents are taken from the quantized values, so the header bounds match what a
// reader dequantizes.
type stats struct {
	count    uint64
	byReturn [section.ExtendedReturnCount]uint64
	xy       orb.Bound
	minZ     float64
	maxZ     float64
}

func (s *stats) add(rec point.Record, p quant.Params) {
	pos := p.Dequantize(rec.Raw())
	pt := orb.Point{pos.X, pos.Y}

	if s.count == 0 {
		s.xy = orb.Bound{Min: pt, Max: pt}
		s.minZ, s.maxZ = pos.Z, pos.Z
	} else {
		s.xy = s.xy.Extend(pt)
		s.minZ = min(s.minZ, pos.Z)
		s.maxZ = max(s.maxZ, pos.Z)
	}
	s.count++

	if rn, _ := rec.Returns(); rn >= 1 && int(rn) <= section.ExtendedReturnCount {
		s.byReturn[rn-1]++
	}
}

func (s *stats) bounds() section.Bounds {
	if s.count == 0 {
		return section.Bounds{}
	}

	return section.Bounds{
		Min: quant.Vec3{X: s.xy.Min.X(), Y: s.xy.Min.Y(), Z: s.minZ},
		Max: quant.Vec3{X: s.xy.Max.X(), Y: s.xy.Max.Y(), Z: s.maxZ},
	}
}
