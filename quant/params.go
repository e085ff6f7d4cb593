// Package quant implements the LAS integer quantization scheme.
//
// A coordinate is stored as raw = round((v - offset) / scale) in an int32 and is
// recovered as v = raw*scale + offset. Rounding is half-up so that Dequantize is the
// exact inverse of Quantize to within half a scale step.
package quant

import (
	"fmt"
	"math"

	"github.com/arloliu/lasf/errs"
)

// Vec3 is a real-world coordinate triple.
type Vec3 struct {
	X, Y, Z float64
}

// Axis holds the quantization parameters of one axis.
type Axis struct {
	Scale  float64
	Offset float64
}

// DefaultAxis is used when there is nothing to estimate from (millimeter resolution, zero offset).
var DefaultAxis = Axis{Scale: 0.001, Offset: 0}

// Validate checks that the scale is positive and both values are finite.
func (a Axis) Validate() error {
	if !(a.Scale > 0) || math.IsInf(a.Scale, 0) || math.IsNaN(a.Offset) || math.IsInf(a.Offset, 0) {
		return fmt.Errorf("%w: invalid quantization axis scale=%g offset=%g", errs.ErrOutOfRange, a.Scale, a.Offset)
	}

	return nil
}

// Quantize maps v to its stored integer.
// Returns a *errs.RangeError when the result does not fit an int32.
func (a Axis) Quantize(v float64) (int32, error) {
	return a.quantize("coordinate", v)
}

func (a Axis) quantize(field string, v float64) (int32, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", errs.ErrOutOfRange, field)
	}

	q := math.Floor((v-a.Offset)/a.Scale + 0.5)
	if q < math.MinInt32 || q > math.MaxInt32 {
		return 0, errs.OutOfRange(field, saturate(q), math.MinInt32, math.MaxInt32)
	}

	return int32(q), nil
}

// Dequantize maps a stored integer back to a real value.
func (a Axis) Dequantize(raw int32) float64 {
	return float64(raw)*a.Scale + a.Offset
}

// Params holds the quantization parameters of all three axes.
type Params struct {
	X, Y, Z Axis
}

// DefaultParams returns DefaultAxis on every axis.
func DefaultParams() Params {
	return Params{X: DefaultAxis, Y: DefaultAxis, Z: DefaultAxis}
}

// Uniform returns parameters sharing one scale and offset triple.
func Uniform(scale float64, offset Vec3) Params {
	return Params{
		X: Axis{Scale: scale, Offset: offset.X},
		Y: Axis{Scale: scale, Offset: offset.Y},
		Z: Axis{Scale: scale, Offset: offset.Z},
	}
}

// Validate validates every axis.
func (p Params) Validate() error {
	for _, a := range [...]Axis{p.X, p.Y, p.Z} {
		if err := a.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Quantize maps a coordinate triple to its stored integers.
func (p Params) Quantize(v Vec3) (x, y, z int32, err error) {
	if x, err = p.X.quantize("x", v.X); err != nil {
		return 0, 0, 0, err
	}
	if y, err = p.Y.quantize("y", v.Y); err != nil {
		return 0, 0, 0, err
	}
	if z, err = p.Z.quantize("z", v.Z); err != nil {
		return 0, 0, 0, err
	}

	return x, y, z, nil
}

// Dequantize maps stored integers back to a coordinate triple.
func (p Params) Dequantize(x, y, z int32) Vec3 {
	return Vec3{X: p.X.Dequantize(x), Y: p.Y.Dequantize(y), Z: p.Z.Dequantize(z)}
}

func saturate(q float64) int64 {
	switch {
	case q >= math.MaxInt64:
		return math.MaxInt64
	case q <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(q)
	}
}
