package quant

import (
	"fmt"
	"math"

	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/internal/options"
	"github.com/arloliu/lasf/internal/pool"
)

const (
	// Int32Digits is the number of decimal digits every quantized integer may use.
	// Any integer below 10^9 fits an int32.
	Int32Digits = 9
	// MaxSignificantDigits bounds integer digits plus decimals of a coordinate so that
	// values spanning many orders of magnitude stay within float64 precision.
	MaxSignificantDigits = 14

	// resolutionTolerance is how close (in scale units) a value must be to a grid
	// point for a resolution to count as exhibited by the data.
	resolutionTolerance = 1e-6
)

// EstimateConfig holds the estimator policy knobs.
type EstimateConfig struct {
	maxDecimals int
	zScale      float64
}

// EstimateOption configures the scale/offset estimator.
type EstimateOption = options.Option[*EstimateConfig]

// WithMaxDecimals caps the number of decimals (scale >= 10^-n) on every estimated axis.
func WithMaxDecimals(n int) EstimateOption {
	return options.New(func(c *EstimateConfig) error {
		if n < 0 || n > Int32Digits {
			return errs.OutOfRange("max decimals", int64(n), 0, Int32Digits)
		}
		c.maxDecimals = n

		return nil
	})
}

// WithZScale uses a fixed scale on the Z axis, e.g. 0.01 for centimeter elevations.
// The Z offset is still floor(min Z).
func WithZScale(scale float64) EstimateOption {
	return options.New(func(c *EstimateConfig) error {
		if err := (Axis{Scale: scale}).Validate(); err != nil {
			return err
		}
		c.zScale = scale

		return nil
	})
}

func newEstimateConfig(opts []EstimateOption) (*EstimateConfig, error) {
	cfg := &EstimateConfig{maxDecimals: Int32Digits}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EstimateAxis derives scale and offset for one axis.
//
// Policy:
//   - offset = floor(min)
//   - decimals = Int32Digits - integer digits of (max - offset), so raw integers stay below 10^9
//   - decimals is lowered so integer digits of max(|min|, |max|) + decimals <= MaxSignificantDigits
//   - decimals is lowered to the coarsest resolution at which every value sits on the grid
//   - scale = 10^-decimals (decimals may be negative for spans of 10^9 or more)
//
// An empty input returns DefaultAxis. A zero span yields a valid, non-zero scale.
func EstimateAxis(values []float64, opts ...EstimateOption) (Axis, error) {
	cfg, err := newEstimateConfig(opts)
	if err != nil {
		return Axis{}, err
	}

	return estimateAxis(values, cfg.maxDecimals)
}

// Estimate derives per-axis parameters for a batch of coordinates.
func Estimate(points []Vec3, opts ...EstimateOption) (Params, error) {
	cfg, err := newEstimateConfig(opts)
	if err != nil {
		return Params{}, err
	}

	if len(points) == 0 {
		p := DefaultParams()
		if cfg.zScale > 0 {
			p.Z.Scale = cfg.zScale
		}

		return p, nil
	}

	xs, putX := pool.GetFloat64Slice(len(points))
	defer putX()
	ys, putY := pool.GetFloat64Slice(len(points))
	defer putY()
	zs, putZ := pool.GetFloat64Slice(len(points))
	defer putZ()

	for i, pt := range points {
		xs[i], ys[i], zs[i] = pt.X, pt.Y, pt.Z
	}

	var p Params
	if p.X, err = estimateAxis(xs, cfg.maxDecimals); err != nil {
		return Params{}, fmt.Errorf("x axis: %w", err)
	}
	if p.Y, err = estimateAxis(ys, cfg.maxDecimals); err != nil {
		return Params{}, fmt.Errorf("y axis: %w", err)
	}

	if cfg.zScale > 0 {
		p.Z, err = fixedAxis(zs, cfg.zScale)
	} else {
		p.Z, err = estimateAxis(zs, cfg.maxDecimals)
	}
	if err != nil {
		return Params{}, fmt.Errorf("z axis: %w", err)
	}

	return p, nil
}

func estimateAxis(values []float64, maxDecimals int) (Axis, error) {
	if len(values) == 0 {
		return DefaultAxis, nil
	}

	lo, hi, err := extent(values)
	if err != nil {
		return Axis{}, err
	}

	offset := math.Floor(lo)
	decimals := Int32Digits - intDigits(hi-offset)

	if mag := intDigits(math.Max(math.Abs(lo), math.Abs(hi))); mag+decimals > MaxSignificantDigits {
		decimals = MaxSignificantDigits - mag
	}

	decimals = min(decimals, maxDecimals)

	for d := 0; d < decimals; d++ {
		if onGrid(values, offset, d) {
			decimals = d
			break
		}
	}

	return Axis{Scale: math.Pow10(-decimals), Offset: offset}, nil
}

func fixedAxis(values []float64, scale float64) (Axis, error) {
	lo, hi, err := extent(values)
	if err != nil {
		return Axis{}, err
	}

	a := Axis{Scale: scale, Offset: math.Floor(lo)}
	if _, err := a.quantize("z", hi); err != nil {
		return Axis{}, err
	}

	return a, nil
}

func extent(values []float64) (lo, hi float64, err error) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, fmt.Errorf("%w: coordinate is not finite", errs.ErrOutOfRange)
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	return lo, hi, nil
}

// intDigits returns the number of integer digits of |v|, at least 1.
func intDigits(v float64) int {
	v = math.Abs(v)
	d := 1
	for limit := 10.0; v >= limit; limit *= 10 {
		d++
	}

	return d
}

// onGrid reports whether every value is a multiple of 10^-d away from offset.
func onGrid(values []float64, offset float64, d int) bool {
	p := math.Pow10(d)
	for _, v := range values {
		r := (v - offset) * p
		if math.Abs(r-math.Round(r)) > resolutionTolerance {
			return false
		}
	}

	return true
}
