// Package dist maps design-space quantiles to physical parameter values by
// inverting each parameter's prior distribution.
//
// The transform is pure and deterministic: all randomness lives in the design
// generator, so a seeded design always produces the same physical values.
package dist

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/bemuq/internal/catalog"
)

var (
	// ErrQuantileRange indicates a quantile outside [0, 1].
	ErrQuantileRange = errors.New("dist: quantile outside [0, 1]")

	// ErrNonFinite indicates the inverse CDF produced an infinite value,
	// e.g. a Normal evaluated at quantile 0 or 1.
	ErrNonFinite = errors.New("dist: non-finite parameter value")
)

// Quantiler is the inverse CDF of a fully parameterized distribution.
type Quantiler interface {
	Quantile(p float64) float64
}

// Resolve builds the quantile function for spec, applying the base-value
// scaling of Relative variants. The row is validated first, so a malformed
// catalog row never yields a usable quantiler.
func Resolve(spec catalog.ParameterSpec) (Quantiler, error) {
	if err := catalog.Validate(spec); err != nil {
		return nil, err
	}

	scale := 1.0
	if spec.Distribution.IsRelative() {
		if spec.BaseValue == nil {
			return nil, catalog.Errorf(catalog.ErrMissingShape, spec, "base_value required by %s", spec.Distribution)
		}
		scale = *spec.BaseValue
	}

	switch spec.Distribution.Family {
	case catalog.Normal:
		mu := *spec.MeanOrMode * scale
		sigma := *spec.StdDev * math.Abs(scale)
		if sigma == 0 {
			return constant(mu), nil
		}
		return distuv.Normal{Mu: mu, Sigma: sigma}, nil

	case catalog.Uniform:
		return distuv.Uniform{Min: *spec.Min * scale, Max: *spec.Max * scale}, nil

	case catalog.Triangular:
		a, b, c := *spec.Min*scale, *spec.Max*scale, *spec.MeanOrMode*scale
		if a > b {
			a, b = b, a
		}
		if a == b {
			return constant(a), nil
		}
		return distuv.NewTriangle(a, b, c, nil), nil

	case catalog.LogNormal:
		if *spec.StdDev == 0 {
			return constant(math.Exp(*spec.MeanOrMode)), nil
		}
		return distuv.LogNormal{Mu: *spec.MeanOrMode, Sigma: *spec.StdDev}, nil
	}

	return nil, catalog.Errorf(catalog.ErrUnknownDistribution, spec, "%s", spec.Distribution)
}

// Invert evaluates the inverse CDF of spec at each quantile.
func Invert(spec catalog.ParameterSpec, quantiles []float64) ([]float64, error) {
	q, err := Resolve(spec)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(quantiles))
	for i, p := range quantiles {
		v, err := eval(q, p)
		if err != nil {
			return nil, fmt.Errorf("%s at quantile %d: %w", spec.Identity(), i, err)
		}
		values[i] = v
	}
	return values, nil
}

// InvertOne evaluates the inverse CDF of spec at a single quantile.
func InvertOne(spec catalog.ParameterSpec, p float64) (float64, error) {
	q, err := Resolve(spec)
	if err != nil {
		return 0, err
	}
	v, err := eval(q, p)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", spec.Identity(), err)
	}
	return v, nil
}

// Eval applies q at p with range and finiteness checks.
func Eval(q Quantiler, p float64) (float64, error) {
	return eval(q, p)
}

func eval(q Quantiler, p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: %g", ErrQuantileRange, p)
	}
	v := q.Quantile(p)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w at quantile %g", ErrNonFinite, p)
	}
	return v, nil
}

type constant float64

func (c constant) Quantile(float64) float64 { return float64(c) }
