package catalog

import (
	"errors"
	"math"
)

// Validate checks that s carries every shape parameter its distribution needs
// and that those parameters describe a proper distribution. Shape parameters
// the distribution does not use are ignored.
//
// A missing BaseValue on a Relative row is not an error here: it is usually
// filled in from the model during discovery and is checked at transform time.
func Validate(s ParameterSpec) error {
	if s.Kind == "" {
		return Errorf(ErrMalformed, s, "empty kind")
	}

	need := func(name string, v *float64) error {
		if v == nil {
			return Errorf(ErrMissingShape, s, "%s required by %s", name, s.Distribution)
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			return Errorf(ErrInvalidShape, s, "%s is not finite", name)
		}
		return nil
	}

	switch s.Distribution.Family {
	case Normal:
		if err := errors.Join(need("mean_or_mode", s.MeanOrMode), need("std_dev", s.StdDev)); err != nil {
			return err
		}
		if *s.StdDev < 0 {
			return Errorf(ErrInvalidShape, s, "std_dev %g is negative", *s.StdDev)
		}

	case Uniform:
		if err := errors.Join(need("min", s.Min), need("max", s.Max)); err != nil {
			return err
		}
		if *s.Max < *s.Min {
			return Errorf(ErrInvalidShape, s, "max %g below min %g", *s.Max, *s.Min)
		}

	case Triangular:
		if err := errors.Join(need("min", s.Min), need("max", s.Max), need("mean_or_mode", s.MeanOrMode)); err != nil {
			return err
		}
		if *s.Max < *s.Min {
			return Errorf(ErrInvalidShape, s, "max %g below min %g", *s.Max, *s.Min)
		}
		if *s.MeanOrMode < *s.Min || *s.MeanOrMode > *s.Max {
			return Errorf(ErrInvalidShape, s, "mode %g outside [%g, %g]", *s.MeanOrMode, *s.Min, *s.Max)
		}

	case LogNormal:
		if s.Distribution.IsRelative() {
			return Errorf(ErrUnknownDistribution, s, "LogNormal Relative is not defined")
		}
		if err := errors.Join(need("mean_or_mode", s.MeanOrMode), need("std_dev", s.StdDev)); err != nil {
			return err
		}
		if *s.StdDev < 0 {
			return Errorf(ErrInvalidShape, s, "log std_dev %g is negative", *s.StdDev)
		}

	default:
		return Errorf(ErrUnknownDistribution, s, "%s", s.Distribution)
	}

	if s.BaseValue != nil && (math.IsNaN(*s.BaseValue) || math.IsInf(*s.BaseValue, 0)) {
		return Errorf(ErrInvalidShape, s, "base_value is not finite")
	}
	return nil
}

// Validate checks every spec and reports all problems at once.
func (c *Catalog) Validate() error {
	var errs []error
	for _, s := range c.Specs {
		if err := Validate(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
