package design

import (
	"math"
	"math/rand"
)

type LHSConfig struct {
	Runs int `yaml:"runs" json:"runs"`
	// Centered places every sample at its stratum midpoint instead of a
	// uniformly jittered position inside the stratum.
	Centered bool `yaml:"centered" json:"centered"`
}

func (c LHSConfig) Validate(params int) error {
	if params <= 0 {
		return invalid("params", params, "must be positive")
	}
	if c.Runs <= 0 {
		return invalid("runs", c.Runs, "must be positive")
	}
	return nil
}

// LatinHypercube draws a runs x params Latin Hypercube design on [0,1).
// Each column is an independent random permutation of the strata
// [k/N, (k+1)/N), so every stratum holds exactly one sample per parameter.
func LatinHypercube(rng *rand.Rand, params int, cfg LHSConfig) (*Matrix, error) {
	if err := cfg.Validate(params); err != nil {
		return nil, err
	}

	n := cfg.Runs
	m := NewMatrix(n, params)
	for j := 0; j < params; j++ {
		perm := rng.Perm(n)
		for i := 0; i < n; i++ {
			u := 0.5
			if !cfg.Centered {
				u = rng.Float64()
			}
			m.Points[i][j] = stratum(perm[i], u, n)
		}
	}
	return m, nil
}

func stratum(k int, u float64, n int) float64 {
	v := (float64(k) + u) / float64(n)
	if hi := float64(k+1) / float64(n); v >= hi {
		v = math.Nextafter(hi, 0)
	}
	return v
}
