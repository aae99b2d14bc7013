package design

import (
	"math"
	"math/rand"
)

const (
	DefaultMorrisLower = 0.05
	DefaultMorrisUpper = 0.95

	gridTol = 1e-12
)

// MorrisConfig describes a one-factor-at-a-time trajectory design.
type MorrisConfig struct {
	Trajectories int `yaml:"trajectories" json:"trajectories"`
	Levels       int `yaml:"levels" json:"levels"`
	// GridJump is the perturbation size in grid steps. Zero means Levels/2,
	// which gives the usual Δ = L / (2(L-1)).
	GridJump float64 `yaml:"grid_jump" json:"grid_jump"`
	// Lower and Upper bound the design range the unit grid is rescaled into.
	// Both zero selects [0.05, 0.95].
	Lower float64 `yaml:"lower" json:"lower"`
	Upper float64 `yaml:"upper" json:"upper"`
}

func DefaultMorrisConfig() MorrisConfig {
	return MorrisConfig{
		Trajectories: 10,
		Levels:       4,
		Lower:        DefaultMorrisLower,
		Upper:        DefaultMorrisUpper,
	}
}

func (c MorrisConfig) withDefaults() MorrisConfig {
	if c.Lower == 0 && c.Upper == 0 {
		c.Lower, c.Upper = DefaultMorrisLower, DefaultMorrisUpper
	}
	if c.GridJump == 0 {
		c.GridJump = float64(c.Levels) / 2
	}
	return c
}

// Delta is the perturbation on the unit grid.
func (c MorrisConfig) Delta() float64 {
	c = c.withDefaults()
	if c.Levels < 2 {
		return math.NaN()
	}
	return c.GridJump / float64(c.Levels-1)
}

// Span is the width of the design range, Upper-Lower.
func (c MorrisConfig) Span() float64 {
	c = c.withDefaults()
	return c.Upper - c.Lower
}

// Step is the perturbation in design coordinates, after rescaling the unit
// grid into [Lower, Upper]. On the unit grid every move is exactly Delta.
func (c MorrisConfig) Step() float64 {
	return c.Delta() * c.Span()
}

// Runs is the number of design points, R·(P+1).
func (c MorrisConfig) Runs(params int) int {
	return c.Trajectories * (params + 1)
}

func (c MorrisConfig) Validate(params int) error {
	c = c.withDefaults()
	if params <= 0 {
		return invalid("params", params, "must be positive")
	}
	if c.Trajectories <= 0 {
		return invalid("trajectories", c.Trajectories, "must be positive")
	}
	if c.Levels < 2 {
		return invalid("levels", c.Levels, "need at least 2 levels")
	}
	if c.GridJump <= 0 {
		return invalid("grid_jump", c.GridJump, "must be positive")
	}
	if d := c.Delta(); d > 1+gridTol {
		return invalid("grid_jump", c.GridJump, "perturbation exceeds the unit range")
	}
	if c.Lower < 0 || c.Upper > 1 || c.Lower >= c.Upper {
		return invalid("range", [2]float64{c.Lower, c.Upper}, "need 0 <= lower < upper <= 1")
	}
	return nil
}

// MorrisDesign is a Morris design matrix with the settings that produced it.
// Trajectory r occupies rows r*(P+1) .. r*(P+1)+P.
type MorrisDesign struct {
	*Matrix
	Config MorrisConfig
	Delta  float64
	Step   float64
}

func (d *MorrisDesign) Trajectories() int { return d.Config.Trajectories }

// Trajectory returns the P+1 points of trajectory r.
func (d *MorrisDesign) Trajectory(r int) [][]float64 {
	k := d.Params + 1
	return d.Points[r*k : (r+1)*k]
}

// Morris builds R independent trajectories on the L-level grid. Each one
// starts at a random grid point and moves every coordinate exactly once, in
// random order, by ±Δ, choosing the direction that keeps the point in [0,1].
// The unit grid is finally rescaled into [Lower, Upper].
func Morris(rng *rand.Rand, params int, cfg MorrisConfig) (*MorrisDesign, error) {
	if err := cfg.Validate(params); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	delta := cfg.Delta()
	span := cfg.Upper - cfg.Lower
	k := params + 1
	m := NewMatrix(cfg.Trajectories*k, params)

	levels := gridLevels(cfg.Levels)
	feasible := make([]float64, 0, len(levels))
	for _, x := range levels {
		if x+delta <= 1+gridTol || x-delta >= -gridTol {
			feasible = append(feasible, x)
		}
	}

	for r := 0; r < cfg.Trajectories; r++ {
		traj := m.Points[r*k : (r+1)*k]

		base := traj[0]
		for i := range base {
			base[i] = feasible[rng.Intn(len(feasible))]
		}

		signs := make([]float64, params)
		for i, x := range base {
			up := x+delta <= 1+gridTol
			down := x-delta >= -gridTol
			switch {
			case up && down:
				if rng.Intn(2) == 0 {
					signs[i] = 1
				} else {
					signs[i] = -1
				}
			case up:
				signs[i] = 1
			default:
				signs[i] = -1
			}
		}

		order := rng.Perm(params)
		for s, i := range order {
			copy(traj[s+1], traj[s])
			traj[s+1][i] = clamp01(traj[s][i] + signs[i]*delta)
		}
	}

	for _, row := range m.Points {
		for i, x := range row {
			row[i] = cfg.Lower + x*span
		}
	}
	m.Range = span

	return &MorrisDesign{
		Matrix: m,
		Config: cfg,
		Delta:  delta,
		Step:   delta * span,
	}, nil
}

func gridLevels(n int) []float64 {
	levels := make([]float64, n)
	for i := range levels {
		levels[i] = float64(i) / float64(n-1)
	}
	return levels
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
