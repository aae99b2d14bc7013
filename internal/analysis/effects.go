package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/bemuq/internal/catalog"
	"github.com/san-kum/bemuq/internal/design"
)

var ErrNotTrajectory = errors.New("analysis: design is not a set of one-at-a-time trajectories")

// stepTol separates a moved coordinate from float noise in an unmoved one.
const stepTol = 1e-12

// Effect holds the elementary-effects statistics of one parameter.
type Effect struct {
	Param   catalog.Identity
	Mean    float64
	MeanAbs float64
	Sigma   float64
	Effects []float64
}

// ElementaryEffects computes per-parameter statistics for one response per
// design row. The step size and direction of every move are read from the
// design points and measured on the unit grid, so a rescaled design divides
// by ±Δ, not by the rescaled step.
func ElementaryEffects(m *design.Matrix, responses []float64) ([]Effect, error) {
	p := m.Params
	if p <= 0 || m.Runs() == 0 || m.Runs()%(p+1) != 0 {
		return nil, fmt.Errorf("%w: %d runs for %d parameters", ErrNotTrajectory, m.Runs(), p)
	}
	if len(responses) != m.Runs() {
		return nil, fmt.Errorf("analysis: %d responses for %d runs", len(responses), m.Runs())
	}

	trajectories := m.Runs() / (p + 1)
	ee := make([][]float64, p)
	for i := range ee {
		ee[i] = make([]float64, 0, trajectories)
	}

	diff := make([]float64, p)
	for r := 0; r < trajectories; r++ {
		start := r * (p + 1)
		for s := 1; s <= p; s++ {
			before, after := start+s-1, start+s
			floats.SubTo(diff, m.Row(after), m.Row(before))

			moved := -1
			for i, d := range diff {
				if math.Abs(d) <= stepTol {
					continue
				}
				if moved >= 0 {
					return nil, fmt.Errorf("%w: trajectory %d step %d moves more than one coordinate", ErrNotTrajectory, r+1, s)
				}
				moved = i
			}
			if moved < 0 {
				return nil, fmt.Errorf("%w: trajectory %d step %d moves nothing", ErrNotTrajectory, r+1, s)
			}

			ee[moved] = append(ee[moved], (responses[after]-responses[before])/m.Unit(diff[moved]))
		}
	}

	out := make([]Effect, p)
	for i, e := range ee {
		if len(e) != trajectories {
			return nil, fmt.Errorf("%w: parameter %d moved %d times in %d trajectories", ErrNotTrajectory, i+1, len(e), trajectories)
		}
		out[i] = summarizeEffects(e)
	}
	return out, nil
}

func summarizeEffects(e []float64) Effect {
	abs := make([]float64, len(e))
	for i, v := range e {
		abs[i] = math.Abs(v)
	}

	mean, _ := stats.Mean(e)
	meanAbs, _ := stats.Mean(abs)

	sigma := 0.0
	if len(e) > 1 {
		sigma, _ = stats.StandardDeviationSample(e)
	}
	return Effect{Mean: mean, MeanAbs: meanAbs, Sigma: sigma, Effects: e}
}
