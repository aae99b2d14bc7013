package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

type Controller interface {
	Compute(x State, t float64) Control
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

// Config times are in seconds. Metrics are not observed before Warmup.
type Config struct {
	Dt            float64
	Duration      float64
	Warmup        float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            600,
		Duration:      14 * 86400,
		Warmup:        2 * 86400,
		ValidateState: true,
	}
}

type Result struct {
	Final      State
	Metrics    map[string]float64
	StepsTaken int
}
