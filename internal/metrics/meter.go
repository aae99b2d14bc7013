package metrics

import (
	"github.com/san-kum/bemuq/internal/dynamo"
)

const joulesPerKWh = 3.6e6

// RateFunc returns a power in W for the state and control at time t.
type RateFunc func(x dynamo.State, u dynamo.Control, t float64) float64

// Meter integrates a power over the run and reports kWh. Each observation
// stands for one step of length dt.
type Meter struct {
	name   string
	dt     float64
	rate   RateFunc
	joules float64
}

func NewMeter(name string, dt float64, rate RateFunc) *Meter {
	return &Meter{name: name, dt: dt, rate: rate}
}

func (m *Meter) Name() string { return m.name }

func (m *Meter) Observe(x dynamo.State, u dynamo.Control, t float64) {
	m.joules += m.rate(x, u, t) * m.dt
}

func (m *Meter) Value() float64 {
	return m.joules / joulesPerKWh
}

func (m *Meter) Reset() {
	m.joules = 0
}

// Sum adds the rates of several meters.
func Sum(rates ...RateFunc) RateFunc {
	return func(x dynamo.State, u dynamo.Control, t float64) float64 {
		total := 0.0
		for _, r := range rates {
			total += r(x, u, t)
		}
		return total
	}
}

// Heating is the positive part of every control input.
func Heating(x dynamo.State, u dynamo.Control, t float64) float64 {
	total := 0.0
	for _, v := range u {
		if v > 0 {
			total += v
		}
	}
	return total
}

// Cooling is the magnitude of the negative part of every control input.
func Cooling(x dynamo.State, u dynamo.Control, t float64) float64 {
	total := 0.0
	for _, v := range u {
		if v < 0 {
			total -= v
		}
	}
	return total
}

// Scaled divides a rate by an efficiency.
func Scaled(r RateFunc, efficiency float64) RateFunc {
	return func(x dynamo.State, u dynamo.Control, t float64) float64 {
		return r(x, u, t) / efficiency
	}
}
