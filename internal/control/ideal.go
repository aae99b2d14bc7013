package control

import (
	"math"

	"github.com/san-kum/bemuq/internal/dynamo"
)

// Zoned is what IdealLoads needs to know about the building. Zone z's air
// temperature is x[2z] and its passive gain is linear in that temperature
// with slope -AirConductance(z).
type Zoned interface {
	Zones() int
	AirCapacitance(z int) float64
	AirConductance(z int) float64
	Setpoints(z int) (heating, cooling float64)
	PassiveAirGain(x dynamo.State, t float64, z int) float64
}

// IdealLoads supplies the heating or cooling that holds each zone at the
// edge of its thermostat band, plus a recovery term that closes any offset
// within ResponseTime. A zone whose free-floating equilibrium lies inside the
// band gets nothing. Capacities of 0 are unlimited.
type IdealLoads struct {
	bldg         Zoned
	ResponseTime float64 // s
	HeatCapacity float64 // W per zone
	CoolCapacity float64 // W per zone
}

func NewIdealLoads(b Zoned, responseTime float64) *IdealLoads {
	return &IdealLoads{bldg: b, ResponseTime: responseTime}
}

func (c *IdealLoads) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, c.bldg.Zones())
	for z := range u {
		air := x[2*z]
		heat, cool := c.bldg.Setpoints(z)
		g := c.bldg.AirConductance(z)
		recovery := c.bldg.AirCapacitance(z) / c.ResponseTime

		// temperature the air would settle at without HVAC
		eq := air + c.bldg.PassiveAirGain(x, t, z)/g

		switch {
		case eq < heat:
			q := g*(heat-eq) + recovery*(heat-air)
			u[z] = limit(math.Max(q, 0), c.HeatCapacity)
		case eq > cool:
			q := g*(cool-eq) + recovery*(cool-air)
			u[z] = -limit(math.Max(-q, 0), c.CoolCapacity)
		}
	}
	return u
}

func limit(q, capacity float64) float64 {
	if capacity > 0 {
		return math.Min(q, capacity)
	}
	return q
}
