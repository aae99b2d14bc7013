package control

import (
	"math"

	"github.com/san-kum/bemuq/internal/dynamo"
)

// PIDThermostat drives a zone that has left its thermostat band back to the
// nearest band edge with one PID loop per zone. Inside the band the zone
// floats and its loop is reset. Gains are dimensionless and scale the zone
// gain C/ResponseTime + G, in W/K.
type PIDThermostat struct {
	bldg         Zoned
	ResponseTime float64 // s
	Kp           float64
	Ki           float64 // 1/s
	Kd           float64 // s
	HeatCapacity float64 // W per zone
	CoolCapacity float64 // W per zone

	loops []pidLoop
}

type pidLoop struct {
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPIDThermostat(b Zoned, responseTime float64) *PIDThermostat {
	loops := make([]pidLoop, b.Zones())
	for i := range loops {
		loops[i].first = true
	}
	return &PIDThermostat{
		bldg:         b,
		ResponseTime: responseTime,
		Kp:           1,
		Ki:           1 / responseTime,
		loops:        loops,
	}
}

func (c *PIDThermostat) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, len(c.loops))
	for z := range u {
		air := x[2*z]
		heat, cool := c.bldg.Setpoints(z)

		var target float64
		switch {
		case air < heat:
			target = heat
		case air > cool:
			target = cool
		default:
			c.loops[z] = pidLoop{first: true}
			continue
		}

		gain := c.bldg.AirCapacitance(z)/c.ResponseTime + c.bldg.AirConductance(z)
		q := gain * c.loops[z].step(target-air, t, c.Kp, c.Ki, c.Kd)
		if target == heat {
			u[z] = limit(math.Max(q, 0), c.HeatCapacity)
		} else {
			u[z] = -limit(math.Max(-q, 0), c.CoolCapacity)
		}
	}
	return u
}

func (l *pidLoop) step(err, t, kp, ki, kd float64) float64 {
	if l.first {
		l.prevErr = err
		l.prevT = t
		l.first = false
		return kp * err
	}

	dt := t - l.prevT
	if dt <= 0 {
		return kp*err + ki*l.integral
	}
	l.integral += err * dt
	derivative := (err - l.prevErr) / dt
	l.prevErr = err
	l.prevT = t
	return kp*err + ki*l.integral + kd*derivative
}
