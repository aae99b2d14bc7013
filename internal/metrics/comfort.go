package metrics

import (
	"github.com/san-kum/bemuq/internal/dynamo"
)

// BandFunc returns zone z's acceptable air temperature band at time t.
type BandFunc func(z int, t float64) (low, high float64)

// UnmetHours counts the hours during which any zone's air temperature lies
// outside its band by more than the tolerance. Zone z's air is x[2z].
type UnmetHours struct {
	name      string
	dt        float64
	zones     int
	tolerance float64
	band      BandFunc
	seconds   float64
}

func NewUnmetHours(dt float64, zones int, tolerance float64, band BandFunc) *UnmetHours {
	return &UnmetHours{
		name:      "unmet_hours",
		dt:        dt,
		zones:     zones,
		tolerance: tolerance,
		band:      band,
	}
}

func (m *UnmetHours) Name() string {
	return m.name
}

func (m *UnmetHours) Observe(x dynamo.State, u dynamo.Control, t float64) {
	for z := 0; z < m.zones; z++ {
		low, high := m.band(z, t)
		if air := x[2*z]; air < low-m.tolerance || air > high+m.tolerance {
			m.seconds += m.dt
			return
		}
	}
}

func (m *UnmetHours) Value() float64 {
	return m.seconds / 3600
}

func (m *UnmetHours) Reset() {
	m.seconds = 0
}
