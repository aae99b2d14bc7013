package physics

import "math"

const (
	secondsPerHour = 3600.0
	secondsPerDay  = 86400.0
)

// Climate is a repeating synthetic design day.
type Climate struct {
	MeanTemperature float64 // C
	DailyAmplitude  float64 // K, half the daily swing
	SolarPeak       float64 // W/m2 at solar noon
}

func hourOfDay(t float64) float64 {
	return math.Mod(t, secondsPerDay) / secondsPerHour
}

// Outdoor peaks at 15:00 and bottoms out at 03:00.
func (c Climate) Outdoor(t float64) float64 {
	h := hourOfDay(t)
	return c.MeanTemperature + c.DailyAmplitude*math.Sin(2*math.Pi*(h-9)/24)
}

// Solar is a half sine between 06:00 and 18:00.
func (c Climate) Solar(t float64) float64 {
	h := hourOfDay(t)
	if h <= 6 || h >= 18 {
		return 0
	}
	return c.SolarPeak * math.Sin(math.Pi*(h-6)/12)
}

// Occupied reports office hours, 08:00-18:00 Monday to Friday. The run
// starts on a Monday at midnight.
func Occupied(t float64) bool {
	day := int(t/secondsPerDay) % 7
	if day >= 5 {
		return false
	}
	h := hourOfDay(t)
	return h >= 8 && h < 18
}

// Schedule fractions applied to peak internal gains.
type Schedule struct {
	Occupied   float64
	Unoccupied float64
}

func (s Schedule) At(t float64) float64 {
	if Occupied(t) {
		return s.Occupied
	}
	return s.Unoccupied
}

var (
	peopleSchedule    = Schedule{Occupied: 1, Unoccupied: 0}
	lightsSchedule    = Schedule{Occupied: 0.9, Unoccupied: 0.05}
	equipmentSchedule = Schedule{Occupied: 0.9, Unoccupied: 0.3}
	fanSchedule       = Schedule{Occupied: 1, Unoccupied: 0}
)
