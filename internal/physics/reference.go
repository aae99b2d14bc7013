package physics

import (
	"context"
	"fmt"

	"github.com/san-kum/bemuq/internal/control"
	"github.com/san-kum/bemuq/internal/dynamo"
	"github.com/san-kum/bemuq/internal/integrators"
	"github.com/san-kum/bemuq/internal/metrics"
	"github.com/san-kum/bemuq/internal/model"
)

// Meter names reported by Reference.
const (
	HeatingKWh     = "heating_kwh"
	CoolingKWh     = "cooling_kwh"
	FanKWh         = "fan_kwh"
	LightsKWh      = "lights_kwh"
	EquipmentKWh   = "equipment_kwh"
	TotalKWh       = "total_kwh"
	PeakHeatingKW  = "peak_heating_kw"
	UnmetHoursName = "unmet_hours"
)

// Meters lists the responses of one Reference run in output order.
func Meters() []string {
	return []string{HeatingKWh, CoolingKWh, FanKWh, LightsKWh, EquipmentKWh, TotalKWh, PeakHeatingKW, UnmetHoursName}
}

// Options control a reference run. Times are in days and seconds as named.
type Options struct {
	Days         float64 `yaml:"days"`
	WarmupDays   float64 `yaml:"warmup_days"`
	Step         float64 `yaml:"step_seconds"`
	ResponseTime float64 `yaml:"response_seconds"`
	Integrator   string  `yaml:"integrator"`
	// Control selects the HVAC controller: ideal, pid or none.
	Control   string `yaml:"control"`
	FreeFloat bool   `yaml:"free_float"`
}

// Controllers accepted by Options.Control.
const (
	ControlIdeal = "ideal"
	ControlPID   = "pid"
	ControlNone  = "none"
)

func DefaultOptions() Options {
	return Options{
		Days:         14,
		WarmupDays:   2,
		Step:         300,
		ResponseTime: 900,
		Integrator:   "rk4",
		Control:      ControlIdeal,
	}
}

func (o Options) config() dynamo.Config {
	return dynamo.Config{
		Dt:            o.Step,
		Duration:      o.Days * secondsPerDay,
		Warmup:        o.WarmupDays * secondsPerDay,
		ValidateState: true,
	}
}

// Reference simulates a model with the built-in RC building.
type Reference struct {
	opts Options
}

func NewReference(opts Options) *Reference {
	return &Reference{opts: opts}
}

func (r *Reference) Options() Options { return r.opts }

func (r *Reference) Meters() []string { return Meters() }

// Simulate runs one model and returns its meters. It does not modify m.
func (r *Reference) Simulate(ctx context.Context, m *model.Model) (map[string]float64, error) {
	bldg, err := NewBuilding(m)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.ByName(r.opts.Integrator)
	if err != nil {
		return nil, err
	}
	if r.opts.ResponseTime <= 0 {
		return nil, fmt.Errorf("%w: response time must be positive, got %g", dynamo.ErrInvalidConfig, r.opts.ResponseTime)
	}

	ctrl, err := r.controller(bldg)
	if err != nil {
		return nil, err
	}

	dt := r.opts.Step
	plant := bldg.Plant

	heating := metrics.Scaled(metrics.Heating, plant.BoilerEfficiency)
	cooling := metrics.Scaled(metrics.Cooling, plant.CoolingCOP)
	fan := func(x dynamo.State, u dynamo.Control, t float64) float64 { return bldg.FanLoad(t) }
	lights := func(x dynamo.State, u dynamo.Control, t float64) float64 {
		l, _ := bldg.ElectricLoad(t)
		return l
	}
	equipment := func(x dynamo.State, u dynamo.Control, t float64) float64 {
		_, e := bldg.ElectricLoad(t)
		return e
	}
	band := func(z int, t float64) (float64, float64) { return bldg.Setpoints(z) }

	sim := dynamo.New(bldg, integ, ctrl)
	sim.AddMetric(metrics.NewMeter(HeatingKWh, dt, heating))
	sim.AddMetric(metrics.NewMeter(CoolingKWh, dt, cooling))
	sim.AddMetric(metrics.NewMeter(FanKWh, dt, fan))
	sim.AddMetric(metrics.NewMeter(LightsKWh, dt, lights))
	sim.AddMetric(metrics.NewMeter(EquipmentKWh, dt, equipment))
	sim.AddMetric(metrics.NewMeter(TotalKWh, dt, metrics.Sum(heating, cooling, fan, lights, equipment)))
	sim.AddMetric(metrics.NewPeak(PeakHeatingKW, metrics.Heating))
	sim.AddMetric(metrics.NewUnmetHours(dt, bldg.Zones(), 0.5, band))

	result, err := sim.Run(ctx, bldg.InitialState(), r.opts.config())
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", m.Name, err)
	}
	return result.Metrics, nil
}

func (r *Reference) controller(bldg *Building) (dynamo.Controller, error) {
	if r.opts.FreeFloat {
		return control.NewNone(bldg.Zones()), nil
	}
	switch r.opts.Control {
	case "", ControlIdeal:
		return control.NewIdealLoads(bldg, r.opts.ResponseTime), nil
	case ControlPID:
		return control.NewPIDThermostat(bldg, r.opts.ResponseTime), nil
	case ControlNone:
		return control.NewNone(bldg.Zones()), nil
	default:
		return nil, fmt.Errorf("%w: unknown control %q", dynamo.ErrInvalidConfig, r.opts.Control)
	}
}
