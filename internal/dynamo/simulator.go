package dynamo

import (
	"context"
	"fmt"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
	metrics    []Metric
}

func New(dyn System, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// Run integrates from x0 for cfg.Duration. Each metric sees the state and
// control at the start of every step after the warmup period.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d values, system expects %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	steps := int(cfg.Duration/cfg.Dt + 0.5)
	result := &Result{Metrics: make(map[string]float64, len(s.metrics))}

	x := x0.Clone()
	t := 0.0
	for i := 0; i < steps; i++ {
		if i%256 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		u := s.controller.Compute(x, t)
		if len(u) != s.dyn.ControlDim() {
			return nil, fmt.Errorf("%w: control has %d values, system expects %d", ErrDimensionMismatch, len(u), s.dyn.ControlDim())
		}

		if t >= cfg.Warmup {
			for _, m := range s.metrics {
				m.Observe(x, u, t)
			}
		}

		next := s.integrator.Step(s.dyn, x, u, t, cfg.Dt)
		if cfg.ValidateState && !next.IsValid() {
			return nil, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
		}

		x = next
		t = float64(i+1) * cfg.Dt
		result.StepsTaken++
	}

	result.Final = x
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Warmup < 0 || cfg.Warmup >= cfg.Duration {
		return fmt.Errorf("%w: warmup must be in [0, duration), got %f", ErrInvalidConfig, cfg.Warmup)
	}
	return nil
}
