// Package runner executes one simulation per sample row on a bounded worker
// pool. Whatever the completion order, run n's responses always land in row
// n of the response table.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/bemuq/internal/analysis"
	"github.com/san-kum/bemuq/internal/binding"
	"github.com/san-kum/bemuq/internal/logging"
	"github.com/san-kum/bemuq/internal/model"
	"github.com/san-kum/bemuq/internal/sample"
)

// Simulator produces named responses for one mutated model.
type Simulator interface {
	Meters() []string
	Simulate(ctx context.Context, m *model.Model) (map[string]float64, error)
}

// Applier writes one sample row into a model.
type Applier interface {
	ApplyRun(m *model.Model, params []binding.Parameter, row []float64) error
}

// RunError records a failed run. Run is 1-based like the responses file.
type RunError struct {
	Run int
	Err error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %d: %v", e.Run, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

type Options struct {
	Workers int
	// FailFast stops the batch at the first failed run. Otherwise failed runs
	// leave their responses missing and the batch carries on.
	FailFast bool
	Progress func(done, total int)
}

type Runner struct {
	sim  Simulator
	bind Applier
	opts Options
}

func New(sim Simulator, bind Applier, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Runner{sim: sim, bind: bind, opts: opts}
}

type Output struct {
	Responses *analysis.Responses
	Failed    []RunError
	Elapsed   time.Duration
}

// Run simulates every row of table against its own clone of base.
func (r *Runner) Run(ctx context.Context, base *model.Model, params []binding.Parameter, table *sample.Table) (*Output, error) {
	if len(params) != len(table.Params) {
		return nil, fmt.Errorf("runner: %d bound parameters for a %d-parameter sample table", len(params), len(table.Params))
	}

	logger := logging.FromContext(ctx).WithName("runner")
	runs := table.Runs()
	start := time.Now()

	results := make([]map[string]float64, runs)
	errs := make([]error, runs)
	var done atomic.Int64

	logger.Info("Starting simulations", "runs", runs, "workers", r.opts.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for n := 0; n < runs; n++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out, err := r.simulate(gctx, base, params, table.Row(n))
			if err != nil {
				if r.opts.FailFast {
					return &RunError{Run: n + 1, Err: err}
				}
				errs[n] = err
				logger.Info("Run failed", "run", n+1, "error", err.Error())
			} else {
				results[n] = out
				logger.V(logging.DEBUG).Info("Run finished", "run", n+1)
			}

			if r.opts.Progress != nil {
				r.opts.Progress(int(done.Add(1)), runs)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	output := &Output{
		Responses: analysis.NewResponses(r.sim.Meters(), runs),
		Elapsed:   time.Since(start),
	}
	for n := range results {
		if errs[n] != nil {
			output.Failed = append(output.Failed, RunError{Run: n + 1, Err: errs[n]})
			continue
		}
		output.Responses.Set(n, results[n])
	}

	logger.Info("Simulations complete", "runs", runs, "failed", len(output.Failed), "elapsed", output.Elapsed.String())
	return output, nil
}

func (r *Runner) simulate(ctx context.Context, base *model.Model, params []binding.Parameter, row []float64) (map[string]float64, error) {
	m := base.Clone()
	if err := r.bind.ApplyRun(m, params, row); err != nil {
		return nil, err
	}
	return r.sim.Simulate(ctx, m)
}
