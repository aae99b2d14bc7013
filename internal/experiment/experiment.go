package experiment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/bemuq/internal/analysis"
	"github.com/san-kum/bemuq/internal/binding"
	"github.com/san-kum/bemuq/internal/catalog"
	"github.com/san-kum/bemuq/internal/config"
	"github.com/san-kum/bemuq/internal/design"
	"github.com/san-kum/bemuq/internal/logging"
	"github.com/san-kum/bemuq/internal/model"
	"github.com/san-kum/bemuq/internal/runner"
	"github.com/san-kum/bemuq/internal/sample"
	"github.com/san-kum/bemuq/internal/storage"
)

var ErrEmptyCatalog = errors.New("experiment: catalog has no enabled parameters")

// Plan is everything decided before the first simulation: the bound
// parameters, the drawn design and its physical sample table.
type Plan struct {
	Method  design.Method
	Seed    int64
	Catalog *catalog.Catalog
	Model   *model.Model
	Params  []binding.Parameter
	Design  *design.Matrix
	Morris  *design.MorrisDesign
	Samples *sample.Table
}

// Identities returns the parameter columns in design order.
func (p *Plan) Identities() []catalog.Identity {
	return p.Samples.Params
}

// Report is the analysis of one response table.
type Report struct {
	Method  design.Method
	Effects []analysis.ColumnResult
	Summary []analysis.Summary
}

type Result struct {
	Run    *storage.Run
	Plan   *Plan
	Output *runner.Output
	Report *Report
}

type Experiment struct {
	cfg *config.Config
	reg *Registry
}

func New(cfg *config.Config, reg *Registry) *Experiment {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Experiment{cfg: cfg, reg: reg}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Plan reads and validates the catalog, binds it to the model and draws the
// design. Every catalog problem surfaces here, before any randomness is used.
func (e *Experiment) Plan(ctx context.Context) (*Plan, error) {
	logger := logging.FromContext(ctx).WithName("experiment")

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	method, _ := e.cfg.DesignMethod()
	if err := e.checkResponses(); err != nil {
		return nil, err
	}

	cat, err := catalog.Load(e.cfg.Catalog)
	if err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if cat.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCatalog, e.cfg.Catalog)
	}
	logger.V(logging.DEBUG).Info("Catalog loaded", "source", cat.Source, "rows", cat.Len(), "dropped", cat.Dropped)

	m, err := e.reg.GetModel(e.cfg.Model)
	if err != nil {
		return nil, err
	}

	params, err := e.reg.Bindings().Discover(m, cat.Specs)
	if err != nil {
		return nil, err
	}
	logger.Info("Parameters bound", "rows", cat.Len(), "parameters", len(params), "model", m.Name)

	plan := &Plan{Method: method, Catalog: cat, Model: m, Params: params}
	if err := e.draw(plan); err != nil {
		return nil, err
	}
	logger.Info("Design drawn", "method", string(method), "runs", plan.Design.Runs(), "seed", plan.Seed)
	return plan, nil
}

func (e *Experiment) draw(plan *Plan) error {
	rng, seed := design.NewRand(e.cfg.Seed)
	plan.Seed = seed

	switch plan.Method {
	case design.MethodLHD:
		mat, err := design.LatinHypercube(rng, len(plan.Params), e.cfg.LHS)
		if err != nil {
			return err
		}
		plan.Design = mat
	case design.MethodMorris:
		md, err := design.Morris(rng, len(plan.Params), e.cfg.Morris)
		if err != nil {
			return err
		}
		plan.Morris = md
		plan.Design = md.Matrix
	default:
		return fmt.Errorf("experiment: unsupported method %q", plan.Method)
	}

	table, err := sample.Build(plan.Design, binding.Specs(plan.Params))
	if err != nil {
		return err
	}
	plan.Samples = table
	return nil
}

func (e *Experiment) checkResponses() error {
	sim, err := e.reg.GetSimulator(e.cfg.Simulator, e.cfg.Simulation)
	if err != nil {
		return err
	}
	_, err = Select(analysis.NewResponses(sim.Meters(), 0), e.cfg.Responses)
	return err
}

// Simulate runs the configured simulator once per sample row.
func (e *Experiment) Simulate(ctx context.Context, plan *Plan, progress func(done, total int)) (*runner.Output, error) {
	sim, err := e.reg.GetSimulator(e.cfg.Simulator, e.cfg.Simulation)
	if err != nil {
		return nil, err
	}
	r := runner.New(sim, e.reg.Bindings(), runner.Options{
		Workers:  e.cfg.Workers,
		FailFast: e.cfg.FailFast,
		Progress: progress,
	})
	return r.Run(ctx, plan.Model, plan.Params, plan.Samples)
}

// Analyze summarizes every response column and, for Morris designs, computes
// elementary effects. A bad column only fails itself. A table with a
// different number of runs than the design fails every column.
func Analyze(method design.Method, m *design.Matrix, params []catalog.Identity, resp *analysis.Responses) *Report {
	if resp.Runs() != m.Runs() {
		return mismatched(method, m, resp)
	}
	rep := &Report{Method: method, Summary: analysis.Summarize(resp)}
	if method == design.MethodMorris {
		rep.Effects = analysis.Aggregate(m, params, resp)
	}
	return rep
}

func mismatched(method design.Method, m *design.Matrix, resp *analysis.Responses) *Report {
	rep := &Report{Method: method}
	for _, name := range resp.Columns {
		err := &analysis.ResponseDataError{
			Column: name,
			Run:    min(resp.Runs(), m.Runs()) + 1,
			Reason: fmt.Sprintf("%d responses for %d design runs", resp.Runs(), m.Runs()),
		}
		rep.Summary = append(rep.Summary, analysis.Summary{Column: name, N: resp.Runs(), Err: err})
		if method == design.MethodMorris {
			rep.Effects = append(rep.Effects, analysis.ColumnResult{Column: name, Err: err})
		}
	}
	return rep
}

// Select keeps only the named response columns, in the given order. Names
// that are absent are reported.
func Select(resp *analysis.Responses, names []string) (*analysis.Responses, error) {
	if len(names) == 0 {
		return resp, nil
	}
	out := &analysis.Responses{}
	var missing []string
	for _, name := range names {
		col, ok := resp.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out.Columns = append(out.Columns, name)
		out.Values = append(out.Values, col)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("experiment: unknown response columns %v", missing)
	}
	return out, nil
}

// Run executes the full pipeline and stores every artifact in a new run
// directory.
func (e *Experiment) Run(ctx context.Context, store *storage.Store, progress func(done, total int)) (*Result, error) {
	logger := logging.FromContext(ctx).WithName("experiment")

	plan, err := e.Plan(ctx)
	if err != nil {
		return nil, err
	}

	if err := store.Init(); err != nil {
		return nil, err
	}
	run, err := store.Create(e.metadata(plan))
	if err != nil {
		return nil, err
	}
	logger.Info("Run created", "id", run.Meta.ID, "dir", run.Dir)

	if err := e.savePlan(run, plan); err != nil {
		return nil, err
	}

	out, err := e.Simulate(ctx, plan, progress)
	if err != nil {
		return nil, err
	}
	if err := run.SaveResponses(out.Responses); err != nil {
		return nil, err
	}

	resp, err := Select(out.Responses, e.cfg.Responses)
	if err != nil {
		return nil, err
	}
	rep := Analyze(plan.Method, plan.Design, plan.Identities(), resp)
	if err := saveReport(run, rep); err != nil {
		return nil, err
	}

	run.Meta.Meters = out.Responses.Columns
	run.Meta.Elapsed = out.Elapsed.Round(time.Millisecond).String()
	for _, f := range out.Failed {
		run.Meta.Failed = append(run.Meta.Failed, f.Run)
	}
	if err := run.SaveMetadata(); err != nil {
		return nil, err
	}

	logger.Info("Run complete", "id", run.Meta.ID, "failed", len(out.Failed))
	return &Result{Run: run, Plan: plan, Output: out, Report: rep}, nil
}

// Prepare draws and stores a design without simulating, for runs whose
// responses come from an external engine.
func (e *Experiment) Prepare(ctx context.Context, store *storage.Store) (*Result, error) {
	plan, err := e.Plan(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.Init(); err != nil {
		return nil, err
	}
	run, err := store.Create(e.metadata(plan))
	if err != nil {
		return nil, err
	}
	if err := e.savePlan(run, plan); err != nil {
		return nil, err
	}
	return &Result{Run: run, Plan: plan}, nil
}

func (e *Experiment) metadata(plan *Plan) storage.RunMetadata {
	meta := storage.RunMetadata{
		Name:    e.cfg.Name,
		Method:  plan.Method,
		Seed:    plan.Seed,
		Runs:    plan.Design.Runs(),
		Catalog: e.cfg.Catalog,
		Model:   e.cfg.Model,
		Params:  plan.Identities(),
		Settings: map[string]any{
			"simulator":  e.cfg.Simulator,
			"workers":    e.cfg.Workers,
			"simulation": e.cfg.Simulation,
		},
	}
	switch plan.Method {
	case design.MethodLHD:
		lhs := e.cfg.LHS
		meta.LHS = &lhs
	case design.MethodMorris:
		mc := plan.Morris.Config
		meta.Morris = &mc
	}
	return meta
}

func (e *Experiment) savePlan(run *storage.Run, plan *Plan) error {
	if err := run.SaveCatalog(binding.Specs(plan.Params)); err != nil {
		return err
	}
	if err := run.SaveDesign(plan.Design); err != nil {
		return err
	}
	return run.SaveSamples(plan.Design, plan.Samples)
}

func saveReport(run *storage.Run, rep *Report) error {
	if err := run.SaveSummary(rep.Summary); err != nil {
		return err
	}
	return run.SaveEffects(rep.Effects)
}

// Reanalyze analyzes a stored run again. With responsesPath set the
// responses are read from that file and stored with the run; otherwise the
// run's own responses are used.
func Reanalyze(ctx context.Context, store *storage.Store, runID, responsesPath string, columns []string) (*Result, error) {
	logger := logging.FromContext(ctx).WithName("experiment")

	run, err := store.Load(runID)
	if err != nil {
		return nil, err
	}
	params, mat, err := run.LoadDesign()
	if err != nil {
		return nil, err
	}

	var resp *analysis.Responses
	if responsesPath != "" {
		f, err := os.Open(responsesPath)
		if err != nil {
			return nil, err
		}
		resp, err = analysis.ReadResponses(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		if err := run.SaveResponses(resp); err != nil {
			return nil, err
		}
	} else {
		resp, err = run.LoadResponses()
		if err != nil {
			return nil, err
		}
	}

	if resp.Runs() != mat.Runs() {
		logger.Info("Response table does not match design, every column is rejected", "responses", resp.Runs(), "design", mat.Runs())
	}

	resp, err = Select(resp, columns)
	if err != nil {
		return nil, err
	}
	rep := Analyze(run.Meta.Method, mat, params, resp)
	if err := saveReport(run, rep); err != nil {
		return nil, err
	}

	run.Meta.Meters = resp.Columns
	if err := run.SaveMetadata(); err != nil {
		return nil, err
	}
	return &Result{Run: run, Report: rep}, nil
}

// Resume simulates a stored run that was prepared without simulating. The
// stored catalog holds one row per bound instance, so discovery against the
// run's model rebinds the same parameters in the same order.
func (e *Experiment) Resume(ctx context.Context, store *storage.Store, runID string, progress func(done, total int)) (*Result, error) {
	run, err := store.Load(runID)
	if err != nil {
		return nil, err
	}
	cat, err := run.LoadCatalog()
	if err != nil {
		return nil, err
	}
	m, err := e.reg.GetModel(run.Meta.Model)
	if err != nil {
		return nil, err
	}
	params, err := e.reg.Bindings().Discover(m, cat.Specs)
	if err != nil {
		return nil, err
	}
	_, mat, err := run.LoadDesign()
	if err != nil {
		return nil, err
	}
	table, err := run.LoadSamples()
	if err != nil {
		return nil, err
	}
	if len(params) != len(table.Params) {
		return nil, fmt.Errorf("experiment: stored catalog binds %d parameters, samples have %d", len(params), len(table.Params))
	}

	plan := &Plan{
		Method:  run.Meta.Method,
		Seed:    run.Meta.Seed,
		Catalog: cat,
		Model:   m,
		Params:  params,
		Design:  mat,
		Samples: table,
	}
	out, err := e.Simulate(ctx, plan, progress)
	if err != nil {
		return nil, err
	}
	if err := run.SaveResponses(out.Responses); err != nil {
		return nil, err
	}

	resp, err := Select(out.Responses, e.cfg.Responses)
	if err != nil {
		return nil, err
	}
	rep := Analyze(plan.Method, mat, table.Params, resp)
	if err := saveReport(run, rep); err != nil {
		return nil, err
	}

	run.Meta.Meters = out.Responses.Columns
	run.Meta.Elapsed = out.Elapsed.Round(time.Millisecond).String()
	run.Meta.Failed = nil
	for _, f := range out.Failed {
		run.Meta.Failed = append(run.Meta.Failed, f.Run)
	}
	if err := run.SaveMetadata(); err != nil {
		return nil, err
	}
	return &Result{Run: run, Plan: plan, Output: out, Report: rep}, nil
}
