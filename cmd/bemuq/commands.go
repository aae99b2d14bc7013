package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/bemuq/internal/automation"
	"github.com/san-kum/bemuq/internal/binding"
	"github.com/san-kum/bemuq/internal/catalog"
	"github.com/san-kum/bemuq/internal/config"
	"github.com/san-kum/bemuq/internal/design"
	"github.com/san-kum/bemuq/internal/experiment"
	"github.com/san-kum/bemuq/internal/export"
	"github.com/san-kum/bemuq/internal/logging"
	"github.com/san-kum/bemuq/internal/sample"
	"github.com/san-kum/bemuq/internal/storage"
	"github.com/san-kum/bemuq/internal/tui"
	"github.com/san-kum/bemuq/internal/viz"
)

// loadConfig layers defaults, a preset, a config file, the environment and
// finally any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.FindPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		cfg = p
	}
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		if preset != "" {
			fileCfg = overlayPreset(cfg, fileCfg)
		}
		cfg = fileCfg
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("catalog") {
		cfg.Catalog = catalogPath
	}
	if flags.Changed("model") {
		cfg.Model = modelName
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("runs") {
		cfg.LHS.Runs = runs
	}
	if flags.Changed("centered") {
		cfg.LHS.Centered = centered
	}
	if flags.Changed("trajectories") {
		cfg.Morris.Trajectories = trajectories
	}
	if flags.Changed("levels") {
		cfg.Morris.Levels = levels
	}
	if flags.Changed("grid-jump") {
		cfg.Morris.GridJump = gridJump
	}
	if flags.Changed("days") {
		cfg.Simulation.Days = days
		if cfg.Simulation.WarmupDays >= days {
			cfg.Simulation.WarmupDays = 0
		}
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast = failFast
	}
	if flags.Changed("responses") {
		cfg.Responses = responses
	}

	logger, err := cfg.SetupLogging()
	if err != nil {
		return nil, err
	}
	cmd.SetContext(logging.IntoContext(cmd.Context(), logger))
	return cfg, nil
}

// overlayPreset keeps the preset's design settings where the config file
// left them at their defaults.
func overlayPreset(p, file *config.Config) *config.Config {
	def := config.DefaultConfig()
	if file.Method == def.Method {
		file.Method = p.Method
	}
	if file.LHS == def.LHS {
		file.LHS = p.LHS
	}
	if file.Morris == def.Morris {
		file.Morris = p.Morris
	}
	if file.Simulation == def.Simulation {
		file.Simulation = p.Simulation
	}
	return file
}

// openStore opens the run directory named by --data, the config file or
// BEMUQ_DATA_DIR, in that order.
func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func progressPrinter(st viz.Styles) func(done, total int) {
	return func(done, total int) {
		pct := float64(done) / float64(total)
		fmt.Fprintf(os.Stderr, "\r  %s %d/%d", viz.ProgressBar(st, pct, 30), done, total)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}

// runBatch runs work under the live view when --tui is set, and with a
// plain progress bar on stderr otherwise.
func runBatch(cmd *cobra.Command, title string, st viz.Styles, work tui.Work) error {
	if useTUI {
		return tui.RunBatch(cmd.Context(), title, st, work)
	}
	return work(cmd.Context(), progressPrinter(st))
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Catalog == "" {
		return fmt.Errorf("no catalog: pass --catalog or set catalog in the config")
	}

	st := viz.Current()
	store := storage.New(cfg.DataDir)

	title := fmt.Sprintf("%s analysis of %s with %s", cfg.Method, cfg.Model, cfg.Catalog)
	fmt.Println("running " + title)
	exp := experiment.New(cfg, nil)
	var res *experiment.Result
	err = runBatch(cmd, title, st, func(ctx context.Context, progress func(done, total int)) error {
		var err error
		res, err = exp.Run(ctx, store, progress)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(viz.KeyValue(st,
		"run", res.Run.Meta.ID,
		"method", string(res.Plan.Method),
		"seed", strconv.FormatInt(res.Plan.Seed, 10),
		"parameters", strconv.Itoa(len(res.Plan.Params)),
		"runs", strconv.Itoa(res.Plan.Design.Runs()),
		"failed", strconv.Itoa(len(res.Output.Failed)),
		"elapsed", res.Run.Meta.Elapsed,
	))
	for _, f := range res.Output.Failed {
		fmt.Println(st.Warning.Render(f.Error()))
	}
	fmt.Println()
	printReport(st, res.Report, 40)
	fmt.Printf("saved to %s\n", res.Run.Dir)
	return nil
}

func printReport(st viz.Styles, rep *experiment.Report, barWidth int) {
	fmt.Print(viz.SummaryTable(st, rep.Summary))
	for _, col := range rep.Effects {
		fmt.Println()
		fmt.Print(viz.EffectsTable(st, col))
		if col.Err == nil {
			fmt.Print(viz.MuStarBars(st, col.Effects, barWidth))
		}
	}
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Catalog == "" {
		return fmt.Errorf("no catalog: pass --catalog or set catalog in the config")
	}

	st := viz.Current()
	res, err := experiment.New(cfg, nil).Prepare(cmd.Context(), storage.New(cfg.DataDir))
	if err != nil {
		return err
	}

	fmt.Print(viz.ParametersTable(st, res.Plan.Params))
	fmt.Print(viz.SamplesTable(st, res.Plan.Samples, sampleRows))
	fmt.Printf("run %s: %d %s samples saved to %s\n", res.Run.Meta.ID, res.Plan.Samples.Runs(), res.Plan.Method, res.Run.Dir)
	fmt.Printf("simulate with: bemuq simulate %s, or analyze external results with: bemuq analyze %s --responses <file>\n",
		res.Run.Meta.ID[:8], res.Run.Meta.ID[:8])
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := viz.Current()
	store := storage.New(cfg.DataDir)
	exp := experiment.New(cfg, nil)
	var res *experiment.Result
	err = runBatch(cmd, "simulating run "+args[0], st, func(ctx context.Context, progress func(done, total int)) error {
		var err error
		res, err = exp.Resume(ctx, store, args[0], progress)
		return err
	})
	if err != nil {
		return err
	}
	for _, f := range res.Output.Failed {
		fmt.Println(st.Warning.Render(f.Error()))
	}
	printReport(st, res.Report, 40)
	fmt.Printf("saved to %s\n", res.Run.Dir)
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	res, err := experiment.Reanalyze(cmd.Context(), store, args[0], responsesIn, responses)
	if err != nil {
		return err
	}
	printReport(viz.Current(), res.Report, 40)
	fmt.Printf("saved to %s\n", res.Run.Dir)
	return nil
}

func runDesign(cmd *cobra.Command, args []string) error {
	if designParams <= 0 {
		return fmt.Errorf("--params must be positive")
	}

	rng, effective := design.NewRand(seed)
	var mat *design.Matrix
	switch cmd.Name() {
	case "lhd":
		m, err := design.LatinHypercube(rng, designParams, design.LHSConfig{Runs: runs, Centered: centered})
		if err != nil {
			return err
		}
		mat = m
	case "morris":
		cfg := design.DefaultMorrisConfig()
		cfg.Trajectories = trajectories
		cfg.Levels = levels
		cfg.GridJump = gridJump
		d, err := design.Morris(rng, designParams, cfg)
		if err != nil {
			return err
		}
		mat = d.Matrix
	}

	ids := make([]catalog.Identity, designParams)
	for i := range ids {
		ids[i] = catalog.Identity{Kind: "x" + strconv.Itoa(i+1)}
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := sample.WriteDesign(w, ids, mat); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Printf("%s design: %d runs x %d params, seed %d, written to %s\n", cmd.Name(), mat.Runs(), designParams, effective, outPath)
	} else {
		fmt.Fprintf(os.Stderr, "seed %d\n", effective)
	}
	return nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Catalog == "" {
		return fmt.Errorf("no catalog: pass --catalog or set catalog in the config")
	}

	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return err
	}
	if err := cat.Validate(); err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	m, err := reg.GetModel(cfg.Model)
	if err != nil {
		return err
	}
	params, err := reg.Bindings().Discover(m, cat.Specs)
	if err != nil {
		return err
	}

	st := viz.Current()
	fmt.Print(viz.ParametersTable(st, params))
	fmt.Printf("%d catalog rows bound to %d parameters in %s", cat.Len(), len(params), m.Name)
	if cat.Dropped > 0 {
		fmt.Printf(", %d disabled rows skipped", cat.Dropped)
	}
	fmt.Println()
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := store.List()
	if err != nil {
		return err
	}
	fmt.Print(viz.RunsTable(viz.Current(), runs))
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	run, err := store.Load(args[0])
	if err != nil {
		return err
	}

	st := viz.Current()
	meta := run.Meta
	fmt.Println(st.Title.Render("Run " + meta.ID))
	pairs := []string{
		"created", meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
		"method", string(meta.Method),
		"seed", strconv.FormatInt(meta.Seed, 10),
		"catalog", meta.Catalog,
		"model", meta.Model,
		"parameters", strconv.Itoa(len(meta.Params)),
		"runs", strconv.Itoa(meta.Runs),
	}
	if meta.Name != "" {
		pairs = append(pairs, "name", meta.Name)
	}
	if meta.Elapsed != "" {
		pairs = append(pairs, "elapsed", meta.Elapsed)
	}
	if len(meta.Failed) > 0 {
		failed := make([]string, len(meta.Failed))
		for i, f := range meta.Failed {
			failed[i] = strconv.Itoa(f)
		}
		pairs = append(pairs, "failed runs", strings.Join(failed, ", "))
	}
	fmt.Print(viz.KeyValue(st, pairs...))
	fmt.Println(viz.Separator(st, 60))

	if !run.Exists(storage.ResponsesFile) {
		fmt.Println(st.Subtle.Render("not simulated yet"))
		return nil
	}

	params, mat, err := run.LoadDesign()
	if err != nil {
		return err
	}
	resp, err := run.LoadResponses()
	if err != nil {
		return err
	}
	resp, err = experiment.Select(resp, responses)
	if err != nil {
		return err
	}
	rep := experiment.Analyze(meta.Method, mat, params, resp)
	printReport(st, rep, chartWidth/2)

	if svgDir != "" {
		if err := writeSVGs(svgDir, resp.Columns, resp.Values, rep); err != nil {
			return err
		}
		fmt.Printf("svg plots written to %s\n", svgDir)
	}

	if showCharts {
		for i, col := range resp.Columns {
			if chart := viz.ResponseChart(col, resp.Values[i], chartWidth, 10); chart != "" {
				fmt.Println()
				fmt.Print(chart)
			}
		}
		for _, col := range rep.Effects {
			if col.Err != nil {
				continue
			}
			if chart := viz.EffectsChart(col.Effects, chartWidth, 10); chart != "" {
				fmt.Println()
				fmt.Println(st.Title.Render(col.Column))
				fmt.Print(chart)
			}
		}
	}
	return nil
}

func runStudy(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := viz.Current()
	fmt.Println(st.Title.Render(scenario.Name))
	if scenario.Description != "" {
		fmt.Println(st.Subtle.Render(scenario.Description))
	}

	bar := progressPrinter(st)
	results, err := automation.RunScenario(cmd.Context(), scenario, base, storage.New(base.DataDir), nil,
		func(step, done, total int) { bar(done, total) })
	for i, res := range results {
		fmt.Println()
		fmt.Println(viz.Separator(st, 60))
		fmt.Printf("step %d: %s (%s, run %s)\n", i+1, res.Run.Meta.Name, res.Plan.Method, res.Run.Meta.ID[:8])
		printReport(st, res.Report, 40)
	}
	return err
}

func writeSVGs(dir string, columns []string, values [][]float64, rep *experiment.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	color := string(viz.CurrentTheme.Primary)
	for i, col := range columns {
		if svg := export.ResponseSVG(col, values[i], 640, 400, color); svg != "" {
			if err := os.WriteFile(filepath.Join(dir, "response_"+col+".svg"), []byte(svg), 0644); err != nil {
				return err
			}
		}
	}
	for _, res := range rep.Effects {
		if svg := export.MorrisSVG(res, 640, 480); svg != "" {
			if err := os.WriteFile(filepath.Join(dir, "morris_"+res.Column+".svg"), []byte(svg), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	run, err := store.Load(args[0])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(run.Meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func listKinds(cmd *cobra.Command, args []string) error {
	fmt.Print(viz.KindsTable(viz.Current(), binding.DefaultRegistry().Bindings()))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	methods := []string{string(design.MethodLHD), string(design.MethodMorris)}
	if len(args) > 0 {
		m, err := design.ParseMethod(args[0])
		if err != nil {
			return err
		}
		methods = []string{string(m)}
	}

	st := viz.Current()
	for _, m := range methods {
		fmt.Println(st.Title.Render(m))
		for _, name := range config.ListPresets(m) {
			p := config.GetPreset(m, name)
			fmt.Printf("  %-14s %s\n", name, describePreset(p))
		}
	}
	return nil
}

func describePreset(p *config.Config) string {
	method, _ := p.DesignMethod()
	switch method {
	case design.MethodLHD:
		s := fmt.Sprintf("%d runs", p.LHS.Runs)
		if p.LHS.Centered {
			s += ", centered"
		}
		return s
	default:
		return fmt.Sprintf("%d trajectories, %d levels", p.Morris.Trajectories, p.Morris.Levels)
	}
}
