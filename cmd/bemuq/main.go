package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/bemuq/internal/config"
	"github.com/san-kum/bemuq/internal/logging"
	"github.com/san-kum/bemuq/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	theme      string

	catalogPath  string
	modelName    string
	method       string
	seed         int64
	workers      int
	runs         int
	centered     bool
	trajectories int
	levels       int
	gridJump     float64
	days         float64
	failFast     bool
	responses    []string
	useTUI       bool

	designParams int
	outPath      string
	responsesIn  string
	sampleRows   int
	chartWidth   int
	showCharts   bool
	svgDir       string
)

// main registers the bemuq commands and exits with status 1 when a command
// fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "bemuq",
		Short:         "uncertainty and sensitivity analysis for building energy models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(); err != nil {
				return err
			}
			logger, err := logging.Setup(logLevel)
			if err != nil {
				return err
			}
			viz.SetTheme(theme)
			cmd.SetContext(logging.IntoContext(cmd.Context(), logger))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run directory (default ./data or $BEMUQ_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "analysis config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "error|warn|info|debug|trace (default $LOG_LEVEL or info)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "cyberpunk", "report color theme")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "draw a design, simulate every run and analyze the responses",
		RunE:  runAnalysis,
	}
	addAnalysisFlags(runCmd)
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "live progress view")

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "draw and store a design and its sample table without simulating",
		RunE:  runSample,
	}
	addAnalysisFlags(sampleCmd)
	sampleCmd.Flags().IntVar(&sampleRows, "show", 10, "sample rows to print")

	simulateCmd := &cobra.Command{
		Use:   "simulate [run_id]",
		Short: "simulate a stored run that was sampled without simulating",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulate,
	}
	simulateCmd.Flags().IntVar(&workers, "workers", 0, "parallel simulations (default: CPUs)")
	simulateCmd.Flags().Float64Var(&days, "days", 0, "simulated days")
	simulateCmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failed run")
	simulateCmd.Flags().BoolVar(&useTUI, "tui", false, "live progress view")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "analyze a stored run, optionally against an external responses file",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVar(&responsesIn, "responses", "", "responses csv from an external engine")
	analyzeCmd.Flags().StringSliceVar(&responses, "columns", nil, "response columns to analyze")

	designCmd := &cobra.Command{
		Use:   "design",
		Short: "generate a normalized design matrix",
	}
	designCmd.PersistentFlags().IntVar(&designParams, "params", 0, "number of parameters")
	designCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 draws a fresh one)")
	designCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "output csv (default stdout)")

	lhdCmd := &cobra.Command{
		Use:   "lhd",
		Short: "latin hypercube design",
		RunE:  runDesign,
	}
	lhdCmd.Flags().IntVar(&runs, "runs", config.DefaultRuns, "design points")
	lhdCmd.Flags().BoolVar(&centered, "centered", false, "place points at stratum midpoints")

	morrisCmd := &cobra.Command{
		Use:   "morris",
		Short: "morris one-at-a-time trajectories",
		RunE:  runDesign,
	}
	morrisCmd.Flags().IntVar(&trajectories, "trajectories", 10, "number of trajectories")
	morrisCmd.Flags().IntVar(&levels, "levels", 4, "grid levels")
	morrisCmd.Flags().Float64Var(&gridJump, "grid-jump", 0, "perturbation in grid steps (default levels/2)")
	designCmd.AddCommand(lhdCmd, morrisCmd)

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "bind catalog rows to model instances",
		RunE:  runDiscover,
	}
	discoverCmd.Flags().StringVar(&catalogPath, "catalog", "", "parameter catalog (csv or xlsx)")
	discoverCmd.Flags().StringVar(&modelName, "model", "", "model file or built-in model name")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run and its analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&showCharts, "charts", false, "plot response and effect charts")
	showCmd.Flags().IntVar(&chartWidth, "width", 60, "chart width")
	showCmd.Flags().StringVar(&svgDir, "svg", "", "also write svg plots to this directory")
	showCmd.Flags().StringSliceVar(&responses, "columns", nil, "response columns to show")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "list the parameter kinds the model binding understands",
		RunE:  listKinds,
	}

	studyCmd := &cobra.Command{
		Use:   "study [scenario.yaml]",
		Short: "run every analysis of a scenario file in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runStudy,
	}
	studyCmd.Flags().IntVar(&workers, "workers", 0, "parallel simulations (default: CPUs)")
	studyCmd.Flags().Float64Var(&days, "days", 0, "simulated days")

	presetsCmd := &cobra.Command{
		Use:   "presets [method]",
		Short: "list analysis presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, sampleCmd, simulateCmd, analyzeCmd, designCmd, discoverCmd, listCmd, showCmd, exportCmd, kindsCmd, studyCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, viz.Current().Error.Render("error: ")+err.Error())
		stop()
		os.Exit(1)
	}
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "parameter catalog (csv or xlsx)")
	cmd.Flags().StringVar(&modelName, "model", "", "model file or built-in model name")
	cmd.Flags().StringVar(&method, "method", "", "lhd or morris")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 draws a fresh one)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel simulations (default: CPUs)")
	cmd.Flags().IntVar(&runs, "runs", 0, "lhd design points")
	cmd.Flags().BoolVar(&centered, "centered", false, "lhd points at stratum midpoints")
	cmd.Flags().IntVar(&trajectories, "trajectories", 0, "morris trajectories")
	cmd.Flags().IntVar(&levels, "levels", 0, "morris grid levels")
	cmd.Flags().Float64Var(&gridJump, "grid-jump", 0, "morris perturbation in grid steps")
	cmd.Flags().Float64Var(&days, "days", 0, "simulated days")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failed run")
	cmd.Flags().StringSliceVar(&responses, "responses", nil, "response columns to analyze")
}
