package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/braid-sim/advdiff/advect"
	"github.com/braid-sim/advdiff/advect/braidtest"
	"github.com/braid-sim/advdiff/advect/grid"
	"github.com/braid-sim/advdiff/advect/trace"
)

var (
	// CLI flags shared by all subcommands
	configPath string // YAML run configuration (optional)
	logLevel   string // Log verbosity level

	// CLI flags overriding the configuration file
	order      int     // 4 or 6
	points     int     // points on the finest grid
	length     float64 // domain length
	waveSpeed  float64 // c
	viscosity  float64 // nu
	bcLeft     string  // boundary type at x = 0
	bcRight    string  // boundary type at x = L
	bdata      string  // Dirichlet data mode inside an RK step
	problem    int     // analytic solution number
	steps      int     // steps of the finest temporal grid
	tstop      float64 // end time
	cfl        float64 // CFL number
	coarsening string  // spatial coarsening mode
	traceLevel string  // call trace verbosity

	// run/check specific
	accuracy float64 // substep scaling passed to every Step
	checkT   float64 // time at which check initializes vectors
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "advdiff",
	Short: "Advection-diffusion vector kernel for multigrid-in-time solvers",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd marches the analytic initial data sequentially and reports the error
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Integrate sequentially over the finest temporal grid",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := runMarch(cfg, accuracy, os.Stdout); err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
	},
}

// checkCmd runs the callback sanity checks against the configured kernel
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run sanity checks on init, clone, sum, dot, buffers and level transfer",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := buildConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := runCheck(cfg, checkT, logrus.StandardLogger()); err != nil {
			logrus.Fatalf("Sanity checks failed: %v", err)
		}
	},
}

// buildConfig loads the configuration file, if any, and applies the flags
// the user set explicitly.
func buildConfig(flags *pflag.FlagSet) (*advect.Config, error) {
	cfg := advect.DefaultConfig()
	if configPath != "" {
		loaded, err := advect.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("order", func() { cfg.Grid.Order = order })
	set("points", func() { cfg.Grid.Points = points })
	set("length", func() { cfg.Grid.Length = length })
	set("c", func() { cfg.Physics.WaveSpeed = waveSpeed })
	set("nu", func() { cfg.Physics.Viscosity = viscosity })
	set("bc-left", func() { cfg.Boundary.Left = bcLeft })
	set("bc-right", func() { cfg.Boundary.Right = bcRight })
	set("bdata", func() { cfg.Boundary.Data = bdata })
	set("problem", func() { cfg.Problem.Number = problem })
	set("steps", func() { cfg.Time.Steps = steps })
	set("tstop", func() { cfg.Time.Stop = tstop })
	set("cfl", func() { cfg.Time.CFL = cfl })
	set("coarsening", func() { cfg.Levels.Coarsening = coarsening })
	set("trace", func() { cfg.Output.Trace = traceLevel })
	return cfg, cfg.Validate()
}

func runMarch(cfg *advect.Config, accuracy float64, out io.Writer) error {
	app, err := advect.NewApp(cfg)
	if err != nil {
		return err
	}
	logrus.Infof("Starting run: order %d, %d points, %s/%s boundaries, c=%g, nu=%g, %d steps to t=%g",
		cfg.Grid.Order, cfg.Grid.Points, cfg.Boundary.Left, cfg.Boundary.Right,
		cfg.Physics.WaveSpeed, cfg.Physics.Viscosity, cfg.Time.Steps, cfg.Time.Stop)

	res, err := app.March(accuracy)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "t=%g steps=%d norm=%.6e l2_error=%.6e linf_error=%.6e\n", res.T, res.Steps, res.Norm, res.L2, res.Linf)
	if app.Trace().Level() != trace.LevelNone && app.Trace().Level() != "" {
		s := trace.Summarize(app.Trace())
		fmt.Fprintf(out, "trace: steps=%d refactored=%d writes=%d max_l2=%.6e max_linf=%.6e\n",
			s.Steps, s.RefactoredSteps, s.Writes, s.MaxL2, s.MaxLinf)
	}
	logrus.Info("Run complete.")
	return nil
}

func runCheck(cfg *advect.Config, t float64, log logrus.FieldLogger) error {
	app, err := advect.NewApp(cfg)
	if err != nil {
		return err
	}
	dt := cfg.DtFinest()
	return braidtest.TestAll[*grid.GridFunction](app, log, t, dt, 2*dt)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	def := advect.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML run configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Discretization
	rootCmd.PersistentFlags().IntVar(&order, "order", def.Grid.Order, "Order of accuracy (4 or 6)")
	rootCmd.PersistentFlags().IntVar(&points, "points", def.Grid.Points, "Points on the finest grid")
	rootCmd.PersistentFlags().Float64Var(&length, "length", def.Grid.Length, "Domain length")
	rootCmd.PersistentFlags().Float64Var(&waveSpeed, "c", def.Physics.WaveSpeed, "Wave speed")
	rootCmd.PersistentFlags().Float64Var(&viscosity, "nu", def.Physics.Viscosity, "Viscosity")
	rootCmd.PersistentFlags().StringVar(&bcLeft, "bc-left", def.Boundary.Left, "Left boundary (periodic, dirichlet, extrapolation)")
	rootCmd.PersistentFlags().StringVar(&bcRight, "bc-right", def.Boundary.Right, "Right boundary (periodic, dirichlet, extrapolation)")
	rootCmd.PersistentFlags().StringVar(&bdata, "bdata", def.Boundary.Data, "Dirichlet data in RK stages (every-stage, full-step)")
	rootCmd.PersistentFlags().IntVar(&problem, "problem", def.Problem.Number, "Analytic solution (1 travelling wave, 2 twilight)")

	// Time and levels
	rootCmd.PersistentFlags().IntVar(&steps, "steps", def.Time.Steps, "Steps of the finest temporal grid")
	rootCmd.PersistentFlags().Float64Var(&tstop, "tstop", def.Time.Stop, "End time")
	rootCmd.PersistentFlags().Float64Var(&cfl, "cfl", def.Time.CFL, "CFL number")
	rootCmd.PersistentFlags().StringVar(&coarsening, "coarsening", def.Levels.Coarsening, "Spatial coarsening (none, algebraic, spectral)")
	rootCmd.PersistentFlags().StringVar(&traceLevel, "trace", def.Output.Trace, "Call trace level (none, writes, calls)")

	runCmd.Flags().Float64Var(&accuracy, "accuracy", 1, "Substep scaling passed to every step (<= 1)")
	checkCmd.Flags().Float64Var(&checkT, "t", 0, "Time at which the checks initialize vectors")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
}
