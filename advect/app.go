package advect

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/braid-sim/advdiff/advect/exact"
	"github.com/braid-sim/advdiff/advect/grid"
	"github.com/braid-sim/advdiff/advect/operators"
	"github.com/braid-sim/advdiff/advect/stepper"
	"github.com/braid-sim/advdiff/advect/trace"
	"github.com/braid-sim/advdiff/advect/transfer"
)

// App implements the callback set of a multigrid-in-time driver for the
// advection-diffusion kernel. Apart from the level store and the trace it is
// immutable after NewApp, so callbacks on distinct grid functions may run
// concurrently.
type App struct {
	cfg      Config
	ops      *operators.Operators
	sol      exact.Solution
	stepper  *stepper.Stepper
	transfer *transfer.Transfer
	store    *LevelStore
	trace    *trace.Trace
}

// NewApp validates cfg and builds every component of a run.
func NewApp(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params, err := cfg.OperatorParams()
	if err != nil {
		return nil, err
	}
	ops, err := operators.New(params)
	if err != nil {
		return nil, err
	}
	if cfg.Grid.Points < ops.MinPoints() {
		return nil, fmt.Errorf("%w: %d grid points, order %d with %v/%v boundaries needs at least %d",
			ErrConfig, cfg.Grid.Points, params.Order, params.Left, params.Right, ops.MinPoints())
	}
	sol, err := exact.New(cfg.Problem.Number, cfg.ExactParams())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	mode, _ := stepper.ParseBoundaryMode(cfg.Boundary.Data)
	st, err := stepper.New(ops, sol, stepper.Config{CFL: cfg.Time.CFL, Mode: mode, FineN: cfg.Grid.Points})
	if err != nil {
		return nil, err
	}
	tmode, _ := transfer.ParseMode(cfg.Levels.Coarsening)
	tr, err := transfer.New(ops, tmode, transfer.Levels{
		NFine:     cfg.Grid.Points,
		DtFinest:  cfg.DtFinest(),
		MinPoints: ops.MinPoints(),
	})
	if err != nil {
		return nil, err
	}
	logrus.Debugf("advect: order %d, %d points, %v/%v, coarsening %v, min grid %d",
		params.Order, cfg.Grid.Points, params.Left, params.Right, tmode, ops.MinPoints())
	return &App{
		cfg:      *cfg,
		ops:      ops,
		sol:      sol,
		stepper:  st,
		transfer: tr,
		store:    NewLevelStore(),
		trace:    trace.New(trace.Level(cfg.Output.Trace)),
	}, nil
}

func (a *App) Config() Config { return a.cfg }
func (a *App) Operators() *operators.Operators { return a.ops }
func (a *App) Solution() exact.Solution { return a.sol }
func (a *App) Store() *LevelStore { return a.store }
func (a *App) Trace() *trace.Trace { return a.trace }

// Init returns a new grid function on the finest grid: the analytic solution
// at the start time, and the constant t anywhere else.
func (a *App) Init(t float64) (*grid.GridFunction, error) {
	u, err := grid.New(a.cfg.Grid.Points, a.cfg.Grid.Length)
	if err != nil {
		return nil, err
	}
	if t == a.cfg.Time.Start {
		exact.Fill(a.sol, u, t, 0, 0)
		return u, nil
	}
	for i := range u.Sol {
		u.Sol[i] = t
	}
	return u, nil
}

// Exact samples the analytic solution at time t on a grid of n points.
func (a *App) Exact(t float64, n int) (*grid.GridFunction, error) {
	u, err := grid.New(n, a.cfg.Grid.Length)
	if err != nil {
		return nil, err
	}
	exact.Fill(a.sol, u, t, 0, 0)
	return u, nil
}

func (a *App) Clone(u *grid.GridFunction) (*grid.GridFunction, error) { return u.Clone() }

func (a *App) Free(u *grid.GridFunction) { u.Free() }

// Sum computes y = alpha*x + beta*y.
func (a *App) Sum(alpha float64, x *grid.GridFunction, beta float64, y *grid.GridFunction) error {
	return grid.Sum(alpha, x, beta, y)
}

// Dot is the unweighted inner product of u and v.
func (a *App) Dot(u, v *grid.GridFunction) (float64, error) { return grid.Dot(u, v) }

// BufSize is the buffer size that holds any grid function of the run.
func (a *App) BufSize() int { return grid.BufSize(a.cfg.Grid.Points) }

func (a *App) BufPack(u *grid.GridFunction, buf []byte) (int, error) { return grid.Pack(u, buf) }

func (a *App) BufUnpack(buf []byte) (*grid.GridFunction, error) {
	u, err := grid.Unpack(buf, a.cfg.Grid.Length)
	if err != nil {
		return nil, err
	}
	if u.N > a.cfg.Grid.Points {
		u.Free()
		return nil, fmt.Errorf("%w: %d points exceed the finest grid of %d", ErrBuffer, u.N, a.cfg.Grid.Points)
	}
	return u, nil
}

// Coarsen maps fu to the coarse level of w.
func (a *App) Coarsen(fu *grid.GridFunction, w transfer.TimeWindow) (*grid.GridFunction, error) {
	cu, err := a.transfer.Coarsen(fu, w)
	if err != nil {
		return nil, fmt.Errorf("coarsen at t=%g: %w", w.T, err)
	}
	a.trace.RecordTransfer(trace.TransferRecord{T: w.T, Coarsen: true, FromPoints: fu.N, ToPoints: cu.N})
	return cu, nil
}

// Refine maps cu to the fine level of w.
func (a *App) Refine(cu *grid.GridFunction, w transfer.TimeWindow) (*grid.GridFunction, error) {
	fu, err := a.transfer.Refine(cu, w)
	if err != nil {
		return nil, fmt.Errorf("refine at t=%g: %w", w.T, err)
	}
	a.trace.RecordTransfer(trace.TransferRecord{T: w.T, FromPoints: cu.N, ToPoints: fu.N})
	return fu, nil
}

// Step advances u in place from t to tEnd; see stepper.Stepper.Step.
func (a *App) Step(t, tEnd, accuracy float64, u *grid.GridFunction) (refactor bool, err error) {
	refactor, err = a.stepper.Step(t, tEnd, accuracy, u)
	if err != nil {
		return false, err
	}
	a.trace.RecordStep(trace.StepRecord{T: t, TEnd: tEnd, Points: u.N, Refactor: refactor})
	return refactor, nil
}

// ErrorNorms returns the grid-weighted L2 and max norms of u minus the
// analytic solution at t.
func (a *App) ErrorNorms(t float64, u *grid.GridFunction) (l2, linf float64, err error) {
	if u == nil || u.Released() {
		return 0, 0, fmt.Errorf("error norms: %w", ErrReleased)
	}
	ue, err := a.Exact(t, u.N)
	if err != nil {
		return 0, 0, err
	}
	defer ue.Free()
	return grid.ErrorNorms(u, ue)
}

// Write records the error of u at time t on level and checkpoints a clone
// when writes are enabled for that level.
func (a *App) Write(t float64, level int, u *grid.GridFunction) error {
	l2, linf, err := a.ErrorNorms(t, u)
	if err != nil {
		return err
	}
	saved := a.cfg.Output.Write && level == a.cfg.Output.CopyLevel
	if saved {
		if err := a.store.Save(level, t, u); err != nil {
			return err
		}
	}
	a.trace.RecordWrite(trace.WriteRecord{T: t, Level: level, Points: u.N, L2: l2, Linf: linf, Saved: saved})
	logrus.Debugf("advect: write t=%g level=%d n=%d l2=%.3e linf=%.3e", t, level, u.N, l2, linf)
	return nil
}

// Result summarizes a sequential march.
type Result struct {
	T        float64
	Steps    int
	L2, Linf float64
	Norm     float64
}

// March integrates the analytic initial data sequentially over the finest
// temporal grid, writing at every time point on level 0.
func (a *App) March(accuracy float64) (*Result, error) {
	u, err := a.Init(a.cfg.Time.Start)
	if err != nil {
		return nil, err
	}
	defer u.Free()
	if err := a.Write(a.cfg.Time.Start, 0, u); err != nil {
		return nil, err
	}
	dt := a.cfg.DtFinest()
	t := a.cfg.Time.Start
	for i := 1; i <= a.cfg.Time.Steps; i++ {
		tNext := a.cfg.Time.Start + float64(i)*dt
		if i == a.cfg.Time.Steps {
			tNext = a.cfg.Time.Stop
		}
		if _, err := a.Step(t, tNext, accuracy, u); err != nil {
			return nil, fmt.Errorf("time step %d: %w", i, err)
		}
		t = tNext
		if err := a.Write(t, 0, u); err != nil {
			return nil, err
		}
	}
	l2, linf, err := a.ErrorNorms(t, u)
	if err != nil {
		return nil, err
	}
	norm, _, err := grid.Norms(u)
	if err != nil {
		return nil, err
	}
	return &Result{T: t, Steps: a.cfg.Time.Steps, L2: l2, Linf: linf, Norm: norm}, nil
}
