// Package stepper advances one grid function over a time interval with the
// classical four-stage Runge-Kutta method, splitting the interval into equal
// substeps that satisfy the CFL condition of the operators.
//
// A Stepper is immutable and keeps no state between calls; every Step call
// allocates its own workspace, so distinct grid functions may be stepped
// concurrently.
package stepper

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/braid-sim/advdiff/advect/exact"
	"github.com/braid-sim/advdiff/advect/grid"
	"github.com/braid-sim/advdiff/advect/operators"
)

// ErrStep is returned for an invalid step request.
var ErrStep = errors.New("stepper: invalid step request")

// StepError describes a rejected step request.
type StepError struct {
	T, TEnd, Accuracy float64
	Err               error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step from t=%g to t=%g (accuracy %g): %v", e.T, e.TEnd, e.Accuracy, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// BoundaryMode selects how Dirichlet data enters the intermediate RK stages.
type BoundaryMode int

const (
	// EveryStage injects the exact boundary value at each stage time.
	EveryStage BoundaryMode = iota
	// FullStep builds stage values from the Taylor expansion of the data at
	// the start of the step; the exact value is imposed after the step.
	FullStep
)

var modeNames = map[BoundaryMode]string{
	EveryStage: "every-stage",
	FullStep:   "full-step",
}

func (m BoundaryMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("BoundaryMode(%d)", int(m))
}

// ParseBoundaryMode maps a case-insensitive name to a BoundaryMode.
func ParseBoundaryMode(s string) (BoundaryMode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown boundary data mode %q; valid: every-stage, full-step", operators.ErrConfig, s)
}

// Config holds the stepper settings that are not part of the operators.
type Config struct {
	CFL  float64      // fraction of the stable step; 1 is the stability limit
	Mode BoundaryMode // Dirichlet data treatment
	// FineN is the finest grid size. Grids with fewer points get artificial
	// damping; zero disables damping.
	FineN int
}

// DefaultCFL is used when Config.CFL is zero.
const DefaultCFL = 1.0

// MaxSubsteps bounds the number of RK4 substeps of a single Step call.
const MaxSubsteps = math.MaxInt32

// Tolerance on the ratio interval/dt before rounding up the substep count.
const eps = 1e-12

// Stepper advances grid functions in time.
type Stepper struct {
	ops *operators.Operators
	sol exact.Solution
	cfg Config
}

// New returns a Stepper for the given operators and boundary/forcing source.
func New(ops *operators.Operators, sol exact.Solution, cfg Config) (*Stepper, error) {
	if ops == nil || sol == nil {
		return nil, fmt.Errorf("%w: stepper needs operators and a solution", operators.ErrConfig)
	}
	if cfg.CFL == 0 {
		cfg.CFL = DefaultCFL
	}
	if !(cfg.CFL > 0) || math.IsInf(cfg.CFL, 0) {
		return nil, fmt.Errorf("%w: cfl must be positive and finite, got %v", operators.ErrConfig, cfg.CFL)
	}
	if _, ok := modeNames[cfg.Mode]; !ok {
		return nil, fmt.Errorf("%w: unknown boundary data mode %v", operators.ErrConfig, cfg.Mode)
	}
	if cfg.FineN < 0 {
		return nil, fmt.Errorf("%w: negative fine grid size %d", operators.ErrConfig, cfg.FineN)
	}
	if err := checkOutflow(ops); err != nil {
		return nil, err
	}
	return &Stepper{ops: ops, sol: sol, cfg: cfg}, nil
}

// Operators returns the operators the stepper was built with.
func (s *Stepper) Operators() *operators.Operators { return s.ops }

// checkOutflow rejects extrapolation at an edge the flow enters through or
// does not cross: such an edge carries no boundary data at all.
func checkOutflow(ops *operators.Operators) error {
	c := ops.WaveSpeed()
	if ops.Left() == operators.Extrapolation && !(c < 0) {
		return fmt.Errorf("%w: extrapolation needs outflow at x = 0, got wave speed %g; use dirichlet", operators.ErrConfig, c)
	}
	if ops.Right() == operators.Extrapolation && !(c > 0) {
		return fmt.Errorf("%w: extrapolation needs outflow at x = L, got wave speed %g; use dirichlet", operators.ErrConfig, c)
	}
	return nil
}

func (s *Stepper) coarse(n int) bool {
	return n < s.cfg.FineN && s.ops.ADCoeff() > 0 && s.ops.WaveSpeed() != 0
}

// StableDt returns the largest stable time step on a grid of n points with
// spacing h, scaled by the CFL number. It is +Inf for a zero operator.
func (s *Stepper) StableDt(n int, h float64) float64 {
	c := math.Abs(s.ops.WaveSpeed())
	rate := c*s.ops.SpectralBound1()/h + s.ops.Viscosity()*s.ops.SpectralBound2()/(h*h)
	if s.coarse(n) {
		rate += s.ops.ADCoeff() * c / h * s.ops.DissipationBound()
	}
	if rate == 0 {
		return math.Inf(1)
	}
	return s.cfg.CFL / rate
}

// NSteps is the number of RK4 substeps used to advance a grid of n points
// from t to tEnd. Accuracy values below one shrink the substep. A count above
// MaxSubsteps is a *StepError.
func (s *Stepper) NSteps(t, tEnd, accuracy float64, n int, h float64) (int, error) {
	span := tEnd - t
	if span <= 0 {
		return 0, nil
	}
	dt := math.Min(accuracy, 1) * s.StableDt(n, h)
	if math.IsInf(dt, 1) {
		return 1, nil
	}
	q := math.Ceil(span/dt - eps)
	if !(q <= MaxSubsteps) {
		return 0, &StepError{T: t, TEnd: tEnd, Accuracy: accuracy,
			Err: fmt.Errorf("%w: %.3g substeps exceed the limit of %d", ErrStep, q, MaxSubsteps)}
	}
	return max(1, int(q)), nil
}

func checkRequest(t, tEnd, accuracy float64) error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	var err error
	switch {
	case !finite(t) || !finite(tEnd) || !finite(accuracy):
		err = fmt.Errorf("%w: non-finite argument", ErrStep)
	case tEnd < t:
		err = fmt.Errorf("%w: end time before start time", ErrStep)
	case accuracy <= 0:
		err = fmt.Errorf("%w: accuracy must be positive", ErrStep)
	}
	if err != nil {
		return &StepError{T: t, TEnd: tEnd, Accuracy: accuracy, Err: err}
	}
	return nil
}

// Step advances u in place from t to tEnd. refactor reports whether the
// interval was split into more than one substep.
func (s *Stepper) Step(t, tEnd, accuracy float64, u *grid.GridFunction) (refactor bool, err error) {
	if err := checkRequest(t, tEnd, accuracy); err != nil {
		return false, err
	}
	if u == nil || u.Released() {
		return false, fmt.Errorf("stepper: %w", grid.ErrReleased)
	}
	if u.N < s.ops.MinPoints() {
		return false, fmt.Errorf("%w: %d points, operators of order %d need at least %d",
			grid.ErrDimensionMismatch, u.N, s.ops.Order(), s.ops.MinPoints())
	}

	nsteps, err := s.NSteps(t, tEnd, accuracy, u.N, u.H)
	if err != nil {
		return false, err
	}
	if nsteps == 0 {
		return false, nil
	}
	dt := (tEnd - t) / float64(nsteps)
	logrus.Debugf("stepper: n=%d t=[%g,%g] nsteps=%d dt=%.4g", u.N, t, tEnd, nsteps, dt)

	ws := s.newWorkspace(u.N)
	for k := 0; k < nsteps; k++ {
		t0 := t + float64(k)*dt
		t1 := t + float64(k+1)*dt
		if k == nsteps-1 {
			t1 = tEnd
		}
		s.rk4(ws, u, t0, dt, t1)
	}
	return nsteps > 1, nil
}

type workspace struct {
	w     []float64 // ghost-extended stage values
	stage []float64
	k     []float64
	acc   []float64
	tmp   []float64
}

func (s *Stepper) newWorkspace(n int) *workspace {
	return &workspace{
		w:     make([]float64, n+2*s.ops.Ghosts()),
		stage: make([]float64, n),
		k:     make([]float64, n),
		acc:   make([]float64, n),
		tmp:   make([]float64, n),
	}
}

func (s *Stepper) rk4(ws *workspace, u *grid.GridFunction, t0, dt, t1 float64) {
	alpha, beta := s.ops.RK4()
	copy(ws.acc, u.Sol)
	for st := range alpha {
		copy(ws.stage, u.Sol)
		if st > 0 {
			floats.AddScaled(ws.stage, alpha[st]*dt, ws.k)
		}
		s.rhs(ws, st, t0, dt, u.H)
		floats.AddScaled(ws.acc, beta[st]*dt, ws.k)
	}
	copy(u.Sol, ws.acc)
	s.imposeExact(u.Sol, t1)
}

// rhs evaluates dw/dt for stage st of the step starting at t0 into ws.k.
func (s *Stepper) rhs(ws *workspace, st int, t0, dt, h float64) {
	alpha, _ := s.ops.RK4()
	ts := t0 + alpha[st]*dt
	n := len(ws.stage)
	length := s.ops.Length()

	var gxL, gxR float64
	if s.ops.Left() == operators.Dirichlet {
		ws.stage[0] = s.boundaryData(0, st, t0, dt, 0)
		gxL = s.boundaryData(0, st, t0, dt, 1)
	}
	if s.ops.Right() == operators.Dirichlet {
		ws.stage[n-1] = s.boundaryData(length, st, t0, dt, 0)
		gxR = s.boundaryData(length, st, t0, dt, 1)
	}

	g := s.ops.Ghosts()
	copy(ws.w[g:], ws.stage)
	s.assignGhosts(ws.w, n, h, gxL, gxR)

	s.ops.D1(ws.w, h, ws.tmp)
	floats.ScaleTo(ws.k, -s.ops.WaveSpeed(), ws.tmp)
	if nu := s.ops.Viscosity(); nu != 0 {
		s.ops.D2(ws.w, h, ws.tmp)
		floats.AddScaled(ws.k, nu, ws.tmp)
	}
	for i := range ws.k {
		ws.k[i] += s.sol.Forcing(float64(i)*h, ts)
	}
	if s.coarse(n) {
		s.ops.AddDissipation(ws.w, s.ops.ADCoeff()*math.Abs(s.ops.WaveSpeed())/h, ws.k)
	}

	if s.ops.Periodic() {
		ws.k[n-1] = ws.k[0]
	}
	if s.ops.Left() == operators.Dirichlet {
		ws.k[0] = s.sol.Deriv(0, ts, 1, 0)
	}
	if s.ops.Right() == operators.Dirichlet {
		ws.k[n-1] = s.sol.Deriv(length, ts, 1, 0)
	}
}

// boundaryData returns the kx-th space derivative of the Dirichlet data at x
// for stage st of the step [t0, t0+dt].
func (s *Stepper) boundaryData(x float64, st int, t0, dt float64, kx int) float64 {
	if s.cfg.Mode == EveryStage {
		alpha, _ := s.ops.RK4()
		return s.sol.Deriv(x, t0+alpha[st]*dt, 0, kx)
	}
	g := s.sol.Deriv(x, t0, 0, kx)
	if st == 0 {
		return g
	}
	g1 := s.sol.Deriv(x, t0, 1, kx)
	g2 := s.sol.Deriv(x, t0, 2, kx)
	switch st {
	case 1:
		return g + dt/2*g1
	case 2:
		return g + dt/2*g1 + dt*dt/4*g2
	}
	g3 := s.sol.Deriv(x, t0, 3, kx)
	return g + dt*g1 + dt*dt/2*g2 + dt*dt*dt/4*g3
}

// imposeExact sets Dirichlet boundary values to the data at t and restores
// the periodic duplicate point.
func (s *Stepper) imposeExact(u []float64, t float64) {
	n := len(u)
	if s.ops.Periodic() {
		u[n-1] = u[0]
		return
	}
	if s.ops.Left() == operators.Dirichlet {
		u[0] = s.sol.Deriv(0, t, 0, 0)
	}
	if s.ops.Right() == operators.Dirichlet {
		u[n-1] = s.sol.Deriv(s.ops.Length(), t, 0, 0)
	}
}
