// Package transfer moves grid functions between the spatial resolutions of
// the temporal levels. Algebraic mode halves the grid by restriction and
// doubles it by cubic interpolation; spectral mode keeps the array length and
// removes the Fourier modes a coarser grid could not represent.
package transfer

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/braid-sim/advdiff/advect/grid"
	"github.com/braid-sim/advdiff/advect/operators"
)

// Mode selects the spatial coarsening strategy for a whole run.
type Mode int

const (
	None Mode = iota
	Algebraic
	Spectral
)

var modeNames = map[Mode]string{
	None:      "none",
	Algebraic: "algebraic",
	Spectral:  "spectral",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a case-insensitive name to a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown coarsening mode %q; valid: none, algebraic, spectral", operators.ErrConfig, s)
}

// Transfer implements Coarsen and Refine for one run.
type Transfer struct {
	ops    *operators.Operators
	mode   Mode
	levels Levels
}

// New validates the mode against the operators and returns a Transfer.
func New(ops *operators.Operators, mode Mode, levels Levels) (*Transfer, error) {
	if _, ok := modeNames[mode]; !ok {
		return nil, fmt.Errorf("%w: unknown coarsening mode %v", operators.ErrConfig, mode)
	}
	if mode == Spectral && !ops.Periodic() {
		return nil, fmt.Errorf("%w: spectral coarsening needs periodic boundaries, got %v/%v",
			operators.ErrConfig, ops.Left(), ops.Right())
	}
	if levels.MinPoints == 0 {
		levels.MinPoints = ops.MinPoints()
	}
	if levels.NFine < levels.MinPoints {
		return nil, fmt.Errorf("%w: finest grid of %d points below minimum %d", operators.ErrConfig, levels.NFine, levels.MinPoints)
	}
	if mode != None && !(levels.DtFinest > 0) {
		return nil, fmt.Errorf("%w: finest time step must be positive, got %v", operators.ErrConfig, levels.DtFinest)
	}
	return &Transfer{ops: ops, mode: mode, levels: levels}, nil
}

func (tr *Transfer) Mode() Mode { return tr.mode }

func (tr *Transfer) Levels() Levels { return tr.levels }

// LevelSize is the array length of a grid function living on a level with
// time step dt.
func (tr *Transfer) LevelSize(dt float64) int {
	if tr.mode != Algebraic {
		return tr.levels.NFine
	}
	n, _ := tr.levels.SizeFor(dt)
	return n
}

func (tr *Transfer) checkSize(op string, u *grid.GridFunction, want int) error {
	if u == nil || u.Released() {
		return fmt.Errorf("transfer: %s: %w", op, grid.ErrReleased)
	}
	if u.N != want {
		return fmt.Errorf("%w: %s: got %d points, level expects %d", grid.ErrDimensionMismatch, op, u.N, want)
	}
	return nil
}

// Coarsen returns a new grid function holding fu on the coarse level of w.
func (tr *Transfer) Coarsen(fu *grid.GridFunction, w TimeWindow) (*grid.GridFunction, error) {
	if err := tr.checkSize("coarsen", fu, tr.LevelSize(w.FineDt())); err != nil {
		return nil, err
	}
	switch tr.mode {
	case Algebraic:
		target, limited := tr.levels.SizeFor(w.CoarseDt())
		if limited {
			logrus.Warnf("transfer: coarsening bottomed out at %d points for dt=%g", target, w.CoarseDt())
		}
		cu, err := fu.Clone()
		if err != nil {
			return nil, err
		}
		for cu.N > target {
			next, err := Restrict(cu, tr.ops.RestrCoeff(), tr.ops.Periodic())
			cu.Free()
			if err != nil {
				return nil, err
			}
			cu = next
		}
		logrus.Debugf("transfer: coarsen t=%g %d -> %d points", w.T, fu.N, cu.N)
		return cu, nil
	case Spectral:
		target, _ := tr.levels.SizeFor(w.CoarseDt())
		logrus.Debugf("transfer: spectral coarsen t=%g keeps modes of a %d-point grid", w.T, target)
		return SpectralFilter(fu, target)
	}
	return fu.Clone()
}

// Refine returns a new grid function holding cu on the fine level of w.
func (tr *Transfer) Refine(cu *grid.GridFunction, w TimeWindow) (*grid.GridFunction, error) {
	if err := tr.checkSize("refine", cu, tr.LevelSize(w.CoarseDt())); err != nil {
		return nil, err
	}
	if tr.mode != Algebraic {
		return cu.Clone()
	}
	target := tr.LevelSize(w.FineDt())
	fu, err := cu.Clone()
	if err != nil {
		return nil, err
	}
	for fu.N < target {
		next, err := Interpolate(fu, tr.ops.Periodic())
		fu.Free()
		if err != nil {
			return nil, err
		}
		fu = next
	}
	logrus.Debugf("transfer: refine t=%g %d -> %d points", w.T, cu.N, fu.N)
	return fu, nil
}
