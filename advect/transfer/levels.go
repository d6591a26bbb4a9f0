package transfer

import "math"

// Relative tolerance when comparing a level's time step to a power of two
// times the finest step.
const dtTol = 1e-10

// TimeWindow carries the time point being transferred and its neighbours on
// the fine and coarse temporal grids. At the ends of the interval a
// neighbour equals T.
type TimeWindow struct {
	T                       float64
	FineMinus, FinePlus     float64
	CoarseMinus, CoarsePlus float64
}

// FineDt is the fine-level time step seen from T.
func (w TimeWindow) FineDt() float64 { return math.Max(w.FinePlus-w.T, w.T-w.FineMinus) }

// CoarseDt is the coarse-level time step seen from T.
func (w TimeWindow) CoarseDt() float64 { return math.Max(w.CoarsePlus-w.T, w.T-w.CoarseMinus) }

// Levels maps a temporal step size to the spatial grid size of its level:
// the finest grid is halved once per doubling of the time step.
type Levels struct {
	NFine     int     // points on the finest grid
	DtFinest  float64 // (tstop - tstart) / nsteps
	MinPoints int     // smallest grid the operators accept
}

// SizeFor returns the grid size for time step dt. limited reports that
// halving stopped at the minimum grid size or an odd interval count before
// the time step ratio was exhausted.
func (l Levels) SizeFor(dt float64) (n int, limited bool) {
	n = l.NFine
	if !(l.DtFinest > 0) {
		return n, false
	}
	ratio := dt / l.DtFinest
	for ratio >= 2*(1-dtTol) {
		if (n-1)%2 != 0 || (n-1)/2+1 < l.MinPoints {
			return n, true
		}
		n = (n-1)/2 + 1
		ratio /= 2
	}
	return n, false
}
