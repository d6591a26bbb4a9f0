package trace

// Summary aggregates statistics from a Trace.
type Summary struct {
	Steps           int
	RefactoredSteps int
	Coarsens        int
	Refines         int
	Writes          int
	MaxL2, MaxLinf  float64
	LastT           float64
	PointsPerLevel  map[int]int // level -> grid size seen in writes
}

// Summarize computes aggregate statistics from a Trace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(tr *Trace) *Summary {
	s := &Summary{PointsPerLevel: make(map[int]int)}
	if tr == nil {
		return s
	}

	steps := tr.Steps()
	s.Steps = len(steps)
	for _, r := range steps {
		if r.Refactor {
			s.RefactoredSteps++
		}
	}

	for _, r := range tr.Transfers() {
		if r.Coarsen {
			s.Coarsens++
		} else {
			s.Refines++
		}
	}

	writes := tr.Writes()
	s.Writes = len(writes)
	for i, w := range writes {
		s.PointsPerLevel[w.Level] = w.Points
		if w.L2 > s.MaxL2 {
			s.MaxL2 = w.L2
		}
		if w.Linf > s.MaxLinf {
			s.MaxLinf = w.Linf
		}
		if i == 0 || w.T > s.LastT {
			s.LastT = w.T
		}
	}

	return s
}
