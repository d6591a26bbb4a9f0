package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	tr := New(LevelCalls)

	// WHEN summarized
	s := Summarize(tr)

	// THEN all counts are zero
	if s.Steps != 0 || s.Coarsens != 0 || s.Refines != 0 || s.Writes != 0 {
		t.Errorf("expected zero counts, got %+v", s)
	}
	if len(s.PointsPerLevel) != 0 {
		t.Error("expected empty level map")
	}
	if Summarize(nil).Steps != 0 {
		t.Error("expected nil trace to summarize to zero")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with steps, transfers and writes
	tr := New(LevelCalls)
	tr.RecordStep(StepRecord{T: 0, TEnd: 0.1, Points: 65, Refactor: true})
	tr.RecordStep(StepRecord{T: 0.1, TEnd: 0.2, Points: 65})
	tr.RecordTransfer(TransferRecord{T: 0.2, Coarsen: true, FromPoints: 65, ToPoints: 33})
	tr.RecordTransfer(TransferRecord{T: 0.2, FromPoints: 33, ToPoints: 65})
	tr.RecordTransfer(TransferRecord{T: 0.4, FromPoints: 33, ToPoints: 65})
	tr.RecordWrite(WriteRecord{T: 0.2, Level: 0, Points: 65, L2: 1e-4, Linf: 3e-4})
	tr.RecordWrite(WriteRecord{T: 0.4, Level: 1, Points: 33, L2: 2e-3, Linf: 1e-3})

	// WHEN summarized
	s := Summarize(tr)

	// THEN counts and maxima match
	if s.Steps != 2 || s.RefactoredSteps != 1 {
		t.Errorf("expected 2 steps with 1 refactored, got %d/%d", s.Steps, s.RefactoredSteps)
	}
	if s.Coarsens != 1 || s.Refines != 2 {
		t.Errorf("expected 1 coarsen and 2 refines, got %d/%d", s.Coarsens, s.Refines)
	}
	if s.MaxL2 != 2e-3 || s.MaxLinf != 1e-3 {
		t.Errorf("unexpected maxima L2=%g Linf=%g", s.MaxL2, s.MaxLinf)
	}
	if s.LastT != 0.4 {
		t.Errorf("expected last t 0.4, got %g", s.LastT)
	}
	if s.PointsPerLevel[0] != 65 || s.PointsPerLevel[1] != 33 {
		t.Errorf("unexpected level sizes %v", s.PointsPerLevel)
	}
}
