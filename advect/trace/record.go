// Package trace provides call-trace recording for the advection-diffusion
// kernel: steps, level transfers and diagnostic writes issued by a driver.
// This package has no dependencies on the kernel packages; it stores pure data types.
package trace

// StepRecord captures a single Step call.
type StepRecord struct {
	T, TEnd  float64
	Points   int
	Refactor bool
}

// TransferRecord captures a single Coarsen or Refine call.
type TransferRecord struct {
	T          float64
	Coarsen    bool // false for Refine
	FromPoints int
	ToPoints   int
}

// WriteRecord captures a diagnostic write with the error against the exact
// solution at that time.
type WriteRecord struct {
	T      float64
	Level  int
	Points int
	L2     float64
	Linf   float64
	Saved  bool // checkpointed in the level store
}
