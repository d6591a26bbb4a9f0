package advect

import (
	"github.com/braid-sim/advdiff/advect/grid"
	"github.com/braid-sim/advdiff/advect/operators"
	"github.com/braid-sim/advdiff/advect/stepper"
)

// Error sentinels of the kernel, re-exported so callers can match with
// errors.Is without importing the sub-packages.
var (
	ErrAllocation        = grid.ErrAllocation
	ErrDimensionMismatch = grid.ErrDimensionMismatch
	ErrBuffer            = grid.ErrBuffer
	ErrReleased          = grid.ErrReleased
	ErrConfig            = operators.ErrConfig
	ErrStep              = stepper.ErrStep
)

// StepError describes a rejected step request; it unwraps to ErrStep.
type StepError = stepper.StepError
