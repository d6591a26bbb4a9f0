package advect

import (
	"github.com/braid-sim/advdiff/advect/braidtest"
	"github.com/braid-sim/advdiff/advect/grid"
)

// TemporalVector is the capability set an external multigrid-in-time driver
// may use on the state at one time point. Construction (init, unpack) and
// level transfer live on App, since they need the run configuration.
// braidtest.TestVector checks an implementation against the App callbacks.
type TemporalVector[V any] interface{ braidtest.Vector[V] }

var _ TemporalVector[*grid.GridFunction] = (*grid.GridFunction)(nil)
