// Package grid holds the per-timestep state of the advection-diffusion kernel:
// the GridFunction sample vector, the vector algebra a multigrid-in-time driver
// applies to it, and the fixed-layout wire codec used to move it between
// processes and levels.
//
// A GridFunction has exactly one owner. Nothing in this package locks; two
// calls must never touch the same GridFunction concurrently.
package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrAllocation is returned when storage for a grid function cannot be obtained.
	ErrAllocation = errors.New("grid: cannot allocate grid function")

	// ErrDimensionMismatch indicates operands with different numbers of grid points.
	ErrDimensionMismatch = errors.New("grid: dimension mismatch")

	// ErrBuffer indicates a malformed or undersized serialization buffer.
	ErrBuffer = errors.New("grid: malformed or undersized buffer")

	// ErrReleased indicates use of a grid function after Free.
	ErrReleased = errors.New("grid: grid function already released")
)

// MaxPoints bounds the number of samples a single grid function may hold.
const MaxPoints = 1 << 28

// GridFunction is one timestep's solution on a uniform 1-D grid.
type GridFunction struct {
	Sol []float64 // samples u_0 .. u_{N-1}
	N   int       // number of grid points
	H   float64   // grid spacing, L/(N-1)
}

// New allocates a zero-valued grid function with n points spanning a domain of
// the given length.
func New(n int, length float64) (*GridFunction, error) {
	if n < 2 || n > MaxPoints {
		return nil, fmt.Errorf("%w: n=%d outside [2, %d]", ErrAllocation, n, MaxPoints)
	}
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, fmt.Errorf("%w: domain length %v", ErrAllocation, length)
	}
	return &GridFunction{
		Sol: make([]float64, n),
		N:   n,
		H:   length / float64(n-1),
	}, nil
}

// Length returns the domain length covered by the grid.
func (u *GridFunction) Length() float64 {
	return u.H * float64(u.N-1)
}

// X returns the coordinate of grid point i.
func (u *GridFunction) X(i int) float64 {
	return float64(i) * u.H
}

// Released reports whether Free has been called.
func (u *GridFunction) Released() bool {
	return u == nil || u.Sol == nil
}

// Clone returns a deep copy with independent storage.
func (u *GridFunction) Clone() (*GridFunction, error) {
	if u.Released() {
		return nil, fmt.Errorf("clone: %w", ErrReleased)
	}
	v := &GridFunction{
		Sol: make([]float64, u.N),
		N:   u.N,
		H:   u.H,
	}
	copy(v.Sol, u.Sol)
	return v, nil
}

// Free drops the sample storage. Calling Free on a released grid function is a no-op.
func (u *GridFunction) Free() {
	if u == nil {
		return
	}
	u.Sol = nil
	u.N = 0
}

// Equal reports exact elementwise equality. Intended for tests.
func (u *GridFunction) Equal(v *GridFunction) bool {
	if u.Released() || v.Released() {
		return u.Released() && v.Released()
	}
	if u.N != v.N || u.H != v.H {
		return false
	}
	for i := range u.Sol {
		if u.Sol[i] != v.Sol[i] {
			return false
		}
	}
	return true
}
