package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

func checkSameSize(op string, x, y *GridFunction) error {
	if x.Released() || y.Released() {
		return fmt.Errorf("%s: %w", op, ErrReleased)
	}
	if x.N != y.N {
		return fmt.Errorf("%s: %w: %d vs %d points", op, ErrDimensionMismatch, x.N, y.N)
	}
	return nil
}

// Sum computes y := alpha*x + beta*y in place.
func Sum(alpha float64, x *GridFunction, beta float64, y *GridFunction) error {
	if err := checkSameSize("sum", x, y); err != nil {
		return err
	}
	switch {
	case &x.Sol[0] == &y.Sol[0]:
		floats.Scale(alpha+beta, y.Sol)
	case beta == 0:
		// y may hold garbage (even NaN) when it is only a destination.
		floats.ScaleTo(y.Sol, alpha, x.Sol)
	default:
		if beta != 1 {
			floats.Scale(beta, y.Sol)
		}
		floats.AddScaled(y.Sol, alpha, x.Sol)
	}
	return nil
}

// Dot returns the unweighted inner product sum_i u_i v_i.
func Dot(u, v *GridFunction) (float64, error) {
	if err := checkSameSize("dot", u, v); err != nil {
		return 0, err
	}
	return floats.Dot(u.Sol, v.Sol), nil
}

// Norm returns sqrt(Dot(u, u)).
func Norm(u *GridFunction) (float64, error) {
	d, err := Dot(u, u)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(d), nil
}

// Norms returns the grid-weighted discrete L2 norm sqrt(h*sum u_i^2) and the
// max norm of w.
func Norms(w *GridFunction) (l2, linf float64, err error) {
	if w.Released() {
		return 0, 0, fmt.Errorf("norms: %w", ErrReleased)
	}
	l2 = math.Sqrt(w.H) * floats.Norm(w.Sol, 2)
	linf = floats.Norm(w.Sol, math.Inf(1))
	return l2, linf, nil
}

// ErrorNorms returns the grid-weighted L2 and max norms of w - we.
func ErrorNorms(w, we *GridFunction) (l2, linf float64, err error) {
	if err := checkSameSize("error norms", w, we); err != nil {
		return 0, 0, err
	}
	diff := make([]float64, w.N)
	floats.SubTo(diff, w.Sol, we.Sol)
	l2 = math.Sqrt(w.H) * floats.Norm(diff, 2)
	linf = floats.Norm(diff, math.Inf(1))
	return l2, linf, nil
}

// Sum sets u := alpha*x + beta*u.
func (u *GridFunction) Sum(alpha float64, x *GridFunction, beta float64) error {
	return Sum(alpha, x, beta, u)
}

// Dot returns the unweighted inner product of u and v.
func (u *GridFunction) Dot(v *GridFunction) (float64, error) {
	return Dot(u, v)
}
