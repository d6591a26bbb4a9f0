package transfer

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/braid-sim/advdiff/advect/grid"
)

// Restrict returns fu on the grid with half as many intervals:
// cu_i = fu_2i + restr*(fu_2i-1 - 2 fu_2i + fu_2i+1). Edge points are injected
// unless the grid is periodic, where the stencil wraps with period n-1.
func Restrict(fu *grid.GridFunction, restr float64, periodic bool) (*grid.GridFunction, error) {
	n := fu.N
	if (n-1)%2 != 0 || n < 5 {
		return nil, fmt.Errorf("%w: cannot restrict a %d-point grid", grid.ErrDimensionMismatch, n)
	}
	nc := (n-1)/2 + 1
	cu, err := grid.New(nc, fu.Length())
	if err != nil {
		return nil, err
	}
	f := fu.Sol
	for i := 1; i < nc-1; i++ {
		j := 2 * i
		cu.Sol[i] = f[j] + restr*(f[j-1]-2*f[j]+f[j+1])
	}
	if periodic {
		cu.Sol[0] = f[0] + restr*(f[n-2]-2*f[0]+f[1])
		cu.Sol[nc-1] = cu.Sol[0]
	} else {
		cu.Sol[0] = f[0]
		cu.Sol[nc-1] = f[n-1]
	}
	return cu, nil
}

// Interpolate returns cu on the grid with twice as many intervals. Even
// points are copied; odd points use the cubic weights (-1, 9, 9, -1)/16, or
// the one-sided (3, 6, -1)/8 next to a non-periodic edge.
func Interpolate(cu *grid.GridFunction, periodic bool) (*grid.GridFunction, error) {
	nc := cu.N
	if nc < 4 {
		return nil, fmt.Errorf("%w: cannot interpolate a %d-point grid", grid.ErrDimensionMismatch, nc)
	}
	n := 2*(nc-1) + 1
	fu, err := grid.New(n, cu.Length())
	if err != nil {
		return nil, err
	}
	c := cu.Sol
	m := nc - 1
	at := func(i int) float64 {
		if periodic {
			return c[((i%m)+m)%m]
		}
		return c[i]
	}
	for i := 0; i < nc; i++ {
		fu.Sol[2*i] = c[i]
	}
	for i := 0; i < nc-1; i++ {
		var v float64
		switch {
		case !periodic && i == 0:
			v = (3*c[0] + 6*c[1] - c[2]) / 8
		case !periodic && i == nc-2:
			v = (3*c[nc-1] + 6*c[nc-2] - c[nc-3]) / 8
		default:
			v = (-at(i-1) + 9*at(i) + 9*at(i+1) - at(i+2)) / 16
		}
		fu.Sol[2*i+1] = v
	}
	return fu, nil
}

// SpectralFilter returns a copy of the periodic grid function u with every
// Fourier mode above (target-1)/2 removed, the resolution of a target-point
// grid. The array length is unchanged.
func SpectralFilter(u *grid.GridFunction, target int) (*grid.GridFunction, error) {
	out, err := u.Clone()
	if err != nil {
		return nil, err
	}
	m := u.N - 1
	kmax := (target - 1) / 2
	if target >= u.N || m < 2 {
		return out, nil
	}
	fft := fourier.NewFFT(m)
	coeff := fft.Coefficients(nil, u.Sol[:m])
	for k := kmax + 1; k < len(coeff); k++ {
		coeff[k] = 0
	}
	seq := fft.Sequence(nil, coeff)
	for i, v := range seq {
		out.Sol[i] = v / float64(m)
	}
	out.Sol[m] = out.Sol[0]
	return out, nil
}
