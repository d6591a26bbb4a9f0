// Package exact provides the analytic solutions used for initial data,
// Dirichlet boundary data, forcing and error measurement.
package exact

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/braid-sim/advdiff/advect/grid"
)

// ErrProblem is returned for an unknown problem number.
var ErrProblem = errors.New("exact: unknown problem number")

// Problem numbers accepted by New.
const (
	TravellingWave = 1
	Twilight       = 2
)

// Params parameterize both problems.
type Params struct {
	Amp       float64
	Phase     float64
	Omega     float64
	WaveSpeed float64
	Viscosity float64
}

// Solution is a smooth function of (x, t) together with the forcing that
// makes it satisfy u_t + c u_x = nu u_xx + f.
type Solution interface {
	// Deriv returns d^kt/dt^kt d^kx/dx^kx u(x, t).
	Deriv(x, t float64, kt, kx int) float64
	Forcing(x, t float64) float64
}

// New returns the solution for problem number pnr.
func New(pnr int, p Params) (Solution, error) {
	switch pnr {
	case TravellingWave:
		return newWave(p), nil
	case Twilight:
		return twilight{p}, nil
	}
	return nil, fmt.Errorf("%w: %d; valid: %d (travelling wave), %d (twilight)", ErrProblem, pnr, TravellingWave, Twilight)
}

// Fill samples d^kt/dt^kt d^kx/dx^kx of s at every point of u.
func Fill(s Solution, u *grid.GridFunction, t float64, kt, kx int) {
	for i := range u.Sol {
		u.Sol[i] = s.Deriv(u.X(i), t, kt, kx)
	}
}

// wave is amp*Im(exp(lambda*t + i(om*x + ph))) with lambda = -i*c*om - nu*om^2,
// an exact solution of the unforced equation.
type wave struct {
	p      Params
	lambda complex128
	ik     complex128
}

func newWave(p Params) wave {
	return wave{
		p:      p,
		lambda: complex(-p.Viscosity*p.Omega*p.Omega, -p.WaveSpeed*p.Omega),
		ik:     complex(0, p.Omega),
	}
}

func (w wave) Deriv(x, t float64, kt, kx int) float64 {
	z := cmplx.Exp(w.lambda*complex(t, 0) + complex(0, w.p.Omega*x+w.p.Phase))
	z *= ipow(w.lambda, kt) * ipow(w.ik, kx)
	return w.p.Amp * imag(z)
}

func (wave) Forcing(x, t float64) float64 { return 0 }

func ipow(z complex128, k int) complex128 {
	r := complex(1, 0)
	for ; k > 0; k-- {
		r *= z
	}
	return r
}

// twilight is the manufactured solution amp*sin(om*x + ph)*cos(om*t).
type twilight struct{ p Params }

func (tw twilight) Deriv(x, t float64, kt, kx int) float64 {
	om := tw.p.Omega
	sx := dsin(kx, om*x+tw.p.Phase) * math.Pow(om, float64(kx))
	ct := dsin(kt+1, om*t) * math.Pow(om, float64(kt))
	return tw.p.Amp * sx * ct
}

func (tw twilight) Forcing(x, t float64) float64 {
	return tw.Deriv(x, t, 1, 0) + tw.p.WaveSpeed*tw.Deriv(x, t, 0, 1) - tw.p.Viscosity*tw.Deriv(x, t, 0, 2)
}

// dsin returns the k-th derivative of sin at a.
func dsin(k int, a float64) float64 {
	switch k % 4 {
	case 0:
		return math.Sin(a)
	case 1:
		return math.Cos(a)
	case 2:
		return -math.Sin(a)
	}
	return -math.Cos(a)
}
