// Package operators builds the immutable finite-difference operators of the
// advection-diffusion kernel: summation-by-parts first- and second-derivative
// operators of order 4 or 6 with their boundary closures, the ghost-point and
// boundary-derivative coefficients used by the boundary conditions, the RK4
// coefficients, and the undivided-difference damping used on coarse levels.
//
// An Operators value is constructed once per run and never mutated, so it may
// be shared by any number of goroutines.
package operators

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrConfig is returned for an invalid order, boundary type or physical parameter.
var ErrConfig = errors.New("operators: invalid discretization parameters")

// BoundaryType selects how one edge of the domain is closed.
type BoundaryType int

const (
	Periodic BoundaryType = iota
	Dirichlet
	Extrapolation
)

var boundaryNames = map[BoundaryType]string{
	Periodic:      "periodic",
	Dirichlet:     "dirichlet",
	Extrapolation: "extrapolation",
}

func (b BoundaryType) String() string {
	if s, ok := boundaryNames[b]; ok {
		return s
	}
	return fmt.Sprintf("BoundaryType(%d)", int(b))
}

// ParseBoundaryType maps a case-insensitive name to a BoundaryType.
func ParseBoundaryType(s string) (BoundaryType, error) {
	for b, name := range boundaryNames {
		if strings.EqualFold(s, name) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown boundary type %q; valid: periodic, dirichlet, extrapolation", ErrConfig, s)
}

// Params are the global problem parameters the operators are built from.
type Params struct {
	Order      int          // 4 or 6
	Left       BoundaryType // boundary at x = 0
	Right      BoundaryType // boundary at x = L
	Length     float64      // domain length L
	WaveSpeed  float64      // c
	Viscosity  float64      // nu
	RestrCoeff float64      // weight of the undivided 2nd difference in restriction
	ADCoeff    float64      // artificial damping on coarse levels
}

// Operators holds every coefficient table of one run.
type Operators struct {
	p Params

	iop1, iop2 []float64 // interior stencils, offsets -g..g
	bop        *mat.Dense
	bop2       *mat.Dense
	gh, gh2    float64
	bder       []float64
	betap      float64
	norm       []float64
	extrap     []float64
	diss       []float64
	dissSign   float64
	radius1    float64
	radius2    float64
}

// New validates p and builds the operator tables.
func New(p Params) (*Operators, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	o := &Operators{p: p}

	var d1, d2 [][]float64
	switch p.Order {
	case 4:
		o.iop1, o.iop2 = iopD1Order4, iopD2Order4
		d1, d2 = d1Order4, d2Order4
		o.gh2 = ghD2Order4
		o.bder = bderOrder4
		o.norm = normOrder4
		o.diss, o.dissSign = dissOrder4, -1
	case 6:
		o.iop1, o.iop2 = iopD1Order6, iopD2Order6
		d1, d2 = d1Order6, d2Order6
		o.gh2 = ghD2Order6
		o.bder = bderOrder6
		o.norm = normOrder6
		o.diss, o.dissSign = dissOrder6, 1
	}
	o.bop = denseOf(d1)
	o.bop2 = denseOf(d2)
	o.extrap = extrapolationWeights(p.Order)
	o.gh = o.bder[0]
	o.betap = 1 / o.bder[0]
	o.radius1, o.radius2 = o.rowSumBounds()
	return o, nil
}

func validate(p Params) error {
	if p.Order != 4 && p.Order != 6 {
		return fmt.Errorf("%w: order %d; valid: 4, 6", ErrConfig, p.Order)
	}
	for _, b := range []BoundaryType{p.Left, p.Right} {
		if _, ok := boundaryNames[b]; !ok {
			return fmt.Errorf("%w: unknown boundary type %v", ErrConfig, b)
		}
	}
	if (p.Left == Periodic) != (p.Right == Periodic) {
		return fmt.Errorf("%w: periodic boundary on one side only (left=%v, right=%v)", ErrConfig, p.Left, p.Right)
	}
	if !(p.Length > 0) || math.IsInf(p.Length, 0) {
		return fmt.Errorf("%w: domain length must be positive and finite, got %v", ErrConfig, p.Length)
	}
	if math.IsNaN(p.WaveSpeed) || math.IsInf(p.WaveSpeed, 0) {
		return fmt.Errorf("%w: wave speed must be finite, got %v", ErrConfig, p.WaveSpeed)
	}
	if !(p.Viscosity >= 0) || math.IsInf(p.Viscosity, 0) {
		return fmt.Errorf("%w: viscosity must be non-negative and finite, got %v", ErrConfig, p.Viscosity)
	}
	if !(p.RestrCoeff >= 0) || !(p.ADCoeff >= 0) {
		return fmt.Errorf("%w: restriction and damping coefficients must be non-negative", ErrConfig)
	}
	return nil
}

// extrapolationWeights returns the weights of the polynomial of degree q-1
// through q grid values evaluated one point beyond the edge:
// (-1)^j C(q, j+1), j = 0..q-1.
func extrapolationWeights(q int) []float64 {
	w := make([]float64, q)
	binom, sign := float64(q), 1.0
	for j := range w {
		w[j] = sign * binom
		binom = binom * float64(q-j-1) / float64(j+2)
		sign = -sign
	}
	return w
}

func denseOf(rows [][]float64) *mat.Dense {
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}

// rowSumBounds returns max_i sum_j |a_ij| for D1 and D2 (times h and h^2),
// an upper bound on their spectral radii.
func (o *Operators) rowSumBounds() (float64, float64) {
	abs := func(v []float64) float64 {
		s := 0.0
		for _, x := range v {
			s += math.Abs(x)
		}
		return s
	}
	r1, r2 := abs(o.iop1), abs(o.iop2)
	if o.Periodic() {
		return r1, r2
	}
	for i := 0; i < o.bop.RawMatrix().Rows; i++ {
		r1 = math.Max(r1, abs(o.bop.RawRowView(i)))
	}
	for i := 0; i < o.bop2.RawMatrix().Rows; i++ {
		s := abs(o.bop2.RawRowView(i))
		if i == 0 {
			s += math.Abs(o.gh2)
		}
		r2 = math.Max(r2, s)
	}
	return r1, r2
}

// Params returns the parameters the operators were built from.
func (o *Operators) Params() Params { return o.p }

// Order is the interior order of accuracy, 4 or 6.
func (o *Operators) Order() int { return o.p.Order }

// Left is the boundary type at x = 0.
func (o *Operators) Left() BoundaryType { return o.p.Left }

// Right is the boundary type at x = L.
func (o *Operators) Right() BoundaryType { return o.p.Right }

// Length is the domain length L.
func (o *Operators) Length() float64 { return o.p.Length }

// WaveSpeed is the advection speed c.
func (o *Operators) WaveSpeed() float64 { return o.p.WaveSpeed }

// Viscosity is the diffusion coefficient nu.
func (o *Operators) Viscosity() float64 { return o.p.Viscosity }

// RestrCoeff weights the undivided second difference in restriction.
func (o *Operators) RestrCoeff() float64 { return o.p.RestrCoeff }

// ADCoeff scales the artificial damping on coarse levels.
func (o *Operators) ADCoeff() float64 { return o.p.ADCoeff }

// Periodic reports whether both edges wrap.
func (o *Operators) Periodic() bool { return o.p.Left == Periodic }

// GhostCoeff is the weight of the ghost point in the boundary derivative,
// bder[0].
func (o *Operators) GhostCoeff() float64 { return o.gh }

// GhostCoeff2 is the weight of the ghost point in the first row of D2.
func (o *Operators) GhostCoeff2() float64 { return o.gh2 }

// BetaPCoeff is 1/GhostCoeff, the factor that solves the boundary
// derivative for the ghost value.
func (o *Operators) BetaPCoeff() float64 { return o.betap }

// SpectralBound1 bounds the spectral radius of h*D1 by its largest row sum.
func (o *Operators) SpectralBound1() float64 { return o.radius1 }

// SpectralBound2 bounds the spectral radius of h^2*D2 by its largest row sum,
// ghost weight included.
func (o *Operators) SpectralBound2() float64 { return o.radius2 }

// DissipationBound is the row-sum bound of the undivided damping stencil.
func (o *Operators) DissipationBound() float64 {
	s := 0.0
	for _, c := range o.diss {
		s += math.Abs(c)
	}
	return s
}

// Extrapolate returns the value one point beyond an edge of the polynomial
// of degree Order()-1 through the first Order() grid values. at(j) is the
// j-th grid value counted inward from that edge.
func (o *Operators) Extrapolate(at func(int) float64) float64 {
	v := 0.0
	for j, c := range o.extrap {
		v += c * at(j)
	}
	return v
}

// ExtrapolationWeights returns a copy of the weights used by Extrapolate.
func (o *Operators) ExtrapolationWeights() []float64 { return append([]float64(nil), o.extrap...) }

// Ghosts is the number of ghost layers per side the operators read: half the
// interior stencil width.
func (o *Operators) Ghosts() int { return len(o.iop1) / 2 }

// D1Closure returns a copy of the nb x wb first-derivative boundary block.
func (o *Operators) D1Closure() *mat.Dense { return mat.DenseCopyOf(o.bop) }

// D2Closure returns a copy of the nb2 x wb2 second-derivative boundary block.
func (o *Operators) D2Closure() *mat.Dense { return mat.DenseCopyOf(o.bop2) }

// BoundaryDerivative returns a copy of the one-sided boundary derivative
// coefficients; entry 0 multiplies the ghost point.
func (o *Operators) BoundaryDerivative() []float64 { return append([]float64(nil), o.bder...) }

// NormWeights returns a copy of the diagonal SBP norm weights of the boundary points.
func (o *Operators) NormWeights() []float64 { return append([]float64(nil), o.norm...) }

// RK4 returns the stage time fractions and quadrature weights.
func (o *Operators) RK4() (alpha, beta [4]float64) { return rkAlpha, rkBeta }

// MinPoints is the smallest grid the operators can be applied to.
func (o *Operators) MinPoints() int {
	if o.Periodic() {
		return 2*o.Ghosts() + 1
	}
	r1, c1 := o.bop.Dims()
	r2, c2 := o.bop2.Dims()
	return max(2*r1, c1, 2*r2, c2)
}
