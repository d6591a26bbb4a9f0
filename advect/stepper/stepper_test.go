package stepper

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/braid-sim/advdiff/advect/exact"
	"github.com/braid-sim/advdiff/advect/grid"
	"github.com/braid-sim/advdiff/advect/internal/testutil"
	"github.com/braid-sim/advdiff/advect/operators"
)

type setup struct {
	order   int
	bc      operators.BoundaryType
	outflow bool // close x = L by extrapolation instead of bc
	c, nu   float64
	pnr     int
	mode    BoundaryMode
	ad      float64
	fineN   int
	cfl     float64
}

func (s setup) build(t *testing.T) (*Stepper, exact.Solution) {
	t.Helper()
	right := s.bc
	if s.outflow {
		right = operators.Extrapolation
	}
	ops, err := operators.New(operators.Params{
		Order: s.order, Left: s.bc, Right: right, Length: 1,
		WaveSpeed: s.c, Viscosity: s.nu, ADCoeff: s.ad,
	})
	require.NoError(t, err)
	pnr := s.pnr
	if pnr == 0 {
		pnr = exact.TravellingWave
	}
	sol, err := exact.New(pnr, exact.Params{Amp: 1, Phase: 0.3, Omega: 2 * math.Pi, WaveSpeed: s.c, Viscosity: s.nu})
	require.NoError(t, err)
	st, err := New(ops, sol, Config{CFL: s.cfl, Mode: s.mode, FineN: s.fineN})
	require.NoError(t, err)
	return st, sol
}

func initial(t *testing.T, sol exact.Solution, n int, t0 float64) *grid.GridFunction {
	t.Helper()
	u, err := grid.New(n, 1)
	require.NoError(t, err)
	exact.Fill(sol, u, t0, 0, 0)
	return u
}

// maxError steps the exact initial data from 0 to tEnd and returns the max
// norm error.
func maxError(t *testing.T, s setup, n int, tEnd, accuracy float64) float64 {
	t.Helper()
	st, sol := s.build(t)
	u := initial(t, sol, n, 0)
	_, err := st.Step(0, tEnd, accuracy, u)
	require.NoError(t, err)
	_, linf, err := grid.ErrorNorms(u, initial(t, sol, n, tEnd))
	require.NoError(t, err)
	return linf
}

func TestStep_Periodic_ConvergesAtDesignOrder(t *testing.T) {
	// GIVEN a travelling wave on periodic grids refined by two
	var errs4, errs6 []float64
	for _, n := range []int{33, 65, 129} {
		errs4 = append(errs4, maxError(t, setup{order: 4, bc: operators.Periodic, c: 1}, n, 1, 1))
		errs6 = append(errs6, maxError(t, setup{order: 6, bc: operators.Periodic, c: 1}, n, 1, 0.1))
	}

	// THEN the observed rates match the interior order
	testutil.AssertMinRate(t, "order 4", errs4, 3.5)
	testutil.AssertMinRate(t, "order 6", errs6, 5)
}

func TestStep_Dirichlet_BothBoundaryModesAccurate(t *testing.T) {
	for _, mode := range []BoundaryMode{EveryStage, FullStep} {
		for _, pnr := range []int{exact.TravellingWave, exact.Twilight} {
			s := setup{order: 4, bc: operators.Dirichlet, c: 1, nu: 0.1, pnr: pnr, mode: mode}
			e := maxError(t, s, 65, 0.1, 1)
			assert.Less(t, e, 1e-3, "mode %v problem %d", mode, pnr)
		}
	}
}

func TestStep_Order6Dirichlet_ConvergesAtBoundaryOrder(t *testing.T) {
	// GIVEN a travelling wave with Dirichlet data on grids refined by two
	s := setup{order: 6, bc: operators.Dirichlet, c: 1, nu: 0.1}
	var errs []float64
	for _, n := range []int{17, 33, 65} {
		errs = append(errs, maxError(t, s, n, 0.1, 0.5))
	}

	// THEN the third-order closure gives a global rate of at least four
	assert.Less(t, errs[2], 1e-4)
	testutil.AssertMinRate(t, "order 6 dirichlet", errs, 4)
}

func TestStep_OutflowExtrapolation_BoundedAndAccurate(t *testing.T) {
	for _, order := range []int{4, 6} {
		// GIVEN Dirichlet inflow at x = 0 and an extrapolated outflow at x = L
		s := setup{order: order, bc: operators.Dirichlet, outflow: true, c: 1, nu: 0.01}
		st, sol := s.build(t)
		u := initial(t, sol, 65, 0)

		// WHEN the wave crosses the domain once
		_, err := st.Step(0, 1, 1, u)
		require.NoError(t, err)

		// THEN the solution keeps the decaying exact norm and stays accurate
		l2, _, err := grid.Norms(u)
		require.NoError(t, err)
		want, _, _ := grid.Norms(initial(t, sol, 65, 1))
		assert.InDelta(t, want, l2, 0.01*want, "order %d", order)

		coarse := maxError(t, s, 33, 1, 1)
		fine := maxError(t, s, 65, 1, 1)
		assert.Less(t, fine, 5e-3, "order %d", order)
		assert.Less(t, fine, coarse, "order %d", order)
	}
}

func TestNew_ExtrapolationAtInflow_ErrConfig(t *testing.T) {
	sol, _ := exact.New(exact.TravellingWave, exact.Params{Amp: 1, Omega: 2 * math.Pi, WaveSpeed: 1})
	cases := map[string]struct {
		left, right operators.BoundaryType
		c           float64
	}{
		"inflow left":       {operators.Extrapolation, operators.Extrapolation, 1},
		"inflow right":      {operators.Dirichlet, operators.Extrapolation, -1},
		"no flow":           {operators.Dirichlet, operators.Extrapolation, 0},
		"outflow left only": {operators.Extrapolation, operators.Dirichlet, 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ops, err := operators.New(operators.Params{Order: 6, Left: tc.left, Right: tc.right, Length: 1, WaveSpeed: tc.c, Viscosity: 0.01})
			require.NoError(t, err)
			_, err = New(ops, sol, Config{})
			assert.ErrorIs(t, err, operators.ErrConfig)
		})
	}

	ops, err := operators.New(operators.Params{Order: 6, Left: operators.Extrapolation, Right: operators.Dirichlet, Length: 1, WaveSpeed: -1})
	require.NoError(t, err)
	_, err = New(ops, sol, Config{})
	assert.NoError(t, err, "x = 0 is the outflow edge for c < 0")
}

func TestStep_Dirichlet_ImposesExactBoundaryValues(t *testing.T) {
	st, sol := setup{order: 4, bc: operators.Dirichlet, c: 1, nu: 0.1, mode: FullStep}.build(t)
	u := initial(t, sol, 33, 0)

	_, err := st.Step(0, 0.05, 1, u)
	require.NoError(t, err)

	assert.Equal(t, sol.Deriv(0, 0.05, 0, 0), u.Sol[0])
	assert.Equal(t, sol.Deriv(1, 0.05, 0, 0), u.Sol[32])
}

func TestStep_PeriodicPureAdvection_NormDoesNotGrow(t *testing.T) {
	// GIVEN pure advection with 6th order operators over one period
	st, sol := setup{order: 6, bc: operators.Periodic, c: 1}.build(t)
	u := initial(t, sol, 65, 0)
	distinct := u.Sol[:64]
	before := floats.Dot(distinct, distinct)

	// WHEN stepping one full period
	_, err := st.Step(0, 1, 1, u)
	require.NoError(t, err)

	// THEN the discrete energy is non-increasing and the duplicate point is kept
	after := floats.Dot(distinct, distinct)
	assert.LessOrEqual(t, after, before*(1+1e-12))
	assert.Equal(t, u.Sol[0], u.Sol[64])
}

func TestStep_SameInput_BitIdentical(t *testing.T) {
	st, sol := setup{order: 4, bc: operators.Dirichlet, c: 0.8, nu: 0.05, pnr: exact.Twilight}.build(t)
	u := initial(t, sol, 41, 0.2)
	v, err := u.Clone()
	require.NoError(t, err)

	r1, err1 := st.Step(0.2, 0.3, 0.5, u)
	r2, err2 := st.Step(0.2, 0.3, 0.5, v)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, r1, r2)
	assert.True(t, u.Equal(v))
}

func TestStep_InvalidRequest_StepError(t *testing.T) {
	st, sol := setup{order: 4, bc: operators.Periodic, c: 1}.build(t)
	u := initial(t, sol, 17, 0)

	cases := []struct {
		name              string
		t, tEnd, accuracy float64
	}{
		{"end before start", 1, 0.5, 1},
		{"zero accuracy", 0, 1, 0},
		{"nan end", 0, math.NaN(), 1},
		{"substep count overflows", 0, 1, 1e-200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := st.Step(tc.t, tc.tEnd, tc.accuracy, u)
			require.ErrorIs(t, err, ErrStep)
			var se *StepError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.t, se.T)
			assert.Equal(t, tc.accuracy, se.Accuracy)
		})
	}
}

func TestStep_ZeroInterval_NoOp(t *testing.T) {
	st, sol := setup{order: 4, bc: operators.Periodic, c: 1}.build(t)
	u := initial(t, sol, 17, 0)
	want, _ := u.Clone()

	refactor, err := st.Step(0.5, 0.5, 1, u)

	require.NoError(t, err)
	assert.False(t, refactor)
	assert.True(t, want.Equal(u))
}

func TestStep_GridTooSmall_DimensionMismatch(t *testing.T) {
	st, _ := setup{order: 6, bc: operators.Dirichlet, c: 1, nu: 0.1}.build(t)
	u, _ := grid.New(9, 1)

	_, err := st.Step(0, 0.1, 1, u)
	assert.ErrorIs(t, err, grid.ErrDimensionMismatch)

	u.Free()
	_, err = st.Step(0, 0.1, 1, u)
	assert.ErrorIs(t, err, grid.ErrReleased)
}

func TestStep_Refactor_WhenSubstepping(t *testing.T) {
	st, sol := setup{order: 4, bc: operators.Periodic, c: 1}.build(t)
	u := initial(t, sol, 33, 0)
	dt := st.StableDt(u.N, u.H)

	refactor, err := st.Step(0, 0.5*dt, 1, u)
	require.NoError(t, err)
	assert.False(t, refactor)

	refactor, err = st.Step(0, 3*dt, 1, u)
	require.NoError(t, err)
	assert.True(t, refactor)
}

func TestNSteps_CeilWithAccuracyScaling(t *testing.T) {
	st, _ := setup{order: 4, bc: operators.Dirichlet, c: 1, nu: 0.1}.build(t)
	n, h := 33, 1.0/32
	dt := st.StableDt(n, h)

	nsteps := func(t0, t1, accuracy float64) int {
		k, err := st.NSteps(t0, t1, accuracy, n, h)
		require.NoError(t, err)
		return k
	}

	assert.Equal(t, 10, nsteps(0, 10*dt, 1))
	assert.Equal(t, 10, nsteps(0, 10*dt, 3), "accuracy above one is capped")
	assert.Equal(t, 20, nsteps(0, 10*dt, 0.5))
	assert.Equal(t, 11, nsteps(0, 10.5*dt, 1))
	assert.Equal(t, 0, nsteps(1, 1, 1))
}

func TestNSteps_TinyAccuracy_StepErrorNotSingleStep(t *testing.T) {
	st, _ := setup{order: 4, bc: operators.Periodic, c: 1}.build(t)
	n, h := 65, 1.0/64

	// GIVEN an accuracy small enough to push the count past any int
	for _, acc := range []float64{1e-200, 1e-300} {
		// WHEN the substep count is computed
		k, err := st.NSteps(0, 1, acc, n, h)

		// THEN the request is rejected instead of collapsing to one step
		assert.Zero(t, k)
		require.ErrorIs(t, err, ErrStep, "accuracy %g", acc)
		var se *StepError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, acc, se.Accuracy)
	}

	k, err := st.NSteps(0, 1, 1e-6, n, h)
	require.NoError(t, err)
	assert.Greater(t, k, 1000000)
}

func TestStableDt_ScalesWithCFL(t *testing.T) {
	full, _ := setup{order: 4, bc: operators.Dirichlet, c: 1, nu: 0.1}.build(t)
	half, _ := setup{order: 4, bc: operators.Dirichlet, c: 1, nu: 0.1, cfl: 0.5}.build(t)
	n, h := 33, 1.0/32
	ops := full.Operators()

	want := 1 / (ops.SpectralBound1()/h + 0.1*ops.SpectralBound2()/(h*h))
	testutil.AssertFloat64Equal(t, "StableDt", want, full.StableDt(n, h), 1e-14)
	testutil.AssertFloat64Equal(t, "StableDt at cfl 0.5", want/2, half.StableDt(n, h), 1e-14)
}

func TestStableDt_ZeroOperator_Infinite(t *testing.T) {
	st, _ := setup{order: 4, bc: operators.Periodic}.build(t)
	assert.True(t, math.IsInf(st.StableDt(17, 1.0/16), 1))
	k, err := st.NSteps(0, 5, 1, 17, 1.0/16)
	require.NoError(t, err)
	assert.Equal(t, 1, k)
}

func TestStep_CoarseGrid_DampsOscillation(t *testing.T) {
	// GIVEN the highest resolvable mode on a coarse periodic grid
	odd := func(t *testing.T) *grid.GridFunction {
		u, err := grid.New(33, 1)
		require.NoError(t, err)
		for i := range u.Sol {
			u.Sol[i] = 1 - 2*float64(i%2)
		}
		return u
	}
	plain, _ := setup{order: 4, bc: operators.Periodic, c: 1, ad: 0.5}.build(t)
	damped, _ := setup{order: 4, bc: operators.Periodic, c: 1, ad: 0.5, fineN: 129}.build(t)
	u, v := odd(t), odd(t)

	// WHEN both steppers advance it
	_, err := plain.Step(0, 0.05, 1, u)
	require.NoError(t, err)
	_, err = damped.Step(0, 0.05, 1, v)
	require.NoError(t, err)

	// THEN only the coarse-level stepper damps it
	nu, _ := grid.Norm(u)
	nv, _ := grid.Norm(v)
	assert.Less(t, nv, nu)
	assert.Less(t, damped.StableDt(33, u.H), plain.StableDt(33, u.H))
}

func TestNew_InvalidConfig_ErrConfig(t *testing.T) {
	ops, err := operators.New(operators.Params{Order: 4, Left: operators.Periodic, Right: operators.Periodic, Length: 1})
	require.NoError(t, err)
	sol, _ := exact.New(exact.Twilight, exact.Params{Amp: 1, Omega: 1})

	for name, cfg := range map[string]Config{
		"negative cfl": {CFL: -1},
		"bad mode":     {Mode: BoundaryMode(5)},
		"negative n":   {FineN: -3},
	} {
		_, err := New(ops, sol, cfg)
		assert.ErrorIs(t, err, operators.ErrConfig, name)
	}
	_, err = New(nil, sol, Config{})
	assert.ErrorIs(t, err, operators.ErrConfig)

	st, err := New(ops, sol, Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultCFL, st.cfg.CFL)
}

func TestParseBoundaryMode_RoundTrip(t *testing.T) {
	for _, m := range []BoundaryMode{EveryStage, FullStep} {
		got, err := ParseBoundaryMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseBoundaryMode("sometimes")
	assert.ErrorIs(t, err, operators.ErrConfig)
}
