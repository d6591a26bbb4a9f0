package grid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_BetaZero_CopiesScaledX(t *testing.T) {
	// GIVEN a destination holding garbage
	rng := rand.New(rand.NewSource(7))
	x := randomGrid(t, rng, 33)
	y, _ := New(33, 1.0)
	for i := range y.Sol {
		y.Sol[i] = math.NaN()
	}

	// WHEN sum(1, x, 0, y)
	require.NoError(t, Sum(1, x, 0, y))

	// THEN y is an exact copy of x
	assert.True(t, x.Equal(y))
}

func TestSum_Aliased_ScalesByAlphaPlusBeta(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	x := randomGrid(t, rng, 33)
	want, _ := x.Clone()
	for i := range want.Sol {
		want.Sol[i] *= 2.5 + -0.75
	}

	require.NoError(t, Sum(2.5, x, -0.75, x))

	assert.True(t, want.Equal(x))
}

func TestSum_General_Elementwise(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	x := randomGrid(t, rng, 20)
	y := randomGrid(t, rng, 20)
	y0, _ := y.Clone()

	require.NoError(t, y.Sum(3, x, -2))

	for i := range y.Sol {
		assert.InDelta(t, 3*x.Sol[i]-2*y0.Sol[i], y.Sol[i], 1e-14)
	}
}

func TestSum_DimensionMismatch(t *testing.T) {
	x, _ := New(9, 1.0)
	y, _ := New(17, 1.0)
	assert.ErrorIs(t, Sum(1, x, 1, y), ErrDimensionMismatch)

	_, err := Dot(x, y)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDot_SymmetricAndPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	for trial := 0; trial < 20; trial++ {
		u := randomGrid(t, rng, 5+trial)
		v := randomGrid(t, rng, 5+trial)

		uv, err := Dot(u, v)
		require.NoError(t, err)
		vu, err := v.Dot(u)
		require.NoError(t, err)
		assert.Equal(t, uv, vu, "dot must be symmetric")

		uu, _ := Dot(u, u)
		assert.Greater(t, uu, 0.0)
	}

	zero, _ := New(12, 1.0)
	zz, err := Dot(zero, zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, zz)
}

func TestNorm_IsSqrtOfDot(t *testing.T) {
	u, _ := New(3, 1.0)
	copy(u.Sol, []float64{3, 0, 4})
	n, err := Norm(u)
	require.NoError(t, err)
	assert.Equal(t, 5.0, n)
}

func TestErrorNorms_WeightedBySpacing(t *testing.T) {
	// GIVEN two grids differing by one everywhere on [0,1] with h = 1/4
	w, _ := New(5, 1.0)
	we, _ := New(5, 1.0)
	for i := range w.Sol {
		w.Sol[i] = 1
	}

	l2, linf, err := ErrorNorms(w, we)
	require.NoError(t, err)

	// THEN l2 = sqrt(h * 5), linf = 1
	assert.InDelta(t, math.Sqrt(0.25*5), l2, 1e-15)
	assert.Equal(t, 1.0, linf)

	l2n, linfn, err := Norms(w)
	require.NoError(t, err)
	assert.Equal(t, l2, l2n)
	assert.Equal(t, linf, linfn)
}
