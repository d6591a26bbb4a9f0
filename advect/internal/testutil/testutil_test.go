package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvergenceRates_HalvingGrids(t *testing.T) {
	rates := ConvergenceRates([]float64{1, 1.0 / 16, 1.0 / 256})
	assert.InDeltaSlice(t, []float64{4, 4}, rates, 1e-12)
	assert.Nil(t, ConvergenceRates([]float64{1}))
}

func TestAssertMinRate_Passes(t *testing.T) {
	AssertMinRate(t, "fourth order", []float64{1e-2, 6e-4, 4e-5}, 3.5)
}

func TestAssertFloat64Equal_BothZero(t *testing.T) {
	AssertFloat64Equal(t, "zero", 0, 0, 1e-12)
	AssertFloat64Equal(t, "close", 1e6, 1e6+1e-4, 1e-9)
}
