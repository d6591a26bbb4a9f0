// Package testutil provides assertion helpers shared by the advect test
// packages.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// ConvergenceRates returns log2(errs[i]/errs[i+1]) for errors measured on
// grids refined by a factor of two each time.
func ConvergenceRates(errs []float64) []float64 {
	if len(errs) < 2 {
		return nil
	}
	rates := make([]float64, len(errs)-1)
	for i := range rates {
		rates[i] = math.Log2(errs[i] / errs[i+1])
	}
	return rates
}

// AssertMinRate fails the test when any observed convergence rate of errs
// falls below minRate.
func AssertMinRate(t *testing.T, name string, errs []float64, minRate float64) {
	t.Helper()
	for i, r := range ConvergenceRates(errs) {
		if !(r >= minRate) {
			t.Errorf("%s: rate %d = %.3f below %.3f (errors %v)", name, i, r, minRate, errs)
		}
	}
}
