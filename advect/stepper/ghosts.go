package stepper

import "github.com/braid-sim/advdiff/advect/operators"

// assignGhosts fills the ghost layers of the extended array w, whose interior
// w[g:g+n] already holds the grid values. gxL and gxR are the Dirichlet
// boundary derivatives; they are ignored for other boundary types.
func (s *Stepper) assignGhosts(w []float64, n int, h, gxL, gxR float64) {
	g := s.ops.Ghosts()
	if s.ops.Periodic() {
		// n-1 distinct points; u[n-1] duplicates u[0].
		for k := 1; k <= g; k++ {
			w[g-k] = w[g+n-1-k]
			w[g+n-1+k] = w[g+k]
		}
		return
	}
	u := w[g : g+n]
	w[g-1] = s.ghost(s.ops.Left(), func(j int) float64 { return u[j] }, h*gxL)
	w[g+n] = s.ghost(s.ops.Right(), func(j int) float64 { return u[n-1-j] }, -h*gxR)
}

// ghost returns the ghost value beyond one edge. at(j) is the j-th grid value
// counted inward from that edge; hgx is h times the outward-signed boundary
// derivative.
func (s *Stepper) ghost(bc operators.BoundaryType, at func(int) float64, hgx float64) float64 {
	if bc == operators.Dirichlet {
		bder := s.ops.BoundaryDerivative()
		acc := hgx
		for j := 1; j < len(bder); j++ {
			acc -= bder[j] * at(j-1)
		}
		return s.ops.BetaPCoeff() * acc
	}
	return s.ops.Extrapolate(at)
}
