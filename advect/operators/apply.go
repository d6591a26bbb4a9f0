package operators

// The apply functions take a ghost-extended array w of length n+2*Ghosts(),
// where grid point i lives at w[i+Ghosts()], and write n values to out. For
// periodic operators all ghost layers must be filled; otherwise only the
// innermost ghost on each side is read (by the D2 boundary rows).

// D1 writes the first derivative of the grid function held in w to out.
func (o *Operators) D1(w []float64, h float64, out []float64) {
	g := o.Ghosts()
	n := len(out)
	lo, hi := 0, n
	if !o.Periodic() {
		nb, wb := o.bop.Dims()
		for i := 0; i < nb; i++ {
			row := o.bop.RawRowView(i)
			left, right := 0.0, 0.0
			for j := 0; j < wb; j++ {
				left += row[j] * w[g+j]
				right += row[j] * w[g+n-1-j]
			}
			out[i] = left / h
			out[n-1-i] = -right / h
		}
		lo, hi = nb, n-nb
	}
	o.centered(o.iop1, w, 1/h, lo, hi, out)
}

// D2 writes the second derivative of the grid function held in w to out.
func (o *Operators) D2(w []float64, h float64, out []float64) {
	g := o.Ghosts()
	n := len(out)
	lo, hi := 0, n
	if !o.Periodic() {
		nb2, wb2 := o.bop2.Dims()
		for i := 0; i < nb2; i++ {
			row := o.bop2.RawRowView(i)
			left, right := 0.0, 0.0
			for j := 0; j < wb2; j++ {
				left += row[j] * w[g+j]
				right += row[j] * w[g+n-1-j]
			}
			if i == 0 {
				left += o.gh2 * w[g-1]
				right += o.gh2 * w[g+n]
			}
			out[i] = left / (h * h)
			out[n-1-i] = right / (h * h)
		}
		lo, hi = nb2, n-nb2
	}
	o.centered(o.iop2, w, 1/(h*h), lo, hi, out)
}

// AddDissipation adds scale times the sign-corrected undivided difference of
// order Order() to out. The term is non-positive in energy for scale >= 0.
// Without periodic wrap only rows whose stencil stays inside the grid are
// damped.
func (o *Operators) AddDissipation(w []float64, scale float64, out []float64) {
	n := len(out)
	lo, hi := 0, n
	if !o.Periodic() {
		lo, hi = o.Ghosts(), n-o.Ghosts()
	}
	s := scale * o.dissSign
	for i := lo; i < hi; i++ {
		acc := 0.0
		for k, c := range o.diss {
			acc += c * w[i+k]
		}
		out[i] += s * acc
	}
}

// BoundaryDerivatives returns the one-sided first derivative at both edges
// using bder and the innermost ghost points.
func (o *Operators) BoundaryDerivatives(w []float64, h float64, n int) (left, right float64) {
	g := o.Ghosts()
	for j, c := range o.bder {
		left += c * w[g-1+j]
		right += c * w[g+n-j]
	}
	return left / h, -right / h
}

// centered applies a (2g+1)-point stencil to rows lo..hi-1.
func (o *Operators) centered(st, w []float64, scale float64, lo, hi int, out []float64) {
	for i := lo; i < hi; i++ {
		acc := 0.0
		for k, c := range st {
			acc += c * w[i+k]
		}
		out[i] = acc * scale
	}
}
