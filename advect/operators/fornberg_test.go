package operators

// fornbergWeights returns finite-difference weights c[k][j] such that the k-th
// derivative at z is approximated by sum_j c[k][j] f(x[j]), for k = 0..m
// (Fornberg's recursion). The approximation is exact for polynomials of degree
// len(x)-1.
func fornbergWeights(z float64, x []float64, m int) [][]float64 {
	n := len(x)
	c := make([][]float64, m+1)
	for k := range c {
		c[k] = make([]float64, n)
	}
	if n == 0 {
		return c
	}
	c1 := 1.0
	c4 := x[0] - z
	c[0][0] = 1
	for i := 1; i < n; i++ {
		mn := min(i, m)
		c2 := 1.0
		c5 := c4
		c4 = x[i] - z
		for j := 0; j < i; j++ {
			c3 := x[i] - x[j]
			c2 *= c3
			if j == i-1 {
				for k := mn; k >= 1; k-- {
					c[k][i] = c1 * (float64(k)*c[k-1][i-1] - c5*c[k][i-1]) / c2
				}
				c[0][i] = -c1 * c5 * c[0][i-1] / c2
			}
			for k := mn; k >= 1; k-- {
				c[k][j] = (c4*c[k][j] - float64(k)*c[k-1][j]) / c3
			}
			c[0][j] = c4 * c[0][j] / c3
		}
		c1 = c2
	}
	return c
}

// nodes returns the integer grid offsets lo, lo+1, ..., lo+count-1.
func nodes(lo, count int) []float64 {
	x := make([]float64, count)
	for i := range x {
		x[i] = float64(lo + i)
	}
	return x
}
