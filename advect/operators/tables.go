package operators

// Published diagonal-norm summation-by-parts coefficients. Rows index the
// boundary points 0..nb-1 at the left edge; columns index grid points from the
// edge. The right edge is the mirror image (D1 changes sign, D2 does not).

// 4th-order interior, 2nd-order boundary first derivative (Strand;
// Mattsson & Nordstrom 2004). nb = 4, wb = 6.
var d1Order4 = [][]float64{
	{-24.0 / 17, 59.0 / 34, -4.0 / 17, -3.0 / 34, 0, 0},
	{-1.0 / 2, 0, 1.0 / 2, 0, 0, 0},
	{4.0 / 43, -59.0 / 86, 0, 59.0 / 86, -4.0 / 43, 0},
	{3.0 / 98, 0, -59.0 / 98, 0, 32.0 / 49, -4.0 / 49},
}

// 6th-order interior, 3rd-order boundary first derivative (Mattsson &
// Nordstrom 2004, rational member of Strand's one-parameter family).
// nb = 6, wb = 9.
var d1Order6 = [][]float64{
	{-21600.0 / 13649, 104009.0 / 54596, 30443.0 / 81894, -33311.0 / 27298, 16863.0 / 27298, -15025.0 / 163788, 0, 0, 0},
	{-104009.0 / 240260, 0, -311.0 / 72078, 20229.0 / 24026, -24337.0 / 48052, 36661.0 / 360390, 0, 0, 0},
	{-30443.0 / 162660, 311.0 / 32532, 0, -11155.0 / 16266, 41287.0 / 32532, -21999.0 / 54220, 0, 0, 0},
	{33311.0 / 107180, -20229.0 / 21436, 485.0 / 1398, 0, 4147.0 / 21436, 25427.0 / 321540, 72.0 / 5359, 0, 0},
	{-16863.0 / 78770, 24337.0 / 31508, -41287.0 / 47262, -4147.0 / 15754, 0, 342523.0 / 472620, -1296.0 / 7877, 144.0 / 7877, 0},
	{15025.0 / 525612, -36661.0 / 262806, 21999.0 / 87602, -25427.0 / 262806, -342523.0 / 525612, 0, 32400.0 / 43801, -6480.0 / 43801, 720.0 / 43801},
}

// Diagonal SBP norm weights (times h) of the boundary points.
var (
	normOrder4 = []float64{17.0 / 48, 59.0 / 48, 43.0 / 48, 49.0 / 48}
	normOrder6 = []float64{13649.0 / 43200, 12013.0 / 8640, 2711.0 / 4320, 5359.0 / 4320, 7877.0 / 8640, 43801.0 / 43200}
)

// 4th-order second derivative with a ghost point (Sjogreen & Petersson
// construction on the Mattsson & Nordstrom operator). Row 0 also carries
// ghD2Order4 times the ghost value. nb2 = 4, wb2 = 6.
var d2Order4 = [][]float64{
	{-14.0 / 17, -13.0 / 17, 20.0 / 17, -5.0 / 17, 0, 0},
	{1, -2, 1, 0, 0, 0},
	{-4.0 / 43, 59.0 / 43, -110.0 / 43, 59.0 / 43, -4.0 / 43, 0},
	{-1.0 / 49, 0, 59.0 / 49, -118.0 / 49, 64.0 / 49, -4.0 / 49},
}

const ghD2Order4 = 12.0 / 17

// 6th-order second derivative with a ghost point on the norm of d1Order6:
// H D2 = -M - e_0 bder^T (mirrored at the right edge) with M symmetric and
// positive semidefinite, boundary rows exact through degree 4. The
// fifth-difference weight of the 6x6 boundary block of M is 27/10. Row 0 also
// carries ghD2Order6 = -bderOrder6[0]/normOrder6[0] times the ghost value.
// nb2 = 6, wb2 = 9.
var d2Order6 = [][]float64{
	{13370.0 / 40947, -198107.0 / 54596, 192409.0 / 40947, -204997.0 / 81894, 8547.0 / 13649, -7765.0 / 163788, 0, 0, 0},
	{233893.0 / 240260, -70306.0 / 36039, 77003.0 / 72078, -2823.0 / 12013, 28951.0 / 144156, -10241.0 / 180195, 0, 0, 0},
	{-23591.0 / 81330, 77003.0 / 32532, -12382.0 / 2711, 55315.0 / 16266, -18169.0 / 16266, 11209.0 / 54220, 0, 0, 0},
	{11003.0 / 321540, -2823.0 / 10718, 2405.0 / 1398, -47134.0 / 16077, 34169.0 / 21436, -26099.0 / 160770, 48.0 / 5359, 0, 0},
	{-2253.0 / 39385, 28951.0 / 94524, -18169.0 / 23631, 34169.0 / 15754, -73504.0 / 23631, 762671.0 / 472620, -1296.0 / 7877, 96.0 / 7877, 0},
	{9515.0 / 525612, -10241.0 / 131403, 11209.0 / 87602, -26099.0 / 131403, 762671.0 / 525612, -116640.0 / 43801, 64800.0 / 43801, -6480.0 / 43801, 480.0 / 43801},
}

const ghD2Order6 = 7200.0 / 13649

// One-sided boundary first derivative using the ghost point as entry 0,
// followed by grid points 0, 1, ...
var (
	bderOrder4 = []float64{-1.0 / 4, -5.0 / 6, 3.0 / 2, -1.0 / 2, 1.0 / 12}
	bderOrder6 = []float64{-1.0 / 6, -77.0 / 60, 5.0 / 2, -5.0 / 3, 5.0 / 6, -1.0 / 4, 1.0 / 30}
)

// Interior centered stencils, offsets -w..w.
var (
	iopD1Order4 = []float64{1.0 / 12, -2.0 / 3, 0, 2.0 / 3, -1.0 / 12}
	iopD1Order6 = []float64{-1.0 / 60, 3.0 / 20, -3.0 / 4, 0, 3.0 / 4, -3.0 / 20, 1.0 / 60}
	iopD2Order4 = []float64{-1.0 / 12, 4.0 / 3, -5.0 / 2, 4.0 / 3, -1.0 / 12}
	iopD2Order6 = []float64{1.0 / 90, -3.0 / 20, 3.0 / 2, -49.0 / 18, 3.0 / 2, -3.0 / 20, 1.0 / 90}
)

// Undivided difference stencils used for coarse-level artificial damping.
var (
	dissOrder4 = []float64{1, -4, 6, -4, 1}
	dissOrder6 = []float64{1, -6, 15, -20, 15, -6, 1}
)

// Classical RK4: stage time fractions and quadrature weights.
var (
	rkAlpha = [4]float64{0, 1.0 / 2, 1.0 / 2, 1}
	rkBeta  = [4]float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6}
)
