package interp

import "math"

// cubic is a piecewise cubic in Hermite form: on segment i,
// y(x) = y_i + b_i*s + c_i*s^2 + d_i*s^3 with s = x - x_i.
//
// The flavors differ only in how node slopes are chosen:
//
//	CubicSpline    spline slopes, y''=0 at both ends
//	NaturalCubic   spline slopes, y''=0 at both ends, monotonicity-adjusted
//	FinancialCubic spline slopes, y''=0 left, y'=0 right, monotonicity-adjusted
//	Hermite        parabolic-blend (Bessel) slopes
//	ConvexMonotone monotone/convexity preserving slope limiter
type cubic struct {
	xs, ys  []float64
	b, c, d []float64
}

func newCubic(m Method, xs, ys []float64) *cubic {
	n := len(xs)
	h := make([]float64, n-1)
	delta := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = xs[i+1] - xs[i]
		delta[i] = (ys[i+1] - ys[i]) / h[i]
	}

	var slopes []float64
	switch m {
	case CubicSpline, NaturalCubic, FinancialCubic:
		rightClamped := m == FinancialCubic
		slopes = splineSlopes(h, delta, rightClamped)
		if m != CubicSpline {
			hymanFilter(slopes, delta)
		}
	case Hermite:
		slopes = besselSlopes(h, delta)
	case ConvexMonotone:
		slopes = besselSlopes(h, delta)
		fritschCarlson(slopes, delta)
	default:
		panic("interp: newCubic called with non-cubic method " + string(m))
	}

	b := make([]float64, n-1)
	c := make([]float64, n-1)
	d := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		b[i] = slopes[i]
		c[i] = (3*delta[i] - 2*slopes[i] - slopes[i+1]) / h[i]
		d[i] = (slopes[i] + slopes[i+1] - 2*delta[i]) / (h[i] * h[i])
	}
	return &cubic{xs: xs, ys: ys, b: b, c: c, d: d}
}

func (cu *cubic) Value(x float64, extrapolate bool) (float64, error) {
	if err := checkRange(cu.xs, x, extrapolate); err != nil {
		return 0, err
	}
	i := locate(cu.xs, x)
	s := x - cu.xs[i]
	return cu.ys[i] + s*(cu.b[i]+s*(cu.c[i]+s*cu.d[i])), nil
}

func (cu *cubic) Local() bool { return false }

// splineSlopes solves the tridiagonal system for C2 spline slopes.
// Left boundary is always y''=0; right boundary is y''=0 or, when
// rightClamped, y'=0.
func splineSlopes(h, delta []float64, rightClamped bool) []float64 {
	n := len(h) + 1
	if n == 2 {
		// Degenerate: a single segment is a straight line, except a clamped
		// right end which forces a parabola with f'(right)=0.
		if rightClamped {
			return []float64{2 * delta[0], 0}
		}
		return []float64{delta[0], delta[0]}
	}

	// Rows: lower[i]*m[i-1] + diag[i]*m[i] + upper[i]*m[i+1] = rhs[i].
	lower := make([]float64, n)
	diag := make([]float64, n)
	upper := make([]float64, n)
	rhs := make([]float64, n)

	diag[0] = 2
	upper[0] = 1
	rhs[0] = 3 * delta[0]
	for i := 1; i < n-1; i++ {
		lower[i] = 1 / h[i-1]
		diag[i] = 2 * (1/h[i-1] + 1/h[i])
		upper[i] = 1 / h[i]
		rhs[i] = 3 * (delta[i-1]/(h[i-1]) + delta[i]/(h[i]))
	}
	if rightClamped {
		diag[n-1] = 1
		rhs[n-1] = 0
	} else {
		lower[n-1] = 1
		diag[n-1] = 2
		rhs[n-1] = 3 * delta[n-2]
	}

	return solveTridiagonal(lower, diag, upper, rhs)
}

// solveTridiagonal runs the Thomas algorithm. Inputs are overwritten.
func solveTridiagonal(lower, diag, upper, rhs []float64) []float64 {
	n := len(diag)
	for i := 1; i < n; i++ {
		w := lower[i] / diag[i-1]
		diag[i] -= w * upper[i-1]
		rhs[i] -= w * rhs[i-1]
	}
	out := make([]float64, n)
	out[n-1] = rhs[n-1] / diag[n-1]
	for i := n - 2; i >= 0; i-- {
		out[i] = (rhs[i] - upper[i]*out[i+1]) / diag[i]
	}
	return out
}

// besselSlopes estimates node slopes from the parabola through each node and
// its two neighbours (parabolic blend). End slopes come from the end parabolas.
func besselSlopes(h, delta []float64) []float64 {
	n := len(h) + 1
	m := make([]float64, n)
	if n == 2 {
		m[0], m[1] = delta[0], delta[0]
		return m
	}
	for i := 1; i < n-1; i++ {
		m[i] = (h[i]*delta[i-1] + h[i-1]*delta[i]) / (h[i-1] + h[i])
	}
	m[0] = ((2*h[0]+h[1])*delta[0] - h[0]*delta[1]) / (h[0] + h[1])
	m[n-1] = ((2*h[n-2]+h[n-3])*delta[n-2] - h[n-2]*delta[n-3]) / (h[n-3] + h[n-2])
	return m
}

// hymanFilter limits slopes so the interpolant cannot overshoot between
// monotone nodes (Hyman 1983).
func hymanFilter(m, delta []float64) {
	n := len(m)
	for i := 0; i < n; i++ {
		var lo, hi float64
		switch {
		case i == 0:
			lo, hi = order(0, 3*delta[0])
		case i == n-1:
			lo, hi = order(0, 3*delta[n-2])
		default:
			if delta[i-1]*delta[i] <= 0 {
				// Local extremum: force a flat tangent.
				m[i] = 0
				continue
			}
			bound := 3 * math.Min(math.Abs(delta[i-1]), math.Abs(delta[i]))
			if delta[i] > 0 {
				lo, hi = 0, bound
			} else {
				lo, hi = -bound, 0
			}
		}
		if m[i] < lo {
			m[i] = lo
		} else if m[i] > hi {
			m[i] = hi
		}
	}
}

// fritschCarlson rescales slopes into the monotonicity region so convexity
// of the input data is preserved segment by segment.
func fritschCarlson(m, delta []float64) {
	for i := 0; i < len(delta); i++ {
		if delta[i] == 0 {
			m[i] = 0
			m[i+1] = 0
			continue
		}
		alpha := m[i] / delta[i]
		beta := m[i+1] / delta[i]
		if alpha < 0 {
			m[i] = 0
			alpha = 0
		}
		if beta < 0 {
			m[i+1] = 0
			beta = 0
		}
		if r := alpha*alpha + beta*beta; r > 9 {
			tau := 3 / math.Sqrt(r)
			m[i] = tau * alpha * delta[i]
			m[i+1] = tau * beta * delta[i]
		}
	}
}

func order(a, b float64) (float64, float64) {
	if a <= b {
		return a, b
	}
	return b, a
}
