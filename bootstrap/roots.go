package bootstrap

import (
	"fmt"
	"math"
)

// objective is a 1-D residual function. Evaluations may fail, e.g. when a
// trial value drives the interpolant out of its numeric domain.
type objective func(x float64) (float64, error)

// solveRoot finds x in [lo, hi] with |f(x)| <= ftol, starting from guess
// and expanding a bracket of the given step around it. It returns the root
// and the number of function evaluations.
func solveRoot(f objective, guess, step, lo, hi, ftol float64) (float64, int, error) {
	evals := 0
	call := func(x float64) (float64, error) {
		evals++
		return f(x)
	}

	a, b, fa, fb, err := expandBracket(call, guess, step, lo, hi, ftol)
	if err != nil {
		return 0, evals, err
	}
	if math.Abs(fa) <= ftol {
		return a, evals, nil
	}
	if math.Abs(fb) <= ftol {
		return b, evals, nil
	}

	x, err := brent(call, a, b, fa, fb, ftol)
	return x, evals, err
}

// expandBracket grows [guess-step, guess+step] geometrically until the
// residual changes sign, clamping to [lo, hi].
func expandBracket(f objective, guess, step, lo, hi, ftol float64) (a, b, fa, fb float64, err error) {
	clamp := func(x float64) float64 {
		if x < lo {
			return lo
		}
		if x > hi {
			return hi
		}
		return x
	}

	a, b = clamp(guess-step), clamp(guess+step)
	fa, err = f(a)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	fb, err = f(b)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	const maxExpand = 60
	for i := 0; i < maxExpand; i++ {
		if math.Abs(fa) <= ftol || math.Abs(fb) <= ftol || fa*fb < 0 {
			return a, b, fa, fb, nil
		}
		step *= 1.6
		if na := clamp(guess - step); na != a {
			a = na
			if fa, err = f(a); err != nil {
				return 0, 0, 0, 0, err
			}
		}
		if nb := clamp(guess + step); nb != b {
			b = nb
			if fb, err = f(b); err != nil {
				return 0, 0, 0, 0, err
			}
		}
		if a == lo && b == hi && fa*fb > 0 {
			break
		}
	}
	return 0, 0, 0, 0, fmt.Errorf("no sign change in [%g, %g] (f=%g, %g)", a, b, fa, fb)
}

// brent is Brent's method on a bracketing interval: inverse quadratic
// interpolation guarded by bisection.
func brent(f objective, a, b, fa, fb, ftol float64) (float64, error) {
	const (
		maxIter = 200
		xeps    = 1e-15
	)

	c, fc := a, fa
	d := b - a
	e := d

	for iter := 0; iter < maxIter; iter++ {
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol1 := 2*xeps*math.Abs(b) + 0.5*xeps
		xm := 0.5 * (c - b)
		if math.Abs(fb) <= ftol || xm == 0 {
			return b, nil
		}
		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// Attempt inverse quadratic interpolation.
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		var err error
		fb, err = f(b)
		if err != nil {
			return 0, err
		}
		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
	}
	return b, fmt.Errorf("root search did not converge after %d iterations", maxIter)
}
