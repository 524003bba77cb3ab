package fitter

import (
	"fmt"
	"math"
)

// residualFunc maps a parameter vector to the residual vector of the least
// squares problem. Evaluations may fail for parameter values outside the
// model's numeric domain.
type residualFunc func(p []float64) ([]float64, error)

// levenbergMarquardt minimises sum(r_i^2) over the parameters, starting
// from p0. It returns the best parameter vector, the cost sqrt(sum r^2) at
// that point and the iteration count. The solver stops when the cost drops
// below ftol, when a step no longer improves the cost meaningfully, or
// after maxIter iterations; running out of iterations is not an error, the
// caller judges the final cost.
func levenbergMarquardt(f residualFunc, p0 []float64, maxIter int, ftol float64) ([]float64, float64, int, error) {
	p := append([]float64(nil), p0...)
	r, err := f(p)
	if err != nil {
		return nil, 0, 0, err
	}
	cost := norm(r)

	lambda := 1e-3
	iters := 0
	for ; iters < maxIter; iters++ {
		if cost <= ftol {
			break
		}

		jac, err := numericJacobian(f, p, r)
		if err != nil {
			return nil, 0, iters, err
		}

		// Normal equations: (J'J + lambda*diag(J'J)) delta = -J'r.
		n := len(p)
		jtj := make([][]float64, n)
		jtr := make([]float64, n)
		for i := 0; i < n; i++ {
			jtj[i] = make([]float64, n)
			for j := 0; j < n; j++ {
				s := 0.0
				for k := range r {
					s += jac[k][i] * jac[k][j]
				}
				jtj[i][j] = s
			}
			s := 0.0
			for k := range r {
				s += jac[k][i] * r[k]
			}
			jtr[i] = -s
		}

		improved := false
		for tries := 0; tries < 20; tries++ {
			a := make([][]float64, n)
			for i := 0; i < n; i++ {
				a[i] = append([]float64(nil), jtj[i]...)
				a[i][i] += lambda * math.Max(jtj[i][i], 1e-12)
			}
			delta, err := solveLinear(a, jtr)
			if err != nil {
				lambda *= 10
				continue
			}

			trial := make([]float64, n)
			for i := range p {
				trial[i] = p[i] + delta[i]
			}
			rt, err := f(trial)
			if err != nil {
				lambda *= 10
				continue
			}
			if ct := norm(rt); ct < cost {
				if cost-ct < 1e-15*(1+cost) {
					p, r, cost = trial, rt, ct
					return p, cost, iters + 1, nil
				}
				p, r, cost = trial, rt, ct
				lambda = math.Max(lambda*0.1, 1e-12)
				improved = true
				break
			}
			lambda *= 10
		}
		if !improved {
			break
		}
	}
	return p, cost, iters, nil
}

// numericJacobian is a forward-difference Jacobian of f at p, reusing the
// already computed residual r0 = f(p).
func numericJacobian(f residualFunc, p, r0 []float64) ([][]float64, error) {
	jac := make([][]float64, len(r0))
	for k := range jac {
		jac[k] = make([]float64, len(p))
	}
	for j := range p {
		h := 1e-7 * (1 + math.Abs(p[j]))
		bumped := append([]float64(nil), p...)
		bumped[j] += h
		rb, err := f(bumped)
		if err != nil {
			return nil, err
		}
		for k := range r0 {
			jac[k][j] = (rb[k] - r0[k]) / h
		}
	}
	return jac, nil
}

// solveLinear solves a*x = b by Gaussian elimination with partial pivoting.
// a and b are modified in place.
func solveLinear(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	rhs := append([]float64(nil), b...)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-300 {
			return nil, fmt.Errorf("singular normal equations at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			rhs[row] -= factor * rhs[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		s := rhs[row]
		for k := row + 1; k < n; k++ {
			s -= a[row][k] * x[k]
		}
		x[row] = s / a[row][row]
	}
	return x, nil
}

func norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
