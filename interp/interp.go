// Package interp provides the interpolation schemes used to turn curve
// pillars into a continuous evaluator.
package interp

import (
	"fmt"
	"math"
)

// Method identifies an interpolation scheme.
type Method string

const (
	Linear         Method = "Linear"
	LogLinear      Method = "LogLinear"
	NaturalCubic   Method = "NaturalCubic"
	FinancialCubic Method = "FinancialCubic"
	ConvexMonotone Method = "ConvexMonotone"
	Quadratic      Method = "Quadratic"
	LogQuadratic   Method = "LogQuadratic"
	Hermite        Method = "Hermite"
	CubicSpline    Method = "CubicSpline"
)

// ParseMethod validates a method tag, typically read from a curve config file.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Linear, LogLinear, NaturalCubic, FinancialCubic, ConvexMonotone,
		Quadratic, LogQuadratic, Hermite, CubicSpline:
		return m, nil
	default:
		return "", fmt.Errorf("interp: unknown method %q", s)
	}
}

// DomainError reports a node value outside a method's numeric domain,
// e.g. a non-positive value fed to a log-based scheme.
type DomainError struct {
	Method Method
	Value  float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("interp: %s requires strictly positive values, got %g", e.Method, e.Value)
}

// RangeError reports evaluation outside the node range with extrapolation disabled.
type RangeError struct {
	X, Min, Max float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("interp: x=%g outside range [%g, %g] and extrapolation is disabled", e.X, e.Min, e.Max)
}

// Evaluator is a continuous function built over fixed nodes.
type Evaluator interface {
	// Value evaluates the interpolant at x. Outside [first, last] node it
	// returns a *RangeError unless extrapolate is true, in which case the
	// boundary segment's polynomial is continued.
	Value(x float64, extrapolate bool) (float64, error)

	// Local reports whether changing one node value only moves the
	// interpolant near that node. Non-local schemes need a global
	// refinement pass when bootstrapped.
	Local() bool
}

// New builds an evaluator for the given method over (xs, ys) nodes.
// xs must be strictly increasing with at least two nodes.
func New(m Method, xs, ys []float64) (Evaluator, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("interp: need at least 2 nodes, got %d", len(xs))
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("interp: node count mismatch: %d xs vs %d ys", len(xs), len(ys))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("interp: nodes not strictly increasing at index %d (%g <= %g)", i, xs[i], xs[i-1])
		}
	}

	switch m {
	case Linear:
		return newLinear(xs, ys), nil
	case Quadratic:
		return newQuadratic(xs, ys), nil
	case LogLinear, LogQuadratic:
		logs := make([]float64, len(ys))
		for i, y := range ys {
			if y <= 0 {
				return nil, &DomainError{Method: m, Value: y}
			}
			logs[i] = math.Log(y)
		}
		var inner Evaluator
		if m == LogLinear {
			inner = newLinear(xs, logs)
		} else {
			inner = newQuadratic(xs, logs)
		}
		return &logWrap{inner: inner}, nil
	case NaturalCubic, FinancialCubic, ConvexMonotone, Hermite, CubicSpline:
		return newCubic(m, xs, ys), nil
	default:
		return nil, fmt.Errorf("interp: unknown method %q", m)
	}
}

// locate returns the segment index for x, clamped to the boundary segments
// so that extrapolation continues the end polynomials.
func locate(xs []float64, x float64) int {
	// Binary search for the last node <= x.
	lo, hi := 0, len(xs)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func checkRange(xs []float64, x float64, extrapolate bool) error {
	if extrapolate {
		return nil
	}
	first, last := xs[0], xs[len(xs)-1]
	// Tolerate date-rounding noise at the boundaries.
	const eps = 1e-12
	if x < first-eps || x > last+eps {
		return &RangeError{X: x, Min: first, Max: last}
	}
	return nil
}

type linear struct {
	xs, ys []float64
	slopes []float64
}

func newLinear(xs, ys []float64) *linear {
	slopes := make([]float64, len(xs)-1)
	for i := range slopes {
		slopes[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
	}
	return &linear{xs: xs, ys: ys, slopes: slopes}
}

func (l *linear) Value(x float64, extrapolate bool) (float64, error) {
	if err := checkRange(l.xs, x, extrapolate); err != nil {
		return 0, err
	}
	i := locate(l.xs, x)
	return l.ys[i] + l.slopes[i]*(x-l.xs[i]), nil
}

func (l *linear) Local() bool { return true }

// quadratic fits, for each segment, a parabola through the segment's
// endpoints and the nearest third node.
type quadratic struct {
	xs, ys []float64
}

func newQuadratic(xs, ys []float64) *quadratic {
	return &quadratic{xs: xs, ys: ys}
}

func (q *quadratic) Value(x float64, extrapolate bool) (float64, error) {
	if err := checkRange(q.xs, x, extrapolate); err != nil {
		return 0, err
	}
	if len(q.xs) == 2 {
		s := (q.ys[1] - q.ys[0]) / (q.xs[1] - q.xs[0])
		return q.ys[0] + s*(x-q.xs[0]), nil
	}
	i := locate(q.xs, x)
	// Nodes (i-1, i, i+1); the first segment uses (0, 1, 2).
	j := i
	if j == 0 {
		j = 1
	}
	x0, x1, x2 := q.xs[j-1], q.xs[j], q.xs[j+1]
	y0, y1, y2 := q.ys[j-1], q.ys[j], q.ys[j+1]
	// Lagrange form.
	l0 := (x - x1) * (x - x2) / ((x0 - x1) * (x0 - x2))
	l1 := (x - x0) * (x - x2) / ((x1 - x0) * (x1 - x2))
	l2 := (x - x0) * (x - x1) / ((x2 - x0) * (x2 - x1))
	return y0*l0 + y1*l1 + y2*l2, nil
}

func (q *quadratic) Local() bool { return true }

// logWrap interpolates the logarithm of the node values.
type logWrap struct {
	inner Evaluator
}

func (w *logWrap) Value(x float64, extrapolate bool) (float64, error) {
	v, err := w.inner.Value(x, extrapolate)
	if err != nil {
		return 0, err
	}
	return math.Exp(v), nil
}

func (w *logWrap) Local() bool { return w.inner.Local() }
