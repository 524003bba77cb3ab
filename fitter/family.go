// Package fitter calibrates parametric yield curve families to bond prices
// by deterministic multi-start least squares.
package fitter

import (
	"fmt"
	"math"
)

// Family is a parametric discount curve model. Discount evaluates the
// model discount factor at time t for a candidate parameter vector and
// rejects vectors outside the model's numeric domain, so the optimiser can
// back away from them.
type Family interface {
	Name() string
	NumParams() int
	Discount(params []float64, t float64) (float64, error)

	// DefaultGuess builds the first trial's starting point from the short
	// and long ends of the observed bond yields.
	DefaultGuess(shortYield, longYield float64) []float64

	// SampleGuess maps one low-discrepancy point in [0,1)^NumParams to a
	// starting parameter vector for the later trials.
	SampleGuess(u []float64) []float64
}

// NelsonSiegel is the four-parameter zero rate model
//
//	z(t) = b0 + b1*h(t/l) + b2*(h(t/l) - exp(-t/l))
//
// with h(x) = (1-exp(-x))/x, parameters [b0, b1, b2, l].
type NelsonSiegel struct{}

func (NelsonSiegel) Name() string { return "NelsonSiegel" }

func (NelsonSiegel) NumParams() int { return 4 }

func (NelsonSiegel) Discount(p []float64, t float64) (float64, error) {
	if p[3] <= 0 {
		return 0, fmt.Errorf("nelson-siegel: decay parameter %g must be positive", p[3])
	}
	z := p[0] + p[1]*hump(t/p[3]) + p[2]*(hump(t/p[3])-math.Exp(-t/p[3]))
	return math.Exp(-z * t), nil
}

func (NelsonSiegel) DefaultGuess(shortYield, longYield float64) []float64 {
	return []float64{longYield, shortYield - longYield, 0, 5.0}
}

func (NelsonSiegel) SampleGuess(u []float64) []float64 {
	return []float64{
		u[0]*0.10 - 0.05,
		u[1]*0.10 - 0.05,
		u[2]*0.10 - 0.05,
		decayFromSample(u[3]),
	}
}

// Svensson extends Nelson-Siegel with a second hump, parameters
// [b0, b1, b2, b3, l1, l2].
type Svensson struct{}

func (Svensson) Name() string { return "Svensson" }

func (Svensson) NumParams() int { return 6 }

func (Svensson) Discount(p []float64, t float64) (float64, error) {
	if p[4] <= 0 || p[5] <= 0 {
		return 0, fmt.Errorf("svensson: decay parameters %g, %g must be positive", p[4], p[5])
	}
	z := p[0] +
		p[1]*hump(t/p[4]) +
		p[2]*(hump(t/p[4])-math.Exp(-t/p[4])) +
		p[3]*(hump(t/p[5])-math.Exp(-t/p[5]))
	return math.Exp(-z * t), nil
}

func (Svensson) DefaultGuess(shortYield, longYield float64) []float64 {
	return []float64{longYield, shortYield - longYield, 0, 0, 5.0, 2.5}
}

func (Svensson) SampleGuess(u []float64) []float64 {
	return []float64{
		u[0]*0.10 - 0.05,
		u[1]*0.10 - 0.05,
		u[2]*0.10 - 0.05,
		u[3]*0.10 - 0.05,
		decayFromSample(u[4]),
		decayFromSample(u[5]),
	}
}

// ExponentialSplines models the discount factor as a four-term exponential
// basis
//
//	D(t) = sum_{i=1..4} c_i * exp(-i*k*t)
//
// with c4 = 1 - c1 - c2 - c3, which pins D(0) = 1 by construction. Free
// parameters are [c1, c2, c3, k].
type ExponentialSplines struct{}

func (ExponentialSplines) Name() string { return "ExponentialSplines" }

func (ExponentialSplines) NumParams() int { return 4 }

func (ExponentialSplines) Discount(p []float64, t float64) (float64, error) {
	kappa := p[3]
	if kappa <= 0 {
		return 0, fmt.Errorf("exponential splines: decay parameter %g must be positive", kappa)
	}
	c4 := 1 - p[0] - p[1] - p[2]
	df := p[0]*math.Exp(-kappa*t) +
		p[1]*math.Exp(-2*kappa*t) +
		p[2]*math.Exp(-3*kappa*t) +
		c4*math.Exp(-4*kappa*t)
	if df <= 0 {
		return 0, fmt.Errorf("exponential splines: non-positive discount %g at t=%g", df, t)
	}
	return df, nil
}

func (ExponentialSplines) DefaultGuess(shortYield, longYield float64) []float64 {
	return []float64{0.25, 0.25, 0.25, math.Max(0.5*(shortYield+longYield), 0.01)}
}

func (ExponentialSplines) SampleGuess(u []float64) []float64 {
	return []float64{
		u[0]*2 - 1,
		u[1]*2 - 1,
		u[2]*2 - 1,
		decayFromSample(u[3]),
	}
}

// hump is (1-exp(-x))/x with its x -> 0 limit.
func hump(x float64) float64 {
	if math.Abs(x) < 1e-10 {
		return 1.0
	}
	return (1 - math.Exp(-x)) / x
}

// decayFromSample maps [0,1) onto (0, 5], keeping decay parameters strictly
// positive.
func decayFromSample(u float64) float64 {
	return (1 - u) * 5.0
}
