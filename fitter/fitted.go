package fitter

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/meenmo/termstruct/interp"
	"github.com/meenmo/termstruct/utils"
)

// Fitted is an immutable parametric discount curve produced by Fit. Beyond
// the last fitted cashflow time the zero rate is held flat, and only when
// extrapolation has been enabled.
type Fitted struct {
	id       string
	asOf     time.Time
	dayCount string
	family   Family
	params   []float64
	maxT     float64
	extrap   atomic.Bool
}

func (f *Fitted) ID() string { return f.id }

func (f *Fitted) AsOf() time.Time { return f.asOf }

func (f *Fitted) DayCount() string { return f.dayCount }

// Params returns a copy of the fitted parameter vector.
func (f *Fitted) Params() []float64 {
	return append([]float64(nil), f.params...)
}

func (f *Fitted) Family() Family { return f.family }

func (f *Fitted) Extrapolates() bool { return f.extrap.Load() }

// EnableExtrapolation permits evaluation beyond the last fitted cashflow.
// The flag only ever moves from off to on.
func (f *Fitted) EnableExtrapolation() { f.extrap.Store(true) }

// Discount evaluates the fitted model at date d.
func (f *Fitted) Discount(d time.Time) (float64, error) {
	t := utils.YearFraction(f.asOf, d, f.dayCount)
	return f.DiscountTime(t)
}

// DiscountTime evaluates the fitted model at year fraction t from the
// as-of date. t = 0 returns exactly 1.
func (f *Fitted) DiscountTime(t float64) (float64, error) {
	if t <= 0 {
		return 1.0, nil
	}
	if t > f.maxT {
		if !f.extrap.Load() {
			return 0, &interp.RangeError{X: t, Min: 0, Max: f.maxT}
		}
		// Hold the zero rate at the cutoff flat.
		dfMax, err := f.family.Discount(f.params, f.maxT)
		if err != nil {
			return 0, err
		}
		z := -math.Log(dfMax) / f.maxT
		return math.Exp(-z * t), nil
	}
	return f.family.Discount(f.params, t)
}
