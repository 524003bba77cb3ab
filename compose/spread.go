package compose

import (
	"time"

	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/interp"
	"github.com/meenmo/termstruct/utils"
)

// SpreadQuote is one zero-rate spread node.
type SpreadQuote struct {
	Date   time.Time
	Spread float64 // additive, decimal
}

// ZeroSpread overlays interpolated zero-rate spreads on a reference curve:
// zero(t) = zeroRef(t) + s(t). Spread quotes are interpolated directly, no
// solving is involved. Beyond the first and last quote the spread is held
// flat.
type ZeroSpread struct {
	ref      curve.TermStructure
	eval     interp.Evaluator
	tMin     float64
	tMax     float64
	flat     float64 // constant spread when only one quote is given
	dayCount string
	comp     curve.Compounding
}

// NewZeroSpread builds the overlay. Quotes must be sorted by date, strictly
// increasing and all after the reference curve's as-of date. The day count
// and compounding fix the zero-rate convention the spreads apply to.
func NewZeroSpread(ref curve.TermStructure, quotes []SpreadQuote, method interp.Method, dayCount string, comp curve.Compounding) (*ZeroSpread, error) {
	if ref == nil {
		return nil, curve.ErrNilCurve
	}
	if len(quotes) == 0 {
		return nil, &curve.ConfigError{Reason: "zero spread overlay needs at least one quote"}
	}

	asOf := ref.AsOf()
	xs := make([]float64, len(quotes))
	ys := make([]float64, len(quotes))
	for i, q := range quotes {
		t := utils.YearFraction(asOf, q.Date, dayCount)
		if t <= 0 {
			return nil, &curve.ConfigError{Reason: "spread quote on or before the as-of date"}
		}
		if i > 0 && t <= xs[i-1] {
			return nil, &curve.ConfigError{Reason: "spread quotes must be strictly increasing in time"}
		}
		xs[i] = t
		ys[i] = q.Spread
	}

	zs := &ZeroSpread{
		ref:      ref,
		tMin:     xs[0],
		tMax:     xs[len(xs)-1],
		dayCount: dayCount,
		comp:     comp,
	}
	if len(xs) >= 2 {
		eval, err := interp.New(method, xs, ys)
		if err != nil {
			return nil, err
		}
		zs.eval = eval
	} else {
		// A single quote degenerates to a constant spread.
		zs.flat = ys[0]
	}
	return zs, nil
}

func (z *ZeroSpread) AsOf() time.Time { return z.ref.AsOf() }

func (z *ZeroSpread) DayCount() string { return z.ref.DayCount() }

// Spread returns the interpolated spread at date d, flat beyond the quoted
// range.
func (z *ZeroSpread) Spread(d time.Time) (float64, error) {
	if z.eval == nil {
		return z.flat, nil
	}
	t := utils.YearFraction(z.ref.AsOf(), d, z.dayCount)
	if t < z.tMin {
		t = z.tMin
	}
	if t > z.tMax {
		t = z.tMax
	}
	return z.eval.Value(t, false)
}

func (z *ZeroSpread) Discount(d time.Time) (float64, error) {
	asOf := z.ref.AsOf()
	if !d.After(asOf) {
		return z.ref.Discount(d)
	}
	zr, err := curve.ZeroRate(z.ref, d, z.dayCount, z.comp)
	if err != nil {
		return 0, err
	}
	s, err := z.Spread(d)
	if err != nil {
		return 0, err
	}
	tau := utils.YearFraction(asOf, d, z.dayCount)
	return curve.DiscountFromRate(zr+s, tau, z.comp), nil
}

func (z *ZeroSpread) EnableExtrapolation() { z.ref.EnableExtrapolation() }
