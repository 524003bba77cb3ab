package curve

import (
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/meenmo/termstruct/interp"
	"github.com/meenmo/termstruct/utils"
)

// Curve is an immutable term structure over solved pillars. It is built
// once, synchronously, by one of the builder packages; after construction
// only the extrapolation flag may change, and that change is monotonic
// (disabled -> enabled), so concurrent readers need no locking.
type Curve struct {
	id       string
	asOf     time.Time
	dayCount string
	variable Variable
	method   interp.Method
	pillars  []Pillar
	eval     interp.Evaluator
	extrap   atomic.Bool
}

// New builds a curve over the given pillars. Pillar times must be strictly
// increasing and pillar 0 must sit at the reference date (time 0) with a
// value consistent with discount(0) = 1.
func New(id string, asOf time.Time, pillars []Pillar, method interp.Method, variable Variable, dayCount string) (*Curve, error) {
	if len(pillars) < 2 {
		return nil, &ConfigError{CurveID: id, Reason: "need at least 2 pillars"}
	}
	if pillars[0].Time != 0 {
		return nil, &ConfigError{CurveID: id, Reason: "first pillar must sit at the reference date"}
	}
	if variable == Discount && pillars[0].Value != 1.0 {
		return nil, &ConfigError{CurveID: id, Reason: "discount pillar at time 0 must be 1"}
	}
	for i := 1; i < len(pillars); i++ {
		if pillars[i].Time <= pillars[i-1].Time {
			return nil, &ConfigError{CurveID: id, Reason: "pillar times not strictly increasing"}
		}
	}

	xs := make([]float64, len(pillars))
	ys := make([]float64, len(pillars))
	for i, p := range pillars {
		xs[i] = p.Time
		ys[i] = p.Value
	}
	eval, err := interp.New(method, xs, ys)
	if err != nil {
		// Node values outside a method's numeric domain keep their typed
		// error; everything else (unknown method, bad nodes) is a curve
		// configuration problem.
		var de *interp.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, &ConfigError{CurveID: id, Reason: err.Error()}
	}

	cp := make([]Pillar, len(pillars))
	copy(cp, pillars)
	return &Curve{
		id:       id,
		asOf:     asOf,
		dayCount: dayCount,
		variable: variable,
		method:   method,
		pillars:  cp,
		eval:     eval,
	}, nil
}

// NewFromDiscounts builds a direct discount curve from (date, DF) quotes.
// A (asOf, 1.0) node is inserted when the first quote lies after asOf.
func NewFromDiscounts(id string, asOf time.Time, dates []time.Time, dfs []float64, method interp.Method, dayCount string) (*Curve, error) {
	if len(dates) != len(dfs) {
		return nil, &ConfigError{CurveID: id, Reason: "date and discount vectors differ in size"}
	}
	if len(dates) == 0 {
		return nil, &ConfigError{CurveID: id, Reason: "no discount quotes"}
	}
	var ds []time.Time
	var vs []float64
	if dates[0].After(asOf) {
		ds = append([]time.Time{asOf}, dates...)
		vs = append([]float64{1.0}, dfs...)
	} else {
		ds, vs = dates, dfs
	}
	return New(id, asOf, PillarsFrom(asOf, ds, vs, dayCount), method, Discount, dayCount)
}

// ID returns the curve identifier used in diagnostics and errors.
func (c *Curve) ID() string { return c.id }

// AsOf returns the curve reference date.
func (c *Curve) AsOf() time.Time { return c.asOf }

// DayCount returns the curve's time-axis day count convention.
func (c *Curve) DayCount() string { return c.dayCount }

// Method returns the interpolation method tag.
func (c *Curve) Method() interp.Method { return c.method }

// Variable returns the interpolation variable tag.
func (c *Curve) Variable() Variable { return c.variable }

// Pillars returns a copy of the calibrated pillars.
func (c *Curve) Pillars() []Pillar {
	out := make([]Pillar, len(c.pillars))
	copy(out, c.pillars)
	return out
}

// EnableExtrapolation permits evaluation outside the calibrated pillar
// range. The flip is idempotent and cannot be undone.
func (c *Curve) EnableExtrapolation() { c.extrap.Store(true) }

// Extrapolates reports whether extrapolation has been enabled.
func (c *Curve) Extrapolates() bool { return c.extrap.Load() }

// Local reports whether the interpolation scheme has purely local support.
func (c *Curve) Local() bool { return c.eval.Local() }

// Discount returns the discount factor to date d.
func (c *Curve) Discount(d time.Time) (float64, error) {
	return c.DiscountTime(utils.YearFraction(c.asOf, d, c.dayCount))
}

// DiscountTime returns the discount factor at time t on the curve day count.
// discount(0) is exactly 1 for every interpolation variable.
func (c *Curve) DiscountTime(t float64) (float64, error) {
	if t == 0 {
		return 1.0, nil
	}
	extrap := c.extrap.Load()
	switch c.variable {
	case Discount:
		return c.eval.Value(t, extrap)
	case Zero:
		z, err := c.eval.Value(t, extrap)
		if err != nil {
			return 0, err
		}
		return math.Exp(-z * t), nil
	case Forward:
		integral, err := c.integrateForward(t)
		if err != nil {
			return 0, err
		}
		return math.Exp(-integral), nil
	default:
		return 0, &ConfigError{CurveID: c.id, Reason: "unknown interpolation variable " + string(c.variable)}
	}
}

// integrateForward computes the integral of the instantaneous forward from
// 0 to t by pillar-aligned composite Simpson. Simpson panels are exact for
// the polynomial schemes; the panel count keeps log-based schemes accurate.
func (c *Curve) integrateForward(t float64) (float64, error) {
	extrap := c.extrap.Load()
	if _, err := c.eval.Value(t, extrap); err != nil {
		return 0, err
	}
	const panels = 8
	total := 0.0
	lo := 0.0
	for i := 1; i < len(c.pillars) && lo < t; i++ {
		hi := math.Min(c.pillars[i].Time, t)
		if hi <= lo {
			continue
		}
		seg, err := c.simpson(lo, hi, panels)
		if err != nil {
			return 0, err
		}
		total += seg
		lo = hi
	}
	if lo < t {
		seg, err := c.simpson(lo, t, panels)
		if err != nil {
			return 0, err
		}
		total += seg
	}
	return total, nil
}

func (c *Curve) simpson(a, b float64, panels int) (float64, error) {
	h := (b - a) / float64(2*panels)
	sum := 0.0
	for i := 0; i <= 2*panels; i++ {
		x := a + float64(i)*h
		// Panel endpoints may fall a hair outside the pillar range from
		// floating point noise; evaluate with extrapolation and rely on
		// the caller's range check at t.
		v, err := c.eval.Value(x, true)
		if err != nil {
			return 0, err
		}
		switch {
		case i == 0 || i == 2*panels:
			sum += v
		case i%2 == 1:
			sum += 4 * v
		default:
			sum += 2 * v
		}
	}
	return sum * h / 3, nil
}

// Zero returns the zero rate to date d quoted with the given day count and
// compounding convention.
func (c *Curve) Zero(d time.Time, dayCount string, comp Compounding) (float64, error) {
	return ZeroRate(c, d, dayCount, comp)
}

// Forward returns the forward rate between d1 and d2 quoted with the given
// day count and compounding convention.
func (c *Curve) Forward(d1, d2 time.Time, dayCount string, comp Compounding) (float64, error) {
	return ForwardRate(c, d1, d2, dayCount, comp)
}
