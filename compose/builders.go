package compose

import (
	"fmt"
	"time"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/interp"
	"github.com/meenmo/termstruct/registry"
)

// resolve looks a dependency curve up in the registry, converting a missing
// entry into a configuration error naming the derived curve being built.
func resolve(reg registry.Registry, curveID string, k registry.Key) (curve.TermStructure, error) {
	ts, err := reg.Lookup(k)
	if err != nil {
		return nil, &curve.ConfigError{
			CurveID: curveID,
			Reason:  fmt.Sprintf("missing dependency curve %s", k),
		}
	}
	return ts, nil
}

// BuildZeroSpread resolves the reference curve from the registry and
// overlays the spread quotes on it.
func BuildZeroSpread(reg registry.Registry, curveID string, ref registry.Key, quotes []SpreadQuote, method interp.Method, dayCount string, comp curve.Compounding) (*ZeroSpread, error) {
	ts, err := resolve(reg, curveID, ref)
	if err != nil {
		return nil, err
	}
	return NewZeroSpread(ts, quotes, method, dayCount, comp)
}

// BuildWeightedAverage resolves both blend inputs from the registry.
func BuildWeightedAverage(reg registry.Registry, curveID string, k1, k2 registry.Key, w1, w2 float64) (*WeightedAverage, error) {
	c1, err := resolve(reg, curveID, k1)
	if err != nil {
		return nil, err
	}
	c2, err := resolve(reg, curveID, k2)
	if err != nil {
		return nil, err
	}
	return NewWeightedAverage(c1, c2, w1, w2)
}

// BuildDiscountRatio resolves the base, numerator and denominator curves
// from the registry.
func BuildDiscountRatio(reg registry.Registry, curveID string, base, num, den registry.Key) (*DiscountRatio, error) {
	cb, err := resolve(reg, curveID, base)
	if err != nil {
		return nil, err
	}
	cn, err := resolve(reg, curveID, num)
	if err != nil {
		return nil, err
	}
	cd, err := resolve(reg, curveID, den)
	if err != nil {
		return nil, err
	}
	return NewDiscountRatio(cb, cn, cd)
}

// BuildYieldPlusDefault resolves the base yield curve from the registry;
// survival curves are supplied directly since they are not yield curves.
func BuildYieldPlusDefault(reg registry.Registry, curveID string, base registry.Key, defaults []SurvivalCurve, recoveries, weights []float64) (*YieldPlusDefault, error) {
	cb, err := resolve(reg, curveID, base)
	if err != nil {
		return nil, err
	}
	return NewYieldPlusDefault(cb, defaults, recoveries, weights)
}

// BuildIborFallback resolves the risk-free replacement curve from the
// registry.
func BuildIborFallback(reg registry.Registry, index string, rfr registry.Key, fixings FixingSource, spread float64, cutover time.Time, tenorMonths int, dayCount string, cal calendar.CalendarID) (*IborFallback, error) {
	ts, err := resolve(reg, index, rfr)
	if err != nil {
		return nil, err
	}
	return NewIborFallback(index, ts, fixings, spread, cutover, tenorMonths, dayCount, cal)
}
