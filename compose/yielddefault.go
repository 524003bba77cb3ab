package compose

import (
	"math"
	"time"

	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/utils"
)

// SurvivalCurve yields survival probabilities S(t) in (0, 1].
type SurvivalCurve interface {
	AsOf() time.Time
	SurvivalProbability(d time.Time) (float64, error)
}

// FlatHazard is a constant-intensity survival curve: S(t) = exp(-h*t).
type FlatHazard struct {
	asOf     time.Time
	hazard   float64
	dayCount string
}

// NewFlatHazard builds a flat hazard curve. The hazard rate must be
// non-negative.
func NewFlatHazard(asOf time.Time, hazard float64, dayCount string) (*FlatHazard, error) {
	if hazard < 0 {
		return nil, &curve.ConfigError{Reason: "hazard rate must be non-negative"}
	}
	return &FlatHazard{asOf: asOf, hazard: hazard, dayCount: dayCount}, nil
}

func (f *FlatHazard) AsOf() time.Time { return f.asOf }

func (f *FlatHazard) SurvivalProbability(d time.Time) (float64, error) {
	t := utils.YearFraction(f.asOf, d, f.dayCount)
	if t <= 0 {
		return 1.0, nil
	}
	return math.Exp(-f.hazard * t), nil
}

// YieldPlusDefault loads default risk onto a base yield curve:
//
//	discount(t) = base(t) * prod_k (S_k(t) + (1-S_k(t))*R_k)^w_k
//
// where S_k is a survival curve, R_k its recovery rate in [0, 1] and w_k a
// non-negative weight. Each factor is at most 1, so the blended discount
// never exceeds the base discount.
type YieldPlusDefault struct {
	base       curve.TermStructure
	defaults   []SurvivalCurve
	recoveries []float64
	weights    []float64
}

// NewYieldPlusDefault wires the blend. Defaults, recoveries and weights
// must have equal length.
func NewYieldPlusDefault(base curve.TermStructure, defaults []SurvivalCurve, recoveries, weights []float64) (*YieldPlusDefault, error) {
	if base == nil {
		return nil, curve.ErrNilCurve
	}
	if len(defaults) == 0 || len(defaults) != len(recoveries) || len(defaults) != len(weights) {
		return nil, &curve.ConfigError{Reason: "default curves, recoveries and weights must have equal non-zero length"}
	}
	for i, sc := range defaults {
		if sc == nil {
			return nil, curve.ErrNilCurve
		}
		if recoveries[i] < 0 || recoveries[i] > 1 {
			return nil, &curve.ConfigError{Reason: "recovery rate outside [0, 1]"}
		}
		if weights[i] < 0 {
			return nil, &curve.ConfigError{Reason: "default curve weight must be non-negative"}
		}
	}
	return &YieldPlusDefault{
		base:       base,
		defaults:   defaults,
		recoveries: recoveries,
		weights:    weights,
	}, nil
}

func (y *YieldPlusDefault) AsOf() time.Time { return y.base.AsOf() }

func (y *YieldPlusDefault) DayCount() string { return y.base.DayCount() }

func (y *YieldPlusDefault) Discount(d time.Time) (float64, error) {
	df, err := y.base.Discount(d)
	if err != nil {
		return 0, err
	}
	for i, sc := range y.defaults {
		s, err := sc.SurvivalProbability(d)
		if err != nil {
			return 0, err
		}
		df *= math.Pow(s+(1-s)*y.recoveries[i], y.weights[i])
	}
	return df, nil
}

func (y *YieldPlusDefault) EnableExtrapolation() { y.base.EnableExtrapolation() }
