package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/termstruct/utils"
)

// TermStructure is the read-only contract shared by bootstrapped, fitted
// and composed curves. Dependent curves hold these references directly;
// they are never copied or snapshotted for composition.
type TermStructure interface {
	AsOf() time.Time
	DayCount() string
	Discount(d time.Time) (float64, error)
	// EnableExtrapolation is monotonic and idempotent; derived curves
	// forward it to their dependencies.
	EnableExtrapolation()
}

// ZeroRate derives the zero rate to d from a term structure's discount
// factor, quoted with the requested day count and compounding.
func ZeroRate(ts TermStructure, d time.Time, dayCount string, comp Compounding) (float64, error) {
	df, err := ts.Discount(d)
	if err != nil {
		return 0, err
	}
	tau := utils.YearFraction(ts.AsOf(), d, dayCount)
	return RateFromDiscount(df, tau, comp)
}

// ForwardRate derives the forward rate between d1 and d2 from a term
// structure's discount factors.
func ForwardRate(ts TermStructure, d1, d2 time.Time, dayCount string, comp Compounding) (float64, error) {
	if !d1.Before(d2) {
		return 0, fmt.Errorf("forward rate: %s is not before %s", d1.Format("2006-01-02"), d2.Format("2006-01-02"))
	}
	df1, err := ts.Discount(d1)
	if err != nil {
		return 0, err
	}
	df2, err := ts.Discount(d2)
	if err != nil {
		return 0, err
	}
	tau := utils.YearFraction(d1, d2, dayCount)
	return RateFromDiscount(df2/df1, tau, comp)
}

// RateFromDiscount converts a discount factor over year fraction tau into a
// rate in the given compounding convention.
func RateFromDiscount(df, tau float64, comp Compounding) (float64, error) {
	if tau == 0 {
		return 0, fmt.Errorf("rate conversion: zero year fraction")
	}
	if df <= 0 {
		return 0, fmt.Errorf("rate conversion: non-positive discount factor %g", df)
	}
	switch comp {
	case Continuous:
		return -math.Log(df) / tau, nil
	case Simple:
		return (1/df - 1) / tau, nil
	default:
		f := comp.frequency()
		return f * (math.Pow(1/df, 1/(f*tau)) - 1), nil
	}
}

// DiscountFromRate inverts RateFromDiscount.
func DiscountFromRate(r, tau float64, comp Compounding) float64 {
	switch comp {
	case Continuous:
		return math.Exp(-r * tau)
	case Simple:
		return 1 / (1 + r*tau)
	default:
		f := comp.frequency()
		return math.Pow(1+r/f, -f*tau)
	}
}
