package fitter

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/termstruct/utils"
)

// Cashflow is one fixed bond payment.
type Cashflow struct {
	Date   time.Time
	Amount float64
}

// Bond is a fitting instrument quoted by clean price per unit notional.
type Bond struct {
	SecurityID string
	Settlement time.Time
	Maturity   time.Time
	CleanPrice float64
	Accrued    float64
	Cashflows  []Cashflow
}

// DirtyPrice is the settlement-invoice price the fit targets.
func (b Bond) DirtyPrice() float64 { return b.CleanPrice + b.Accrued }

// Yield solves the continuously compounded yield matching the given dirty
// price by Newton iteration: price = sum cf_i * exp(-y * tau_i) with times
// measured from settlement.
func (b Bond) Yield(dirty float64, dayCount string) (float64, error) {
	if dirty <= 0 {
		return 0, fmt.Errorf("bond %s: non-positive dirty price %g", b.SecurityID, dirty)
	}

	y := 0.05
	for iter := 0; iter < 100; iter++ {
		price, deriv := 0.0, 0.0
		for _, cf := range b.Cashflows {
			if !cf.Date.After(b.Settlement) {
				continue
			}
			tau := utils.YearFraction(b.Settlement, cf.Date, dayCount)
			df := math.Exp(-y * tau)
			price += cf.Amount * df
			deriv -= tau * cf.Amount * df
		}
		diff := price - dirty
		if math.Abs(diff) < 1e-12 {
			return y, nil
		}
		if deriv == 0 {
			break
		}
		y -= diff / deriv
	}
	return 0, fmt.Errorf("bond %s: yield search did not converge", b.SecurityID)
}

// modelDirtyPrice prices the bond off the parametric family: cashflows
// after settlement discounted to the settlement date. Screening guarantees
// settlement is on or after asOf.
func modelDirtyPrice(fam Family, params []float64, asOf time.Time, dayCount string, b Bond) (float64, error) {
	tSettle := utils.YearFraction(asOf, b.Settlement, dayCount)
	dfSettle, err := fam.Discount(params, tSettle)
	if err != nil {
		return 0, err
	}

	price := 0.0
	for _, cf := range b.Cashflows {
		if !cf.Date.After(b.Settlement) {
			continue
		}
		t := utils.YearFraction(asOf, cf.Date, dayCount)
		df, err := fam.Discount(params, t)
		if err != nil {
			return 0, err
		}
		price += cf.Amount * df
	}
	return price / dfSettle, nil
}
