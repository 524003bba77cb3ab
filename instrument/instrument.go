// Package instrument provides the standard calibrating instruments fed to
// the bootstrap solver: deposits, FRAs and par swaps. Each computes its
// model-implied quote from a trial curve; the solver owns nothing here.
package instrument

import (
	"time"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/utils"
)

// Deposit is a simple-rate money market deposit.
type Deposit struct {
	ID       string
	Start    time.Time
	Maturity time.Time
	Rate     float64 // simple rate, decimal
	DayCount string
}

func (d Deposit) Name() string { return d.ID }

func (d Deposit) PillarDate() time.Time { return d.Maturity }

func (d Deposit) MarketQuote() float64 { return d.Rate }

// ImpliedQuote returns the simple rate implied by the trial curve over the
// deposit period.
func (d Deposit) ImpliedQuote(trial *curve.Curve) (float64, error) {
	dfStart, err := trial.Discount(d.Start)
	if err != nil {
		return 0, err
	}
	dfEnd, err := trial.Discount(d.Maturity)
	if err != nil {
		return 0, err
	}
	tau := utils.YearFraction(d.Start, d.Maturity, d.DayCount)
	return (dfStart/dfEnd - 1) / tau, nil
}

// FRA is a forward rate agreement quoted as the simple forward rate over
// [Start, End]. Its pillar sits at the period end.
type FRA struct {
	ID       string
	Start    time.Time
	End      time.Time
	Rate     float64
	DayCount string
}

func (f FRA) Name() string { return f.ID }

func (f FRA) PillarDate() time.Time { return f.End }

func (f FRA) MarketQuote() float64 { return f.Rate }

func (f FRA) ImpliedQuote(trial *curve.Curve) (float64, error) {
	return trial.Forward(f.Start, f.End, f.DayCount, curve.Simple)
}

// ParSwap is a single-curve fixed-vs-float par swap quoted by its fixed
// rate. The floating leg is valued by telescoping, so the implied par rate
// is (D(start) - D(maturity)) / annuity.
type ParSwap struct {
	ID            string
	Start         time.Time
	Maturity      time.Time
	Rate          float64
	FixedMonths   int // fixed leg coupon period, e.g. 12 for annual
	FixedDayCount string
	Calendar      calendar.CalendarID
}

func (s ParSwap) Name() string { return s.ID }

// PillarDate is the business-day adjusted maturity, so intermediate coupon
// dates can never fall beyond the curve's last pillar during the solve.
func (s ParSwap) PillarDate() time.Time {
	return calendar.Adjust(s.Calendar, s.Maturity)
}

func (s ParSwap) MarketQuote() float64 { return s.Rate }

func (s ParSwap) ImpliedQuote(trial *curve.Curve) (float64, error) {
	dfStart, err := trial.Discount(s.Start)
	if err != nil {
		return 0, err
	}
	dfEnd, err := trial.Discount(s.PillarDate())
	if err != nil {
		return 0, err
	}

	annuity := 0.0
	for _, p := range s.fixedSchedule() {
		df, err := trial.Discount(p.pay)
		if err != nil {
			return 0, err
		}
		annuity += p.accrual * df
	}
	return (dfStart - dfEnd) / annuity, nil
}

type fixedPeriod struct {
	pay     time.Time
	accrual float64
}

// fixedSchedule rolls coupon dates backward from maturity so the last
// coupon always lands on the swap maturity, then adjusts each date.
func (s ParSwap) fixedSchedule() []fixedPeriod {
	var unadjusted []time.Time
	current := s.Maturity
	for current.After(s.Start) {
		unadjusted = append([]time.Time{current}, unadjusted...)
		current = utils.AddMonth(current, -s.FixedMonths)
	}
	unadjusted = append([]time.Time{s.Start}, unadjusted...)

	periods := make([]fixedPeriod, 0, len(unadjusted)-1)
	for i := 0; i < len(unadjusted)-1; i++ {
		start := calendar.Adjust(s.Calendar, unadjusted[i])
		end := calendar.Adjust(s.Calendar, unadjusted[i+1])
		periods = append(periods, fixedPeriod{
			pay:     end,
			accrual: utils.YearFraction(start, end, s.FixedDayCount),
		})
	}
	return periods
}
