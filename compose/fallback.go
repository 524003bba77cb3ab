package compose

import (
	"fmt"
	"time"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/utils"
)

// FixingSource serves historical index fixings by date.
type FixingSource interface {
	Fixing(d time.Time) (float64, bool)
}

// MapFixings is an in-memory fixing source keyed by calendar date.
type MapFixings map[time.Time]float64

func (m MapFixings) Fixing(d time.Time) (float64, bool) {
	r, ok := m[d]
	return r, ok
}

// IborFallback projects a discontinued ibor index. Before the cutover date
// fixings come from the historical source; on or after it the index is
// replaced by the risk-free curve's simple forward over the ibor tenor plus
// a fixed fallback spread.
type IborFallback struct {
	Index       string
	RFR         curve.TermStructure
	Fixings     FixingSource
	Spread      float64
	Cutover     time.Time
	TenorMonths int
	dayCount    string
	Calendar    calendar.CalendarID
}

// NewIborFallback wires the fallback projection.
func NewIborFallback(index string, rfr curve.TermStructure, fixings FixingSource, spread float64, cutover time.Time, tenorMonths int, dayCount string, cal calendar.CalendarID) (*IborFallback, error) {
	if rfr == nil {
		return nil, curve.ErrNilCurve
	}
	if tenorMonths <= 0 {
		return nil, &curve.ConfigError{CurveID: index, Reason: "ibor tenor must be positive"}
	}
	return &IborFallback{
		Index:       index,
		RFR:         rfr,
		Fixings:     fixings,
		Spread:      spread,
		Cutover:     cutover,
		TenorMonths: tenorMonths,
		dayCount:    dayCount,
		Calendar:    cal,
	}, nil
}

// Fixing returns the index fixing for date d. Historical dates before the
// cutover must be present in the fixing source.
func (f *IborFallback) Fixing(d time.Time) (float64, error) {
	if d.Before(f.Cutover) {
		if f.Fixings == nil {
			return 0, fmt.Errorf("%s: no fixing source for historical date %s", f.Index, d.Format("2006-01-02"))
		}
		r, ok := f.Fixings.Fixing(d)
		if !ok {
			return 0, fmt.Errorf("%s: missing historical fixing for %s", f.Index, d.Format("2006-01-02"))
		}
		return r, nil
	}

	end := calendar.Adjust(f.Calendar, utils.AddMonth(d, f.TenorMonths))
	fwd, err := curve.ForwardRate(f.RFR, d, end, f.dayCount, curve.Simple)
	if err != nil {
		return 0, err
	}
	return fwd + f.Spread, nil
}

func (f *IborFallback) AsOf() time.Time { return f.RFR.AsOf() }

func (f *IborFallback) DayCount() string { return f.RFR.DayCount() }

// Discount delegates to the risk-free curve so a fallback index can stand
// in for its projection curve.
func (f *IborFallback) Discount(d time.Time) (float64, error) {
	return f.RFR.Discount(d)
}

func (f *IborFallback) EnableExtrapolation() { f.RFR.EnableExtrapolation() }
