// Package curve defines the immutable term structure produced by the
// bootstrap, composition and fitting builders, together with the shared
// diagnostic and error types.
package curve

import (
	"time"

	"github.com/meenmo/termstruct/utils"
)

// Variable selects the quantity stored at the pillars and handed to the
// interpolation scheme.
type Variable string

const (
	// Zero stores continuously compounded zero rates.
	Zero Variable = "Zero"
	// Discount stores discount factors.
	Discount Variable = "Discount"
	// Forward stores instantaneous forward rates.
	Forward Variable = "Forward"
)

// ParseVariable validates a variable tag, typically read from a curve config file.
func ParseVariable(s string) (Variable, error) {
	switch v := Variable(s); v {
	case Zero, Discount, Forward:
		return v, nil
	default:
		return "", &ConfigError{Reason: "unknown interpolation variable " + s}
	}
}

// Compounding is the rate quotation convention for zero and forward rates.
type Compounding int

const (
	Continuous Compounding = iota
	Simple
	CompoundedAnnually
	CompoundedSemiAnnually
	CompoundedQuarterly
)

func (c Compounding) frequency() float64 {
	switch c {
	case CompoundedAnnually:
		return 1
	case CompoundedSemiAnnually:
		return 2
	case CompoundedQuarterly:
		return 4
	default:
		return 0
	}
}

// Pillar is a single calibration node: a date, its time from the curve
// reference date on the curve day count, and the solved value in the
// curve's interpolation variable.
type Pillar struct {
	Date  time.Time
	Time  float64
	Value float64
}

// PillarsFrom pairs dates with values, computing times from asOf on the
// given day count. Dates must be handed over sorted.
func PillarsFrom(asOf time.Time, dates []time.Time, values []float64, dayCount string) []Pillar {
	ps := make([]Pillar, len(dates))
	for i, d := range dates {
		ps[i] = Pillar{
			Date:  d,
			Time:  utils.YearFraction(asOf, d, dayCount),
			Value: values[i],
		}
	}
	return ps
}
