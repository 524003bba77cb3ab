package compose

import (
	"time"

	"github.com/meenmo/termstruct/curve"
)

// DiscountRatio modifies a base curve by the ratio of two other curves:
// discount(t) = base(t) * numerator(t) / denominator(t). All three
// dependencies are evaluated live on every call.
type DiscountRatio struct {
	base, num, den curve.TermStructure
}

// NewDiscountRatio wires the ratio curve.
func NewDiscountRatio(base, num, den curve.TermStructure) (*DiscountRatio, error) {
	if base == nil || num == nil || den == nil {
		return nil, curve.ErrNilCurve
	}
	return &DiscountRatio{base: base, num: num, den: den}, nil
}

func (r *DiscountRatio) AsOf() time.Time { return r.base.AsOf() }

func (r *DiscountRatio) DayCount() string { return r.base.DayCount() }

func (r *DiscountRatio) Discount(d time.Time) (float64, error) {
	db, err := r.base.Discount(d)
	if err != nil {
		return 0, err
	}
	dn, err := r.num.Discount(d)
	if err != nil {
		return 0, err
	}
	dd, err := r.den.Discount(d)
	if err != nil {
		return 0, err
	}
	return db * dn / dd, nil
}

func (r *DiscountRatio) EnableExtrapolation() {
	r.base.EnableExtrapolation()
	r.num.EnableExtrapolation()
	r.den.EnableExtrapolation()
}
