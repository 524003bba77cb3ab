// Package compose derives curves from already-built dependency curves:
// spread overlays, weighted blends, discount ratios, default-risk blends
// and ibor fallback projections. Every derivation is read-only and
// evaluated live against shared curve references; nothing is snapshotted.
package compose

import (
	"math"
	"time"

	"github.com/meenmo/termstruct/curve"
)

// WeightedAverage blends two curves in log-discount space:
// discount(t) = exp(w1*ln D1(t) + w2*ln D2(t)). Weights need not sum to 1.
type WeightedAverage struct {
	c1, c2 curve.TermStructure
	w1, w2 float64
}

// NewWeightedAverage wires the blend. Both dependency curves must already
// be built.
func NewWeightedAverage(c1, c2 curve.TermStructure, w1, w2 float64) (*WeightedAverage, error) {
	if c1 == nil || c2 == nil {
		return nil, curve.ErrNilCurve
	}
	return &WeightedAverage{c1: c1, c2: c2, w1: w1, w2: w2}, nil
}

func (w *WeightedAverage) AsOf() time.Time { return w.c1.AsOf() }

func (w *WeightedAverage) DayCount() string { return w.c1.DayCount() }

func (w *WeightedAverage) Discount(d time.Time) (float64, error) {
	d1, err := w.c1.Discount(d)
	if err != nil {
		return 0, err
	}
	d2, err := w.c2.Discount(d)
	if err != nil {
		return 0, err
	}
	return math.Exp(w.w1*math.Log(d1) + w.w2*math.Log(d2)), nil
}

// EnableExtrapolation forwards to both dependencies.
func (w *WeightedAverage) EnableExtrapolation() {
	w.c1.EnableExtrapolation()
	w.c2.EnableExtrapolation()
}
