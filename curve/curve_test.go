package curve_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/interp"
	"github.com/meenmo/termstruct/utils"
)

var asOf = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func datesFrom(years ...int) []time.Time {
	out := make([]time.Time, len(years))
	for i, y := range years {
		out[i] = asOf.AddDate(y, 0, 0)
	}
	return out
}

func TestDiscountAtReferenceDateIsOne(t *testing.T) {
	t.Parallel()

	dates := datesFrom(0, 1, 2, 5)
	for _, variable := range []curve.Variable{curve.Zero, curve.Discount, curve.Forward} {
		values := []float64{0.02, 0.021, 0.022, 0.025}
		if variable == curve.Discount {
			values = []float64{1.0, 0.98, 0.955, 0.88}
		}
		c, err := curve.New("test", asOf, curve.PillarsFrom(asOf, dates, values, utils.Act365F),
			interp.Linear, variable, utils.Act365F)
		if err != nil {
			t.Fatalf("%s: %v", variable, err)
		}
		df, err := c.Discount(asOf)
		if err != nil {
			t.Fatalf("%s: %v", variable, err)
		}
		if df != 1.0 {
			t.Errorf("%s: discount(asOf) = %.17f, want exactly 1", variable, df)
		}
	}
}

func TestZeroVariableDiscount(t *testing.T) {
	t.Parallel()

	dates := datesFrom(0, 1, 2, 5)
	values := []float64{0.02, 0.02, 0.025, 0.03}
	c, err := curve.New("zeros", asOf, curve.PillarsFrom(asOf, dates, values, utils.Act365F),
		interp.Linear, curve.Zero, utils.Act365F)
	if err != nil {
		t.Fatal(err)
	}

	d := dates[2]
	tau := utils.YearFraction(asOf, d, utils.Act365F)
	df, err := c.Discount(d)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Exp(-0.025 * tau)
	if math.Abs(df-want) > 1e-14 {
		t.Errorf("discount: got %.15f, want %.15f", df, want)
	}
}

func TestForwardVariableFlatCurve(t *testing.T) {
	t.Parallel()

	// Flat instantaneous forward f: the discount must be exp(-f*t).
	const f = 0.03
	dates := datesFrom(0, 1, 3, 7)
	values := []float64{f, f, f, f}
	c, err := curve.New("fwd", asOf, curve.PillarsFrom(asOf, dates, values, utils.Act365F),
		interp.Linear, curve.Forward, utils.Act365F)
	if err != nil {
		t.Fatal(err)
	}

	for _, d := range dates[1:] {
		tau := utils.YearFraction(asOf, d, utils.Act365F)
		df, err := c.Discount(d)
		if err != nil {
			t.Fatal(err)
		}
		want := math.Exp(-f * tau)
		if math.Abs(df-want) > 1e-12 {
			t.Errorf("discount at %v: got %.15f, want %.15f", d, df, want)
		}
	}
}

func TestForwardVariableLinearForward(t *testing.T) {
	t.Parallel()

	// f(t) = 0.02 + 0.002*t, integral over [0,T] is 0.02*T + 0.001*T^2.
	// Composite Simpson is exact for polynomials of this degree.
	dates := datesFrom(0, 1, 2, 5, 10)
	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = 0.02 + 0.002*utils.YearFraction(asOf, d, utils.Act365F)
	}
	c, err := curve.New("fwd-lin", asOf, curve.PillarsFrom(asOf, dates, values, utils.Act365F),
		interp.Linear, curve.Forward, utils.Act365F)
	if err != nil {
		t.Fatal(err)
	}

	T := utils.YearFraction(asOf, dates[len(dates)-1], utils.Act365F)
	df, err := c.DiscountTime(T)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Exp(-(0.02*T + 0.001*T*T))
	if math.Abs(df-want) > 1e-12 {
		t.Errorf("discount: got %.15f, want %.15f", df, want)
	}
}

func TestExtrapolationGate(t *testing.T) {
	t.Parallel()

	dates := datesFrom(0, 1, 2)
	c, err := curve.New("gate", asOf, curve.PillarsFrom(asOf, dates, []float64{1, 0.98, 0.955}, utils.Act365F),
		interp.LogLinear, curve.Discount, utils.Act365F)
	if err != nil {
		t.Fatal(err)
	}

	beyond := asOf.AddDate(4, 0, 0)
	if _, err := c.Discount(beyond); err == nil {
		t.Fatal("expected range error beyond last pillar")
	}
	var re *interp.RangeError
	if _, err := c.Discount(beyond); !errors.As(err, &re) {
		t.Fatalf("expected RangeError, got %v", err)
	}

	c.EnableExtrapolation()
	if !c.Extrapolates() {
		t.Fatal("extrapolation flag not set")
	}
	df, err := c.Discount(beyond)
	if err != nil {
		t.Fatalf("after enabling extrapolation: %v", err)
	}
	if df <= 0 || df >= 1 {
		t.Errorf("extrapolated discount %g outside (0,1)", df)
	}
}

func TestRebuildIsBitIdentical(t *testing.T) {
	t.Parallel()

	dates := datesFrom(0, 1, 2, 5, 10)
	values := []float64{1, 0.9802, 0.9608, 0.8869, 0.7788}
	build := func() *curve.Curve {
		c, err := curve.New("det", asOf, curve.PillarsFrom(asOf, dates, values, utils.Act365F),
			interp.NaturalCubic, curve.Discount, utils.Act365F)
		if err != nil {
			t.Fatal(err)
		}
		return c
	}

	a, b := build(), build()
	for x := 0.1; x < 10; x += 0.37 {
		va, err := a.DiscountTime(x)
		if err != nil {
			t.Fatal(err)
		}
		vb, err := b.DiscountTime(x)
		if err != nil {
			t.Fatal(err)
		}
		if va != vb {
			t.Fatalf("rebuild differs at t=%g: %x vs %x", x, math.Float64bits(va), math.Float64bits(vb))
		}
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	dates := datesFrom(0, 1)

	// Discount pillar at time 0 must be exactly 1.
	_, err := curve.New("bad", asOf, curve.PillarsFrom(asOf, dates, []float64{0.99, 0.98}, utils.Act365F),
		interp.Linear, curve.Discount, utils.Act365F)
	var ce *curve.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}

	// First pillar must sit at the reference date.
	late := []time.Time{asOf.AddDate(0, 6, 0), asOf.AddDate(1, 0, 0)}
	_, err = curve.New("late", asOf, curve.PillarsFrom(asOf, late, []float64{1, 0.98}, utils.Act365F),
		interp.Linear, curve.Discount, utils.Act365F)
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestNewUnknownMethodIsConfigError(t *testing.T) {
	t.Parallel()

	dates := datesFrom(0, 1)
	_, err := curve.New("bogus", asOf, curve.PillarsFrom(asOf, dates, []float64{1, 0.98}, utils.Act365F),
		interp.Method("Spline9000"), curve.Discount, utils.Act365F)
	var ce *curve.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if ce.CurveID != "bogus" {
		t.Errorf("error curve id: got %q", ce.CurveID)
	}

	// Numeric-domain problems keep their typed error.
	_, err = curve.New("neg", asOf, curve.PillarsFrom(asOf, dates, []float64{1, -0.5}, utils.Act365F),
		interp.LogLinear, curve.Zero, utils.Act365F)
	var de *interp.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %v", err)
	}
}

func TestNewFromDiscountsInsertsAnchor(t *testing.T) {
	t.Parallel()

	dates := []time.Time{asOf.AddDate(1, 0, 0), asOf.AddDate(2, 0, 0)}
	c, err := curve.NewFromDiscounts("direct", asOf, dates, []float64{0.98, 0.955}, interp.LogLinear, utils.Act365F)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(c.Pillars()); got != 3 {
		t.Fatalf("pillar count: got %d, want 3", got)
	}
	df, err := c.Discount(asOf)
	if err != nil {
		t.Fatal(err)
	}
	if df != 1.0 {
		t.Errorf("anchor discount: got %g, want 1", df)
	}
}

func TestRateConversionRoundTrip(t *testing.T) {
	t.Parallel()

	for _, comp := range []curve.Compounding{
		curve.Continuous, curve.Simple, curve.CompoundedAnnually,
		curve.CompoundedSemiAnnually, curve.CompoundedQuarterly,
	} {
		const df, tau = 0.92, 2.5
		r, err := curve.RateFromDiscount(df, tau, comp)
		if err != nil {
			t.Fatalf("comp %v: %v", comp, err)
		}
		back := curve.DiscountFromRate(r, tau, comp)
		if math.Abs(back-df) > 1e-14 {
			t.Errorf("comp %v: round trip %.16f != %.16f", comp, back, df)
		}
	}
}
