package compose_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/compose"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/interp"
	"github.com/meenmo/termstruct/registry"
	"github.com/meenmo/termstruct/utils"
)

var asOf = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

// flatCurve builds a discount curve with a flat continuously compounded
// zero rate out to 30y.
func flatCurve(t *testing.T, id string, rate float64) *curve.Curve {
	t.Helper()
	dates := []time.Time{asOf, asOf.AddDate(1, 0, 0), asOf.AddDate(5, 0, 0), asOf.AddDate(30, 0, 0)}
	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = math.Exp(-rate * utils.YearFraction(asOf, d, utils.Act365F))
	}
	c, err := curve.New(id, asOf, curve.PillarsFrom(asOf, dates, values, utils.Act365F),
		interp.LogLinear, curve.Discount, utils.Act365F)
	require.NoError(t, err)
	return c
}

func TestWeightedAverageIdentity(t *testing.T) {
	t.Parallel()

	c1 := flatCurve(t, "A", 0.02)
	c2 := flatCurve(t, "B", 0.05)
	blend, err := compose.NewWeightedAverage(c1, c2, 1.0, 0.0)
	require.NoError(t, err)

	d := asOf.AddDate(3, 0, 0)
	want, err := c1.Discount(d)
	require.NoError(t, err)
	got, err := blend.Discount(d)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-15, "w1=1, w2=0 must reproduce curve 1")
}

func TestWeightedAverageBlendsZeroRates(t *testing.T) {
	t.Parallel()

	c1 := flatCurve(t, "A", 0.02)
	c2 := flatCurve(t, "B", 0.04)
	blend, err := compose.NewWeightedAverage(c1, c2, 0.5, 0.5)
	require.NoError(t, err)

	// Equal-weight log blend of flat curves is the flat average rate.
	d := asOf.AddDate(4, 0, 0)
	got, err := curve.ZeroRate(blend, d, utils.Act365F, curve.Continuous)
	require.NoError(t, err)
	assert.InDelta(t, 0.03, got, 1e-12)
}

func TestDiscountRatio(t *testing.T) {
	t.Parallel()

	base := flatCurve(t, "BASE", 0.03)
	num := flatCurve(t, "NUM", 0.025)
	den := flatCurve(t, "DEN", 0.02)
	ratio, err := compose.NewDiscountRatio(base, num, den)
	require.NoError(t, err)

	d := asOf.AddDate(2, 0, 0)
	db, _ := base.Discount(d)
	dn, _ := num.Discount(d)
	dd, _ := den.Discount(d)
	got, err := ratio.Discount(d)
	require.NoError(t, err)
	assert.InDelta(t, db*dn/dd, got, 1e-15)
}

func TestZeroSpreadOverlay(t *testing.T) {
	t.Parallel()

	ref := flatCurve(t, "REF", 0.02)
	quotes := []compose.SpreadQuote{
		{Date: asOf.AddDate(1, 0, 0), Spread: 0.005},
		{Date: asOf.AddDate(10, 0, 0), Spread: 0.010},
	}
	zs, err := compose.NewZeroSpread(ref, quotes, interp.Linear, utils.Act365F, curve.Continuous)
	require.NoError(t, err)

	// At a quote node the overlaid zero is the reference zero plus the quote.
	d := asOf.AddDate(1, 0, 0)
	z, err := curve.ZeroRate(zs, d, utils.Act365F, curve.Continuous)
	require.NoError(t, err)
	assert.InDelta(t, 0.025, z, 1e-12)

	// Beyond the last quote the spread is held flat.
	far := asOf.AddDate(20, 0, 0)
	z, err = curve.ZeroRate(zs, far, utils.Act365F, curve.Continuous)
	require.NoError(t, err)
	assert.InDelta(t, 0.030, z, 1e-12)
}

func TestZeroSpreadSingleQuoteIsConstant(t *testing.T) {
	t.Parallel()

	ref := flatCurve(t, "REF", 0.02)
	zs, err := compose.NewZeroSpread(ref,
		[]compose.SpreadQuote{{Date: asOf.AddDate(5, 0, 0), Spread: 0.004}},
		interp.Linear, utils.Act365F, curve.Continuous)
	require.NoError(t, err)

	for _, years := range []int{1, 5, 15} {
		z, err := curve.ZeroRate(zs, asOf.AddDate(years, 0, 0), utils.Act365F, curve.Continuous)
		require.NoError(t, err)
		assert.InDelta(t, 0.024, z, 1e-12)
	}
}

func TestZeroSpreadRejectsBadQuotes(t *testing.T) {
	t.Parallel()

	ref := flatCurve(t, "REF", 0.02)
	var ce *curve.ConfigError

	_, err := compose.NewZeroSpread(ref, nil, interp.Linear, utils.Act365F, curve.Continuous)
	assert.ErrorAs(t, err, &ce)

	_, err = compose.NewZeroSpread(ref,
		[]compose.SpreadQuote{{Date: asOf, Spread: 0.01}},
		interp.Linear, utils.Act365F, curve.Continuous)
	assert.ErrorAs(t, err, &ce)
}

func TestYieldPlusDefaultNeverExceedsBase(t *testing.T) {
	t.Parallel()

	base := flatCurve(t, "GOVT", 0.02)
	hz, err := compose.NewFlatHazard(asOf, 0.015, utils.Act365F)
	require.NoError(t, err)

	blended, err := compose.NewYieldPlusDefault(base,
		[]compose.SurvivalCurve{hz}, []float64{0.4}, []float64{1.0})
	require.NoError(t, err)

	for _, years := range []int{1, 5, 20} {
		d := asOf.AddDate(years, 0, 0)
		db, err := base.Discount(d)
		require.NoError(t, err)
		dy, err := blended.Discount(d)
		require.NoError(t, err)
		assert.LessOrEqual(t, dy, db, "blended discount above base at %dy", years)
		assert.Greater(t, dy, 0.0)
	}

	// Zero weight switches the default loading off.
	off, err := compose.NewYieldPlusDefault(base,
		[]compose.SurvivalCurve{hz}, []float64{0.4}, []float64{0.0})
	require.NoError(t, err)
	d := asOf.AddDate(5, 0, 0)
	db, _ := base.Discount(d)
	dy, err := off.Discount(d)
	require.NoError(t, err)
	assert.InDelta(t, db, dy, 1e-15)
}

func TestYieldPlusDefaultValidation(t *testing.T) {
	t.Parallel()

	base := flatCurve(t, "GOVT", 0.02)
	hz, err := compose.NewFlatHazard(asOf, 0.01, utils.Act365F)
	require.NoError(t, err)

	var ce *curve.ConfigError
	_, err = compose.NewYieldPlusDefault(base, []compose.SurvivalCurve{hz}, []float64{1.4}, []float64{1})
	assert.ErrorAs(t, err, &ce, "recovery above 1")

	_, err = compose.NewYieldPlusDefault(base, []compose.SurvivalCurve{hz}, []float64{0.4}, nil)
	assert.ErrorAs(t, err, &ce, "length mismatch")
}

func TestIborFallbackCutover(t *testing.T) {
	t.Parallel()

	rfr := flatCurve(t, "ESTR", 0.02)
	cutover := asOf.AddDate(0, 6, 0)
	hist := asOf.AddDate(0, 1, 0)
	fixings := compose.MapFixings{hist: 0.0215}

	fb, err := compose.NewIborFallback("EURIBOR6M", rfr, fixings, 0.001, cutover,
		6, utils.Act360, calendar.WeekendsOnly)
	require.NoError(t, err)

	// Before cutover: the stored historical fixing, verbatim.
	r, err := fb.Fixing(hist)
	require.NoError(t, err)
	assert.Equal(t, 0.0215, r)

	// Missing historical fixing is an error.
	_, err = fb.Fixing(asOf.AddDate(0, 2, 0))
	assert.Error(t, err)

	// After cutover: risk-free forward plus the fallback spread.
	post := asOf.AddDate(1, 0, 0)
	end := calendar.Adjust(calendar.WeekendsOnly, utils.AddMonth(post, 6))
	fwd, err := curve.ForwardRate(rfr, post, end, utils.Act360, curve.Simple)
	require.NoError(t, err)
	r, err = fb.Fixing(post)
	require.NoError(t, err)
	assert.InDelta(t, fwd+0.001, r, 1e-15)
}

func TestBuildersResolveFromRegistry(t *testing.T) {
	t.Parallel()

	reg := registry.NewMap()
	k1 := registry.Key{Currency: "EUR", CurveID: "OIS"}
	k2 := registry.Key{Currency: "EUR", CurveID: "GOVT"}
	reg.Register(k1, flatCurve(t, "OIS", 0.02))
	reg.Register(k2, flatCurve(t, "GOVT", 0.025))

	blend, err := compose.BuildWeightedAverage(reg, "EUR-BLEND", k1, k2, 0.5, 0.5)
	require.NoError(t, err)
	require.NotNil(t, blend)

	// A missing dependency surfaces as a configuration error naming the
	// derived curve.
	missing := registry.Key{Currency: "EUR", CurveID: "NOPE"}
	_, err = compose.BuildWeightedAverage(reg, "EUR-BLEND", k1, missing, 0.5, 0.5)
	var ce *curve.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "EUR-BLEND", ce.CurveID)
	assert.Contains(t, ce.Reason, "NOPE")
}

func TestEnableExtrapolationForwards(t *testing.T) {
	t.Parallel()

	c1 := flatCurve(t, "A", 0.02)
	c2 := flatCurve(t, "B", 0.03)
	blend, err := compose.NewWeightedAverage(c1, c2, 0.5, 0.5)
	require.NoError(t, err)

	blend.EnableExtrapolation()
	assert.True(t, c1.Extrapolates())
	assert.True(t, c2.Extrapolates())
}
