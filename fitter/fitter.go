package fitter

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/meenmo/termstruct/config"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/utils"
)

// lmMaxIter bounds the inner least squares iterations of one trial.
const lmMaxIter = 200

// Spec describes one parametric fit.
type Spec struct {
	CurveID     string
	AsOf        time.Time
	DayCount    string
	Family      Family
	Bonds       []Bond
	Extrapolate bool

	// Config supplies tolerances and the trial budget. Unset fields take
	// their defaults field by field.
	Config config.Bootstrap
}

// Fit calibrates the parametric family to the bond basket by multi-start
// least squares on dirty prices. The first trial starts from a yield-based
// guess, the remaining trials from deterministic low-discrepancy draws; the
// best trial wins. Unusable bonds are skipped and recorded, never fatal.
// When the best cost misses tolerance the fit fails, unless DontThrow is
// set, in which case the best achievable curve is returned as Degraded.
func Fit(spec Spec) (*Fitted, *curve.CalibrationInfo, error) {
	cfg := spec.Config.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, &curve.ConfigError{CurveID: spec.CurveID, Reason: err.Error()}
	}
	if spec.Family == nil {
		return nil, nil, &curve.ConfigError{CurveID: spec.CurveID, Reason: "no parametric family"}
	}

	info := &curve.CalibrationInfo{
		CurveID:   spec.CurveID,
		AsOf:      spec.AsOf,
		Status:    curve.Solving,
		Tolerance: cfg.Tolerance(),
	}

	bonds := screenBonds(spec, info)
	if len(bonds) == 0 {
		return nil, nil, &curve.ConfigError{CurveID: spec.CurveID, Reason: "no usable bonds in fitting basket"}
	}

	residuals := func(p []float64) ([]float64, error) {
		r := make([]float64, len(bonds))
		for i, b := range bonds {
			model, err := modelDirtyPrice(spec.Family, p, spec.AsOf, spec.DayCount, b)
			if err != nil {
				return nil, err
			}
			r[i] = model - b.DirtyPrice()
		}
		return r, nil
	}

	var (
		bestParams []float64
		bestCost   = math.Inf(1)
		bestIters  int
	)
	seq := newHalton(spec.Family.NumParams())
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		info.Attempts = attempt + 1

		var guess []float64
		if attempt == 0 {
			guess = smartGuess(spec, bonds)
		} else {
			guess = spec.Family.SampleGuess(seq.Next())
		}

		params, cost, iters, err := levenbergMarquardt(residuals, guess, lmMaxIter, cfg.Accuracy)
		if err != nil {
			// A trial whose starting point is numerically unusable just
			// burns an attempt.
			continue
		}
		if cost < bestCost {
			bestParams, bestCost, bestIters = params, cost, iters
		}
		if bestCost < cfg.Accuracy {
			break
		}
	}

	if bestParams == nil {
		info.Status = curve.Failed
		return nil, info, &curve.CalibrationError{
			CurveID: spec.CurveID,
			AsOf:    spec.AsOf,
			Err:     fmt.Errorf("all %d fitting trials failed to evaluate", cfg.MaxAttempts),
		}
	}

	info.Solution = append([]float64(nil), bestParams...)
	info.Cost = bestCost
	info.Iterations = bestIters

	if n := norm(bestParams); n < 1e-4 {
		info.Warnings = append(info.Warnings,
			fmt.Sprintf("fitted parameter norm %.3e is close to zero, check the bond basket", n))
	}

	if bestCost > cfg.Tolerance() {
		if !cfg.DontThrow {
			info.Status = curve.Failed
			return nil, info, &curve.CalibrationError{
				CurveID:    spec.CurveID,
				AsOf:       spec.AsOf,
				WorstError: bestCost,
				Err:        fmt.Errorf("fit cost %.3e above tolerance %.3e after %d trials", bestCost, cfg.Tolerance(), info.Attempts),
			}
		}
		info.Status = curve.Degraded
		info.Warnings = append(info.Warnings,
			fmt.Sprintf("fit cost %.3e above tolerance %.3e, keeping best trial", bestCost, cfg.Tolerance()))
		slog.Warn("parametric fit degraded",
			"curve", spec.CurveID,
			"family", spec.Family.Name(),
			"cost", bestCost,
			"tolerance", cfg.Tolerance())
	} else {
		info.Status = curve.Converged
	}

	fitted := &Fitted{
		id:       spec.CurveID,
		asOf:     spec.AsOf,
		dayCount: spec.DayCount,
		family:   spec.Family,
		params:   append([]float64(nil), bestParams...),
		maxT:     lastCashflowTime(spec, bonds),
	}
	if spec.Extrapolate {
		fitted.EnableExtrapolation()
	}

	recordFits(spec, info, bonds, bestParams)
	return fitted, info, nil
}

// screenBonds drops bonds the fit cannot use: matured, settling before the
// as-of date, priced at or below zero, or with no cashflow after
// settlement. Bonds settling on the as-of date are spot-settling and are
// kept. Each skip is logged and recorded in the diagnostics.
func screenBonds(spec Spec, info *curve.CalibrationInfo) []Bond {
	kept := make([]Bond, 0, len(spec.Bonds))
	for _, b := range spec.Bonds {
		reason := ""
		switch {
		case !b.Maturity.After(spec.AsOf):
			reason = "matured"
		case b.Settlement.Before(spec.AsOf):
			reason = fmt.Sprintf("settlement %s before the as-of date", b.Settlement.Format("2006-01-02"))
		case b.DirtyPrice() <= 0:
			reason = fmt.Sprintf("non-positive dirty price %g", b.DirtyPrice())
		case !hasFutureCashflow(b):
			reason = "no cashflow after settlement"
		}
		if reason != "" {
			info.Skipped = append(info.Skipped, b.SecurityID)
			slog.Warn("skipping bond in fitting basket",
				"curve", spec.CurveID, "security", b.SecurityID, "reason", reason)
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

func hasFutureCashflow(b Bond) bool {
	for _, cf := range b.Cashflows {
		if cf.Date.After(b.Settlement) {
			return true
		}
	}
	return false
}

// smartGuess seeds the first trial from the yields of the shortest and
// longest bonds in the basket, falling back to flat defaults when the
// yield solves fail.
func smartGuess(spec Spec, bonds []Bond) []float64 {
	shortest, longest := bonds[0], bonds[0]
	for _, b := range bonds[1:] {
		if b.Maturity.Before(shortest.Maturity) {
			shortest = b
		}
		if b.Maturity.After(longest.Maturity) {
			longest = b
		}
	}

	shortYield, longYield := 0.02, 0.03
	if y, err := shortest.Yield(shortest.DirtyPrice(), spec.DayCount); err == nil {
		shortYield = y
	}
	if y, err := longest.Yield(longest.DirtyPrice(), spec.DayCount); err == nil {
		longYield = y
	}
	return spec.Family.DefaultGuess(shortYield, longYield)
}

func lastCashflowTime(spec Spec, bonds []Bond) float64 {
	maxT := 0.0
	for _, b := range bonds {
		for _, cf := range b.Cashflows {
			if t := utils.YearFraction(spec.AsOf, cf.Date, spec.DayCount); t > maxT {
				maxT = t
			}
		}
	}
	return maxT
}

// recordFits fills the per-bond diagnostics: model vs market dirty prices
// and the yields implied by each.
func recordFits(spec Spec, info *curve.CalibrationInfo, bonds []Bond, params []float64) {
	for _, b := range bonds {
		market := b.DirtyPrice()
		fit := curve.InstrumentFit{Name: b.SecurityID, Market: market}
		if model, err := modelDirtyPrice(spec.Family, params, spec.AsOf, spec.DayCount, b); err == nil {
			fit.Model = model
			fit.Error = model - market
			if y, err := b.Yield(model, spec.DayCount); err == nil {
				fit.ModelYield = y
			}
		}
		if y, err := b.Yield(market, spec.DayCount); err == nil {
			fit.MarketYield = y
		}
		info.Fits = append(info.Fits, fit)
	}
}
