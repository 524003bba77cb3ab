// Package bootstrap calibrates curve pillar values to market instruments:
// a sequential pass solves each pillar against the curve built so far, and
// a global refinement pass re-solves the full pillar vector for
// interpolation schemes with non-local support.
package bootstrap

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/meenmo/termstruct/config"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/interp"
	"github.com/meenmo/termstruct/utils"
)

// Instrument is a calibrating instrument. The solver only reads it: it
// computes a model-implied quote on a trial curve and compares against the
// market quote at the instrument's pillar date.
type Instrument interface {
	PillarDate() time.Time
	MarketQuote() float64
	ImpliedQuote(trial *curve.Curve) (float64, error)
	Name() string
}

// Spec is the input to a bootstrap build.
type Spec struct {
	CurveID  string
	AsOf     time.Time
	DayCount string
	Method   interp.Method
	Variable curve.Variable

	Instruments []Instrument

	// Extrapolate enables extrapolation on the finished curve.
	Extrapolate bool

	// Detach re-samples the solved curve at its pillars and rebuilds it
	// from the snapshot values, severing any link to the inputs so later
	// quote or valuation-date shifts cannot move solved pillars.
	Detach bool

	Config config.Bootstrap
}

// Trial value search windows per interpolation variable. Log-based schemes
// additionally pin the lower bound above zero.
const (
	minDiscount = 1e-12
	maxDiscount = 4.0
	minRate     = -0.5
	maxRate     = 1.5
	minRateLog  = 1e-9
)

func (s *Spec) bounds() (lo, hi float64) {
	logBased := s.Method == interp.LogLinear || s.Method == interp.LogQuadratic
	if s.Variable == curve.Discount {
		return minDiscount, maxDiscount
	}
	if logBased {
		return minRateLog, maxRate
	}
	return minRate, maxRate
}

func (s *Spec) initialStep() float64 {
	if s.Variable == curve.Discount {
		return 0.1
	}
	return 0.02
}

// Build runs the bootstrap and returns the finished curve with its
// diagnostics. The build is one-shot and blocking: it ends Converged,
// Degraded (DontThrow set) or returns a fatal error.
func Build(spec Spec) (*curve.Curve, *curve.CalibrationInfo, error) {
	cfg := spec.Config.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, &curve.ConfigError{CurveID: spec.CurveID, Reason: err.Error()}
	}
	if len(spec.Instruments) == 0 {
		return nil, nil, &curve.ConfigError{CurveID: spec.CurveID, Reason: "empty instrument basket"}
	}
	if spec.DayCount == "" {
		spec.DayCount = utils.Act365F
	}

	instruments := make([]Instrument, len(spec.Instruments))
	copy(instruments, spec.Instruments)
	sort.SliceStable(instruments, func(i, j int) bool {
		return instruments[i].PillarDate().Before(instruments[j].PillarDate())
	})
	for i, inst := range instruments {
		if !inst.PillarDate().After(spec.AsOf) {
			return nil, nil, &curve.ConfigError{
				CurveID: spec.CurveID,
				Reason:  fmt.Sprintf("instrument %s matures on or before the as-of date", inst.Name()),
			}
		}
		if i > 0 && inst.PillarDate().Equal(instruments[i-1].PillarDate()) {
			return nil, nil, &curve.ConfigError{
				CurveID: spec.CurveID,
				Reason: fmt.Sprintf("duplicate pillar date %s (%s, %s)",
					inst.PillarDate().Format("2006-01-02"), instruments[i-1].Name(), inst.Name()),
			}
		}
	}

	b := &builder{spec: spec, cfg: cfg, instruments: instruments}
	return b.run()
}

type builder struct {
	spec        Spec
	cfg         config.Bootstrap
	instruments []Instrument

	dates  []time.Time // pillar dates, index 0 = asOf
	times  []float64
	values []float64

	iterations int
}

func (b *builder) run() (*curve.Curve, *curve.CalibrationInfo, error) {
	n := len(b.instruments)
	b.dates = make([]time.Time, n+1)
	b.times = make([]float64, n+1)
	b.values = make([]float64, n+1)
	b.dates[0] = b.spec.AsOf
	for i, inst := range b.instruments {
		b.dates[i+1] = inst.PillarDate()
		b.times[i+1] = utils.YearFraction(b.spec.AsOf, inst.PillarDate(), b.spec.DayCount)
	}

	// Seed values: flat unit discounts, or a mild positive rate.
	seed := 0.02
	if b.spec.Variable == curve.Discount {
		seed = 1.0
	}
	for i := range b.values {
		b.values[i] = seed
	}

	info := &curve.CalibrationInfo{
		CurveID:   b.spec.CurveID,
		AsOf:      b.spec.AsOf,
		Status:    curve.Solving,
		Tolerance: b.cfg.Tolerance(),
	}

	if err := b.sequentialPass(info); err != nil {
		info.Status = curve.Failed
		return nil, info, err
	}
	if err := b.globalPass(info); err != nil {
		info.Status = curve.Failed
		return nil, info, err
	}

	c, err := b.buildCurve(len(b.values))
	if err != nil {
		info.Status = curve.Failed
		return nil, info, err
	}
	b.recordFits(c, info)
	info.Iterations = b.iterations

	if b.spec.Detach {
		c, err = b.detach(c)
		if err != nil {
			info.Status = curve.Failed
			return nil, info, err
		}
	}
	if b.spec.Extrapolate {
		c.EnableExtrapolation()
	}
	if info.Status == curve.Degraded {
		worst, _ := info.WorstFit()
		slog.Warn("curve calibration degraded",
			"curve", b.spec.CurveID,
			"asof", b.spec.AsOf.Format("2006-01-02"),
			"worst_instrument", worst.Name,
			"worst_error", worst.Error)
	}
	return c, info, nil
}

// buildCurve assembles a trial curve over the first m pillars. For rate
// variables the time-0 pillar mirrors the first solved pillar so the left
// node stays consistent with discount(0)=1.
func (b *builder) buildCurve(m int) (*curve.Curve, error) {
	if b.spec.Variable == curve.Discount {
		b.values[0] = 1.0
	} else {
		b.values[0] = b.values[1]
	}
	pillars := make([]curve.Pillar, m)
	for i := 0; i < m; i++ {
		pillars[i] = curve.Pillar{Date: b.dates[i], Time: b.times[i], Value: b.values[i]}
	}
	return curve.New(b.spec.CurveID, b.spec.AsOf, pillars, b.spec.Method, b.spec.Variable, b.spec.DayCount)
}

// solvePillar re-solves pillar i (1-based over instruments) against a curve
// of the first m pillars, with the search step scaled by scale.
func (b *builder) solvePillar(i, m int, scale float64) error {
	inst := b.instruments[i-1]
	lo, hi := b.spec.bounds()
	f := func(v float64) (float64, error) {
		b.values[i] = v
		trial, err := b.buildCurve(m)
		if err != nil {
			return 0, err
		}
		implied, err := inst.ImpliedQuote(trial)
		if err != nil {
			return 0, err
		}
		return implied - inst.MarketQuote(), nil
	}

	guess := b.values[i]
	root, evals, err := solveRoot(f, guess, b.spec.initialStep()*scale, lo, hi, b.cfg.Accuracy)
	b.iterations += evals
	if err != nil {
		b.values[i] = guess
		return fmt.Errorf("pillar %s (%s): %w", b.dates[i].Format("2006-01-02"), inst.Name(), err)
	}
	b.values[i] = root
	return nil
}

// sequentialPass solves pillar i against the curve built from pillars
// 0..i, in maturity order.
func (b *builder) sequentialPass(info *curve.CalibrationInfo) error {
	for i := 1; i < len(b.values); i++ {
		if i > 1 {
			// Warm start from the previous pillar's solution.
			b.values[i] = b.values[i-1]
		}
		if err := b.solvePillar(i, i+1, 1.0); err != nil {
			if !b.cfg.DontThrow {
				return &curve.CalibrationError{
					CurveID:    b.spec.CurveID,
					AsOf:       b.spec.AsOf,
					Instrument: b.instruments[i-1].Name(),
					Err:        err,
				}
			}
			// Best effort: keep the warm-start value and let the global
			// pass (and the relaxed steps) improve on it.
			info.Warnings = append(info.Warnings,
				fmt.Sprintf("sequential solve failed for %s: %v", b.instruments[i-1].Name(), err))
		}
	}
	return nil
}

// worstError evaluates every instrument on the full curve and returns the
// largest absolute residual and its index.
func (b *builder) worstError() (float64, int, error) {
	full, err := b.buildCurve(len(b.values))
	if err != nil {
		return 0, 0, err
	}
	worst, worstIdx := 0.0, 0
	for i, inst := range b.instruments {
		implied, err := inst.ImpliedQuote(full)
		if err != nil {
			return 0, 0, err
		}
		if e := math.Abs(implied - inst.MarketQuote()); e > worst {
			worst, worstIdx = e, i
		}
	}
	return worst, worstIdx, nil
}

// globalPass jointly refines the full pillar vector. It is skipped for
// strictly local interpolation schemes, for which the sequential pass is
// already exact.
func (b *builder) globalPass(info *curve.CalibrationInfo) error {
	full, err := b.buildCurve(len(b.values))
	if err != nil {
		return err
	}
	tol := b.cfg.Tolerance()

	if full.Local() {
		worst, worstIdx, err := b.worstError()
		if err != nil {
			return err
		}
		info.Cost = worst
		if worst <= tol {
			info.Status = curve.Converged
			return nil
		}
		return b.relax(info, worst, worstIdx, 1.0)
	}

	n := len(b.values)
	scale := 1.0
	bestValues := make([]float64, n)
	bestWorst := math.MaxFloat64

	for attempt := 1; attempt <= b.cfg.MaxAttempts; attempt++ {
		info.Attempts = attempt
		for i := 1; i < n; i++ {
			if err := b.solvePillar(i, n, scale); err != nil {
				info.Warnings = append(info.Warnings,
					fmt.Sprintf("refinement attempt %d: %v", attempt, err))
				break
			}
		}
		worst, _, err := b.worstError()
		if err != nil {
			return err
		}
		if worst < bestWorst {
			bestWorst = worst
			copy(bestValues, b.values)
		}
		if worst <= tol {
			info.Cost = worst
			info.Status = curve.Converged
			return nil
		}
		// Grow the trial step scale so the next attempt searches wider.
		scale *= b.cfg.MaxFactor
	}

	copy(b.values, bestValues)
	worst, worstIdx, err := b.worstError()
	if err != nil {
		return err
	}
	info.Cost = worst
	return b.relax(info, worst, worstIdx, 1.0/b.cfg.MinFactor)
}

// relax is the DontThrow endgame: a bounded number of extra sweeps with a
// shrinking step scale, keeping the best vector seen. Without DontThrow it
// converts the shortfall into a fatal CalibrationError.
func (b *builder) relax(info *curve.CalibrationInfo, worst float64, worstIdx int, scale float64) error {
	tol := b.cfg.Tolerance()
	if worst <= tol {
		info.Status = curve.Converged
		info.Cost = worst
		return nil
	}
	if !b.cfg.DontThrow {
		return &curve.CalibrationError{
			CurveID:    b.spec.CurveID,
			AsOf:       b.spec.AsOf,
			Instrument: b.instruments[worstIdx].Name(),
			WorstError: worst,
			Err:        fmt.Errorf("worst error %.3e exceeds tolerance %.3e after %d attempts", worst, tol, b.cfg.MaxAttempts),
		}
	}

	n := len(b.values)
	bestValues := make([]float64, n)
	copy(bestValues, b.values)
	bestWorst := worst

	for step := 0; step < b.cfg.DontThrowSteps; step++ {
		for i := 1; i < n; i++ {
			if err := b.solvePillar(i, n, scale); err != nil {
				// Relaxed pass keeps going; unsolvable pillars stay put.
				continue
			}
		}
		w, _, err := b.worstError()
		if err != nil {
			return err
		}
		if w < bestWorst {
			bestWorst = w
			copy(bestValues, b.values)
		}
		if bestWorst <= tol {
			break
		}
		scale /= b.cfg.MinFactor
	}

	copy(b.values, bestValues)
	info.Cost = bestWorst
	if bestWorst <= tol {
		info.Status = curve.Converged
	} else {
		info.Status = curve.Degraded
	}
	return nil
}

func (b *builder) recordFits(c *curve.Curve, info *curve.CalibrationInfo) {
	worst := 0.0
	for _, inst := range b.instruments {
		implied, err := inst.ImpliedQuote(c)
		fit := curve.InstrumentFit{Name: inst.Name(), Market: inst.MarketQuote()}
		if err == nil {
			fit.Model = implied
			fit.Error = implied - inst.MarketQuote()
		}
		if math.Abs(fit.Error) > worst {
			worst = math.Abs(fit.Error)
		}
		info.Fits = append(info.Fits, fit)
	}
	info.Cost = worst
}

// detach rebuilds the curve from a snapshot of its own pillar values. The
// result is value-identical at build time but holds no references to the
// calibration inputs.
func (b *builder) detach(c *curve.Curve) (*curve.Curve, error) {
	pillars := c.Pillars()
	return curve.New(c.ID(), c.AsOf(), pillars, c.Method(), c.Variable(), c.DayCount())
}
