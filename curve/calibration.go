package curve

import "time"

// Status is the terminal state of a calibration. A build moves from
// Solving to exactly one terminal state and never transitions again.
type Status int

const (
	Solving Status = iota
	Converged
	Degraded
	Failed
)

func (s Status) String() string {
	switch s {
	case Solving:
		return "Solving"
	case Converged:
		return "Converged"
	case Degraded:
		return "Degraded"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// InstrumentFit records one calibrating instrument's model-vs-market fit
// on the finished curve. For bond fits the yield columns are populated too.
type InstrumentFit struct {
	Name        string
	Market      float64
	Model       float64
	Error       float64
	MarketYield float64
	ModelYield  float64
}

// CalibrationInfo is the diagnostic record returned next to every built
// curve. Non-fatal conditions (skipped bonds, degraded calibrations,
// near-zero fit norms) are recorded here, never thrown.
type CalibrationInfo struct {
	CurveID    string
	AsOf       time.Time
	Status     Status
	Cost       float64 // worst instrument error, or sqrt of the fit's squared-residual sum
	Tolerance  float64
	Iterations int
	Attempts   int
	Solution   []float64 // fitted parameter vector, nil for bootstraps
	Fits       []InstrumentFit
	Skipped    []string
	Warnings   []string
}

// WorstFit returns the instrument with the largest absolute error.
func (ci *CalibrationInfo) WorstFit() (InstrumentFit, bool) {
	if len(ci.Fits) == 0 {
		return InstrumentFit{}, false
	}
	worst := ci.Fits[0]
	for _, f := range ci.Fits[1:] {
		if abs(f.Error) > abs(worst.Error) {
			worst = f
		}
	}
	return worst, true
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
