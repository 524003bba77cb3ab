package curve

import (
	"errors"
	"fmt"
	"time"
)

// ErrNilCurve is returned when a required curve argument is nil.
var ErrNilCurve = errors.New("nil curve")

// ConfigError reports an unusable curve definition: duplicate pillar
// dates, a missing dependency curve, an unsupported method/variable
// combination or an empty instrument basket. It is never retried.
type ConfigError struct {
	CurveID string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.CurveID == "" {
		return "curve config: " + e.Reason
	}
	return fmt.Sprintf("curve config [%s]: %s", e.CurveID, e.Reason)
}

// CalibrationError reports a bootstrap or fit that exhausted its retry
// policy without reaching tolerance.
type CalibrationError struct {
	CurveID    string
	AsOf       time.Time
	Instrument string
	WorstError float64
	Err        error
}

func (e *CalibrationError) Error() string {
	msg := fmt.Sprintf("calibration failed for curve %s as of %s", e.CurveID, e.AsOf.Format("2006-01-02"))
	if e.Instrument != "" {
		msg += fmt.Sprintf(": worst instrument %s (error %.3e)", e.Instrument, e.WorstError)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CalibrationError) Unwrap() error { return e.Err }
