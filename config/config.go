// Package config holds solver parameters and curve definition files.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bootstrap is the tolerance bundle shared by the bootstrap solver and the
// parametric fitter.
type Bootstrap struct {
	// Accuracy is the per-instrument tolerance of the sequential pass and
	// the fitter's early-stop threshold.
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`

	// GlobalAccuracy is the tolerance of the global refinement pass and of
	// fit acceptance. Zero means "same as Accuracy".
	GlobalAccuracy float64 `json:"global_accuracy,omitempty" yaml:"global_accuracy,omitempty"`

	// MaxAttempts bounds global refinement retries and fitter trials.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// MinFactor shrinks and MaxFactor grows the trial step scale between
	// refinement attempts.
	MinFactor float64 `json:"min_factor" yaml:"min_factor"`
	MaxFactor float64 `json:"max_factor" yaml:"max_factor"`

	// DontThrow accepts the best achievable calibration instead of failing
	// once attempts are exhausted.
	DontThrow bool `json:"dont_throw" yaml:"dont_throw"`

	// DontThrowSteps is the number of extra relaxed attempts granted when
	// DontThrow is set.
	DontThrowSteps int `json:"dont_throw_steps" yaml:"dont_throw_steps"`
}

// DefaultBootstrap provides production-ready defaults.
func DefaultBootstrap() Bootstrap {
	return Bootstrap{
		Accuracy:       1e-12,
		MaxAttempts:    5,
		MinFactor:      2.0,
		MaxFactor:      2.0,
		DontThrowSteps: 10,
	}
}

// WithDefaults fills unset fields from DefaultBootstrap, leaving caller
// overrides untouched. GlobalAccuracy is not filled; zero already means
// "same as Accuracy". DontThrow is a plain bool the caller owns.
func (b Bootstrap) WithDefaults() Bootstrap {
	def := DefaultBootstrap()
	if b.Accuracy == 0 {
		b.Accuracy = def.Accuracy
	}
	if b.MaxAttempts == 0 {
		b.MaxAttempts = def.MaxAttempts
	}
	if b.MinFactor == 0 {
		b.MinFactor = def.MinFactor
	}
	if b.MaxFactor == 0 {
		b.MaxFactor = def.MaxFactor
	}
	if b.DontThrowSteps == 0 {
		b.DontThrowSteps = def.DontThrowSteps
	}
	return b
}

// Tolerance returns the acceptance tolerance: GlobalAccuracy when set,
// otherwise Accuracy.
func (b Bootstrap) Tolerance() float64 {
	if b.GlobalAccuracy > 0 {
		return b.GlobalAccuracy
	}
	return b.Accuracy
}

// Validate checks the bundle for nonsensical values.
func (b Bootstrap) Validate() error {
	if b.Accuracy <= 0 {
		return fmt.Errorf("accuracy must be positive")
	}
	if b.GlobalAccuracy < 0 {
		return fmt.Errorf("global_accuracy must not be negative")
	}
	if b.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if b.MinFactor < 1 || b.MaxFactor < 1 {
		return fmt.Errorf("min_factor and max_factor must be at least 1")
	}
	if b.DontThrow && b.DontThrowSteps < 1 {
		return fmt.Errorf("dont_throw_steps must be at least 1 when dont_throw is set")
	}
	return nil
}

// DepositDef is a simple-rate deposit quote in a curve definition file.
type DepositDef struct {
	ID       string  `json:"id" yaml:"id"`
	Months   int     `json:"months" yaml:"months"`
	Rate     float64 `json:"rate" yaml:"rate"` // decimal, e.g. 0.02
	DayCount string  `json:"day_count" yaml:"day_count"`
}

// SwapDef is a par swap quote in a curve definition file.
type SwapDef struct {
	ID            string  `json:"id" yaml:"id"`
	Years         int     `json:"years" yaml:"years"`
	Rate          float64 `json:"rate" yaml:"rate"`
	FixedMonths   int     `json:"fixed_months" yaml:"fixed_months"`
	FixedDayCount string  `json:"fixed_day_count" yaml:"fixed_day_count"`
}

// CurveDef defines one curve to build.
type CurveDef struct {
	ID          string       `json:"id" yaml:"id"`
	Currency    string       `json:"currency" yaml:"currency"`
	Method      string       `json:"method" yaml:"method"`
	Variable    string       `json:"variable" yaml:"variable"`
	DayCount    string       `json:"day_count" yaml:"day_count"`
	Calendar    string       `json:"calendar" yaml:"calendar"`
	Extrapolate bool         `json:"extrapolate" yaml:"extrapolate"`
	Bootstrap   *Bootstrap   `json:"bootstrap,omitempty" yaml:"bootstrap,omitempty"`
	Deposits    []DepositDef `json:"deposits,omitempty" yaml:"deposits,omitempty"`
	Swaps       []SwapDef    `json:"swaps,omitempty" yaml:"swaps,omitempty"`
}

// CurveFile is the top-level curve definition document.
type CurveFile struct {
	AsOf   string     `json:"asof" yaml:"asof"`
	Curves []CurveDef `json:"curves" yaml:"curves"`
}

// LoadCurveFile reads a YAML or JSON curve definition file.
func LoadCurveFile(path string) (*CurveFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curve file: %w", err)
	}

	cf := &CurveFile{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cf); err != nil {
		if jsonErr := json.Unmarshal(data, cf); jsonErr != nil {
			return nil, fmt.Errorf("parse curve file (tried YAML and JSON): %w", err)
		}
	}

	if err := cf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid curve file: %w", err)
	}
	return cf, nil
}

// Validate checks the document for missing required fields.
func (cf *CurveFile) Validate() error {
	if cf.AsOf == "" {
		return fmt.Errorf("asof is required")
	}
	if len(cf.Curves) == 0 {
		return fmt.Errorf("at least one curve is required")
	}
	for i, c := range cf.Curves {
		if c.ID == "" {
			return fmt.Errorf("curves[%d]: id is required", i)
		}
		if c.Currency == "" {
			return fmt.Errorf("curves[%d]: currency is required", i)
		}
		if len(c.Deposits) == 0 && len(c.Swaps) == 0 {
			return fmt.Errorf("curves[%d]: no calibrating instruments", i)
		}
		if c.Bootstrap != nil {
			if err := c.Bootstrap.Validate(); err != nil {
				return fmt.Errorf("curves[%d]: %w", i, err)
			}
		}
	}
	return nil
}
