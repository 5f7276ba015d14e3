// Package validate implements the input range rules that sit between the
// user-facing form and the valuation engine. The engine itself never
// validates; every request must pass through Check before ComputeAll.
package validate

import (
	"fmt"
	"math"

	"github.com/finmodel/ddmcalc/pkg/models"
)

// Request carries the six calculator inputs in the domain the UI works in:
// rates as percentages (10 = 10%), not decimals.
type Request struct {
	Dividend       float64 `json:"dividend"`         // current per-period dividend
	RequiredPct    float64 `json:"required_pct"`     // required rate of return, %
	GrowthPct      float64 `json:"growth_pct"`       // constant growth rate, %
	ShortGrowthPct float64 `json:"short_growth_pct"` // high-growth phase rate, %
	LongGrowthPct  float64 `json:"long_growth_pct"`  // terminal growth rate, %
	ShortYears     int     `json:"short_years"`      // high-growth phase length, years
}

// Input converts the percent-domain request into the decimal-domain engine
// input.
func (r Request) Input() models.ValuationInput {
	return models.ValuationInput{
		D0:         r.Dividend,
		Required:   r.RequiredPct / 100,
		GConst:     r.GrowthPct / 100,
		GShort:     r.ShortGrowthPct / 100,
		GLong:      r.LongGrowthPct / 100,
		ShortYears: r.ShortYears,
	}
}

// FieldError ties a validation message to the input field it concerns, so
// the UI can attach it to the right control and announce it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Permitted input ranges, percent domain.
const (
	MinDividend    = 0.01
	MaxDividend    = 1000.0
	MinRequiredPct = 0.1
	MaxRequiredPct = 50.0
	MinGrowthPct   = -10.0
	MaxGrowthPct   = 30.0
	MinShortPct    = -10.0
	MaxShortPct    = 50.0
	MinShortYears  = 1
	MaxShortYears  = 10
)

// Check applies every range rule plus the two cross-field rules and
// returns one error per violated field. An empty slice means the request
// is safe to hand to the engine. NaN and infinities fail their field's
// range rule like any other out-of-range value.
func Check(r Request) []FieldError {
	var errs []FieldError

	if !inRange(r.Dividend, MinDividend, MaxDividend) {
		errs = append(errs, FieldError{
			Field:   "dividend",
			Message: fmt.Sprintf("dividend must be between %.2f and %.0f", MinDividend, MaxDividend),
		})
	}
	if !inRange(r.RequiredPct, MinRequiredPct, MaxRequiredPct) {
		errs = append(errs, FieldError{
			Field:   "required_pct",
			Message: fmt.Sprintf("required return must be between %.1f%% and %.0f%%", MinRequiredPct, MaxRequiredPct),
		})
	}
	if !inRange(r.GrowthPct, MinGrowthPct, MaxGrowthPct) {
		errs = append(errs, FieldError{
			Field:   "growth_pct",
			Message: fmt.Sprintf("growth rate must be between %.0f%% and %.0f%%", MinGrowthPct, MaxGrowthPct),
		})
	}
	if !inRange(r.ShortGrowthPct, MinShortPct, MaxShortPct) {
		errs = append(errs, FieldError{
			Field:   "short_growth_pct",
			Message: fmt.Sprintf("short-term growth rate must be between %.0f%% and %.0f%%", MinShortPct, MaxShortPct),
		})
	}
	if !inRange(r.LongGrowthPct, MinGrowthPct, MaxGrowthPct) {
		errs = append(errs, FieldError{
			Field:   "long_growth_pct",
			Message: fmt.Sprintf("long-term growth rate must be between %.0f%% and %.0f%%", MinGrowthPct, MaxGrowthPct),
		})
	}
	if r.ShortYears < MinShortYears || r.ShortYears > MaxShortYears {
		errs = append(errs, FieldError{
			Field:   "short_years",
			Message: fmt.Sprintf("growth phase must be between %d and %d years", MinShortYears, MaxShortYears),
		})
	}

	// Cross-field rules. Only meaningful when both sides are in range;
	// the engine enforces its own preconditions regardless.
	if inRange(r.RequiredPct, MinRequiredPct, MaxRequiredPct) {
		if inRange(r.GrowthPct, MinGrowthPct, MaxGrowthPct) && r.GrowthPct >= r.RequiredPct {
			errs = append(errs, FieldError{
				Field:   "growth_pct",
				Message: "growth rate must be below the required return",
			})
		}
		if inRange(r.LongGrowthPct, MinGrowthPct, MaxGrowthPct) && r.LongGrowthPct >= r.RequiredPct {
			errs = append(errs, FieldError{
				Field:   "long_growth_pct",
				Message: "long-term growth rate must be below the required return",
			})
		}
	}

	return errs
}

// inRange is false for NaN because both comparisons fail.
func inRange(v, lo, hi float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= lo && v <= hi
}
