// Package ddm implements three dividend discount model variants for
// estimating a stock's fair value: constant dividend (zero-growth
// perpetuity), constant growth (Gordon), and two-stage growth.
//
// Every function is pure and total: pathological inputs (non-positive
// required return, growth at or above the required return, negative growth
// where a model disallows it) yield a NaN price and an empty cash-flow
// series instead of an error. Callers distinguish valid from invalid
// results solely via ModelResult.Valid.
//
// The guards check rates only. A NaN or infinite dividend that passes
// them propagates IEEE-754 style through price and cash flows, so the
// series stays populated while ModelResult.Valid still reports false.
// Callers feeding user input are expected to range-check it first.
package ddm

import (
	"math"

	"github.com/finmodel/ddmcalc/pkg/models"
)

// HorizonYears is the fixed window over which cash flows are projected for
// display, independent of any model's growth-phase length.
const HorizonYears = 10

// invalid is the uniform failure result: NaN price, empty (non-nil) flows.
func invalid() models.ModelResult {
	return models.ModelResult{
		Price:     math.NaN(),
		CashFlows: []models.CashFlowPoint{},
	}
}

// flows allocates a series with year 0 set to the negated price. The
// negative year-0 row doubles as the initial-investment entry, so a
// discounted sum of the whole series is ~0 for a fairly priced stock.
func flows(price float64) []models.CashFlowPoint {
	series := make([]models.CashFlowPoint, 0, HorizonYears+1)
	return append(series, models.CashFlowPoint{Year: 0, Dividend: -price})
}

// ════════════════════════════════════════════════════════════════════
// Constant Dividend Model
// ════════════════════════════════════════════════════════════════════

// ConstantDividend values a stock as a zero-growth perpetuity:
// price = d0 / required. Requires required > 0.
func ConstantDividend(d0, required float64) models.ModelResult {
	if !(required > 0) {
		return invalid()
	}

	price := d0 / required
	series := flows(price)
	for year := 1; year <= HorizonYears; year++ {
		series = append(series, models.CashFlowPoint{Year: year, Dividend: d0})
	}

	return models.ModelResult{Price: price, CashFlows: series}
}

// ════════════════════════════════════════════════════════════════════
// Constant Growth (Gordon) Model
// ════════════════════════════════════════════════════════════════════

// ConstantGrowth values a stock under a single perpetual growth rate:
// price = d0*(1+g) / (required - g). Requires required > 0 and g strictly
// below required; growth equal to the required return implies an unbounded
// price. Negative g is permitted.
func ConstantGrowth(d0, required, g float64) models.ModelResult {
	if !(required > 0) || !(g < required) {
		return invalid()
	}

	d1 := d0 * (1 + g)
	price := d1 / (required - g)

	// Projection compounds from d0, so year 1 equals d1 by construction.
	series := flows(price)
	for year := 1; year <= HorizonYears; year++ {
		series = append(series, models.CashFlowPoint{
			Year:     year,
			Dividend: d0 * math.Pow(1+g, float64(year)),
		})
	}

	return models.ModelResult{Price: price, CashFlows: series}
}

// ════════════════════════════════════════════════════════════════════
// Two-Stage (Changing Growth) Model
// ════════════════════════════════════════════════════════════════════

// TwoStage values a stock with an explicit high-growth phase of shortYears
// years at gShort, followed by perpetual growth at gLong. Requires
// required > 0, gLong strictly below required, and both growth rates
// non-negative — unlike ConstantGrowth, this model rejects negative growth.
func TwoStage(d0, required, gShort, gLong float64, shortYears int) models.ModelResult {
	if !(required > 0) || !(gLong < required) || !(gShort >= 0) || !(gLong >= 0) {
		return invalid()
	}

	// Phase 1: discounted sum of the explicit high-growth dividends.
	var pvPhase1 float64
	for t := 1; t <= shortYears; t++ {
		dividend := d0 * math.Pow(1+gShort, float64(t))
		pvPhase1 += dividend / math.Pow(1+required, float64(t))
	}

	// Phase 2: Gordon terminal value as of the end of the high-growth
	// phase, discounted back to present.
	lastShort := d0 * math.Pow(1+gShort, float64(shortYears))
	terminalDividend := lastShort * (1 + gLong)
	terminalValue := terminalDividend / (required - gLong)
	pvTerminal := terminalValue / math.Pow(1+required, float64(shortYears))

	price := pvPhase1 + pvTerminal

	// Display projection always runs to the full horizon; the growth rate
	// switches at the phase boundary but compounding continues from the
	// phase-1 endpoint.
	series := flows(price)
	for year := 1; year <= HorizonYears; year++ {
		var dividend float64
		if year <= shortYears {
			dividend = d0 * math.Pow(1+gShort, float64(year))
		} else {
			dividend = lastShort * math.Pow(1+gLong, float64(year-shortYears))
		}
		series = append(series, models.CashFlowPoint{Year: year, Dividend: dividend})
	}

	return models.ModelResult{Price: price, CashFlows: series}
}
