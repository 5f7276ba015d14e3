// Package models defines the core data structures used throughout DDMCalc.
package models

import (
	"encoding/json"
	"math"
)

// ValuationInput holds the six inputs every dividend discount model draws
// from. Rates are decimals (0.10 = 10%), already converted from the
// percentage domain the UI works in.
type ValuationInput struct {
	D0         float64 `json:"d0"`          // current per-period dividend
	Required   float64 `json:"required"`    // required rate of return (discount rate)
	GConst     float64 `json:"g_const"`     // constant growth rate (Gordon model)
	GShort     float64 `json:"g_short"`     // high-growth phase rate (two-stage model)
	GLong      float64 `json:"g_long"`      // terminal growth rate (two-stage model)
	ShortYears int     `json:"short_years"` // length of the high-growth phase in years
}

// CashFlowPoint is one row of a projected cash-flow series. Year 0 carries
// the negated model price (the initial investment), years 1..10 carry
// projected dividends.
type CashFlowPoint struct {
	Year     int     `json:"year"`
	Dividend float64 `json:"dividend"`
}

// ModelResult is the output of a single valuation model. Price is NaN (or
// otherwise non-finite) exactly when the model's validity precondition
// fails, in which case CashFlows is empty.
type ModelResult struct {
	Price     float64         `json:"price"`
	CashFlows []CashFlowPoint `json:"cash_flows"`
}

// Valid reports whether the model produced a finite price.
func (m ModelResult) Valid() bool {
	return !math.IsNaN(m.Price) && !math.IsInf(m.Price, 0)
}

// MarshalJSON serializes non-finite prices as null with an explicit valid
// flag, since encoding/json rejects NaN and Inf outright.
func (m ModelResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Price     *float64        `json:"price"`
		Valid     bool            `json:"valid"`
		CashFlows []CashFlowPoint `json:"cash_flows"`
	}{
		Valid:     m.Valid(),
		CashFlows: m.CashFlows,
	}
	if out.Valid {
		p := m.Price
		out.Price = &p
	}
	if out.CashFlows == nil {
		out.CashFlows = []CashFlowPoint{}
	}
	return json.Marshal(out)
}

// ModelKey identifies one of the three valuation models.
type ModelKey string

const (
	ModelConstant ModelKey = "constant" // constant dividend (zero growth perpetuity)
	ModelGrowth   ModelKey = "growth"   // constant growth (Gordon)
	ModelChanging ModelKey = "changing" // two-stage growth
)

// ModelKeys lists the three model keys in canonical display order.
func ModelKeys() []ModelKey {
	return []ModelKey{ModelConstant, ModelGrowth, ModelChanging}
}

// ValuationResult maps every model key to its result. All three keys are
// always present; which one to display is the caller's concern.
type ValuationResult struct {
	Constant ModelResult `json:"constant"`
	Growth   ModelResult `json:"growth"`
	Changing ModelResult `json:"changing"`
}

// Model returns the result for the given key. Unknown keys report ok=false.
func (r ValuationResult) Model(key ModelKey) (ModelResult, bool) {
	switch key {
	case ModelConstant:
		return r.Constant, true
	case ModelGrowth:
		return r.Growth, true
	case ModelChanging:
		return r.Changing, true
	}
	return ModelResult{}, false
}
