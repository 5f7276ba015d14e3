package ddm

import "github.com/finmodel/ddmcalc/pkg/models"

// ComputeAll runs all three models against one input set and returns the
// keyed result. Each model is invoked unconditionally — a failed
// precondition in one never blocks the others — and no validation happens
// here: range checking is the caller's responsibility, and out-of-range or
// NaN inputs flow through to NaN results.
func ComputeAll(in models.ValuationInput) models.ValuationResult {
	return models.ValuationResult{
		Constant: ConstantDividend(in.D0, in.Required),
		Growth:   ConstantGrowth(in.D0, in.Required, in.GConst),
		Changing: TwoStage(in.D0, in.Required, in.GShort, in.GLong, in.ShortYears),
	}
}
