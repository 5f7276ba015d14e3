package validate

import (
	"math"
	"testing"
)

func goodRequest() Request {
	return Request{
		Dividend:       5,
		RequiredPct:    10,
		GrowthPct:      5,
		ShortGrowthPct: 8,
		LongGrowthPct:  3,
		ShortYears:     5,
	}
}

func fieldsOf(errs []FieldError) map[string]bool {
	m := make(map[string]bool, len(errs))
	for _, e := range errs {
		m[e.Field] = true
	}
	return m
}

func TestCheckAcceptsValidRequest(t *testing.T) {
	if errs := Check(goodRequest()); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestCheckRangeRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"dividend too small", func(r *Request) { r.Dividend = 0.001 }, "dividend"},
		{"dividend too large", func(r *Request) { r.Dividend = 1001 }, "dividend"},
		{"dividend zero", func(r *Request) { r.Dividend = 0 }, "dividend"},
		{"required too small", func(r *Request) { r.RequiredPct = 0.05 }, "required_pct"},
		{"required too large", func(r *Request) { r.RequiredPct = 51 }, "required_pct"},
		{"growth too small", func(r *Request) { r.GrowthPct = -11 }, "growth_pct"},
		{"growth too large", func(r *Request) { r.GrowthPct = 31 }, "growth_pct"},
		{"short growth too large", func(r *Request) { r.ShortGrowthPct = 51 }, "short_growth_pct"},
		{"short growth too small", func(r *Request) { r.ShortGrowthPct = -11 }, "short_growth_pct"},
		{"long growth too large", func(r *Request) { r.LongGrowthPct = 31 }, "long_growth_pct"},
		{"short years zero", func(r *Request) { r.ShortYears = 0 }, "short_years"},
		{"short years too large", func(r *Request) { r.ShortYears = 11 }, "short_years"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := goodRequest()
			c.mutate(&req)
			errs := Check(req)
			if !fieldsOf(errs)[c.field] {
				t.Errorf("expected error on field %q, got %v", c.field, errs)
			}
		})
	}
}

func TestCheckRangeBoundariesInclusive(t *testing.T) {
	req := goodRequest()
	req.Dividend = 0.01
	req.RequiredPct = 50
	req.GrowthPct = 30
	req.ShortGrowthPct = 50
	req.LongGrowthPct = 30
	req.ShortYears = 10
	if errs := Check(req); len(errs) != 0 {
		t.Errorf("boundary values should pass, got %v", errs)
	}
}

func TestCheckCrossFieldRules(t *testing.T) {
	req := goodRequest()
	req.GrowthPct = 10 // equal to required: rejected upstream
	if !fieldsOf(Check(req))["growth_pct"] {
		t.Error("growth equal to required return should be rejected")
	}

	req = goodRequest()
	req.LongGrowthPct = 12
	if !fieldsOf(Check(req))["long_growth_pct"] {
		t.Error("long-term growth above required return should be rejected")
	}

	// Short-term growth has no cross-field rule; it may exceed required.
	req = goodRequest()
	req.ShortGrowthPct = 40
	if len(Check(req)) != 0 {
		t.Error("short-term growth above required return should pass")
	}
}

func TestCheckRejectsNonFiniteValues(t *testing.T) {
	req := goodRequest()
	req.Dividend = math.NaN()
	if !fieldsOf(Check(req))["dividend"] {
		t.Error("NaN dividend should be rejected")
	}

	req = goodRequest()
	req.RequiredPct = math.Inf(1)
	if !fieldsOf(Check(req))["required_pct"] {
		t.Error("infinite required return should be rejected")
	}
}

func TestCheckReportsMultipleFields(t *testing.T) {
	req := Request{} // all zero: dividend, required, short_years out of range
	fields := fieldsOf(Check(req))
	for _, f := range []string{"dividend", "required_pct", "short_years"} {
		if !fields[f] {
			t.Errorf("expected error on %q", f)
		}
	}
}

func TestInputConvertsPercentToDecimal(t *testing.T) {
	in := goodRequest().Input()
	if in.D0 != 5 {
		t.Errorf("D0 = %v, want 5", in.D0)
	}
	if in.Required != 0.10 {
		t.Errorf("Required = %v, want 0.10", in.Required)
	}
	if in.GConst != 0.05 {
		t.Errorf("GConst = %v, want 0.05", in.GConst)
	}
	if in.GShort != 0.08 {
		t.Errorf("GShort = %v, want 0.08", in.GShort)
	}
	if in.GLong != 0.03 {
		t.Errorf("GLong = %v, want 0.03", in.GLong)
	}
	if in.ShortYears != 5 {
		t.Errorf("ShortYears = %d, want 5", in.ShortYears)
	}
}
