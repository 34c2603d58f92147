package compliance_test

import (
	"testing"

	"github.com/JaimeStill/accredit/internal/compliance"
	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/kpi"
)

func build(t *testing.T, values map[string]any) evidence.Map {
	t.Helper()

	var raw []evidence.RawRecord
	for field, v := range values {
		raw = append(raw, evidence.RawRecord{ID: field, FieldID: field, RawValue: v, Snippet: field})
	}
	m, err := evidence.NewMap(raw)
	if err != nil {
		t.Fatalf("NewMap failed: %v", err)
	}
	return m
}

func rules(flags []compliance.Flag) map[string]compliance.Flag {
	out := map[string]compliance.Flag{}
	for _, f := range flags {
		out[f.RuleID] = f
	}
	return out
}

func TestCheckAICTE(t *testing.T) {
	m := build(t, map[string]any{
		"faculty_count":     20.0,
		"student_count":     500.0,
		"students_placed":   30.0,
		"students_eligible": 100.0,
		"built_up_area":     0.0,
	})
	results, err := kpi.Compute(kpi.AICTE, m)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	flags := rules(compliance.Check(kpi.AICTE, m, results))

	for _, id := range []string{"low_fsr", "placement_issues", "non_positive_area"} {
		if _, ok := flags[id]; !ok {
			t.Errorf("rule %s not raised: %v", id, flags)
		}
	}
	for _, id := range []string{"students_below_faculty", "placed_exceeds_eligible"} {
		if _, ok := flags[id]; ok {
			t.Errorf("rule %s raised unexpectedly", id)
		}
	}

	fsr := flags["low_fsr"]
	if fsr.Severity != compliance.SeverityMedium || len(fsr.EvidenceRefs) != 2 {
		t.Errorf("low_fsr = %+v", fsr)
	}
	if got := compliance.Highest(compliance.Check(kpi.AICTE, m, results)); got != compliance.SeverityHigh {
		t.Errorf("Highest = %s, want high", got)
	}
}

func TestCheckFrameworkScope(t *testing.T) {
	m := build(t, map[string]any{
		"faculty_count":     20.0,
		"student_count":     10.0,
		"students_placed":   120.0,
		"students_eligible": 100.0,
	})
	results, _ := kpi.Compute(kpi.NIRF, m)

	flags := rules(compliance.Check(kpi.NIRF, m, results))

	if _, ok := flags["low_fsr"]; ok {
		t.Error("low_fsr applies to AICTE only")
	}
	if f, ok := flags["students_below_faculty"]; !ok || f.Severity != compliance.SeverityHigh {
		t.Errorf("students_below_faculty = %+v, %v", f, ok)
	}
	if _, ok := flags["placed_exceeds_eligible"]; !ok {
		t.Error("placed_exceeds_eligible not raised")
	}
}

func TestCheckLeavesResultsUntouched(t *testing.T) {
	m := build(t, map[string]any{"faculty_count": 10.0, "student_count": 500.0})
	results, _ := kpi.Compute(kpi.AICTE, m)
	before, _ := results["fsr_score"].Value.Get()

	compliance.Check(kpi.AICTE, m, results)

	after, _ := results["fsr_score"].Value.Get()
	if before != after {
		t.Errorf("fsr_score changed from %v to %v", before, after)
	}
}

func TestCheckEmpty(t *testing.T) {
	m := build(t, nil)
	if flags := compliance.Check(kpi.NAAC, m, nil); len(flags) != 0 {
		t.Errorf("Check() = %v, want none", flags)
	}
}
