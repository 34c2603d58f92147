package explain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/explain"
	"github.com/JaimeStill/accredit/internal/kpi"
)

func fixture(t *testing.T) evidence.Map {
	t.Helper()

	m, err := evidence.NewMap([]evidence.RawRecord{
		{ID: "f1", FieldID: "faculty_count", RawValue: 50.0, Snippet: "Total faculty: 50", PageNumber: 4, SourceDocumentID: "ssr.pdf"},
		{ID: "s1", FieldID: "student_count", RawValue: 900.0, Snippet: "Sanctioned intake 900", PageNumber: 5, SourceDocumentID: "ssr.pdf"},
	})
	if err != nil {
		t.Fatalf("NewMap failed: %v", err)
	}
	return m
}

func TestExplainScored(t *testing.T) {
	m := fixture(t)
	def, _ := kpi.Lookup(kpi.AICTE, "fsr_score")
	r := kpi.Evaluate(def, m)

	e, err := explain.Explain(r, m)
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}

	if e.Status != explain.StatusScored {
		t.Errorf("Status = %q, want scored", e.Status)
	}
	if e.Value != r.Value {
		t.Errorf("Value = %v, want %v unchanged", e.Value, r.Value)
	}
	if len(e.Evidence) != 2 {
		t.Fatalf("Evidence = %d citations, want 2", len(e.Evidence))
	}
	if e.Evidence[0].Snippet != "Total faculty: 50" || e.Evidence[0].PageNumber != 4 {
		t.Errorf("Evidence[0] = %+v", e.Evidence[0])
	}

	text := explain.Render(e)
	for _, want := range []string{
		"Faculty-Student Ratio Score (fsr_score, AICTE)",
		"Value: 76.00",
		"Page 4 in ssr.pdf: 'Total faculty: 50'",
		"student_faculty_ratio: raw 18",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Render() missing %q:\n%s", want, text)
		}
	}
}

func TestExplainInsufficient(t *testing.T) {
	m, _ := evidence.NewMap(nil)
	def, _ := kpi.Lookup(kpi.AICTE, "placement_index")

	e, err := explain.Explain(kpi.Evaluate(def, m), m)
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if e.Status != explain.StatusInsufficient {
		t.Errorf("Status = %q", e.Status)
	}
	if len(e.Missing) == 0 || e.Reason == "" {
		t.Errorf("Missing = %v, Reason = %q", e.Missing, e.Reason)
	}
	if !strings.Contains(explain.Render(e), "Value: insufficient data") {
		t.Error("Render() must show insufficient data")
	}
}

func TestExplainUnavailableEvidence(t *testing.T) {
	m := fixture(t)
	def, _ := kpi.Lookup(kpi.AICTE, "fsr_score")
	r := kpi.Evaluate(def, m)

	empty, _ := evidence.NewMap(nil)
	if _, err := explain.Explain(r, empty); !errors.Is(err, explain.ErrEvidenceUnavailable) {
		t.Errorf("Explain error = %v, want ErrEvidenceUnavailable", err)
	}
}

func TestRenderAbsentComponent(t *testing.T) {
	m := fixture(t)
	def, _ := kpi.Lookup(kpi.AICTE, "infrastructure_score")
	r := kpi.Evaluate(def, m)

	e, err := explain.Explain(r, m)
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if !strings.Contains(explain.Render(e), "no evidence, contributes 0") {
		t.Errorf("Render() should mark absent components:\n%s", explain.Render(e))
	}
}

func TestRenderMissingBase(t *testing.T) {
	m, err := evidence.NewMap([]evidence.RawRecord{
		{ID: "area", FieldID: "built_up_area", RawValue: 2000.0, Snippet: "Built-up area 2000 sq m", PageNumber: 3, SourceDocumentID: "sar.pdf"},
		{ID: "dl", FieldID: "digital_library", RawValue: true, Snippet: "Digital library available", PageNumber: 7, SourceDocumentID: "sar.pdf"},
	})
	if err != nil {
		t.Fatalf("NewMap failed: %v", err)
	}

	def, _ := kpi.Lookup(kpi.AICTE, "infrastructure_score")
	e, err := explain.Explain(kpi.Evaluate(def, m), m)
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}

	out := explain.Render(e)
	if !strings.Contains(out, "built_up_area: no usable student_count, contributes 0") {
		t.Errorf("Render() should name the missing base:\n%s", out)
	}
	if strings.Contains(out, "built_up_area: no evidence") {
		t.Errorf("Render() reports evidence for built_up_area as absent:\n%s", out)
	}
	if strings.Contains(out, "Built-up area 2000") {
		t.Errorf("Render() cites evidence that was not consulted:\n%s", out)
	}
}
