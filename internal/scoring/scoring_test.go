package scoring_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/internal/scoring"
)

func newEngine(reg prometheus.Registerer) *scoring.Engine {
	cfg := &config.ScoringConfig{KPIWorkers: 4, SubmissionWorkers: 2}
	return scoring.New(cfg, scoring.NewMetrics(reg), slog.New(slog.DiscardHandler))
}

func record(field string, v any) evidence.RawRecord {
	return evidence.RawRecord{
		FieldID:          field,
		RawValue:         v,
		Snippet:          field + " from mandatory disclosure",
		PageNumber:       2,
		SourceDocumentID: "disclosure.pdf",
	}
}

func aicteInput() scoring.Input {
	return scoring.Input{
		InstitutionID: "inst-x",
		DepartmentIDs: []string{"cse"},
		AcademicYear:  "2023-24",
		Framework:     kpi.AICTE,
		Records: []evidence.RawRecord{
			record("faculty_count", 50.0),
			record("student_count", 900.0),
			record("students_placed", 40.0),
			record("students_eligible", 100.0),
			record("labs_available", 9.0),
			record("labs_required", 12.0),
		},
	}
}

func TestScoreValid(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newEngine(reg)

	out, err := e.Score(context.Background(), aicteInput())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	set := out.Set
	if !set.Valid() {
		t.Fatalf("status = %s (%s), want valid", set.Status, set.InvalidReason)
	}
	if set.Year != 2023 || set.DepartmentID != "cse" {
		t.Errorf("year, department = %d, %s", set.Year, set.DepartmentID)
	}
	if len(set.Results) != 4 {
		t.Errorf("results = %d, want 4", len(set.Results))
	}

	// fsr 76, placement 40, labs 75, infrastructure None
	if got, _ := set.Overall.Get(); got != 63.67 {
		t.Errorf("Overall = %v, want 63.67", got)
	}

	if len(out.Flags) == 0 {
		t.Error("expected a placement_issues flag")
	}

	n, err := testutil.GatherAndCount(reg, "accredit_scoring_submissions_total")
	if err != nil {
		t.Fatalf("GatherAndCount failed: %v", err)
	}
	if n != 1 {
		t.Errorf("submissions_total series = %d, want 1", n)
	}
}

func TestScoreSufficiencyOverride(t *testing.T) {
	in := aicteInput()
	zero := 0.0
	in.Sufficiency = &zero

	out, err := newEngine(nil).Score(context.Background(), in)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if out.Set.Valid() {
		t.Error("zero sufficiency must seal the set invalid")
	}
	if out.Set.Sufficiency != 0 {
		t.Errorf("Sufficiency = %v, want 0", out.Set.Sufficiency)
	}
}

func TestScoreNoEvidence(t *testing.T) {
	in := aicteInput()
	in.Records = nil

	out, err := newEngine(nil).Score(context.Background(), in)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if out.Set.Valid() || out.Verdict.Fault == nil || out.Verdict.Fault.Kind != faults.KindNoValidKPI {
		t.Errorf("verdict = %+v, want no_valid_kpi", out.Verdict)
	}
	if !out.Set.Overall.IsNone() {
		t.Errorf("Overall = %v, want None", out.Set.Overall)
	}
}

func TestScoreRejections(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*scoring.Input)
		kind   faults.Kind
	}{
		{"two departments", func(in *scoring.Input) { in.DepartmentIDs = []string{"cse", "ece"} }, faults.KindInvalidInput},
		{"no department", func(in *scoring.Input) { in.DepartmentIDs = nil }, faults.KindInvalidInput},
		{"bad year", func(in *scoring.Input) { in.AcademicYear = "next year" }, faults.KindInvalidInput},
		{"unknown framework", func(in *scoring.Input) { in.Framework = "abet" }, faults.KindInvalidInput},
		{"malformed evidence", func(in *scoring.Input) {
			in.Records = append(in.Records, record("faculty_count", []any{"a", "b"}))
		}, faults.KindMalformedEvidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := aicteInput()
			tt.modify(&in)

			_, err := newEngine(nil).Score(context.Background(), in)
			f, ok := faults.As(err)
			if !ok {
				t.Fatalf("Score error = %v, want a fault", err)
			}
			if f.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", f.Kind, tt.kind)
			}
		})
	}
}

func TestScoreAll(t *testing.T) {
	good := aicteInput()
	bad := aicteInput()
	bad.DepartmentIDs = nil
	nirf := aicteInput()
	nirf.Framework = kpi.NIRF

	results := newEngine(nil).ScoreAll(context.Background(), []scoring.Input{good, bad, nirf})

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].Err != nil || results[0].Outcome == nil {
		t.Errorf("results[0] = %+v, want outcome", results[0])
	}
	if results[1].Err == nil {
		t.Error("results[1] should fail the department rule")
	}
	if results[2].Err != nil || results[2].Outcome.Set.Framework != kpi.NIRF {
		t.Errorf("results[2] = %+v", results[2])
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d", i, r.Index)
		}
	}
}

func TestScoreAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newEngine(nil).ScoreAll(ctx, []scoring.Input{aicteInput()})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", results[0].Err)
	}
}
