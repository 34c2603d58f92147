package kpi_test

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/kpi"
)

func evidenceMap(t *testing.T, values map[string]any) evidence.Map {
	t.Helper()

	raw := make([]evidence.RawRecord, 0, len(values))
	for field, v := range values {
		raw = append(raw, evidence.RawRecord{
			ID:               "rec-" + field,
			FieldID:          field,
			RawValue:         v,
			Snippet:          field + " reported",
			PageNumber:       1,
			SourceDocumentID: "sar.pdf",
		})
	}

	m, err := evidence.NewMap(raw)
	if err != nil {
		t.Fatalf("NewMap failed: %v", err)
	}
	return m
}

func evaluate(t *testing.T, f kpi.Framework, id string, values map[string]any) kpi.Result {
	t.Helper()

	def, ok := kpi.Lookup(f, id)
	if !ok {
		t.Fatalf("no definition %s/%s", f, id)
	}
	return kpi.Evaluate(def, evidenceMap(t, values))
}

func value(t *testing.T, r kpi.Result) float64 {
	t.Helper()

	v, ok := r.Value.Get()
	if !ok {
		t.Fatalf("%s has no value (fault: %v)", r.KPIID, r.Fault)
	}
	return v
}

func TestFSRScore(t *testing.T) {
	tests := []struct {
		name     string
		students float64
		want     float64
	}{
		{"within norm", 600, 100},
		{"linear band", 900, 76},
		{"steep band", 1250, 45},
		{"floor", 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := evaluate(t, kpi.AICTE, "fsr_score", map[string]any{
				"faculty_count": 50.0,
				"student_count": tt.students,
			})
			if got := value(t, r); got != tt.want {
				t.Errorf("fsr_score = %v, want %v", got, tt.want)
			}
			if len(r.EvidenceRefs) != 2 {
				t.Errorf("EvidenceRefs = %v, want 2 refs", r.EvidenceRefs)
			}
		})
	}
}

func TestFSRScoreMissingStudents(t *testing.T) {
	r := evaluate(t, kpi.AICTE, "fsr_score", map[string]any{"faculty_count": 50.0})

	if !r.Value.IsNone() {
		t.Fatalf("fsr_score = %v, want None", r.Value)
	}
	if r.Fault == nil || !errors.Is(r.Fault, faults.MissingEvidence) {
		t.Fatalf("Fault = %v, want missing_evidence", r.Fault)
	}
	if len(r.Missing) != 1 || r.Missing[0] != evidence.StudentCount {
		t.Errorf("Missing = %v, want [student_count]", r.Missing)
	}
}

func TestFSRScoreZeroFaculty(t *testing.T) {
	r := evaluate(t, kpi.AICTE, "fsr_score", map[string]any{
		"faculty_count": 0.0,
		"student_count": 100.0,
	})
	if !r.Value.IsNone() {
		t.Errorf("fsr_score = %v, want None", r.Value)
	}
}

func TestInfrastructureCompositeException(t *testing.T) {
	r := evaluate(t, kpi.AICTE, "infrastructure_score", map[string]any{
		"faculty_count":     50.0,
		"digital_resources": 400.0,
	})

	// only the faculty-based digital component scores: 80 x 0.10
	if got := value(t, r); got != 8 {
		t.Errorf("infrastructure_score = %v, want 8", got)
	}

	absent := 0
	for _, p := range r.Parameters {
		if p.Absent {
			absent++
			if p.Contribution != 0 {
				t.Errorf("absent %s contributed %v", p.Parameter, p.Contribution)
			}
		}
	}
	if absent != 4 {
		t.Errorf("absent components = %d, want 4", absent)
	}
}

func TestInfrastructureFull(t *testing.T) {
	r := evaluate(t, kpi.AICTE, "infrastructure_score", map[string]any{
		"student_count":     400.0,
		"faculty_count":     20.0,
		"built_up_area":     1600.0,
		"classroom_count":   5.0,
		"library_area":      100.0,
		"digital_resources": 100.0,
		"hostel_capacity":   80.0,
	})

	// area 100, classrooms 50, library 50, digital 50, hostel 50
	want := 40 + 12.5 + 7.5 + 5 + 5.0
	if got := value(t, r); got != want {
		t.Errorf("infrastructure_score = %v, want %v", got, want)
	}
}

func TestInfrastructureDigitalLibraryFlag(t *testing.T) {
	r := evaluate(t, kpi.AICTE, "infrastructure_score", map[string]any{"digital_library": "yes"})
	if got := value(t, r); got != 5 {
		t.Errorf("infrastructure_score = %v, want 5", got)
	}
}

func TestInfrastructureMissingBase(t *testing.T) {
	m, err := evidence.NewMap([]evidence.RawRecord{
		{ID: "area", FieldID: "built_up_area", RawValue: 2000.0, Snippet: "Built-up area 2000 sq m", PageNumber: 3, SourceDocumentID: "sar.pdf"},
		{ID: "dl", FieldID: "digital_library", RawValue: true, Snippet: "Digital library available", PageNumber: 7, SourceDocumentID: "sar.pdf"},
	})
	if err != nil {
		t.Fatalf("NewMap failed: %v", err)
	}

	def, _ := kpi.Lookup(kpi.AICTE, "infrastructure_score")
	r := kpi.Evaluate(def, m)

	if got := value(t, r); got != 5 {
		t.Errorf("infrastructure_score = %v, want 5", got)
	}
	if len(r.EvidenceRefs) != 1 || r.EvidenceRefs[0] != "dl" {
		t.Errorf("EvidenceRefs = %v, want [dl]", r.EvidenceRefs)
	}

	for _, p := range r.Parameters {
		switch p.Parameter {
		case "built_up_area", "classroom_count", "library_area", "hostel_capacity":
			if p.MissingBase != evidence.StudentCount {
				t.Errorf("%s MissingBase = %q, want %q", p.Parameter, p.MissingBase, evidence.StudentCount)
			}
			if !p.Absent || p.Contribution != 0 {
				t.Errorf("%s = %+v, want a zero contribution", p.Parameter, p)
			}
		case "digital_resources":
			if p.MissingBase != "" || p.Absent {
				t.Errorf("digital_resources = %+v, want scored", p)
			}
		}
	}
}

func TestInfrastructureDigitalResourcesWithoutFaculty(t *testing.T) {
	r := evaluate(t, kpi.AICTE, "infrastructure_score", map[string]any{
		"student_count":     400.0,
		"built_up_area":     1600.0,
		"digital_resources": 300.0,
	})

	// area 100 x 0.40; digital resources need a faculty count
	if got := value(t, r); got != 40 {
		t.Errorf("infrastructure_score = %v, want 40", got)
	}
	for _, ref := range r.EvidenceRefs {
		if ref == "rec-digital_resources" {
			t.Errorf("EvidenceRefs = %v, should not cite digital_resources", r.EvidenceRefs)
		}
	}
	for _, p := range r.Parameters {
		if p.Parameter == "digital_resources" && p.MissingBase != evidence.FacultyCount {
			t.Errorf("digital_resources MissingBase = %q, want %q", p.MissingBase, evidence.FacultyCount)
		}
	}
}

func TestPlacementAndLabFields(t *testing.T) {
	placement, _ := kpi.Lookup(kpi.AICTE, "placement_index")
	if !slices.Contains(placement.Fields, evidence.PlacementRate) {
		t.Errorf("placement_index Fields = %v, want placement_rate", placement.Fields)
	}

	labs, _ := kpi.Lookup(kpi.AICTE, "lab_compliance_index")
	if !slices.Contains(labs.Fields, evidence.StudentCount) {
		t.Errorf("lab_compliance_index Fields = %v, want student_count", labs.Fields)
	}
	if slices.Contains(labs.Fields, evidence.LabsRequired) {
		t.Errorf("lab_compliance_index Fields = %v, labs_required is optional", labs.Fields)
	}

	m := evidenceMap(t, map[string]any{"labs_available": 5.0, "student_count": 100.0})
	fields, err := kpi.RequiredFields(kpi.AICTE)
	if err != nil {
		t.Fatalf("RequiredFields failed: %v", err)
	}
	if slices.Contains(fields, evidence.LabsRequired) {
		t.Errorf("RequiredFields = %v, should not count labs_required", fields)
	}
	r := kpi.Evaluate(labs, m)
	if got := value(t, r); got != 100 {
		t.Errorf("lab_compliance_index = %v, want 100", got)
	}
}

func TestInfrastructureNoEvidence(t *testing.T) {
	r := evaluate(t, kpi.AICTE, "infrastructure_score", map[string]any{})
	if !r.Value.IsNone() {
		t.Errorf("infrastructure_score = %v, want None", r.Value)
	}
	if len(r.EvidenceRefs) != 0 {
		t.Errorf("EvidenceRefs = %v, want none", r.EvidenceRefs)
	}
}

func TestPlacementIndex(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   float64
		none   bool
	}{
		{"counts", map[string]any{"students_placed": 80.0, "students_eligible": 100.0}, 80, false},
		{"rate fallback", map[string]any{"placement_rate": 72.5}, 72.5, false},
		{"rate preferred", map[string]any{"students_placed": 45.0, "students_eligible": 50.0, "placement_rate": 10.0}, 10, false},
		{"rate capped", map[string]any{"placement_rate": 104.0}, 100, false},
		{"capped", map[string]any{"students_placed": 120.0, "students_eligible": 100.0}, 100, false},
		{"zero eligible", map[string]any{"students_placed": 0.0, "students_eligible": 0.0}, 0, true},
		{"nothing", map[string]any{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := evaluate(t, kpi.AICTE, "placement_index", tt.values)
			if tt.none {
				if !r.Value.IsNone() {
					t.Errorf("placement_index = %v, want None", r.Value)
				}
				return
			}
			if got := value(t, r); got != tt.want {
				t.Errorf("placement_index = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLabCompliance(t *testing.T) {
	r := evaluate(t, kpi.AICTE, "lab_compliance_index", map[string]any{
		"labs_available": 9.0,
		"labs_required":  12.0,
	})
	if got := value(t, r); got != 75 {
		t.Errorf("lab_compliance_index = %v, want 75", got)
	}

	r = evaluate(t, kpi.AICTE, "lab_compliance_index", map[string]any{
		"labs_available": 4.0,
		"student_count":  100.0,
	})
	if got := value(t, r); got != 80 {
		t.Errorf("lab_compliance_index with derived requirement = %v, want 80", got)
	}
}

func TestNBAQualitative(t *testing.T) {
	r := evaluate(t, kpi.NBA, "peos_psos", map[string]any{
		"peos": []any{"PEO1", "PEO2", "PEO3"},
		"psos": "Graduates apply core skills.",
	})
	if got := value(t, r); got != 75 {
		t.Errorf("peos_psos = %v, want 75", got)
	}

	r = evaluate(t, kpi.NBA, "co_po_mapping", map[string]any{"co_po_mapping": []any{"CO1-PO1"}})
	if got := value(t, r); got != 100 {
		t.Errorf("co_po_mapping = %v, want 100", got)
	}
}

func TestNBAFacultyQuality(t *testing.T) {
	r := evaluate(t, kpi.NBA, "faculty_quality", map[string]any{
		"faculty_count": 40.0,
		"student_count": 720.0,
		"phd_faculty":   12.0,
		"fdp_count":     5.0,
	})

	// ratio 18 -> 80; PhD 30% -> 50; FDP 5 -> 50
	want := 32 + 15 + 15.0
	if got := value(t, r); got != want {
		t.Errorf("faculty_quality = %v, want %v", got, want)
	}
}

func TestNAACResearch(t *testing.T) {
	r := evaluate(t, kpi.NAAC, "criterion_3", map[string]any{
		"publications":         25.0,
		"research_projects":    10.0,
		"extension_activities": 10.0,
	})
	if got := value(t, r); got != 80 {
		t.Errorf("criterion_3 = %v, want 80", got)
	}
}

func TestNAACCriterionProse(t *testing.T) {
	r := evaluate(t, kpi.NAAC, "criterion_7", map[string]any{
		"institutional_values": "A long commitment to inclusive education.",
		"best_practices":       []any{"Green campus"},
	})
	if got := value(t, r); got != 75 {
		t.Errorf("criterion_7 = %v, want 75", got)
	}
}

func TestNIRFPerception(t *testing.T) {
	r := evaluate(t, kpi.NIRF, "pr", map[string]any{
		"peer_perception":     80.0,
		"employer_perception": 60.0,
		"public_perception":   50.0,
	})
	if got := value(t, r); got != 68 {
		t.Errorf("pr = %v, want 68", got)
	}
}

func TestComputeEmptyMap(t *testing.T) {
	for _, f := range kpi.Frameworks() {
		t.Run(string(f), func(t *testing.T) {
			results, err := kpi.Compute(f, evidenceMap(t, nil))
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}

			defs, _ := kpi.Definitions(f)
			if len(results) != len(defs) {
				t.Fatalf("results = %d, want %d", len(results), len(defs))
			}
			for id, r := range results {
				if !r.Value.IsNone() {
					t.Errorf("%s = %v, want None", id, r.Value)
				}
			}
			if !kpi.Overall(results).IsNone() {
				t.Error("Overall should be None")
			}
		})
	}
}

func TestDefinitionsUnknownFramework(t *testing.T) {
	if _, err := kpi.Definitions("abet"); !errors.Is(err, kpi.ErrUnknownFramework) {
		t.Errorf("Definitions(abet) error = %v, want ErrUnknownFramework", err)
	}
	if _, err := kpi.ParseFramework("NAAC"); err != nil {
		t.Errorf("ParseFramework(NAAC) error = %v", err)
	}
}

func TestRequiredFieldsUnique(t *testing.T) {
	fields, err := kpi.RequiredFields(kpi.AICTE)
	if err != nil {
		t.Fatalf("RequiredFields failed: %v", err)
	}

	seen := map[evidence.FieldID]bool{}
	for _, f := range fields {
		if seen[f] {
			t.Errorf("duplicate field %s", f)
		}
		seen[f] = true
	}
	if !seen[evidence.FacultyCount] || !seen[evidence.LabsAvailable] {
		t.Errorf("RequiredFields = %v", fields)
	}
}

func TestOverallExcludesNone(t *testing.T) {
	results := map[string]kpi.Result{
		"a": {Value: kpi.Some(80)},
		"b": {Value: kpi.None()},
		"c": {Value: kpi.Some(65.56)},
	}
	if got, _ := kpi.Overall(results).Get(); got != 72.78 {
		t.Errorf("Overall = %v, want 72.78", got)
	}
}

func TestScoreJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A kpi.Score `json:"a"`
		B kpi.Score `json:"b"`
	}{kpi.Some(42.5), kpi.None()})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"a":42.5,"b":null}` {
		t.Errorf("Marshal = %s", data)
	}

	var s kpi.Score
	if err := json.Unmarshal([]byte("null"), &s); err != nil || !s.IsNone() {
		t.Errorf("Unmarshal(null) = %v, %v", s, err)
	}
	if kpi.None().String() != "insufficient data" {
		t.Errorf("None().String() = %q", kpi.None().String())
	}
}

func TestSealOnce(t *testing.T) {
	var set kpi.ScoreSet
	if err := set.Seal(kpi.StatusInvalid, "department mismatch"); err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if set.IsValid || set.InvalidReason != "department mismatch" {
		t.Errorf("set = %+v", set)
	}
	if err := set.Seal(kpi.StatusValid, ""); !errors.Is(err, kpi.ErrAlreadySealed) {
		t.Errorf("second Seal error = %v, want ErrAlreadySealed", err)
	}
}
