package kpi

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/faults"
)

// ErrAlreadySealed indicates a second attempt to set a score set's verdict.
var ErrAlreadySealed = errors.New("score set verdict already sealed")

// Contribution is one parameter's share of a KPI value.
type Contribution struct {
	Parameter    string           `json:"parameter_name"`
	RawValue     any              `json:"raw_value"`
	Normalized   float64          `json:"normalized_score"`
	Weight       float64          `json:"weight"`
	Contribution float64          `json:"contribution"`
	Absent       bool             `json:"absent,omitempty"`
	MissingBase  evidence.FieldID `json:"missing_base,omitempty"`
}

// Result is the outcome of one KPI formula for one submission.
type Result struct {
	KPIID        string             `json:"kpi_id"`
	Name         string             `json:"name"`
	Framework    Framework          `json:"framework"`
	Value        Score              `json:"value"`
	Formula      string             `json:"formula_description"`
	Parameters   []Contribution     `json:"parameter_breakdown"`
	EvidenceRefs []string           `json:"evidence_refs"`
	Missing      []evidence.FieldID `json:"missing_fields,omitempty"`
	Fault        *faults.Error      `json:"fault,omitempty"`
}

// Status is the Production Guard verdict for a score set.
type Status string

const (
	StatusPending Status = "pending"
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
)

// ScoreSet holds every KPI result for one submission plus its verdict.
// The verdict moves from pending to valid or invalid exactly once.
type ScoreSet struct {
	SubmissionID  uuid.UUID         `json:"submission_id"`
	InstitutionID string            `json:"institution_id"`
	DepartmentID  string            `json:"department_id"`
	AcademicYear  string            `json:"academic_year"`
	Year          int               `json:"year"`
	Framework     Framework         `json:"framework"`
	Results       map[string]Result `json:"kpi_results"`
	Overall       Score             `json:"overall_score"`
	Sufficiency   float64           `json:"sufficiency"`
	Status        Status            `json:"status"`
	IsValid       bool              `json:"is_valid"`
	InvalidReason string            `json:"invalid_reason,omitempty"`
	ComputedAt    time.Time         `json:"computed_at"`
}

// Seal records the verdict. Only a pending set can be sealed.
func (s *ScoreSet) Seal(status Status, reason string) error {
	if s.Status != "" && s.Status != StatusPending {
		return fmt.Errorf("%w: submission %s is %s", ErrAlreadySealed, s.SubmissionID, s.Status)
	}
	if status != StatusValid && status != StatusInvalid {
		return fmt.Errorf("cannot seal with status %q", status)
	}

	s.Status = status
	s.IsValid = status == StatusValid
	if status == StatusInvalid {
		s.InvalidReason = reason
	}
	return nil
}

// Valid reports whether the set was sealed valid.
func (s ScoreSet) Valid() bool {
	return s.Status == StatusValid
}

// Result returns a single KPI result.
func (s ScoreSet) Result(kpiID string) (Result, bool) {
	r, ok := s.Results[kpiID]
	return r, ok
}

// Scored returns the number of KPI results that carry a value.
func (s ScoreSet) Scored() int {
	n := 0
	for _, r := range s.Results {
		if !r.Value.IsNone() {
			n++
		}
	}
	return n
}
