// Package submissions implements the submission domain: scoring a
// submission's evidence, persisting the sealed score set, snapshotting the
// evidence to blob storage, and reading both back for explanation and
// reprocessing.
package submissions

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/internal/compliance"
	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/internal/scoring"
	"github.com/JaimeStill/accredit/internal/validation"
)

// Submission is a persisted, sealed score set with its lineage and evidence
// snapshot reference.
type Submission struct {
	ID            uuid.UUID             `json:"id"`
	ParentID      *uuid.UUID            `json:"parent_id,omitempty"`
	InstitutionID string                `json:"institution_id"`
	DepartmentID  string                `json:"department_id"`
	AcademicYear  string                `json:"academic_year"`
	Year          int                   `json:"year"`
	Framework     kpi.Framework         `json:"framework"`
	Overall       kpi.Score             `json:"overall_score"`
	Sufficiency   float64               `json:"sufficiency"`
	Status        kpi.Status            `json:"status"`
	IsValid       bool                  `json:"is_valid"`
	InvalidReason string                `json:"invalid_reason,omitempty"`
	Results       map[string]kpi.Result `json:"kpi_results"`
	Flags         []compliance.Flag     `json:"compliance_flags"`
	EvidenceKey   string                `json:"evidence_key"`
	ComputedAt    time.Time             `json:"computed_at"`
	CreatedAt     time.Time             `json:"created_at"`
}

// ScoreSet returns the sealed score set the submission stores.
func (s Submission) ScoreSet() kpi.ScoreSet {
	return kpi.ScoreSet{
		SubmissionID:  s.ID,
		InstitutionID: s.InstitutionID,
		DepartmentID:  s.DepartmentID,
		AcademicYear:  s.AcademicYear,
		Year:          s.Year,
		Framework:     s.Framework,
		Results:       s.Results,
		Overall:       s.Overall,
		Sufficiency:   s.Sufficiency,
		Status:        s.Status,
		IsValid:       s.IsValid,
		InvalidReason: s.InvalidReason,
		ComputedAt:    s.ComputedAt,
	}
}

// CreateCommand carries a submission's identity and its extracted evidence.
// Sufficiency is optional; when omitted it is derived from the evidence.
type CreateCommand struct {
	InstitutionID string               `json:"institution_id" validate:"required,max=128"`
	DepartmentIDs []string             `json:"department_ids" validate:"required,min=1,dive,max=128"`
	AcademicYear  string               `json:"academic_year" validate:"required,academic_year"`
	Framework     string               `json:"framework" validate:"required,framework"`
	Evidence      []evidence.RawRecord `json:"evidence" validate:"dive"`
	Sufficiency   *float64             `json:"sufficiency,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Validate checks the command's shape. The single-department rule and the
// evidence schema are enforced by scoring.
func (c CreateCommand) Validate() error {
	return validation.Struct(c)
}

func (c CreateCommand) input(id uuid.UUID) (scoring.Input, error) {
	f, err := kpi.ParseFramework(c.Framework)
	if err != nil {
		return scoring.Input{}, err
	}

	return scoring.Input{
		SubmissionID:  id,
		InstitutionID: c.InstitutionID,
		DepartmentIDs: c.DepartmentIDs,
		AcademicYear:  c.AcademicYear,
		Framework:     f,
		Records:       c.Evidence,
		Sufficiency:   c.Sufficiency,
	}, nil
}

// Snapshot is the blob document kept per submission so that it can be
// explained and reprocessed without the extraction pipeline.
type Snapshot struct {
	SubmissionID  uuid.UUID            `json:"submission_id"`
	InstitutionID string               `json:"institution_id"`
	DepartmentIDs []string             `json:"department_ids"`
	AcademicYear  string               `json:"academic_year"`
	Framework     kpi.Framework        `json:"framework"`
	Sufficiency   *float64             `json:"sufficiency,omitempty"`
	Records       []evidence.RawRecord `json:"records"`
}

// Lineage lists a submission and every reprocessing derived from it.
type Lineage struct {
	Root     uuid.UUID    `json:"root_id"`
	Versions []Submission `json:"versions"`
}
