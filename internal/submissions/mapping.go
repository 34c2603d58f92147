package submissions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/internal/compliance"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/pkg/query"
	"github.com/JaimeStill/accredit/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "submissions", "s").
	Project("id", "ID").
	Project("parent_id", "ParentID").
	Project("institution_id", "InstitutionID").
	Project("department_id", "DepartmentID").
	Project("academic_year", "AcademicYear").
	Project("year", "Year").
	Project("framework", "Framework").
	Project("overall_score", "Overall").
	Project("sufficiency", "Sufficiency").
	Project("status", "Status").
	Project("invalid_reason", "InvalidReason").
	Project("results", "Results").
	Project("flags", "Flags").
	Project("evidence_key", "EvidenceKey").
	Project("computed_at", "ComputedAt").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

var historySort = []query.SortField{
	{Field: "Year"},
	{Field: "ComputedAt"},
}

// Filters contains optional filtering criteria for submission queries.
// Nil fields are ignored. InstitutionID and AcademicYear use contains
// matching; the rest match exactly.
type Filters struct {
	InstitutionID *string        `json:"institution_id,omitempty"`
	DepartmentID  *string        `json:"department_id,omitempty"`
	Framework     *kpi.Framework `json:"framework,omitempty"`
	Status        *kpi.Status    `json:"status,omitempty"`
	Year          *int           `json:"year,omitempty"`
	YearFrom      *int           `json:"year_from,omitempty"`
	YearTo        *int           `json:"year_to,omitempty"`
	AcademicYear  *string        `json:"academic_year,omitempty"`
	ParentID      *uuid.UUID     `json:"parent_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("InstitutionID", f.InstitutionID).
		WhereEquals("DepartmentID", f.DepartmentID).
		WhereEquals("Framework", f.Framework).
		WhereEquals("Status", f.Status).
		WhereEquals("Year", f.Year).
		WhereAtLeast("Year", f.YearFrom).
		WhereAtMost("Year", f.YearTo).
		WhereContains("AcademicYear", f.AcademicYear).
		WhereEquals("ParentID", f.ParentID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unparseable values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("institution_id"); v != "" {
		f.InstitutionID = &v
	}

	if v := values.Get("department_id"); v != "" {
		f.DepartmentID = &v
	}

	if v := values.Get("framework"); v != "" {
		if fw, err := kpi.ParseFramework(v); err == nil {
			f.Framework = &fw
		}
	}

	if v := values.Get("status"); v != "" {
		s := kpi.Status(v)
		f.Status = &s
	}

	if v := values.Get("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			f.Year = &y
		}
	}

	if v := values.Get("year_from"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			f.YearFrom = &y
		}
	}

	if v := values.Get("year_to"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			f.YearTo = &y
		}
	}

	if v := values.Get("academic_year"); v != "" {
		f.AcademicYear = &v
	}

	if v := values.Get("parent_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.ParentID = &id
		}
	}

	return f
}

func scanSubmission(s repository.Scanner) (Submission, error) {
	var (
		sub     Submission
		overall *float64
		results []byte
		flags   []byte
	)

	err := s.Scan(
		&sub.ID,
		&sub.ParentID,
		&sub.InstitutionID,
		&sub.DepartmentID,
		&sub.AcademicYear,
		&sub.Year,
		&sub.Framework,
		&overall,
		&sub.Sufficiency,
		&sub.Status,
		&sub.InvalidReason,
		&results,
		&flags,
		&sub.EvidenceKey,
		&sub.ComputedAt,
		&sub.CreatedAt,
	)
	if err != nil {
		return sub, err
	}

	sub.Overall = kpi.FromPtr(overall)
	sub.IsValid = sub.Status == kpi.StatusValid

	if err := json.Unmarshal(results, &sub.Results); err != nil {
		return sub, fmt.Errorf("decode results for %s: %w", sub.ID, err)
	}

	sub.Flags = []compliance.Flag{}
	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &sub.Flags); err != nil {
			return sub, fmt.Errorf("decode flags for %s: %w", sub.ID, err)
		}
	}

	return sub, nil
}

func scanScoreSet(s repository.Scanner) (kpi.ScoreSet, error) {
	sub, err := scanSubmission(s)
	if err != nil {
		return kpi.ScoreSet{}, err
	}
	return sub.ScoreSet(), nil
}
