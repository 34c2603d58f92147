// Package analytics builds the multi-submission views: comparison, trend and
// forecast. Every view routes its input through the Production Guard before
// any value is read, so a view never mixes institutions, departments or
// frameworks and never includes an invalid submission.
package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/forecast"
	"github.com/JaimeStill/accredit/internal/guard"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/internal/trend"
	"github.com/JaimeStill/accredit/internal/validation"
)

// Source reads stored score sets. submissions.System satisfies it.
type Source interface {
	FindMany(ctx context.Context, ids []uuid.UUID) ([]kpi.ScoreSet, error)
	History(ctx context.Context, institutionID string, framework kpi.Framework) ([]kpi.ScoreSet, error)
}

// Scope selects the submissions a view reads. Either SubmissionIDs or
// InstitutionID with Framework is required. Empty entity fields are anchored
// on the first valid submission.
type Scope struct {
	SubmissionIDs []uuid.UUID `json:"submission_ids,omitempty" validate:"omitempty,max=200"`
	InstitutionID string      `json:"institution_id,omitempty" validate:"omitempty,max=128"`
	DepartmentID  string      `json:"department_id,omitempty" validate:"omitempty,max=128"`
	Framework     string      `json:"framework,omitempty" validate:"omitempty,framework"`
}

func (s Scope) operation(kind guard.OperationKind) (guard.Operation, error) {
	op := guard.Operation{
		Kind:          kind,
		InstitutionID: s.InstitutionID,
		DepartmentID:  s.DepartmentID,
	}

	if s.Framework != "" {
		f, err := kpi.ParseFramework(s.Framework)
		if err != nil {
			return op, faults.New(faults.KindInvalidInput, err.Error(), nil)
		}
		op.Framework = f
	}

	if len(s.SubmissionIDs) == 0 && (s.InstitutionID == "" || op.Framework == "") {
		return op, faults.New(
			faults.KindInvalidInput,
			"submission_ids or institution_id with framework is required",
			nil,
		)
	}

	return op, nil
}

// CompareRequest compares submissions KPI by KPI.
type CompareRequest struct {
	Scope
}

// TrendRequest builds the year-over-year series of one KPI.
type TrendRequest struct {
	Scope
	KPIID string `json:"kpi_id" validate:"required,max=64"`
}

// ForecastRequest projects one KPI Horizon years past its last point.
// A zero Horizon means one year.
type ForecastRequest struct {
	Scope
	KPIID   string `json:"kpi_id" validate:"required,max=64"`
	Horizon int    `json:"horizon,omitempty" validate:"omitempty,min=1,max=10"`
}

func (r CompareRequest) Validate() error  { return validation.Struct(r) }
func (r TrendRequest) Validate() error    { return validation.Struct(r) }
func (r ForecastRequest) Validate() error { return validation.Struct(r) }

// Member summarises a submission accepted into a view.
type Member struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	AcademicYear string    `json:"academic_year"`
	Year         int       `json:"year"`
	Overall      kpi.Score `json:"overall_score"`
}

// Cell is one submission's value for one KPI.
type Cell struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Year         int       `json:"year"`
	Value        kpi.Score `json:"value"`
}

// Row lines up one KPI across the compared submissions. Delta is the last
// value minus the first and is None unless both are present.
type Row struct {
	KPIID  string    `json:"kpi_id"`
	Name   string    `json:"name"`
	Values []Cell    `json:"values"`
	Delta  kpi.Score `json:"delta"`
}

// Comparison is the result of Compare.
type Comparison struct {
	Scope        guard.Operation   `json:"scope"`
	Accepted     []Member          `json:"accepted"`
	Rejected     []guard.Rejection `json:"rejected"`
	KPIs         []Row             `json:"kpis"`
	OverallDelta kpi.Score         `json:"overall_delta"`
}

// TrendResult is the result of Trend.
type TrendResult struct {
	Scope    guard.Operation   `json:"scope"`
	Trend    *trend.Trend      `json:"trend"`
	Rejected []guard.Rejection `json:"rejected"`
}

// ForecastResult is the result of Forecast. Forecast.PredictedValue is None
// when the series is too short, with the reason alongside.
type ForecastResult struct {
	Scope    guard.Operation   `json:"scope"`
	Forecast forecast.Result   `json:"forecast"`
	Rejected []guard.Rejection `json:"rejected"`
}

func members(sets []kpi.ScoreSet) []Member {
	out := make([]Member, 0, len(sets))
	for _, s := range sets {
		out = append(out, Member{
			SubmissionID: s.SubmissionID,
			AcademicYear: s.AcademicYear,
			Year:         s.Year,
			Overall:      s.Overall,
		})
	}
	return out
}

func rows(framework kpi.Framework, sets []kpi.ScoreSet) ([]Row, error) {
	defs, err := kpi.Definitions(framework)
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0, len(defs))
	for _, def := range defs {
		row := Row{KPIID: def.ID, Name: def.Name, Values: make([]Cell, 0, len(sets))}
		for _, s := range sets {
			cell := Cell{SubmissionID: s.SubmissionID, Year: s.Year}
			if r, ok := s.Result(def.ID); ok {
				cell.Value = r.Value
			}
			row.Values = append(row.Values, cell)
		}
		if n := len(row.Values); n > 1 {
			row.Delta = delta(row.Values[0].Value, row.Values[n-1].Value)
		}
		out = append(out, row)
	}
	return out, nil
}

func delta(first, last kpi.Score) kpi.Score {
	a, okA := first.Get()
	b, okB := last.Get()
	if !okA || !okB {
		return kpi.None()
	}
	return kpi.Some(b - a)
}

// checkKPI validates a KPI id against the scope's framework, or against every
// framework when no valid submission anchored one.
func checkKPI(framework kpi.Framework, kpiID string) error {
	if framework == "" {
		for _, f := range kpi.Frameworks() {
			if _, ok := kpi.Lookup(f, kpiID); ok {
				return nil
			}
		}
		return faults.New(
			faults.KindInvalidInput,
			fmt.Sprintf("kpi %q is not defined", kpiID),
			map[string]any{"kpi_id": kpiID},
		)
	}
	if _, ok := kpi.Lookup(framework, kpiID); !ok {
		return faults.New(
			faults.KindInvalidInput,
			fmt.Sprintf("kpi %q is not defined for %s", kpiID, framework.Title()),
			map[string]any{"kpi_id": kpiID, "framework": string(framework)},
		)
	}
	return nil
}
