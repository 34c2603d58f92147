package guard

import (
	"fmt"
	"slices"

	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/kpi"
)

// OperationKind names a multi-submission view.
type OperationKind string

const (
	Compare  OperationKind = "compare"
	Trend    OperationKind = "trend"
	Forecast OperationKind = "forecast"
)

// Operation scopes a multi-submission view. Empty scope fields are anchored
// on the first valid set in the input.
type Operation struct {
	Kind          OperationKind `json:"kind"`
	InstitutionID string        `json:"institution_id,omitempty"`
	DepartmentID  string        `json:"department_id,omitempty"`
	Framework     kpi.Framework `json:"framework,omitempty"`
}

// Rejection records a set excluded from an operation and why.
type Rejection struct {
	Set   kpi.ScoreSet  `json:"submission"`
	Fault *faults.Error `json:"fault"`
}

// ValidateForOperation partitions sets into those an operation may use and
// those it must exclude. Input order is preserved in both results.
func ValidateForOperation(sets []kpi.ScoreSet, op Operation) ([]kpi.ScoreSet, []Rejection) {
	op = anchor(sets, op)

	accepted := make([]kpi.ScoreSet, 0, len(sets))
	var rejected []Rejection

	for _, s := range sets {
		if f := check(s, op); f != nil {
			rejected = append(rejected, Rejection{Set: s, Fault: f})
			continue
		}
		accepted = append(accepted, s)
	}

	return accepted, rejected
}

// Scope returns the operation with its empty fields anchored, as
// ValidateForOperation would use it.
func Scope(sets []kpi.ScoreSet, op Operation) Operation {
	return anchor(sets, op)
}

func anchor(sets []kpi.ScoreSet, op Operation) Operation {
	for _, s := range sets {
		if !s.Valid() || s.Scored() == 0 {
			continue
		}
		if op.InstitutionID == "" {
			op.InstitutionID = s.InstitutionID
		}
		if op.DepartmentID == "" {
			op.DepartmentID = s.DepartmentID
		}
		if op.Framework == "" {
			op.Framework = s.Framework
		}
		break
	}
	return op
}

func check(s kpi.ScoreSet, op Operation) *faults.Error {
	ctx := map[string]any{
		"submission_id": s.SubmissionID.String(),
		"operation":     string(op.Kind),
	}

	switch {
	case !s.Valid():
		reason := s.InvalidReason
		if s.Status != kpi.StatusInvalid {
			reason = "verdict is " + string(s.Status)
		}
		ctx["status"] = string(s.Status)
		return faults.New(faults.KindInvalidSubmission,
			fmt.Sprintf("submission %s is not valid: %s", s.SubmissionID, reason), ctx)
	case s.Scored() == 0:
		ctx["status"] = string(s.Status)
		return faults.New(faults.KindInvalidSubmission,
			fmt.Sprintf("submission %s has no scored KPI", s.SubmissionID), ctx)
	case s.InstitutionID != op.InstitutionID:
		ctx["expected"], ctx["actual"] = op.InstitutionID, s.InstitutionID
		return faults.New(faults.KindInstitutionMismatch,
			fmt.Sprintf("submission %s belongs to institution %s, not %s", s.SubmissionID, s.InstitutionID, op.InstitutionID), ctx)
	case s.DepartmentID != op.DepartmentID:
		ctx["expected"], ctx["actual"] = op.DepartmentID, s.DepartmentID
		return faults.New(faults.KindDepartmentMismatch,
			fmt.Sprintf("submission %s belongs to department %s, not %s", s.SubmissionID, s.DepartmentID, op.DepartmentID), ctx)
	case s.Framework != op.Framework:
		ctx["expected"], ctx["actual"] = string(op.Framework), string(s.Framework)
		return faults.New(faults.KindFrameworkMismatch,
			fmt.Sprintf("submission %s was scored under %s, not %s", s.SubmissionID, s.Framework, op.Framework), ctx)
	}
	return nil
}

// Mismatches returns the rejections caused by an entity mismatch rather than
// an invalid verdict.
func Mismatches(rejected []Rejection) []Rejection {
	out := slices.Clone(rejected)
	return slices.DeleteFunc(out, func(r Rejection) bool {
		return r.Fault.Kind == faults.KindInvalidSubmission
	})
}

func sortedKeys(results map[string]kpi.Result) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
