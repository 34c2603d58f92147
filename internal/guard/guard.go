// Package guard decides which score sets may take part in downstream views.
// Every function is stateless: the verdict for a set depends only on its
// arguments, and the operation filter is the single place where compare,
// trend and forecast decide which submissions they accept.
package guard

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/kpi"
)

// ErrDepartmentCount rejects a submission that does not name exactly one
// department. It is raised at creation, before scoring runs.
var ErrDepartmentCount = errors.New("submission must reference exactly one department")

// CheckDepartment returns the single department a submission references.
// Repeats of the same id count once.
func CheckDepartment(ids []string) (string, error) {
	var dept string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == dept {
			continue
		}
		if dept != "" {
			return "", fmt.Errorf("%w: got %q and %q", ErrDepartmentCount, dept, id)
		}
		dept = id
	}
	if dept == "" {
		return "", fmt.Errorf("%w: none given", ErrDepartmentCount)
	}
	return dept, nil
}

// Verdict is the outcome of Evaluate.
type Verdict struct {
	Status  kpi.Status    `json:"status"`
	Reasons []string      `json:"reasons,omitempty"`
	Fault   *faults.Error `json:"fault,omitempty"`
}

// Reason joins the individual reasons in evaluation order.
func (v Verdict) Reason() string {
	return strings.Join(v.Reasons, "; ")
}

// Evaluate seals a completed score set as valid or invalid. The sufficiency
// fraction is supplied by the extraction side and must lie in [0,1].
func Evaluate(set *kpi.ScoreSet, sufficiency float64) (Verdict, error) {
	if math.IsNaN(sufficiency) || sufficiency < 0 || sufficiency > 1 {
		return Verdict{}, faults.Newf(faults.KindInvalidInput, "sufficiency %v outside [0,1]", sufficiency)
	}

	var reasons []string
	kind := faults.KindInvalidSubmission

	overall, ok := set.Overall.Get()
	switch {
	case !ok:
		reasons = append(reasons, "overall score is insufficient data")
	case overall == 0:
		reasons = append(reasons, "overall score is zero")
	}

	if sufficiency == 0 {
		reasons = append(reasons, "no required evidence present")
	}

	if set.Scored() == 0 {
		kind = faults.KindNoValidKPI
		reasons = append(reasons, "no KPI has a value")
	}

	for _, id := range sortedKeys(set.Results) {
		r := set.Results[id]
		if !r.Value.IsNone() && len(r.EvidenceRefs) == 0 {
			reasons = append(reasons, fmt.Sprintf("%s has a value without evidence", id))
		}
	}

	v := Verdict{Status: kpi.StatusValid, Reasons: reasons}
	if len(reasons) > 0 {
		v.Status = kpi.StatusInvalid
		v.Fault = faults.New(kind, v.Reason(), map[string]any{
			"submission_id": set.SubmissionID.String(),
			"sufficiency":   sufficiency,
		})
	}

	set.Sufficiency = sufficiency
	if err := set.Seal(v.Status, v.Reason()); err != nil {
		return Verdict{}, err
	}
	return v, nil
}
