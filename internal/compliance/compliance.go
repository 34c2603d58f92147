// Package compliance raises regulatory flags over a scored submission.
// Flags are advisory: they never alter a KPI value or the guard verdict.
package compliance

import (
	"fmt"
	"slices"

	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/kpi"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Flag is one raised rule.
type Flag struct {
	RuleID       string   `json:"rule_id"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	KPIID        string   `json:"kpi_id,omitempty"`
	EvidenceRefs []string `json:"evidence_refs"`
}

type rule struct {
	id         string
	severity   Severity
	frameworks []kpi.Framework
	check      func(g *evidence.Gate, results map[string]kpi.Result) (kpiID, message string, raised bool)
}

var rules = []rule{
	{
		id:         "low_fsr",
		severity:   SeverityMedium,
		frameworks: []kpi.Framework{kpi.AICTE},
		check: func(g *evidence.Gate, _ map[string]kpi.Result) (string, string, bool) {
			faculty, okF := g.Number(evidence.FacultyCount)
			students, okS := g.Number(evidence.StudentCount)
			if !okF || !okS || faculty <= 0 {
				return "", "", false
			}
			ratio := students / faculty
			return "fsr_score", fmt.Sprintf("student-faculty ratio %.1f exceeds the norm of 20", ratio), ratio > 20
		},
	},
	{
		id:         "placement_issues",
		severity:   SeverityMedium,
		frameworks: []kpi.Framework{kpi.AICTE},
		check: func(_ *evidence.Gate, results map[string]kpi.Result) (string, string, bool) {
			r, ok := results["placement_index"]
			if !ok {
				return "", "", false
			}
			v, ok := r.Value.Get()
			if !ok {
				return "", "", false
			}
			return r.KPIID, fmt.Sprintf("placement index %.2f is below 50", v), v < 50
		},
	},
	{
		id:       "students_below_faculty",
		severity: SeverityHigh,
		check: func(g *evidence.Gate, _ map[string]kpi.Result) (string, string, bool) {
			if !g.Has(evidence.FacultyCount) || !g.Has(evidence.StudentCount) {
				return "", "", false
			}
			faculty, _ := g.Number(evidence.FacultyCount)
			students, _ := g.Number(evidence.StudentCount)
			return "", fmt.Sprintf("student_count %.0f is below faculty_count %.0f", students, faculty), students < faculty
		},
	},
	{
		id:       "placed_exceeds_eligible",
		severity: SeverityHigh,
		check: func(g *evidence.Gate, _ map[string]kpi.Result) (string, string, bool) {
			if !g.Has(evidence.StudentsPlaced) || !g.Has(evidence.StudentsEligible) {
				return "", "", false
			}
			placed, _ := g.Number(evidence.StudentsPlaced)
			eligible, _ := g.Number(evidence.StudentsEligible)
			return "", fmt.Sprintf("students_placed %.0f exceeds students_eligible %.0f", placed, eligible), placed > eligible
		},
	},
	{
		id:       "non_positive_area",
		severity: SeverityHigh,
		check: func(g *evidence.Gate, _ map[string]kpi.Result) (string, string, bool) {
			if !g.Has(evidence.BuiltUpArea) {
				return "", "", false
			}
			area, _ := g.Number(evidence.BuiltUpArea)
			return "", fmt.Sprintf("built_up_area %.2f is not positive", area), area <= 0
		},
	},
}

// Check runs every rule that applies to the framework.
func Check(f kpi.Framework, m evidence.Map, results map[string]kpi.Result) []Flag {
	flags := []Flag{}
	for _, r := range rules {
		if !applies(r, f) {
			continue
		}

		g := evidence.NewGate(m)
		kpiID, msg, raised := r.check(g, results)
		if !raised {
			continue
		}

		refs := g.Refs()
		if len(refs) == 0 && kpiID != "" {
			refs = slices.Clone(results[kpiID].EvidenceRefs)
		}

		flags = append(flags, Flag{
			RuleID:       r.id,
			Severity:     r.severity,
			Message:      msg,
			KPIID:        kpiID,
			EvidenceRefs: refs,
		})
	}
	return flags
}

// Highest returns the most severe flag level raised, or "" when none.
func Highest(flags []Flag) Severity {
	var out Severity
	for _, f := range flags {
		switch {
		case f.Severity == SeverityHigh:
			return SeverityHigh
		case f.Severity == SeverityMedium:
			out = SeverityMedium
		case out == "":
			out = f.Severity
		}
	}
	return out
}

func applies(r rule, f kpi.Framework) bool {
	return len(r.frameworks) == 0 || slices.Contains(r.frameworks, f)
}
