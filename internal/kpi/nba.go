package kpi

import "github.com/JaimeStill/accredit/internal/evidence"

func nbaDefinitions() []Definition {
	return []Definition{
		{
			ID:        "peos_psos",
			Name:      "Program Educational Objectives and Program Specific Outcomes",
			Framework: NBA,
			Weight:    0.20,
			Formula:   "0.5 PEOs + 0.5 PSOs; three or more items (or a paragraph) score 100, otherwise 50",
			Fields:    []evidence.FieldID{evidence.PEOs, evidence.PSOs},
			compute: func(t *terms) {
				narratives(t, ruleObjectives,
					weighted{"peos", evidence.PEOs, 0.5},
					weighted{"psos", evidence.PSOs, 0.5},
				)
			},
		},
		{
			ID:        "faculty_quality",
			Name:      "Faculty Information and Contributions",
			Framework: NBA,
			Weight:    0.20,
			Formula:   "0.40 banded FSR + 0.30 PhD faculty share (60% = 100) + 0.30 development programmes (10 = 100)",
			Fields: []evidence.FieldID{
				evidence.FacultyCount, evidence.StudentCount, evidence.PhDFaculty, evidence.FDPCount,
			},
			compute: nbaFacultyQuality,
		},
		{
			ID:        "student_performance",
			Name:      "Student Performance",
			Framework: NBA,
			Weight:    0.20,
			Formula:   "0.40 placement rate + 0.30 pass percentage + 0.30 higher studies share of students",
			Fields: []evidence.FieldID{
				evidence.PlacementRate, evidence.StudentsPlaced, evidence.StudentsEligible, evidence.PassPercentage,
				evidence.HigherStudiesCount, evidence.StudentCount,
			},
			compute: nbaStudentPerformance,
		},
		{
			ID:        "continuous_improvement",
			Name:      "Continuous Improvement",
			Framework: NBA,
			Weight:    0.20,
			Formula:   "0.5 action plan + 0.5 feedback analysis; any listed item (or a paragraph) scores 100, otherwise 50",
			Fields:    []evidence.FieldID{evidence.ActionPlan, evidence.FeedbackAnalysis},
			compute: func(t *terms) {
				narratives(t, ruleProcess,
					weighted{"action_plan", evidence.ActionPlan, 0.5},
					weighted{"feedback_analysis", evidence.FeedbackAnalysis, 0.5},
				)
			},
		},
		{
			ID:        "co_po_mapping",
			Name:      "Course Outcome to Program Outcome Mapping",
			Framework: NBA,
			Weight:    0.20,
			Formula:   "documented mapping scores 100 when it lists entries or runs to a paragraph, otherwise 50",
			Fields:    []evidence.FieldID{evidence.COPOMapping},
			compute: func(t *terms) {
				narratives(t, ruleProcess, weighted{"co_po_mapping", evidence.COPOMapping, 1.0})
			},
		},
	}
}

type weighted struct {
	name   string
	field  evidence.FieldID
	weight float64
}

// narratives scores a set of qualitative fields under one rule. Every field
// is required.
func narratives(t *terms, rule narrativeRule, fields ...weighted) {
	values := make([]evidence.Value, len(fields))
	for i, w := range fields {
		values[i] = t.narrative(w.field)
	}
	if !t.ok {
		return
	}
	for i, w := range fields {
		t.add(w.name, values[i].String(), rule.score(values[i]), w.weight)
	}
}

func nbaFacultyQuality(t *terms) {
	faculty := t.positive(evidence.FacultyCount)
	students := t.number(evidence.StudentCount)
	phd := t.number(evidence.PhDFaculty)
	fdp := t.number(evidence.FDPCount)
	if !t.ok {
		return
	}

	ratio := students / faculty
	phdShare := percent(phd, faculty)

	t.add("student_faculty_ratio", round2(ratio), SteppedFSR(ratio), 0.40)
	t.add("phd_faculty_percentage", round2(phdShare), per(phdShare, 60), 0.30)
	t.add("fdp_count", fdp, per(fdp, 10), 0.30)
}

func nbaStudentPerformance(t *terms) {
	placement := t.placement()
	pass := t.number(evidence.PassPercentage)
	higher := t.number(evidence.HigherStudiesCount)
	students := t.positive(evidence.StudentCount)
	if !t.ok {
		return
	}

	higherShare := percent(higher, students)

	t.add("placement_rate", round2(placement), placement, 0.40)
	t.add("pass_percentage", pass, pass, 0.30)
	t.add("higher_studies_percentage", round2(higherShare), higherShare, 0.30)
}
