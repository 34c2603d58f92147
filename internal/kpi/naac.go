package kpi

import "github.com/JaimeStill/accredit/internal/evidence"

func naacDefinitions() []Definition {
	return []Definition{
		{
			ID:        "criterion_1",
			Name:      "Criterion 1: Curricular Aspects",
			Framework: NAAC,
			Weight:    0.15,
			Formula:   "0.40 curriculum design + 0.30 implementation + 0.30 academic flexibility; listed evidence 100, prose 50",
			Fields: []evidence.FieldID{
				evidence.CurriculumDesign, evidence.CurriculumImplementation, evidence.AcademicFlexibility,
			},
			compute: func(t *terms) {
				narratives(t, ruleCriterion,
					weighted{"curriculum_design", evidence.CurriculumDesign, 0.40},
					weighted{"curriculum_implementation", evidence.CurriculumImplementation, 0.30},
					weighted{"academic_flexibility", evidence.AcademicFlexibility, 0.30},
				)
			},
		},
		{
			ID:        "criterion_2",
			Name:      "Criterion 2: Teaching-Learning and Evaluation",
			Framework: NAAC,
			Weight:    0.15,
			Formula:   "0.30 enrolment (1000 students = 100) + 0.40 teaching-learning process + 0.30 evaluation process",
			Fields: []evidence.FieldID{
				evidence.StudentCount, evidence.TeachingLearning, evidence.EvaluationProcess,
			},
			compute: naacTeaching,
		},
		{
			ID:        "criterion_3",
			Name:      "Criterion 3: Research, Innovations and Extension",
			Framework: NAAC,
			Weight:    0.15,
			Formula:   "0.40 publications (50 = 100) + 0.30 research projects (10 = 100) + 0.30 extension activities (5 = 100)",
			Fields: []evidence.FieldID{
				evidence.Publications, evidence.ResearchProjects, evidence.ExtensionActivities,
			},
			compute: func(t *terms) {
				counts(t,
					scaled{"publications", evidence.Publications, 50, 0.40},
					scaled{"research_projects", evidence.ResearchProjects, 10, 0.30},
					scaled{"extension_activities", evidence.ExtensionActivities, 5, 0.30},
				)
			},
		},
		{
			ID:        "criterion_4",
			Name:      "Criterion 4: Infrastructure and Learning Resources",
			Framework: NAAC,
			Weight:    0.15,
			Formula:   "0.40 built-up area (10000 sq m = 100) + 0.30 library books (50000 = 100) + 0.30 IT infrastructure",
			Fields: []evidence.FieldID{
				evidence.BuiltUpArea, evidence.LibraryBooks, evidence.ITInfrastructure,
			},
			compute: naacInfrastructure,
		},
		{
			ID:        "criterion_5",
			Name:      "Criterion 5: Student Support and Progression",
			Framework: NAAC,
			Weight:    0.15,
			Formula:   "0.40 student support + 0.30 progression rate + 0.30 participation share of students",
			Fields: []evidence.FieldID{
				evidence.StudentSupport, evidence.ProgressionRate, evidence.StudentParticipation, evidence.StudentCount,
			},
			compute: naacStudentSupport,
		},
		{
			ID:        "criterion_6",
			Name:      "Criterion 6: Governance, Leadership and Management",
			Framework: NAAC,
			Weight:    0.15,
			Formula:   "0.40 governance + 0.30 leadership + 0.30 management; listed evidence 100, prose 50",
			Fields:    []evidence.FieldID{evidence.Governance, evidence.Leadership, evidence.Management},
			compute: func(t *terms) {
				narratives(t, ruleCriterion,
					weighted{"governance", evidence.Governance, 0.40},
					weighted{"leadership", evidence.Leadership, 0.30},
					weighted{"management", evidence.Management, 0.30},
				)
			},
		},
		{
			ID:        "criterion_7",
			Name:      "Criterion 7: Institutional Values and Best Practices",
			Framework: NAAC,
			Weight:    0.10,
			Formula:   "0.5 institutional values + 0.5 best practices; listed evidence 100, prose 50",
			Fields:    []evidence.FieldID{evidence.InstitutionalValues, evidence.BestPractices},
			compute: func(t *terms) {
				narratives(t, ruleCriterion,
					weighted{"institutional_values", evidence.InstitutionalValues, 0.5},
					weighted{"best_practices", evidence.BestPractices, 0.5},
				)
			},
		},
	}
}

type scaled struct {
	name   string
	field  evidence.FieldID
	full   float64
	weight float64
}

// counts scores numeric fields against the value that earns full marks.
func counts(t *terms, fields ...scaled) {
	values := make([]float64, len(fields))
	for i, s := range fields {
		values[i] = t.number(s.field)
	}
	if !t.ok {
		return
	}
	for i, s := range fields {
		t.add(s.name, values[i], per(values[i], s.full), s.weight)
	}
}

func naacTeaching(t *terms) {
	students := t.number(evidence.StudentCount)
	teaching := t.narrative(evidence.TeachingLearning)
	evaluation := t.narrative(evidence.EvaluationProcess)
	if !t.ok {
		return
	}

	t.add("enrolment", students, per(students, 1000), 0.30)
	t.add("teaching_learning", teaching.String(), ruleCriterion.score(teaching), 0.40)
	t.add("evaluation_process", evaluation.String(), ruleCriterion.score(evaluation), 0.30)
}

func naacInfrastructure(t *terms) {
	area := t.number(evidence.BuiltUpArea)
	books := t.number(evidence.LibraryBooks)
	it := t.narrative(evidence.ITInfrastructure)
	if !t.ok {
		return
	}

	t.add("built_up_area", area, per(area, 10000), 0.40)
	t.add("library_books", books, per(books, 50000), 0.30)
	t.add("it_infrastructure", it.String(), ruleCriterion.score(it), 0.30)
}

func naacStudentSupport(t *terms) {
	support := t.narrative(evidence.StudentSupport)
	progression := t.number(evidence.ProgressionRate)
	participation := t.number(evidence.StudentParticipation)
	students := t.positive(evidence.StudentCount)
	if !t.ok {
		return
	}

	share := percent(participation, students)

	t.add("student_support", support.String(), ruleCriterion.score(support), 0.40)
	t.add("progression_rate", progression, progression, 0.30)
	t.add("participation_percentage", round2(share), share, 0.30)
}
