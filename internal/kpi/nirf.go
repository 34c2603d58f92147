package kpi

import "github.com/JaimeStill/accredit/internal/evidence"

func nirfDefinitions() []Definition {
	return []Definition{
		{
			ID:        "tlr",
			Name:      "Teaching, Learning and Resources",
			Framework: NIRF,
			Weight:    0.30,
			Formula:   "0.30 student strength (2000 = 100) + 0.30 banded FSR + 0.20 financial resources (10 crore = 100) + 0.20 library books (50000 = 100)",
			Fields: []evidence.FieldID{
				evidence.StudentCount, evidence.FacultyCount, evidence.FinancialResources, evidence.LibraryBooks,
			},
			compute: nirfTLR,
		},
		{
			ID:        "rp",
			Name:      "Research and Professional Practice",
			Framework: NIRF,
			Weight:    0.30,
			Formula:   "0.40 publications (100 = 100) + 0.30 citations (500 = 100) + 0.30 patents (10 = 100)",
			Fields:    []evidence.FieldID{evidence.Publications, evidence.Citations, evidence.Patents},
			compute: func(t *terms) {
				counts(t,
					scaled{"publications", evidence.Publications, 100, 0.40},
					scaled{"citations", evidence.Citations, 500, 0.30},
					scaled{"patents", evidence.Patents, 10, 0.30},
				)
			},
		},
		{
			ID:        "go",
			Name:      "Graduation Outcomes",
			Framework: NIRF,
			Weight:    0.20,
			Formula:   "0.40 placement rate + 0.30 higher studies share of students + 0.30 graduation rate",
			Fields: []evidence.FieldID{
				evidence.PlacementRate, evidence.StudentsPlaced, evidence.StudentsEligible, evidence.HigherStudiesCount,
				evidence.StudentCount, evidence.GraduationRate,
			},
			compute: nirfGO,
		},
		{
			ID:        "oi",
			Name:      "Outreach and Inclusivity",
			Framework: NIRF,
			Weight:    0.10,
			Formula:   "0.40 women students (40% = 100) + 0.30 disadvantaged students (20% = 100) + 0.30 outreach activities (10 = 100)",
			Fields: []evidence.FieldID{
				evidence.WomenStudents, evidence.DisadvantagedStudents, evidence.StudentCount, evidence.OutreachActivities,
			},
			compute: nirfOI,
		},
		{
			ID:        "pr",
			Name:      "Perception",
			Framework: NIRF,
			Weight:    0.10,
			Formula:   "0.5 peer perception + 0.3 employer perception + 0.2 public perception",
			Fields: []evidence.FieldID{
				evidence.PeerPerception, evidence.EmployerPerception, evidence.PublicPerception,
			},
			compute: func(t *terms) {
				counts(t,
					scaled{"peer_perception", evidence.PeerPerception, 100, 0.5},
					scaled{"employer_perception", evidence.EmployerPerception, 100, 0.3},
					scaled{"public_perception", evidence.PublicPerception, 100, 0.2},
				)
			},
		},
	}
}

func nirfTLR(t *terms) {
	students := t.number(evidence.StudentCount)
	faculty := t.positive(evidence.FacultyCount)
	financial := t.number(evidence.FinancialResources)
	books := t.number(evidence.LibraryBooks)
	if !t.ok {
		return
	}

	ratio := students / faculty

	t.add("student_strength", students, per(students, 2000), 0.30)
	t.add("student_faculty_ratio", round2(ratio), SteppedFSR(ratio), 0.30)
	t.add("financial_resources", financial, per(financial, 10), 0.20)
	t.add("library_books", books, per(books, 50000), 0.20)
}

func nirfGO(t *terms) {
	placement := t.placement()
	higher := t.number(evidence.HigherStudiesCount)
	students := t.positive(evidence.StudentCount)
	graduation := t.number(evidence.GraduationRate)
	if !t.ok {
		return
	}

	higherShare := percent(higher, students)

	t.add("placement_rate", round2(placement), placement, 0.40)
	t.add("higher_studies_percentage", round2(higherShare), higherShare, 0.30)
	t.add("graduation_rate", graduation, graduation, 0.30)
}

func nirfOI(t *terms) {
	women := t.number(evidence.WomenStudents)
	disadvantaged := t.number(evidence.DisadvantagedStudents)
	students := t.positive(evidence.StudentCount)
	outreach := t.number(evidence.OutreachActivities)
	if !t.ok {
		return
	}

	womenShare := percent(women, students)
	disadvantagedShare := percent(disadvantaged, students)

	t.add("women_percentage", round2(womenShare), per(womenShare, 40), 0.40)
	t.add("disadvantaged_percentage", round2(disadvantagedShare), per(disadvantagedShare, 20), 0.30)
	t.add("outreach_activities", outreach, per(outreach, 10), 0.30)
}
