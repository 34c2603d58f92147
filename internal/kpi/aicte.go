package kpi

import (
	"math"

	"github.com/JaimeStill/accredit/internal/evidence"
)

func aicteDefinitions() []Definition {
	return []Definition{
		{
			ID:        "fsr_score",
			Name:      "Faculty-Student Ratio Score",
			Framework: AICTE,
			Weight:    0.25,
			Formula:   "ratio = students / faculty; 100 up to 15, 100-8(r-15) to 20, max(0, 60-3(r-20)) beyond",
			Fields:    []evidence.FieldID{evidence.FacultyCount, evidence.StudentCount},
			compute:   aicteFSR,
		},
		{
			ID:        "infrastructure_score",
			Name:      "Infrastructure Adequacy Score",
			Framework: AICTE,
			Weight:    0.25,
			Formula:   "0.40 built-up area + 0.25 classrooms + 0.15 library + 0.10 digital resources + 0.10 hostel, each against its per-student norm",
			Fields: []evidence.FieldID{
				evidence.StudentCount, evidence.FacultyCount, evidence.BuiltUpArea,
				evidence.ClassroomCount, evidence.LibraryArea, evidence.DigitalResources,
				evidence.HostelCapacity,
			},
			Composite: true,
			compute:   aicteInfrastructure,
		},
		{
			ID:        "placement_index",
			Name:      "Placement Index",
			Framework: AICTE,
			Weight:    0.25,
			Formula:   "the reported placement rate, or students placed / students eligible x 100",
			Fields:    []evidence.FieldID{evidence.PlacementRate, evidence.StudentsPlaced, evidence.StudentsEligible},
			compute:   aictePlacement,
		},
		{
			ID:        "lab_compliance_index",
			Name:      "Lab Compliance Index",
			Framework: AICTE,
			Weight:    0.25,
			Formula:   "labs available / labs required x 100; required defaults to max(5, students / 50)",
			Fields:    []evidence.FieldID{evidence.LabsAvailable, evidence.StudentCount},
			compute:   aicteLabs,
		},
	}
}

func aicteFSR(t *terms) {
	faculty := t.positive(evidence.FacultyCount)
	students := t.positive(evidence.StudentCount)
	if !t.ok {
		return
	}

	ratio := students / faculty
	t.add("student_faculty_ratio", round2(ratio), FSRCurve(ratio), 1.0)
}

// aicteInfrastructure is a composite: a sub-component without evidence
// contributes zero instead of nulling the whole score.
func aicteInfrastructure(t *terms) {
	g := t.g
	students, hasStudents := g.Number(evidence.StudentCount)
	hasStudents = hasStudents && students > 0
	faculty, hasFaculty := g.Number(evidence.FacultyCount)
	hasFaculty = hasFaculty && faculty > 0

	scored := 0
	// per-student components are skipped without reading their field when
	// the student count is unusable
	sub := func(name string, weight float64, field evidence.FieldID, norm func(float64) float64) {
		if !hasStudents {
			t.skipped(name, weight, evidence.StudentCount)
			return
		}
		v, ok := g.Number(field)
		if !ok {
			t.absent(name, weight)
			return
		}
		t.add(name, v, norm(v), weight)
		scored++
	}

	sub("built_up_area", 0.40, evidence.BuiltUpArea, func(v float64) float64 {
		return percent(v, students*4)
	})
	sub("classroom_count", 0.25, evidence.ClassroomCount, func(v float64) float64 {
		return percent(v, math.Ceil(students/40))
	})
	sub("library_area", 0.15, evidence.LibraryArea, func(v float64) float64 {
		return percent(v, students*0.5)
	})

	switch {
	case g.Has(evidence.DigitalResources) && hasFaculty:
		v, _ := g.Number(evidence.DigitalResources)
		t.add("digital_resources", v, percent(v, faculty*10), 0.10)
		scored++
	case g.Has(evidence.DigitalLibrary):
		available, _ := g.Flag(evidence.DigitalLibrary)
		score := 0.0
		if available {
			score = 50
		}
		t.add("digital_resources", available, score, 0.10)
		scored++
	case g.Has(evidence.DigitalResources):
		t.skipped("digital_resources", 0.10, evidence.FacultyCount)
	default:
		g.Number(evidence.DigitalResources)
		t.absent("digital_resources", 0.10)
	}

	sub("hostel_capacity", 0.10, evidence.HostelCapacity, func(v float64) float64 {
		return percent(v, students*0.4)
	})

	if scored == 0 {
		t.undefined("no infrastructure sub-component has evidence")
	}
}

func aictePlacement(t *terms) {
	rate := t.placement()
	if !t.ok {
		return
	}
	t.add("placement_rate", round2(rate), rate, 1.0)
}

func aicteLabs(t *terms) {
	available := t.number(evidence.LabsAvailable)

	var required float64
	if t.g.Has(evidence.LabsRequired) {
		required = t.positive(evidence.LabsRequired)
	} else {
		students := t.positive(evidence.StudentCount)
		required = math.Max(5, math.Floor(students/50))
	}
	if !t.ok {
		return
	}

	t.add("lab_compliance", round2(percent(available, required)), percent(available, required), 1.0)
}
