package evidence

import (
	"fmt"
	"slices"
)

// Kind is the value shape an evidence field carries.
type Kind string

const (
	KindNumber    Kind = "number"
	KindNarrative Kind = "narrative"
	KindFlag      Kind = "flag"
)

// FieldID identifies a known evidence field. The set is closed: unknown
// identifiers are rejected at parse time rather than silently reading as absent.
type FieldID string

const (
	FacultyCount       FieldID = "faculty_count"
	StudentCount       FieldID = "student_count"
	BuiltUpArea        FieldID = "built_up_area"
	ClassroomCount     FieldID = "classroom_count"
	LibraryArea        FieldID = "library_area"
	DigitalResources   FieldID = "digital_resources"
	DigitalLibrary     FieldID = "digital_library"
	HostelCapacity     FieldID = "hostel_capacity"
	StudentsPlaced     FieldID = "students_placed"
	StudentsEligible   FieldID = "students_eligible"
	PlacementRate      FieldID = "placement_rate"
	LabsAvailable      FieldID = "labs_available"
	LabsRequired       FieldID = "labs_required"
	PhDFaculty         FieldID = "phd_faculty"
	FDPCount           FieldID = "fdp_count"
	PassPercentage     FieldID = "pass_percentage"
	HigherStudiesCount FieldID = "higher_studies_count"

	PEOs             FieldID = "peos"
	PSOs             FieldID = "psos"
	ActionPlan       FieldID = "action_plan"
	FeedbackAnalysis FieldID = "feedback_analysis"
	COPOMapping      FieldID = "co_po_mapping"

	CurriculumDesign         FieldID = "curriculum_design"
	CurriculumImplementation FieldID = "curriculum_implementation"
	AcademicFlexibility      FieldID = "academic_flexibility"
	TeachingLearning         FieldID = "teaching_learning"
	EvaluationProcess        FieldID = "evaluation_process"
	Publications             FieldID = "publications"
	ResearchProjects         FieldID = "research_projects"
	ExtensionActivities      FieldID = "extension_activities"
	LibraryBooks             FieldID = "library_books"
	ITInfrastructure         FieldID = "it_infrastructure"
	StudentSupport           FieldID = "student_support"
	ProgressionRate          FieldID = "progression_rate"
	StudentParticipation     FieldID = "student_participation"
	Governance               FieldID = "governance"
	Leadership               FieldID = "leadership"
	Management               FieldID = "management"
	InstitutionalValues      FieldID = "institutional_values"
	BestPractices            FieldID = "best_practices"

	FinancialResources    FieldID = "financial_resources"
	Citations             FieldID = "citations"
	Patents               FieldID = "patents"
	GraduationRate        FieldID = "graduation_rate"
	WomenStudents         FieldID = "women_students"
	DisadvantagedStudents FieldID = "disadvantaged_students"
	OutreachActivities    FieldID = "outreach_activities"
	PeerPerception        FieldID = "peer_perception"
	EmployerPerception    FieldID = "employer_perception"
	PublicPerception      FieldID = "public_perception"
)

var catalog = map[FieldID]Kind{
	FacultyCount:       KindNumber,
	StudentCount:       KindNumber,
	BuiltUpArea:        KindNumber,
	ClassroomCount:     KindNumber,
	LibraryArea:        KindNumber,
	DigitalResources:   KindNumber,
	DigitalLibrary:     KindFlag,
	HostelCapacity:     KindNumber,
	StudentsPlaced:     KindNumber,
	StudentsEligible:   KindNumber,
	PlacementRate:      KindNumber,
	LabsAvailable:      KindNumber,
	LabsRequired:       KindNumber,
	PhDFaculty:         KindNumber,
	FDPCount:           KindNumber,
	PassPercentage:     KindNumber,
	HigherStudiesCount: KindNumber,

	PEOs:             KindNarrative,
	PSOs:             KindNarrative,
	ActionPlan:       KindNarrative,
	FeedbackAnalysis: KindNarrative,
	COPOMapping:      KindNarrative,

	CurriculumDesign:         KindNarrative,
	CurriculumImplementation: KindNarrative,
	AcademicFlexibility:      KindNarrative,
	TeachingLearning:         KindNarrative,
	EvaluationProcess:        KindNarrative,
	Publications:             KindNumber,
	ResearchProjects:         KindNumber,
	ExtensionActivities:      KindNumber,
	LibraryBooks:             KindNumber,
	ITInfrastructure:         KindNarrative,
	StudentSupport:           KindNarrative,
	ProgressionRate:          KindNumber,
	StudentParticipation:     KindNumber,
	Governance:               KindNarrative,
	Leadership:               KindNarrative,
	Management:               KindNarrative,
	InstitutionalValues:      KindNarrative,
	BestPractices:            KindNarrative,

	FinancialResources:    KindNumber,
	Citations:             KindNumber,
	Patents:               KindNumber,
	GraduationRate:        KindNumber,
	WomenStudents:         KindNumber,
	DisadvantagedStudents: KindNumber,
	OutreachActivities:    KindNumber,
	PeerPerception:        KindNumber,
	EmployerPerception:    KindNumber,
	PublicPerception:      KindNumber,
}

// ParseFieldID validates a field name against the known catalog.
func ParseFieldID(s string) (FieldID, error) {
	f := FieldID(s)
	if _, ok := catalog[f]; !ok {
		return "", fmt.Errorf("unknown field_id %q", s)
	}
	return f, nil
}

// Kind returns the value kind declared for the field.
func (f FieldID) Kind() Kind {
	return catalog[f]
}

// Known reports whether the field is part of the catalog.
func (f FieldID) Known() bool {
	_, ok := catalog[f]
	return ok
}

// Fields returns every known field, sorted by name.
func Fields() []FieldID {
	fields := make([]FieldID, 0, len(catalog))
	for f := range catalog {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}
