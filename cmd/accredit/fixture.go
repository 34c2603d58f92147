package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/internal/scoring"
	"github.com/JaimeStill/accredit/internal/validation"
)

// Fixture is a file of submissions with their extracted evidence. YAML and
// JSON are both accepted.
type Fixture struct {
	Submissions []FixtureSubmission `yaml:"submissions" validate:"required,min=1,dive"`
}

// FixtureSubmission is one submission in a fixture file.
type FixtureSubmission struct {
	Name          string               `yaml:"name"`
	InstitutionID string               `yaml:"institution_id" validate:"required"`
	DepartmentIDs []string             `yaml:"department_ids" validate:"required"`
	AcademicYear  string               `yaml:"academic_year" validate:"required,academic_year"`
	Framework     string               `yaml:"framework" validate:"required,framework"`
	Sufficiency   *float64             `yaml:"sufficiency,omitempty" validate:"omitempty,gte=0,lte=1"`
	Evidence      []evidence.RawRecord `yaml:"evidence" validate:"dive"`
}

func (s FixtureSubmission) input() (scoring.Input, error) {
	f, err := kpi.ParseFramework(s.Framework)
	if err != nil {
		return scoring.Input{}, err
	}
	return scoring.Input{
		InstitutionID: s.InstitutionID,
		DepartmentIDs: s.DepartmentIDs,
		AcademicYear:  s.AcademicYear,
		Framework:     f,
		Records:       s.Evidence,
		Sufficiency:   s.Sufficiency,
	}, nil
}

// label names a submission in output: its name when set, otherwise its
// position in the file.
func (s FixtureSubmission) label(i int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("#%d", i)
}

func loadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}

	if err := validation.Struct(fx); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}

	return &fx, nil
}

func (fx *Fixture) inputs() ([]scoring.Input, error) {
	out := make([]scoring.Input, len(fx.Submissions))
	for i, s := range fx.Submissions {
		in, err := s.input()
		if err != nil {
			return nil, fmt.Errorf("submission %s: %w", s.label(i), err)
		}
		out[i] = in
	}
	return out, nil
}
