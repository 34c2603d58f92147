package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/internal/kpi"
)

// memorySource serves score sets scored from a fixture file.
type memorySource struct {
	sets  map[uuid.UUID]kpi.ScoreSet
	order []uuid.UUID
}

func newMemorySource() *memorySource {
	return &memorySource{sets: map[uuid.UUID]kpi.ScoreSet{}}
}

func (m *memorySource) add(s kpi.ScoreSet) {
	if _, ok := m.sets[s.SubmissionID]; !ok {
		m.order = append(m.order, s.SubmissionID)
	}
	m.sets[s.SubmissionID] = s
}

func (m *memorySource) FindMany(ctx context.Context, ids []uuid.UUID) ([]kpi.ScoreSet, error) {
	out := make([]kpi.ScoreSet, 0, len(ids))
	for _, id := range ids {
		s, ok := m.sets[id]
		if !ok {
			return nil, fmt.Errorf("submission %s not in fixture", id)
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memorySource) History(ctx context.Context, institutionID string, framework kpi.Framework) ([]kpi.ScoreSet, error) {
	var out []kpi.ScoreSet
	for _, id := range m.order {
		s := m.sets[id]
		if s.InstitutionID == institutionID && s.Framework == framework {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b kpi.ScoreSet) int { return a.Year - b.Year })
	return out, nil
}
