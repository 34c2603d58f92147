package submissions_test

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/internal/submissions"
	"github.com/JaimeStill/accredit/pkg/lifecycle"
	"github.com/JaimeStill/accredit/pkg/storage"
)

var columns = []string{
	"id", "parent_id", "institution_id", "department_id", "academic_year", "year",
	"framework", "overall_score", "sufficiency", "status", "invalid_reason",
	"results", "flags", "evidence_key", "computed_at", "created_at",
}

var stamp = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// memStore is an in-memory storage.System.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Start(*lifecycle.Coordinator) error { return nil }

func (s *memStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func record(id, field string, v any, page int) evidence.RawRecord {
	return evidence.RawRecord{
		ID:               id,
		FieldID:          field,
		RawValue:         v,
		Snippet:          field + " as reported",
		PageNumber:       page,
		SourceDocumentID: "ssr.pdf",
	}
}

func aicteRecords() []evidence.RawRecord {
	return []evidence.RawRecord{
		record("f1", "faculty_count", 50.0, 4),
		record("s1", "student_count", 900.0, 5),
		record("p1", "students_placed", 40.0, 9),
		record("e1", "students_eligible", 100.0, 9),
	}
}

func createCommand() submissions.CreateCommand {
	return submissions.CreateCommand{
		InstitutionID: "inst-x",
		DepartmentIDs: []string{"cse"},
		AcademicYear:  "2023-24",
		Framework:     "AICTE",
		Evidence:      aicteRecords(),
	}
}

// storedSubmission scores the AICTE fixture the way the repository would and
// returns the submission row plus its snapshot bytes.
func storedSubmission(t *testing.T, parent *uuid.UUID) (submissions.Submission, []byte) {
	t.Helper()

	m, err := evidence.NewMap(aicteRecords())
	if err != nil {
		t.Fatalf("NewMap failed: %v", err)
	}
	results, err := kpi.Compute(kpi.AICTE, m)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	id := uuid.New()
	s := submissions.Submission{
		ID:            id,
		ParentID:      parent,
		InstitutionID: "inst-x",
		DepartmentID:  "cse",
		AcademicYear:  "2023-24",
		Year:          2023,
		Framework:     kpi.AICTE,
		Overall:       kpi.Overall(results),
		Sufficiency:   0.5,
		Status:        kpi.StatusValid,
		IsValid:       true,
		Results:       results,
		EvidenceKey:   "evidence/" + id.String() + ".json",
		ComputedAt:    stamp,
		CreatedAt:     stamp,
	}

	snap, err := json.Marshal(submissions.Snapshot{
		SubmissionID:  id,
		InstitutionID: "inst-x",
		DepartmentIDs: []string{"cse"},
		AcademicYear:  "2023-24",
		Framework:     kpi.AICTE,
		Records:       aicteRecords(),
	})
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	return s, snap
}

func row(t *testing.T, s submissions.Submission) []driver.Value {
	t.Helper()

	results, err := json.Marshal(s.Results)
	if err != nil {
		t.Fatalf("marshal results: %v", err)
	}

	var parent driver.Value
	if s.ParentID != nil {
		parent = s.ParentID.String()
	}

	var overall driver.Value
	if v, ok := s.Overall.Get(); ok {
		overall = v
	}

	return []driver.Value{
		s.ID.String(), parent, s.InstitutionID, s.DepartmentID, s.AcademicYear, int64(s.Year),
		string(s.Framework), overall, s.Sufficiency, string(s.Status), s.InvalidReason,
		results, []byte("[]"), s.EvidenceKey, s.ComputedAt, s.CreatedAt,
	}
}

// uuidArg matches a uuid bound as a query argument.
type uuidArg uuid.UUID

func (a uuidArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s == uuid.UUID(a).String()
}
