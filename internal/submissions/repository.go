package submissions

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/explain"
	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/internal/scoring"
	"github.com/JaimeStill/accredit/pkg/pagination"
	"github.com/JaimeStill/accredit/pkg/query"
	"github.com/JaimeStill/accredit/pkg/repository"
	"github.com/JaimeStill/accredit/pkg/storage"
)

const insertQuery = `
	INSERT INTO submissions(
		id, parent_id, institution_id, department_id, academic_year, year,
		framework, overall_score, sufficiency, status, invalid_reason,
		results, flags, evidence_key, computed_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING id, parent_id, institution_id, department_id, academic_year, year,
			  framework, overall_score, sufficiency, status, invalid_reason,
			  results, flags, evidence_key, computed_at, created_at`

type repo struct {
	db             *sql.DB
	storage        storage.System
	engine         *scoring.Engine
	logger         *slog.Logger
	pagination     pagination.Config
	snapshotPrefix string
}

// New creates a submission repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	engine *scoring.Engine,
	logger *slog.Logger,
	pagination pagination.Config,
	snapshotPrefix string,
) System {
	return &repo{
		db:             db,
		storage:        store,
		engine:         engine,
		logger:         logger.With("system", "submissions"),
		pagination:     pagination,
		snapshotPrefix: snapshotPrefix,
	}
}

func (r *repo) Handler(maxBodySize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxBodySize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Submission], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "InstitutionID", "DepartmentID", "AcademicYear")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	subs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSubmission)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}

	result := pagination.NewPageResult(subs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Submission, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSubmission)
	if err != nil {
		return nil, dbErrors.Map(err)
	}
	return &s, nil
}

func (r *repo) FindMany(ctx context.Context, ids []uuid.UUID) ([]kpi.ScoreSet, error) {
	if len(ids) == 0 {
		return []kpi.ScoreSet{}, nil
	}

	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	q, args := query.NewBuilder(projection).WhereIn("ID", values).Build()
	sets, err := repository.QueryMany(ctx, r.db, q, args, scanScoreSet)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}

	byID := make(map[uuid.UUID]kpi.ScoreSet, len(sets))
	for _, s := range sets {
		byID[s.SubmissionID] = s
	}

	ordered := make([]kpi.ScoreSet, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		ordered = append(ordered, s)
	}
	return ordered, nil
}

func (r *repo) History(ctx context.Context, institutionID string, framework kpi.Framework) ([]kpi.ScoreSet, error) {
	q, args := query.
		NewBuilder(projection, historySort...).
		WhereEquals("InstitutionID", institutionID).
		WhereEquals("Framework", framework).
		Build()

	sets, err := repository.QueryMany(ctx, r.db, q, args, scanScoreSet)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return sets, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Submission, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	in, err := cmd.input(uuid.New())
	if err != nil {
		return nil, faults.New(faults.KindInvalidInput, err.Error(), nil)
	}

	return r.store(ctx, in, nil)
}

func (r *repo) Reprocess(ctx context.Context, id uuid.UUID) (*Submission, error) {
	parent, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	snap, err := r.loadSnapshot(ctx, parent.EvidenceKey)
	if err != nil {
		return nil, err
	}

	in := scoring.Input{
		SubmissionID:  uuid.New(),
		InstitutionID: snap.InstitutionID,
		DepartmentIDs: snap.DepartmentIDs,
		AcademicYear:  snap.AcademicYear,
		Framework:     snap.Framework,
		Records:       snap.Records,
		Sufficiency:   snap.Sufficiency,
	}

	s, err := r.store(ctx, in, &parent.ID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("submission reprocessed", "id", s.ID, "parent_id", parent.ID)
	return s, nil
}

func (r *repo) Lineage(ctx context.Context, id uuid.UUID) (*Lineage, error) {
	root, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	for root.ParentID != nil {
		parent, err := r.Find(ctx, *root.ParentID)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		root = parent
	}

	lineage := &Lineage{Root: root.ID, Versions: []Submission{*root}}
	frontier := []uuid.UUID{root.ID}

	for len(frontier) > 0 {
		parentID := frontier[0]
		frontier = frontier[1:]

		q, args := query.
			NewBuilder(projection, query.SortField{Field: "CreatedAt"}).
			WhereEquals("ParentID", parentID).
			Build()

		children, err := repository.QueryMany(ctx, r.db, q, args, scanSubmission)
		if err != nil {
			return nil, fmt.Errorf("query lineage: %w", err)
		}

		for _, c := range children {
			lineage.Versions = append(lineage.Versions, c)
			frontier = append(frontier, c.ID)
		}
	}

	return lineage, nil
}

func (r *repo) Explain(ctx context.Context, id uuid.UUID, kpiID string) (*explain.Explanation, error) {
	s, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	result, ok := s.Results[kpiID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKPINotFound, kpiID)
	}

	snap, err := r.loadSnapshot(ctx, s.EvidenceKey)
	if err != nil {
		return nil, err
	}

	m, err := evidence.NewMap(snap.Records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotMissing, err)
	}

	e, err := explain.Explain(result, m)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	s, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM submissions WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return dbErrors.Map(err)
	}

	if delErr := r.storage.Delete(ctx, s.EvidenceKey); delErr != nil {
		r.logger.Warn(
			"snapshot delete failed after DB delete",
			"key", s.EvidenceKey,
			"error", delErr,
		)
	}

	r.logger.Info("submission deleted", "id", id)
	return nil
}

// store scores the input, uploads its evidence snapshot and inserts the
// sealed set. A failed insert removes the uploaded snapshot.
func (r *repo) store(ctx context.Context, in scoring.Input, parentID *uuid.UUID) (*Submission, error) {
	out, err := r.engine.Score(ctx, in)
	if err != nil {
		return nil, err
	}

	set := out.Set
	key := r.snapshotKey(set.SubmissionID)

	snapshot, err := json.Marshal(Snapshot{
		SubmissionID:  set.SubmissionID,
		InstitutionID: in.InstitutionID,
		DepartmentIDs: in.DepartmentIDs,
		AcademicYear:  in.AcademicYear,
		Framework:     in.Framework,
		Sufficiency:   in.Sufficiency,
		Records:       out.Evidence.Raw(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	results, err := json.Marshal(set.Results)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}

	flags, err := json.Marshal(out.Flags)
	if err != nil {
		return nil, fmt.Errorf("marshal flags: %w", err)
	}

	if err := r.storage.Upload(ctx, key, bytes.NewReader(snapshot), "application/json"); err != nil {
		return nil, fmt.Errorf("upload evidence snapshot: %w", err)
	}

	insertArgs := []any{
		set.SubmissionID,
		parentID,
		set.InstitutionID,
		set.DepartmentID,
		set.AcademicYear,
		set.Year,
		string(set.Framework),
		set.Overall.Ptr(),
		set.Sufficiency,
		string(set.Status),
		set.InvalidReason,
		results,
		flags,
		key,
		set.ComputedAt,
	}

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		return repository.QueryOne(ctx, tx, insertQuery, insertArgs, scanSubmission)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating snapshot delete failed", "key", key, "error", delErr)
		}
		return nil, dbErrors.Map(err)
	}

	r.logger.Info("submission created",
		"id", s.ID,
		"institution_id", s.InstitutionID,
		"framework", s.Framework,
		"status", s.Status,
	)
	return &s, nil
}

func (r *repo) loadSnapshot(ctx context.Context, key string) (*Snapshot, error) {
	rc, err := r.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotMissing, key)
		}
		return nil, fmt.Errorf("download snapshot: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrSnapshotMissing, key, err)
	}
	return &snap, nil
}

func (r *repo) snapshotKey(id uuid.UUID) string {
	return path.Join(r.snapshotPrefix, id.String()+".json")
}
