// Package scoring runs a submission through the formula engine, the
// Production Guard, and the compliance rules.
//
// KPIs within a submission are evaluated concurrently and joined before the
// guard decides the verdict. Independent submissions may be scored in
// parallel with ScoreAll.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/accredit/internal/compliance"
	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/guard"
	"github.com/JaimeStill/accredit/internal/kpi"
)

var tracer = otel.Tracer("accredit.scoring")

// Input is one submission to score.
type Input struct {
	SubmissionID  uuid.UUID
	InstitutionID string
	DepartmentIDs []string
	AcademicYear  string
	Framework     kpi.Framework
	Records       []evidence.RawRecord

	// Sufficiency is supplied by the extraction side. When nil it is derived
	// from the evidence present against the framework's required fields.
	Sufficiency *float64
}

// Outcome is a sealed score set with everything derived alongside it.
type Outcome struct {
	Set      kpi.ScoreSet
	Verdict  guard.Verdict
	Flags    []compliance.Flag
	Evidence evidence.Map
}

// BatchResult pairs each ScoreAll input with its outcome or error.
type BatchResult struct {
	Index   int
	Outcome *Outcome
	Err     error
}

// Engine scores submissions.
type Engine struct {
	kpiWorkers        int
	submissionWorkers int
	metrics           *Metrics
	logger            *slog.Logger
	now               func() time.Time
}

// New creates an Engine.
func New(cfg *config.ScoringConfig, metrics *Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		kpiWorkers:        cfg.KPIWorkers,
		submissionWorkers: cfg.SubmissionWorkers,
		metrics:           metrics,
		logger:            logger.With("system", "scoring"),
		now:               time.Now,
	}
}

// Score evaluates one submission. A malformed evidence list or an invalid
// department reference aborts with a fault before any KPI runs; everything
// else yields a sealed score set, valid or not.
func (e *Engine) Score(ctx context.Context, in Input) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "scoring.Score")
	defer span.End()

	start := time.Now()

	out, err := e.score(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Warn("submission rejected before scoring",
			"institution_id", in.InstitutionID,
			"framework", in.Framework,
			"error", err,
		)
		return nil, err
	}

	set := out.Set
	span.SetAttributes(
		attribute.String("submission.id", set.SubmissionID.String()),
		attribute.String("submission.framework", string(set.Framework)),
		attribute.String("submission.status", string(set.Status)),
		attribute.Int("submission.scored_kpis", set.Scored()),
	)

	e.record(out, time.Since(start))

	e.logger.Info("submission scored",
		"submission_id", set.SubmissionID,
		"institution_id", set.InstitutionID,
		"department_id", set.DepartmentID,
		"framework", set.Framework,
		"overall", set.Overall.String(),
		"status", set.Status,
		"flags", len(out.Flags),
	)

	return out, nil
}

// ScoreAll scores independent submissions with bounded parallelism. One
// submission failing does not affect the others.
func (e *Engine) ScoreAll(ctx context.Context, inputs []Input) []BatchResult {
	results := make([]BatchResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(workerCount(e.submissionWorkers, len(inputs)))

	for i := range inputs {
		g.Go(func() error {
			results[i].Index = i
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Outcome, results[i].Err = e.Score(ctx, inputs[i])
			return nil
		})
	}

	g.Wait()
	return results
}

func (e *Engine) score(ctx context.Context, in Input) (*Outcome, error) {
	dept, err := guard.CheckDepartment(in.DepartmentIDs)
	if err != nil {
		return nil, faults.New(faults.KindInvalidInput, err.Error(), map[string]any{
			"department_ids": in.DepartmentIDs,
		})
	}

	year, err := evidence.ParseAcademicYear(in.AcademicYear)
	if err != nil {
		return nil, faults.New(faults.KindInvalidInput, err.Error(), nil)
	}

	defs, err := kpi.Definitions(in.Framework)
	if err != nil {
		return nil, faults.New(faults.KindInvalidInput, err.Error(), nil)
	}

	m, err := evidence.NewMap(in.Records)
	if err != nil {
		var schemaErr *evidence.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, schemaErr.Fault()
		}
		return nil, err
	}

	results, err := e.evaluate(ctx, defs, m)
	if err != nil {
		return nil, err
	}

	id := in.SubmissionID
	if id == uuid.Nil {
		id = uuid.New()
	}

	set := kpi.ScoreSet{
		SubmissionID:  id,
		InstitutionID: in.InstitutionID,
		DepartmentID:  dept,
		AcademicYear:  in.AcademicYear,
		Year:          year,
		Framework:     in.Framework,
		Results:       results,
		Overall:       kpi.Overall(results),
		Status:        kpi.StatusPending,
		ComputedAt:    e.now().UTC(),
	}

	sufficiency, err := e.sufficiency(in, m)
	if err != nil {
		return nil, err
	}

	verdict, err := guard.Evaluate(&set, sufficiency)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Set:      set,
		Verdict:  verdict,
		Flags:    compliance.Check(in.Framework, m, results),
		Evidence: m,
	}, nil
}

// evaluate fans the KPI table out across workers and waits for every
// result. Evidence maps are read-only, so the gates need no locking.
func (e *Engine) evaluate(ctx context.Context, defs []kpi.Definition, m evidence.Map) (map[string]kpi.Result, error) {
	out := make([]kpi.Result, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(e.kpiWorkers, len(defs)))

	for i := range defs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = kpi.Evaluate(defs[i], m)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate kpis: %w", err)
	}

	results := make(map[string]kpi.Result, len(out))
	for _, r := range out {
		results[r.KPIID] = r
	}
	return results, nil
}

func (e *Engine) sufficiency(in Input, m evidence.Map) (float64, error) {
	if in.Sufficiency != nil {
		return *in.Sufficiency, nil
	}

	required, err := kpi.RequiredFields(in.Framework)
	if err != nil {
		return 0, faults.New(faults.KindInvalidInput, err.Error(), nil)
	}
	return evidence.Sufficiency(required, m), nil
}

func (e *Engine) record(out *Outcome, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}

	set := out.Set
	framework := string(set.Framework)

	e.metrics.submissions.WithLabelValues(framework, string(set.Status)).Inc()
	e.metrics.duration.WithLabelValues(framework).Observe(elapsed.Seconds())

	for id, r := range set.Results {
		if r.Value.IsNone() {
			e.metrics.unscored.WithLabelValues(framework, id).Inc()
		}
	}
	for _, f := range out.Flags {
		e.metrics.flags.WithLabelValues(f.RuleID, string(f.Severity)).Inc()
	}
}

func workerCount(limit, n int) int {
	return max(min(limit, n), 1)
}
