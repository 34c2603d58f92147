package analytics

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/forecast"
	"github.com/JaimeStill/accredit/internal/guard"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/internal/trend"
)

var tracer = otel.Tracer("accredit.analytics")

type service struct {
	source Source
	logger *slog.Logger
}

// New creates the analytics system over a score set source.
func New(source Source, logger *slog.Logger) System {
	return &service{
		source: source,
		logger: logger.With("system", "analytics"),
	}
}

func (s *service) Handler(maxBodySize int64) *Handler {
	return NewHandler(s, s.logger, maxBodySize)
}

func (s *service) Compare(ctx context.Context, req CompareRequest) (*Comparison, error) {
	ctx, span := tracer.Start(ctx, "analytics.Compare")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, fail(span, err)
	}

	op, accepted, rejected, err := s.scope(ctx, req.Scope, guard.Compare)
	if err != nil {
		return nil, fail(span, err)
	}

	kpis, err := rows(op.Framework, accepted)
	if err != nil {
		return nil, fail(span, err)
	}

	c := &Comparison{
		Scope:    op,
		Accepted: members(accepted),
		Rejected: rejected,
		KPIs:     kpis,
	}
	if n := len(accepted); n > 1 {
		c.OverallDelta = delta(accepted[0].Overall, accepted[n-1].Overall)
	}

	return c, nil
}

func (s *service) Trend(ctx context.Context, req TrendRequest) (*TrendResult, error) {
	ctx, span := tracer.Start(ctx, "analytics.Trend")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, fail(span, err)
	}

	op, accepted, rejected, err := s.scope(ctx, req.Scope, guard.Trend)
	if err != nil {
		return nil, fail(span, err)
	}

	if err := checkKPI(op.Framework, req.KPIID); err != nil {
		return nil, fail(span, err)
	}

	t, err := trend.Build(accepted, req.KPIID, op)
	if err != nil {
		return nil, fail(span, withExcluded(err, rejected))
	}

	span.SetAttributes(attribute.Int("trend.years", t.Series.Years()))

	return &TrendResult{Scope: op, Trend: t, Rejected: rejected}, nil
}

func (s *service) Forecast(ctx context.Context, req ForecastRequest) (*ForecastResult, error) {
	ctx, span := tracer.Start(ctx, "analytics.Forecast")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, fail(span, err)
	}

	horizon := req.Horizon
	if horizon == 0 {
		horizon = 1
	}

	op, accepted, rejected, err := s.scope(ctx, req.Scope, guard.Forecast)
	if err != nil && !errors.Is(err, faults.InsufficientData) {
		return nil, fail(span, err)
	}

	if err := checkKPI(op.Framework, req.KPIID); err != nil {
		return nil, fail(span, err)
	}

	res := &ForecastResult{Scope: op, Rejected: rejected}

	if err == nil {
		res.Forecast, err = project(accepted, req.KPIID, op, horizon)
	}
	switch {
	case errors.Is(err, faults.InsufficientData):
		f, _ := faults.As(err)
		res.Forecast = forecast.Result{
			KPIID:                  req.KPIID,
			InsufficientDataReason: f.Message,
		}
	case err != nil:
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.Bool("forecast.available", res.Forecast.Available()))

	return res, nil
}

func project(sets []kpi.ScoreSet, kpiID string, op guard.Operation, horizon int) (forecast.Result, error) {
	series, err := trend.BuildSeries(sets, kpiID, op)
	if err != nil {
		return forecast.Result{}, err
	}
	return forecast.Forecast(series, horizon)
}

// scope loads the requested sets and partitions them through the guard.
func (s *service) scope(
	ctx context.Context,
	sc Scope,
	kind guard.OperationKind,
) (guard.Operation, []kpi.ScoreSet, []guard.Rejection, error) {
	op, err := sc.operation(kind)
	if err != nil {
		return op, nil, nil, err
	}

	var sets []kpi.ScoreSet
	if len(sc.SubmissionIDs) > 0 {
		sets, err = s.source.FindMany(ctx, sc.SubmissionIDs)
	} else {
		sets, err = s.source.History(ctx, sc.InstitutionID, op.Framework)
	}
	if err != nil {
		return op, nil, nil, err
	}

	op = guard.Scope(sets, op)
	accepted, rejected := guard.ValidateForOperation(sets, op)

	for _, r := range rejected {
		s.logger.Info("submission excluded",
			"operation", kind,
			"submission_id", r.Set.SubmissionID,
			"reason", r.Fault.Kind,
		)
	}

	if len(accepted) == 0 {
		return op, nil, rejected, faults.New(
			faults.KindInsufficientData,
			"no valid submissions in scope",
			map[string]any{"excluded": len(rejected)},
		)
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("analytics.institution_id", op.InstitutionID),
		attribute.String("analytics.department_id", op.DepartmentID),
		attribute.String("analytics.framework", string(op.Framework)),
		attribute.Int("analytics.accepted", len(accepted)),
		attribute.Int("analytics.rejected", len(rejected)),
	)

	return op, accepted, rejected, nil
}

func withExcluded(err error, rejected []guard.Rejection) error {
	f, ok := faults.As(err)
	if !ok || len(rejected) == 0 {
		return err
	}
	return f.With("excluded", len(rejected))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
