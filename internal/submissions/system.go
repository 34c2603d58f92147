package submissions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/internal/explain"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/pkg/pagination"
)

// System defines the public contract for submission domain operations.
type System interface {
	Handler(maxBodySize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Submission], error)

	Find(ctx context.Context, id uuid.UUID) (*Submission, error)
	Create(ctx context.Context, cmd CreateCommand) (*Submission, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Reprocess rescores a submission from its evidence snapshot into a new
	// submission whose parent is id.
	Reprocess(ctx context.Context, id uuid.UUID) (*Submission, error)
	Lineage(ctx context.Context, id uuid.UUID) (*Lineage, error)
	Explain(ctx context.Context, id uuid.UUID, kpiID string) (*explain.Explanation, error)

	// FindMany returns the score sets for the given ids in request order.
	FindMany(ctx context.Context, ids []uuid.UUID) ([]kpi.ScoreSet, error)

	// History returns every stored score set for an institution, oldest
	// year first. It is the read side of the analytics views.
	History(ctx context.Context, institutionID string, framework kpi.Framework) ([]kpi.ScoreSet, error)
}
