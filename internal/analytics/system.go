package analytics

import "context"

// System defines the public contract for the analytics views.
type System interface {
	Handler(maxBodySize int64) *Handler

	// Compare lines up the accepted submissions KPI by KPI. Rejected
	// submissions are listed with the fault that excluded them.
	Compare(ctx context.Context, req CompareRequest) (*Comparison, error)

	// Trend fails with an insufficient_data fault when fewer than three
	// distinct years remain after the guard.
	Trend(ctx context.Context, req TrendRequest) (*TrendResult, error)

	Forecast(ctx context.Context, req ForecastRequest) (*ForecastResult, error)
}
