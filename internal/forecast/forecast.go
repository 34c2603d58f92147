// Package forecast projects a KPI series forward with a least-squares line
// and a 95% interval from the residual error.
package forecast

import (
	"fmt"
	"math"

	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/kpi"
	"github.com/JaimeStill/accredit/internal/trend"
)

// z95 is the two-sided 95% normal quantile.
const z95 = 1.96

// Projection is the fitted value for one future year.
type Projection struct {
	Year           int     `json:"year"`
	PredictedValue float64 `json:"predicted_value"`
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
}

// Model describes the fit a forecast came from.
type Model struct {
	Method    string  `json:"method"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r_squared"`
	StdErr    float64 `json:"standard_error"`
	Points    int     `json:"historical_points"`
}

// Result is a forecast for max_year + horizon. When the series is too short,
// PredictedValue is None and InsufficientDataReason says why; callers must
// render the reason and no chart.
type Result struct {
	KPIID                  string       `json:"kpi_id"`
	Year                   int          `json:"year,omitempty"`
	PredictedValue         kpi.Score    `json:"predicted_value"`
	LowerBound             kpi.Score    `json:"lower_bound"`
	UpperBound             kpi.Score    `json:"upper_bound"`
	Confidence             kpi.Score    `json:"confidence"`
	Explanation            string       `json:"explanation,omitempty"`
	InsufficientDataReason string       `json:"insufficient_data_reason,omitempty"`
	Path                   []Projection `json:"path,omitempty"`
	Model                  *Model       `json:"model,omitempty"`
}

// Available reports whether the forecast carries a prediction.
func (r Result) Available() bool {
	return !r.PredictedValue.IsNone()
}

// Forecast projects the series horizon years past its last point. It checks
// the minimum year count itself rather than trusting the caller.
func Forecast(series trend.Series, horizon int) (Result, error) {
	if horizon < 1 {
		return Result{}, faults.New(faults.KindInvalidInput,
			fmt.Sprintf("horizon must be at least 1, got %d", horizon),
			map[string]any{"horizon": horizon},
		)
	}

	res := Result{KPIID: series.KPIID}

	years := distinctYears(series.Points)
	if years < trend.MinYears {
		res.InsufficientDataReason = trend.Insufficient(years, nil).Message
		return res, nil
	}

	fit := trend.LeastSquares(series.Points)
	se := fit.StdErr()
	margin := se * z95
	confidence := clamp(fit.R2, 0.5, 0.95)

	last := series.Points[0].Year
	for _, p := range series.Points {
		last = max(last, p.Year)
	}

	for h := 1; h <= horizon; h++ {
		year := last + h
		predicted := fit.At(float64(year))
		res.Path = append(res.Path, Projection{
			Year:           year,
			PredictedValue: round2(clamp(predicted, 0, 100)),
			LowerBound:     round2(clamp(predicted-margin, 0, 100)),
			UpperBound:     round2(clamp(predicted+margin, 0, 100)),
		})
	}

	target := res.Path[len(res.Path)-1]
	res.Year = target.Year
	res.PredictedValue = kpi.Some(target.PredictedValue)
	res.LowerBound = kpi.Some(target.LowerBound)
	res.UpperBound = kpi.Some(target.UpperBound)
	res.Confidence = kpi.Some(round2(confidence))
	res.Model = &Model{
		Method:    "linear_regression",
		Slope:     round4(fit.Slope),
		Intercept: round4(fit.Intercept),
		R2:        round4(fit.R2),
		StdErr:    round4(se),
		Points:    fit.N,
	}
	res.Explanation = fmt.Sprintf(
		"Forecast based on %d years of historical data. Trend shows %s pattern (slope: %.2f per year). Confidence: %.0f%% (R² = %.3f).",
		fit.N, trend.DirectionOf(fit.Slope), fit.Slope, confidence*100, fit.R2,
	)

	return res, nil
}

func distinctYears(points []trend.Point) int {
	seen := make(map[int]bool, len(points))
	for _, p := range points {
		seen[p.Year] = true
	}
	return len(seen)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
