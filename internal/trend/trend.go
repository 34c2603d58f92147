// Package trend builds per-KPI time series for one institution, department
// and framework, and summarises them.
package trend

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/guard"
	"github.com/JaimeStill/accredit/internal/kpi"
)

// MinYears is the number of distinct years a series needs.
const MinYears = 3

const flatSlope = 1e-9

// Direction summarises the sign of the fitted slope.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

// DirectionOf classifies a slope.
func DirectionOf(slope float64) Direction {
	switch {
	case slope > flatSlope:
		return Increasing
	case slope < -flatSlope:
		return Decreasing
	}
	return Stable
}

// Point is one year's KPI value and the submission it came from.
type Point struct {
	Year         int       `json:"year"`
	Value        float64   `json:"value"`
	SubmissionID uuid.UUID `json:"submission_id"`
	AcademicYear string    `json:"academic_year,omitempty"`
}

// Series holds the points for one entity and KPI, with strictly increasing
// distinct years.
type Series struct {
	InstitutionID string        `json:"institution_id"`
	DepartmentID  string        `json:"department_id"`
	Framework     kpi.Framework `json:"framework"`
	KPIID         string        `json:"kpi_id"`
	Points        []Point       `json:"points"`
}

// Years returns the distinct years in the series.
func (s Series) Years() int {
	return len(s.Points)
}

// Trend is a series plus the statistics derived from its points.
type Trend struct {
	Series     Series    `json:"series"`
	Slope      float64   `json:"slope"`
	Intercept  float64   `json:"intercept"`
	Volatility float64   `json:"volatility"`
	BestYear   int       `json:"best_year"`
	WorstYear  int       `json:"worst_year"`
	Direction  Direction `json:"direction"`
}

// Build validates sets through the guard and builds the trend for one KPI.
// Any entity mismatch fails the request outright: a series never mixes
// institutions or departments. Invalid submissions are skipped.
func Build(sets []kpi.ScoreSet, kpiID string, op guard.Operation) (*Trend, error) {
	op.Kind = guard.Trend
	op = guard.Scope(sets, op)

	accepted, rejected := guard.ValidateForOperation(sets, op)
	if mismatches := guard.Mismatches(rejected); len(mismatches) > 0 {
		return nil, mismatches[0].Fault.With("excluded", len(mismatches))
	}

	series, err := BuildSeries(accepted, kpiID, op)
	if err != nil {
		return nil, err
	}
	return Summarise(series), nil
}

// BuildSeries extracts (year, value) points from sets that already passed
// the guard. Null values are dropped; when two sets share a year the most
// recently computed one wins.
func BuildSeries(sets []kpi.ScoreSet, kpiID string, op guard.Operation) (Series, error) {
	series := Series{
		InstitutionID: op.InstitutionID,
		DepartmentID:  op.DepartmentID,
		Framework:     op.Framework,
		KPIID:         kpiID,
	}

	latest := map[int]kpi.ScoreSet{}
	values := map[int]float64{}
	for _, s := range sets {
		r, ok := s.Result(kpiID)
		if !ok {
			continue
		}
		v, ok := r.Value.Get()
		if !ok {
			continue
		}
		if prev, seen := latest[s.Year]; seen && !s.ComputedAt.After(prev.ComputedAt) {
			continue
		}
		latest[s.Year] = s
		values[s.Year] = v
	}

	if n := len(values); n < MinYears {
		return Series{}, Insufficient(n, map[string]any{"kpi_id": kpiID})
	}

	for year, s := range latest {
		series.Points = append(series.Points, Point{
			Year:         year,
			Value:        values[year],
			SubmissionID: s.SubmissionID,
			AcademicYear: s.AcademicYear,
		})
	}
	slices.SortFunc(series.Points, func(a, b Point) int { return a.Year - b.Year })

	return series, nil
}

// Insufficient is the fault for a series with too few distinct years.
func Insufficient(years int, ctx map[string]any) *faults.Error {
	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["distinct_years"] = years
	ctx["required_years"] = MinYears
	return faults.New(
		faults.KindInsufficientData,
		fmt.Sprintf("only %d distinct years available, %d required", years, MinYears),
		ctx,
	)
}

// Summarise derives the fit and point statistics from a series.
func Summarise(s Series) *Trend {
	fit := LeastSquares(s.Points)

	t := &Trend{
		Series:     s,
		Slope:      fit.Slope,
		Intercept:  fit.Intercept,
		Volatility: Volatility(s.Points),
		Direction:  DirectionOf(fit.Slope),
	}

	if len(s.Points) > 0 {
		best, worst := s.Points[0], s.Points[0]
		for _, p := range s.Points[1:] {
			if p.Value > best.Value {
				best = p
			}
			if p.Value < worst.Value {
				worst = p
			}
		}
		t.BestYear, t.WorstYear = best.Year, worst.Year
	}

	return t
}

// Volatility is the population standard deviation of consecutive
// year-over-year deltas.
func Volatility(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}

	deltas := make([]float64, len(points)-1)
	var mean float64
	for i := 1; i < len(points); i++ {
		deltas[i-1] = points[i].Value - points[i-1].Value
		mean += deltas[i-1]
	}
	mean /= float64(len(deltas))

	var ss float64
	for _, d := range deltas {
		ss += (d - mean) * (d - mean)
	}
	return math.Sqrt(ss / float64(len(deltas)))
}
