package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const history = `
submissions:
  - name: y2021
    institution_id: inst-x
    department_ids: [cse]
    academic_year: "2021-22"
    framework: aicte
    evidence:
      - {field_id: students_placed, raw_value: 60, snippet: "60 placed", page_number: 3, source_document_id: placement.pdf}
      - {field_id: students_eligible, raw_value: 100, snippet: "100 eligible", page_number: 3, source_document_id: placement.pdf}
  - name: y2022
    institution_id: inst-x
    department_ids: [cse]
    academic_year: "2022-23"
    framework: aicte
    evidence:
      - {field_id: students_placed, raw_value: 70, snippet: "70 placed", page_number: 3, source_document_id: placement.pdf}
      - {field_id: students_eligible, raw_value: 100, snippet: "100 eligible", page_number: 3, source_document_id: placement.pdf}
  - name: y2023
    institution_id: inst-x
    department_ids: [cse]
    academic_year: "2023-24"
    framework: aicte
    evidence:
      - {field_id: students_placed, raw_value: 80, snippet: "80 placed", page_number: 3, source_document_id: placement.pdf}
      - {field_id: students_eligible, raw_value: 100, snippet: "100 eligible", page_number: 3, source_document_id: placement.pdf}
  - name: other-dept
    institution_id: inst-x
    department_ids: [ece]
    academic_year: "2023-24"
    framework: aicte
    evidence:
      - {field_id: students_placed, raw_value: 10, snippet: "10 placed", page_number: 1, source_document_id: ece.pdf}
      - {field_id: students_eligible, raw_value: 100, snippet: "100 eligible", page_number: 1, source_document_id: ece.pdf}
`

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestScoreText(t *testing.T) {
	path := writeFixture(t, history)

	out, err := run(t, "score", path)
	require.NoError(t, err)

	assert.Contains(t, out, "y2021")
	assert.Contains(t, out, "inst-x/cse")
	assert.Contains(t, out, "placement_index")
	assert.Contains(t, out, "80")
}

func TestScoreJSON(t *testing.T) {
	path := writeFixture(t, history)

	out, err := run(t, "score", path, "-o", "json")
	require.NoError(t, err)

	var results []struct {
		Submission string `json:"submission"`
		ScoreSet   struct {
			Status  string   `json:"status"`
			Overall *float64 `json:"overall_score"`
			Results map[string]struct {
				Value *float64 `json:"value"`
			} `json:"kpi_results"`
		} `json:"score_set"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 4)

	first := results[0]
	assert.Equal(t, "y2021", first.Submission)
	assert.Equal(t, "valid", first.ScoreSet.Status)
	require.NotNil(t, first.ScoreSet.Results["placement_index"].Value)
	assert.InDelta(t, 60, *first.ScoreSet.Results["placement_index"].Value, 1e-9)
	assert.Nil(t, first.ScoreSet.Results["fsr_score"].Value)
}

func TestScoreYAMLKeepsNull(t *testing.T) {
	path := writeFixture(t, history)

	out, err := run(t, "score", path, "-o", "yaml")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &results))
	require.Len(t, results, 4)

	set := results[0]["score_set"].(map[string]any)
	kpis := set["kpi_results"].(map[string]any)
	fsr := kpis["fsr_score"].(map[string]any)
	value, ok := fsr["value"]
	assert.True(t, ok)
	assert.Nil(t, value)
}

func TestScoreReportsRejectedSubmission(t *testing.T) {
	path := writeFixture(t, `
submissions:
  - name: two-departments
    institution_id: inst-x
    department_ids: [cse, ece]
    academic_year: "2023-24"
    framework: aicte
    evidence:
      - {field_id: placement_rate, raw_value: 80, snippet: "80%", page_number: 1, source_document_id: a.pdf}
`)

	out, err := run(t, "score", path)
	require.NoError(t, err)
	assert.Contains(t, out, "two-departments")
	assert.Contains(t, out, "rejected")
}

func TestScoreInvalidFixture(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", "submissions: []\n"},
		{"unknown framework", `
submissions:
  - institution_id: inst-x
    department_ids: [cse]
    academic_year: "2023-24"
    framework: abet
`},
		{"bad academic year", `
submissions:
  - institution_id: inst-x
    department_ids: [cse]
    academic_year: twenty
    framework: aicte
`},
		{"not yaml", "submissions: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "score", writeFixture(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestUnknownFormat(t *testing.T) {
	_, err := run(t, "score", writeFixture(t, history), "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestExplain(t *testing.T) {
	path := writeFixture(t, history)

	out, err := run(t, "explain", path, "--submission", "y2023", "--kpi", "placement_index")
	require.NoError(t, err)

	assert.Contains(t, out, "placement_index")
	assert.Contains(t, out, "Value: 80.00")
	assert.Contains(t, out, "Page 3 in placement.pdf: '80 placed'")
}

func TestExplainByIndex(t *testing.T) {
	path := writeFixture(t, history)

	out, err := run(t, "explain", path, "-s", "0", "-k", "fsr_score", "-o", "json")
	require.NoError(t, err)

	var e struct {
		Status  string   `json:"status"`
		Missing []string `json:"missing_fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, "insufficient evidence", e.Status)
	assert.ElementsMatch(t, []string{"faculty_count", "student_count"}, e.Missing)
}

func TestExplainErrors(t *testing.T) {
	path := writeFixture(t, history)

	_, err := run(t, "explain", path, "-s", "missing", "-k", "placement_index")
	assert.ErrorContains(t, err, "no submission")

	_, err = run(t, "explain", path, "-s", "y2021", "-k", "criterion_1")
	assert.ErrorContains(t, err, "not defined")
}

func TestTrend(t *testing.T) {
	path := writeFixture(t, history)

	out, err := run(t, "trend", path, "--kpi", "placement_index", "-o", "json")
	require.NoError(t, err)

	var res struct {
		Trend struct {
			Slope     float64 `json:"slope"`
			Direction string  `json:"direction"`
			BestYear  int     `json:"best_year"`
			WorstYear int     `json:"worst_year"`
		} `json:"trend"`
		Rejected []json.RawMessage `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	assert.InDelta(t, 10, res.Trend.Slope, 0.01)
	assert.Equal(t, "increasing", res.Trend.Direction)
	assert.Equal(t, 2023, res.Trend.BestYear)
	assert.Equal(t, 2021, res.Trend.WorstYear)
	assert.Len(t, res.Rejected, 1)
}

func TestTrendText(t *testing.T) {
	out, err := run(t, "trend", writeFixture(t, history), "-k", "placement_index")
	require.NoError(t, err)

	assert.Contains(t, out, "increasing")
	assert.Contains(t, out, "excluded")
}

func TestTrendInsufficientYears(t *testing.T) {
	path := writeFixture(t, history)

	_, err := run(t, "trend", path, "-k", "placement_index", "--department", "ece")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only 1 distinct years available, 3 required")
}

func TestForecast(t *testing.T) {
	path := writeFixture(t, history)

	out, err := run(t, "forecast", path, "-k", "placement_index", "--horizon", "2", "-o", "json")
	require.NoError(t, err)

	var res struct {
		Forecast struct {
			Year           int      `json:"year"`
			PredictedValue *float64 `json:"predicted_value"`
		} `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	assert.Equal(t, 2025, res.Forecast.Year)
	require.NotNil(t, res.Forecast.PredictedValue)
	assert.InDelta(t, 100, *res.Forecast.PredictedValue, 0.01)
}

func TestForecastInsufficient(t *testing.T) {
	path := writeFixture(t, history)

	out, err := run(t, "forecast", path, "-k", "placement_index", "--department", "ece")
	require.NoError(t, err)
	assert.Contains(t, out, "insufficient data")
}

func TestKPIs(t *testing.T) {
	out, err := run(t, "kpis", "--framework", "nirf")
	require.NoError(t, err)

	for _, id := range []string{"tlr", "rp", "go", "oi", "pr"} {
		assert.Contains(t, out, id)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 5)

	_, err = run(t, "kpis", "--framework", "abet")
	assert.Error(t, err)
}
