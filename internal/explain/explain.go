// Package explain re-serializes a KPI result into a human-readable
// breakdown. It never recomputes or adjusts a value: everything shown comes
// from the result and the evidence records it cites.
package explain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/kpi"
)

// ErrEvidenceUnavailable means a cited record could not be resolved. A
// caller receiving it must refuse to explain rather than improvise.
var ErrEvidenceUnavailable = errors.New("cited evidence unavailable")

const (
	StatusScored       = "scored"
	StatusInsufficient = "insufficient evidence"
)

// Citation is one evidence record exactly as extracted.
type Citation struct {
	RecordID   string `json:"record_id"`
	FieldID    string `json:"field_id"`
	Value      string `json:"value"`
	Snippet    string `json:"snippet"`
	PageNumber int    `json:"page_number"`
	DocumentID string `json:"source_document_id"`
	Text       string `json:"citation"`
}

// Explanation is the structured breakdown of one KPI result.
type Explanation struct {
	KPIID      string             `json:"kpi_id"`
	Name       string             `json:"name"`
	Framework  kpi.Framework      `json:"framework"`
	Value      kpi.Score          `json:"value"`
	Status     string             `json:"status"`
	Formula    string             `json:"formula_description"`
	Parameters []kpi.Contribution `json:"parameter_breakdown"`
	Missing    []string           `json:"missing_fields,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	Evidence   []Citation         `json:"evidence"`
}

// Explain builds the breakdown for a result using the evidence map it was
// scored from.
func Explain(r kpi.Result, m evidence.Map) (Explanation, error) {
	e := Explanation{
		KPIID:      r.KPIID,
		Name:       r.Name,
		Framework:  r.Framework,
		Value:      r.Value,
		Status:     StatusScored,
		Formula:    r.Formula,
		Parameters: r.Parameters,
		Evidence:   make([]Citation, 0, len(r.EvidenceRefs)),
	}

	if r.Value.IsNone() {
		e.Status = StatusInsufficient
		if r.Fault != nil {
			e.Reason = r.Fault.Message
		}
	}

	for _, f := range r.Missing {
		e.Missing = append(e.Missing, string(f))
	}

	for _, id := range r.EvidenceRefs {
		rec, ok := m.Lookup(id)
		if !ok {
			return Explanation{}, fmt.Errorf("%w: record %s for %s", ErrEvidenceUnavailable, id, r.KPIID)
		}
		e.Evidence = append(e.Evidence, Citation{
			RecordID:   rec.ID(),
			FieldID:    string(rec.Field()),
			Value:      rec.Value().String(),
			Snippet:    rec.Snippet(),
			PageNumber: rec.Page(),
			DocumentID: rec.Document(),
			Text:       evidence.Citation(rec),
		})
	}

	return e, nil
}

// Render formats an explanation as plain text.
func Render(e Explanation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s, %s)\n", e.Name, e.KPIID, e.Framework.Title())
	fmt.Fprintf(&b, "Value: %s\n", e.Value)
	fmt.Fprintf(&b, "Status: %s\n", e.Status)
	if e.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", e.Reason)
	}
	fmt.Fprintf(&b, "Formula: %s\n", e.Formula)

	if len(e.Parameters) > 0 {
		b.WriteString("Parameters:\n")
		for _, p := range e.Parameters {
			if p.MissingBase != "" {
				fmt.Fprintf(&b, "  - %s: no usable %s, contributes 0 (weight %.2f)\n", p.Parameter, p.MissingBase, p.Weight)
				continue
			}
			if p.Absent {
				fmt.Fprintf(&b, "  - %s: no evidence, contributes 0 (weight %.2f)\n", p.Parameter, p.Weight)
				continue
			}
			fmt.Fprintf(&b, "  - %s: raw %v, normalized %.2f x weight %.2f = %.2f\n",
				p.Parameter, p.RawValue, p.Normalized, p.Weight, p.Contribution)
		}
	}

	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "Missing evidence: %s\n", strings.Join(e.Missing, ", "))
	}

	if len(e.Evidence) > 0 {
		b.WriteString("Evidence:\n")
		for _, c := range e.Evidence {
			fmt.Fprintf(&b, "  - %s\n", c.Text)
		}
	}

	return b.String()
}
