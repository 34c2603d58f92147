package evidence

import (
	"errors"
	"fmt"
	"slices"

	"github.com/JaimeStill/accredit/internal/faults"
)

// ErrMalformedEvidence indicates the evidence map violates the extraction
// contract. It is fatal for the submission being processed.
var ErrMalformedEvidence = errors.New("malformed evidence map")

// SchemaError describes the first structural violation found in a raw
// evidence list.
type SchemaError struct {
	Index  int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: record %d (%s): %s", ErrMalformedEvidence, e.Index, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrMalformedEvidence
}

// Fault converts the schema error into the structured error contract.
func (e *SchemaError) Fault() *faults.Error {
	return faults.New(
		faults.KindMalformedEvidence,
		e.Reason,
		map[string]any{
			"record_index": e.Index,
			"field_id":     e.Field,
		},
	)
}

// Dropped reports a record that was discarded because it held no evidence.
type Dropped struct {
	Index int     `json:"index"`
	Field FieldID `json:"field_id"`
	Raw   any     `json:"raw_value"`
}

// Map is the per-submission evidence index: field → records in extraction order.
type Map struct {
	fields  map[FieldID][]Record
	byID    map[string]Record
	raw     []RawRecord
	dropped []Dropped
}

// NewMap types and indexes raw records. Unknown fields, wrongly-typed values,
// and duplicate record ids return a *SchemaError.
func NewMap(raw []RawRecord) (Map, error) {
	m := Map{
		fields: make(map[FieldID][]Record),
		byID:   make(map[string]Record),
		raw:    slices.Clone(raw),
	}

	for i, r := range raw {
		field, err := ParseFieldID(r.FieldID)
		if err != nil {
			return Map{}, &SchemaError{Index: i, Field: r.FieldID, Reason: err.Error()}
		}

		if r.PageNumber < 0 {
			return Map{}, &SchemaError{Index: i, Field: r.FieldID, Reason: "page_number must not be negative"}
		}

		value, err := parseValue(field.Kind(), r.RawValue)
		if errors.Is(err, errPlaceholder) {
			m.dropped = append(m.dropped, Dropped{Index: i, Field: field, Raw: r.RawValue})
			continue
		}
		if err != nil {
			return Map{}, &SchemaError{Index: i, Field: r.FieldID, Reason: err.Error()}
		}

		id := r.ID
		if id == "" {
			id = derivedID(r, i)
		}
		if _, dup := m.byID[id]; dup {
			return Map{}, &SchemaError{Index: i, Field: r.FieldID, Reason: fmt.Sprintf("duplicate record id %q", id)}
		}

		rec := Record{
			id:       id,
			field:    field,
			value:    value,
			snippet:  r.Snippet,
			page:     r.PageNumber,
			document: r.SourceDocumentID,
		}

		m.fields[field] = append(m.fields[field], rec)
		m.byID[id] = rec
	}

	return m, nil
}

// Records returns the records for a field in extraction order.
func (m Map) Records(f FieldID) []Record {
	return slices.Clone(m.fields[f])
}

// Has reports whether at least one record backs the field.
func (m Map) Has(f FieldID) bool {
	return len(m.fields[f]) > 0
}

// Lookup finds a record by id.
func (m Map) Lookup(id string) (Record, bool) {
	r, ok := m.byID[id]
	return r, ok
}

// Fields returns the fields with evidence, sorted by name.
func (m Map) Fields() []FieldID {
	fields := make([]FieldID, 0, len(m.fields))
	for f := range m.fields {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// Len returns the number of typed records.
func (m Map) Len() int {
	return len(m.byID)
}

// Dropped returns the records discarded as placeholders.
func (m Map) Dropped() []Dropped {
	return slices.Clone(m.dropped)
}

// Raw returns the raw records the map was built from, suitable for
// snapshotting and rebuilding an identical map later.
func (m Map) Raw() []RawRecord {
	return slices.Clone(m.raw)
}

// Sufficiency is the fraction of required fields that have evidence.
func Sufficiency(required []FieldID, m Map) float64 {
	if len(required) == 0 {
		return 0
	}

	present := 0
	for _, f := range required {
		if m.Has(f) {
			present++
		}
	}
	return float64(present) / float64(len(required))
}
