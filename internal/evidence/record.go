// Package evidence models provenance-tagged facts extracted from source
// documents and the gate every KPI formula reads them through.
//
// An evidence Map is built once per submission from raw records and is
// read-only afterwards. Raw values are coerced into typed Values according to
// the field catalog; structural violations are fatal for the submission.
package evidence

import (
	"fmt"

	"github.com/google/uuid"
)

var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("accredit:evidence-record"))

// RawRecord is an evidence record as delivered by the extraction pipeline,
// before the raw value has been typed.
type RawRecord struct {
	ID               string `json:"id,omitempty" yaml:"id,omitempty"`
	FieldID          string `json:"field_id" yaml:"field_id" validate:"required"`
	RawValue         any    `json:"raw_value" yaml:"raw_value"`
	Snippet          string `json:"snippet" yaml:"snippet"`
	PageNumber       int    `json:"page_number" yaml:"page_number" validate:"gte=0"`
	SourceDocumentID string `json:"source_document_id" yaml:"source_document_id"`
}

// Record is an immutable, typed evidence record.
type Record struct {
	id       string
	field    FieldID
	value    Value
	snippet  string
	page     int
	document string
}

func (r Record) ID() string {
	return r.id
}

func (r Record) Field() FieldID {
	return r.field
}

func (r Record) Value() Value {
	return r.value
}

func (r Record) Snippet() string {
	return r.snippet
}

func (r Record) Page() int {
	return r.page
}

func (r Record) Document() string {
	return r.document
}

// derivedID produces a stable id for records delivered without one, so that
// reprocessing the same snapshot yields the same evidence references.
func derivedID(raw RawRecord, ordinal int) string {
	key := fmt.Sprintf(
		"%s|%d|%s|%s|%d",
		raw.SourceDocumentID,
		raw.PageNumber,
		raw.FieldID,
		raw.Snippet,
		ordinal,
	)
	return uuid.NewSHA1(recordNamespace, []byte(key)).String()
}
