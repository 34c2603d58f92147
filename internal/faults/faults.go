// Package faults defines the structured error contract returned across the
// scoring boundary. Every fault serializes as {error_kind, message, context}
// so that collaborators can render an explicit "insufficient data" state
// instead of inventing a value.
package faults

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a fault.
type Kind string

const (
	KindMissingEvidence     Kind = "missing_evidence"
	KindInsufficientData    Kind = "insufficient_data"
	KindDepartmentMismatch  Kind = "department_mismatch"
	KindInstitutionMismatch Kind = "institution_mismatch"
	KindFrameworkMismatch   Kind = "framework_mismatch"
	KindNoValidKPI          Kind = "no_valid_kpi"
	KindInvalidSubmission   Kind = "invalid_submission"
	KindInvalidInput        Kind = "invalid_input"
	KindMalformedEvidence   Kind = "malformed_evidence"
)

// Sentinels for errors.Is matching by kind.
var (
	MissingEvidence     = &Error{Kind: KindMissingEvidence}
	InsufficientData    = &Error{Kind: KindInsufficientData}
	DepartmentMismatch  = &Error{Kind: KindDepartmentMismatch}
	InstitutionMismatch = &Error{Kind: KindInstitutionMismatch}
	FrameworkMismatch   = &Error{Kind: KindFrameworkMismatch}
	NoValidKPI          = &Error{Kind: KindNoValidKPI}
	InvalidSubmission   = &Error{Kind: KindInvalidSubmission}
	InvalidInput        = &Error{Kind: KindInvalidInput}
	MalformedEvidence   = &Error{Kind: KindMalformedEvidence}
)

// Error is a structured fault with a machine-readable kind, a human-readable
// message, and free-form context for the caller.
type Error struct {
	Kind    Kind           `json:"error_kind"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// New creates a fault of the given kind.
func New(kind Kind, message string, context map[string]any) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Context: context,
	}
}

// Newf creates a fault with a formatted message and no context.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any fault of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// With returns a copy of the fault with key set in its context.
func (e *Error) With(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{
		Kind:    e.Kind,
		Message: e.Message,
		Context: ctx,
	}
}

// As extracts a fault from an error chain.
func As(err error) (*Error, bool) {
	var f *Error
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// MapHTTPStatus maps fault kinds to HTTP status codes.
func MapHTTPStatus(err error) int {
	f, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch f.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindMalformedEvidence, KindMissingEvidence:
		return http.StatusUnprocessableEntity
	case KindInsufficientData, KindNoValidKPI, KindInvalidSubmission:
		return http.StatusUnprocessableEntity
	case KindDepartmentMismatch, KindInstitutionMismatch, KindFrameworkMismatch:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
