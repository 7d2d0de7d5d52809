// Package apperr defines the error taxonomy shared by the core services and
// the HTTP surface. Storage and collaborator failures are normalized into
// these values at the service boundary so handlers can map them to status
// codes without inspecting implementation errors.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated covers missing, malformed, expired and revoked
	// credentials alike.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the actor is known but the authorization rules deny
	// the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound covers both genuinely absent resources and resources hidden
	// by a visibility rule. The two are indistinguishable to the caller so
	// existence is never leaked.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is a storage or collaborator failure. The core never
	// retries transparently; the caller decides.
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError collects per-field problems so a request's issues are
// reported together instead of one at a time.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidation() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add records a problem against a field and returns the receiver for
// chaining.
func (e *ValidationError) Add(field, problem string) *ValidationError {
	e.Fields[field] = append(e.Fields[field], problem)
	return e
}

// Empty reports whether no problems were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
