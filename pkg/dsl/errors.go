package dsl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownNode is returned when a document uses a node form that does not exist.
var ErrUnknownNode = errors.New("unknown node")

// ErrUnsupported is returned when a document needs a capability the algebra lacks.
var ErrUnsupported = errors.New("unsupported by interpreter")

// ValidationError represents a single document validation failure.
type ValidationError struct {
	Path   string // Location in the document, e.g. "definitions.Shape.sum"
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
