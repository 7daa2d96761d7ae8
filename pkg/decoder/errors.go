package decoder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/schemable/internal/values"
)

// Error is a single decoding failure.
type Error struct {
	Path     string // Location of the failing value, e.g. "friends[0].name"; empty at the root
	Expected string // What the schema expected at Path
	Actual   any    // The offending value
	Missing  bool   // A required property was absent
}

func (e *Error) Error() string {
	var msg string
	if e.Missing {
		msg = fmt.Sprintf("required property missing (expected %s)", e.Expected)
	} else {
		msg = fmt.Sprintf("expected %s, got %s", e.Expected, describe(e.Actual))
	}
	if e.Path == "" {
		return msg
	}
	return fmt.Sprintf("at %s: %s", e.Path, msg)
}

func describe(v any) string {
	switch x := v.(type) {
	case string:
		if len(x) > 32 {
			x = x[:32] + "..."
		}
		return fmt.Sprintf("string %q", x)
	case bool:
		return fmt.Sprintf("boolean %t", x)
	}
	if n, ok := values.Float(v); ok {
		return fmt.Sprintf("number %v", n)
	}
	return values.TypeOf(v)
}

// Errors collects every failure found while decoding one value.
type Errors []*Error

func (e Errors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d decoding errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// AsErrors returns the individual failures if err came from a Decoder.
// Otherwise returns nil.
func AsErrors(err error) []*Error {
	var errs Errors
	if errors.As(err, &errs) {
		return errs
	}
	return nil
}
