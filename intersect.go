package schemable

import "github.com/aretw0/schemable/internal/values"

// Intersect merges two interpreted values into a value of A & B.
//
// A nil operand is absent and the other operand is returned unchanged. When either operand
// is a string-keyed map the result is a new map holding the properties of a overridden by
// those of b; an operand that is not a map contributes nothing. Otherwise b wins and a is
// discarded. Only string-keyed maps count as structured: slices, arrays and structs are
// treated like scalars, so intersecting two slices returns b and loses the elements of a.
// This last rule is lossy and callers that care should not rely on it.
func Intersect(a, b any) any {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	ra, okA := values.Record(a)
	rb, okB := values.Record(b)
	if !okA && !okB {
		return b
	}
	out := make(map[string]any, len(ra)+len(rb))
	for k, v := range ra {
		out[k] = v
	}
	for k, v := range rb {
		out[k] = v
	}
	return out
}
