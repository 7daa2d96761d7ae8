// Package schemabletest provides contract suites that every interpreter of the schemable
// algebra is expected to pass.
package schemabletest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/schemable"
)

// Accepts reports whether the representation r admits the value v.
type Accepts[R any] func(r R, v any) bool

// Full is an algebra implementing the core contract and every capability extension.
type Full[R any] interface {
	schemable.Schemable[R]
	schemable.WithUnknownContainers[R]
	schemable.WithUnion[R]
	schemable.WithRefine[R]
}

type check struct {
	name   string
	value  any
	accept bool
}

func run[R any](t *testing.T, r R, accepts Accepts[R], checks []check) {
	t.Helper()
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.accept, accepts(r, c.value), "value: %#v", c.value)
		})
	}
}

// RunContract verifies that an interpreter of the core algebra accepts exactly the values
// each combinator describes.
func RunContract[R any](t *testing.T, alg schemable.Schemable[R], accepts Accepts[R]) {
	t.Run("Literal", func(t *testing.T) {
		r := alg.Literal(schemable.StringLiteral("a"), schemable.NumberLiteral(1), schemable.Null)
		run(t, r, accepts, []check{
			{"string member", "a", true},
			{"number member", 1.0, true},
			{"integer kind", 1, true},
			{"null member", nil, true},
			{"other string", "b", false},
			{"other number", 2.0, false},
			{"boolean", true, false},
		})
	})

	t.Run("Primitives", func(t *testing.T) {
		run(t, alg.String(), accepts, []check{
			{"string", "x", true},
			{"empty string", "", true},
			{"number", 1.0, false},
			{"null", nil, false},
		})
		run(t, alg.Number(), accepts, []check{
			{"float", 1.5, true},
			{"int", 3, true},
			{"numeric string", "1", false},
		})
		run(t, alg.Boolean(), accepts, []check{
			{"true", true, true},
			{"false", false, true},
			{"string", "true", false},
		})
	})

	t.Run("Nullable", func(t *testing.T) {
		run(t, alg.Nullable(alg.String()), accepts, []check{
			{"null", nil, true},
			{"inner", "x", true},
			{"other", 1.0, false},
		})
	})

	t.Run("Type", func(t *testing.T) {
		r := alg.Type(map[string]R{"a": alg.String(), "b": alg.Number()})
		run(t, r, accepts, []check{
			{"all present", map[string]any{"a": "x", "b": 1.0}, true},
			{"extra keys", map[string]any{"a": "x", "b": 1.0, "c": true}, true},
			{"missing key", map[string]any{"a": "x"}, false},
			{"wrong property", map[string]any{"a": "x", "b": "1"}, false},
			{"not an object", []any{"x", 1.0}, false},
			{"null", nil, false},
		})
	})

	t.Run("Partial", func(t *testing.T) {
		r := alg.Partial(map[string]R{"a": alg.String(), "b": alg.Number()})
		run(t, r, accepts, []check{
			{"empty", map[string]any{}, true},
			{"some keys", map[string]any{"a": "x"}, true},
			{"wrong property", map[string]any{"a": 1.0}, false},
			{"not an object", "x", false},
		})
	})

	t.Run("Record", func(t *testing.T) {
		run(t, alg.Record(alg.Number()), accepts, []check{
			{"empty", map[string]any{}, true},
			{"values", map[string]any{"x": 1.0, "y": 2}, true},
			{"bad value", map[string]any{"x": "1"}, false},
			{"array", []any{}, false},
		})
	})

	t.Run("Array", func(t *testing.T) {
		run(t, alg.Array(alg.String()), accepts, []check{
			{"empty", []any{}, true},
			{"items", []any{"a", "b"}, true},
			{"typed slice", []string{"a"}, true},
			{"bad item", []any{"a", 1.0}, false},
			{"object", map[string]any{}, false},
		})
	})

	t.Run("Tuple", func(t *testing.T) {
		run(t, alg.Tuple(), accepts, []check{
			{"empty", []any{}, true},
			{"too long", []any{"a"}, false},
		})
		run(t, alg.Tuple(alg.String()), accepts, []check{
			{"one", []any{"a"}, true},
			{"wrong kind", []any{1.0}, false},
		})
		run(t, alg.Tuple(alg.String(), alg.Number()), accepts, []check{
			{"in order", []any{"a", 1.0}, true},
			{"swapped", []any{1.0, "a"}, false},
			{"too short", []any{"a"}, false},
			{"too long", []any{"a", 1.0, 2.0}, false},
		})
		run(t, alg.Tuple(alg.Number(), alg.Boolean(), alg.String()), accepts, []check{
			{"in order", []any{1.0, true, "a"}, true},
			{"last wrong", []any{1.0, true, 2.0}, false},
		})
	})

	t.Run("Intersect", func(t *testing.T) {
		left := alg.Type(map[string]R{"a": alg.String()})
		right := alg.Partial(map[string]R{"b": alg.Number()})
		r := alg.Intersect(right)(left)
		run(t, r, accepts, []check{
			{"both", map[string]any{"a": "x", "b": 1.0}, true},
			{"left only", map[string]any{"a": "x"}, true},
			{"right fails", map[string]any{"a": "x", "b": "y"}, false},
			{"left fails", map[string]any{"b": 1.0}, false},
		})
	})

	t.Run("Sum", func(t *testing.T) {
		r := alg.Sum("kind")(map[string]R{
			"circle": alg.Type(map[string]R{
				"kind":   alg.Literal(schemable.StringLiteral("circle")),
				"radius": alg.Number(),
			}),
			"square": alg.Type(map[string]R{
				"kind": alg.Literal(schemable.StringLiteral("square")),
				"side": alg.Number(),
			}),
		})
		run(t, r, accepts, []check{
			{"circle", map[string]any{"kind": "circle", "radius": 1.0}, true},
			{"square", map[string]any{"kind": "square", "side": 2.0}, true},
			{"member mismatch", map[string]any{"kind": "circle", "side": 2.0}, false},
			{"unknown tag", map[string]any{"kind": "triangle"}, false},
			{"missing tag", map[string]any{"radius": 1.0}, false},
			{"non-string tag", map[string]any{"kind": 1.0}, false},
		})
	})

	t.Run("Lazy", func(t *testing.T) {
		var person R
		person = alg.Lazy("Person", func() R {
			return alg.Type(map[string]R{
				"name":    alg.String(),
				"friends": alg.Array(person),
			})
		})
		run(t, person, accepts, []check{
			{"leaf", map[string]any{"name": "a", "friends": []any{}}, true},
			{"nested", map[string]any{"name": "a", "friends": []any{
				map[string]any{"name": "b", "friends": []any{
					map[string]any{"name": "c", "friends": []any{}},
				}},
			}}, true},
			{"nested failure", map[string]any{"name": "a", "friends": []any{
				map[string]any{"name": 1.0, "friends": []any{}},
			}}, false},
		})
	})

	t.Run("Lazy forces once", func(t *testing.T) {
		calls := 0
		r := alg.Lazy("Counted", func() R {
			calls++
			return alg.String()
		})
		assert.Equal(t, 0, calls, "the thunk must not run before use")
		accepts(r, "a")
		accepts(r, "b")
		assert.Equal(t, 1, calls)
	})
}

// RunExtensionContract verifies the capability extensions.
func RunExtensionContract[R any](t *testing.T, alg Full[R], accepts Accepts[R]) {
	t.Run("UnknownArray", func(t *testing.T) {
		run(t, alg.UnknownArray(), accepts, []check{
			{"mixed", []any{1.0, "a", nil}, true},
			{"object", map[string]any{}, false},
		})
	})

	t.Run("UnknownRecord", func(t *testing.T) {
		run(t, alg.UnknownRecord(), accepts, []check{
			{"mixed", map[string]any{"a": 1.0, "b": []any{}}, true},
			{"array", []any{}, false},
			{"null", nil, false},
		})
	})

	t.Run("Union", func(t *testing.T) {
		run(t, alg.Union(alg.String(), alg.Number()), accepts, []check{
			{"first", "a", true},
			{"second", 1.0, true},
			{"neither", true, false},
		})
	})

	t.Run("Refine", func(t *testing.T) {
		positive := schemable.Predicate(func(n float64) bool { return n > 0 })
		r := alg.Refine(positive, "Positive")(alg.Number())
		run(t, r, accepts, []check{
			{"accepted", 1.0, true},
			{"integer kind", 3, true},
			{"refused", -1.0, false},
			{"refused integer kind", -3, false},
			{"wrong base", "1", false},
		})
	})
}
