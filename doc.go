/*
Package schemable defines a schema algebra: a small vocabulary of type-directed combinators
that describe the shape of data independently of what the shape is used for.

A schema is written once against the algebra and reinterpreted by any number of
interpreters. Each interpreter supplies its own algebra instance (a value implementing
Schemable[R], where R is the interpreter's representation) and running the schema against
that instance produces one concrete artifact: a type guard, a decoder, a printer, an
OpenAPI document, a random value generator.

# Concept

	func Person[R any](S schemable.Schemable[R]) R {
		var person R
		person = S.Lazy("Person", func() R {
			return S.Type(map[string]R{
				"name":    S.String(),
				"age":     S.Nullable(S.Number()),
				"friends": S.Array(person),
			})
		})
		return person
	}

	isPerson := Person(guard.Schemable)       // guard.Guard
	personDecoder := Person(decoder.Schemable) // *decoder.Decoder

Interpreters opt into additional capabilities by implementing WithUnknownContainers,
WithUnion or WithRefine. A schema that needs one of them constrains its type parameter on the
combined interface, so handing it a core-only algebra fails to compile.

# Utilities

Memoize caches a one-argument function and is what interpreters use to make Lazy evaluate its
thunk at most once per identifier. Intersect shallow-merges two interpreted values and is the
building block for Intersect combinators that operate on runtime values.
*/
package schemable
