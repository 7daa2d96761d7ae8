package schemable

// URI identifies an interpreter.
type URI string

// Schemable is the core algebra every interpreter implements.
//
// R is the interpreter's representation of a schema. Representations produced by one
// algebra instance must only be passed back to that same instance.
type Schemable[R any] interface {
	URI() URI

	// Literal describes the union of exactly the given literal values.
	Literal(first Literal, rest ...Literal) R
	String() R
	Number() R
	Boolean() R

	// Nullable describes A | null.
	Nullable(or R) R

	// Type describes an object whose listed properties are all required.
	Type(properties map[string]R) R
	// Partial describes an object whose listed properties are all optional.
	Partial(properties map[string]R) R

	// Record describes a string-keyed mapping to the codomain.
	Record(codomain R) R
	Array(items R) R

	// Tuple describes a fixed-length sequence; the K-th element matches the K-th component.
	Tuple(components ...R) R

	// Intersect describes A & B. The right operand is supplied first.
	Intersect(right R) func(left R) R

	// Sum describes a tagged union: members are keyed by the value of the tag property.
	Sum(tag string) func(members map[string]R) R

	// Lazy defers f until the schema is first used. f runs at most once per id, which
	// is what makes self-referential schemas terminate.
	Lazy(id string, f func() R) R
}

// WithUnknownContainers is implemented by interpreters that describe containers of
// unknown values, usually as a starting point for Refine.
type WithUnknownContainers[R any] interface {
	UnknownArray() R
	UnknownRecord() R
}

// WithUnion is implemented by interpreters that describe untagged unions.
type WithUnion[R any] interface {
	Union(first R, rest ...R) R
}

// WithRefine is implemented by interpreters that describe subtypes.
//
// The id stands in for the refinement function when an interpreter has to tell two
// refinements apart; functions cannot be compared.
type WithRefine[R any] interface {
	Refine(refinement Refinement, id string) func(from R) R
}

// Refinement narrows a value to a subtype. It returns the narrowed value and whether the
// input belongs to the subtype, in the manner of a type assertion.
//
// The type system does not check the narrowing; keeping the returned value a member of the
// subtype is the refinement's responsibility.
type Refinement func(a any) (b any, ok bool)

// NewRefinement lifts a typed narrowing into a Refinement. Values that are not an A do not
// belong to the subtype.
func NewRefinement[A, B any](f func(A) (B, bool)) Refinement {
	return func(a any) (any, bool) {
		v, ok := a.(A)
		if !ok {
			return nil, false
		}
		b, ok := f(v)
		if !ok {
			return nil, false
		}
		return b, true
	}
}

// Predicate lifts a boolean check into a Refinement that keeps the value unchanged.
func Predicate[A any](f func(A) bool) Refinement {
	return NewRefinement(func(a A) (A, bool) {
		return a, f(a)
	})
}
