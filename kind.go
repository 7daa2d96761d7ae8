package schemable

import "fmt"

// HKT is a schema representation whose interpreter is known only at runtime.
//
// It is the boxed counterpart of Schemable[R]: the URI travels with the value so that a
// representation handed to the wrong interpreter is caught instead of misread.
type HKT struct {
	URI   URI
	Value any
}

// Box adapts an interpreter to the boxed representation. Only the core contract is boxed.
func Box[R any](s Schemable[R]) Schemable[HKT] {
	return boxed[R]{s: s}
}

// Unbox returns the representation held by h. It panics if h was produced by an
// interpreter other than uri or does not hold an R.
func Unbox[R any](h HKT, uri URI) R {
	if h.URI != uri {
		panic(fmt.Sprintf("schemable: %s representation passed to %s", h.URI, uri))
	}
	r, ok := h.Value.(R)
	if !ok {
		var zero R
		panic(fmt.Sprintf("schemable: %s representation holds %T, want %T", uri, h.Value, zero))
	}
	return r
}

type boxed[R any] struct {
	s Schemable[R]
}

func (b boxed[R]) URI() URI { return b.s.URI() }

func (b boxed[R]) box(r R) HKT { return HKT{URI: b.s.URI(), Value: r} }

func (b boxed[R]) unbox(h HKT) R { return Unbox[R](h, b.s.URI()) }

func (b boxed[R]) unboxAll(hs []HKT) []R {
	out := make([]R, len(hs))
	for i, h := range hs {
		out[i] = b.unbox(h)
	}
	return out
}

func (b boxed[R]) unboxMap(hs map[string]HKT) map[string]R {
	out := make(map[string]R, len(hs))
	for k, h := range hs {
		out[k] = b.unbox(h)
	}
	return out
}

func (b boxed[R]) Literal(first Literal, rest ...Literal) HKT {
	return b.box(b.s.Literal(first, rest...))
}

func (b boxed[R]) String() HKT  { return b.box(b.s.String()) }
func (b boxed[R]) Number() HKT  { return b.box(b.s.Number()) }
func (b boxed[R]) Boolean() HKT { return b.box(b.s.Boolean()) }

func (b boxed[R]) Nullable(or HKT) HKT { return b.box(b.s.Nullable(b.unbox(or))) }

func (b boxed[R]) Type(properties map[string]HKT) HKT {
	return b.box(b.s.Type(b.unboxMap(properties)))
}

func (b boxed[R]) Partial(properties map[string]HKT) HKT {
	return b.box(b.s.Partial(b.unboxMap(properties)))
}

func (b boxed[R]) Record(codomain HKT) HKT { return b.box(b.s.Record(b.unbox(codomain))) }
func (b boxed[R]) Array(items HKT) HKT     { return b.box(b.s.Array(b.unbox(items))) }

func (b boxed[R]) Tuple(components ...HKT) HKT {
	return b.box(b.s.Tuple(b.unboxAll(components)...))
}

func (b boxed[R]) Intersect(right HKT) func(left HKT) HKT {
	f := b.s.Intersect(b.unbox(right))
	return func(left HKT) HKT {
		return b.box(f(b.unbox(left)))
	}
}

func (b boxed[R]) Sum(tag string) func(members map[string]HKT) HKT {
	f := b.s.Sum(tag)
	return func(members map[string]HKT) HKT {
		return b.box(f(b.unboxMap(members)))
	}
}

func (b boxed[R]) Lazy(id string, f func() HKT) HKT {
	return b.box(b.s.Lazy(id, func() R {
		return b.unbox(f())
	}))
}
