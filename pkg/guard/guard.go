// Package guard interprets schemas as type guards: predicates reporting whether an
// unknown value has the described shape.
package guard

import (
	"sync"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/internal/values"
)

// URI identifies the guard interpreter.
const URI schemable.URI = "Guard"

// Guard reports whether u has the shape of a schema.
type Guard func(u any) bool

// Is is a convenience for g(u).
func (g Guard) Is(u any) bool { return g(u) }

// Algebra implements the core contract and every capability extension.
type Algebra struct{}

// Schemable is the guard algebra instance.
var Schemable = Algebra{}

var (
	_ schemable.Schemable[Guard]             = Algebra{}
	_ schemable.WithUnknownContainers[Guard] = Algebra{}
	_ schemable.WithUnion[Guard]             = Algebra{}
	_ schemable.WithRefine[Guard]            = Algebra{}
)

func (Algebra) URI() schemable.URI { return URI }

func (Algebra) Literal(first schemable.Literal, rest ...schemable.Literal) Guard {
	lits := append([]schemable.Literal{first}, rest...)
	return func(u any) bool {
		for _, l := range lits {
			if l.Matches(u) {
				return true
			}
		}
		return false
	}
}

func (Algebra) String() Guard {
	return func(u any) bool {
		_, ok := u.(string)
		return ok
	}
}

func (Algebra) Number() Guard { return values.IsNumber }

func (Algebra) Boolean() Guard {
	return func(u any) bool {
		_, ok := u.(bool)
		return ok
	}
}

func (Algebra) UnknownArray() Guard {
	return func(u any) bool {
		_, ok := values.Array(u)
		return ok
	}
}

func (Algebra) UnknownRecord() Guard { return values.IsRecord }

func (Algebra) Nullable(or Guard) Guard {
	return func(u any) bool {
		return u == nil || or(u)
	}
}

func (Algebra) Type(properties map[string]Guard) Guard {
	return func(u any) bool {
		r, ok := values.Record(u)
		if !ok {
			return false
		}
		for k, g := range properties {
			v, present := r[k]
			if !present || !g(v) {
				return false
			}
		}
		return true
	}
}

func (Algebra) Partial(properties map[string]Guard) Guard {
	return func(u any) bool {
		r, ok := values.Record(u)
		if !ok {
			return false
		}
		for k, g := range properties {
			if v, present := r[k]; present && !g(v) {
				return false
			}
		}
		return true
	}
}

func (Algebra) Record(codomain Guard) Guard {
	return func(u any) bool {
		r, ok := values.Record(u)
		if !ok {
			return false
		}
		for _, v := range r {
			if !codomain(v) {
				return false
			}
		}
		return true
	}
}

func (Algebra) Array(items Guard) Guard {
	return func(u any) bool {
		a, ok := values.Array(u)
		if !ok {
			return false
		}
		for _, v := range a {
			if !items(v) {
				return false
			}
		}
		return true
	}
}

func (Algebra) Tuple(components ...Guard) Guard {
	return func(u any) bool {
		a, ok := values.Array(u)
		if !ok || len(a) != len(components) {
			return false
		}
		for i, g := range components {
			if !g(a[i]) {
				return false
			}
		}
		return true
	}
}

func (Algebra) Intersect(right Guard) func(left Guard) Guard {
	return func(left Guard) Guard {
		return func(u any) bool {
			return left(u) && right(u)
		}
	}
}

func (Algebra) Sum(tag string) func(members map[string]Guard) Guard {
	return func(members map[string]Guard) Guard {
		return func(u any) bool {
			r, ok := values.Record(u)
			if !ok {
				return false
			}
			v, ok := r[tag].(string)
			if !ok {
				return false
			}
			g, ok := members[v]
			return ok && g(u)
		}
	}
}

func (Algebra) Union(first Guard, rest ...Guard) Guard {
	members := append([]Guard{first}, rest...)
	return func(u any) bool {
		for _, g := range members {
			if g(u) {
				return true
			}
		}
		return false
	}
}

func (Algebra) Refine(refinement schemable.Refinement, id string) func(from Guard) Guard {
	return func(from Guard) Guard {
		return func(u any) bool {
			if !from(u) {
				return false
			}
			// Numbers reach the refinement as float64, as they do after decoding.
			if n, ok := values.Float(u); ok {
				u = n
			}
			_, ok := refinement(u)
			return ok
		}
	}
}

func (Algebra) Lazy(id string, f func() Guard) Guard {
	var mu sync.Mutex
	get := schemable.Memoize(func(string) Guard { return f() })
	return func(u any) bool {
		mu.Lock()
		g := get(id)
		mu.Unlock()
		return g(u)
	}
}
