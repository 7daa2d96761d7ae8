// Package arbitrary interprets schemas as seeded random value generators, for property
// tests and example payloads.
//
// Generated values use the same normalized representation as package decoder: float64
// numbers, map[string]any objects and []any arrays.
//
// Generation is bounded by Gen.MaxDepth. At the bound arrays and records are empty,
// optional properties are omitted and nullable values are null. A Lazy schema that is
// re-entered at the bound fails with ErrDepthExceeded; unions and sums then fall back to
// their other members (in listed order for unions, tag order for sums), so a recursive
// schema terminates whenever one of its members does not recurse.
//
// Refine draws from the refined schema until the refinement accepts a value and yields that
// value before narrowing, so samples remain valid decoder input. Refinements that random
// draws rarely satisfy, such as uuid or dateTime over strings, fail with
// ErrRefinementExhausted.
package arbitrary

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/aretw0/schemable"
)

// URI identifies the arbitrary interpreter.
const URI schemable.URI = "Arbitrary"

// ErrRefinementExhausted is returned when no generated value satisfied a refinement.
var ErrRefinementExhausted = errors.New("refinement exhausted")

// ErrDepthExceeded is returned when a recursive schema cannot be generated within the
// depth bound, for example a required property that always recurses.
var ErrDepthExceeded = errors.New("depth limit exceeded")

const (
	DefaultMaxDepth    = 4
	DefaultMaxAttempts = 100
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Gen carries the state of one generation run. It is not safe for concurrent use.
type Gen struct {
	Rand        *rand.Rand
	Depth       int
	MaxDepth    int
	MaxAttempts int

	active map[string]int // Lazy ids being generated, with their nesting count
}

// NewGen returns a generator seeded with seed.
func NewGen(seed uint64) *Gen {
	return &Gen{
		Rand:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		MaxDepth:    DefaultMaxDepth,
		MaxAttempts: DefaultMaxAttempts,
	}
}

func (g *Gen) exhausted() bool { return g.Depth >= g.MaxDepth }

func (g *Gen) enter() func() {
	g.Depth++
	return func() { g.Depth-- }
}

// recursing reports whether entering id again must stop. Past the depth bound any
// re-entry stops; below it, recursion that adds no depth stops after MaxDepth rounds.
func (g *Gen) recursing(id string) bool {
	n := g.active[id]
	return n > 0 && (g.exhausted() || n > g.MaxDepth)
}

// fallback runs member(start), then the others in order, until one is not cut off by
// the depth bound.
func fallback(n, start int, member func(i int) (any, error)) (any, error) {
	var err error
	for j := range n {
		var v any
		v, err = member((start + j) % n)
		if !errors.Is(err, ErrDepthExceeded) {
			return v, err
		}
	}
	return nil, err
}

func (g *Gen) string() string {
	b := make([]byte, g.Rand.IntN(11))
	for i := range b {
		b[i] = alphabet[g.Rand.IntN(len(alphabet))]
	}
	return string(b)
}

func (g *Gen) key() string {
	b := make([]byte, 1+g.Rand.IntN(8))
	for i := range b {
		b[i] = alphabet[g.Rand.IntN(26)]
	}
	return string(b)
}

func (g *Gen) number() float64 {
	if g.Rand.IntN(2) == 0 {
		return float64(g.Rand.IntN(201) - 100)
	}
	return math.Round(g.Rand.NormFloat64()*10000) / 100
}

func (g *Gen) scalar() any {
	switch g.Rand.IntN(3) {
	case 0:
		return g.string()
	case 1:
		return g.number()
	default:
		return g.Rand.IntN(2) == 0
	}
}

// Arbitrary generates a value of a schema.
type Arbitrary func(g *Gen) (any, error)

// Sample generates one value with a generator seeded with seed.
func Sample(a Arbitrary, seed uint64) (any, error) {
	return a(NewGen(seed))
}

// SampleN generates n values from a single generator seeded with seed.
func SampleN(a Arbitrary, seed uint64, n int) ([]any, error) {
	g := NewGen(seed)
	out := make([]any, 0, n)
	for range n {
		v, err := a(g)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func constant(f func(g *Gen) any) Arbitrary {
	return func(g *Gen) (any, error) { return f(g), nil }
}

// Algebra implements the core contract and every capability extension.
type Algebra struct{}

// Schemable is the arbitrary algebra instance.
var Schemable = Algebra{}

var (
	_ schemable.Schemable[Arbitrary]             = Algebra{}
	_ schemable.WithUnknownContainers[Arbitrary] = Algebra{}
	_ schemable.WithUnion[Arbitrary]             = Algebra{}
	_ schemable.WithRefine[Arbitrary]            = Algebra{}
)

func (Algebra) URI() schemable.URI { return URI }

func (Algebra) Literal(first schemable.Literal, rest ...schemable.Literal) Arbitrary {
	lits := append([]schemable.Literal{first}, rest...)
	return constant(func(g *Gen) any {
		return lits[g.Rand.IntN(len(lits))].Value()
	})
}

func (Algebra) String() Arbitrary { return constant(func(g *Gen) any { return g.string() }) }

func (Algebra) Number() Arbitrary { return constant(func(g *Gen) any { return g.number() }) }

func (Algebra) Boolean() Arbitrary {
	return constant(func(g *Gen) any { return g.Rand.IntN(2) == 0 })
}

func (Algebra) UnknownArray() Arbitrary {
	return constant(func(g *Gen) any {
		out := []any{}
		if g.exhausted() {
			return out
		}
		for range g.Rand.IntN(4) {
			out = append(out, g.scalar())
		}
		return out
	})
}

func (Algebra) UnknownRecord() Arbitrary {
	return constant(func(g *Gen) any {
		out := map[string]any{}
		if g.exhausted() {
			return out
		}
		for range g.Rand.IntN(4) {
			out[g.key()] = g.scalar()
		}
		return out
	})
}

func (Algebra) Nullable(or Arbitrary) Arbitrary {
	return func(g *Gen) (any, error) {
		if g.exhausted() || g.Rand.IntN(4) == 0 {
			return nil, nil
		}
		return or(g)
	}
}

func (Algebra) Type(properties map[string]Arbitrary) Arbitrary {
	keys := slices.Sorted(maps.Keys(properties))
	return func(g *Gen) (any, error) {
		defer g.enter()()
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			v, err := properties[k](g)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	}
}

func (Algebra) Partial(properties map[string]Arbitrary) Arbitrary {
	keys := slices.Sorted(maps.Keys(properties))
	return func(g *Gen) (any, error) {
		out := make(map[string]any, len(keys))
		if g.exhausted() {
			return out, nil
		}
		defer g.enter()()
		for _, k := range keys {
			if g.Rand.IntN(2) == 0 {
				continue
			}
			v, err := properties[k](g)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	}
}

func (Algebra) Record(codomain Arbitrary) Arbitrary {
	return func(g *Gen) (any, error) {
		out := map[string]any{}
		if g.exhausted() {
			return out, nil
		}
		defer g.enter()()
		for range g.Rand.IntN(4) {
			k := g.key()
			v, err := codomain(g)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	}
}

func (Algebra) Array(items Arbitrary) Arbitrary {
	return func(g *Gen) (any, error) {
		out := []any{}
		if g.exhausted() {
			return out, nil
		}
		defer g.enter()()
		for i := range g.Rand.IntN(4) {
			v, err := items(g)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	}
}

func (Algebra) Tuple(components ...Arbitrary) Arbitrary {
	return func(g *Gen) (any, error) {
		defer g.enter()()
		out := make([]any, len(components))
		for i, c := range components {
			v, err := c(g)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}
}

func (Algebra) Intersect(right Arbitrary) func(left Arbitrary) Arbitrary {
	return func(left Arbitrary) Arbitrary {
		return func(g *Gen) (any, error) {
			l, err := left(g)
			if err != nil {
				return nil, err
			}
			r, err := right(g)
			if err != nil {
				return nil, err
			}
			return schemable.Intersect(l, r), nil
		}
	}
}

func (Algebra) Sum(tag string) func(members map[string]Arbitrary) Arbitrary {
	return func(members map[string]Arbitrary) Arbitrary {
		keys := slices.Sorted(maps.Keys(members))
		return func(g *Gen) (any, error) {
			if len(keys) == 0 {
				return nil, fmt.Errorf("sum on %q has no members", tag)
			}
			start := 0
			if !g.exhausted() {
				start = g.Rand.IntN(len(keys))
			}
			return fallback(len(keys), start, func(i int) (any, error) {
				v, err := members[keys[i]](g)
				if err != nil {
					return nil, err
				}
				if r, ok := v.(map[string]any); ok {
					r[tag] = keys[i]
				}
				return v, nil
			})
		}
	}
}

func (Algebra) Union(first Arbitrary, rest ...Arbitrary) Arbitrary {
	members := append([]Arbitrary{first}, rest...)
	return func(g *Gen) (any, error) {
		start := 0
		if !g.exhausted() {
			start = g.Rand.IntN(len(members))
		}
		return fallback(len(members), start, func(i int) (any, error) {
			return members[i](g)
		})
	}
}

func (Algebra) Refine(refinement schemable.Refinement, id string) func(from Arbitrary) Arbitrary {
	return func(from Arbitrary) Arbitrary {
		return func(g *Gen) (any, error) {
			for range max(g.MaxAttempts, 1) {
				v, err := from(g)
				if err != nil {
					return nil, err
				}
				if _, ok := refinement(v); ok {
					return v, nil
				}
			}
			return nil, fmt.Errorf("%s: %w after %d attempts", id, ErrRefinementExhausted, g.MaxAttempts)
		}
	}
}

func (Algebra) Lazy(id string, f func() Arbitrary) Arbitrary {
	var mu sync.Mutex
	get := schemable.Memoize(func(string) Arbitrary { return f() })
	return func(g *Gen) (any, error) {
		if g.recursing(id) {
			return nil, fmt.Errorf("%s: %w", id, ErrDepthExceeded)
		}
		mu.Lock()
		a := get(id)
		mu.Unlock()

		if g.active == nil {
			g.active = make(map[string]int)
		}
		g.active[id]++
		defer func() { g.active[id]-- }()
		return a(g)
	}
}
