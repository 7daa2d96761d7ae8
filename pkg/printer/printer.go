// Package printer interprets schemas as human-readable type descriptions written in a
// TypeScript-like syntax.
//
// Lazy schemas print as a reference to their identifier; each referenced identifier is
// defined once, so recursive schemas print finitely:
//
//	type Person = { friends: Array<Person>; name: string };
//
//	Person
package printer

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/schemable"
)

// URI identifies the printer interpreter.
const URI schemable.URI = "Printer"

// Operator precedence of a printed expression, lowest first.
const (
	precUnion = iota
	precIntersection
	precAtom
)

// Printer renders a schema.
type Printer struct {
	print func(s *state) (string, int)
}

// Definition is a named type collected from a Lazy schema.
type Definition struct {
	Name string
	Type string
}

type state struct {
	defs     map[string]string
	order    []string
	visiting map[string]bool
}

func newState() *state {
	return &state{
		defs:     make(map[string]string),
		visiting: make(map[string]bool),
	}
}

// Expression renders p and returns the root expression and the definitions it references.
// A definition is listed after the definitions its own type refers to.
func Expression(p Printer) (string, []Definition) {
	s := newState()
	root, _ := p.print(s)
	defs := make([]Definition, len(s.order))
	for i, name := range s.order {
		defs[i] = Definition{Name: name, Type: s.defs[name]}
	}
	return root, defs
}

// Print renders p as definitions followed by the root expression.
func Print(p Printer) string {
	root, defs := Expression(p)
	var b strings.Builder
	for _, d := range defs {
		fmt.Fprintf(&b, "type %s = %s;\n", d.Name, d.Type)
	}
	if len(defs) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(root)
	return b.String()
}

// Markdown renders p as a markdown document suitable for a terminal renderer.
func Markdown(title, description string, p Printer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if description != "" {
		fmt.Fprintf(&b, "%s\n\n", description)
	}
	b.WriteString("```typescript\n")
	b.WriteString(Print(p))
	b.WriteString("\n```\n")
	return b.String()
}

func atom(text string) Printer {
	return Printer{print: func(*state) (string, int) { return text, precAtom }}
}

func render(p Printer, s *state, min int) string {
	text, prec := p.print(s)
	if prec < min {
		return "(" + text + ")"
	}
	return text
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func propertyName(k string) string {
	if identifier.MatchString(k) {
		return k
	}
	return schemable.StringLiteral(k).String()
}

// Algebra implements the core contract and every capability extension.
type Algebra struct{}

// Schemable is the printer algebra instance.
var Schemable = Algebra{}

var (
	_ schemable.Schemable[Printer]             = Algebra{}
	_ schemable.WithUnknownContainers[Printer] = Algebra{}
	_ schemable.WithUnion[Printer]             = Algebra{}
	_ schemable.WithRefine[Printer]            = Algebra{}
)

func (Algebra) URI() schemable.URI { return URI }

func (Algebra) Literal(first schemable.Literal, rest ...schemable.Literal) Printer {
	lits := append([]schemable.Literal{first}, rest...)
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = l.String()
	}
	text := strings.Join(parts, " | ")
	prec := precAtom
	if len(lits) > 1 {
		prec = precUnion
	}
	return Printer{print: func(*state) (string, int) { return text, prec }}
}

func (Algebra) String() Printer        { return atom("string") }
func (Algebra) Number() Printer        { return atom("number") }
func (Algebra) Boolean() Printer       { return atom("boolean") }
func (Algebra) UnknownArray() Printer  { return atom("Array<unknown>") }
func (Algebra) UnknownRecord() Printer { return atom("Record<string, unknown>") }

func (Algebra) Nullable(or Printer) Printer {
	return Printer{print: func(s *state) (string, int) {
		return render(or, s, precIntersection) + " | null", precUnion
	}}
}

func object(properties map[string]Printer, optional bool) Printer {
	keys := slices.Sorted(maps.Keys(properties))
	mark := ":"
	if optional {
		mark = "?:"
	}
	return Printer{print: func(s *state) (string, int) {
		if len(keys) == 0 {
			return "{}", precAtom
		}
		fields := make([]string, len(keys))
		for i, k := range keys {
			text, _ := properties[k].print(s)
			fields[i] = propertyName(k) + mark + " " + text
		}
		return "{ " + strings.Join(fields, "; ") + " }", precAtom
	}}
}

func (Algebra) Type(properties map[string]Printer) Printer { return object(properties, false) }

func (Algebra) Partial(properties map[string]Printer) Printer { return object(properties, true) }

func (Algebra) Record(codomain Printer) Printer {
	return Printer{print: func(s *state) (string, int) {
		text, _ := codomain.print(s)
		return "Record<string, " + text + ">", precAtom
	}}
}

func (Algebra) Array(items Printer) Printer {
	return Printer{print: func(s *state) (string, int) {
		text, _ := items.print(s)
		return "Array<" + text + ">", precAtom
	}}
}

func (Algebra) Tuple(components ...Printer) Printer {
	return Printer{print: func(s *state) (string, int) {
		parts := make([]string, len(components))
		for i, c := range components {
			parts[i], _ = c.print(s)
		}
		return "[" + strings.Join(parts, ", ") + "]", precAtom
	}}
}

func (Algebra) Intersect(right Printer) func(left Printer) Printer {
	return func(left Printer) Printer {
		return Printer{print: func(s *state) (string, int) {
			return render(left, s, precIntersection) + " & " + render(right, s, precIntersection), precIntersection
		}}
	}
}

func (Algebra) Sum(tag string) func(members map[string]Printer) Printer {
	return func(members map[string]Printer) Printer {
		keys := slices.Sorted(maps.Keys(members))
		return Printer{print: func(s *state) (string, int) {
			if len(keys) == 0 {
				return "never", precAtom
			}
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = render(members[k], s, precIntersection)
			}
			if len(parts) == 1 {
				return parts[0], precIntersection
			}
			return strings.Join(parts, " | "), precUnion
		}}
	}
}

func (Algebra) Union(first Printer, rest ...Printer) Printer {
	members := append([]Printer{first}, rest...)
	return Printer{print: func(s *state) (string, int) {
		parts := make([]string, len(members))
		for i, m := range members {
			parts[i] = render(m, s, precIntersection)
		}
		if len(parts) == 1 {
			return parts[0], precIntersection
		}
		return strings.Join(parts, " | "), precUnion
	}}
}

func (Algebra) Refine(refinement schemable.Refinement, id string) func(from Printer) Printer {
	return func(from Printer) Printer {
		return Printer{print: func(s *state) (string, int) {
			text, _ := from.print(s)
			return fmt.Sprintf("Refined<%s, %s>", text, schemable.StringLiteral(id)), precAtom
		}}
	}
}

func (Algebra) Lazy(id string, f func() Printer) Printer {
	var mu sync.Mutex
	get := schemable.Memoize(func(string) Printer { return f() })
	return Printer{print: func(s *state) (string, int) {
		if _, done := s.defs[id]; done || s.visiting[id] {
			return id, precAtom
		}
		s.visiting[id] = true
		mu.Lock()
		p := get(id)
		mu.Unlock()
		text, _ := p.print(s)
		s.defs[id] = text
		s.order = append(s.order, id)
		return id, precAtom
	}}
}
