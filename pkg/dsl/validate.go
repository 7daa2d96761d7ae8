package dsl

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/schemable"
)

// Refinements resolves the predicates named by refine nodes.
// *registry.Registry satisfies it.
type Refinements interface {
	Lookup(name string) (schemable.Refinement, error)
}

// Validate checks a document for dangling references, unknown predicates, malformed
// combinators and recursion that does not pass through a container. Predicates are only
// checked when refinements is non-nil.
func Validate(doc *Document, refinements Refinements) error {
	v := &validator{doc: doc, refinements: refinements}
	if doc.Root == nil {
		v.fail("root", "missing")
	} else {
		v.node(doc.Root, "root")
	}
	for _, name := range slices.Sorted(maps.Keys(doc.Definitions)) {
		n := doc.Definitions[name]
		if n == nil {
			v.fail("definitions."+name, "missing node")
			continue
		}
		v.node(n, "definitions."+name)
	}
	if len(v.errs) == 0 {
		v.cycles()
	}
	if len(v.errs) > 0 {
		return &AggregateError{Errors: v.errs}
	}
	return nil
}

type validator struct {
	doc         *Document
	refinements Refinements
	errs        []error
}

func (v *validator) fail(path, reason string) {
	v.errs = append(v.errs, &ValidationError{Path: path, Reason: reason})
}

func (v *validator) node(n *Node, path string) {
	if n == nil {
		v.fail(path, "missing node")
		return
	}
	switch n.Kind {
	case KindString, KindNumber, KindBoolean, KindUnknownArray, KindUnknownRecord:

	case KindLiteral:
		if len(n.Literals) == 0 {
			v.fail(path, "literal needs at least one value")
		}

	case KindNullable, KindRecord, KindArray:
		v.node(n.Elem, path+"."+string(n.Kind))

	case KindType, KindPartial:
		for _, k := range slices.Sorted(maps.Keys(n.Properties)) {
			v.node(n.Properties[k], path+"."+string(n.Kind)+"."+k)
		}

	case KindTuple:
		v.items(n, path)

	case KindIntersect:
		if len(n.Items) < 2 {
			v.fail(path, "intersect needs at least two members")
		}
		v.items(n, path)

	case KindUnion:
		if len(n.Items) == 0 {
			v.fail(path, "union needs at least one member")
		}
		v.items(n, path)

	case KindSum:
		v.sum(n, path)

	case KindRef:
		if _, ok := v.doc.Definitions[n.Ref]; !ok {
			v.fail(path, fmt.Sprintf("reference to undefined %q", n.Ref))
		}

	case KindRefine:
		if n.Predicate == "" {
			v.fail(path, "refine needs a predicate")
		} else if v.refinements != nil {
			if _, err := v.refinements.Lookup(n.Predicate); err != nil {
				v.fail(path, err.Error())
			}
		}
		v.node(n.Elem, path+".refine.from")

	default:
		v.fail(path, fmt.Sprintf("%s %q", ErrUnknownNode, string(n.Kind)))
	}
}

func (v *validator) items(n *Node, path string) {
	for i, item := range n.Items {
		v.node(item, fmt.Sprintf("%s.%s[%d]", path, n.Kind, i))
	}
}

func (v *validator) sum(n *Node, path string) {
	if n.Tag == "" {
		v.fail(path, "sum needs a tag")
	}
	if len(n.Members) == 0 {
		v.fail(path, "sum needs at least one member")
	}
	for _, k := range slices.Sorted(maps.Keys(n.Members)) {
		member := n.Members[k]
		mpath := path + ".sum.members." + k
		v.node(member, mpath)
		if n.Tag == "" {
			continue
		}
		if obj := v.resolve(member); obj != nil && obj.Kind == KindType {
			if _, ok := obj.Properties[n.Tag]; !ok {
				v.fail(mpath, fmt.Sprintf("member does not declare the tag property %q", n.Tag))
			}
		}
	}
}

// resolve follows references until it reaches a node that is not one.
func (v *validator) resolve(n *Node) *Node {
	seen := make(map[string]bool)
	for n != nil && n.Kind == KindRef {
		if seen[n.Ref] {
			return nil
		}
		seen[n.Ref] = true
		n = v.doc.Definitions[n.Ref]
	}
	return n
}

// unguarded lists the definitions reachable from n without entering a container.
func unguarded(n *Node, out []string) []string {
	if n == nil {
		return out
	}
	switch n.Kind {
	case KindRef:
		out = append(out, n.Ref)
	case KindNullable, KindRefine:
		out = unguarded(n.Elem, out)
	case KindIntersect, KindUnion:
		for _, item := range n.Items {
			out = unguarded(item, out)
		}
	case KindSum:
		for _, k := range slices.Sorted(maps.Keys(n.Members)) {
			out = unguarded(n.Members[k], out)
		}
	}
	return out
}

func (v *validator) cycles() {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int)
	var stack []string
	reported := make(map[string]bool)

	var visit func(name string)
	visit = func(name string) {
		state[name] = active
		stack = append(stack, name)
		for _, next := range unguarded(v.doc.Definitions[name], nil) {
			switch state[next] {
			case unvisited:
				visit(next)
			case active:
				start := slices.Index(stack, next)
				cycle := append(slices.Clone(stack[start:]), next)
				if !reported[next] {
					reported[next] = true
					v.fail("definitions."+next, "unguarded recursion: "+strings.Join(cycle, " -> "))
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
	}

	for _, name := range slices.Sorted(maps.Keys(v.doc.Definitions)) {
		if state[name] == unvisited {
			visit(name)
		}
	}
}
