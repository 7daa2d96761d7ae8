package dsl

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/schemable"
)

// Interpret builds the document's root schema with alg.
//
// Every reference becomes alg.Lazy(name, ...), so recursive definitions terminate and each
// definition is built once per call. Nodes that need an extension the algebra does not
// implement fail with ErrUnsupported. refine nodes resolve their predicate through
// refinements, which must be non-nil if the document uses any.
func Interpret[R any](doc *Document, alg schemable.Schemable[R], refinements Refinements) (R, error) {
	var zero R
	if err := Validate(doc, refinements); err != nil {
		return zero, err
	}

	in := &interpreter[R]{
		alg:         alg,
		refinements: refinements,
		built:       make(map[string]R, len(doc.Definitions)),
	}
	in.ref = schemable.Memoize(func(name string) R {
		return alg.Lazy(name, func() R { return in.built[name] })
	})

	for _, name := range slices.Sorted(maps.Keys(doc.Definitions)) {
		r, err := in.node(doc.Definitions[name], "definitions."+name)
		if err != nil {
			return zero, err
		}
		in.built[name] = r
	}
	return in.node(doc.Root, "root")
}

type interpreter[R any] struct {
	alg         schemable.Schemable[R]
	refinements Refinements
	built       map[string]R
	ref         func(name string) R
}

func (in *interpreter[R]) unsupported(path string, ext string) error {
	return fmt.Errorf("%s: %s: %w (%s)", path, ext, ErrUnsupported, in.alg.URI())
}

func (in *interpreter[R]) node(n *Node, path string) (R, error) {
	var zero R
	alg := in.alg
	switch n.Kind {
	case KindString:
		return alg.String(), nil
	case KindNumber:
		return alg.Number(), nil
	case KindBoolean:
		return alg.Boolean(), nil

	case KindUnknownArray, KindUnknownRecord:
		ext, ok := alg.(schemable.WithUnknownContainers[R])
		if !ok {
			return zero, in.unsupported(path, string(n.Kind))
		}
		if n.Kind == KindUnknownArray {
			return ext.UnknownArray(), nil
		}
		return ext.UnknownRecord(), nil

	case KindLiteral:
		return alg.Literal(n.Literals[0], n.Literals[1:]...), nil

	case KindNullable, KindRecord, KindArray:
		elem, err := in.node(n.Elem, path+"."+string(n.Kind))
		if err != nil {
			return zero, err
		}
		switch n.Kind {
		case KindNullable:
			return alg.Nullable(elem), nil
		case KindRecord:
			return alg.Record(elem), nil
		}
		return alg.Array(elem), nil

	case KindType, KindPartial:
		props, err := in.nodes(n.Properties, path+"."+string(n.Kind))
		if err != nil {
			return zero, err
		}
		if n.Kind == KindType {
			return alg.Type(props), nil
		}
		return alg.Partial(props), nil

	case KindTuple:
		items, err := in.items(n, path)
		if err != nil {
			return zero, err
		}
		return alg.Tuple(items...), nil

	case KindIntersect:
		items, err := in.items(n, path)
		if err != nil {
			return zero, err
		}
		acc := items[0]
		for _, right := range items[1:] {
			acc = alg.Intersect(right)(acc)
		}
		return acc, nil

	case KindSum:
		members, err := in.nodes(n.Members, path+".sum.members")
		if err != nil {
			return zero, err
		}
		return alg.Sum(n.Tag)(members), nil

	case KindRef:
		return in.ref(n.Ref), nil

	case KindUnion:
		ext, ok := alg.(schemable.WithUnion[R])
		if !ok {
			return zero, in.unsupported(path, "union")
		}
		items, err := in.items(n, path)
		if err != nil {
			return zero, err
		}
		return ext.Union(items[0], items[1:]...), nil

	case KindRefine:
		ext, ok := alg.(schemable.WithRefine[R])
		if !ok {
			return zero, in.unsupported(path, "refine")
		}
		if in.refinements == nil {
			return zero, fmt.Errorf("%s: no refinements to resolve %q", path, n.Predicate)
		}
		refinement, err := in.refinements.Lookup(n.Predicate)
		if err != nil {
			return zero, fmt.Errorf("%s: %w", path, err)
		}
		from, err := in.node(n.Elem, path+".refine.from")
		if err != nil {
			return zero, err
		}
		return ext.Refine(refinement, n.Predicate)(from), nil
	}
	return zero, fmt.Errorf("%s: %w %q", path, ErrUnknownNode, string(n.Kind))
}

func (in *interpreter[R]) items(n *Node, path string) ([]R, error) {
	out := make([]R, len(n.Items))
	for i, item := range n.Items {
		r, err := in.node(item, fmt.Sprintf("%s.%s[%d]", path, n.Kind, i))
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (in *interpreter[R]) nodes(m map[string]*Node, path string) (map[string]R, error) {
	out := make(map[string]R, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		r, err := in.node(m[k], path+"."+k)
		if err != nil {
			return nil, err
		}
		out[k] = r
	}
	return out, nil
}
