package dsl

import (
	"maps"

	"github.com/aretw0/schemable"
)

// Kind identifies the combinator a node stands for.
type Kind string

const (
	KindString        Kind = "string"
	KindNumber        Kind = "number"
	KindBoolean       Kind = "boolean"
	KindUnknownArray  Kind = "unknownArray"
	KindUnknownRecord Kind = "unknownRecord"
	KindLiteral       Kind = "literal"
	KindNullable      Kind = "nullable"
	KindType          Kind = "type"
	KindPartial       Kind = "partial"
	KindRecord        Kind = "record"
	KindArray         Kind = "array"
	KindTuple         Kind = "tuple"
	KindIntersect     Kind = "intersect"
	KindSum           Kind = "sum"
	KindRef           Kind = "ref"
	KindUnion         Kind = "union"
	KindRefine        Kind = "refine"
)

// Node is one combinator application in a document.
type Node struct {
	Kind Kind

	Literals   []schemable.Literal // literal
	Elem       *Node               // nullable, record, array, refine (the refined schema)
	Properties map[string]*Node    // type, partial
	Items      []*Node             // tuple, intersect, union
	Tag        string              // sum
	Members    map[string]*Node    // sum
	Ref        string              // ref
	Predicate  string              // refine
}

// Document is a named set of definitions with a root schema.
type Document struct {
	Name        string
	Description string
	Root        *Node
	Definitions map[string]*Node

	// Source is the file the document was loaded from, if any.
	Source string
}

func String() *Node        { return &Node{Kind: KindString} }
func Number() *Node        { return &Node{Kind: KindNumber} }
func Boolean() *Node       { return &Node{Kind: KindBoolean} }
func UnknownArray() *Node  { return &Node{Kind: KindUnknownArray} }
func UnknownRecord() *Node { return &Node{Kind: KindUnknownRecord} }

// Literal describes the union of the given literal values.
func Literal(first schemable.Literal, rest ...schemable.Literal) *Node {
	return &Node{Kind: KindLiteral, Literals: append([]schemable.Literal{first}, rest...)}
}

func Nullable(n *Node) *Node { return &Node{Kind: KindNullable, Elem: n} }

func Type(properties map[string]*Node) *Node {
	return &Node{Kind: KindType, Properties: properties}
}

func Partial(properties map[string]*Node) *Node {
	return &Node{Kind: KindPartial, Properties: properties}
}

func Record(codomain *Node) *Node { return &Node{Kind: KindRecord, Elem: codomain} }
func Array(items *Node) *Node     { return &Node{Kind: KindArray, Elem: items} }

func Tuple(components ...*Node) *Node { return &Node{Kind: KindTuple, Items: components} }

// Intersect describes left & right & more..., folded left.
func Intersect(left, right *Node, more ...*Node) *Node {
	return &Node{Kind: KindIntersect, Items: append([]*Node{left, right}, more...)}
}

func Sum(tag string, members map[string]*Node) *Node {
	return &Node{Kind: KindSum, Tag: tag, Members: members}
}

// Ref refers to the definition called name.
func Ref(name string) *Node { return &Node{Kind: KindRef, Ref: name} }

func Union(first *Node, rest ...*Node) *Node {
	return &Node{Kind: KindUnion, Items: append([]*Node{first}, rest...)}
}

// Refine narrows from with the registered refinement called predicate.
func Refine(from *Node, predicate string) *Node {
	return &Node{Kind: KindRefine, Elem: from, Predicate: predicate}
}

// Builder assembles a Document in Go.
type Builder struct {
	doc         Document
	refinements Refinements
}

// New creates a new document builder.
func New(name string) *Builder {
	return &Builder{
		doc: Document{
			Name:        name,
			Definitions: make(map[string]*Node),
		},
	}
}

// Describe sets the document description.
func (b *Builder) Describe(description string) *Builder {
	b.doc.Description = description
	return b
}

// Define adds a named definition. Defining a name twice replaces the earlier node.
func (b *Builder) Define(name string, n *Node) *Builder {
	b.doc.Definitions[name] = n
	return b
}

// Root sets the root schema.
func (b *Builder) Root(n *Node) *Builder {
	b.doc.Root = n
	return b
}

// WithRefinements makes Build check refine predicates against refinements.
func (b *Builder) WithRefinements(refinements Refinements) *Builder {
	b.refinements = refinements
	return b
}

// Build validates and returns the document.
func (b *Builder) Build() (*Document, error) {
	doc := b.doc
	doc.Definitions = maps.Clone(b.doc.Definitions)
	if err := Validate(&doc, b.refinements); err != nil {
		return nil, err
	}
	return &doc, nil
}
