/*
Package dsl describes schemas as documents that any schemable algebra can interpret.

A document is a set of named definitions plus a root node, written in YAML or JSON. The same
document interpreted with guard.Schemable yields a type guard, with decoder.Schemable a
decoder, with openapi.Schemable an OpenAPI schema, and so on.

Example document:

	name: shapes
	description: Geometric shapes
	root: Shape
	definitions:
	  Shape:
	    sum:
	      tag: kind
	      members:
	        circle: { type: { kind: { literal: [circle] }, radius: number } }
	        square: { type: { kind: { literal: [square] }, side: number } }

# Nodes

A node is either a string or a map with exactly one key:

  - "string", "number", "boolean", "unknownArray", "unknownRecord": primitives.
  - any other string: a reference to a definition, same as {ref: Name}.
  - literal: a scalar or a non-empty list of scalars.
  - nullable, record, array: a node.
  - type, partial: a map of property names to nodes.
  - tuple, union: a list of nodes. intersect: a list of at least two nodes, folded left.
  - sum: {tag: property, members: {value: node}}.
  - refine: {from: node, predicate: name}, with the predicate looked up in a registry.

References are interpreted with Lazy, so definitions may be recursive. Recursion must pass
through a container (type, partial, record, array or tuple); Validate rejects cycles that
do not, because interpreting them never terminates.

Documents can also be assembled in Go:

	doc, err := dsl.New("tree").
		Define("Tree", dsl.Type(map[string]*dsl.Node{
			"value":    dsl.Number(),
			"children": dsl.Array(dsl.Ref("Tree")),
		})).
		Root(dsl.Ref("Tree")).
		Build()
*/
package dsl
