// Package openapi interprets schemas as OpenAPI 3.0 schema objects built with
// github.com/getkin/kin-openapi.
//
// Lazy schemas become entries under components/schemas and are referenced with $ref, so
// recursive schemas produce finite documents. The values behind those references are
// shared, which lets kin-openapi validate data against recursive schemas directly.
package openapi

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/schemable"
)

// URI identifies the OpenAPI interpreter.
const URI schemable.URI = "OpenAPI"

// Version is the OpenAPI version of documents rendered by Spec.
const Version = "3.0.3"

// ExtensionRefinement names the refinement applied to a schema.
const ExtensionRefinement = "x-refinement"

// ExtensionPrefixItems holds the positional component schemas of a tuple.
const ExtensionPrefixItems = "x-prefixItems"

// Schema builds an OpenAPI schema object within a Document.
type Schema struct {
	build func(d *Document) *openapi3.SchemaRef
}

// Document collects the component schemas reached while building.
type Document struct {
	Schemas openapi3.Schemas
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Schemas: make(openapi3.Schemas)}
}

// Add builds s into the document and returns its schema reference.
func (d *Document) Add(s Schema) *openapi3.SchemaRef {
	return s.build(d)
}

// Build builds s in a fresh document and returns the root and the component schemas.
func Build(s Schema) (*openapi3.SchemaRef, openapi3.Schemas) {
	d := NewDocument()
	root := d.Add(s)
	return root, d.Schemas
}

// RefPath returns the $ref of the component schema named id.
func RefPath(id string) string {
	return "#/components/schemas/" + id
}

// Validate checks value against ref with kin-openapi. The value is normalized through
// encoding/json first, so values decoded from YAML or written as Go literals validate
// the same way as JSON input.
func Validate(ref *openapi3.SchemaRef, value any) error {
	if ref == nil || ref.Value == nil {
		return fmt.Errorf("openapi: schema has no value")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to normalize value: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("failed to normalize value: %w", err)
	}
	return ref.Value.VisitJSON(normalized)
}

// Spec renders the component schemas of one or more named schemas as an OpenAPI document.
// format is "json" or "yaml".
func Spec(title, version string, schemas map[string]Schema, format string) ([]byte, error) {
	d := NewDocument()
	for _, name := range slices.Sorted(maps.Keys(schemas)) {
		ref := d.Add(schemas[name])
		if ref.Ref == RefPath(name) {
			continue
		}
		d.Schemas[name] = ref
	}

	doc := map[string]any{
		"openapi": Version,
		"info": map[string]any{
			"title":   title,
			"version": version,
		},
		"paths": map[string]any{},
		"components": map[string]any{
			"schemas": d.Schemas,
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal openapi document: %w", err)
	}
	switch format {
	case "", "json":
		return data, nil
	case "yaml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to convert openapi document: %w", err)
		}
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// copyOf returns a shallow copy of the schema behind ref that can be annotated without
// touching ref. References are wrapped in allOf instead of copied.
func copyOf(ref *openapi3.SchemaRef) *openapi3.Schema {
	if ref.Ref != "" || ref.Value == nil {
		return &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}}
	}
	c := *ref.Value
	if ref.Value.Extensions != nil {
		c.Extensions = maps.Clone(ref.Value.Extensions)
	}
	return &c
}

// Algebra implements the core contract and every capability extension.
type Algebra struct{}

// Schemable is the OpenAPI algebra instance.
var Schemable = Algebra{}

var (
	_ schemable.Schemable[Schema]             = Algebra{}
	_ schemable.WithUnknownContainers[Schema] = Algebra{}
	_ schemable.WithUnion[Schema]             = Algebra{}
	_ schemable.WithRefine[Schema]            = Algebra{}
)

func (Algebra) URI() schemable.URI { return URI }

func (Algebra) Literal(first schemable.Literal, rest ...schemable.Literal) Schema {
	lits := append([]schemable.Literal{first}, rest...)
	return Schema{build: func(*Document) *openapi3.SchemaRef {
		s := &openapi3.Schema{}
		kinds := make(map[schemable.LiteralKind]bool)
		for _, l := range lits {
			s.Enum = append(s.Enum, l.Value())
			if l.Kind() == schemable.LiteralNull {
				s.Nullable = true
				continue
			}
			kinds[l.Kind()] = true
		}
		if len(kinds) == 1 {
			for k := range kinds {
				s.Type = &openapi3.Types{k.String()}
			}
		}
		return &openapi3.SchemaRef{Value: s}
	}}
}

func (Algebra) String() Schema {
	return Schema{build: func(*Document) *openapi3.SchemaRef {
		return openapi3.NewStringSchema().NewRef()
	}}
}

func (Algebra) Number() Schema {
	return Schema{build: func(*Document) *openapi3.SchemaRef {
		return openapi3.NewFloat64Schema().NewRef()
	}}
}

func (Algebra) Boolean() Schema {
	return Schema{build: func(*Document) *openapi3.SchemaRef {
		return openapi3.NewBoolSchema().NewRef()
	}}
}

func (Algebra) UnknownArray() Schema {
	return Schema{build: func(*Document) *openapi3.SchemaRef {
		return openapi3.NewArraySchema().NewRef()
	}}
}

func (Algebra) UnknownRecord() Schema {
	return Schema{build: func(*Document) *openapi3.SchemaRef {
		return openapi3.NewObjectSchema().NewRef()
	}}
}

func (Algebra) Nullable(or Schema) Schema {
	return Schema{build: func(d *Document) *openapi3.SchemaRef {
		s := copyOf(or.build(d))
		s.Nullable = true
		return &openapi3.SchemaRef{Value: s}
	}}
}

func object(properties map[string]Schema, required bool) Schema {
	keys := slices.Sorted(maps.Keys(properties))
	return Schema{build: func(d *Document) *openapi3.SchemaRef {
		s := openapi3.NewObjectSchema()
		s.Properties = make(openapi3.Schemas, len(keys))
		for _, k := range keys {
			s.Properties[k] = properties[k].build(d)
		}
		if required && len(keys) > 0 {
			s.Required = slices.Clone(keys)
		}
		return &openapi3.SchemaRef{Value: s}
	}}
}

func (Algebra) Type(properties map[string]Schema) Schema { return object(properties, true) }

func (Algebra) Partial(properties map[string]Schema) Schema { return object(properties, false) }

func (Algebra) Record(codomain Schema) Schema {
	return Schema{build: func(d *Document) *openapi3.SchemaRef {
		s := openapi3.NewObjectSchema()
		s.AdditionalProperties = openapi3.AdditionalProperties{Schema: codomain.build(d)}
		return &openapi3.SchemaRef{Value: s}
	}}
}

func (Algebra) Array(items Schema) Schema {
	return Schema{build: func(d *Document) *openapi3.SchemaRef {
		s := openapi3.NewArraySchema()
		s.Items = items.build(d)
		return &openapi3.SchemaRef{Value: s}
	}}
}

// Tuple is an array of exactly len(components) items. OpenAPI 3.0 cannot constrain items
// by position, so each item must match some component and the positional schemas are
// recorded under ExtensionPrefixItems.
func (Algebra) Tuple(components ...Schema) Schema {
	return Schema{build: func(d *Document) *openapi3.SchemaRef {
		s := openapi3.NewArraySchema()
		n := uint64(len(components))
		s.MinItems = n
		s.MaxItems = &n
		if n == 0 {
			return &openapi3.SchemaRef{Value: s}
		}
		refs := make(openapi3.SchemaRefs, len(components))
		for i, c := range components {
			refs[i] = c.build(d)
		}
		s.Items = &openapi3.SchemaRef{Value: &openapi3.Schema{AnyOf: refs}}
		s.Extensions = map[string]any{ExtensionPrefixItems: refs}
		return &openapi3.SchemaRef{Value: s}
	}}
}

func (Algebra) Intersect(right Schema) func(left Schema) Schema {
	return func(left Schema) Schema {
		return Schema{build: func(d *Document) *openapi3.SchemaRef {
			return &openapi3.SchemaRef{Value: &openapi3.Schema{
				AllOf: openapi3.SchemaRefs{left.build(d), right.build(d)},
			}}
		}}
	}
}

// Sum is a oneOf with a discriminator. Each member is pinned to its tag value so exactly
// one member matches even when member shapes overlap.
func (Algebra) Sum(tag string) func(members map[string]Schema) Schema {
	return func(members map[string]Schema) Schema {
		keys := slices.Sorted(maps.Keys(members))
		return Schema{build: func(d *Document) *openapi3.SchemaRef {
			s := &openapi3.Schema{Discriminator: &openapi3.Discriminator{PropertyName: tag}}
			for _, k := range keys {
				pin := openapi3.NewObjectSchema()
				pin.Properties = openapi3.Schemas{
					tag: (&openapi3.Schema{Type: &openapi3.Types{openapi3.TypeString}, Enum: []any{k}}).NewRef(),
				}
				pin.Required = []string{tag}
				member := &openapi3.Schema{AllOf: openapi3.SchemaRefs{members[k].build(d), pin.NewRef()}}
				s.OneOf = append(s.OneOf, member.NewRef())
			}
			return &openapi3.SchemaRef{Value: s}
		}}
	}
}

func (Algebra) Union(first Schema, rest ...Schema) Schema {
	members := append([]Schema{first}, rest...)
	return Schema{build: func(d *Document) *openapi3.SchemaRef {
		s := &openapi3.Schema{}
		for _, m := range members {
			s.AnyOf = append(s.AnyOf, m.build(d))
		}
		return &openapi3.SchemaRef{Value: s}
	}}
}

// Refine cannot express the refinement itself; the result is the base schema annotated
// with the refinement id.
func (Algebra) Refine(refinement schemable.Refinement, id string) func(from Schema) Schema {
	return func(from Schema) Schema {
		return Schema{build: func(d *Document) *openapi3.SchemaRef {
			s := copyOf(from.build(d))
			if s.Extensions == nil {
				s.Extensions = make(map[string]any)
			}
			s.Extensions[ExtensionRefinement] = id
			return &openapi3.SchemaRef{Value: s}
		}}
	}
}

func (Algebra) Lazy(id string, f func() Schema) Schema {
	var mu sync.Mutex
	get := schemable.Memoize(func(string) Schema { return f() })
	return Schema{build: func(d *Document) *openapi3.SchemaRef {
		if existing, ok := d.Schemas[id]; ok {
			return &openapi3.SchemaRef{Ref: RefPath(id), Value: existing.Value}
		}
		target := &openapi3.Schema{}
		d.Schemas[id] = &openapi3.SchemaRef{Value: target}
		mu.Lock()
		s := get(id)
		mu.Unlock()
		built := s.build(d)
		switch {
		case built.Ref != "":
			*target = openapi3.Schema{AllOf: openapi3.SchemaRefs{built}}
		case built.Value != nil:
			*target = *built.Value
		}
		return &openapi3.SchemaRef{Ref: RefPath(id), Value: target}
	}}
}
