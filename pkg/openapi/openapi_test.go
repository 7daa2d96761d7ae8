package openapi_test

import (
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/pkg/openapi"
)

var s = openapi.Schemable

func person() openapi.Schema {
	var p openapi.Schema
	p = s.Lazy("Person", func() openapi.Schema {
		return s.Type(map[string]openapi.Schema{
			"name":    s.String(),
			"age":     s.Nullable(s.Number()),
			"friends": s.Array(p),
		})
	})
	return p
}

func shape() openapi.Schema {
	return s.Sum("kind")(map[string]openapi.Schema{
		"circle": s.Type(map[string]openapi.Schema{
			"kind":   s.Literal(schemable.StringLiteral("circle")),
			"radius": s.Number(),
		}),
		"square": s.Type(map[string]openapi.Schema{
			"kind": s.Literal(schemable.StringLiteral("square")),
			"side": s.Number(),
		}),
	})
}

func TestBuild_Type(t *testing.T) {
	root, components := openapi.Build(s.Type(map[string]openapi.Schema{
		"name": s.String(),
		"age":  s.Number(),
	}))

	assert.Empty(t, components)
	require.NotNil(t, root.Value)
	assert.True(t, root.Value.Type.Is(openapi3.TypeObject))
	assert.Equal(t, []string{"age", "name"}, root.Value.Required)
	assert.True(t, root.Value.Properties["name"].Value.Type.Is(openapi3.TypeString))
	assert.True(t, root.Value.Properties["age"].Value.Type.Is(openapi3.TypeNumber))

	partial, _ := openapi.Build(s.Partial(map[string]openapi.Schema{"name": s.String()}))
	assert.Empty(t, partial.Value.Required)
}

func TestBuild_Lazy(t *testing.T) {
	root, components := openapi.Build(person())

	assert.Equal(t, openapi.RefPath("Person"), root.Ref)
	require.Contains(t, components, "Person")

	def := components["Person"].Value
	require.NotNil(t, def)
	friends := def.Properties["friends"].Value
	assert.Equal(t, openapi.RefPath("Person"), friends.Items.Ref)
	assert.Same(t, def, friends.Items.Value, "references share the component value")
	assert.True(t, def.Properties["age"].Value.Nullable)
}

func TestBuild_Tuple(t *testing.T) {
	root, _ := openapi.Build(s.Tuple(s.String(), s.Number()))

	v := root.Value
	assert.Equal(t, uint64(2), v.MinItems)
	require.NotNil(t, v.MaxItems)
	assert.Equal(t, uint64(2), *v.MaxItems)
	require.Contains(t, v.Extensions, openapi.ExtensionPrefixItems)
	assert.Len(t, v.Extensions[openapi.ExtensionPrefixItems], 2)
	assert.Len(t, v.Items.Value.AnyOf, 2)

	assert.NoError(t, openapi.Validate(root, []any{"a", 1}))
	assert.Error(t, openapi.Validate(root, []any{"a"}))
	assert.Error(t, openapi.Validate(root, []any{"a", 1, 2}))
}

func TestBuild_Refine(t *testing.T) {
	positive := schemable.Predicate(func(n float64) bool { return n > 0 })
	base := s.Number()

	refined, _ := openapi.Build(s.Refine(positive, "Positive")(base))
	plain, _ := openapi.Build(base)

	assert.Equal(t, "Positive", refined.Value.Extensions[openapi.ExtensionRefinement])
	assert.True(t, refined.Value.Type.Is(openapi3.TypeNumber))
	assert.NotContains(t, plain.Value.Extensions, openapi.ExtensionRefinement)
}

func TestBuild_Literal(t *testing.T) {
	root, _ := openapi.Build(s.Literal(schemable.StringLiteral("a"), schemable.StringLiteral("b")))

	assert.Equal(t, []any{"a", "b"}, root.Value.Enum)
	assert.True(t, root.Value.Type.Is(openapi3.TypeString))

	mixed, _ := openapi.Build(s.Literal(schemable.StringLiteral("a"), schemable.NumberLiteral(1), schemable.Null))
	assert.Nil(t, mixed.Value.Type)
	assert.True(t, mixed.Value.Nullable)
}

func TestValidate(t *testing.T) {
	root, _ := openapi.Build(person())

	tests := []struct {
		name  string
		value any
		valid bool
	}{
		{"leaf", map[string]any{"name": "Ada", "age": 36, "friends": []any{}}, true},
		{"null age", map[string]any{"name": "Ada", "age": nil, "friends": []any{}}, true},
		{"nested", map[string]any{"name": "Ada", "age": 1, "friends": []any{
			map[string]any{"name": "Bob", "age": 2, "friends": []any{}},
		}}, true},
		{"nested failure", map[string]any{"name": "Ada", "age": 1, "friends": []any{
			map[string]any{"name": 3, "age": 2, "friends": []any{}},
		}}, false},
		{"missing property", map[string]any{"name": "Ada", "friends": []any{}}, false},
		{"not an object", "Ada", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := openapi.Validate(root, tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Sum(t *testing.T) {
	root, _ := openapi.Build(shape())

	require.NotNil(t, root.Value.Discriminator)
	assert.Equal(t, "kind", root.Value.Discriminator.PropertyName)
	assert.Len(t, root.Value.OneOf, 2)

	assert.NoError(t, openapi.Validate(root, map[string]any{"kind": "circle", "radius": 1}))
	assert.NoError(t, openapi.Validate(root, map[string]any{"kind": "square", "side": 2}))
	assert.Error(t, openapi.Validate(root, map[string]any{"kind": "circle", "side": 2}))
	assert.Error(t, openapi.Validate(root, map[string]any{"kind": "hexagon"}))
	assert.Error(t, openapi.Validate(root, map[string]any{"radius": 1}))
}

func TestSpec(t *testing.T) {
	schemas := map[string]openapi.Schema{
		"person": person(),
		"shape":  shape(),
	}

	data, err := openapi.Spec("shapes", "1.0.0", schemas, "json")
	require.NoError(t, err)

	var doc struct {
		OpenAPI    string `json:"openapi"`
		Info       struct{ Title, Version string }
		Components struct {
			Schemas map[string]map[string]any `json:"schemas"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, openapi.Version, doc.OpenAPI)
	assert.Equal(t, "shapes", doc.Info.Title)
	assert.Contains(t, doc.Components.Schemas, "Person")
	assert.Contains(t, doc.Components.Schemas, "shape")
	assert.Equal(t, openapi.RefPath("Person"), doc.Components.Schemas["person"]["$ref"])

	yml, err := openapi.Spec("shapes", "1.0.0", schemas, "yaml")
	require.NoError(t, err)
	assert.Contains(t, string(yml), "openapi: 3.0.3")

	_, err = openapi.Spec("shapes", "1.0.0", schemas, "toml")
	assert.Error(t, err)
}
