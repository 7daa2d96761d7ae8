package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/internal/presentation/graph"
	"github.com/aretw0/schemable/pkg/dsl"
)

func shapes(t *testing.T) *dsl.Document {
	t.Helper()
	doc, err := dsl.New("my-shapes").
		Define("Shape", dsl.Sum("kind", map[string]*dsl.Node{
			"circle": dsl.Type(map[string]*dsl.Node{"kind": dsl.Literal(schemable.StringLiteral("circle")), "radius": dsl.Ref("Length")}),
			"group":  dsl.Type(map[string]*dsl.Node{"kind": dsl.Literal(schemable.StringLiteral("group")), "shapes": dsl.Array(dsl.Ref("Shape"))}),
		})).
		Define("Length", dsl.Refine(dsl.Number(), "positive")).
		Root(dsl.Nullable(dsl.Ref("Shape"))).
		Build()
	require.NoError(t, err)
	return doc
}

func TestReferences(t *testing.T) {
	edges := graph.References(shapes(t))

	assert.Equal(t, []graph.Edge{
		{From: "doc_my-shapes", To: "Shape"},
		{From: "Shape", To: "Length", Label: "kind=circle.radius", Guarded: true},
		{From: "Shape", To: "Shape", Label: "kind=group.shapes[]", Guarded: true},
	}, edges)
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		contains []string
	}{
		{
			name:     "Root Shape",
			contains: []string{`doc_my_shapes(("my-shapes"))`},
		},
		{
			name:     "Definition Shapes",
			contains: []string{`Shape{{"Shape"}}`, `Length[["Length"]]`},
		},
		{
			name: "Edges",
			contains: []string{
				"doc_my_shapes --> Shape",
				`Shape -. "kind=circle.radius" .-> Length`,
				`Shape -. "kind=group.shapes[]" .-> Shape`,
			},
		},
	}

	output := graph.GenerateMermaid(shapes(t))
	require.True(t, strings.HasPrefix(output, "graph TD\n"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.Contains(t, output, s)
			}
		})
	}
}
