package dsl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/pkg/dsl"
)

func TestParse_YAML(t *testing.T) {
	doc, err := dsl.Load(filepath.Join("testdata", "shapes.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "shapes", doc.Name)
	assert.Equal(t, "Geometric shapes, tagged by kind.", doc.Description)
	assert.Equal(t, filepath.Join("testdata", "shapes.yaml"), doc.Source)
	assert.Equal(t, dsl.Ref("Shape"), doc.Root)

	shape := doc.Definitions["Shape"]
	require.NotNil(t, shape)
	assert.Equal(t, dsl.KindSum, shape.Kind)
	assert.Equal(t, "kind", shape.Tag)
	require.Contains(t, shape.Members, "circle")

	circle := shape.Members["circle"]
	assert.Equal(t, dsl.Literal(schemable.StringLiteral("circle")), circle.Properties["kind"])
	assert.Equal(t, dsl.Refine(dsl.Number(), "positive"), circle.Properties["radius"])
	assert.Equal(t, dsl.Array(dsl.Ref("Shape")), shape.Members["group"].Properties["shapes"])
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{
		"root": {
			"tuple": [
				"string",
				{ "literal": [1, true, null] },
				{ "intersect": ["unknownRecord", { "partial": { "a": "number" } }, { "ref": "B" }] },
				{ "union": ["boolean", { "record": "unknownArray" }] }
			]
		},
		"definitions": { "B": { "type": {} } }
	}`)

	doc, err := dsl.Parse(data, dsl.FormatJSON)
	require.NoError(t, err)

	want := dsl.Tuple(
		dsl.String(),
		dsl.Literal(schemable.NumberLiteral(1), schemable.BoolLiteral(true), schemable.Null),
		dsl.Intersect(dsl.UnknownRecord(), dsl.Partial(map[string]*dsl.Node{"a": dsl.Number()}), dsl.Ref("B")),
		dsl.Union(dsl.Boolean(), dsl.Record(dsl.UnknownArray())),
	)
	assert.Equal(t, want, doc.Root)
	assert.Equal(t, dsl.Type(map[string]*dsl.Node{}), doc.Definitions["B"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  string
	}{
		{"missing root", "name: x", "root: missing"},
		{"unknown top-level key", "root: string\nroots: string", "failed to parse document"},
		{"unknown node", "root: { optional: string }", `root.optional: unknown node "optional"`},
		{"two keys", "root: { array: string, record: string }", "root: node must have exactly one key, got 2"},
		{"bad literal", "root: { literal: [[1]] }", "root.literal[0]: literal must be"},
		{"bad list", "root: { tuple: string }", "root.tuple: expected a list, got string"},
		{"unknown sum field", "root: { sum: { tag: k, members: {}, extra: 1 } }", "root.sum"},
		{"number node", "root: 3", "root: node must be a string or a map, got int"},
		{"nested error path", "root: string\ndefinitions:\n  A: { type: { b: { array: 1 } } }", "definitions.A.type.b.array"},
		{"bad yaml", "root: [", "failed to parse document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dsl.Parse([]byte(tt.doc), dsl.FormatYAML)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, dsl.FormatJSON, dsl.FormatOf("a/b.JSON"))
	assert.Equal(t, dsl.FormatYAML, dsl.FormatOf("a/b.yml"))
	assert.Equal(t, dsl.FormatYAML, dsl.FormatOf("a/b"))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("a.yaml", "root: string")
	write("b.json", `{"name": "bee", "root": "number"}`)
	write("notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	docs, err := dsl.LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, dsl.String(), docs["a"].Root)
	assert.Equal(t, dsl.Number(), docs["bee"].Root)

	write("c.yml", "name: a\nroot: boolean")
	_, err = dsl.LoadDir(dir)
	assert.ErrorContains(t, err, `duplicate document name "a"`)
}
