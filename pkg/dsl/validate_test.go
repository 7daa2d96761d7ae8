package dsl_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/pkg/dsl"
	"github.com/aretw0/schemable/pkg/registry"
)

func reasons(t *testing.T, err error) []string {
	t.Helper()
	errs := dsl.ValidationErrors(err)
	require.NotEmpty(t, errs, "expected validation errors, got %v", err)
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func TestValidate_Examples(t *testing.T) {
	docs, err := dsl.LoadDir(filepath.Join("..", "..", "examples", "schemas"))
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, dsl.Validate(doc, registry.Default()))
		})
	}
}

func TestValidate_Dangling(t *testing.T) {
	doc, err := dsl.Load(filepath.Join("testdata", "dangling.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		`root.type.owner: reference to undefined "Owner"`,
		"root.type.score: refinement not found: huge",
		`definitions.Tag.sum.members.a: member does not declare the tag property "kind"`,
	}, reasons(t, dsl.Validate(doc, registry.Default())))

	// Predicates are only checked against a registry.
	assert.Len(t, reasons(t, dsl.Validate(doc, nil)), 2)
}

func TestValidate_UnguardedCycle(t *testing.T) {
	doc, err := dsl.Load(filepath.Join("testdata", "cycle.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"definitions.A: unguarded recursion: A -> B -> A",
	}, reasons(t, dsl.Validate(doc, nil)))
}

func TestValidate_GuardedRecursion(t *testing.T) {
	tests := map[string]*dsl.Node{
		"array":  dsl.Array(dsl.Ref("T")),
		"record": dsl.Record(dsl.Ref("T")),
		"tuple":  dsl.Tuple(dsl.String(), dsl.Ref("T")),
		"type":   dsl.Type(map[string]*dsl.Node{"next": dsl.Ref("T")}),
		"partial in union": dsl.Union(
			dsl.Literal(schemable.Null),
			dsl.Partial(map[string]*dsl.Node{"next": dsl.Ref("T")}),
		),
	}
	for name, n := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := dsl.New(name).Define("T", n).Root(dsl.Ref("T")).Build()
			assert.NoError(t, err)
		})
	}

	_, err := dsl.New("self").Define("T", dsl.Nullable(dsl.Ref("T"))).Root(dsl.Ref("T")).Build()
	assert.Equal(t, []string{"definitions.T: unguarded recursion: T -> T"}, reasons(t, err))
}

func TestValidate_Malformed(t *testing.T) {
	doc := &dsl.Document{
		Root: dsl.Type(map[string]*dsl.Node{
			"empty literal": {Kind: dsl.KindLiteral},
			"empty union":   {Kind: dsl.KindUnion},
			"short":         {Kind: dsl.KindIntersect, Items: []*dsl.Node{dsl.String()}},
			"untagged":      dsl.Sum("", map[string]*dsl.Node{}),
			"unnamed":       {Kind: dsl.KindRefine, Elem: dsl.String()},
			"weird":         {Kind: "maybe"},
		}),
	}

	assert.Equal(t, []string{
		"root.type.empty literal: literal needs at least one value",
		"root.type.empty union: union needs at least one member",
		"root.type.short: intersect needs at least two members",
		`root.type.unnamed: refine needs a predicate`,
		"root.type.untagged: sum needs a tag",
		"root.type.untagged: sum needs at least one member",
		`root.type.weird: unknown node "maybe"`,
	}, reasons(t, dsl.Validate(doc, nil)))

	assert.Equal(t, []string{"root: missing"}, reasons(t, dsl.Validate(&dsl.Document{}, nil)))
}

func TestBuilder_BuiltDocumentIsDetached(t *testing.T) {
	b := dsl.New("tags").Define("Tag", dsl.String()).Root(dsl.Array(dsl.Ref("Tag")))
	doc, err := b.Build()
	require.NoError(t, err)

	b.Define("Dangling", dsl.Ref("Missing"))

	assert.Len(t, doc.Definitions, 1)
	assert.NotContains(t, doc.Definitions, "Dangling")
	require.NoError(t, dsl.Validate(doc, nil))
}
