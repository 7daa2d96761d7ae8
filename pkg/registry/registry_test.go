package registry_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/pkg/registry"
)

func TestRegistry(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("short", schemable.Predicate(func(s string) bool { return len(s) < 4 }))

	ref, err := r.Lookup("short")
	require.NoError(t, err)
	_, ok := ref("abc")
	assert.True(t, ok)

	_, err = r.Lookup("long")
	assert.ErrorIs(t, err, registry.ErrRefinementNotFound)
	assert.Equal(t, []string{"short"}, r.Names())
}

func TestDefault(t *testing.T) {
	assert.Equal(t,
		[]string{"dateTime", "integer", "nonEmpty", "nonNegative", "positive", "semver", "uuid"},
		registry.Default().Names())
}

func TestBuiltins(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name       string
		refinement schemable.Refinement
		input      any
		ok         bool
		want       any
	}{
		{"nonEmpty string", registry.NonEmpty, "a", true, "a"},
		{"nonEmpty empty string", registry.NonEmpty, "", false, nil},
		{"nonEmpty array", registry.NonEmpty, []any{1}, true, []any{1}},
		{"nonEmpty empty record", registry.NonEmpty, map[string]any{}, false, nil},
		{"integer", registry.Integer, 3.0, true, int64(3)},
		{"integer fraction", registry.Integer, 3.5, false, nil},
		{"positive", registry.Positive, 2.0, true, 2.0},
		{"positive zero", registry.Positive, 0.0, false, nil},
		{"nonNegative zero", registry.NonNegative, 0, true, 0},
		{"uuid", registry.UUID, id.String(), true, id},
		{"uuid garbage", registry.UUID, "not-a-uuid", false, nil},
		{"semver", registry.Semver, "1.2.3", true, "1.2.3"},
		{"semver prefixed", registry.Semver, "v1.2.3-rc.1", true, "v1.2.3-rc.1"},
		{"semver garbage", registry.Semver, "one", false, nil},
		{"dateTime", registry.DateTime, "2024-02-29T12:00:00Z", true, time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)},
		{"dateTime garbage", registry.DateTime, "yesterday", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.refinement(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
