package values_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/schemable/internal/values"
)

func TestFloat(t *testing.T) {
	for _, v := range []any{1, int8(1), uint64(1), float32(1), 1.0} {
		n, ok := values.Float(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, 1.0, n)
	}
	_, ok := values.Float("1")
	assert.False(t, ok)
}

func TestRecord(t *testing.T) {
	m := map[string]any{"a": 1}
	r, ok := values.Record(m)
	assert.True(t, ok)
	assert.Equal(t, m, r)

	r, ok = values.Record(map[string]int{"a": 1})
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"a": 1}, r)

	_, ok = values.Record(map[int]any{})
	assert.False(t, ok)
	_, ok = values.Record(nil)
	assert.False(t, ok)
}

func TestArray(t *testing.T) {
	a, ok := values.Array([2]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, a)

	_, ok = values.Array([]byte("ab"))
	assert.False(t, ok)
	_, ok = values.Array("ab")
	assert.False(t, ok)
}

func TestTypeOf(t *testing.T) {
	tests := map[string]any{
		"null":              nil,
		"number":            uint(3),
		"object":            map[string]bool{},
		"string":            "",
		"boolean":           true,
		"array":             []int{},
		"values_test.point": &point{},
	}
	for want, v := range tests {
		assert.Equal(t, want, values.TypeOf(v))
	}
}

type point struct{}
