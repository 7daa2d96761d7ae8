package schemable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/pkg/decoder"
	"github.com/aretw0/schemable/pkg/guard"
	"github.com/aretw0/schemable/pkg/schemabletest"
)

func TestBox_Contract(t *testing.T) {
	t.Run("Guard", func(t *testing.T) {
		schemabletest.RunContract(t, schemable.Box(guard.Schemable), func(h schemable.HKT, v any) bool {
			return schemable.Unbox[guard.Guard](h, guard.URI)(v)
		})
	})

	t.Run("Decoder", func(t *testing.T) {
		schemabletest.RunContract(t, schemable.Box(decoder.Schemable), func(h schemable.HKT, v any) bool {
			_, err := schemable.Unbox[*decoder.Decoder](h, decoder.URI).Decode(v)
			return err == nil
		})
	})
}

func TestBox_CarriesURI(t *testing.T) {
	boxed := schemable.Box(guard.Schemable)

	h := boxed.String()

	assert.Equal(t, guard.URI, boxed.URI())
	assert.Equal(t, guard.URI, h.URI)
	assert.True(t, schemable.Unbox[guard.Guard](h, guard.URI)("x"))
}

func TestUnbox_Mismatch(t *testing.T) {
	h := schemable.Box(guard.Schemable).String()

	assert.PanicsWithValue(t, "schemable: Guard representation passed to Decoder", func() {
		schemable.Unbox[*decoder.Decoder](h, decoder.URI)
	})
	assert.Panics(t, func() {
		schemable.Unbox[*decoder.Decoder](h, guard.URI)
	})
}

func TestBox_RejectsForeignRepresentation(t *testing.T) {
	boxedGuard := schemable.Box(guard.Schemable)
	foreign := schemable.Box(decoder.Schemable).String()

	assert.Panics(t, func() {
		boxedGuard.Array(foreign)
	})
}
