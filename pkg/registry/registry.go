// Package registry names refinements so that schema documents can refer to them.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/internal/values"
)

// ErrRefinementNotFound is returned when no refinement is registered under a name.
var ErrRefinementNotFound = errors.New("refinement not found")

// Registry manages the available refinements.
type Registry struct {
	mu          sync.RWMutex
	refinements map[string]schemable.Refinement
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		refinements: make(map[string]schemable.Refinement),
	}
}

// Default returns a registry holding the builtin refinements.
func Default() *Registry {
	r := NewRegistry()
	r.Register("nonEmpty", NonEmpty)
	r.Register("integer", Integer)
	r.Register("positive", Positive)
	r.Register("nonNegative", NonNegative)
	r.Register("uuid", UUID)
	r.Register("semver", Semver)
	r.Register("dateTime", DateTime)
	return r
}

// Register adds a refinement to the registry.
// If a refinement with the same name exists, it is overwritten.
func (r *Registry) Register(name string, refinement schemable.Refinement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refinements[name] = refinement
}

// Lookup returns the refinement registered under name.
func (r *Registry) Lookup(name string) (schemable.Refinement, error) {
	r.mu.RLock()
	refinement, ok := r.refinements[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRefinementNotFound, name)
	}
	return refinement, nil
}

// Names lists the registered refinements in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.refinements))
}

// NonEmpty accepts non-empty strings, arrays and records.
func NonEmpty(a any) (any, bool) {
	if s, ok := a.(string); ok {
		return s, s != ""
	}
	if arr, ok := values.Array(a); ok {
		return a, len(arr) > 0
	}
	if rec, ok := values.Record(a); ok {
		return a, len(rec) > 0
	}
	return nil, false
}

// Integer accepts whole numbers and narrows them to int64.
func Integer(a any) (any, bool) {
	n, ok := values.Float(a)
	if !ok || n != float64(int64(n)) {
		return nil, false
	}
	return int64(n), true
}

// Positive accepts numbers greater than zero.
func Positive(a any) (any, bool) {
	n, ok := values.Float(a)
	return a, ok && n > 0
}

// NonNegative accepts numbers greater than or equal to zero.
func NonNegative(a any) (any, bool) {
	n, ok := values.Float(a)
	return a, ok && n >= 0
}

// UUID accepts strings holding a UUID and narrows them to uuid.UUID.
var UUID = schemable.NewRefinement(func(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	return id, err == nil
})

// Semver accepts semantic versions, with or without the leading "v".
var Semver = schemable.Predicate(func(s string) bool {
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	return semver.IsValid(s)
})

// DateTime accepts RFC 3339 timestamps and narrows them to time.Time.
var DateTime = schemable.NewRefinement(func(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	return t, err == nil
})
