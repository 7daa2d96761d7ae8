// Package catalog serves a directory of schema documents to interpreters.
//
// Documents are loaded and validated up front. Each (schema, interpreter) pair is compiled
// on first use and cached, so adapters can ask for the same decoder or printer on every
// request.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/internal/logging"
	"github.com/aretw0/schemable/pkg/dsl"
	"github.com/aretw0/schemable/pkg/registry"
)

// ErrSchemaNotFound is returned when the catalog holds no document with the requested name.
var ErrSchemaNotFound = errors.New("schema not found")

type key struct {
	name string
	uri  schemable.URI
}

// Catalog holds validated documents and their compiled representations.
type Catalog struct {
	docs        map[string]*dsl.Document
	refinements *registry.Registry
	logger      *slog.Logger

	mu       sync.Mutex
	compiled map[key]schemable.HKT
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithRegistry sets the refinements documents may use (default: registry.Default()).
func WithRegistry(r *registry.Registry) Option {
	return func(c *Catalog) {
		c.refinements = r
	}
}

// New builds a catalog from documents that were already loaded. Every document is
// validated; all failures are reported together.
func New(docs map[string]*dsl.Document, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		docs:     make(map[string]*dsl.Document, len(docs)),
		compiled: make(map[key]schemable.HKT),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.refinements == nil {
		c.refinements = registry.Default()
	}

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(docs)) {
		doc := docs[name]
		if err := dsl.Validate(doc, c.refinements); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		c.docs[name] = doc
		c.logger.Debug("schema loaded", "schema", name, "source", doc.Source)
	}
	if len(errs) > 0 {
		return nil, &dsl.AggregateError{Errors: errs}
	}
	return c, nil
}

// Load reads every document in dir and builds a catalog from them.
func Load(dir string, opts ...Option) (*Catalog, error) {
	docs, err := dsl.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	c, err := New(docs, opts...)
	if err != nil {
		return nil, err
	}
	c.logger.Info("catalog loaded", "dir", dir, "schemas", len(c.docs))
	return c, nil
}

// Names lists the schemas in lexical order.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.docs))
}

// Document returns the named document.
func (c *Catalog) Document(name string) (*dsl.Document, error) {
	doc, ok := c.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}
	return doc, nil
}

// Registry returns the refinements the catalog compiles against.
func (c *Catalog) Registry() *registry.Registry {
	return c.refinements
}

// Compile returns the named schema interpreted by alg, compiling it on first use.
// Results are cached per interpreter URI, so alg must be the only algebra with its URI.
func Compile[R any](c *Catalog, name string, alg schemable.Schemable[R]) (R, error) {
	var zero R
	doc, err := c.Document(name)
	if err != nil {
		return zero, err
	}

	k := key{name: name, uri: alg.URI()}
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.compiled[k]; ok {
		return schemable.Unbox[R](h, k.uri), nil
	}

	r, err := dsl.Interpret(doc, alg, c.refinements)
	if err != nil {
		c.logger.Error("schema compilation failed", "schema", name, "interpreter", k.uri, "error", err)
		return zero, fmt.Errorf("failed to compile %s for %s: %w", name, k.uri, err)
	}
	c.compiled[k] = schemable.HKT{URI: k.uri, Value: r}
	c.logger.Debug("schema compiled", "schema", name, "interpreter", k.uri)
	return r, nil
}
