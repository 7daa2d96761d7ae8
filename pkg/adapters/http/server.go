// Package http exposes a schema catalog over HTTP.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/internal/logging"
	"github.com/aretw0/schemable/pkg/arbitrary"
	"github.com/aretw0/schemable/pkg/catalog"
	"github.com/aretw0/schemable/pkg/decoder"
	"github.com/aretw0/schemable/pkg/openapi"
	"github.com/aretw0/schemable/pkg/printer"
)

// MaxSamples caps the count parameter of the sample endpoint.
const MaxSamples = 100

// SchemaInfo describes a schema in listings.
type SchemaInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
}

// ValidationResponse is the body of POST /schemas/{name}/validate.
type ValidationResponse struct {
	Valid  bool              `json:"valid"`
	Value  any               `json:"value,omitempty"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// ValidationIssue is one decoding failure.
type ValidationIssue struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Message  string `json:"message"`
}

// SampleResponse is the body of GET /schemas/{name}/sample.
type SampleResponse struct {
	Seed   uint64 `json:"seed"`
	Values []any  `json:"values"`
}

// Server serves the schemas of a catalog.
type Server struct {
	catalog *catalog.Catalog
	logger  *slog.Logger

	metrics     *prometheus.Registry
	validations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server for c. Metrics are kept in a registry private to the server.
func NewServer(c *catalog.Catalog, opts ...Option) *Server {
	s := &Server{
		catalog: c,
		metrics: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schemable_validations_total",
				Help: "Total number of validation requests by schema and result",
			},
			[]string{"schema", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schemable_validation_duration_seconds",
				Help:    "Duration of validation requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"schema"},
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.metrics.MustRegister(s.validations, s.duration)
	return s
}

// NewHandler creates a new HTTP handler for the catalog.
func NewHandler(c *catalog.Catalog, opts ...Option) http.Handler {
	return NewServer(c, opts...).Routes()
}

// Routes returns the server's router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetCatalogSpec)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))

	r.Route("/schemas", func(r chi.Router) {
		r.Get("/", s.ListSchemas)
		r.Get("/{name}", s.GetSchema)
		r.Get("/{name}/openapi", s.GetSchemaSpec)
		r.Post("/{name}/validate", s.Validate)
		r.Get("/{name}/sample", s.Sample)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Schemable Catalog</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// fail maps catalog errors to status codes.
func (s *Server) fail(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, catalog.ErrSchemaNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("schema %s: %v", name, err), http.StatusInternalServerError)
	s.logger.Error("request failed", "schema", name, "error", err)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "schemable-http",
		"version": schemable.Version,
		"schemas": len(s.catalog.Names()),
	})
}

// ListSchemas handles GET /schemas.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	infos := make([]SchemaInfo, 0, len(s.catalog.Names()))
	for _, name := range s.catalog.Names() {
		doc, err := s.catalog.Document(name)
		if err != nil {
			s.fail(w, name, err)
			return
		}
		infos = append(infos, SchemaInfo{Name: name, Description: doc.Description, Source: doc.Source})
	}
	s.writeJSON(w, http.StatusOK, infos)
}

// GetSchema handles GET /schemas/{name}. The schema is printed as type text, or as a
// markdown document with ?format=markdown.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	doc, err := s.catalog.Document(name)
	if err != nil {
		s.fail(w, name, err)
		return
	}
	p, err := catalog.Compile(s.catalog, name, printer.Schemable)
	if err != nil {
		s.fail(w, name, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, printer.Markdown(doc.Name, doc.Description, p))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, printer.Print(p))
}

func (s *Server) writeSpec(w http.ResponseWriter, r *http.Request, title string, names []string) {
	schemas := make(map[string]openapi.Schema, len(names))
	for _, name := range names {
		o, err := catalog.Compile(s.catalog, name, openapi.Schemable)
		if err != nil {
			s.fail(w, name, err)
			return
		}
		schemas[name] = o
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
		if strings.HasSuffix(r.URL.Path, ".yaml") {
			format = "yaml"
		}
	}
	data, err := openapi.Spec(title, schemable.Version, schemas, format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if format == "yaml" {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Write(data)
}

// GetSchemaSpec handles GET /schemas/{name}/openapi.
func (s *Server) GetSchemaSpec(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := s.catalog.Document(name); err != nil {
		s.fail(w, name, err)
		return
	}
	s.writeSpec(w, r, name, []string{name})
}

// GetCatalogSpec handles GET /openapi.yaml with every schema of the catalog.
func (s *Server) GetCatalogSpec(w http.ResponseWriter, r *http.Request) {
	s.writeSpec(w, r, "schemable catalog", s.catalog.Names())
}

// Validate handles POST /schemas/{name}/validate. The body is the JSON value to check.
// Invalid values are answered with 422 and the list of failures.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")
	d, err := catalog.Compile(s.catalog, name, decoder.Schemable)
	if err != nil {
		s.fail(w, name, err)
		return
	}

	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Validate: Invalid request body", "schema", name, "error", err)
		return
	}

	v, err := d.Decode(body)
	s.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		s.validations.WithLabelValues(name, "invalid").Inc()
		resp := ValidationResponse{Valid: false}
		for _, e := range decoder.AsErrors(err) {
			resp.Errors = append(resp.Errors, ValidationIssue{Path: e.Path, Expected: e.Expected, Message: e.Error()})
		}
		s.logger.Debug("value rejected", "schema", name, "errors", len(resp.Errors))
		s.writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	s.validations.WithLabelValues(name, "valid").Inc()
	s.writeJSON(w, http.StatusOK, ValidationResponse{Valid: true, Value: v})
}

// Sample handles GET /schemas/{name}/sample?seed=&count=.
func (s *Server) Sample(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q := r.URL.Query()

	var seed uint64
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "seed must be an unsigned integer", http.StatusBadRequest)
			return
		}
		seed = n
	}
	count := 1
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxSamples {
			http.Error(w, fmt.Sprintf("count must be between 1 and %d", MaxSamples), http.StatusBadRequest)
			return
		}
		count = n
	}

	a, err := catalog.Compile(s.catalog, name, arbitrary.Schemable)
	if err != nil {
		s.fail(w, name, err)
		return
	}
	values, err := arbitrary.SampleN(a, seed, count)
	if err != nil {
		if errors.Is(err, arbitrary.ErrRefinementExhausted) || errors.Is(err, arbitrary.ErrDepthExceeded) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.fail(w, name, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SampleResponse{Seed: seed, Values: values})
}
