// Package mcp exposes a schema catalog as a Model Context Protocol server, so agents can
// look up, validate against and sample the schemas.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/internal/logging"
	"github.com/aretw0/schemable/pkg/arbitrary"
	"github.com/aretw0/schemable/pkg/catalog"
	"github.com/aretw0/schemable/pkg/decoder"
	"github.com/aretw0/schemable/pkg/printer"
)

// CatalogURI is the resource listing every schema.
const CatalogURI = "schemable://catalog"

// MaxSamples caps the count argument of the sample tool.
const MaxSamples = 20

// SchemaSummary describes a schema in listings.
type SchemaSummary struct {
	Name        string `json:"name" jsonschema_description:"Schema name"`
	Description string `json:"description,omitempty" jsonschema_description:"What the schema describes"`
}

// DescribeResponse is the result of describe_schema.
type DescribeResponse struct {
	Name        string               `json:"name" jsonschema_description:"Schema name"`
	Description string               `json:"description,omitempty" jsonschema_description:"What the schema describes"`
	Type        string               `json:"type" jsonschema_description:"The root type in TypeScript-like syntax"`
	Definitions []printer.Definition `json:"definitions,omitempty" jsonschema_description:"Named types the root refers to"`
}

// ValidateResponse is the result of validate.
type ValidateResponse struct {
	Valid  bool     `json:"valid" jsonschema_description:"Whether the value matches the schema"`
	Value  any      `json:"value,omitempty" jsonschema_description:"The decoded value, restricted to declared properties"`
	Errors []string `json:"errors,omitempty" jsonschema_description:"Every failure, with its path"`
}

// SampleResponse is the result of sample.
type SampleResponse struct {
	Seed   uint64 `json:"seed" jsonschema_description:"Seed the values were generated with"`
	Values []any  `json:"values" jsonschema_description:"Generated values"`
}

// Server wraps a catalog and exposes it as an MCP Server.
type Server struct {
	catalog   *catalog.Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(c *catalog.Catalog, opts ...Option) *Server {
	s := &Server{
		catalog:   c,
		mcpServer: server.NewMCPServer("schemable-mcp", schemable.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", s.cors(sseServer.SSEHandler()))
	mux.Handle("/message", s.cors(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List the schemas in the catalog."),
	), s.handleListSchemas)

	describeTool := mcp.NewTool("describe_schema",
		mcp.WithDescription("Describe a schema as TypeScript-like type text."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schema name")),
		mcp.WithOutputSchema[DescribeResponse](),
	)
	s.mcpServer.AddTool(describeTool, mcp.NewStructuredToolHandler(s.handleDescribe))

	validateTool := mcp.NewTool("validate",
		mcp.WithDescription("Check a JSON value against a schema and report every failure."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schema name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("The value to check, encoded as JSON")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	sampleTool := mcp.NewTool("sample",
		mcp.WithDescription("Generate example values of a schema."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schema name")),
		mcp.WithNumber("seed", mcp.Description("Random seed (default 0)")),
		mcp.WithNumber("count", mcp.Description(fmt.Sprintf("Number of values, 1 to %d (default 1)", MaxSamples))),
		mcp.WithOutputSchema[SampleResponse](),
	)
	s.mcpServer.AddTool(sampleTool, mcp.NewStructuredToolHandler(s.handleSample))
}

func (s *Server) summaries() ([]SchemaSummary, error) {
	var out []SchemaSummary
	for _, name := range s.catalog.Names() {
		doc, err := s.catalog.Document(name)
		if err != nil {
			return nil, err
		}
		out = append(out, SchemaSummary{Name: name, Description: doc.Description})
	}
	return out, nil
}

func (s *Server) handleListSchemas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.summaries()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(list)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DescribeResponse, error) {
	name, _ := args["name"].(string)
	doc, err := s.catalog.Document(name)
	if err != nil {
		return DescribeResponse{}, err
	}
	p, err := catalog.Compile(s.catalog, name, printer.Schemable)
	if err != nil {
		return DescribeResponse{}, err
	}
	root, defs := printer.Expression(p)
	return DescribeResponse{
		Name:        name,
		Description: doc.Description,
		Type:        root,
		Definitions: defs,
	}, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	name, _ := args["name"].(string)
	raw, _ := args["value"].(string)

	d, err := catalog.Compile(s.catalog, name, decoder.Schemable)
	if err != nil {
		return ValidateResponse{}, err
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return ValidateResponse{}, fmt.Errorf("value is not valid JSON: %w", err)
	}

	v, err := d.Decode(value)
	if err != nil {
		resp := ValidateResponse{Valid: false}
		for _, e := range decoder.AsErrors(err) {
			resp.Errors = append(resp.Errors, e.Error())
		}
		s.logger.Debug("MCP Validate: value rejected", "schema", name, "errors", len(resp.Errors))
		return resp, nil
	}
	return ValidateResponse{Valid: true, Value: v}, nil
}

func (s *Server) handleSample(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SampleResponse, error) {
	name, _ := args["name"].(string)
	var seed uint64
	if v, ok := args["seed"].(float64); ok && v > 0 {
		seed = uint64(v)
	}
	count := 1
	if v, ok := args["count"].(float64); ok {
		count = int(v)
	}
	if count < 1 || count > MaxSamples {
		return SampleResponse{}, fmt.Errorf("count must be between 1 and %d", MaxSamples)
	}

	a, err := catalog.Compile(s.catalog, name, arbitrary.Schemable)
	if err != nil {
		return SampleResponse{}, err
	}
	values, err := arbitrary.SampleN(a, seed, count)
	if err != nil {
		if !errors.Is(err, arbitrary.ErrRefinementExhausted) && !errors.Is(err, arbitrary.ErrDepthExceeded) {
			s.logger.Error("MCP Sample: generation failed", "schema", name, "error", err)
		}
		return SampleResponse{}, fmt.Errorf("sample failed: %w", err)
	}
	return SampleResponse{Seed: seed, Values: values}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Schema Catalog",
		mcp.WithMIMEType("application/json"),
	), s.handleCatalogResource)
}

func (s *Server) handleCatalogResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.summaries()
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	jsonBytes, _ := json.Marshal(list)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
