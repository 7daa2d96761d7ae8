package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpAdapter "github.com/aretw0/schemable/pkg/adapters/http"
	"github.com/aretw0/schemable/pkg/catalog"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	c, err := catalog.Load(filepath.Join("..", "..", "..", "examples", "schemas"))
	require.NoError(t, err)
	return httpAdapter.NewHandler(c)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListSchemas(t *testing.T) {
	w := do(t, newHandler(t), "GET", "/schemas", "")
	require.Equal(t, http.StatusOK, w.Code)

	var infos []httpAdapter.SchemaInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 3)
	assert.Equal(t, "person", infos[0].Name)
	assert.Equal(t, "A person and the people they know.", infos[0].Description)
}

func TestGetSchema(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, "GET", "/schemas/shapes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "type Shape = "))

	w = do(t, h, "GET", "/schemas/shapes?format=markdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# shapes")
	assert.Contains(t, w.Body.String(), "```typescript")

	w = do(t, h, "GET", "/schemas/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSchemaSpec(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, "GET", "/schemas/person/openapi", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])

	w = do(t, h, "GET", "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, "GET", "/schemas/person/openapi?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidate(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, "POST", "/schemas/shapes/validate", `{"kind": "circle", "radius": 2, "color": "red"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var ok httpAdapter.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)
	assert.Equal(t, map[string]any{"kind": "circle", "radius": 2.0}, ok.Value)

	w = do(t, h, "POST", "/schemas/shapes/validate", `{"kind": "group", "shapes": [{"kind": "square", "side": -1}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var bad httpAdapter.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bad))
	assert.False(t, bad.Valid)
	require.Len(t, bad.Errors, 1)
	assert.Equal(t, "shapes[0].side", bad.Errors[0].Path)
	assert.Equal(t, "positive", bad.Errors[0].Expected)

	w = do(t, h, "POST", "/schemas/shapes/validate", `{"kind": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/schemas/nope/validate", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	metrics := w.Body.String()
	assert.Contains(t, metrics, `schemable_validations_total{result="valid",schema="shapes"} 1`)
	assert.Contains(t, metrics, `schemable_validations_total{result="invalid",schema="shapes"} 1`)
	assert.Contains(t, metrics, `schemable_validation_duration_seconds_count{schema="shapes"} 2`)
}

func TestSample(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, "GET", "/schemas/shapes/sample?seed=7&count=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp httpAdapter.SampleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(7), resp.Seed)
	assert.Len(t, resp.Values, 3)

	again := do(t, h, "GET", "/schemas/shapes/sample?seed=7&count=3", "")
	assert.Equal(t, w.Body.String(), again.Body.String(), "same seed, same samples")

	for _, v := range resp.Values {
		body, err := json.Marshal(v)
		require.NoError(t, err)
		check := do(t, h, "POST", "/schemas/shapes/validate", string(body))
		assert.Equal(t, http.StatusOK, check.Code, check.Body.String())
	}

	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/schemas/shapes/sample?count=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/schemas/shapes/sample?seed=-1", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, "GET", "/schemas/release/sample", "").Code)
}

func TestHealthAndInfo(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"schemas":3`)
}

func TestSample_RecursiveDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.yaml"), []byte(`
name: list
root: List
definitions:
  List:
    sum:
      tag: kind
      members:
        cons: { type: { kind: { literal: [cons] }, head: number, tail: List } }
        nil: { type: { kind: { literal: ["nil"] } } }
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loop.yaml"), []byte(`
name: loop
root: Loop
definitions:
  Loop: { type: { next: Loop } }
`), 0o644))
	c, err := catalog.Load(dir)
	require.NoError(t, err)
	h := httpAdapter.NewHandler(c)

	for seed := range 50 {
		w := do(t, h, "GET", fmt.Sprintf("/schemas/list/sample?seed=%d&count=5", seed), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := do(t, h, "GET", "/schemas/loop/sample", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "depth limit exceeded")
}
