package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var examples = filepath.Join("..", "..", "examples", "schemas")

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "schemable version "))
}

func TestCheck(t *testing.T) {
	out, _, err := run(t, "check", "--dir", examples)
	require.NoError(t, err)
	assert.Contains(t, out, "3 schema(s) are valid!")

	_, stderr, err := run(t, "check", "--dir", filepath.Join("..", "..", "pkg", "dsl", "testdata"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "problem(s) found")
	assert.Contains(t, stderr, "unguarded recursion")
}

func TestPrint(t *testing.T) {
	out, _, err := run(t, "print", "shapes", "--dir", examples, "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "type Shape = ")
	assert.True(t, strings.HasSuffix(out, "Shape\n"))

	_, _, err = run(t, "print", "nothing", "--dir", examples)
	assert.ErrorContains(t, err, "schema not found")
}

func TestOpenAPI(t *testing.T) {
	out, _, err := run(t, "openapi", "person", "--dir", examples, "--format", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	assert.Contains(t, schemas, "Person")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ada.yaml")
	require.NoError(t, os.WriteFile(good, []byte("name: Ada\nfriends: []\nage: 36\n"), 0o644))
	bad := filepath.Join(dir, "nobody.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"name": "", "friends": []}`), 0o644))

	out, _, err := run(t, "validate", "person", good, "--dir", examples)
	require.NoError(t, err)
	assert.Contains(t, out, "matches person")

	_, stderr, err := run(t, "validate", "person", bad, "--dir", examples)
	require.Error(t, err)
	assert.Contains(t, stderr, `at name: expected nonEmpty, got string ""`)
}

func TestSample(t *testing.T) {
	first, _, err := run(t, "sample", "shapes", "--dir", examples, "--seed", "7", "--count", "3")
	require.NoError(t, err)
	second, _, err := run(t, "sample", "shapes", "--dir", examples, "--seed", "7", "--count", "3")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, strings.Split(strings.TrimSpace(first), "\n"), 3)

	_, _, err = run(t, "sample", "shapes", "--dir", examples, "--count", "0")
	assert.ErrorContains(t, err, "count must be positive")
}

func TestLogLevel(t *testing.T) {
	rootCmd.SetArgs([]string{"check", "--dir", examples, "--log-level", "loud"})
	err := rootCmd.Execute()
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestGraph(t *testing.T) {
	out, _, err := run(t, "graph", "person", "--dir", examples)
	require.NoError(t, err)
	assert.Contains(t, out, `doc_person(("person"))`)
	assert.Contains(t, out, `Person -. "friends[]" .-> Person`)
}
