package dsl

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/schemable"
)

// Format is the encoding of a document file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension; anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// rawDocument mirrors the top level of a document file.
type rawDocument struct {
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Root        any            `mapstructure:"root"`
	Definitions map[string]any `mapstructure:"definitions"`
}

type rawSum struct {
	Tag     string         `mapstructure:"tag"`
	Members map[string]any `mapstructure:"members"`
}

type rawRefine struct {
	From      any    `mapstructure:"from"`
	Predicate string `mapstructure:"predicate"`
}

// Parse decodes a document. It checks the document's syntax only; use Validate for
// references and recursion.
func Parse(data []byte, format Format) (*Document, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
	}

	var rd rawDocument
	if err := decodeStrict(normalize(raw), &rd); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	doc := &Document{
		Name:        rd.Name,
		Description: rd.Description,
		Definitions: make(map[string]*Node, len(rd.Definitions)),
	}
	for _, name := range slices.Sorted(maps.Keys(rd.Definitions)) {
		n, err := parseNode(rd.Definitions[name], "definitions."+name)
		if err != nil {
			return nil, err
		}
		doc.Definitions[name] = n
	}
	if rd.Root == nil {
		return nil, &ValidationError{Path: "root", Reason: "missing"}
	}
	root, err := parseNode(rd.Root, "root")
	if err != nil {
		return nil, err
	}
	doc.Root = root
	return doc, nil
}

// Load reads a document file. The format follows the file extension.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	doc.Source = path
	return doc, nil
}

// LoadDir reads every .yaml, .yml and .json file in dir, non-recursively, keyed by
// document name.
func LoadDir(dir string) (map[string]*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}
	docs := make(map[string]*Document)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		doc, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if prev, ok := docs[doc.Name]; ok {
			return nil, fmt.Errorf("duplicate document name %q in %s and %s", doc.Name, prev.Source, doc.Source)
		}
		docs[doc.Name] = doc
	}
	return docs, nil
}

func decodeStrict(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// normalize turns the map[any]any values some YAML inputs produce into map[string]any.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}

func parseNode(v any, path string) (*Node, error) {
	switch x := v.(type) {
	case string:
		switch Kind(x) {
		case KindString, KindNumber, KindBoolean, KindUnknownArray, KindUnknownRecord:
			return &Node{Kind: Kind(x)}, nil
		}
		if x == "" {
			return nil, &ValidationError{Path: path, Reason: "empty reference"}
		}
		return Ref(x), nil
	case map[string]any:
		if len(x) != 1 {
			return nil, &ValidationError{Path: path, Reason: fmt.Sprintf("node must have exactly one key, got %d", len(x))}
		}
		for key, arg := range x {
			return parseCombinator(Kind(key), arg, path+"."+key)
		}
	case nil:
		return nil, &ValidationError{Path: path, Reason: "missing node"}
	}
	return nil, &ValidationError{Path: path, Reason: fmt.Sprintf("node must be a string or a map, got %T", v)}
}

func parseCombinator(kind Kind, arg any, path string) (*Node, error) {
	switch kind {
	case KindLiteral:
		return parseLiteral(arg, path)

	case KindNullable, KindRecord, KindArray:
		elem, err := parseNode(arg, path)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: kind, Elem: elem}, nil

	case KindType, KindPartial:
		props, err := parseMap(arg, path)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: kind, Properties: props}, nil

	case KindTuple, KindUnion, KindIntersect:
		items, err := parseList(arg, path)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: kind, Items: items}, nil

	case KindSum:
		var rs rawSum
		if err := decodeStrict(arg, &rs); err != nil {
			return nil, &ValidationError{Path: path, Reason: err.Error()}
		}
		members, err := parseMap(rs.Members, path+".members")
		if err != nil {
			return nil, err
		}
		return Sum(rs.Tag, members), nil

	case KindRef:
		name, ok := arg.(string)
		if !ok || name == "" {
			return nil, &ValidationError{Path: path, Reason: "reference must be a non-empty string"}
		}
		return Ref(name), nil

	case KindRefine:
		var rr rawRefine
		if err := decodeStrict(arg, &rr); err != nil {
			return nil, &ValidationError{Path: path, Reason: err.Error()}
		}
		from, err := parseNode(rr.From, path+".from")
		if err != nil {
			return nil, err
		}
		return Refine(from, rr.Predicate), nil
	}
	return nil, fmt.Errorf("%s: %w %q", path, ErrUnknownNode, string(kind))
}

func parseLiteral(arg any, path string) (*Node, error) {
	raw, ok := arg.([]any)
	if !ok {
		raw = []any{arg}
	}
	n := &Node{Kind: KindLiteral}
	for i, v := range raw {
		l, err := schemable.LiteralOf(v)
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("%s[%d]", path, i), Reason: err.Error()}
		}
		n.Literals = append(n.Literals, l)
	}
	return n, nil
}

func parseMap(arg any, path string) (map[string]*Node, error) {
	if arg == nil {
		return map[string]*Node{}, nil
	}
	m, ok := arg.(map[string]any)
	if !ok {
		return nil, &ValidationError{Path: path, Reason: fmt.Sprintf("expected a map, got %T", arg)}
	}
	out := make(map[string]*Node, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		n, err := parseNode(m[k], path+"."+k)
		if err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, nil
}

func parseList(arg any, path string) ([]*Node, error) {
	if arg == nil {
		return nil, nil
	}
	l, ok := arg.([]any)
	if !ok {
		return nil, &ValidationError{Path: path, Reason: fmt.Sprintf("expected a list, got %T", arg)}
	}
	out := make([]*Node, len(l))
	for i, v := range l {
		n, err := parseNode(v, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
