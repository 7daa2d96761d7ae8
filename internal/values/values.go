// Package values classifies the loosely typed values produced by encoding/json,
// gopkg.in/yaml.v3 and hand-written Go literals.
package values

import (
	"reflect"
	"strings"
)

// Float reports whether v is a Go number and returns it as a float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// IsNumber reports whether v is a Go number.
func IsNumber(v any) bool {
	_, ok := Float(v)
	return ok
}

// Record returns v as a string-keyed map.
// map[string]any is returned as is; other maps with string keys are copied.
func Record(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// IsRecord reports whether v is a string-keyed map.
func IsRecord(v any) bool {
	if _, ok := v.(map[string]any); ok {
		return true
	}
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

// Array returns v as a []any. Slices and arrays of other element types are copied.
// Byte slices are not arrays.
func Array(v any) ([]any, bool) {
	if a, ok := v.([]any); ok {
		return a, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// TypeOf names the category of v the way error messages report it.
func TypeOf(v any) string {
	switch {
	case v == nil:
		return "null"
	case IsNumber(v):
		return "number"
	case IsRecord(v):
		return "object"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if _, ok := Array(v); ok {
		return "array"
	}
	return strings.TrimPrefix(reflect.TypeOf(v).String(), "*")
}
