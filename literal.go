package schemable

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aretw0/schemable/internal/values"
)

// LiteralKind is the primitive category of a Literal.
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralString
	LiteralNumber
	LiteralBool
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "string"
	case LiteralNumber:
		return "number"
	case LiteralBool:
		return "boolean"
	default:
		return "null"
	}
}

// Literal is a single string, number, boolean or null value.
// The zero value is the null literal.
type Literal struct {
	kind LiteralKind
	s    string
	n    float64
	b    bool
}

// Null is the null literal.
var Null = Literal{}

// StringLiteral returns the literal string s.
func StringLiteral(s string) Literal { return Literal{kind: LiteralString, s: s} }

// NumberLiteral returns the literal number n.
func NumberLiteral(n float64) Literal { return Literal{kind: LiteralNumber, n: n} }

// BoolLiteral returns the literal boolean b.
func BoolLiteral(b bool) Literal { return Literal{kind: LiteralBool, b: b} }

// LiteralOf converts a decoded scalar into a Literal.
func LiteralOf(v any) (Literal, error) {
	if v == nil {
		return Null, nil
	}
	switch x := v.(type) {
	case string:
		return StringLiteral(x), nil
	case bool:
		return BoolLiteral(x), nil
	}
	if n, ok := values.Float(v); ok {
		return NumberLiteral(n), nil
	}
	return Null, fmt.Errorf("literal must be a string, number, boolean or null, got %T", v)
}

// Kind returns the literal's primitive category.
func (l Literal) Kind() LiteralKind { return l.kind }

// Value returns the literal as a string, float64, bool or nil.
func (l Literal) Value() any {
	switch l.kind {
	case LiteralString:
		return l.s
	case LiteralNumber:
		return l.n
	case LiteralBool:
		return l.b
	default:
		return nil
	}
}

// Matches reports whether v equals the literal. Numbers compare by value across Go
// numeric types.
func (l Literal) Matches(v any) bool {
	switch l.kind {
	case LiteralString:
		s, ok := v.(string)
		return ok && s == l.s
	case LiteralNumber:
		n, ok := values.Float(v)
		return ok && n == l.n
	case LiteralBool:
		b, ok := v.(bool)
		return ok && b == l.b
	default:
		return v == nil
	}
}

// String renders the literal as JSON.
func (l Literal) String() string {
	switch l.kind {
	case LiteralString:
		b, _ := json.Marshal(l.s)
		return string(b)
	case LiteralNumber:
		return strconv.FormatFloat(l.n, 'g', -1, 64)
	case LiteralBool:
		return strconv.FormatBool(l.b)
	default:
		return "null"
	}
}
