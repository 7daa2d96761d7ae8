// Package decoder interprets schemas as decoders: functions turning an unknown value,
// typically the output of encoding/json or gopkg.in/yaml.v3, into a validated value.
//
// Decoded values are normalized. Numbers become float64, objects map[string]any holding
// only the declared properties, arrays []any.
//
// Every failure is reported, not only the first:
//
//	person := decoder.Schemable.Type(map[string]*decoder.Decoder{
//	    "name": decoder.Schemable.String(),
//	    "age":  decoder.Schemable.Number(),
//	})
//	_, err := person.Decode(map[string]any{"age": "ten"})
//	for _, e := range decoder.AsErrors(err) {
//	    fmt.Println(e) // at age: expected number, got string "ten" / at name: required property missing ...
//	}
package decoder

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/internal/values"
)

// URI identifies the decoder interpreter.
const URI schemable.URI = "Decoder"

// Decoder validates and normalizes unknown values.
type Decoder struct {
	name   string
	decode func(u any, path string) (any, Errors)
}

// Name describes what the decoder accepts, e.g. "number | null".
func (d *Decoder) Name() string { return d.name }

// Decode validates u. On failure the error is an Errors.
func (d *Decoder) Decode(u any) (any, error) {
	v, errs := d.decode(u, "")
	if len(errs) > 0 {
		return nil, errs
	}
	return v, nil
}

// Into decodes u and binds the result onto out, a pointer to a Go value, using
// mapstructure tags.
func Into(d *Decoder, u any, out any) error {
	v, err := d.Decode(u)
	if err != nil {
		return err
	}
	if err := mapstructure.Decode(v, out); err != nil {
		return fmt.Errorf("failed to bind decoded value: %w", err)
	}
	return nil
}

func fail(path, expected string, actual any) Errors {
	return Errors{{Path: path, Expected: expected, Actual: actual}}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// Algebra implements the core contract and every capability extension.
type Algebra struct{}

// Schemable is the decoder algebra instance.
var Schemable = Algebra{}

var (
	_ schemable.Schemable[*Decoder]             = Algebra{}
	_ schemable.WithUnknownContainers[*Decoder] = Algebra{}
	_ schemable.WithUnion[*Decoder]             = Algebra{}
	_ schemable.WithRefine[*Decoder]            = Algebra{}
)

func (Algebra) URI() schemable.URI { return URI }

func (Algebra) Literal(first schemable.Literal, rest ...schemable.Literal) *Decoder {
	lits := append([]schemable.Literal{first}, rest...)
	names := make([]string, len(lits))
	for i, l := range lits {
		names[i] = l.String()
	}
	name := strings.Join(names, " | ")
	return &Decoder{
		name: name,
		decode: func(u any, path string) (any, Errors) {
			for _, l := range lits {
				if l.Matches(u) {
					return l.Value(), nil
				}
			}
			return nil, fail(path, name, u)
		},
	}
}

func (Algebra) String() *Decoder {
	return &Decoder{
		name: "string",
		decode: func(u any, path string) (any, Errors) {
			if s, ok := u.(string); ok {
				return s, nil
			}
			return nil, fail(path, "string", u)
		},
	}
}

func (Algebra) Number() *Decoder {
	return &Decoder{
		name: "number",
		decode: func(u any, path string) (any, Errors) {
			if n, ok := values.Float(u); ok {
				return n, nil
			}
			return nil, fail(path, "number", u)
		},
	}
}

func (Algebra) Boolean() *Decoder {
	return &Decoder{
		name: "boolean",
		decode: func(u any, path string) (any, Errors) {
			if b, ok := u.(bool); ok {
				return b, nil
			}
			return nil, fail(path, "boolean", u)
		},
	}
}

func (Algebra) UnknownArray() *Decoder {
	return &Decoder{
		name: "array",
		decode: func(u any, path string) (any, Errors) {
			if a, ok := values.Array(u); ok {
				return a, nil
			}
			return nil, fail(path, "array", u)
		},
	}
}

func (Algebra) UnknownRecord() *Decoder {
	return &Decoder{
		name: "object",
		decode: func(u any, path string) (any, Errors) {
			if r, ok := values.Record(u); ok {
				return r, nil
			}
			return nil, fail(path, "object", u)
		},
	}
}

func (Algebra) Nullable(or *Decoder) *Decoder {
	return &Decoder{
		name: or.name + " | null",
		decode: func(u any, path string) (any, Errors) {
			if u == nil {
				return nil, nil
			}
			return or.decode(u, path)
		},
	}
}

func (Algebra) Type(properties map[string]*Decoder) *Decoder {
	keys := slices.Sorted(maps.Keys(properties))
	return &Decoder{
		name: "object",
		decode: func(u any, path string) (any, Errors) {
			r, ok := values.Record(u)
			if !ok {
				return nil, fail(path, "object", u)
			}
			out := make(map[string]any, len(keys))
			var errs Errors
			for _, k := range keys {
				d := properties[k]
				v, present := r[k]
				if !present {
					errs = append(errs, &Error{Path: join(path, k), Expected: d.name, Missing: true})
					continue
				}
				dv, derrs := d.decode(v, join(path, k))
				if len(derrs) > 0 {
					errs = append(errs, derrs...)
					continue
				}
				out[k] = dv
			}
			if len(errs) > 0 {
				return nil, errs
			}
			return out, nil
		},
	}
}

func (Algebra) Partial(properties map[string]*Decoder) *Decoder {
	keys := slices.Sorted(maps.Keys(properties))
	return &Decoder{
		name: "object",
		decode: func(u any, path string) (any, Errors) {
			r, ok := values.Record(u)
			if !ok {
				return nil, fail(path, "object", u)
			}
			out := make(map[string]any, len(keys))
			var errs Errors
			for _, k := range keys {
				v, present := r[k]
				if !present {
					continue
				}
				dv, derrs := properties[k].decode(v, join(path, k))
				if len(derrs) > 0 {
					errs = append(errs, derrs...)
					continue
				}
				out[k] = dv
			}
			if len(errs) > 0 {
				return nil, errs
			}
			return out, nil
		},
	}
}

func (Algebra) Record(codomain *Decoder) *Decoder {
	return &Decoder{
		name: "Record<string, " + codomain.name + ">",
		decode: func(u any, path string) (any, Errors) {
			r, ok := values.Record(u)
			if !ok {
				return nil, fail(path, "object", u)
			}
			out := make(map[string]any, len(r))
			var errs Errors
			for _, k := range slices.Sorted(maps.Keys(r)) {
				dv, derrs := codomain.decode(r[k], join(path, k))
				if len(derrs) > 0 {
					errs = append(errs, derrs...)
					continue
				}
				out[k] = dv
			}
			if len(errs) > 0 {
				return nil, errs
			}
			return out, nil
		},
	}
}

func (Algebra) Array(items *Decoder) *Decoder {
	return &Decoder{
		name: "Array<" + items.name + ">",
		decode: func(u any, path string) (any, Errors) {
			a, ok := values.Array(u)
			if !ok {
				return nil, fail(path, "array", u)
			}
			out := make([]any, len(a))
			var errs Errors
			for i, v := range a {
				dv, derrs := items.decode(v, index(path, i))
				if len(derrs) > 0 {
					errs = append(errs, derrs...)
					continue
				}
				out[i] = dv
			}
			if len(errs) > 0 {
				return nil, errs
			}
			return out, nil
		},
	}
}

func (Algebra) Tuple(components ...*Decoder) *Decoder {
	name := fmt.Sprintf("tuple of length %d", len(components))
	return &Decoder{
		name: name,
		decode: func(u any, path string) (any, Errors) {
			a, ok := values.Array(u)
			if !ok || len(a) != len(components) {
				return nil, fail(path, name, u)
			}
			out := make([]any, len(a))
			var errs Errors
			for i, d := range components {
				dv, derrs := d.decode(a[i], index(path, i))
				if len(derrs) > 0 {
					errs = append(errs, derrs...)
					continue
				}
				out[i] = dv
			}
			if len(errs) > 0 {
				return nil, errs
			}
			return out, nil
		},
	}
}

func (Algebra) Intersect(right *Decoder) func(left *Decoder) *Decoder {
	return func(left *Decoder) *Decoder {
		return &Decoder{
			name: left.name + " & " + right.name,
			decode: func(u any, path string) (any, Errors) {
				lv, lerrs := left.decode(u, path)
				rv, rerrs := right.decode(u, path)
				if errs := append(lerrs, rerrs...); len(errs) > 0 {
					return nil, errs
				}
				return schemable.Intersect(lv, rv), nil
			},
		}
	}
}

func (Algebra) Sum(tag string) func(members map[string]*Decoder) *Decoder {
	return func(members map[string]*Decoder) *Decoder {
		keys := slices.Sorted(maps.Keys(members))
		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = schemable.StringLiteral(k).String()
		}
		expectedTag := strings.Join(quoted, " | ")
		return &Decoder{
			name: fmt.Sprintf("union tagged by %q", tag),
			decode: func(u any, path string) (any, Errors) {
				r, ok := values.Record(u)
				if !ok {
					return nil, fail(path, "object", u)
				}
				v, present := r[tag]
				if !present {
					return nil, Errors{{Path: join(path, tag), Expected: expectedTag, Missing: true}}
				}
				s, isString := v.(string)
				d, ok := members[s]
				if !isString || !ok {
					return nil, fail(join(path, tag), expectedTag, v)
				}
				return d.decode(u, path)
			},
		}
	}
}

func (Algebra) Union(first *Decoder, rest ...*Decoder) *Decoder {
	members := append([]*Decoder{first}, rest...)
	names := make([]string, len(members))
	for i, d := range members {
		names[i] = d.name
	}
	return &Decoder{
		name: strings.Join(names, " | "),
		decode: func(u any, path string) (any, Errors) {
			var errs Errors
			for i, d := range members {
				v, derrs := d.decode(u, path)
				if len(derrs) == 0 {
					return v, nil
				}
				for _, e := range derrs {
					scoped := *e
					scoped.Expected = fmt.Sprintf("member %d: %s", i, e.Expected)
					errs = append(errs, &scoped)
				}
			}
			return nil, errs
		},
	}
}

func (Algebra) Refine(refinement schemable.Refinement, id string) func(from *Decoder) *Decoder {
	return func(from *Decoder) *Decoder {
		return &Decoder{
			name: id,
			decode: func(u any, path string) (any, Errors) {
				v, errs := from.decode(u, path)
				if len(errs) > 0 {
					return nil, errs
				}
				b, ok := refinement(v)
				if !ok {
					return nil, fail(path, id, u)
				}
				return b, nil
			},
		}
	}
}

func (Algebra) Lazy(id string, f func() *Decoder) *Decoder {
	var mu sync.Mutex
	get := schemable.Memoize(func(string) *Decoder { return f() })
	return &Decoder{
		name: id,
		decode: func(u any, path string) (any, Errors) {
			mu.Lock()
			d := get(id)
			mu.Unlock()
			return d.decode(u, path)
		},
	}
}
