package jsonschema

import (
	"math"
	"strconv"
	"strings"

	osc "github.com/reoring/oscconnect"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

// FromRecord projects a record schema onto JSON Schema describing the
// documents the transformer accepts. Every property is optional because
// absent values are read as null.
func FromRecord(s *osc.Schema) *Schema {
	out := convert(s)
	out.Schema = draft
	if s != nil {
		out.Title = s.Name
	}
	return out
}

func convert(s *osc.Schema) *Schema {
	if s == nil {
		return &Schema{}
	}
	switch s.Type {
	case osc.TypeNullable:
		inner := convert(s.Inner)
		if t, ok := inner.Type.(string); ok {
			inner.Type = []string{t, "null"}
			return inner
		}
		return &Schema{OneOf: []*Schema{inner, {Type: "null"}}}
	case osc.TypeBoolean:
		return &Schema{Type: "boolean"}
	case osc.TypeInt:
		return &Schema{Type: "integer", Format: "int32", Minimum: ptr(float64(math.MinInt32)), Maximum: ptr(float64(math.MaxInt32))}
	case osc.TypeLong:
		return &Schema{Type: "integer", Format: "int64"}
	case osc.TypeFloat:
		return &Schema{Type: "number", Format: "float"}
	case osc.TypeDouble:
		return &Schema{Type: "number", Format: "double"}
	case osc.TypeString:
		return &Schema{Type: "string"}
	case osc.TypeNull:
		return &Schema{Type: "null"}
	case osc.TypeBytes:
		if s.IsDecimal() {
			p, sc := s.Precision, s.Scale
			return &Schema{Type: "number", Format: "decimal", Pattern: decimalPattern(p, sc), XPrecision: &p, XScale: &sc}
		}
		return &Schema{Type: "string", Format: "byte"}
	case osc.TypeArray:
		return &Schema{Type: "array", Items: convert(s.Items)}
	case osc.TypeMap:
		return &Schema{Type: "object", AdditionalProperties: convert(s.Values)}
	case osc.TypeRecord:
		props := make(map[string]*Schema, len(s.Fields))
		for _, f := range s.Fields {
			props[f.Name] = convert(f.Schema)
		}
		return &Schema{Type: "object", Properties: props}
	case osc.TypeUnion:
		out := &Schema{}
		for _, b := range s.Branches {
			out.OneOf = append(out.OneOf, convert(b))
		}
		return out
	}
	return &Schema{}
}

// decimalPattern documents the digit limits of a decimal; JSON Schema
// validators apply patterns to strings only.
func decimalPattern(precision, scale int) string {
	var b strings.Builder
	b.WriteString(`^-?\d{0,`)
	b.WriteString(strconv.Itoa(precision - scale))
	b.WriteString("}")
	if scale > 0 {
		b.WriteString(`(\.\d{0,`)
		b.WriteString(strconv.Itoa(scale))
		b.WriteString("})?")
	}
	b.WriteString("$")
	return b.String()
}

func ptr[T any](v T) *T { return &v }
