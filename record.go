package oscconnect

import (
	"bytes"
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"
)

// Record is an immutable structured value conforming to a record schema.
// Field values are bool, int32, int64, float32, float64, string, []byte,
// []any, map[string]any, *Record or nil.
type Record struct {
	schema *Schema
	values []any
}

// RecordBuilder accumulates field values for one Record. The first error is
// kept and reported by Build.
type RecordBuilder struct {
	schema *Schema
	values []any
	index  map[string]int
	err    error
}

// NewRecordBuilder starts a record for the given record schema.
func NewRecordBuilder(s *Schema) *RecordBuilder {
	b := &RecordBuilder{schema: s}
	if s == nil || s.Type != TypeRecord {
		b.err = fmt.Errorf("oscconnect: record builder requires a record schema")
		return b
	}
	b.values = make([]any, len(s.Fields))
	b.index = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		b.index[f.Name] = i
	}
	return b
}

// Set assigns a field. nil is accepted for every field, nullable or not.
func (b *RecordBuilder) Set(name string, v any) *RecordBuilder {
	if b.err != nil {
		return b
	}
	i, ok := b.index[name]
	if !ok {
		b.err = fmt.Errorf("oscconnect: field '%s' is not in record %q", name, b.schema.Name)
		return b
	}
	if v != nil && !valueMatches(b.schema.Fields[i].Schema.NonNullable(), v) {
		b.err = fmt.Errorf("oscconnect: field '%s' of type '%s' cannot hold %T", name, b.schema.Fields[i].Schema.NonNullable().KindName(), v)
		return b
	}
	b.values[i] = v
	return b
}

// SetDecimal stores d rescaled to the field's declared scale.
func (b *RecordBuilder) SetDecimal(name string, d DecimalValue) *RecordBuilder {
	if b.err != nil {
		return b
	}
	f, ok := b.schema.Field(name)
	if !ok || !f.Schema.NonNullable().IsDecimal() {
		b.err = fmt.Errorf("oscconnect: field '%s' is not a decimal", name)
		return b
	}
	r, err := d.Rescale(f.Schema.NonNullable().Scale)
	if err != nil {
		b.err = fmt.Errorf("oscconnect: field '%s': %w", name, err)
		return b
	}
	return b.Set(name, r.Bytes())
}

// Build returns the record. The builder must not be reused.
func (b *RecordBuilder) Build() (*Record, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Record{schema: b.schema, values: b.values}, nil
}

func valueMatches(s *Schema, v any) bool {
	if s == nil {
		return false
	}
	switch s.Type {
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeInt:
		_, ok := v.(int32)
		return ok
	case TypeLong:
		_, ok := v.(int64)
		return ok
	case TypeFloat:
		_, ok := v.(float32)
		return ok
	case TypeDouble:
		_, ok := v.(float64)
		return ok
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBytes:
		_, ok := v.([]byte)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	case TypeMap:
		_, ok := v.(map[string]any)
		return ok
	case TypeRecord:
		_, ok := v.(*Record)
		return ok
	case TypeUnion:
		return true
	}
	return false
}

// Schema returns the record schema.
func (r *Record) Schema() *Schema { return r.schema }

// Get returns the value of a field. ok is false when the schema has no such field.
func (r *Record) Get(name string) (v any, ok bool) {
	for i, f := range r.schema.Fields {
		if f.Name == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Decimal decodes a decimal field using its declared scale.
func (r *Record) Decimal(name string) (DecimalValue, bool) {
	f, ok := r.schema.Field(name)
	if !ok || !f.Schema.NonNullable().IsDecimal() {
		return DecimalValue{}, false
	}
	v, _ := r.Get(name)
	b, ok := v.([]byte)
	if !ok {
		return DecimalValue{}, false
	}
	return DecimalFromBytes(b, f.Schema.NonNullable().Scale), true
}

// Equal reports whether both records have equal schemas and field values.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	return reflect.DeepEqual(r.schema, o.schema) && reflect.DeepEqual(r.values, o.values)
}

// MarshalJSON renders fields in declaration order. Decimals are rendered as
// strings with the declared scale.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.schema.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(jsonView(f.Schema, r.values[i]))
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", f.Name, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonView(s *Schema, v any) any {
	if v == nil || s == nil {
		return v
	}
	s = s.NonNullable()
	switch {
	case s.IsDecimal():
		if b, ok := v.([]byte); ok {
			return DecimalFromBytes(b, s.Scale).String()
		}
	case s.Type == TypeArray:
		if arr, ok := v.([]any); ok {
			out := make([]any, len(arr))
			for i, e := range arr {
				out[i] = jsonView(s.Items, e)
			}
			return out
		}
	case s.Type == TypeMap:
		if m, ok := v.(map[string]any); ok {
			out := make(map[string]any, len(m))
			for k, e := range m {
				out[k] = jsonView(s.Values, e)
			}
			return out
		}
	}
	return v
}
