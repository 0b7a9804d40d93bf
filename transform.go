package oscconnect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Transformer converts JSON documents into records of one schema. It holds no
// mutable state and is safe for concurrent use.
type Transformer struct {
	schema *Schema
}

// NewTransformer validates the schema once so that per-document failures are
// always about the document.
func NewTransformer(s *Schema) (*Transformer, error) {
	if err := ValidateSchema(s); err != nil {
		return nil, fmt.Errorf("oscconnect: invalid schema: %w", err)
	}
	return &Transformer{schema: s}, nil
}

// Schema returns the target schema.
func (t *Transformer) Schema() *Schema { return t.schema }

// Transform maps doc onto a record. Absent and null values become nil even
// for non-nullable fields. The first mismatch aborts with an
// *UnexpectedFormatError.
func (t *Transformer) Transform(doc map[string]any) (*Record, error) {
	return t.record("", doc, t.schema)
}

// TransformBytes decodes one JSON object with the current driver and
// transforms it.
func (t *Transformer) TransformBytes(data []byte, opts ...DecodeOpt) (*Record, error) {
	return t.TransformSource(context.Background(), JSONBytes(data), opts...)
}

// TransformSource decodes one JSON object from src and transforms it.
func (t *Transformer) TransformSource(ctx context.Context, src Source, opts ...DecodeOpt) (*Record, error) {
	doc, err := DecodeDocument(ctx, src, opts...)
	if err != nil {
		return nil, err
	}
	return t.Transform(doc)
}

func (t *Transformer) record(prefix string, obj map[string]any, s *Schema) (*Record, error) {
	b := NewRecordBuilder(s)
	for _, f := range s.Fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		v, err := t.value(path, obj[f.Name], f.Schema.NonNullable())
		if err != nil {
			return nil, err
		}
		b.Set(f.Name, v)
	}
	return b.Build()
}

func (t *Transformer) value(path string, v any, s *Schema) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s.IsDecimal() {
		if err := expectPrimitive(path, v); err != nil {
			return nil, err
		}
		d, err := decimalOf(path, v)
		if err != nil {
			return nil, err
		}
		return decimalBytes(path, d, s)
	}

	switch s.Type {
	case TypeBoolean:
		if err := expectPrimitive(path, v); err != nil {
			return nil, err
		}
		b, ok := v.(bool)
		if !ok {
			return nil, subkindErr(path, "a boolean", v)
		}
		return b, nil
	case TypeInt:
		n, err := integerOf(path, v)
		if err != nil {
			return nil, err
		}
		return int32(n), nil
	case TypeLong:
		return integerOf(path, v)
	case TypeFloat:
		f, err := floatOf(path, v, 32)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case TypeDouble:
		return floatOf(path, v, 64)
	case TypeString:
		if err := expectPrimitive(path, v); err != nil {
			return nil, err
		}
		str, ok := v.(string)
		if !ok {
			return nil, subkindErr(path, "a string", v)
		}
		return str, nil
	case TypeMap:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, kindErr(path, "object", v)
		}
		vs := s.Values.NonNullable()
		out := make(map[string]any, len(obj))
		for k, e := range obj {
			ev, err := t.value(path, e, vs)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return nil, kindErr(path, "array", v)
		}
		is := s.Items.NonNullable()
		out := make([]any, 0, len(arr))
		for _, e := range arr {
			ev, err := t.value(path, e, is)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		return out, nil
	case TypeRecord:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, kindErr(path, "object", v)
		}
		return t.record(path, obj, s)
	}
	return nil, formatErr(path, CodeUnsupportedType, "Field '%s' is of unsupported type '%s'", path, s.KindName())
}

func decimalBytes(path string, d DecimalValue, s *Schema) ([]byte, error) {
	if p := d.Precision(); p > s.Precision {
		return nil, formatErr(path, CodeTooBig, "Field '%s' has precision '%d' which is higher than schema precision '%d'.", path, p, s.Precision)
	}
	if d.Scale > s.Scale {
		return nil, formatErr(path, CodeScaleMismatch, "Field '%s' has scale '%d' which is not equal to schema scale '%d'.", path, d.Scale, s.Scale)
	}
	if d.Unscaled == nil || d.Unscaled.Sign() == 0 {
		return DecimalValue{Scale: s.Scale}.Bytes(), nil
	}
	if p := d.Precision() + s.Scale - d.Scale; p > s.Precision {
		return nil, formatErr(path, CodeTooBig, "Field '%s' has precision '%d' which is higher than schema precision '%d'.", path, p, s.Precision)
	}
	r, err := d.Rescale(s.Scale)
	if err != nil {
		return nil, formatErr(path, CodeScaleMismatch, "Field '%s': %v", path, err)
	}
	return r.Bytes(), nil
}

func expectPrimitive(path string, v any) error {
	switch v.(type) {
	case map[string]any, []any:
		return kindErr(path, "primitive", v)
	}
	return nil
}

func kindErr(path, expected string, v any) error {
	return formatErr(path, CodeInvalidType, "Document field '%s' is expected to be of type '%s', but found a '%s'.", path, expected, jsonKind(v))
}

func subkindErr(path, expected string, v any) error {
	return formatErr(path, CodeInvalidType, "Document field '%s' is expected to be %s, but found a '%s'.", path, expected, renderPrimitive(v))
}

// jsonKind names the JSON kind of a document value.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if isNumber(v) {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func renderPrimitive(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case json.Number:
		return x.String()
	}
	return fmt.Sprint(v)
}

func isNumber(v any) bool {
	switch v.(type) {
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func numberOrErr(path string, v any) error {
	if err := expectPrimitive(path, v); err != nil {
		return err
	}
	if !isNumber(v) {
		return subkindErr(path, "a number", v)
	}
	return nil
}

// integerOf converts a numeric value to int64. Fractions are truncated toward
// zero and out-of-range values keep their low 64 bits.
func integerOf(path string, v any) (int64, error) {
	if err := numberOrErr(path, v); err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(x.String(), 10, 64); err == nil {
			return n, nil
		}
		d, err := ParseDecimal(x.String())
		if err != nil {
			return 0, subkindErr(path, "a number", v)
		}
		// 10^64 is a multiple of 2^64, so the low 64 bits are zero.
		if d.Scale <= -64 || d.Precision() <= d.Scale {
			return 0, nil
		}
		return truncateToInt64(d.Rat()), nil
	case float64:
		return floatToInt64(path, x)
	case float32:
		return floatToInt64(path, float64(x))
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	}
	return 0, subkindErr(path, "a number", v)
}

func floatToInt64(path string, f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, subkindErr(path, "a number", f)
	}
	r, _ := new(big.Rat).SetString(strconv.FormatFloat(f, 'f', -1, 64))
	return truncateToInt64(r), nil
}

var mask64 = new(big.Int).SetUint64(math.MaxUint64)

func truncateToInt64(r *big.Rat) int64 {
	q := new(big.Int).Quo(r.Num(), r.Denom())
	return int64(new(big.Int).And(q, mask64).Uint64())
}

func floatOf(path string, v any, bitSize int) (float64, error) {
	if err := numberOrErr(path, v); err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), bitSize)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, subkindErr(path, "a number", v)
		}
		return f, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	}
	n, err := integerOf(path, v)
	if err != nil {
		return 0, err
	}
	if u, ok := v.(uint64); ok {
		return float64(u), nil
	}
	return float64(n), nil
}

func decimalOf(path string, v any) (DecimalValue, error) {
	if err := numberOrErr(path, v); err != nil {
		return DecimalValue{}, err
	}
	var lit string
	switch x := v.(type) {
	case json.Number:
		lit = x.String()
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return DecimalValue{}, subkindErr(path, "a number", v)
		}
		lit = strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return DecimalValue{}, subkindErr(path, "a number", v)
		}
		lit = strconv.FormatFloat(float64(x), 'g', -1, 32)
	default:
		lit = fmt.Sprint(v)
	}
	d, err := ParseDecimal(lit)
	if err != nil {
		return DecimalValue{}, subkindErr(path, "a number", v)
	}
	return d, nil
}
