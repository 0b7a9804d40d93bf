package oscconnect_test

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	osc "github.com/reoring/oscconnect"
)

func mustTransformer(t *testing.T, s *osc.Schema) *osc.Transformer {
	t.Helper()
	tr, err := osc.NewTransformer(s)
	if err != nil {
		t.Fatalf("NewTransformer: %v", err)
	}
	return tr
}

func mustGet(t *testing.T, r *osc.Record, name string) any {
	t.Helper()
	v, ok := r.Get(name)
	if !ok {
		t.Fatalf("field %q missing from record", name)
	}
	return v
}

func TestTransform_IntField(t *testing.T) {
	s := osc.RecordOf("r", osc.NewField("int_field", osc.Int()))
	rec, err := mustTransformer(t, s).Transform(map[string]any{"int_field": json.Number("15")})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if got := mustGet(t, rec, "int_field"); got != int32(15) {
		t.Fatalf("want int32(15), got %#v", got)
	}
}

func TestTransform_PrimitiveConversions(t *testing.T) {
	s := osc.RecordOf("r",
		osc.NewField("b", osc.Boolean()),
		osc.NewField("l", osc.Long()),
		osc.NewField("f", osc.Float()),
		osc.NewField("d", osc.Double()),
		osc.NewField("s", osc.NullableOf(osc.String())),
		osc.NewField("narrow", osc.Int()),
		osc.NewField("frac", osc.Long()),
	)
	doc := map[string]any{
		"b":      true,
		"l":      json.Number("9223372036854775807"),
		"f":      json.Number("3.4028235E38"),
		"d":      1.5,
		"s":      "text",
		"narrow": json.Number("4294967297"),
		"frac":   json.Number("-15.9"),
	}
	rec, err := mustTransformer(t, s).Transform(doc)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	want := map[string]any{
		"b":      true,
		"l":      int64(math.MaxInt64),
		"f":      float32(math.MaxFloat32),
		"d":      1.5,
		"s":      "text",
		"narrow": int32(1),
		"frac":   int64(-15),
	}
	for k, w := range want {
		if got := mustGet(t, rec, k); got != w {
			t.Fatalf("%s: want %#v, got %#v", k, w, got)
		}
	}
}

func TestTransform_AbsentAndNullAreNil(t *testing.T) {
	s := osc.RecordOf("r",
		osc.NewField("int_field", osc.Int()),
		osc.NewField("string_field", osc.String()),
		osc.NewField("bytes_field", osc.Bytes()),
		osc.NewField("nested", osc.RecordOf("n", osc.NewField("x", osc.Long()))),
		osc.NewField("decimal", osc.NullableOf(osc.Decimal(10, 2))),
	)
	tr := mustTransformer(t, s)
	for _, doc := range []map[string]any{
		{},
		{"int_field": nil, "string_field": nil, "bytes_field": nil, "nested": nil, "decimal": nil},
	} {
		rec, err := tr.Transform(doc)
		if err != nil {
			t.Fatalf("transform %v: %v", doc, err)
		}
		for _, f := range s.Fields {
			if v := mustGet(t, rec, f.Name); v != nil {
				t.Fatalf("%s: want nil, got %#v", f.Name, v)
			}
		}
	}
}

func TestTransform_ArrayPreservesOrderAndNulls(t *testing.T) {
	s := osc.RecordOf("r", osc.NewField("array_field", osc.ArrayOf(osc.NullableOf(osc.Long()))))
	doc := map[string]any{"array_field": []any{json.Number("1"), nil, json.Number("2"), nil, json.Number("3")}}
	rec, err := mustTransformer(t, s).Transform(doc)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	want := []any{int64(1), nil, int64(2), nil, int64(3)}
	if got := mustGet(t, rec, "array_field"); !reflect.DeepEqual(got, want) {
		t.Fatalf("want %#v, got %#v", want, got)
	}
}

func TestTransform_NestedRecord(t *testing.T) {
	nested := osc.RecordOf("nested",
		osc.NewField("nested_string_field", osc.String()),
		osc.NewField("nested_long_field", osc.Long()),
	)
	s := osc.RecordOf("r", osc.NewField("record_field", nested))
	doc := map[string]any{"record_field": map[string]any{
		"nested_string_field": "some",
		"nested_long_field":   json.Number("9223372036854775807"),
	}}
	rec, err := mustTransformer(t, s).Transform(doc)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	inner, ok := mustGet(t, rec, "record_field").(*osc.Record)
	if !ok {
		t.Fatalf("expected nested *Record")
	}
	if v := mustGet(t, inner, "nested_long_field"); v != int64(math.MaxInt64) {
		t.Fatalf("unexpected long %#v", v)
	}
	if v := mustGet(t, inner, "nested_string_field"); v != "some" {
		t.Fatalf("unexpected string %#v", v)
	}
}

func TestTransform_MapOfRecords(t *testing.T) {
	nested := osc.RecordOf("nested",
		osc.NewField("nested_string_field", osc.String()),
		osc.NewField("nested_long_field", osc.Long()),
	)
	s := osc.RecordOf("r",
		osc.NewField("map_field", osc.MapOf(osc.String())),
		osc.NewField("complex_map", osc.MapOf(osc.NullableOf(nested))),
	)
	doc := map[string]any{
		"map_field": map[string]any{"k": "v"},
		"complex_map": map[string]any{"key": map[string]any{
			"nested_string_field": "some",
			"nested_long_field":   json.Number("9223372036854775807"),
		}},
	}
	tr := mustTransformer(t, s)
	rec, err := tr.Transform(doc)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if got := mustGet(t, rec, "map_field"); !reflect.DeepEqual(got, map[string]any{"k": "v"}) {
		t.Fatalf("unexpected map %#v", got)
	}
	m := mustGet(t, rec, "complex_map").(map[string]any)
	if len(m) != 1 {
		t.Fatalf("expected one entry, got %#v", m)
	}
	want, err := osc.NewRecordBuilder(nested).
		Set("nested_string_field", "some").
		Set("nested_long_field", int64(math.MaxInt64)).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got, _ := m["key"].(*osc.Record); !want.Equal(got) {
		t.Fatalf("nested record mismatch: %#v", m["key"])
	}
}

func TestTransform_Decimal(t *testing.T) {
	cases := []struct {
		precision, scale int
		want             string
	}{
		{6, 4, "10.1234"},
		{34, 4, "10.1234"},
		{34, 6, "10.123400"},
	}
	for _, tc := range cases {
		s := osc.RecordOf("r", osc.NewField("d", osc.Decimal(tc.precision, tc.scale)))
		rec, err := mustTransformer(t, s).Transform(map[string]any{"d": json.Number("10.1234")})
		if err != nil {
			t.Fatalf("decimal(%d,%d): %v", tc.precision, tc.scale, err)
		}
		raw, ok := mustGet(t, rec, "d").([]byte)
		if !ok {
			t.Fatalf("decimal must be stored as bytes")
		}
		d := osc.DecimalFromBytes(raw, tc.scale)
		if d.String() != tc.want {
			t.Fatalf("decimal(%d,%d): want %s, got %s", tc.precision, tc.scale, tc.want, d)
		}
		if d.Rat().Cmp(big.NewRat(101234, 10000)) != 0 {
			t.Fatalf("decimal(%d,%d): value changed: %s", tc.precision, tc.scale, d)
		}
		if viaRecord, ok := rec.Decimal("d"); !ok || viaRecord.String() != tc.want {
			t.Fatalf("Record.Decimal mismatch: %v", viaRecord)
		}
	}
}

func TestTransform_DecimalViolations(t *testing.T) {
	s := osc.RecordOf("r", osc.NewField("d", osc.Decimal(34, 2)))
	_, err := mustTransformer(t, s).Transform(map[string]any{"d": json.Number("10.1234")})
	if err == nil {
		t.Fatalf("expected scale failure")
	}
	if !strings.Contains(err.Error(), "scale '4'") || !strings.Contains(err.Error(), "schema scale '2'") {
		t.Fatalf("unexpected message: %v", err)
	}

	s = osc.RecordOf("r", osc.NewField("d", osc.Decimal(4, 4)))
	_, err = mustTransformer(t, s).Transform(map[string]any{"d": json.Number("10.1234")})
	if err == nil || !strings.Contains(err.Error(), "has precision '6' which is higher than schema precision '4'") {
		t.Fatalf("expected precision failure, got %v", err)
	}

	_, err = mustTransformer(t, s).Transform(map[string]any{"d": "10.1234"})
	if err == nil || !strings.Contains(err.Error(), "is expected to be a number") {
		t.Fatalf("expected number failure, got %v", err)
	}
}

func TestTransform_Mismatches(t *testing.T) {
	cases := []struct {
		name   string
		schema *osc.Schema
		value  any
		want   string
	}{
		{"object into int", osc.Int(), map[string]any{"a": json.Number("1")}, "Document field 'f' is expected to be of type 'primitive', but found a 'object'."},
		{"string into map", osc.MapOf(osc.String()), "str", "Document field 'f' is expected to be of type 'object', but found a 'string'."},
		{"object into array", osc.ArrayOf(osc.Long()), map[string]any{}, "is expected to be of type 'array'"},
		{"string into number", osc.Double(), "abc", `Document field 'f' is expected to be a number, but found a '"abc"'.`},
		{"number into boolean", osc.Boolean(), json.Number("1"), "is expected to be a boolean, but found a '1'."},
		{"boolean into string", osc.String(), true, "is expected to be a string, but found a 'true'."},
		{"union", osc.UnionOf(osc.Long(), osc.String()), json.Number("1"), "Field 'f' is of unsupported type 'union'"},
		{"bytes", osc.Bytes(), "AQI=", "Field 'f' is of unsupported type 'bytes'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := osc.RecordOf("r", osc.NewField("f", tc.schema))
			rec, err := mustTransformer(t, s).Transform(map[string]any{"f": tc.value})
			if rec != nil {
				t.Fatalf("no partial record expected")
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want %q, got %v", tc.want, err)
			}
			if !errors.Is(err, osc.ErrUnexpectedFormat) {
				t.Fatalf("expected ErrUnexpectedFormat, got %T", err)
			}
		})
	}
}

func TestTransform_NestedFieldPath(t *testing.T) {
	s := osc.RecordOf("r", osc.NewField("outer", osc.RecordOf("o",
		osc.NewField("items", osc.ArrayOf(osc.RecordOf("i", osc.NewField("n", osc.Int())))),
	)))
	doc := map[string]any{"outer": map[string]any{"items": []any{map[string]any{"n": "x"}}}}
	_, err := mustTransformer(t, s).Transform(doc)
	var ufe *osc.UnexpectedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("expected *UnexpectedFormatError, got %v", err)
	}
	if ufe.Path != "outer.items.n" {
		t.Fatalf("unexpected path %q", ufe.Path)
	}
}

func TestNewTransformer_RejectsInvalidSchemas(t *testing.T) {
	for name, s := range map[string]*osc.Schema{
		"nil":        nil,
		"no fields":  osc.RecordOf("empty"),
		"not record": osc.Long(),
	} {
		if _, err := osc.NewTransformer(s); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if _, ok := osc.AsIssues(err); !ok {
			t.Fatalf("%s: expected Issues, got %v", name, err)
		}
	}
}

func TestTransformBytes_BothDrivers(t *testing.T) {
	s := osc.RecordOf("r",
		osc.NewField("id", osc.Long()),
		osc.NewField("amount", osc.Decimal(10, 3)),
		osc.NewField("tags", osc.ArrayOf(osc.String())),
	)
	tr := mustTransformer(t, s)
	data := []byte(`{"id": 12, "amount": 1.25, "tags": ["a","b"], "ignored": {"x": 1}}`)
	for _, d := range []osc.JSONDriver{osc.StdJSONDriver(), osc.CurrentJSONDriver()} {
		rec, err := tr.TransformSource(t.Context(), d.NewBytes(data))
		if err != nil {
			t.Fatalf("%s: %v", d.Name(), err)
		}
		out, err := rec.MarshalJSON()
		if err != nil {
			t.Fatalf("%s: marshal: %v", d.Name(), err)
		}
		if want := `{"id":12,"amount":"1.250","tags":["a","b"]}`; string(out) != want {
			t.Fatalf("%s: want %s, got %s", d.Name(), want, out)
		}
	}
}

func TestTransformBytes_DuplicateKeyPolicy(t *testing.T) {
	tr := mustTransformer(t, osc.RecordOf("r", osc.NewField("a", osc.Long())))
	data := []byte(`{"a": 1, "a": 2}`)

	_, err := tr.TransformBytes(data, osc.DecodeOpt{OnDuplicateKey: osc.Error})
	iss, ok := osc.AsIssues(err)
	if !ok || iss[0].Code != osc.CodeDuplicateKey || iss[0].Path != "/a" {
		t.Fatalf("expected duplicate_key issue, got %v", err)
	}

	var warned []osc.Issue
	rec, err := tr.TransformBytes(data, osc.DecodeOpt{OnDuplicateKey: osc.Warn, Warnings: func(i osc.Issue) { warned = append(warned, i) }})
	if err != nil {
		t.Fatalf("warn mode: %v", err)
	}
	if len(warned) != 1 {
		t.Fatalf("expected one warning, got %v", warned)
	}
	if v, _ := rec.Get("a"); v != int64(2) {
		t.Fatalf("last duplicate wins, got %#v", v)
	}
}

func TestDecodeDocument_Errors(t *testing.T) {
	ctx := t.Context()
	cases := map[string]struct {
		data string
		opt  osc.DecodeOpt
		code string
	}{
		"top-level array": {`[1,2]`, osc.DecodeOpt{}, osc.CodeInvalidType},
		"truncated":       {`{"a": [1, 2`, osc.DecodeOpt{}, osc.CodeTruncated},
		"too deep":        {`{"a": {"b": {"c": 1}}}`, osc.DecodeOpt{MaxDepth: 2}, osc.CodeParseError},
	}
	for name, tc := range cases {
		_, err := osc.DecodeDocument(ctx, osc.StdJSONDriver().NewBytes([]byte(tc.data)), tc.opt)
		iss, ok := osc.AsIssues(err)
		if !ok || iss[0].Code != tc.code {
			t.Fatalf("%s: want %s, got %v", name, tc.code, err)
		}
	}
}

func TestTransform_HugeExponentsAreCheap(t *testing.T) {
	s := osc.RecordOf("r",
		osc.NewField("l", osc.Long()),
		osc.NewField("i", osc.Int()),
	)
	tr := mustTransformer(t, s)
	for _, lit := range []string{"1e10000000", "1e-10000000", "-7E+999999999", "0.5e-64"} {
		start := time.Now()
		rec, err := tr.Transform(map[string]any{"l": json.Number(lit), "i": json.Number(lit)})
		if err != nil {
			t.Fatalf("%s: %v", lit, err)
		}
		if got := mustGet(t, rec, "l"); got != int64(0) {
			t.Fatalf("%s: want int64(0), got %#v", lit, got)
		}
		if got := mustGet(t, rec, "i"); got != int32(0) {
			t.Fatalf("%s: want int32(0), got %#v", lit, got)
		}
		if d := time.Since(start); d > time.Second {
			t.Fatalf("%s: conversion took %s", lit, d)
		}
	}

	// Low 64 bits are still kept below the cutoff: 2^64 * 3 + 5.
	rec, err := tr.Transform(map[string]any{"l": json.Number("55340232221128654853e0")})
	if err != nil || mustGet(t, rec, "l") != int64(5) {
		t.Fatalf("wrap below cutoff: %v %v", err, rec)
	}
}

func TestTransform_DecimalHugeExponent(t *testing.T) {
	s := osc.RecordOf("r", osc.NewField("d", osc.Decimal(10, 2)))
	tr := mustTransformer(t, s)

	start := time.Now()
	_, err := tr.Transform(map[string]any{"d": json.Number("1e10000000")})
	if err == nil || !strings.Contains(err.Error(), "higher than schema precision '10'") {
		t.Fatalf("expected precision failure, got %v", err)
	}
	rec, err := tr.Transform(map[string]any{"d": json.Number("0e10000000")})
	if err != nil {
		t.Fatalf("zero: %v", err)
	}
	if d, ok := rec.Decimal("d"); !ok || d.String() != "0.00" {
		t.Fatalf("zero: got %v", d)
	}
	if d := time.Since(start); d > time.Second {
		t.Fatalf("conversion took %s", d)
	}
}

func TestTransformer_ConcurrentUse(t *testing.T) {
	s := osc.RecordOf("r",
		osc.NewField("id", osc.Long()),
		osc.NewField("amount", osc.Decimal(10, 2)),
		osc.NewField("tags", osc.ArrayOf(osc.String())),
	)
	tr := mustTransformer(t, s)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				doc := map[string]any{"id": json.Number("7"), "amount": json.Number("1.5"), "tags": []any{"a"}}
				if i%2 == 1 {
					doc["id"] = "not a number"
				}
				rec, err := tr.Transform(doc)
				switch {
				case i%2 == 1 && !errors.Is(err, osc.ErrUnexpectedFormat):
					errs <- err
					return
				case i%2 == 0 && err != nil:
					errs <- err
					return
				case i%2 == 0:
					if id, _ := rec.Get("id"); id != int64(7) {
						errs <- errors.New("wrong id")
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent transform: %v", err)
	}
}
