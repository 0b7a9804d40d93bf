package oscconnect_test

import (
	"bytes"
	"math/big"
	"testing"

	osc "github.com/reoring/oscconnect"
)

func TestParseDecimal_ScaleAndPrecision(t *testing.T) {
	cases := []struct {
		lit       string
		unscaled  string
		scale     int
		precision int
	}{
		{"10.1234", "101234", 4, 6},
		{"0", "0", 0, 1},
		{"0.01", "1", 2, 1},
		{"-7.50", "-750", 2, 3},
		{"1e3", "1", -3, 1},
		{"1.5E+2", "15", -1, 2},
		{"2.5e-3", "25", 4, 2},
	}
	for _, tc := range cases {
		d, err := osc.ParseDecimal(tc.lit)
		if err != nil {
			t.Fatalf("%s: %v", tc.lit, err)
		}
		if d.Unscaled.String() != tc.unscaled || d.Scale != tc.scale || d.Precision() != tc.precision {
			t.Fatalf("%s: got unscaled=%s scale=%d precision=%d", tc.lit, d.Unscaled, d.Scale, d.Precision())
		}
	}
	for _, bad := range []string{"", "-", "1.2.3", "abc", "1e"} {
		if _, err := osc.ParseDecimal(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestDecimal_TwosComplementBytes(t *testing.T) {
	cases := []struct {
		v    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x00, 0x80}},
		{-1, []byte{0xff}},
		{-128, []byte{0x80}},
		{-129, []byte{0xff, 0x7f}},
		{101234, []byte{0x01, 0x8b, 0x72}},
	}
	for _, tc := range cases {
		d := osc.DecimalValue{Unscaled: big.NewInt(tc.v), Scale: 2}
		got := d.Bytes()
		if !bytes.Equal(got, tc.want) {
			t.Fatalf("%d: want % x, got % x", tc.v, tc.want, got)
		}
		back := osc.DecimalFromBytes(got, 2)
		if back.Unscaled.Int64() != tc.v {
			t.Fatalf("%d: round trip gave %s", tc.v, back.Unscaled)
		}
	}
}

func TestDecimal_StringAndRescale(t *testing.T) {
	d, _ := osc.ParseDecimal("-0.05")
	if d.String() != "-0.05" {
		t.Fatalf("unexpected %s", d)
	}
	r, err := d.Rescale(4)
	if err != nil || r.String() != "-0.0500" {
		t.Fatalf("rescale up: %v %s", err, r)
	}
	if _, err := r.Rescale(1); err == nil {
		t.Fatalf("narrowing with a remainder must fail")
	}
	e, _ := osc.ParseDecimal("1e3")
	if e.String() != "1000" {
		t.Fatalf("negative scale rendering: %s", e)
	}
}

func TestRecordBuilder_SetDecimal(t *testing.T) {
	s := osc.RecordOf("r", osc.NewField("amount", osc.NullableOf(osc.Decimal(8, 3))), osc.NewField("n", osc.Long()))
	d, _ := osc.ParseDecimal("2.5")
	rec, err := osc.NewRecordBuilder(s).SetDecimal("amount", d).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got, ok := rec.Decimal("amount")
	if !ok || got.String() != "2.500" {
		t.Fatalf("unexpected decimal %v", got)
	}
	if v, _ := rec.Get("n"); v != nil {
		t.Fatalf("unset non-nullable field must stay nil, got %#v", v)
	}
	if _, err := osc.NewRecordBuilder(s).Set("n", "nope").Build(); err == nil {
		t.Fatalf("expected type error for string in long field")
	}
	if _, err := osc.NewRecordBuilder(s).Set("missing", int64(1)).Build(); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
