package engine

import (
	"encoding/json"
	"errors"
	"io"
	"testing"
)

type sliceSource struct {
	toks []Token
	pos  int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.pos) }

func obj(toks ...Token) []Token {
	out := []Token{{Kind: KindBeginObject}}
	out = append(out, toks...)
	return append(out, Token{Kind: KindEndObject})
}

func TestDecodeAnyFromSource_Tree(t *testing.T) {
	src := &sliceSource{toks: obj(
		Token{Kind: KindKey, String: "n"}, Token{Kind: KindNumber, Number: "10.1234"},
		Token{Kind: KindKey, String: "s"}, Token{Kind: KindString, String: "x"},
		Token{Kind: KindKey, String: "z"}, Token{Kind: KindNull},
		Token{Kind: KindKey, String: "a"}, Token{Kind: KindBeginArray},
		Token{Kind: KindBool, Bool: true}, Token{Kind: KindEndArray},
	)}
	v, err := DecodeAnyFromSource(src)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	if n, _ := m["n"].(json.Number); n.String() != "10.1234" {
		t.Fatalf("number literal not preserved: %#v", m["n"])
	}
	if _, present := m["z"]; !present || m["z"] != nil {
		t.Fatalf("null must decode to a present nil entry: %#v", m)
	}
	arr, _ := m["a"].([]any)
	if len(arr) != 1 || arr[0] != true {
		t.Fatalf("unexpected array: %#v", m["a"])
	}
}

func TestDecodeAnyFromSource_EmptyArrayIsNotNil(t *testing.T) {
	src := &sliceSource{toks: []Token{{Kind: KindBeginArray}, {Kind: KindEndArray}}}
	v, err := DecodeAnyFromSource(src)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if arr, ok := v.([]any); !ok || arr == nil {
		t.Fatalf("expected empty non-nil slice, got %#v", v)
	}
}

func TestDecodeAnyFromSource_Truncated(t *testing.T) {
	src := &sliceSource{toks: []Token{{Kind: KindBeginObject}, {Kind: KindKey, String: "a"}}}
	if _, err := DecodeAnyFromSource(src); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF, got %v", err)
	}
}

func TestEnforcement_DuplicateKey(t *testing.T) {
	toks := obj(
		Token{Kind: KindKey, String: "a"}, Token{Kind: KindNumber, Number: "1"},
		Token{Kind: KindKey, String: "a"}, Token{Kind: KindNumber, Number: "2"},
	)

	var warned []SimpleIssue
	warn := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { warned = append(warned, si) },
	})
	if _, err := DecodeAnyFromSource(warn); err != nil {
		t.Fatalf("warn mode must not fail: %v", err)
	}
	if len(warned) != 1 || warned[0].Code != "duplicate_key" || warned[0].Path != "/a" {
		t.Fatalf("unexpected warnings: %#v", warned)
	}

	strict := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{OnDuplicate: DupError})
	_, err := DecodeAnyFromSource(strict)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "duplicate_key" {
		t.Fatalf("expected duplicate_key error, got %v", err)
	}
}

func TestEnforcement_MaxDepth(t *testing.T) {
	toks := obj(
		Token{Kind: KindKey, String: "a"},
		Token{Kind: KindBeginArray}, Token{Kind: KindBeginArray}, Token{Kind: KindEndArray}, Token{Kind: KindEndArray},
	)
	src := WrapWithEnforcement(&sliceSource{toks: toks}, EnforceOptions{MaxDepth: 2})
	_, err := DecodeAnyFromSource(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Message != "max depth exceeded" {
		t.Fatalf("expected depth error, got %v", err)
	}
	if ie.Path != "/a/0" {
		t.Fatalf("unexpected path %q", ie.Path)
	}
}

func TestWrapWithEnforcement_NoopReturnsInner(t *testing.T) {
	inner := &sliceSource{}
	if got := WrapWithEnforcement(inner, EnforceOptions{}); got != TokenSource(inner) {
		t.Fatalf("expected inner source to be returned unchanged")
	}
}
