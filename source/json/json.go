// Package json provides a token source backed by encoding/json.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	eng "github.com/reoring/oscconnect/internal/engine"
)

type jsonSource struct {
	dec        *json.Decoder
	keys       keyTracker
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	var out eng.Token
	switch v := tok.(type) {
	case json.Delim:
		out = s.keys.delim(rune(v))
	case string:
		out = s.keys.str(v)
	case bool:
		out = s.keys.scalar(eng.Token{Kind: eng.KindBool, Bool: v})
	case json.Number:
		out = s.keys.scalar(eng.Token{Kind: eng.KindNumber, Number: string(v)})
	case float64:
		out = s.keys.scalar(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64)})
	default:
		out = s.keys.scalar(eng.Token{Kind: eng.KindNull})
	}
	out.Offset = s.lastOffset
	return out, nil
}

func (s *jsonSource) Location() int64 { return s.lastOffset }

// keyTracker tells object keys apart from string values; encoding/json
// reports both as plain strings.
type keyTracker struct {
	stack []bool // true for objects currently expecting a key
	kinds []eng.Kind
}

func (k *keyTracker) delim(d rune) eng.Token {
	switch d {
	case '{':
		k.stack = append(k.stack, true)
		k.kinds = append(k.kinds, eng.KindBeginObject)
		return eng.Token{Kind: eng.KindBeginObject}
	case '[':
		k.stack = append(k.stack, false)
		k.kinds = append(k.kinds, eng.KindBeginArray)
		return eng.Token{Kind: eng.KindBeginArray}
	}
	if n := len(k.stack); n > 0 {
		k.stack = k.stack[:n-1]
		k.kinds = k.kinds[:n-1]
	}
	k.valueDone()
	if d == '}' {
		return eng.Token{Kind: eng.KindEndObject}
	}
	return eng.Token{Kind: eng.KindEndArray}
}

func (k *keyTracker) str(v string) eng.Token {
	if n := len(k.stack); n > 0 && k.kinds[n-1] == eng.KindBeginObject && k.stack[n-1] {
		k.stack[n-1] = false
		return eng.Token{Kind: eng.KindKey, String: v}
	}
	return k.scalar(eng.Token{Kind: eng.KindString, String: v})
}

func (k *keyTracker) scalar(t eng.Token) eng.Token {
	k.valueDone()
	return t
}

func (k *keyTracker) valueDone() {
	if n := len(k.stack); n > 0 && k.kinds[n-1] == eng.KindBeginObject {
		k.stack[n-1] = true
	}
}
