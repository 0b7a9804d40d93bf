package reader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	osc "github.com/reoring/oscconnect"
)

// SliceSource serves documents from memory.
type SliceSource struct {
	docs []map[string]any
	pos  int
}

// NewSliceSource returns a source over docs.
func NewSliceSource(docs ...map[string]any) *SliceSource { return &SliceSource{docs: docs} }

func (s *SliceSource) Next(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.docs) {
		return nil, io.EOF
	}
	d := s.docs[s.pos]
	s.pos++
	return d, nil
}

// JSONLinesSource reads newline-delimited JSON objects. Blank lines are
// ignored. Each line is decoded with the current JSON driver.
type JSONLinesSource struct {
	sc   *bufio.Scanner
	opts []osc.DecodeOpt
	line int
}

// MaxLineSize bounds a single JSON line.
const MaxLineSize = 16 << 20

// NewJSONLinesSource returns a source reading from r.
func NewJSONLinesSource(r io.Reader, opts ...osc.DecodeOpt) *JSONLinesSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &JSONLinesSource{sc: sc, opts: opts}
}

func (s *JSONLinesSource) Next(ctx context.Context) (map[string]any, error) {
	for s.sc.Scan() {
		s.line++
		line := bytes.TrimSpace(s.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		doc, err := osc.DecodeDocument(ctx, osc.JSONBytes(bytes.Clone(line)), s.opts...)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", s.line, err)
		}
		return doc, nil
	}
	if err := s.sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("line %d: %w", s.line+1, err)
		}
		return nil, err
	}
	return nil, io.EOF
}
