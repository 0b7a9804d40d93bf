// Package reader drives documents from a source through a transformer and
// yields structured records.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	osc "github.com/reoring/oscconnect"
)

// DocumentSource yields untyped JSON documents, returning io.EOF at the end.
// client.Iterator satisfies it.
type DocumentSource interface {
	Next(ctx context.Context) (map[string]any, error)
}

// ErrorPolicy decides what happens to documents that do not fit the schema.
type ErrorPolicy int

const (
	// FailOnError stops the read at the first invalid document.
	FailOnError ErrorPolicy = iota
	// SkipOnError logs and drops invalid documents.
	SkipOnError
)

func (p ErrorPolicy) String() string {
	if p == SkipOnError {
		return "skip"
	}
	return "fail"
}

// Stats counts documents seen by a Reader.
type Stats struct {
	Read    int
	Emitted int
	Skipped int
}

// Option configures a Reader.
type Option func(*Reader)

// WithErrorPolicy sets the policy for invalid documents.
func WithErrorPolicy(p ErrorPolicy) Option { return func(r *Reader) { r.policy = p } }

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRunID overrides the generated run identifier attached to log entries.
func WithRunID(id uuid.UUID) Option { return func(r *Reader) { r.runID = id } }

// Reader converts the documents of one source into records. It is not safe
// for concurrent use.
type Reader struct {
	src    DocumentSource
	tr     *osc.Transformer
	policy ErrorPolicy
	logger *slog.Logger
	runID  uuid.UUID
	stats  Stats
	done   bool
}

// New returns a Reader over src.
func New(src DocumentSource, tr *osc.Transformer, opts ...Option) *Reader {
	r := &Reader{src: src, tr: tr, logger: slog.Default(), runID: uuid.New()}
	for _, o := range opts {
		o(r)
	}
	r.logger = r.logger.With("run_id", r.runID.String())
	return r
}

// RunID identifies this read in logs.
func (r *Reader) RunID() uuid.UUID { return r.runID }

// Stats returns the counts so far.
func (r *Reader) Stats() Stats { return r.stats }

// Next returns the next record, or io.EOF when the source is exhausted.
func (r *Reader) Next(ctx context.Context) (*osc.Record, error) {
	for {
		if r.done {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := r.src.Next(ctx)
		if errors.Is(err, io.EOF) {
			r.done = true
			r.logger.InfoContext(ctx, "read finished", "read", r.stats.Read, "emitted", r.stats.Emitted, "skipped", r.stats.Skipped)
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("reader: source: %w", err)
		}
		r.stats.Read++
		rec, err := r.tr.Transform(doc)
		if err == nil {
			r.stats.Emitted++
			return rec, nil
		}
		if r.policy == SkipOnError && errors.Is(err, osc.ErrUnexpectedFormat) {
			r.stats.Skipped++
			attrs := []any{"document", r.stats.Read, "error", err}
			var ufe *osc.UnexpectedFormatError
			if errors.As(err, &ufe) {
				attrs = append(attrs, "field", ufe.Path, "code", ufe.Code)
			}
			r.logger.WarnContext(ctx, "skipping invalid document", attrs...)
			continue
		}
		return nil, fmt.Errorf("reader: document %d: %w", r.stats.Read, err)
	}
}

// ReadAll drains the reader.
func (r *Reader) ReadAll(ctx context.Context) ([]*osc.Record, error) {
	var out []*osc.Record
	for {
		rec, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
