package oscconnect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	eng "github.com/reoring/oscconnect/internal/engine"
)

// Severity selects how duplicate object keys are treated.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// DecodeOpt controls document decoding. The zero value enforces nothing.
type DecodeOpt struct {
	OnDuplicateKey Severity
	MaxDepth       int
	MaxBytes       int64
	// Warnings receives duplicate keys when OnDuplicateKey is Warn.
	Warnings func(Issue)
}

func mergeDecodeOpts(opts []DecodeOpt) DecodeOpt {
	var o DecodeOpt
	for _, x := range opts {
		if x.OnDuplicateKey != Ignore {
			o.OnDuplicateKey = x.OnDuplicateKey
		}
		if x.MaxDepth > 0 {
			o.MaxDepth = x.MaxDepth
		}
		if x.MaxBytes > 0 {
			o.MaxBytes = x.MaxBytes
		}
		if x.Warnings != nil {
			o.Warnings = x.Warnings
		}
	}
	return o
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	}
	return eng.DupIgnore
}

// DecodeDocument reads one JSON object from src. Numbers keep their literal
// text as json.Number. Enforcement failures and syntax errors are returned as
// Issues.
func DecodeDocument(ctx context.Context, src Source, opts ...DecodeOpt) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := mergeDecodeOpts(opts)
	inner := toEngine(src)
	var sink func(eng.SimpleIssue)
	if o.Warnings != nil {
		sink = func(si eng.SimpleIssue) {
			o.Warnings(Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: inner.Location()})
		}
	}
	ts := eng.WrapWithEnforcement(inner, eng.EnforceOptions{
		OnDuplicate: toEngineDup(o.OnDuplicateKey),
		MaxDepth:    o.MaxDepth,
		MaxBytes:    o.MaxBytes,
		IssueSink:   sink,
	})
	v, err := eng.DecodeAnyFromSource(ts)
	if err != nil {
		var ie eng.IssueError
		if errors.As(err, &ie) {
			return nil, Issues{{Path: ie.Path, Code: ie.Code, Message: ie.Message, Offset: inner.Location()}}
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, Issues{{Path: "/", Code: CodeTruncated, Message: "unexpected end of input", Offset: inner.Location()}}
		}
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Offset: inner.Location()}}
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{{Path: "/", Code: CodeInvalidType, Message: fmt.Sprintf("document must be an object, got %s", jsonKind(v)), Offset: -1}}
	}
	return doc, nil
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
