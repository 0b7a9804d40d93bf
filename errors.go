package oscconnect

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeInvalidType     = "invalid_type"
	CodeUnsupportedType = "unsupported_type"
	CodeRequired        = "required"
	CodeDuplicateKey    = "duplicate_key"
	CodeTooShort        = "too_short"
	CodeTooBig          = "too_big"
	CodeScaleMismatch   = "scale_mismatch"
	CodeInvalidFormat   = "invalid_format"
	CodeParseError      = "parse_error"
	CodeTruncated       = "truncated"
)

// ErrUnexpectedFormat matches every *UnexpectedFormatError via errors.Is.
var ErrUnexpectedFormat = errors.New("unexpected format")

// UnexpectedFormatError reports a document that does not conform to the
// schema. Path is the dot-joined field path.
type UnexpectedFormatError struct {
	Path    string
	Code    string
	Message string
}

func (e *UnexpectedFormatError) Error() string { return e.Message }

func (e *UnexpectedFormatError) Is(target error) bool { return target == ErrUnexpectedFormat }

func formatErr(path, code, format string, args ...any) error {
	return &UnexpectedFormatError{Path: path, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Issue represents a single schema or decoding problem.
type Issue struct {
	Path    string // JSON Pointer (for example: /fields/2/type).
	Code    string
	Message string
	Offset  int64 // Byte offset in the input source (-1 when unknown).
}

// Issues is a collection of problems that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s: %s", iss[i].Code, iss[i].Path, iss[i].Message)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
