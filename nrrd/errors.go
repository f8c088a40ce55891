package nrrd

import (
	"errors"
	"fmt"
	"strings"
)

// Format errors. Every fatal condition reported by Parse, Serialize and
// Validate wraps one of these, usually inside a *FormatError.
var (
	ErrMagicMismatch       = errors.New("nrrd: magic mismatch")
	ErrMissingField        = errors.New("nrrd: missing required field")
	ErrCardinalityMismatch = errors.New("nrrd: cardinality mismatch")
	ErrMalformedValue      = errors.New("nrrd: malformed value")
	ErrTruncatedData       = errors.New("nrrd: truncated data")
	ErrNoPayload           = errors.New("nrrd: no payload")
	ErrConflictingPayload  = errors.New("nrrd: more than one payload source")
	ErrUnsupportedEncoding = errors.New("nrrd: unsupported encoding")
	ErrUnsupportedType     = errors.New("nrrd: unsupported element type")
)

// FormatError describes a fatal problem with a NRRD header or payload.
type FormatError struct {
	// Field is the canonical field name involved, if any.
	Field string
	// Line is the 1-based header line number, or 0 if not applicable.
	Line int
	// Offset is the byte offset into the input, or -1 if not applicable.
	Offset int
	// Detail is a human readable explanation.
	Detail string
	// Err is the sentinel error classifying the failure.
	Err error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("nrrd: format error")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func fieldError(err error, field, format string, args ...any) *FormatError {
	return &FormatError{
		Field:  field,
		Offset: -1,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

// atLine attaches a header line number to err if it is a *FormatError
// without one; other errors are wrapped.
func atLine(err error, line int, field string) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		if fe.Line == 0 {
			fe.Line = line
		}
		if fe.Field == "" {
			fe.Field = field
		}
		return fe
	}
	return &FormatError{Field: field, Line: line, Offset: -1, Detail: err.Error(), Err: ErrMalformedValue}
}

// Warning is a non-fatal diagnostic. Warnings report input the codec
// accepted as-is: unknown fields, unknown enumeration tokens, newer
// format versions, and payload sources it does not read.
type Warning struct {
	Line    int
	Field   string
	Message string
}

func (w Warning) String() string {
	var b strings.Builder
	if w.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", w.Line)
	}
	if w.Field != "" {
		b.WriteString(w.Field)
		b.WriteString(": ")
	}
	b.WriteString(w.Message)
	return b.String()
}
