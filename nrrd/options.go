package nrrd

import "fmt"

// DefaultVersion is the format version Serialize writes unless told
// otherwise.
const DefaultVersion = 4

// MaxVersion is the newest format version this package knows about.
// Newer versions are read with a warning.
const MaxVersion = 5

// Option configures Parse and Serialize.
type Option func(*options)

type options struct {
	strict   bool
	handler  func(Warning)
	comments []string
	version  int
}

func defaultOptions() *options {
	return &options{}
}

// WithStrict makes every warning fatal. The resulting error wraps
// ErrMalformedValue.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithWarningHandler registers fn to be called for each warning as it is
// produced, in addition to the warnings being returned.
func WithWarningHandler(fn func(Warning)) Option {
	return func(o *options) {
		o.handler = fn
	}
}

// WithComment adds a comment line to the serialized header. It has no
// effect on Parse.
func WithComment(text string) Option {
	return func(o *options) {
		o.comments = append(o.comments, text)
	}
}

// WithVersion sets the version written in the magic line. Versions
// outside 1..MaxVersion are ignored.
func WithVersion(v int) Option {
	return func(o *options) {
		if v >= 1 && v <= MaxVersion {
			o.version = v
		}
	}
}

// diagnostics accumulates warnings for a single Parse or Serialize call.
type diagnostics struct {
	opts     *options
	warnings []Warning
}

func (d *diagnostics) warn(line int, field, format string, args ...any) error {
	w := Warning{Line: line, Field: field, Message: fmt.Sprintf(format, args...)}
	if d.opts.strict {
		return &FormatError{Field: field, Line: line, Offset: -1, Detail: w.Message, Err: ErrMalformedValue}
	}
	d.warnings = append(d.warnings, w)
	if d.opts.handler != nil {
		d.opts.handler(w)
	}
	return nil
}
