package mathexpr

import (
	"log/slog"
	"strings"
)

// Workspace errors. Compare with errors.Is; the returned errors carry the
// offending cell id as an attribute.
var (
	ErrCellNotFound = NewError("cell not found")
	ErrPanic        = NewError("evaluation panicked")
)

// Error is an error with structured attributes for logging. Errors derived
// from a sentinel through With or Wrap match it under errors.Is.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates an Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)
	if e.msg != "" {
		part = append(part, e.msg)
	}
	if e.err != nil {
		part = append(part, e.err.Error())
	}
	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a bare Error with the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.err == nil && len(t.attrs) == 0 && t.msg == e.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)
	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}
	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}
	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with additional attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	a := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	a = append(a, e.attrs...)
	a = append(a, attrs...)
	return &Error{msg: e.msg, err: e.err, attrs: a}
}

// Attrs returns the error's attributes.
func (e *Error) Attrs() []slog.Attr {
	return e.attrs
}
