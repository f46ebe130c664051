package errs

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Kind classifies errors by the contract they break. Callers switch on the
// kind to decide whether a failure is a caller bug (schema, type), a bad
// expression, or an environment problem (persistence, I/O).
type Kind int

const (
	// KindSchema covers duplicate or unknown column names, arity mismatches
	// and illegal rename collisions.
	KindSchema Kind = iota

	// KindType covers values that cannot be converted to a declared column
	// type and conflicting types during inference or aggregation.
	KindType

	// KindEval covers expression evaluation failures: unknown columns in the
	// bound context, result size mismatches, non-reducing aggregations.
	KindEval

	// KindPersist covers corrupt payloads and unsupported format versions.
	KindPersist

	// KindIO covers underlying storage failures, surfaced without retries.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "SCHEMA"
	case KindType:
		return "TYPE"
	case KindEval:
		return "EVAL"
	case KindPersist:
		return "PERSIST"
	case KindIO:
		return "IO"
	default:
		return "UNKNOWN"
	}
}

// Error is a structured error with a kind, a stable code and optional
// context. All tablekit packages return *Error for failures they detect
// themselves and wrap foreign errors (os, encoding) with Wrap.
type Error struct {
	// Kind classifies the error for handling strategy.
	Kind Kind

	// Code is a stable identifier for this error type, e.g. "DUPLICATE_COLUMN".
	Code string

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides context about the specific instance, e.g. the column
	// name that collided.
	Detail string

	// Op identifies the operation during which the error occurred,
	// e.g. "Table.DropColumns".
	Op string

	// Cause is the underlying error, if any.
	Cause error

	// Stack is the call stack captured at construction time.
	Stack []uintptr
}

// New creates an Error with the given kind, code and message.
func New(kind Kind, code, message string) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Stack:   captureStack(),
	}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, code, format string, args ...any) *Error {
	return New(kind, code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and operation to an existing error. If err is already
// an *Error, the operation is filled in if missing and the error is returned
// unchanged otherwise. Wrapping nil returns nil.
func Wrap(err error, kind Kind, code, op string) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" {
			e.Op = op
		}
		return e
	}

	return &Error{
		Kind:    kind,
		Code:    code,
		Message: err.Error(),
		Op:      op,
		Cause:   err,
		Stack:   captureStack(),
	}
}

// WithDetail sets the detail text and returns the error for chaining.
func (e *Error) WithDetail(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithOp sets the operation name and returns the error for chaining.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// Error implements the error interface. The format follows the pattern:
// [KIND/CODE] Message: Detail (operation: Op) caused by: underlying error
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s/%s] %s", e.Kind, e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Op != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s)", e.Op))
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// FormatStack returns a human-readable stack trace for debugging.
func (e *Error) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}

// captureStack skips the frames of this package so the trace starts at the
// error origin.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}
