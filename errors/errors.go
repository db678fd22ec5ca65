package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseValidate Phase = "validate" // value shape/kind checks
	PhaseEncode   Phase = "encode"   // value to media bytes
	PhaseDecode   Phase = "decode"   // media bytes to value
	PhaseHost     Phase = "host"     // capability calls
	PhaseDispatch Phase = "dispatch" // operation lookup and stack handling
	PhaseConfig   Phase = "config"   // host configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindRankMismatch   Kind = "rank_mismatch"
	KindChannelCount   Kind = "channel_count"
	KindTypeMismatch   Kind = "type_mismatch"
	KindShapeMismatch  Kind = "shape_mismatch"
	KindInvalidData    Kind = "invalid_data"
	KindInvalidUTF8    Kind = "invalid_utf8"
	KindUnsupported    Kind = "unsupported"
	KindIO             Kind = "io"
	KindPrecondition   Kind = "precondition"
	KindStackUnderflow Kind = "stack_underflow"
	KindNotFound       Kind = "not_found"
	KindInvalidInput   Kind = "invalid_input"
)

// Error is the structured error type used throughout arrayio
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the operation name
func (b *Builder) Op(name string) *Builder {
	b.err.Op = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// WithOp returns a copy of err tagged with the operation name. Errors that
// are not *Error are wrapped as dispatch failures.
func WithOp(err error, op string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		c := *e
		if c.Op == "" {
			c.Op = op
		}
		return &c
	}
	return &Error{
		Phase: PhaseDispatch,
		Kind:  KindInvalidData,
		Op:    op,
		Cause: err,
	}
}

// Convenience constructors for common error patterns

// RankMismatch creates a rank validation error naming the actual rank
func RankMismatch(phase Phase, rank int, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRankMismatch,
		Detail: detail,
		Value:  rank,
	}
}

// ChannelCount creates an invalid channel count error
func ChannelCount(phase Phase, channels int) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindChannelCount,
		Detail: fmt.Sprintf("For a color image, the last dimension of the image array "+
			"must be between 1 and 4 but it is %d", channels),
		Value: channels,
	}
}

// TypeMismatch creates a value kind error
func TypeMismatch(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: detail,
	}
}

// ShapeMismatch creates an error for a shape inconsistent with its buffer
func ShapeMismatch(shape []int, length int) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindShapeMismatch,
		Detail: fmt.Sprintf("shape %v does not match buffer length %d", shape, length),
		Value:  shape,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("Failed to read file: invalid utf-8 sequence in %x", preview),
	}
}

// Unsupported creates an unsupported capability error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// IO wraps a host I/O failure, keeping the OS message as the cause
func IO(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
	}
}

// Precondition creates a violated precondition error
func Precondition(detail string, value any) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindPrecondition,
		Detail: detail,
		Value:  value,
	}
}

// StackUnderflow creates an error for popping an empty stack
func StackUnderflow(arg int) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindStackUnderflow,
		Detail: fmt.Sprintf("stack was empty when getting argument %d", arg),
		Value:  arg,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}
