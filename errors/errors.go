package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode   Phase = "encode"   // annotations to bytes
	PhaseDecode   Phase = "decode"   // bytes to annotations
	PhaseMerge    Phase = "merge"    // native + annotation sections to model
	PhaseInject   Phase = "inject"   // splicing into a module binary
	PhaseLoad     Phase = "load"     // annotation documents
	PhaseParse    Phase = "parse"    // module binary sections
	PhaseValidate Phase = "validate" // host compilation checks
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownTypeTag       Kind = "unknown_type_tag"
	KindUnknownExternalKind  Kind = "unknown_external_kind"
	KindInvalidForm          Kind = "invalid_form"
	KindInvalidParam         Kind = "invalid_param"
	KindTrailingBytes        Kind = "trailing_bytes"
	KindInvalidParamLength   Kind = "invalid_param_length"
	KindInvalidBaseParamType Kind = "invalid_base_param_type"
	KindNoReturnTypesAllowed Kind = "no_return_types_allowed"
	KindOutOfBounds          Kind = "out_of_bounds"
	KindInvalidData          Kind = "invalid_data"
	KindNotFound             Kind = "not_found"
	KindMismatch             Kind = "mismatch"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Value != nil {
		fmt.Fprintf(&b, " (value: %v)", e.Value)
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

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
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

// Path sets the location path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
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

// Convenience constructors for common error patterns

// UnknownTypeTag creates an error for a byte that is not a registered type tag
func UnknownTypeTag(phase Phase, path []string, b byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownTypeTag,
		Path:   path,
		Value:  fmt.Sprintf("0x%02x", b),
		Detail: "unrecognized type tag",
	}
}

// UnknownExternalKind creates an error for a byte that is not an external kind
func UnknownExternalKind(phase Phase, path []string, b byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownExternalKind,
		Path:   path,
		Value:  fmt.Sprintf("0x%02x", b),
		Detail: "unrecognized external kind",
	}
}

// InvalidForm creates an error for an unexpected record marker or kind
func InvalidForm(phase Phase, path []string, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidForm,
		Path:   path,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidParam creates an error for an unrecognized parameter type
func InvalidParam(phase Phase, path []string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidParam,
		Path:   path,
		Detail: "invalid param",
		Cause:  cause,
	}
}

// TrailingBytes creates an error for input left over after decoding
func TrailingBytes(phase Phase, path []string, remaining int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTrailingBytes,
		Path:   path,
		Detail: fmt.Sprintf("%d unconsumed bytes", remaining),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
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

// NotFound creates a not found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}
