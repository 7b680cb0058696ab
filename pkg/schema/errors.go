package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeNoContent       = "NO_CONTENT"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeRender          = "RENDER_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeExecution       = "EXECUTION_ERROR"
	ErrCodeInterpolation   = "INTERPOLATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeTerminal        = "TERMINAL_ERROR"
)

// TypeviewError is the structured error type for all typeview operations.
type TypeviewError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Slide   string         `json:"slide,omitempty"`
	Cause   error          `json:"-"`
}

func (e *TypeviewError) Error() string {
	if e.Slide != "" {
		return fmt.Sprintf("[%s] slide %q: %s", e.Code, e.Slide, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *TypeviewError) Unwrap() error {
	return e.Cause
}

// NewError creates a new TypeviewError.
func NewError(code, message string) *TypeviewError {
	return &TypeviewError{Code: code, Message: message}
}

// NewErrorf creates a new TypeviewError with a formatted message.
func NewErrorf(code, format string, args ...any) *TypeviewError {
	return &TypeviewError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithSlide attaches the title of the slide the error relates to.
func (e *TypeviewError) WithSlide(title string) *TypeviewError {
	e.Slide = title
	return e
}

// WithCause attaches an underlying cause.
func (e *TypeviewError) WithCause(err error) *TypeviewError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *TypeviewError) WithDetails(details map[string]any) *TypeviewError {
	e.Details = details
	return e
}

// HasCode reports whether err is a *TypeviewError carrying the given code.
func HasCode(err error, code string) bool {
	te, ok := err.(*TypeviewError)
	return ok && te.Code == code
}
