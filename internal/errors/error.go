package errors

import "fmt"

// Category represents the failure class of an engine error.
type Category string

const (
	// CategoryStructural marks core invariant violations. These are fatal
	// for the tree instance and never recovered from.
	CategoryStructural Category = "structural"

	// CategoryReentrancy marks cascaded-update overflows.
	CategoryReentrancy Category = "reentrancy"

	// CategoryAssertion marks debug-only invariant checks.
	CategoryAssertion Category = "assertion"

	// CategoryContract marks invalid component or plugin registrations.
	CategoryContract Category = "contract"
)

// Error is a structured engine error with a stable code.
type Error struct {
	// Code is a unique error identifier (e.g. "E001").
	Code string

	// Category is the failure class.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation.
func (e *Error) WithDetail(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates an uncoded Error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is an engine Error of the given category.
func Is(err error, category Category) bool {
	e, ok := err.(*Error)
	return ok && e.Category == category
}
