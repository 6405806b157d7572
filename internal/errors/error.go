// Package errors provides coded, structured errors for stacknav.
//
// Each error carries a code from the registry (for example "R002") that maps
// to a category, a short message and a longer explanation. Errors are
// created from their code and refined with builder methods:
//
//	err := errors.New("R002").
//	    WithDetail(`route "users" does not start with "/"`).
//	    WithSuggestion(`Write the route as "/users".`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R002: Route path must start with "/"
//	//
//	//   route "users" does not start with "/"
//	//
//	//   Hint: Write the route as "/users".
package errors

import (
	"fmt"
)

// Category groups related error codes.
type Category string

const (
	CategoryRegistration Category = "registration"
	CategoryNavigation   Category = "navigation"
	CategoryConfig       Category = "config"
	CategorySnapshot     Category = "snapshot"
	CategoryCLI          Category = "cli"
)

// Error is a structured error with a registry code and an optional hint.
type Error struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error group.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail names the offending input.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code, so that a bare
// New(code) works as a sentinel with the standard errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with formatting.
func (e *Error) WithDetailf(format string, args ...any) *Error {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// WithSuggestion adds a fix suggestion to the error.
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
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
	}
}

// Newf creates an Error with a formatted message and no code.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error with the given code. Errors
// that already are *Error are returned unchanged.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(code).Wrap(err)
}

// Explain returns the registry explanation for code, or "".
func Explain(code string) string {
	return registry[code].Explanation
}
