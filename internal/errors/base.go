package errors

import (
	stderrors "errors"
	"fmt"
)

// FormCheckError is the base error type for all application errors
type FormCheckError struct {
	Message  string        // Human-readable error message
	Context  *ErrorContext // Rich error context
	Cause    error         // Underlying error (for wrapping)
	ExitCode ExitCode      // Exit code for CLI
}

// Error returns the error message with cause if present
func (e *FormCheckError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *FormCheckError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns the CLI exit code carried by the error
func (e *FormCheckError) GetExitCode() ExitCode {
	return e.ExitCode
}

// GetUserMessage returns a user-friendly error message with context
func (e *FormCheckError) GetUserMessage() string {
	msg := fmt.Sprintf("ERROR: %s", e.Message)

	if e.Cause != nil {
		msg += fmt.Sprintf("\nCause: %v", e.Cause)
	}

	if e.Context != nil {
		msg += e.Context.Format()
	}

	return msg
}

// NewError creates a new FormCheckError with the given message and exit code
func NewError(message string, exitCode ExitCode) *FormCheckError {
	return &FormCheckError{
		Message:  message,
		ExitCode: exitCode,
	}
}

// WrapError wraps an existing error with additional context
func WrapError(cause error, message string, exitCode ExitCode) *FormCheckError {
	return &FormCheckError{
		Message:  message,
		Cause:    cause,
		ExitCode: exitCode,
	}
}

// WrapErrorWithContext wraps an error with full context
func WrapErrorWithContext(cause error, message string, exitCode ExitCode, context *ErrorContext) *FormCheckError {
	return &FormCheckError{
		Message:  message,
		Context:  context,
		Cause:    cause,
		ExitCode: exitCode,
	}
}

type exitCoder interface {
	GetExitCode() ExitCode
}

type userMessager interface {
	GetUserMessage() string
}

// ExitCodeOf walks the error chain and returns the first exit code found.
// A nil error maps to ExitSuccess and unknown errors to ExitGeneralError.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var coder exitCoder
	if stderrors.As(err, &coder) {
		return coder.GetExitCode()
	}
	return ExitGeneralError
}

// UserMessage returns the rich user message of the first application error in
// the chain, or the plain error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if stderrors.As(err, &um) {
		return um.GetUserMessage()
	}
	return err.Error()
}
