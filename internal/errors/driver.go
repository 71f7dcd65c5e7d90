package errors

import "fmt"

// DriverError wraps a browser driver failure that is not a timeout
type DriverError struct {
	*FormCheckError
	Operation string
}

// NewDriverError creates a new driver error
func NewDriverError(operation string, cause error) *DriverError {
	return &DriverError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("browser driver failed during %s", operation),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: operation,
				Component: "Browser Driver",
				Suggestions: []string{
					"Run 'formcheck install' to install the browsers",
					"Re-run with --debug for driver logs",
				},
			},
			ExitCode: ExitDriverError,
		},
		Operation: operation,
	}
}

// PageScriptError carries an uncaught script error thrown by the page under
// test. It surfaces only when uncaught exceptions are not ignored.
type PageScriptError struct {
	*FormCheckError
	URL string
}

// NewPageScriptError creates a new page script error
func NewPageScriptError(url string, cause error) *PageScriptError {
	return &PageScriptError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("page %s threw an uncaught script error", url),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Driving page",
				Component: "Browser Driver",
				Details: map[string]interface{}{
					"url": url,
				},
				Suggestions: []string{
					"Set browser.ignore_uncaught_exceptions to true if the page's own errors are expected",
				},
			},
			ExitCode: ExitDriverError,
		},
		URL: url,
	}
}
