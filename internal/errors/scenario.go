package errors

import (
	"fmt"
	"time"
)

// PageNotReadyError is raised when the page heading or a form control is
// absent after navigation. It aborts the workflow it occurs in.
type PageNotReadyError struct {
	*FormCheckError
	Workflow string
	Missing  string
}

// NewPageNotReadyError creates a new page-not-ready error
func NewPageNotReadyError(workflow, missing string, cause error) *PageNotReadyError {
	return &PageNotReadyError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("page for workflow %q is not ready: %s", workflow, missing),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Verifying page load",
				Component: "Scenario Runner",
				Details: map[string]interface{}{
					"workflow": workflow,
					"missing":  missing,
				},
				Suggestions: []string{
					"Check that the base URL points at the demo application",
					"Increase browser.timeout if the site is slow",
				},
			},
			ExitCode: ExitPageNotReady,
		},
		Workflow: workflow,
		Missing:  missing,
	}
}

// AssertionMismatch describes an actual value that differs from the expected
// one. The engine records it as a failed result and never returns it.
type AssertionMismatch struct {
	*FormCheckError
	Expected string
	Actual   string
}

// NewAssertionMismatch creates a new assertion mismatch
func NewAssertionMismatch(what, expected, actual string) *AssertionMismatch {
	return &AssertionMismatch{
		FormCheckError: &FormCheckError{
			Message:  fmt.Sprintf("%s: expected %q, got %q", what, expected, actual),
			ExitCode: ExitSuiteFailed,
		},
		Expected: expected,
		Actual:   actual,
	}
}

// TimeoutError is raised when a driver wait exceeds its budget
type TimeoutError struct {
	*FormCheckError
	Operation string
	Selector  string
	Budget    time.Duration
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation, selector string, budget time.Duration, cause error) *TimeoutError {
	msg := fmt.Sprintf("%s timed out", operation)
	if selector != "" {
		msg = fmt.Sprintf("%s on %q timed out", operation, selector)
	}
	if budget > 0 {
		msg = fmt.Sprintf("%s after %s", msg, budget)
	}
	return &TimeoutError{
		FormCheckError: &FormCheckError{
			Message:  msg,
			Cause:    cause,
			ExitCode: ExitDriverError,
		},
		Operation: operation,
		Selector:  selector,
		Budget:    budget,
	}
}

// UnknownFieldError is raised when a caller references a field id the form
// model does not declare
type UnknownFieldError struct {
	*FormCheckError
	Model   string
	FieldID string
}

// NewUnknownFieldError creates a new unknown field error
func NewUnknownFieldError(model, fieldID string) *UnknownFieldError {
	return &UnknownFieldError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("form %q has no field %q", model, fieldID),
			Context: &ErrorContext{
				Operation: "Looking up field",
				Component: model,
				Details: map[string]interface{}{
					"field_id": fieldID,
				},
				Suggestions: []string{
					"Run 'formcheck list' to see the fields each workflow declares",
				},
			},
			ExitCode: ExitConfigError,
		},
		Model:   model,
		FieldID: fieldID,
	}
}

// FixtureError is raised when test data cannot be loaded or decoded
type FixtureError struct {
	*FormCheckError
}

// NewFixtureError creates a new fixture error
func NewFixtureError(name string, cause error) *FixtureError {
	return &FixtureError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("failed to load fixture %q", name),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Loading fixtures",
				Component: "Fixtures",
				Details: map[string]interface{}{
					"fixture": name,
				},
				Suggestions: []string{
					"Check run.fixtures_dir and the JSON/YAML syntax of the file",
				},
			},
			ExitCode: ExitIOError,
		},
	}
}

// SuiteFailedError is returned by the run command when at least one result
// failed or a workflow was aborted
type SuiteFailedError struct {
	*FormCheckError
	Failed  int
	Aborted int
}

// NewSuiteFailedError creates a new suite failure error
func NewSuiteFailedError(failed, aborted, total int) *SuiteFailedError {
	return &SuiteFailedError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("suite failed: %d of %d results failed, %d workflows aborted", failed, total, aborted),
			Context: &ErrorContext{
				Operation: "Running suite",
				Component: "Scenario Runner",
				Details: map[string]interface{}{
					"failed":  failed,
					"aborted": aborted,
					"total":   total,
				},
				Suggestions: []string{
					"Re-run with --screenshots to capture the failing pages",
				},
			},
			ExitCode: ExitSuiteFailed,
		},
		Failed:  failed,
		Aborted: aborted,
	}
}
