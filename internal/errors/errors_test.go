package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestExitCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"nil", nil, ExitSuccess},
		{"plain", stderrors.New("boom"), ExitGeneralError},
		{"config", NewConfigError("bad"), ExitConfigError},
		{"unknown field", NewUnknownFieldError("signin", "nope"), ExitConfigError},
		{"page not ready", NewPageNotReadyError("signin", "heading", nil), ExitPageNotReady},
		{"timeout", NewTimeoutError("wait", "#x", time.Second, nil), ExitDriverError},
		{"driver", NewDriverError("click", stderrors.New("closed")), ExitDriverError},
		{"script", NewPageScriptError("http://x", stderrors.New("ReferenceError")), ExitDriverError},
		{"fixture", NewFixtureError("login", nil), ExitIOError},
		{"suite", NewSuiteFailedError(1, 0, 3), ExitSuiteFailed},
		{"wrapped", fmt.Errorf("outer: %w", NewConfigFileError("c.yaml", nil)), ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeOf(tt.err); got != tt.want {
				t.Errorf("Expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}

func TestTypedErrorsMatchWithAs(t *testing.T) {
	err := fmt.Errorf("running step: %w", NewTimeoutError("wait visible", "#message", 2*time.Second, nil))

	var timeout *TimeoutError
	if !stderrors.As(err, &timeout) {
		t.Fatal("Expected errors.As to find *TimeoutError")
	}
	if timeout.Selector != "#message" {
		t.Errorf("Expected selector #message, got %q", timeout.Selector)
	}
	if !strings.Contains(err.Error(), "timed out after 2s") {
		t.Errorf("Expected budget in message, got %q", err.Error())
	}
}

func TestUserMessageIncludesContext(t *testing.T) {
	err := NewMissingMaxLengthError("gender")
	msg := UserMessage(fmt.Errorf("wrap: %w", err))

	for _, want := range []string{"ERROR:", "gender", "What you can do:", "Recoverable: Yes"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected user message to contain %q, got:\n%s", want, msg)
		}
	}

	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("Expected plain message, got %q", got)
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewFixtureError("customer", cause)
	if !stderrors.Is(err, cause) {
		t.Error("Expected fixture error to unwrap to its cause")
	}
}
