package engine

import (
	"fmt"
	"time"
)

// ScenarioKind names one class of validation check
type ScenarioKind string

const (
	EmptyValue        ScenarioKind = "EmptyValue"
	InvalidPrefix     ScenarioKind = "InvalidPrefix"
	LengthOverflow    ScenarioKind = "LengthOverflow"
	ValidSubmission   ScenarioKind = "ValidSubmission"
	InvalidSubmission ScenarioKind = "InvalidSubmission"
	ValidValue        ScenarioKind = "ValidValue"
	ResetForm         ScenarioKind = "ResetForm"
	Confirmation      ScenarioKind = "Confirmation"
)

// ValidationResult is the outcome of one executed scenario
type ValidationResult struct {
	Workflow        string        `json:"workflow"`
	FieldID         string        `json:"field_id,omitempty"`
	Scenario        ScenarioKind  `json:"scenario"`
	Input           string        `json:"input,omitempty"`
	Passed          bool          `json:"passed"`
	ActualMessage   string        `json:"actual_message,omitempty"`
	ExpectedMessage string        `json:"expected_message,omitempty"`
	Diagnostic      string        `json:"diagnostic,omitempty"`
	TimedOut        bool          `json:"timed_out,omitempty"`
	Duration        time.Duration `json:"duration_ns"`
}

// Name identifies the result in reports, e.g. "pin/InvalidPrefix"
func (r ValidationResult) Name() string {
	if r.FieldID == "" {
		return string(r.Scenario)
	}
	return fmt.Sprintf("%s/%s", r.FieldID, r.Scenario)
}

// Submission is the outcome of a valid submission: one result per entered
// field plus the success check, and every value that was submitted.
type Submission struct {
	Results []ValidationResult
	Values  map[string]string
}

// Passed reports whether every result passed
func (s Submission) Passed() bool {
	for _, r := range s.Results {
		if !r.Passed {
			return false
		}
	}
	return len(s.Results) > 0
}
