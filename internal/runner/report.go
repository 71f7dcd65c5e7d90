package runner

import (
	"time"

	"github.com/user/formcheck/internal/engine"
	"github.com/user/formcheck/internal/errors"
)

// WorkflowReport is the outcome of one workflow attempt
type WorkflowReport struct {
	Workflow    string                    `json:"workflow"`
	Description string                    `json:"description,omitempty"`
	State       State                     `json:"state"`
	Aborted     bool                      `json:"aborted"`
	AbortReason string                    `json:"abort_reason,omitempty"`
	Attempt     int                       `json:"attempt"`
	Results     []engine.ValidationResult `json:"results"`
	Values      map[string]string         `json:"values,omitempty"`
	Screenshot  string                    `json:"screenshot,omitempty"`
	StartedAt   time.Time                 `json:"started_at"`
	FinishedAt  time.Time                 `json:"finished_at"`
}

// Passed reports whether the workflow ran to the end with no failed result
func (w *WorkflowReport) Passed() bool {
	if w.Aborted {
		return false
	}
	for _, r := range w.Results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Counts returns the number of passed and failed results
func (w *WorkflowReport) Counts() (passed, failed int) {
	for _, r := range w.Results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Duration is the wall time of the attempt
func (w *WorkflowReport) Duration() time.Duration {
	if w.FinishedAt.IsZero() {
		return 0
	}
	return w.FinishedAt.Sub(w.StartedAt)
}

// Counts summarises a suite
type Counts struct {
	Workflows int `json:"workflows"`
	Aborted   int `json:"aborted"`
	Results   int `json:"results"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	TimedOut  int `json:"timed_out"`
}

// SuiteReport aggregates every workflow of a run
type SuiteReport struct {
	RunID      string            `json:"run_id"`
	BaseURL    string            `json:"base_url,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Workflows  []*WorkflowReport `json:"workflows"`
}

// Results returns every result of every workflow in run order
func (s *SuiteReport) Results() []engine.ValidationResult {
	var out []engine.ValidationResult
	for _, w := range s.Workflows {
		out = append(out, w.Results...)
	}
	return out
}

// Counts tallies workflows and results
func (s *SuiteReport) Counts() Counts {
	c := Counts{Workflows: len(s.Workflows)}
	for _, w := range s.Workflows {
		if w.Aborted {
			c.Aborted++
		}
		for _, r := range w.Results {
			c.Results++
			if r.Passed {
				c.Passed++
			} else {
				c.Failed++
			}
			if r.TimedOut {
				c.TimedOut++
			}
		}
	}
	return c
}

// Green reports whether every result passed and no workflow aborted
func (s *SuiteReport) Green() bool {
	for _, w := range s.Workflows {
		if !w.Passed() {
			return false
		}
	}
	return true
}

// Err returns a SuiteFailedError unless the suite is green
func (s *SuiteReport) Err() error {
	if s.Green() {
		return nil
	}
	c := s.Counts()
	return errors.NewSuiteFailedError(c.Failed, c.Aborted, c.Results)
}

// ExitCode is the process exit code for this report
func (s *SuiteReport) ExitCode() errors.ExitCode {
	if s.Green() {
		return errors.ExitSuccess
	}
	return errors.ExitSuiteFailed
}

// Duration is the wall time of the run
func (s *SuiteReport) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
