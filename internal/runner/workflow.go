// Package runner sequences validation scenarios per workflow and aggregates
// them into a suite report.
package runner

import (
	"sort"

	"github.com/user/formcheck/internal/engine"
	"github.com/user/formcheck/internal/form"
)

// State is a workflow's position in its lifecycle
type State int

const (
	StateStart State = iota
	StateAuthenticated
	StatePageLoaded
	StateFieldValidation
	StateSubmission
	StateOutcome
	StateEnd
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateAuthenticated:
		return "Authenticated"
	case StatePageLoaded:
		return "PageLoaded"
	case StateFieldValidation:
		return "FieldValidation"
	case StateSubmission:
		return "Submission"
	case StateOutcome:
		return "Outcome"
	case StateEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// MarshalText renders the state name in reports
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SubmissionMode picks the single submission a workflow performs
type SubmissionMode int

const (
	SubmitNone SubmissionMode = iota
	SubmitValid
	SubmitInvalid
)

func (m SubmissionMode) String() string {
	switch m {
	case SubmitValid:
		return "valid"
	case SubmitInvalid:
		return "invalid"
	default:
		return "none"
	}
}

// Step is one field-validation scenario. Kind selects which of the other
// fields apply: Rule for InvalidPrefix, Input for LengthOverflow and
// ValidValue, Values for ResetForm.
type Step struct {
	Kind    engine.ScenarioKind
	FieldID string
	Input   string
	Rule    *form.Rule
	Values  map[string]string
}

// Plan is the ordered scenario list of a workflow plus its submission
type Plan struct {
	Steps          []Step
	Submission     SubmissionMode
	Values         map[string]string
	AlertSubstring string
	VerifyReceipt  bool
}

// Workflow is one end-to-end scenario against a page. Precondition runs
// first on the same session, e.g. a sign-in before add-customer.
type Workflow struct {
	Name            string
	Description     string
	EntryURL        string
	Model           *form.FormModel
	Precondition    *Workflow
	NavigateLocator string
	Plan            Plan
}

// DerivePlan expands a model into field-validation steps in field order:
// EmptyValue for required fields, InvalidPrefix per non-blank rule and
// LengthOverflow when overflows carries an input for the field.
func DerivePlan(model *form.FormModel, overflows map[string]string) []Step {
	var steps []Step
	for _, f := range model.OrderedFields() {
		if _, ok := f.BlankRule(); ok && f.Required {
			steps = append(steps, Step{Kind: engine.EmptyValue, FieldID: f.ID})
		}
		for _, r := range f.InvalidRules() {
			rule := r
			steps = append(steps, Step{Kind: engine.InvalidPrefix, FieldID: f.ID, Input: r.InvalidInput, Rule: &rule})
		}
		if in, ok := overflows[f.ID]; ok {
			steps = append(steps, Step{Kind: engine.LengthOverflow, FieldID: f.ID, Input: in})
		}
	}
	return steps
}

// Describe lists a plan's steps as "field/Scenario" names, for listings
func (p Plan) Describe() []string {
	out := make([]string, 0, len(p.Steps)+1)
	for _, s := range p.Steps {
		name := s.FieldID + "/" + string(s.Kind)
		if s.FieldID == "" {
			name = string(s.Kind)
		}
		out = append(out, name)
	}
	switch p.Submission {
	case SubmitValid:
		out = append(out, string(engine.ValidSubmission))
		if p.VerifyReceipt {
			out = append(out, string(engine.Confirmation))
		}
	case SubmitInvalid:
		out = append(out, string(engine.InvalidSubmission))
	}
	return out
}

// FieldIDs returns every field id the plan references, sorted
func (p Plan) FieldIDs() []string {
	seen := make(map[string]struct{})
	for _, s := range p.Steps {
		if s.FieldID != "" {
			seen[s.FieldID] = struct{}{}
		}
		for id := range s.Values {
			seen[id] = struct{}{}
		}
	}
	for id := range p.Values {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
