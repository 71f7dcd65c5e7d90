package form

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/user/formcheck/internal/errors"
)

// SuccessIndicator says how to detect a successful submission. Every
// configured condition must hold. ExpectedText may embed {fieldID}
// placeholders that expand to submitted values.
type SuccessIndicator struct {
	Locator             string
	ExpectedText        string
	ExpectedURLFragment string
}

// IsZero reports whether no condition is configured
func (s SuccessIndicator) IsZero() bool {
	return s.Locator == "" && s.ExpectedText == "" && s.ExpectedURLFragment == ""
}

// FailureIndicator says how to detect the blocking alert on an incomplete submit
type FailureIndicator struct {
	ExpectedAlertSubstring string
}

// ReceiptEntry is one confirmation-page check after a valid submission.
// With FieldID the element text must equal the submitted value, with
// ExpectedText it must equal the literal, with neither it must be visible.
type ReceiptEntry struct {
	Label        string
	Locator      string
	FieldID      string
	ExpectedText string
}

// ModelSpec is the input to New
type ModelSpec struct {
	Name               string
	PageHeading        string
	HeadingLocator     string
	SubmitLocator      string
	ResetLocator       string
	Fields             []FieldDescriptor
	Success            SuccessIndicator
	Failure            FailureIndicator
	Receipt            []ReceiptEntry
	ResetBeforeInvalid bool
}

// FormModel is an immutable page form description
type FormModel struct {
	spec  ModelSpec
	index map[string]int
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_.-]+)\}`)

// New validates spec and freezes it into a FormModel
func New(spec ModelSpec) (*FormModel, error) {
	if spec.Name == "" {
		return nil, errors.NewConfigError("form model needs a name")
	}
	if spec.SubmitLocator == "" {
		return nil, errors.NewConfigError(fmt.Sprintf("form %q has no submit locator", spec.Name))
	}

	m := &FormModel{
		spec:  spec,
		index: make(map[string]int, len(spec.Fields)),
	}
	m.spec.Fields = make([]FieldDescriptor, 0, len(spec.Fields))
	m.spec.Receipt = append([]ReceiptEntry(nil), spec.Receipt...)

	for _, f := range spec.Fields {
		if err := checkField(spec.Name, f); err != nil {
			return nil, err
		}
		if _, dup := m.index[f.ID]; dup {
			return nil, errors.NewDuplicateFieldError(spec.Name, f.ID)
		}
		m.index[f.ID] = len(m.spec.Fields)
		m.spec.Fields = append(m.spec.Fields, f.clone())
	}

	for _, id := range Placeholders(spec.Success.ExpectedText) {
		if _, ok := m.index[id]; !ok {
			return nil, errors.NewConfigError(fmt.Sprintf("form %q success text references unknown field %q", spec.Name, id))
		}
	}
	for _, r := range spec.Receipt {
		if r.Locator == "" {
			return nil, errors.NewConfigError(fmt.Sprintf("form %q receipt entry %q has no locator", spec.Name, r.Label))
		}
		if r.FieldID == "" {
			continue
		}
		if _, ok := m.index[r.FieldID]; !ok {
			return nil, errors.NewConfigError(fmt.Sprintf("form %q receipt entry %q references unknown field %q", spec.Name, r.Label, r.FieldID))
		}
	}

	return m, nil
}

func checkField(model string, f FieldDescriptor) error {
	switch {
	case f.ID == "":
		return errors.NewConfigError(fmt.Sprintf("form %q has a field without an id", model))
	case f.Kind != KindChoice && f.Locator == "":
		return errors.NewConfigError(fmt.Sprintf("field %q has no locator", f.ID))
	case f.Kind == KindChoice && len(f.Choices) == 0:
		return errors.NewConfigError(fmt.Sprintf("choice field %q declares no choices", f.ID))
	case f.MaxLength < 0:
		return errors.NewConfigError(fmt.Sprintf("field %q has a negative max length", f.ID))
	}

	blanks := 0
	for _, r := range f.Rules {
		if r.IsBlank() {
			blanks++
		}
	}
	if blanks > 1 {
		return errors.NewConfigError(fmt.Sprintf("field %q declares %d blank-message rules", f.ID, blanks))
	}
	if len(f.Rules) > 0 && f.ErrorLocator == "" {
		return errors.NewConfigError(fmt.Sprintf("field %q has rules but no error locator", f.ID))
	}

	for _, c := range f.Choices {
		if c.Locator == "" {
			return errors.NewConfigError(fmt.Sprintf("choice %q of field %q has no locator", c.Value, f.ID))
		}
	}
	return nil
}

// Name returns the model name
func (m *FormModel) Name() string { return m.spec.Name }

// PageHeading returns the expected heading text
func (m *FormModel) PageHeading() string { return m.spec.PageHeading }

// HeadingLocator returns the selector of the heading element
func (m *FormModel) HeadingLocator() string { return m.spec.HeadingLocator }

// SubmitLocator returns the submit control selector
func (m *FormModel) SubmitLocator() string { return m.spec.SubmitLocator }

// ResetLocator returns the reset control selector, possibly empty
func (m *FormModel) ResetLocator() string { return m.spec.ResetLocator }

// Success returns the success indicator
func (m *FormModel) Success() SuccessIndicator { return m.spec.Success }

// Failure returns the failure indicator
func (m *FormModel) Failure() FailureIndicator { return m.spec.Failure }

// ResetBeforeInvalid reports whether every invalid-input check resets first
func (m *FormModel) ResetBeforeInvalid() bool { return m.spec.ResetBeforeInvalid }

// Receipt returns a copy of the confirmation-page checks
func (m *FormModel) Receipt() []ReceiptEntry {
	return append([]ReceiptEntry(nil), m.spec.Receipt...)
}

// DescribeField returns the descriptor with the given id
func (m *FormModel) DescribeField(id string) (FieldDescriptor, error) {
	i, ok := m.index[id]
	if !ok {
		return FieldDescriptor{}, errors.NewUnknownFieldError(m.spec.Name, id)
	}
	return m.spec.Fields[i].clone(), nil
}

// OrderedFields returns the fields in declared order. Each call returns a
// fresh copy.
func (m *FormModel) OrderedFields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(m.spec.Fields))
	for i, f := range m.spec.Fields {
		out[i] = f.clone()
	}
	return out
}

// Len returns the number of fields
func (m *FormModel) Len() int { return len(m.spec.Fields) }

// ExpandText replaces {fieldID} placeholders in tmpl with values.
// Unknown placeholders are left as-is.
func ExpandText(tmpl string, values map[string]string) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		id := match[1 : len(match)-1]
		if v, ok := values[id]; ok {
			return v
		}
		return match
	})
}

// Placeholders lists the field ids referenced by tmpl in order of appearance
func Placeholders(tmpl string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(tmpl, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
