package form

// Rule is one negative-input check: typing InvalidInput must show
// ExpectedMessage. A rule with an empty InvalidInput is the field's
// blank-message rule.
type Rule struct {
	InvalidInput    string `json:"invalid_input"`
	ExpectedMessage string `json:"expected_message"`
}

// IsBlank reports whether r is the blank-message rule
func (r Rule) IsBlank() bool {
	return r.InvalidInput == ""
}

// ValueSource produces an always-valid value for a field
type ValueSource interface {
	Value() string
}

// Literal is a fixed value
type Literal string

// Value returns the literal itself
func (l Literal) Value() string { return string(l) }

// GeneratorFunc adapts a function into a ValueSource
type GeneratorFunc func() string

// Value calls f
func (f GeneratorFunc) Value() string { return f() }

// FieldKind selects how a value is entered into a field
type FieldKind int

const (
	// KindText fields are typed key by key so per-keystroke validation fires
	KindText FieldKind = iota
	// KindDate fields take a whole YYYY-MM-DD value
	KindDate
	// KindChoice fields are radio groups selected by clicking a choice
	KindChoice
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// Choice is one option of a radio group
type Choice struct {
	Value   string
	Locator string
	Label   string // Text the confirmation page shows, e.g. "male"
}

// FieldDescriptor declares one form input: where it is, what it accepts and
// which messages it shows for bad input.
type FieldDescriptor struct {
	ID           string
	Label        string
	Kind         FieldKind
	Locator      string
	ErrorLocator string
	MaxLength    int // UTF-16 code units, as the browser counts; 0 means unbounded
	Required     bool
	Rules        []Rule
	ValidSample  ValueSource
	Choices      []Choice

	// ResetBeforeInvalid resets the whole form before each invalid-input
	// check on this field.
	ResetBeforeInvalid bool
	// ValidateOnSubmit marks fields whose message only shows after submit.
	ValidateOnSubmit bool
}

// BlankRule returns the rule with an empty invalid input, if any
func (f FieldDescriptor) BlankRule() (Rule, bool) {
	for _, r := range f.Rules {
		if r.IsBlank() {
			return r, true
		}
	}
	return Rule{}, false
}

// InvalidRules returns the non-blank rules in declared order
func (f FieldDescriptor) InvalidRules() []Rule {
	out := make([]Rule, 0, len(f.Rules))
	for _, r := range f.Rules {
		if !r.IsBlank() {
			out = append(out, r)
		}
	}
	return out
}

// ChoiceFor finds the choice whose value matches
func (f FieldDescriptor) ChoiceFor(value string) (Choice, bool) {
	for _, c := range f.Choices {
		if c.Value == value {
			return c, true
		}
	}
	return Choice{}, false
}

// DisplayName returns the label, falling back to the id
func (f FieldDescriptor) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}

func (f FieldDescriptor) clone() FieldDescriptor {
	out := f
	out.Rules = append([]Rule(nil), f.Rules...)
	out.Choices = append([]Choice(nil), f.Choices...)
	return out
}
