// Package engine runs declarative form-validation scenarios against a
// browser driver.
package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/user/formcheck/internal/driver"
	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/form"
	"github.com/user/formcheck/internal/logging"
)

const (
	DefaultWaitBudget   = 10 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Engine executes one scenario per call and never retries
type Engine struct {
	driver       driver.Driver
	logger       *logging.Logger
	workflow     string
	waitBudget   time.Duration
	pollInterval time.Duration
}

// Option configures an Engine
type Option func(*Engine)

// WithWaitBudget bounds every wait for messages, alerts and success
func WithWaitBudget(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.waitBudget = d
		}
	}
}

// WithPollInterval sets how often the URL is re-read while waiting
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithWorkflow tags every result with the workflow name
func WithWorkflow(name string) Option {
	return func(e *Engine) { e.workflow = name }
}

// New creates an engine bound to one driver session
func New(d driver.Driver, logger *logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	e := &Engine{
		driver:       d,
		logger:       logger,
		waitBudget:   DefaultWaitBudget,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WaitBudget returns the configured wait budget
func (e *Engine) WaitBudget() time.Duration { return e.waitBudget }

func (e *Engine) start(fieldID string, kind ScenarioKind) (*ValidationResult, time.Time) {
	return &ValidationResult{Workflow: e.workflow, FieldID: fieldID, Scenario: kind}, time.Now()
}

func (e *Engine) finish(res *ValidationResult, started time.Time) ValidationResult {
	res.Duration = time.Since(started)
	fields := []logging.Field{
		logging.String("workflow", res.Workflow),
		logging.String("scenario", res.Name()),
		logging.Bool("passed", res.Passed),
		logging.Duration("duration", res.Duration),
	}
	if res.Passed {
		e.logger.Debug("Scenario finished", fields...)
	} else {
		e.logger.Info("Scenario failed", append(fields, logging.String("diagnostic", res.Diagnostic))...)
	}
	return *res
}

// absorb turns a driver timeout into a failed result. Other errors are
// returned to the caller.
func absorb(res *ValidationResult, err error) error {
	var timeout *errors.TimeoutError
	if stderrors.As(err, &timeout) {
		res.Passed = false
		res.TimedOut = true
		res.Diagnostic = "timeout: " + timeout.Error()
		return nil
	}
	return err
}

func mismatch(what, expected, actual string) string {
	return errors.NewAssertionMismatch(what, expected, actual).Error()
}

func visibility(v bool) string {
	if v {
		return "visible"
	}
	return "hidden"
}

// readError returns the text and visibility of the field's error element
func (e *Engine) readError(ctx context.Context, field form.FieldDescriptor) (string, bool, error) {
	el, err := e.driver.Locate(ctx, field.ErrorLocator)
	if err != nil {
		return "", false, err
	}
	visible, err := e.driver.WaitVisible(ctx, el, e.waitBudget)
	if err != nil {
		return "", false, err
	}
	text, err := e.driver.ReadText(ctx, el)
	if err != nil {
		return "", visible, err
	}
	return text, visible, nil
}

func (e *Engine) click(ctx context.Context, selector string) error {
	el, err := e.driver.Locate(ctx, selector)
	if err != nil {
		return err
	}
	return e.driver.Click(ctx, el)
}

func (e *Engine) submit(ctx context.Context, model *form.FormModel) error {
	return e.click(ctx, model.SubmitLocator())
}

// Reset clicks the model's reset control. Models without one are left as-is.
func (e *Engine) Reset(ctx context.Context, model *form.FormModel) error {
	return e.reset(ctx, model)
}

func (e *Engine) reset(ctx context.Context, model *form.FormModel) error {
	if model.ResetLocator() == "" {
		return nil
	}
	return e.click(ctx, model.ResetLocator())
}

// enter puts value into field the way its kind requires and returns what
// the field reads back
func (e *Engine) enter(ctx context.Context, field form.FieldDescriptor, value string) (string, error) {
	if field.Kind == form.KindChoice {
		choice, ok := field.ChoiceFor(value)
		if !ok {
			return "", errors.NewConfigError(fmt.Sprintf("field %q has no choice %q", field.ID, value))
		}
		if err := e.click(ctx, choice.Locator); err != nil {
			return "", err
		}
		el, err := e.driver.Locate(ctx, choice.Locator)
		if err != nil {
			return "", err
		}
		checked, err := e.driver.Checked(ctx, el)
		if err != nil || !checked {
			return "", err
		}
		return value, nil
	}

	el, err := e.driver.Locate(ctx, field.Locator)
	if err != nil {
		return "", err
	}
	if field.Kind == form.KindDate {
		if err := e.driver.Fill(ctx, el, value); err != nil {
			return "", err
		}
	} else {
		if err := e.driver.Clear(ctx, el); err != nil {
			return "", err
		}
		if err := e.driver.Type(ctx, el, value); err != nil {
			return "", err
		}
	}
	return e.driver.ReadValue(ctx, el)
}

// RunEmptyValue empties a required field and expects its blank message
func (e *Engine) RunEmptyValue(ctx context.Context, model *form.FormModel, field form.FieldDescriptor) (ValidationResult, error) {
	res, started := e.start(field.ID, EmptyValue)

	if !field.Required {
		res.Passed = true
		res.Diagnostic = "field is optional"
		return e.finish(res, started), nil
	}
	blank, ok := field.BlankRule()
	if !ok {
		return ValidationResult{}, errors.NewConfigError(fmt.Sprintf("required field %q declares no blank-message rule", field.ID))
	}
	if field.Kind == form.KindChoice {
		return ValidationResult{}, errors.NewConfigError(fmt.Sprintf("choice field %q cannot be emptied", field.ID))
	}
	res.ExpectedMessage = blank.ExpectedMessage

	run := func() error {
		el, err := e.driver.Locate(ctx, field.Locator)
		if err != nil {
			return err
		}
		if err := e.driver.Clear(ctx, el); err != nil {
			return err
		}
		// Clearing alone fires no keyup; backspace on the empty field does
		if err := e.driver.Press(ctx, el, "Backspace"); err != nil {
			return err
		}
		if field.ValidateOnSubmit {
			if err := e.submit(ctx, model); err != nil {
				return err
			}
		}

		text, visible, err := e.readError(ctx, field)
		if err != nil {
			return err
		}
		value, err := e.driver.ReadValue(ctx, el)
		if err != nil {
			return err
		}

		res.ActualMessage = text
		var problems []string
		if text != blank.ExpectedMessage {
			problems = append(problems, mismatch("message", blank.ExpectedMessage, text))
		}
		if !visible {
			problems = append(problems, mismatch("message element", "visible", visibility(visible)))
		}
		if value != "" {
			problems = append(problems, mismatch("field value", "", value))
		}
		res.Passed = len(problems) == 0
		res.Diagnostic = strings.Join(problems, "; ")
		return nil
	}

	if err := absorb(res, run()); err != nil {
		return ValidationResult{}, err
	}
	return e.finish(res, started), nil
}

// RunInvalidInput types rule.InvalidInput and expects rule.ExpectedMessage
// exactly. A blank rule runs the empty-value scenario instead.
func (e *Engine) RunInvalidInput(ctx context.Context, model *form.FormModel, field form.FieldDescriptor, rule form.Rule) (ValidationResult, error) {
	if rule.IsBlank() {
		return e.RunEmptyValue(ctx, model, field)
	}
	if field.ErrorLocator == "" {
		return ValidationResult{}, errors.NewConfigError(fmt.Sprintf("field %q has no error locator", field.ID))
	}

	res, started := e.start(field.ID, InvalidPrefix)
	res.Input = rule.InvalidInput
	res.ExpectedMessage = rule.ExpectedMessage

	run := func() error {
		if model.ResetBeforeInvalid() || field.ResetBeforeInvalid {
			if err := e.reset(ctx, model); err != nil {
				return err
			}
		}

		el, err := e.driver.Locate(ctx, field.Locator)
		if err != nil {
			return err
		}
		if err := e.driver.Clear(ctx, el); err != nil {
			return err
		}
		if err := e.driver.Type(ctx, el, rule.InvalidInput); err != nil {
			return err
		}
		if field.ValidateOnSubmit {
			if err := e.submit(ctx, model); err != nil {
				return err
			}
		}

		text, visible, err := e.readError(ctx, field)
		if err != nil {
			return err
		}

		res.ActualMessage = text
		var problems []string
		if text != rule.ExpectedMessage {
			problems = append(problems, mismatch("message", rule.ExpectedMessage, text))
		}
		if !visible {
			problems = append(problems, mismatch("message element", "visible", visibility(visible)))
		}
		res.Passed = len(problems) == 0
		res.Diagnostic = strings.Join(problems, "; ")
		return nil
	}

	if err := absorb(res, run()); err != nil {
		return ValidationResult{}, err
	}
	return e.finish(res, started), nil
}

// RunLengthOverflow types an over-long input and expects the widget to
// silently truncate it to MaxLength.
func (e *Engine) RunLengthOverflow(ctx context.Context, field form.FieldDescriptor, overflow string) (ValidationResult, error) {
	if field.MaxLength == 0 {
		return ValidationResult{}, errors.NewMissingMaxLengthError(field.ID)
	}
	inputLen := form.InputLength(overflow)
	if inputLen <= field.MaxLength {
		return ValidationResult{}, errors.NewOverflowTooShortError(field.ID, field.MaxLength, inputLen)
	}

	res, started := e.start(field.ID, LengthOverflow)
	res.Input = overflow
	res.ExpectedMessage = form.TruncateInput(overflow, field.MaxLength)

	run := func() error {
		el, err := e.driver.Locate(ctx, field.Locator)
		if err != nil {
			return err
		}
		if err := e.driver.Clear(ctx, el); err != nil {
			return err
		}
		if err := e.driver.Type(ctx, el, overflow); err != nil {
			return err
		}
		value, err := e.driver.ReadValue(ctx, el)
		if err != nil {
			return err
		}

		res.ActualMessage = value
		var problems []string
		if want, n := form.InputLength(res.ExpectedMessage), form.InputLength(value); n != want {
			problems = append(problems, mismatch("rendered length", fmt.Sprint(want), fmt.Sprint(n)))
		}
		if value == overflow {
			problems = append(problems, "rendered value equals the overflow input")
		}
		if !strings.HasPrefix(overflow, value) {
			problems = append(problems, mismatch("rendered value prefix", res.ExpectedMessage, value))
		}
		res.Passed = len(problems) == 0
		res.Diagnostic = strings.Join(problems, "; ")
		return nil
	}

	if err := absorb(res, run()); err != nil {
		return ValidationResult{}, err
	}
	return e.finish(res, started), nil
}

// RunValidValue enters a valid value and expects no error message
func (e *Engine) RunValidValue(ctx context.Context, field form.FieldDescriptor, value string) (ValidationResult, error) {
	res, started := e.start(field.ID, ValidValue)
	res.Input = value
	res.ExpectedMessage = value

	run := func() error {
		echo, err := e.enter(ctx, field, value)
		if err != nil {
			return err
		}
		res.ActualMessage = echo

		var problems []string
		if echo != value {
			problems = append(problems, mismatch("field value", value, echo))
		}
		if field.ErrorLocator != "" {
			el, err := e.driver.Locate(ctx, field.ErrorLocator)
			if err != nil {
				return err
			}
			visible, err := e.driver.WaitVisible(ctx, el, 0)
			if err != nil {
				return err
			}
			if visible {
				shown := "visible"
				if text, err := e.driver.ReadText(ctx, el); err != nil {
					shown += " (text unreadable: " + err.Error() + ")"
				} else {
					shown += ": " + text
				}
				problems = append(problems, mismatch("message element", "hidden", shown))
			}
		}
		res.Passed = len(problems) == 0
		res.Diagnostic = strings.Join(problems, "; ")
		return nil
	}

	if err := absorb(res, run()); err != nil {
		return ValidationResult{}, err
	}
	return e.finish(res, started), nil
}

// RunResetForm enters values, clicks reset and expects every text and date
// field to read back empty
func (e *Engine) RunResetForm(ctx context.Context, model *form.FormModel, values map[string]string) (ValidationResult, error) {
	if model.ResetLocator() == "" {
		return ValidationResult{}, errors.NewConfigError(fmt.Sprintf("form %q has no reset control", model.Name()))
	}
	for id := range values {
		if _, err := model.DescribeField(id); err != nil {
			return ValidationResult{}, err
		}
	}

	res, started := e.start("", ResetForm)

	run := func() error {
		fields := model.OrderedFields()
		for _, f := range fields {
			v, ok := values[f.ID]
			if !ok || f.Kind == form.KindChoice {
				continue
			}
			if _, err := e.enter(ctx, f, v); err != nil {
				return err
			}
		}
		if err := e.reset(ctx, model); err != nil {
			return err
		}

		var problems []string
		for _, f := range fields {
			if f.Kind == form.KindChoice {
				continue
			}
			el, err := e.driver.Locate(ctx, f.Locator)
			if err != nil {
				return err
			}
			v, err := e.driver.ReadValue(ctx, el)
			if err != nil {
				return err
			}
			if v != "" {
				problems = append(problems, mismatch(f.ID+" value", "", v))
			}
		}
		res.Passed = len(problems) == 0
		res.Diagnostic = strings.Join(problems, "; ")
		return nil
	}

	if err := absorb(res, run()); err != nil {
		return ValidationResult{}, err
	}
	return e.finish(res, started), nil
}

// RunValidSubmission fills every field with a provided or sampled value,
// checks each echo, submits and waits for the success indicator.
func (e *Engine) RunValidSubmission(ctx context.Context, model *form.FormModel, values map[string]string) (Submission, error) {
	for id := range values {
		if _, err := model.DescribeField(id); err != nil {
			return Submission{}, err
		}
	}

	sub := Submission{Values: make(map[string]string)}

	for _, f := range model.OrderedFields() {
		v, ok := values[f.ID]
		if !ok {
			if f.ValidSample == nil {
				if f.Required {
					return Submission{}, errors.NewConfigError(fmt.Sprintf("required field %q has no value and no valid sample", f.ID))
				}
				continue
			}
			v = f.ValidSample.Value()
		}
		sub.Values[f.ID] = v

		res, started := e.start(f.ID, ValidSubmission)
		res.Input = v
		res.ExpectedMessage = v
		err := func() error {
			echo, err := e.enter(ctx, f, v)
			if err != nil {
				return err
			}
			res.ActualMessage = echo
			res.Passed = echo == v
			if !res.Passed {
				res.Diagnostic = mismatch("field value", v, echo)
			}
			return nil
		}()
		if err := absorb(res, err); err != nil {
			return Submission{}, err
		}
		sub.Results = append(sub.Results, e.finish(res, started))
	}

	res, started := e.start("", ValidSubmission)
	err := func() error {
		if err := e.submit(ctx, model); err != nil {
			return err
		}
		return e.waitSuccess(ctx, model, sub.Values, res)
	}()
	if err := absorb(res, err); err != nil {
		return Submission{}, err
	}
	sub.Results = append(sub.Results, e.finish(res, started))

	return sub, nil
}

// waitSuccess checks every configured success condition within the budget
func (e *Engine) waitSuccess(ctx context.Context, model *form.FormModel, values map[string]string, res *ValidationResult) error {
	success := model.Success()
	if success.IsZero() {
		return errors.NewConfigError(fmt.Sprintf("form %q has no success indicator", model.Name()))
	}

	var problems, expected []string

	if frag := success.ExpectedURLFragment; frag != "" {
		expected = append(expected, "url contains "+frag)
		url, ok, err := e.waitURL(ctx, frag)
		if err != nil {
			return err
		}
		if !ok {
			problems = append(problems, mismatch("url", "*"+frag+"*", url))
		}
		res.ActualMessage = url
	}

	text := form.ExpandText(success.ExpectedText, values)
	switch {
	case success.Locator != "":
		el, err := e.driver.Locate(ctx, success.Locator)
		if err != nil {
			return err
		}
		visible, err := e.driver.WaitVisible(ctx, el, e.waitBudget)
		if err != nil {
			return err
		}
		if !visible {
			problems = append(problems, mismatch(success.Locator, "visible", "hidden"))
			break
		}
		if text != "" {
			expected = append(expected, text)
			actual, err := e.driver.ReadText(ctx, el)
			if err != nil {
				return err
			}
			if !strings.Contains(actual, text) {
				problems = append(problems, mismatch("success text", text, actual))
			}
		}
	case text != "":
		expected = append(expected, text)
		found, err := e.driver.WaitForText(ctx, text, e.waitBudget)
		if err != nil {
			return err
		}
		if !found {
			problems = append(problems, fmt.Sprintf("text %q not visible within %s", text, e.waitBudget))
		}
	}

	res.ExpectedMessage = strings.Join(expected, " and ")
	res.Passed = len(problems) == 0
	res.Diagnostic = strings.Join(problems, "; ")
	return nil
}

// waitURL polls the current URL until it contains frag or the budget runs out
func (e *Engine) waitURL(ctx context.Context, frag string) (string, bool, error) {
	deadline := time.Now().Add(e.waitBudget)
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		url, err := e.driver.CurrentURL(ctx)
		if err != nil {
			return "", false, err
		}
		if strings.Contains(url, frag) {
			return url, true, nil
		}
		if time.Now().After(deadline) {
			return url, false, nil
		}
		select {
		case <-ctx.Done():
			return url, false, ctx.Err()
		case <-ticker.C:
		}
	}
}

// VerifyReceipt checks the confirmation page against submitted values
func (e *Engine) VerifyReceipt(ctx context.Context, model *form.FormModel, values map[string]string) ([]ValidationResult, error) {
	var results []ValidationResult

	for _, entry := range model.Receipt() {
		id := entry.FieldID
		if id == "" {
			id = entry.Label
		}
		res, started := e.start(id, Confirmation)

		expected := entry.ExpectedText
		checkText := expected != ""
		if entry.FieldID != "" {
			checkText = true
			v, ok := values[entry.FieldID]
			if !ok {
				res.Diagnostic = fmt.Sprintf("no value was submitted for %q", entry.FieldID)
				results = append(results, e.finish(res, started))
				continue
			}
			expected = v
			f, err := model.DescribeField(entry.FieldID)
			if err != nil {
				return nil, err
			}
			if c, ok := f.ChoiceFor(v); ok && c.Label != "" {
				expected = c.Label
			}
		}
		res.ExpectedMessage = expected

		err := func() error {
			el, err := e.driver.Locate(ctx, entry.Locator)
			if err != nil {
				return err
			}
			visible, err := e.driver.WaitVisible(ctx, el, e.waitBudget)
			if err != nil {
				return err
			}
			if !visible {
				res.Diagnostic = mismatch(entry.Label, "visible", "hidden")
				return nil
			}
			if !checkText {
				res.Passed = true
				return nil
			}
			text, err := e.driver.ReadText(ctx, el)
			if err != nil {
				return err
			}
			res.ActualMessage = text
			res.Passed = text == expected
			if !res.Passed {
				res.Diagnostic = mismatch(entry.Label, expected, text)
			}
			return nil
		}()
		if err := absorb(res, err); err != nil {
			return nil, err
		}
		results = append(results, e.finish(res, started))
	}

	return results, nil
}

// RunInvalidSubmission submits an incomplete form and expects an alert
// containing expected (the model's failure indicator when empty).
func (e *Engine) RunInvalidSubmission(ctx context.Context, model *form.FormModel, expected string) (ValidationResult, error) {
	if expected == "" {
		expected = model.Failure().ExpectedAlertSubstring
	}
	if expected == "" {
		return ValidationResult{}, errors.NewConfigError(fmt.Sprintf("form %q has no expected alert text", model.Name()))
	}

	res, started := e.start("", InvalidSubmission)
	res.ExpectedMessage = expected

	run := func() error {
		alerts, err := e.driver.InterceptNextAlert(ctx)
		if err != nil {
			return err
		}
		if err := e.submit(ctx, model); err != nil {
			return err
		}

		timer := time.NewTimer(e.waitBudget)
		defer timer.Stop()

		select {
		case msg := <-alerts:
			res.ActualMessage = msg
			res.Passed = strings.Contains(msg, expected)
			if !res.Passed {
				res.Diagnostic = mismatch("alert", "*"+expected+"*", msg)
			}
			return nil
		case <-timer.C:
			return errors.NewTimeoutError("waiting for alert", model.SubmitLocator(), e.waitBudget, nil)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := absorb(res, run()); err != nil {
		return ValidationResult{}, err
	}
	return e.finish(res, started), nil
}
