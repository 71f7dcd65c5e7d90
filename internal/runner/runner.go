package runner

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/user/formcheck/internal/driver"
	"github.com/user/formcheck/internal/engine"
	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/form"
	"github.com/user/formcheck/internal/logging"
)

// Runner drives workflows through their states on a single session
type Runner struct {
	driver     driver.Driver
	logger     *logging.Logger
	engineOpts []engine.Option
}

// New creates a runner bound to one driver session
func New(d driver.Driver, logger *logging.Logger, opts ...engine.Option) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{driver: d, logger: logger, engineOpts: opts}
}

func (r *Runner) engineFor(wf *Workflow) *engine.Engine {
	opts := append(append([]engine.Option(nil), r.engineOpts...), engine.WithWorkflow(wf.Name))
	return engine.New(r.driver, r.logger, opts...)
}

// Run executes wf and returns its report. A page that is not ready or a
// failed precondition aborts the workflow and is reported, not returned.
// Unknown fields, driver failures and cancellation are returned along with
// the partial report.
func (r *Runner) Run(ctx context.Context, wf *Workflow) (*WorkflowReport, error) {
	rep := &WorkflowReport{
		Workflow:    wf.Name,
		Description: wf.Description,
		State:       StateStart,
		Attempt:     1,
		StartedAt:   time.Now(),
	}
	defer func() { rep.FinishedAt = time.Now() }()

	if wf.Model == nil {
		return rep, errors.NewConfigError(fmt.Sprintf("workflow %q has no form model", wf.Name))
	}
	if err := checkPlan(wf); err != nil {
		return rep, err
	}

	eng := r.engineFor(wf)

	// Start
	entry := wf.EntryURL
	if wf.Precondition != nil {
		entry = wf.Precondition.EntryURL
	}
	r.transition(wf, rep, StateStart)
	if err := r.driver.Navigate(ctx, entry); err != nil {
		return rep, err
	}

	// Authenticated
	if wf.Precondition != nil {
		ok, reason, err := r.runPrecondition(ctx, wf.Precondition)
		if err != nil {
			return rep, err
		}
		if !ok {
			r.abort(wf, rep, "precondition "+wf.Precondition.Name+" failed: "+reason)
			return rep, nil
		}
		switch {
		case wf.NavigateLocator != "":
			el, err := r.driver.Locate(ctx, wf.NavigateLocator)
			if err != nil {
				return rep, err
			}
			if err := r.driver.Click(ctx, el); err != nil {
				if isTimeout(err) {
					r.abort(wf, rep, "navigation control not found: "+err.Error())
					return rep, nil
				}
				return rep, err
			}
		case wf.EntryURL != "":
			if err := r.driver.Navigate(ctx, wf.EntryURL); err != nil {
				return rep, err
			}
		}
	}
	r.transition(wf, rep, StateAuthenticated)

	// PageLoaded
	if err := r.CheckPage(ctx, wf.Name, wf.Model, eng.WaitBudget()); err != nil {
		var notReady *errors.PageNotReadyError
		if stderrors.As(err, &notReady) {
			r.abort(wf, rep, notReady.Error())
			return rep, nil
		}
		return rep, err
	}
	r.transition(wf, rep, StatePageLoaded)

	// FieldValidation
	r.transition(wf, rep, StateFieldValidation)
	for _, step := range wf.Plan.Steps {
		res, err := r.runStep(ctx, eng, wf, step)
		if err != nil {
			if !isConfigError(err) {
				return rep, err
			}
			res = configFailure(wf.Name, step.FieldID, step.Kind, err)
		}
		rep.Results = append(rep.Results, res)
	}

	// Submission
	r.transition(wf, rep, StateSubmission)
	if err := r.submit(ctx, eng, wf, rep); err != nil {
		return rep, err
	}

	// Outcome
	r.transition(wf, rep, StateOutcome)
	passed, failed := rep.Counts()
	r.logger.Info("Workflow finished",
		logging.String("workflow", wf.Name),
		logging.Int("passed", passed),
		logging.Int("failed", failed))

	r.transition(wf, rep, StateEnd)
	return rep, nil
}

func (r *Runner) transition(wf *Workflow, rep *WorkflowReport, s State) {
	rep.State = s
	r.logger.Debug("Workflow state", logging.String("workflow", wf.Name), logging.String("state", s.String()))
}

func (r *Runner) abort(wf *Workflow, rep *WorkflowReport, reason string) {
	rep.Aborted = true
	rep.AbortReason = reason
	r.logger.Warn("Workflow aborted",
		logging.String("workflow", wf.Name),
		logging.String("state", rep.State.String()),
		logging.String("reason", reason))
}

// runPrecondition runs the precondition's page check and valid submission
// on the current session
func (r *Runner) runPrecondition(ctx context.Context, pre *Workflow) (bool, string, error) {
	if pre.Model == nil {
		return false, "", errors.NewConfigError(fmt.Sprintf("precondition %q has no form model", pre.Name))
	}
	eng := r.engineFor(pre)

	if err := r.CheckPage(ctx, pre.Name, pre.Model, eng.WaitBudget()); err != nil {
		var notReady *errors.PageNotReadyError
		if stderrors.As(err, &notReady) {
			return false, notReady.Error(), nil
		}
		return false, "", err
	}

	sub, err := eng.RunValidSubmission(ctx, pre.Model, pre.Plan.Values)
	if err != nil {
		return false, "", err
	}
	if !sub.Passed() {
		return false, firstDiagnostic(sub.Results), nil
	}
	return true, "", nil
}

// CheckPage verifies the heading text and the visibility of every control
// of model. The first missing piece is reported as a PageNotReadyError.
func (r *Runner) CheckPage(ctx context.Context, workflow string, model *form.FormModel, budget time.Duration) error {
	if model.HeadingLocator() != "" {
		el, err := r.driver.Locate(ctx, model.HeadingLocator())
		if err != nil {
			return err
		}
		visible, err := r.driver.WaitVisible(ctx, el, budget)
		if err != nil {
			return err
		}
		if !visible {
			return errors.NewPageNotReadyError(workflow, "heading "+model.HeadingLocator(), nil)
		}
		if model.PageHeading() != "" {
			text, err := r.driver.ReadText(ctx, el)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) != model.PageHeading() {
				return errors.NewPageNotReadyError(workflow,
					errors.NewAssertionMismatch("heading", model.PageHeading(), text).Error(), nil)
			}
		}
	}

	var controls []string
	for _, f := range model.OrderedFields() {
		if f.Kind == form.KindChoice {
			for _, c := range f.Choices {
				controls = append(controls, c.Locator)
			}
			continue
		}
		controls = append(controls, f.Locator)
	}
	controls = append(controls, model.SubmitLocator())
	if model.ResetLocator() != "" {
		controls = append(controls, model.ResetLocator())
	}

	for _, sel := range controls {
		el, err := r.driver.Locate(ctx, sel)
		if err != nil {
			return err
		}
		visible, err := r.driver.WaitVisible(ctx, el, budget)
		if err != nil {
			return err
		}
		if !visible {
			return errors.NewPageNotReadyError(workflow, "control "+sel, nil)
		}
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, eng *engine.Engine, wf *Workflow, step Step) (engine.ValidationResult, error) {
	model := wf.Model

	var field form.FieldDescriptor
	if step.FieldID != "" {
		f, err := model.DescribeField(step.FieldID)
		if err != nil {
			return engine.ValidationResult{}, err
		}
		field = f
	}

	switch step.Kind {
	case engine.EmptyValue:
		return eng.RunEmptyValue(ctx, model, field)
	case engine.InvalidPrefix:
		if step.Rule == nil {
			return engine.ValidationResult{}, errors.NewConfigError(fmt.Sprintf("invalid-input step for %q has no rule", step.FieldID))
		}
		return eng.RunInvalidInput(ctx, model, field, *step.Rule)
	case engine.LengthOverflow:
		return eng.RunLengthOverflow(ctx, field, step.Input)
	case engine.ValidValue:
		return eng.RunValidValue(ctx, field, step.Input)
	case engine.ResetForm:
		return eng.RunResetForm(ctx, model, step.Values)
	default:
		return engine.ValidationResult{}, errors.NewConfigError(fmt.Sprintf("step kind %q cannot run during field validation", step.Kind))
	}
}

func (r *Runner) submit(ctx context.Context, eng *engine.Engine, wf *Workflow, rep *WorkflowReport) error {
	plan := wf.Plan
	switch plan.Submission {
	case SubmitValid:
		sub, err := eng.RunValidSubmission(ctx, wf.Model, plan.Values)
		if err != nil {
			if !isConfigError(err) {
				return err
			}
			rep.Results = append(rep.Results, configFailure(wf.Name, "", engine.ValidSubmission, err))
			return nil
		}
		rep.Results = append(rep.Results, sub.Results...)
		rep.Values = sub.Values

		if plan.VerifyReceipt && sub.Passed() {
			receipt, err := eng.VerifyReceipt(ctx, wf.Model, sub.Values)
			if err != nil {
				return err
			}
			rep.Results = append(rep.Results, receipt...)
		}

	case SubmitInvalid:
		if err := eng.Reset(ctx, wf.Model); err != nil {
			if !isTimeout(err) {
				return err
			}
		}
		res, err := eng.RunInvalidSubmission(ctx, wf.Model, plan.AlertSubstring)
		if err != nil {
			if !isConfigError(err) {
				return err
			}
			res = configFailure(wf.Name, "", engine.InvalidSubmission, err)
		}
		rep.Results = append(rep.Results, res)
	}
	return nil
}

// checkPlan rejects plans naming fields the model does not declare before
// any browser work happens
func checkPlan(wf *Workflow) error {
	for _, id := range wf.Plan.FieldIDs() {
		if _, err := wf.Model.DescribeField(id); err != nil {
			return err
		}
	}
	return nil
}

func configFailure(workflow, fieldID string, kind engine.ScenarioKind, err error) engine.ValidationResult {
	return engine.ValidationResult{
		Workflow:   workflow,
		FieldID:    fieldID,
		Scenario:   kind,
		Diagnostic: "configuration: " + err.Error(),
	}
}

func firstDiagnostic(results []engine.ValidationResult) string {
	for _, r := range results {
		if !r.Passed {
			return r.Name() + ": " + r.Diagnostic
		}
	}
	return "no results"
}

func isTimeout(err error) bool {
	var timeout *errors.TimeoutError
	return stderrors.As(err, &timeout)
}

func isConfigError(err error) bool {
	var cfg *errors.ConfigError
	return stderrors.As(err, &cfg)
}
