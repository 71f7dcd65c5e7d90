package pages

import (
	"fmt"
	"sort"
	"strings"

	"github.com/user/formcheck/internal/engine"
	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/fixtures"
	"github.com/user/formcheck/internal/form"
	"github.com/user/formcheck/internal/runner"
)

// Built-in workflow names
const (
	WorkflowSignin          = "signin"
	WorkflowSigninInvalid   = "signin-invalid"
	WorkflowSignup          = "signup"
	WorkflowAddCustomer     = "add-customer"
	WorkflowAddCustomerForm = "add-customer-form"
)

// Options carries what the built-in workflows need from a run
type Options struct {
	BaseURL   string
	SignupURL string
	Fixtures  *fixtures.Set
	Generator *form.Generator
}

// Builtin returns every built-in workflow in suite order
func Builtin(opts Options) ([]*runner.Workflow, error) {
	if opts.BaseURL == "" {
		return nil, errors.NewConfigError("base url is required")
	}
	if opts.Fixtures == nil {
		set, err := fixtures.Default()
		if err != nil {
			return nil, err
		}
		opts.Fixtures = set
	}
	if opts.Generator == nil {
		opts.Generator = form.NewGenerator()
	}

	signinModel, err := SigninModel()
	if err != nil {
		return nil, err
	}
	customerModel, err := AddCustomerModel(opts.Generator)
	if err != nil {
		return nil, err
	}

	login := opts.Fixtures.Login
	loginURL := LoginURL(opts.BaseURL)

	signin := &runner.Workflow{
		Name:        WorkflowSignin,
		Description: "Manager login: blank messages, reset, valid login",
		EntryURL:    loginURL,
		Model:       signinModel,
		Plan: runner.Plan{
			Steps: []runner.Step{
				{Kind: engine.EmptyValue, FieldID: "uid"},
				{Kind: engine.EmptyValue, FieldID: "password"},
				{Kind: engine.ResetForm, Values: map[string]string{"uid": "test", "password": "password"}},
			},
			Submission: runner.SubmitValid,
			Values:     map[string]string{"uid": login.UserID, "password": login.Password},
		},
	}

	signinInvalid := &runner.Workflow{
		Name:        WorkflowSigninInvalid,
		Description: "Manager login with empty credentials is rejected",
		EntryURL:    loginURL,
		Model:       signinModel,
		Plan: runner.Plan{
			Submission:     runner.SubmitInvalid,
			AlertSubstring: AlertLoginFailed,
		},
	}

	workflows := []*runner.Workflow{signin, signinInvalid}

	if opts.SignupURL != "" {
		signupModel, err := SignupModel(opts.Generator)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, &runner.Workflow{
			Name:        WorkflowSignup,
			Description: "Email signup: blank and malformed emails, access credentials",
			EntryURL:    opts.SignupURL,
			Model:       signupModel,
			Plan: runner.Plan{
				Steps:         runner.DerivePlan(signupModel, nil),
				Submission:    runner.SubmitValid,
				VerifyReceipt: true,
			},
		})
	}

	workflows = append(workflows,
		&runner.Workflow{
			Name:            WorkflowAddCustomer,
			Description:     "Register a customer and check the confirmation table",
			Model:           customerModel,
			Precondition:    signin,
			NavigateLocator: NewCustomerLink,
			Plan: runner.Plan{
				Submission:    runner.SubmitValid,
				Values:        CustomerValues(opts.Fixtures.Customer),
				VerifyReceipt: true,
			},
		},
		&runner.Workflow{
			Name:            WorkflowAddCustomerForm,
			Description:     "New customer field messages, length limits and incomplete submit",
			Model:           customerModel,
			Precondition:    signin,
			NavigateLocator: NewCustomerLink,
			Plan: runner.Plan{
				Steps:          customerFormSteps(customerModel, opts.Fixtures.Customer),
				Submission:     runner.SubmitInvalid,
				AlertSubstring: AlertFillAllFields,
			},
		},
	)
	return workflows, nil
}

// CustomerValues maps the customer fixture onto add-customer field ids.
// Name and email are left to the generator.
func CustomerValues(c fixtures.Customer) map[string]string {
	return map[string]string{
		"gender":      c.GenderValue(),
		"dob":         c.DOB,
		"addr":        c.Address.Street,
		"city":        c.Address.City,
		"state":       c.Address.State,
		"pinno":       c.PIN,
		"telephoneno": c.Mobile,
		"password":    c.Password,
	}
}

// CustomerOverflows maps the over-long fixture inputs onto field ids
func CustomerOverflows(c fixtures.Customer) map[string]string {
	out := make(map[string]string)
	for id, v := range map[string]string{
		"name":        c.NameOver25Chars,
		"addr":        c.AddressOver50Chars,
		"city":        c.CityOver25Chars,
		"state":       c.StateOver25Chars,
		"pinno":       c.PINOver6Digits,
		"telephoneno": c.MobileOver15Digits,
		"emailid":     c.EmailOver30Chars,
	} {
		if v != "" {
			out[id] = v
		}
	}
	return out
}

// customerFormSteps derives the per-field checks and slots the gender
// toggles and the date entry in after the name checks, matching the page's
// field order.
func customerFormSteps(model *form.FormModel, c fixtures.Customer) []runner.Step {
	derived := runner.DerivePlan(model, CustomerOverflows(c))

	steps := make([]runner.Step, 0, len(derived)+3)
	inserted := false
	for _, s := range derived {
		if !inserted && s.FieldID != "name" {
			steps = append(steps,
				runner.Step{Kind: engine.ValidValue, FieldID: "gender", Input: "f"},
				runner.Step{Kind: engine.ValidValue, FieldID: "gender", Input: "m"},
				runner.Step{Kind: engine.ValidValue, FieldID: "dob", Input: c.DOB},
			)
			inserted = true
		}
		steps = append(steps, s)
	}
	return steps
}

// Select returns the workflows named in names, in suite order. An empty
// names selects everything.
func Select(all []*runner.Workflow, names []string) ([]*runner.Workflow, error) {
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]*runner.Workflow, len(all))
	for _, wf := range all {
		byName[wf.Name] = wf
	}

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := byName[n]; !ok {
			return nil, errors.NewInvalidConfigValueError("workflow", n,
				fmt.Sprintf("unknown workflow, available: %s", strings.Join(Names(all), ", ")))
		}
		wanted[n] = struct{}{}
	}

	out := make([]*runner.Workflow, 0, len(wanted))
	for _, wf := range all {
		if _, ok := wanted[wf.Name]; ok {
			out = append(out, wf)
		}
	}
	return out, nil
}

// Names lists workflow names sorted alphabetically
func Names(all []*runner.Workflow) []string {
	out := make([]string, 0, len(all))
	for _, wf := range all {
		out = append(out, wf.Name)
	}
	sort.Strings(out)
	return out
}
