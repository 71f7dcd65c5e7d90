package runner_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/formcheck/internal/driver"
	"github.com/user/formcheck/internal/engine"
	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/form"
	"github.com/user/formcheck/internal/pages"
	"github.com/user/formcheck/internal/runner"
	testHelpers "github.com/user/formcheck/internal/testing"
	"github.com/user/formcheck/internal/tui"
)

func engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithWaitBudget(50 * time.Millisecond),
		engine.WithPollInterval(time.Millisecond),
	}
}

func workflows(t *testing.T, names ...string) []*runner.Workflow {
	t.Helper()
	all, err := pages.Builtin(pages.Options{
		BaseURL:   testHelpers.TestBaseURL,
		SignupURL: testHelpers.TestSignupURL,
	})
	if err != nil {
		t.Fatalf("Failed to build workflows: %v", err)
	}
	selected, err := pages.Select(all, names)
	if err != nil {
		t.Fatalf("Failed to select workflows: %v", err)
	}
	return selected
}

func newSuite(factory driver.Factory, opts runner.SuiteOptions) *runner.Suite {
	opts.EngineOptions = engineOptions()
	return runner.NewSuite(factory, nil, opts)
}

// recordingFactory keeps every session it opens
type recordingFactory struct {
	site *testHelpers.Site
	opts []testHelpers.FakeOption

	mu       sync.Mutex
	sessions []*testHelpers.FakeDriver
}

func (f *recordingFactory) NewSession(ctx context.Context) (driver.Driver, error) {
	d := testHelpers.NewFakeDriver(f.site, f.opts...)
	f.mu.Lock()
	f.sessions = append(f.sessions, d)
	f.mu.Unlock()
	return d, nil
}

func failedResults(rep *runner.WorkflowReport) []string {
	var out []string
	for _, r := range rep.Results {
		if !r.Passed {
			out = append(out, r.Name()+": "+r.Diagnostic)
		}
	}
	return out
}

func TestSuite_BuiltinWorkflowsGreen(t *testing.T) {
	site := testHelpers.NewTestSite()
	suite := newSuite(site.Factory(), runner.SuiteOptions{})

	rep, err := suite.Run(t.Context(), workflows(t))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, w := range rep.Workflows {
		if !w.Passed() {
			t.Errorf("Expected %s to pass, aborted=%v reason=%q failures=%v",
				w.Workflow, w.Aborted, w.AbortReason, failedResults(w))
		}
		if w.State != runner.StateEnd {
			t.Errorf("Expected %s to reach End, got %s", w.Workflow, w.State)
		}
	}
	if !rep.Green() {
		t.Fatal("Expected green suite")
	}
	if rep.RunID == "" {
		t.Error("Expected a run id")
	}
	if site.Sessions() != len(rep.Workflows) {
		t.Errorf("Expected one session per workflow (%d), got %d", len(rep.Workflows), site.Sessions())
	}
	if n := len(site.Customers()); n != 1 {
		t.Errorf("Expected 1 registered customer, got %d", n)
	}
}

func TestSuite_AddCustomerReceiptMatchesSubmission(t *testing.T) {
	site := testHelpers.NewTestSite()
	suite := newSuite(site.Factory(), runner.SuiteOptions{})

	rep, err := suite.Run(t.Context(), workflows(t, pages.WorkflowAddCustomer))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	w := rep.Workflows[0]
	if !w.Passed() {
		t.Fatalf("Expected add-customer to pass, got %v (%s)", failedResults(w), w.AbortReason)
	}

	confirmations := 0
	for _, r := range w.Results {
		if r.Scenario == engine.Confirmation {
			confirmations++
		}
	}
	if confirmations != 10 {
		t.Errorf("Expected 10 confirmation checks, got %d", confirmations)
	}

	customer := site.Customers()[0]
	if customer.Fields["name"] != w.Values["name"] {
		t.Errorf("Expected site to store %q, got %q", w.Values["name"], customer.Fields["name"])
	}
	if customer.Fields["gender"] != "f" {
		t.Errorf("Expected fixture gender f, got %s", customer.Fields["gender"])
	}
}

func TestSuite_MissingHeadingAbortsOnce(t *testing.T) {
	site := testHelpers.NewTestSite()
	site.SetQuirks(testHelpers.Quirks{MissingHeading: true})
	suite := newSuite(site.Factory(), runner.SuiteOptions{})

	rep, err := suite.Run(t.Context(), workflows(t, pages.WorkflowSignin, pages.WorkflowAddCustomerForm))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	signin, custForm := rep.Workflows[0], rep.Workflows[1]
	if !signin.Passed() {
		t.Errorf("Expected signin unaffected, got %v", failedResults(signin))
	}
	if !custForm.Aborted {
		t.Fatal("Expected add-customer-form to abort")
	}
	if !strings.Contains(custForm.AbortReason, ".heading3") {
		t.Errorf("Expected reason to name the heading, got %q", custForm.AbortReason)
	}
	if len(custForm.Results) != 0 {
		t.Errorf("Expected no scenario results after abort, got %d", len(custForm.Results))
	}
	if custForm.State != runner.StateAuthenticated {
		t.Errorf("Expected abort in Authenticated, got %s", custForm.State)
	}

	var suiteErr *errors.SuiteFailedError
	if !stderrors.As(rep.Err(), &suiteErr) {
		t.Fatalf("Expected SuiteFailedError, got %v", rep.Err())
	}
	if rep.ExitCode() != errors.ExitSuiteFailed {
		t.Errorf("Expected exit code %d, got %d", errors.ExitSuiteFailed, rep.ExitCode())
	}
}

func TestSuite_RetryOnFreshSession(t *testing.T) {
	site := testHelpers.NewTestSite()
	site.SetQuirks(testHelpers.Quirks{FlakyHeadingLoads: 1})
	suite := newSuite(site.Factory(), runner.SuiteOptions{Retries: 2})

	rep, err := suite.Run(t.Context(), workflows(t, pages.WorkflowAddCustomer))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	w := rep.Workflows[0]
	if !w.Passed() {
		t.Fatalf("Expected retry to pass, got %q", w.AbortReason)
	}
	if w.Attempt != 2 {
		t.Errorf("Expected attempt 2, got %d", w.Attempt)
	}
	if site.Sessions() != 2 {
		t.Errorf("Expected 2 sessions, got %d", site.Sessions())
	}
}

func TestSuite_NoRetryReportsFailure(t *testing.T) {
	site := testHelpers.NewTestSite()
	site.SetQuirks(testHelpers.Quirks{FlakyHeadingLoads: 1})
	suite := newSuite(site.Factory(), runner.SuiteOptions{})

	rep, _ := suite.Run(t.Context(), workflows(t, pages.WorkflowAddCustomer))
	if rep.Workflows[0].Passed() {
		t.Fatal("Expected flaky load to fail without retries")
	}
	if site.Sessions() != 1 {
		t.Errorf("Expected 1 session, got %d", site.Sessions())
	}
}

func TestSuite_RejectedLoginAbortsDependents(t *testing.T) {
	site := testHelpers.NewTestSite()
	site.SetQuirks(testHelpers.Quirks{RejectLogins: true})
	suite := newSuite(site.Factory(), runner.SuiteOptions{})

	rep, err := suite.Run(t.Context(), workflows(t, pages.WorkflowSignin, pages.WorkflowAddCustomer))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	signin, add := rep.Workflows[0], rep.Workflows[1]
	if signin.Aborted || signin.Passed() {
		t.Errorf("Expected signin to fail its submission, aborted=%v", signin.Aborted)
	}
	if !add.Aborted || !strings.Contains(add.AbortReason, "precondition signin failed") {
		t.Errorf("Expected precondition abort, got %q", add.AbortReason)
	}
	if len(site.Customers()) != 0 {
		t.Error("Expected no customer registered")
	}
}

func TestSuite_WrongBannerCapturesScreenshot(t *testing.T) {
	site := testHelpers.NewTestSite()
	site.SetQuirks(testHelpers.Quirks{SuccessTextTypo: true})
	factory := &recordingFactory{site: site}
	dir := t.TempDir()
	suite := newSuite(factory, runner.SuiteOptions{Screenshots: true, ScreenshotDir: dir})

	rep, err := suite.Run(t.Context(), workflows(t, pages.WorkflowAddCustomer))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	w := rep.Workflows[0]
	if w.Passed() {
		t.Fatal("Expected wrong banner to fail")
	}
	if !strings.HasPrefix(w.Screenshot, dir) || !strings.Contains(w.Screenshot, "add-customer-") {
		t.Errorf("Expected screenshot under %s, got %q", dir, w.Screenshot)
	}
	shots := factory.sessions[0].Screenshots()
	if len(shots) != 1 || shots[0] != w.Screenshot {
		t.Errorf("Expected driver to receive %q, got %v", w.Screenshot, shots)
	}
	if !factory.sessions[0].Closed() {
		t.Error("Expected session closed")
	}
	for _, r := range w.Results {
		if r.Scenario == engine.Confirmation {
			t.Errorf("Expected no receipt checks after failed submission, got %s", r.Name())
		}
	}
}

func TestSuite_ScreenshotsDisabled(t *testing.T) {
	site := testHelpers.NewTestSite()
	site.SetQuirks(testHelpers.Quirks{SuccessTextTypo: true})
	factory := &recordingFactory{site: site}
	suite := newSuite(factory, runner.SuiteOptions{})

	rep, _ := suite.Run(t.Context(), workflows(t, pages.WorkflowAddCustomer))
	if rep.Workflows[0].Screenshot != "" {
		t.Errorf("Expected no screenshot, got %s", rep.Workflows[0].Screenshot)
	}
	if len(factory.sessions[0].Screenshots()) != 0 {
		t.Error("Expected driver not asked for a screenshot")
	}
}

func TestSuite_ParallelSessionsKeepOrder(t *testing.T) {
	site := testHelpers.NewTestSite()
	suite := newSuite(site.Factory(), runner.SuiteOptions{Parallel: 3})

	wfs := workflows(t)
	rep, err := suite.Run(t.Context(), wfs)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for i, w := range rep.Workflows {
		if w.Workflow != wfs[i].Name {
			t.Errorf("Expected report %d for %s, got %s", i, wfs[i].Name, w.Workflow)
		}
	}
	if !rep.Green() {
		for _, w := range rep.Workflows {
			t.Logf("%s: %v %q", w.Workflow, failedResults(w), w.AbortReason)
		}
		t.Fatal("Expected green suite")
	}
}

func TestSuite_ScriptErrorPolicy(t *testing.T) {
	tests := []struct {
		name        string
		ignore      bool
		wantAborted bool
	}{
		{"Ignored", true, false},
		{"Enforced", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := testHelpers.NewTestSite()
			site.SetQuirks(testHelpers.Quirks{ScriptErrorOnLoad: fmt.Errorf("ReferenceError: jQuery is not defined")})
			factory := site.Factory(testHelpers.WithIgnoreUncaught(tt.ignore))

			progress := tui.NewProgress("test")
			progress.SetWriter(&bytes.Buffer{})
			suite := newSuite(factory, runner.SuiteOptions{Progress: progress})

			rep, err := suite.Run(t.Context(), workflows(t, pages.WorkflowSigninInvalid))
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			w := rep.Workflows[0]
			if w.Aborted != tt.wantAborted {
				t.Errorf("Expected aborted=%v, got %v (%q)", tt.wantAborted, w.Aborted, w.AbortReason)
			}
			wantStatus := tui.WorkflowPassed
			if tt.wantAborted {
				wantStatus = tui.WorkflowAborted
				if !strings.Contains(w.AbortReason, "jQuery") {
					t.Errorf("Expected script error in reason, got %q", w.AbortReason)
				}
			}
			if got := progress.Status(pages.WorkflowSigninInvalid); got != wantStatus {
				t.Errorf("Expected progress %s, got %s", wantStatus, got)
			}
		})
	}
}

func TestSuite_UnknownFieldIsHardError(t *testing.T) {
	site := testHelpers.NewTestSite()
	factory := &recordingFactory{site: site}
	suite := newSuite(factory, runner.SuiteOptions{Retries: 3})

	wf := workflows(t, pages.WorkflowSignin)[0]
	broken := *wf
	broken.Plan.Values = map[string]string{"uid": "x", "otp": "123456"}

	rep, err := suite.Run(t.Context(), []*runner.Workflow{&broken})
	var unknown *errors.UnknownFieldError
	if !stderrors.As(err, &unknown) {
		t.Fatalf("Expected UnknownFieldError, got %v", err)
	}
	if len(factory.sessions) != 1 {
		t.Errorf("Expected no retry after a configuration error, got %d sessions", len(factory.sessions))
	}
	if actions := factory.sessions[0].Actions(); len(actions) != 0 {
		t.Errorf("Expected no browser work, got %v", actions)
	}
	if rep == nil || len(rep.Workflows) != 1 {
		t.Fatal("Expected partial report")
	}
}

func TestSuite_Cancelled(t *testing.T) {
	site := testHelpers.NewTestSite()
	suite := newSuite(site.Factory(), runner.SuiteOptions{})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	rep, err := suite.Run(ctx, workflows(t))
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	for _, w := range rep.Workflows {
		if w == nil {
			t.Fatal("Expected every workflow to have a report")
		}
	}
}

func TestRunner_ConfigErrorInStepIsRecorded(t *testing.T) {
	site := testHelpers.NewTestSite()
	d := testHelpers.NewFakeDriver(site)

	model, err := pages.SigninModel()
	if err != nil {
		t.Fatalf("Failed to build model: %v", err)
	}
	wf := &runner.Workflow{
		Name:     "signin-overflow",
		EntryURL: pages.LoginURL(testHelpers.TestBaseURL),
		Model:    model,
		Plan: runner.Plan{Steps: []runner.Step{
			{Kind: engine.LengthOverflow, FieldID: "password", Input: "abc"},
			{Kind: engine.EmptyValue, FieldID: "uid"},
		}},
	}

	rep, err := runner.New(d, nil, engineOptions()...).Run(t.Context(), wf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rep.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(rep.Results))
	}
	if rep.Results[0].Passed || !strings.HasPrefix(rep.Results[0].Diagnostic, "configuration: ") {
		t.Errorf("Expected configuration failure, got %+v", rep.Results[0])
	}
	if !rep.Results[1].Passed {
		t.Errorf("Expected run to continue, got %s", rep.Results[1].Diagnostic)
	}
}

func TestRunner_CheckPage(t *testing.T) {
	site := testHelpers.NewTestSite()
	d := testHelpers.NewFakeDriver(site)
	if err := d.Navigate(t.Context(), pages.LoginURL(testHelpers.TestBaseURL)); err != nil {
		t.Fatalf("Failed to open login: %v", err)
	}
	r := runner.New(d, nil)

	signin, _ := pages.SigninModel()
	if err := r.CheckPage(t.Context(), "signin", signin, 0); err != nil {
		t.Errorf("Expected login page ready, got %v", err)
	}

	customer, _ := pages.AddCustomerModel(form.NewGenerator())
	err := r.CheckPage(t.Context(), "add-customer", customer, 0)
	var notReady *errors.PageNotReadyError
	if !stderrors.As(err, &notReady) {
		t.Fatalf("Expected PageNotReadyError on the wrong page, got %v", err)
	}
	if errors.ExitCodeOf(err) != errors.ExitPageNotReady {
		t.Errorf("Expected exit code %d, got %d", errors.ExitPageNotReady, errors.ExitCodeOf(err))
	}
}
