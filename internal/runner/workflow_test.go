package runner

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/user/formcheck/internal/engine"
	"github.com/user/formcheck/internal/form"
)

func planModel(t *testing.T) *form.FormModel {
	t.Helper()
	m, err := form.New(form.ModelSpec{
		Name:          "profile",
		SubmitLocator: "#save",
		Fields: []form.FieldDescriptor{
			{
				ID: "nick", Locator: "#nick", ErrorLocator: "#nick-msg",
				MaxLength: 8, Required: true,
				Rules: []form.Rule{
					{ExpectedMessage: "Nick must not be blank"},
					{InvalidInput: " x", ExpectedMessage: "No leading space"},
				},
			},
			{
				ID: "bio", Locator: "#bio", ErrorLocator: "#bio-msg",
				Rules: []form.Rule{{ExpectedMessage: "ignored, optional"}},
			},
			{ID: "born", Kind: form.KindDate, Locator: "#born", Required: true},
		},
	})
	if err != nil {
		t.Fatalf("Failed to build model: %v", err)
	}
	return m
}

func TestDerivePlan(t *testing.T) {
	steps := DerivePlan(planModel(t), map[string]string{"nick": "abcdefghij", "unknown": "x"})

	var got []string
	for _, s := range steps {
		got = append(got, s.FieldID+"/"+string(s.Kind))
	}
	want := []string{"nick/EmptyValue", "nick/InvalidPrefix", "nick/LengthOverflow"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Steps mismatch (-want +got):\n%s", diff)
	}
	if steps[1].Rule == nil || steps[1].Rule.InvalidInput != " x" {
		t.Errorf("Expected rule with input %q, got %+v", " x", steps[1].Rule)
	}
	if steps[2].Input != "abcdefghij" {
		t.Errorf("Expected overflow input, got %q", steps[2].Input)
	}
}

func TestDerivePlan_RulesAreCopies(t *testing.T) {
	steps := DerivePlan(planModel(t), nil)
	steps[1].Rule.ExpectedMessage = "changed"

	again := DerivePlan(planModel(t), nil)
	if again[1].Rule.ExpectedMessage != "No leading space" {
		t.Errorf("Expected model rule untouched, got %q", again[1].Rule.ExpectedMessage)
	}
}

func TestPlan_Describe(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
		want []string
	}{
		{
			name: "ValidWithReceipt",
			plan: Plan{
				Steps:         []Step{{Kind: engine.EmptyValue, FieldID: "nick"}, {Kind: engine.ResetForm}},
				Submission:    SubmitValid,
				VerifyReceipt: true,
			},
			want: []string{"nick/EmptyValue", "ResetForm", "ValidSubmission", "Confirmation"},
		},
		{
			name: "Invalid",
			plan: Plan{Submission: SubmitInvalid},
			want: []string{"InvalidSubmission"},
		},
		{
			name: "None",
			plan: Plan{Steps: []Step{{Kind: engine.ValidValue, FieldID: "born"}}},
			want: []string{"born/ValidValue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.plan.Describe()); diff != "" {
				t.Errorf("Describe mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlan_FieldIDs(t *testing.T) {
	p := Plan{
		Steps: []Step{
			{Kind: engine.EmptyValue, FieldID: "nick"},
			{Kind: engine.ResetForm, Values: map[string]string{"bio": "x", "nick": "y"}},
		},
		Values: map[string]string{"born": "2000-01-01"},
	}
	want := []string{"bio", "born", "nick"}
	if diff := cmp.Diff(want, p.FieldIDs()); diff != "" {
		t.Errorf("FieldIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestState_MarshalText(t *testing.T) {
	data, err := json.Marshal(map[string]State{"state": StatePageLoaded})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != `{"state":"PageLoaded"}` {
		t.Errorf("Expected state name in JSON, got %s", data)
	}
	if State(42).String() != "Unknown" {
		t.Errorf("Expected Unknown, got %s", State(42))
	}
}

func TestSuiteReport_Counts(t *testing.T) {
	rep := &SuiteReport{Workflows: []*WorkflowReport{
		{Workflow: "a", Results: []engine.ValidationResult{{Passed: true}, {Passed: false, TimedOut: true}}},
		{Workflow: "b", Aborted: true},
		{Workflow: "c", Results: []engine.ValidationResult{{Passed: true}}},
	}}

	want := Counts{Workflows: 3, Aborted: 1, Results: 3, Passed: 2, Failed: 1, TimedOut: 1}
	if diff := cmp.Diff(want, rep.Counts()); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}
	if rep.Green() {
		t.Error("Expected suite not green")
	}
	if rep.Err() == nil {
		t.Error("Expected suite failure error")
	}
}

func TestSuiteReport_EmptyIsGreen(t *testing.T) {
	rep := &SuiteReport{}
	if !rep.Green() || rep.Err() != nil || rep.ExitCode() != 0 {
		t.Errorf("Expected empty suite to be green")
	}
}
