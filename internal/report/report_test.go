package report

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/user/formcheck/internal/engine"
	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/runner"
	testHelpers "github.com/user/formcheck/internal/testing"
)

func sampleReport() *runner.SuiteReport {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &runner.SuiteReport{
		RunID:      "7d1c9a4e-run",
		BaseURL:    "https://demo.guru99.com/V4",
		StartedAt:  start,
		FinishedAt: start.Add(4 * time.Second),
		Workflows: []*runner.WorkflowReport{
			{
				Workflow: "signin", State: runner.StateEnd, Attempt: 1,
				StartedAt: start, FinishedAt: start.Add(time.Second),
				Results: []engine.ValidationResult{
					{Workflow: "signin", FieldID: "uid", Scenario: engine.EmptyValue, Passed: true, ExpectedMessage: "User-ID must not be blank", ActualMessage: "User-ID must not be blank"},
					{Workflow: "signin", Scenario: engine.ValidSubmission, Passed: true},
				},
			},
			{
				Workflow: "add-customer-form", State: runner.StateEnd, Attempt: 2,
				StartedAt: start, FinishedAt: start.Add(2 * time.Second),
				Screenshot: "/tmp/shots/add-customer-form.png",
				Results: []engine.ValidationResult{
					{Workflow: "add-customer-form", FieldID: "pinno", Scenario: engine.InvalidPrefix, Input: "1234", Passed: false,
						ExpectedMessage: "PIN Code must have 6 Digits", ActualMessage: "PIN | wrong",
						Diagnostic: `message: expected "PIN Code must have 6 Digits", got "PIN | wrong"`},
					{Workflow: "add-customer-form", FieldID: "name", Scenario: engine.LengthOverflow, TimedOut: true,
						Diagnostic: "timeout: waiting for input"},
				},
			},
			{
				Workflow: "add-customer", State: runner.StateAuthenticated, Attempt: 1,
				Aborted: true, AbortReason: "page add-customer not ready: heading .heading3",
			},
		},
	}
}

func greenReport() *runner.SuiteReport {
	rep := sampleReport()
	rep.Workflows = rep.Workflows[:1]
	return rep
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport())

	for _, want := range []string{
		"# formcheck suite FAILED",
		"## ✓ signin",
		"## ✗ add-customer-form",
		"## ⚠ add-customer",
		"> Aborted in state Authenticated: page add-customer not ready",
		"Attempt 2.",
		"| ✗ | pinno/InvalidPrefix | `1234` |",
		`PIN \| wrong`,
		"**3** workflows, **1** aborted. **2/4** scenarios passed, **2** failed, **1** timed out.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q\n%s", want, md)
		}
	}

	if !strings.HasPrefix(Markdown(greenReport()), "# formcheck suite PASSED") {
		t.Error("Expected green report to be marked PASSED")
	}
}

func TestHTMLExporter_Export(t *testing.T) {
	exporter, err := NewHTMLExporter()
	if err != nil {
		t.Fatalf("Expected no error creating exporter, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "report.html")
	if err := exporter.Export(sampleReport(), path); err != nil {
		t.Fatalf("Expected no error exporting, got %v", err)
	}

	testHelpers.AssertFileContains(t, path, "<!DOCTYPE html>")
	testHelpers.AssertFileContains(t, path, `<body class="failed">`)
	testHelpers.AssertFileContains(t, path, "<table>")
	testHelpers.AssertFileContains(t, path, "<title>formcheck 7d1c9a4e-run</title>")
	testHelpers.AssertFileContains(t, path, "pinno/InvalidPrefix")
}

func TestHTMLExporter_EscapesPageText(t *testing.T) {
	rep := greenReport()
	rep.Workflows[0].Results[0].ActualMessage = "<script>alert(1)</script>"

	exporter, _ := NewHTMLExporter()
	out, err := exporter.Render(rep)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if bytes.Contains(out, []byte("<script>alert(1)</script>")) {
		t.Error("Expected raw HTML from the page to be escaped")
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteJSON(sampleReport(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	var doc struct {
		Metadata struct {
			RunID     string `json:"run_id"`
			Generator struct {
				Name string `json:"name"`
			} `json:"generator"`
		} `json:"metadata"`
		Summary struct {
			Green      bool          `json:"green"`
			ExitCode   int           `json:"exit_code"`
			DurationMS int64         `json:"duration_ms"`
			Counts     runner.Counts `json:"counts"`
		} `json:"summary"`
		Workflows []struct {
			Workflow string `json:"workflow"`
			State    string `json:"state"`
		} `json:"workflows"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}

	if doc.Metadata.RunID != "7d1c9a4e-run" || doc.Metadata.Generator.Name != "formcheck" {
		t.Errorf("Unexpected metadata: %+v", doc.Metadata)
	}
	if doc.Summary.Green || doc.Summary.ExitCode != int(errors.ExitSuiteFailed) || doc.Summary.DurationMS != 4000 {
		t.Errorf("Unexpected summary: %+v", doc.Summary)
	}
	want := runner.Counts{Workflows: 3, Aborted: 1, Results: 4, Passed: 2, Failed: 2, TimedOut: 1}
	if diff := cmp.Diff(want, doc.Summary.Counts); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}
	if doc.Workflows[2].State != "Authenticated" {
		t.Errorf("Expected state name, got %s", doc.Workflows[2].State)
	}
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textfile", "formcheck.prom")
	if err := WriteMetrics(sampleReport(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, want := range []string{
		"formcheck_suite_green 0",
		"formcheck_suite_duration_seconds 4",
		`formcheck_workflow_passed{workflow="signin"} 1`,
		`formcheck_workflow_aborted{workflow="add-customer"} 1`,
		`formcheck_workflow_attempts{workflow="add-customer-form"} 2`,
		`formcheck_scenario_results{outcome="timed_out",workflow="add-customer-form"} 1`,
		`formcheck_scenario_results{outcome="failed",workflow="add-customer-form"} 1`,
	} {
		testHelpers.AssertFileContains(t, path, want)
	}
}

func TestWriteMetrics_RepeatedRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formcheck.prom")
	if err := WriteMetrics(sampleReport(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := WriteMetrics(greenReport(), path); err != nil {
		t.Fatalf("Expected second write to succeed, got %v", err)
	}
	testHelpers.AssertFileContains(t, path, "formcheck_suite_green 1")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReport()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"signin",
		"add-customer-form",
		"pinno/InvalidPrefix",
		"heading .heading3",
		"attempt 2",
		"screenshot: /tmp/shots/add-customer-form.png",
		"FAILED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "uid/EmptyValue") {
		t.Error("Expected passing scenarios to be omitted")
	}
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	metrics := filepath.Join(dir, "metrics.prom")

	written, err := Export(sampleReport(), Options{
		Dir:         dir,
		Formats:     []string{FormatText, FormatJSON, FormatHTML},
		MetricsFile: metrics,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{filepath.Join(dir, "report.json"), filepath.Join(dir, "report.html"), metrics}
	if diff := cmp.Diff(want, written); diff != "" {
		t.Errorf("Written files mismatch (-want +got):\n%s", diff)
	}
	for _, p := range want {
		testHelpers.AssertFileExists(t, p)
	}
}

func TestExport_TextOnlyWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	written, err := Export(greenReport(), Options{Dir: dir, Formats: []string{FormatText}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(written) != 0 {
		t.Errorf("Expected no files, got %v", written)
	}
	testHelpers.AssertFileNotExists(t, dir)
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := Export(greenReport(), Options{Dir: t.TempDir(), Formats: []string{"xml"}})
	var invalid *errors.InvalidConfigValueError
	if !stderrors.As(err, &invalid) {
		t.Fatalf("Expected InvalidConfigValueError, got %v", err)
	}
}
