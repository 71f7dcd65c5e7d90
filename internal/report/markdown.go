// Package report renders a suite report as text, JSON, HTML and a
// Prometheus textfile.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/user/formcheck/internal/runner"
)

// Markdown renders the report as GitHub-flavoured Markdown: a summary, one
// table of results per workflow and the failures.
func Markdown(rep *runner.SuiteReport) string {
	var sb strings.Builder
	c := rep.Counts()

	status := "PASSED"
	if !rep.Green() {
		status = "FAILED"
	}
	fmt.Fprintf(&sb, "# formcheck suite %s\n\n", status)

	sb.WriteString("| Run | Target | Started | Duration |\n|---|---|---|---|\n")
	fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n\n",
		rep.RunID, cell(rep.BaseURL), rep.StartedAt.Format(time.RFC3339), rep.Duration().Round(time.Millisecond))

	fmt.Fprintf(&sb, "**%d** workflows, **%d** aborted. **%d/%d** scenarios passed, **%d** failed, **%d** timed out.\n",
		c.Workflows, c.Aborted, c.Passed, c.Results, c.Failed, c.TimedOut)

	for _, w := range rep.Workflows {
		fmt.Fprintf(&sb, "\n## %s %s\n\n", workflowMark(w), w.Workflow)
		if w.Description != "" {
			fmt.Fprintf(&sb, "%s\n\n", w.Description)
		}
		if w.Attempt > 1 {
			fmt.Fprintf(&sb, "Attempt %d.\n\n", w.Attempt)
		}
		if w.Aborted {
			fmt.Fprintf(&sb, "> Aborted in state %s: %s\n\n", w.State, w.AbortReason)
		}
		if w.Screenshot != "" {
			fmt.Fprintf(&sb, "Screenshot: `%s`\n\n", w.Screenshot)
		}
		if len(w.Results) == 0 {
			continue
		}

		sb.WriteString("| | Scenario | Input | Expected | Actual | Diagnostic |\n|---|---|---|---|---|---|\n")
		for _, r := range w.Results {
			mark := "✓"
			if !r.Passed {
				mark = "✗"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
				mark, r.Name(), code(r.Input), cell(r.ExpectedMessage), cell(r.ActualMessage), cell(r.Diagnostic))
		}
	}
	return sb.String()
}

func workflowMark(w *runner.WorkflowReport) string {
	switch {
	case w.Aborted:
		return "⚠"
	case w.Passed():
		return "✓"
	default:
		return "✗"
	}
}

// cell escapes text for a table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// code quotes an input so leading spaces stay visible
func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + strings.ReplaceAll(cell(s), "`", "'") + "`"
}
