package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/user/formcheck/internal/runner"
	"github.com/user/formcheck/internal/tui"
)

// WriteText prints the human summary: one line per workflow, the failed
// scenarios beneath it and a verdict.
func WriteText(w io.Writer, rep *runner.SuiteReport) error {
	var sb strings.Builder

	sb.WriteString(tui.StyleTitle.Render("formcheck results"))
	sb.WriteString("\n")
	sb.WriteString(tui.StyleMuted.Render(fmt.Sprintf("run %s against %s", rep.RunID, rep.BaseURL)))
	sb.WriteString("\n\n")

	for _, wf := range rep.Workflows {
		passed, failed := wf.Counts()
		var icon, status string
		switch {
		case wf.Aborted:
			icon = tui.StyleWarning.Render(tui.IconWarning)
			status = tui.StyleWarning.Render("aborted in " + wf.State.String())
		case wf.Passed():
			icon = tui.StyleSuccess.Render(tui.IconSuccess)
			status = tui.StyleSuccess.Render(fmt.Sprintf("%d/%d passed", passed, passed+failed))
		default:
			icon = tui.StyleError.Render(tui.IconError)
			status = tui.StyleError.Render(fmt.Sprintf("%d/%d passed", passed, passed+failed))
		}
		if wf.Attempt > 1 {
			status += tui.StyleMuted.Render(fmt.Sprintf(" (attempt %d)", wf.Attempt))
		}
		fmt.Fprintf(&sb, "%s %s %s\n", icon, tui.StyleScenarioName.Render(wf.Workflow), status)

		if wf.Aborted {
			fmt.Fprintf(&sb, "    %s %s\n", tui.IconArrow, wf.AbortReason)
		}
		for _, r := range wf.Results {
			if r.Passed {
				continue
			}
			fmt.Fprintf(&sb, "    %s %s: %s\n", tui.StyleError.Render(tui.IconBullet), r.Name(), r.Diagnostic)
		}
		if wf.Screenshot != "" {
			fmt.Fprintf(&sb, "    %s\n", tui.StyleMuted.Render("screenshot: "+wf.Screenshot))
		}
	}

	c := rep.Counts()
	summary := fmt.Sprintf("%d/%d scenarios passed, %d failed, %d timed out, %d/%d workflows aborted (%s)",
		c.Passed, c.Results, c.Failed, c.TimedOut, c.Aborted, c.Workflows, rep.Duration().Round(time.Millisecond))

	sb.WriteString("\n")
	if rep.Green() {
		sb.WriteString(tui.StyleBox.Render(tui.StyleSuccess.Render("PASSED ") + summary))
	} else {
		sb.WriteString(tui.StyleBox.Render(tui.StyleError.Render("FAILED ") + summary))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
