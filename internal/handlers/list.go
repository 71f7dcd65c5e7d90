package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/user/formcheck/internal/config"
	"github.com/user/formcheck/internal/logging"
	"github.com/user/formcheck/internal/tui"
)

// ListHandler prints the selected workflows and the scenarios each would run
type ListHandler struct {
	*BaseHandler
	run     *RunHandler
	out     io.Writer
	verbose bool
}

// NewListHandler creates a list handler. With verbose set every planned
// scenario is printed under its workflow.
func NewListHandler(cfg *config.GlobalConfig, logger *logging.Logger, out io.Writer, verbose bool) *ListHandler {
	if out == nil {
		out = os.Stdout
	}
	return &ListHandler{
		BaseHandler: NewBaseHandler(cfg.BaseConfig, logger),
		run:         NewRunHandler(cfg, logger),
		out:         out,
		verbose:     verbose,
	}
}

// Handle prints the listing
func (h *ListHandler) Handle(ctx context.Context) error {
	workflows, err := h.run.Workflows()
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, wf := range workflows {
		steps := wf.Plan.Describe()
		fmt.Fprintf(&sb, "%s %s %s\n",
			tui.StyleScenarioName.Render(wf.Name),
			tui.StyleMuted.Render(fmt.Sprintf("(%d scenarios)", len(steps))),
			wf.Description)
		if wf.Precondition != nil {
			fmt.Fprintf(&sb, "    %s after %s\n", tui.IconArrow, wf.Precondition.Name)
		}
		if !h.verbose {
			continue
		}
		for _, s := range steps {
			fmt.Fprintf(&sb, "    %s %s\n", tui.IconBullet, s)
		}
	}

	_, err = io.WriteString(h.out, sb.String())
	return err
}
