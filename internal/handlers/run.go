package handlers

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/user/formcheck/internal/config"
	"github.com/user/formcheck/internal/driver"
	"github.com/user/formcheck/internal/engine"
	"github.com/user/formcheck/internal/fixtures"
	"github.com/user/formcheck/internal/form"
	"github.com/user/formcheck/internal/logging"
	"github.com/user/formcheck/internal/pages"
	"github.com/user/formcheck/internal/report"
	"github.com/user/formcheck/internal/runner"
	"github.com/user/formcheck/internal/tui"
)

// RunOption customises a RunHandler
type RunOption func(*RunHandler)

// WithFactory replaces the Playwright browser with another session factory
func WithFactory(f driver.Factory) RunOption {
	return func(h *RunHandler) { h.factory = f }
}

// WithOutput sets where the text summary is printed (default stdout)
func WithOutput(w io.Writer) RunOption {
	return func(h *RunHandler) { h.out = w }
}

// WithProgress reports workflow events as they happen
func WithProgress(p tui.ProgressReporter) RunOption {
	return func(h *RunHandler) { h.progress = p }
}

// WithEngineOptions appends engine options, e.g. a shorter poll interval
func WithEngineOptions(opts ...engine.Option) RunOption {
	return func(h *RunHandler) { h.engineOpts = append(h.engineOpts, opts...) }
}

// RunHandler runs the selected built-in workflows once and exports the report
type RunHandler struct {
	*BaseHandler
	config     *config.GlobalConfig
	factory    driver.Factory
	out        io.Writer
	progress   tui.ProgressReporter
	engineOpts []engine.Option
}

// NewRunHandler creates a run handler
func NewRunHandler(cfg *config.GlobalConfig, logger *logging.Logger, opts ...RunOption) *RunHandler {
	h := &RunHandler{
		BaseHandler: NewBaseHandler(cfg.BaseConfig, logger),
		config:      cfg,
		out:         os.Stdout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Workflows builds the selected workflows with fresh fixtures and a fresh
// value generator
func (h *RunHandler) Workflows() ([]*runner.Workflow, error) {
	set, err := fixtures.Load(h.ResolvePath(h.config.Run.FixturesDir))
	if err != nil {
		return nil, err
	}
	all, err := pages.Builtin(pages.Options{
		BaseURL:   h.config.Target.BaseURL,
		SignupURL: h.config.Target.SignupURL,
		Fixtures:  set,
		Generator: form.NewGenerator(),
	})
	if err != nil {
		return nil, err
	}
	return pages.Select(all, h.config.Run.Workflows)
}

// DriverOptions maps the browser configuration onto session options
func (h *RunHandler) DriverOptions() driver.Options {
	b := h.config.Browser
	opts := driver.Options{
		Engine:                   b.Engine,
		Headless:                 b.IsHeadless(),
		SlowMo:                   b.GetSlowMo(),
		Timeout:                  b.GetTimeout(),
		Viewport:                 driver.Viewport{Width: b.Viewport.Width, Height: b.Viewport.Height},
		SkipInstall:              b.SkipInstall,
		IgnoreUncaughtExceptions: b.ShouldIgnoreUncaughtExceptions(),
		Logger:                   h.Logger,
	}
	if b.Videos {
		opts.VideoDir = filepath.Join(h.ResolvePath(b.ArtifactsDir), "videos")
	}
	return opts
}

// Handle runs the suite. The returned error is the suite verdict when the
// run itself succeeded: nil when green, a SuiteFailedError otherwise.
func (h *RunHandler) Handle(ctx context.Context) (*runner.SuiteReport, error) {
	workflows, err := h.Workflows()
	if err != nil {
		return nil, err
	}

	factory := h.factory
	if factory == nil {
		pw, err := driver.NewPlaywrightFactory(h.DriverOptions())
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := pw.Close(); err != nil {
				h.Logger.Warn("Failed to close browser", logging.Error(err))
			}
		}()
		factory = pw
	}

	b := h.config.Browser
	engineOpts := append([]engine.Option{engine.WithWaitBudget(b.GetTimeout())}, h.engineOpts...)
	suite := runner.NewSuite(factory, h.Logger, runner.SuiteOptions{
		Parallel:      h.config.Run.GetParallel(),
		Retries:       h.config.Retries.For(b.IsHeadless()),
		Screenshots:   b.Screenshots,
		ScreenshotDir: filepath.Join(h.ResolvePath(b.ArtifactsDir), "screenshots"),
		BaseURL:       h.config.Target.BaseURL,
		EngineOptions: engineOpts,
		Progress:      h.progress,
	})

	h.Logger.Info("Running workflows",
		logging.String("base_url", h.config.Target.BaseURL),
		logging.Strings("workflows", pages.Names(workflows)))

	rep, err := suite.Run(ctx, workflows)
	if err != nil {
		return rep, err
	}

	if err := report.WriteText(h.out, rep); err != nil {
		h.Logger.Warn("Failed to print summary", logging.Error(err))
	}

	written, err := report.Export(rep, report.Options{
		Dir:         h.ResolvePath(h.config.Report.Dir),
		Formats:     h.config.Report.Formats,
		MetricsFile: h.ResolvePath(h.config.Report.MetricsFile),
	})
	for _, path := range written {
		h.Logger.Info("Report written", logging.String("path", path))
	}
	if err != nil {
		return rep, err
	}

	return rep, rep.Err()
}
