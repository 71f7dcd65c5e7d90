package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/formcheck/internal/driver"
	"github.com/user/formcheck/internal/engine"
	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/logging"
	"github.com/user/formcheck/internal/tui"
	"github.com/user/formcheck/internal/worker_pool"
)

// SuiteOptions configures a suite run
type SuiteOptions struct {
	// Parallel is the number of workflows run at once, each on its own
	// session. Values below one mean one.
	Parallel int
	// Retries re-runs a failed workflow on a fresh session
	Retries       int
	Screenshots   bool
	ScreenshotDir string
	BaseURL       string
	EngineOptions []engine.Option
	Progress      tui.ProgressReporter
}

// Suite runs workflows on independent sessions from a driver factory
type Suite struct {
	factory driver.Factory
	logger  *logging.Logger
	opts    SuiteOptions
}

// NewSuite creates a suite
func NewSuite(factory driver.Factory, logger *logging.Logger, opts SuiteOptions) *Suite {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.Progress == nil {
		opts.Progress = &tui.NopProgressReporter{}
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Suite{factory: factory, logger: logger, opts: opts}
}

// Run executes workflows and returns the aggregated report. A configuration
// error in any workflow, or cancellation, is returned as an error; every
// other failure is part of the report.
func (s *Suite) Run(ctx context.Context, workflows []*Workflow) (*SuiteReport, error) {
	report := &SuiteReport{
		RunID:     uuid.NewString(),
		BaseURL:   s.opts.BaseURL,
		StartedAt: time.Now(),
		Workflows: make([]*WorkflowReport, len(workflows)),
	}

	logger := s.logger.With(logging.String("run_id", report.RunID))
	logger.Info("Starting suite",
		logging.Int("workflows", len(workflows)),
		logging.Int("parallel", s.opts.Parallel),
		logging.Int("retries", s.opts.Retries))

	for _, wf := range workflows {
		s.opts.Progress.AddWorkflow(wf.Name, wf.Description)
	}

	pool := worker_pool.NewWorkerPool[*WorkflowReport](s.opts.Parallel)
	tasks := make([]worker_pool.Task[*WorkflowReport], len(workflows))
	for i, wf := range workflows {
		tasks[i] = func(ctx context.Context) (*WorkflowReport, error) {
			return s.runWithRetries(ctx, logger, wf)
		}
	}

	var firstErr error
	for i, res := range pool.Run(ctx, tasks) {
		report.Workflows[i] = res.Value
		if res.Error != nil && firstErr == nil {
			firstErr = res.Error
		}
		if report.Workflows[i] == nil {
			report.Workflows[i] = &WorkflowReport{
				Workflow:    workflows[i].Name,
				Description: workflows[i].Description,
				Aborted:     true,
				AbortReason: "not run",
			}
		}
	}
	report.FinishedAt = time.Now()

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if firstErr != nil {
		return report, firstErr
	}

	c := report.Counts()
	logger.Info("Suite finished",
		logging.Bool("green", report.Green()),
		logging.Int("passed", c.Passed),
		logging.Int("failed", c.Failed),
		logging.Int("aborted", c.Aborted),
		logging.Duration("duration", report.Duration()))

	return report, nil
}

// runWithRetries runs wf until it passes or attempts run out. Every attempt
// gets a fresh session and the last attempt is reported.
func (s *Suite) runWithRetries(ctx context.Context, logger *logging.Logger, wf *Workflow) (*WorkflowReport, error) {
	var rep *WorkflowReport
	attempts := s.opts.Retries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		s.opts.Progress.StartWorkflow(wf.Name, attempt)
		wfLogger := logger.ForWorkflow(wf.Name, attempt)

		var err error
		rep, err = s.runOnce(ctx, wfLogger, wf)
		rep.Attempt = attempt
		if err != nil {
			if isHardError(ctx, err) {
				s.opts.Progress.AbortWorkflow(wf.Name, err.Error())
				return rep, err
			}
			rep.Aborted = true
			rep.AbortReason = err.Error()
			wfLogger.Warn("Workflow attempt errored", logging.Error(err))
		}

		if rep.Passed() {
			passed, failed := rep.Counts()
			s.opts.Progress.CompleteWorkflow(wf.Name, passed, passed+failed)
			return rep, nil
		}
		if attempt < attempts {
			wfLogger.Info("Retrying workflow on a fresh session")
		}
	}

	passed, failed := rep.Counts()
	if rep.Aborted {
		s.opts.Progress.AbortWorkflow(wf.Name, rep.AbortReason)
	} else {
		s.opts.Progress.FailWorkflow(wf.Name, passed, passed+failed, fmt.Sprintf("%d scenarios failed", failed))
	}
	return rep, nil
}

func (s *Suite) runOnce(ctx context.Context, logger *logging.Logger, wf *Workflow) (*WorkflowReport, error) {
	session, err := s.factory.NewSession(ctx)
	if err != nil {
		return &WorkflowReport{
			Workflow:    wf.Name,
			Description: wf.Description,
			StartedAt:   time.Now(),
			FinishedAt:  time.Now(),
		}, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("Failed to close session", logging.Error(err))
		}
	}()

	rep, runErr := New(session, logger, s.opts.EngineOptions...).Run(ctx, wf)
	if (runErr != nil || !rep.Passed()) && s.opts.Screenshots {
		rep.Screenshot = s.capture(ctx, logger, session, wf.Name)
	}
	return rep, runErr
}

// capture saves a full-page screenshot of a failed workflow when the session
// supports it
func (s *Suite) capture(ctx context.Context, logger *logging.Logger, session driver.Driver, name string) string {
	shooter, ok := session.(driver.Screenshotter)
	if !ok {
		return ""
	}
	if err := os.MkdirAll(s.opts.ScreenshotDir, 0755); err != nil {
		logger.Warn("Failed to create screenshot directory", logging.Error(err))
		return ""
	}
	file := fmt.Sprintf("%s-%s.png", sanitize(name), time.Now().Format("20060102-150405.000"))
	path := filepath.Join(s.opts.ScreenshotDir, file)
	if err := shooter.Screenshot(ctx, path); err != nil {
		logger.Warn("Failed to capture screenshot", logging.Error(err))
		return ""
	}
	return path
}

// isHardError reports errors that end the whole run: cancellation and
// configuration mistakes, which no retry can fix
func isHardError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.ExitCodeOf(err) == errors.ExitConfigError
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
