package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/formcheck/internal/handlers"
	"github.com/user/formcheck/internal/logging"
	"github.com/user/formcheck/internal/tui"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the form validation workflows",
	Long: `Run the built-in workflows against the target site and report every
validation scenario.

Each workflow gets its own browser session. A workflow that aborts, because a
page never became ready or the browser failed, is retried on a fresh session
up to --retries times.

Exit codes: 0 when every workflow passed, 3 when any failed or aborted,
2 for configuration mistakes, 5 for browser failures, 6 for file errors.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

// addRunFlags registers the flags shared by run and schedule
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("workflow", nil, "Workflow to run (repeatable, default all)")
	f.String("base-url", "", "Internet banking root URL")
	f.String("signup-url", "", "Signup page URL (empty skips the signup workflow)")
	f.Bool("headless", true, "Run the browser without a window")
	f.String("browser", "", "Browser engine: chromium, firefox or webkit")
	f.Int("timeout", 0, "Wait budget in seconds")
	f.Int("parallel", 0, "Workflows run at the same time")
	f.Int("retries", 0, "Whole-workflow retries after an abort")
	f.String("fixtures", "", "Directory with login and customer fixture files")
	f.String("report-dir", "", "Directory for report files")
	f.StringSlice("format", nil, "Report formats: text, json, html")
	f.String("metrics-file", "", "Write a Prometheus textfile here")
	f.Bool("screenshots", false, "Capture a screenshot of failed workflows")
	f.Bool("video", false, "Record a video of every session")
	f.Bool("ignore-uncaught-exceptions", true, "Ignore script errors thrown by the page")
}

// flagKeys maps run flags to configuration keys
var flagKeys = map[string]string{
	"workflow":                   "run.workflows",
	"base-url":                   "target.base_url",
	"signup-url":                 "target.signup_url",
	"headless":                   "browser.headless",
	"browser":                    "browser.engine",
	"timeout":                    "browser.timeout",
	"parallel":                   "run.parallel",
	"fixtures":                   "run.fixtures_dir",
	"report-dir":                 "report.dir",
	"format":                     "report.formats",
	"metrics-file":               "report.metrics_file",
	"screenshots":                "browser.screenshots",
	"video":                      "browser.videos",
	"ignore-uncaught-exceptions": "browser.ignore_uncaught_exceptions",
}

// runOverrides returns configuration overrides for the flags the user set.
// Unset flags leave file and environment values alone.
func runOverrides(cmd *cobra.Command) (map[string]interface{}, error) {
	f := cmd.Flags()
	overrides := make(map[string]interface{})

	for name, key := range flagKeys {
		if !f.Changed(name) {
			continue
		}
		var (
			value interface{}
			err   error
		)
		switch f.Lookup(name).Value.Type() {
		case "bool":
			value, err = f.GetBool(name)
		case "int":
			value, err = f.GetInt(name)
		case "stringSlice":
			value, err = f.GetStringSlice(name)
		default:
			value, err = f.GetString(name)
		}
		if err != nil {
			return nil, err
		}
		overrides[key] = value
	}

	if f.Changed("retries") {
		retries, err := f.GetInt("retries")
		if err != nil {
			return nil, err
		}
		overrides["retries.run_mode"] = retries
		overrides["retries.open_mode"] = retries
	}
	return overrides, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	overrides, err := runOverrides(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(overrides)
	if err != nil {
		return HandleCommandError(err, nil, false)
	}

	logger, err := InitLogger(cfg, debugFlag, verboseFlag)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting formcheck run",
		logging.String("work_dir", cfg.WorkDir),
		logging.String("base_url", cfg.Target.BaseURL),
		logging.Bool("headless", cfg.Browser.IsHeadless()),
	)

	opts := []handlers.RunOption{handlers.WithOutput(cmd.OutOrStdout())}
	showProgress := !verboseFlag
	if showProgress {
		progress := tui.NewProgress("formcheck")
		progress.SetWriter(cmd.OutOrStdout())
		progress.Start()
		opts = append(opts, handlers.WithProgress(progress))
	}

	rep, err := handlers.NewRunHandler(cfg, logger, opts...).Handle(cmd.Context())
	if rep != nil {
		logger.Info("Run finished",
			logging.String("run_id", rep.RunID),
			logging.Bool("green", rep.Green()),
			logging.Duration("duration", rep.Duration()),
		)
	}
	return HandleCommandError(err, nil, false)
}
