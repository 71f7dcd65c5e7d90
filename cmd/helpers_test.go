package cmd

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/user/formcheck/internal/config"
	appErrors "github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/tui"
)

// TestInitLogger_WorkDir tests that relative log directories land in the work dir
func TestInitLogger_WorkDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WorkDir = t.TempDir()

	logger, err := InitLogger(cfg, false, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer logger.Sync()

	if _, err := os.Stat(filepath.Join(cfg.WorkDir, ".formcheck", "logs")); os.IsNotExist(err) {
		t.Error("Expected .formcheck/logs directory to be created in the work dir")
	}
}

// TestInitLogger_AbsoluteLogDir tests that absolute log directories are kept
func TestInitLogger_AbsoluteLogDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WorkDir = t.TempDir()
	cfg.Logging.LogDir = filepath.Join(t.TempDir(), "elsewhere")

	logger, err := InitLogger(cfg, true, true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer logger.Sync()

	if _, err := os.Stat(cfg.Logging.LogDir); os.IsNotExist(err) {
		t.Errorf("Expected %s to be created", cfg.Logging.LogDir)
	}
}

func TestHandleCommandError_Nil(t *testing.T) {
	if err := HandleCommandError(nil, nil, false); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

// TestHandleCommandError_TypedError tests that typed errors print their user
// message once and keep their exit code
func TestHandleCommandError_TypedError(t *testing.T) {
	var stderr bytes.Buffer
	original := appErrors.NewInvalidConfigValueError("browser.engine", "opera", "must be chromium, firefox or webkit")

	err := handleCommandError(&stderr, original, nil, false)

	if !strings.Contains(stderr.String(), "browser.engine") {
		t.Errorf("Expected user message on stderr, got %q", stderr.String())
	}
	if !reported(err) {
		t.Error("Expected error to be marked as reported")
	}
	if code := appErrors.ExitCodeOf(err); code != appErrors.ExitConfigError {
		t.Errorf("Expected exit code %d, got %d", appErrors.ExitConfigError, code)
	}
	var invalid *appErrors.InvalidConfigValueError
	if !stderrors.As(err, &invalid) {
		t.Error("Expected original error to stay reachable")
	}
}

// TestHandleCommandError_WithProgress tests that the progress UI shows errors
func TestHandleCommandError_WithProgress(t *testing.T) {
	var out, stderr bytes.Buffer
	progress := tui.NewSimpleProgress("test")
	progress.SetWriter(&out)

	err := handleCommandError(&stderr, appErrors.NewDriverError("launching browser", stderrors.New("no chromium")), progress, true)

	if stderr.Len() != 0 {
		t.Errorf("Expected nothing on stderr, got %q", stderr.String())
	}
	if !strings.Contains(out.String(), "no chromium") {
		t.Errorf("Expected cause in progress output, got %q", out.String())
	}
	if code := appErrors.ExitCodeOf(err); code != appErrors.ExitDriverError {
		t.Errorf("Expected exit code %d, got %d", appErrors.ExitDriverError, code)
	}
}

// TestHandleCommandError_PlainError tests that unknown errors propagate unchanged
func TestHandleCommandError_PlainError(t *testing.T) {
	var stderr bytes.Buffer
	original := stderrors.New("boom")

	err := handleCommandError(&stderr, original, nil, false)

	if err != original {
		t.Errorf("Expected the original error, got %v", err)
	}
	if reported(err) {
		t.Error("Expected plain error to be left for Execute to print")
	}
	if appErrors.ExitCodeOf(err) != appErrors.ExitGeneralError {
		t.Errorf("Expected general exit code, got %d", appErrors.ExitCodeOf(err))
	}
}

func newRunFlagsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "run"}
	addRunFlags(c)
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	return c
}

func TestRunOverrides_OnlyChangedFlags(t *testing.T) {
	c := newRunFlagsCmd(t)
	overrides, err := runOverrides(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(overrides) != 0 {
		t.Errorf("Expected no overrides without flags, got %v", overrides)
	}
}

func TestRunOverrides(t *testing.T) {
	c := newRunFlagsCmd(t,
		"--workflow", "signin", "--workflow", "add-customer",
		"--base-url", "http://localhost:8080/V4",
		"--headless=false",
		"--timeout", "30",
		"--retries", "2",
		"--format", "text,json",
		"--ignore-uncaught-exceptions=false",
	)

	overrides, err := runOverrides(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := map[string]interface{}{
		"run.workflows":                      []string{"signin", "add-customer"},
		"target.base_url":                    "http://localhost:8080/V4",
		"browser.headless":                   false,
		"browser.timeout":                    30,
		"retries.run_mode":                   2,
		"retries.open_mode":                  2,
		"report.formats":                     []string{"text", "json"},
		"browser.ignore_uncaught_exceptions": false,
	}
	if diff := cmp.Diff(want, overrides); diff != "" {
		t.Errorf("Overrides mismatch (-want +got):\n%s", diff)
	}
}

// TestRunOverrides_ResolveConfig tests that flag overrides win over defaults
func TestRunOverrides_ResolveConfig(t *testing.T) {
	c := newRunFlagsCmd(t, "--headless=false", "--parallel", "3", "--retries", "1", "--video")
	overrides, err := runOverrides(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cfg, err := config.LoadConfig(t.TempDir(), overrides)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Browser.IsHeadless() {
		t.Error("Expected headed browser")
	}
	if cfg.Run.GetParallel() != 3 {
		t.Errorf("Expected parallel 3, got %d", cfg.Run.GetParallel())
	}
	if cfg.Retries.For(false) != 1 {
		t.Errorf("Expected 1 retry in open mode, got %d", cfg.Retries.For(false))
	}
	if !cfg.Browser.Videos {
		t.Error("Expected video recording to be enabled")
	}
}

// TestConfigInit tests writing and refusing to overwrite the project config
func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	oldWorkDir := workDirFlag
	workDirFlag = dir
	defer func() {
		workDirFlag = oldWorkDir
		configInitForce = false
	}()

	var out bytes.Buffer
	configInitCmd.SetOut(&out)
	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	path := config.ProjectConfigPath(dir)
	if !config.ConfigExists(path) {
		t.Fatalf("Expected %s to be written", path)
	}

	err := runConfigInit(configInitCmd, nil)
	if appErrors.ExitCodeOf(err) != appErrors.ExitConfigError {
		t.Errorf("Expected config error for existing file, got %v", err)
	}

	configInitForce = true
	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Errorf("Expected --force to overwrite, got %v", err)
	}

	cfg, err := config.LoadConfig(dir, nil)
	if err != nil {
		t.Fatalf("Expected written config to load, got %v", err)
	}
	if cfg.Target.BaseURL != config.DefaultBaseURL {
		t.Errorf("Expected default base URL, got %s", cfg.Target.BaseURL)
	}
}
