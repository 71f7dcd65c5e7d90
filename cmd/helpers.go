package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/user/formcheck/internal/config"
	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/logging"
	"github.com/user/formcheck/internal/tui"
)

// InitLogger creates the logger for a CLI command from the logging section.
// The log directory is anchored at the work directory when relative. With
// verbose set, log lines go to the console instead of the progress UI.
// The caller is responsible for calling logger.Sync() when done.
func InitLogger(cfg *config.GlobalConfig, debug bool, verbose bool) (*logging.Logger, error) {
	logDir := cfg.Logging.LogDir
	if logDir == "" {
		logDir = config.DefaultConfig().Logging.LogDir
	}
	if cfg.WorkDir != "" && !filepath.IsAbs(logDir) {
		logDir = filepath.Join(cfg.WorkDir, logDir)
	}

	consoleLevel := logging.LevelFromString(cfg.Logging.ConsoleLevel)
	if debug {
		consoleLevel = logging.LevelFromString("debug")
	}

	logCfg := &logging.Config{
		LogDir:         logDir,
		FileLevel:      logging.LevelFromString(cfg.Logging.FileLevel),
		ConsoleLevel:   consoleLevel,
		EnableCaller:   debug,
		ConsoleEnabled: verbose,
	}

	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, errors.WrapError(err, "failed to initialize logger", errors.ExitIOError)
	}
	return logger, nil
}

// reportedError marks an error whose message was already shown to the user
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) bool {
	var r reportedError
	return stderrors.As(err, &r)
}

// HandleCommandError shows err once, through the progress UI when one is
// active or on stderr otherwise, and returns it marked as reported so the
// exit code still flows to Execute.
func HandleCommandError(err error, progress *tui.SimpleProgress, showProgress bool) error {
	return handleCommandError(os.Stderr, err, progress, showProgress)
}

func handleCommandError(stderr io.Writer, err error, progress *tui.SimpleProgress, showProgress bool) error {
	if err == nil {
		return nil
	}

	// Typed errors embed *FormCheckError, so match on the promoted method
	var appErr interface{ GetUserMessage() string }
	if stderrors.As(err, &appErr) {
		if showProgress && progress != nil {
			progress.Info(appErr.GetUserMessage())
			progress.Failed(nil)
		} else {
			fmt.Fprintf(stderr, "%s\n", appErr.GetUserMessage())
		}
		return reportedError{err}
	}

	if showProgress && progress != nil {
		progress.Failed(err)
		return reportedError{err}
	}
	return err
}

// loadConfig resolves the configuration for the work directory with the
// persistent flags and the given overrides applied on top
func loadConfig(overrides map[string]interface{}) (*config.GlobalConfig, error) {
	if overrides == nil {
		overrides = make(map[string]interface{})
	}
	if debugFlag {
		overrides["debug"] = true
	}
	return config.LoadConfig(workDirFlag, overrides)
}
