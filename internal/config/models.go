package config

import (
	"time"
)

// CurrentConfigVersion is written into every saved config file
const CurrentConfigVersion = 1

// BaseConfig holds common configuration for all handlers
type BaseConfig struct {
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir,omitempty"`
	Debug   bool   `mapstructure:"debug" yaml:"debug,omitempty"`
}

// TargetConfig points the suite at the application under test
type TargetConfig struct {
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`     // Internet banking root, e.g. https://demo.guru99.com/V4
	SignupURL string `mapstructure:"signup_url" yaml:"signup_url"` // Page that hands out demo credentials
}

// ViewportConfig is the browser window size in pixels
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// BrowserConfig holds browser driver configuration
type BrowserConfig struct {
	Engine       string         `mapstructure:"engine" yaml:"engine"` // chromium, firefox, webkit
	Headless     *bool          `mapstructure:"headless" yaml:"headless,omitempty"`
	SlowMo       int            `mapstructure:"slow_mo" yaml:"slow_mo,omitempty"` // Milliseconds between actions
	Timeout      int            `mapstructure:"timeout" yaml:"timeout"`          // Wait budget in seconds
	Viewport     ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Screenshots  bool           `mapstructure:"screenshots" yaml:"screenshots"` // Capture failed workflows
	Videos       bool           `mapstructure:"videos" yaml:"videos"`
	ArtifactsDir string         `mapstructure:"artifacts_dir" yaml:"artifacts_dir"`
	SkipInstall  bool           `mapstructure:"skip_install" yaml:"skip_install,omitempty"`

	// IgnoreUncaughtExceptions drops script errors thrown by the page under
	// test instead of failing the next driver call.
	IgnoreUncaughtExceptions *bool `mapstructure:"ignore_uncaught_exceptions" yaml:"ignore_uncaught_exceptions,omitempty"`
}

// RetryConfig holds whole-workflow retry counts. Run mode applies to headless
// runs, open mode to headed ones.
type RetryConfig struct {
	RunMode  int `mapstructure:"run_mode" yaml:"run_mode"`
	OpenMode int `mapstructure:"open_mode" yaml:"open_mode"`
}

// ReportConfig holds report export configuration
type ReportConfig struct {
	Dir         string   `mapstructure:"dir" yaml:"dir"`
	Formats     []string `mapstructure:"formats" yaml:"formats"` // text, json, html
	MetricsFile string   `mapstructure:"metrics_file" yaml:"metrics_file,omitempty"`
}

// RunOptions selects what a suite run executes
type RunOptions struct {
	FixturesDir string   `mapstructure:"fixtures_dir" yaml:"fixtures_dir,omitempty"`
	Workflows   []string `mapstructure:"workflows" yaml:"workflows,omitempty"` // Empty means every built-in workflow
	Parallel    int      `mapstructure:"parallel" yaml:"parallel"`
}

// ScheduleConfig holds configuration for the schedule command
type ScheduleConfig struct {
	Cron string `mapstructure:"cron" yaml:"cron,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	LogDir       string `mapstructure:"log_dir" yaml:"log_dir,omitempty"`
	FileLevel    string `mapstructure:"file_level" yaml:"file_level,omitempty"`       // debug, info, warn, error
	ConsoleLevel string `mapstructure:"console_level" yaml:"console_level,omitempty"` // debug, info, warn, error
}

// GlobalConfig holds top-level configuration from .formcheck/config.yaml
type GlobalConfig struct {
	BaseConfig `mapstructure:",squash" yaml:",inline"`
	Version    int            `mapstructure:"version" yaml:"version"`
	Target     TargetConfig   `mapstructure:"target" yaml:"target"`
	Browser    BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Retries    RetryConfig    `mapstructure:"retries" yaml:"retries"`
	Report     ReportConfig   `mapstructure:"report" yaml:"report"`
	Run        RunOptions     `mapstructure:"run" yaml:"run"`
	Schedule   ScheduleConfig `mapstructure:"schedule" yaml:"schedule,omitempty"`
	Logging    LoggingConfig  `mapstructure:"logging" yaml:"logging,omitempty"`
}

// IsHeadless reports whether the browser runs without a window (default true)
func (c *BrowserConfig) IsHeadless() bool {
	if c.Headless == nil {
		return true
	}
	return *c.Headless
}

// ShouldIgnoreUncaughtExceptions reports whether page script errors are
// dropped (default true, the demo site throws from its ad scripts)
func (c *BrowserConfig) ShouldIgnoreUncaughtExceptions() bool {
	if c.IgnoreUncaughtExceptions == nil {
		return true
	}
	return *c.IgnoreUncaughtExceptions
}

// GetTimeout returns the wait budget as a time.Duration
func (c *BrowserConfig) GetTimeout() time.Duration {
	if c.Timeout == 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// GetSlowMo returns the delay between driver actions
func (c *BrowserConfig) GetSlowMo() time.Duration {
	return time.Duration(c.SlowMo) * time.Millisecond
}

// For returns the retry count for the given mode
func (c *RetryConfig) For(headless bool) int {
	if headless {
		return c.RunMode
	}
	return c.OpenMode
}

// HasFormat reports whether the named export format is enabled
func (c *ReportConfig) HasFormat(name string) bool {
	for _, f := range c.Formats {
		if f == name {
			return true
		}
	}
	return false
}

// GetParallel returns the number of concurrent sessions (at least one)
func (c *RunOptions) GetParallel() int {
	if c.Parallel < 1 {
		return 1
	}
	return c.Parallel
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}
