package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/user/formcheck/internal/errors"
)

// EnvPrefix prefixes every environment variable the loader reads
const EnvPrefix = "FORMCHECK"

// Defaults for the Guru99 demo application
const (
	DefaultBaseURL   = "https://demo.guru99.com/V4"
	DefaultSignupURL = "https://demo.guru99.com/"
	DefaultEngine    = "chromium"
	DefaultTimeout   = 10
)

var (
	validEngines = map[string]bool{"chromium": true, "firefox": true, "webkit": true}
	validFormats = map[string]bool{"text": true, "json": true, "html": true}
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Loader{v: v}
}

// Load reads every file source into the loader's viper instance.
// Precedence: CLI > <work_dir>/.formcheck/config.yaml > ~/.formcheck.yaml > Environment > Defaults
func (l *Loader) Load(workDir string, cliOverrides map[string]interface{}) (*viper.Viper, error) {
	if err := l.loadGlobalConfig(); err != nil {
		return nil, err
	}

	if err := l.loadProjectConfig(workDir); err != nil {
		return nil, err
	}

	for key, value := range cliOverrides {
		if value != nil {
			l.v.Set(key, value)
		}
	}

	return l.v, nil
}

// loadGlobalConfig loads configuration from ~/.formcheck.yaml
func (l *Loader) loadGlobalConfig() error {
	globalConfig, err := GlobalConfigPath()
	if err != nil {
		return nil // Not a fatal error
	}

	if !ConfigExists(globalConfig) {
		return nil
	}

	l.v.SetConfigFile(globalConfig)
	if err := l.v.ReadInConfig(); err != nil {
		return errors.NewConfigFileError(globalConfig, err)
	}

	return nil
}

// loadProjectConfig merges configuration from <work_dir>/.formcheck/config.yaml
func (l *Loader) loadProjectConfig(workDir string) error {
	configPath := ProjectConfigPath(workDir)
	if !ConfigExists(configPath) {
		return nil
	}

	l.v.SetConfigFile(configPath)
	if err := l.v.MergeInConfig(); err != nil {
		return errors.NewConfigFileError(configPath, err)
	}

	return nil
}

// LoadConfig loads, defaults and validates the full configuration
func LoadConfig(workDir string, cliOverrides map[string]interface{}) (*GlobalConfig, error) {
	loader := NewLoader()

	v, err := loader.Load(workDir, cliOverrides)
	if err != nil {
		return nil, err
	}

	settings := v.AllSettings()
	for key, value := range cliOverrides {
		if value != nil {
			setNested(settings, key, value)
		}
	}

	cfg := &GlobalConfig{}
	decoderConfig := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           cfg,
		TagName:          "mapstructure",
		Squash:           true,
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, errors.NewConfigFileError(ProjectConfigPath(workDir), err)
	}

	if cfg.WorkDir == "" {
		cfg.WorkDir = workDir
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with every default applied
func DefaultConfig() *GlobalConfig {
	cfg := &GlobalConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *GlobalConfig) {
	if cfg.Version == 0 {
		cfg.Version = CurrentConfigVersion
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	if cfg.Target.BaseURL == "" {
		cfg.Target.BaseURL = DefaultBaseURL
	}
	if cfg.Target.SignupURL == "" {
		cfg.Target.SignupURL = DefaultSignupURL
	}
	if cfg.Browser.Engine == "" {
		cfg.Browser.Engine = DefaultEngine
	}
	if cfg.Browser.Headless == nil {
		cfg.Browser.Headless = BoolPtr(true)
	}
	if cfg.Browser.IgnoreUncaughtExceptions == nil {
		cfg.Browser.IgnoreUncaughtExceptions = BoolPtr(true)
	}
	if cfg.Browser.Timeout == 0 {
		cfg.Browser.Timeout = DefaultTimeout
	}
	if cfg.Browser.Viewport.Width == 0 {
		cfg.Browser.Viewport.Width = 1280
	}
	if cfg.Browser.Viewport.Height == 0 {
		cfg.Browser.Viewport.Height = 720
	}
	if cfg.Browser.ArtifactsDir == "" {
		cfg.Browser.ArtifactsDir = filepath.Join(".formcheck", "artifacts")
	}
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = filepath.Join(".formcheck", "reports")
	}
	if len(cfg.Report.Formats) == 0 {
		cfg.Report.Formats = []string{"text"}
	}
	if cfg.Run.Parallel == 0 {
		cfg.Run.Parallel = 1
	}
	if cfg.Logging.LogDir == "" {
		cfg.Logging.LogDir = filepath.Join(".formcheck", "logs")
	}
	if cfg.Logging.FileLevel == "" {
		cfg.Logging.FileLevel = "info"
	}
	if cfg.Logging.ConsoleLevel == "" {
		cfg.Logging.ConsoleLevel = "info"
	}
}

// applyEnvOverrides fills fields that no file or flag set from FORMCHECK_*
// variables. It runs before defaults so the environment sits below files.
func applyEnvOverrides(cfg *GlobalConfig) error {
	if cfg.Target.BaseURL == "" {
		cfg.Target.BaseURL = os.Getenv(EnvPrefix + "_BASE_URL")
	}
	if cfg.Target.SignupURL == "" {
		cfg.Target.SignupURL = os.Getenv(EnvPrefix + "_SIGNUP_URL")
	}
	if cfg.Browser.Engine == "" {
		cfg.Browser.Engine = os.Getenv(EnvPrefix + "_BROWSER")
	}
	if cfg.Run.FixturesDir == "" {
		cfg.Run.FixturesDir = os.Getenv(EnvPrefix + "_FIXTURES_DIR")
	}
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = os.Getenv(EnvPrefix + "_REPORT_DIR")
	}

	if cfg.Browser.Headless == nil {
		b, err := getEnvBool(EnvPrefix + "_HEADLESS")
		if err != nil {
			return err
		}
		cfg.Browser.Headless = b
	}
	if cfg.Browser.IgnoreUncaughtExceptions == nil {
		b, err := getEnvBool(EnvPrefix + "_IGNORE_UNCAUGHT_EXCEPTIONS")
		if err != nil {
			return err
		}
		cfg.Browser.IgnoreUncaughtExceptions = b
	}

	var err error
	if cfg.Browser.Timeout == 0 {
		if cfg.Browser.Timeout, err = getEnvInt(EnvPrefix+"_TIMEOUT", 0); err != nil {
			return err
		}
	}
	if cfg.Run.Parallel == 0 {
		if cfg.Run.Parallel, err = getEnvInt(EnvPrefix+"_PARALLEL", 0); err != nil {
			return err
		}
	}
	if cfg.Retries.RunMode == 0 {
		if cfg.Retries.RunMode, err = getEnvInt(EnvPrefix+"_RETRIES_RUN_MODE", 0); err != nil {
			return err
		}
	}
	if cfg.Retries.OpenMode == 0 {
		if cfg.Retries.OpenMode, err = getEnvInt(EnvPrefix+"_RETRIES_OPEN_MODE", 0); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks value ranges and enumerations
func Validate(cfg *GlobalConfig) error {
	for key, raw := range map[string]string{
		"target.base_url":   cfg.Target.BaseURL,
		"target.signup_url": cfg.Target.SignupURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.NewInvalidConfigValueError(key, raw, "must be an absolute http(s) URL")
		}
	}

	if !validEngines[cfg.Browser.Engine] {
		return errors.NewInvalidConfigValueError("browser.engine", cfg.Browser.Engine, "must be one of: chromium, firefox, webkit")
	}
	if cfg.Browser.Timeout < 0 {
		return errors.NewInvalidConfigValueError("browser.timeout", cfg.Browser.Timeout, "must be a positive number of seconds")
	}
	if cfg.Browser.SlowMo < 0 {
		return errors.NewInvalidConfigValueError("browser.slow_mo", cfg.Browser.SlowMo, "must not be negative")
	}
	if cfg.Retries.RunMode < 0 {
		return errors.NewInvalidConfigValueError("retries.run_mode", cfg.Retries.RunMode, "must not be negative")
	}
	if cfg.Retries.OpenMode < 0 {
		return errors.NewInvalidConfigValueError("retries.open_mode", cfg.Retries.OpenMode, "must not be negative")
	}
	if cfg.Run.Parallel < 1 {
		return errors.NewInvalidConfigValueError("run.parallel", cfg.Run.Parallel, "must be at least 1")
	}
	for _, f := range cfg.Report.Formats {
		if !validFormats[f] {
			return errors.NewInvalidConfigValueError("report.formats", f, "must be one of: text, json, html")
		}
	}

	return nil
}

func setNested(m map[string]interface{}, dottedKey string, value interface{}) {
	parts := strings.Split(dottedKey, ".")
	if len(parts) == 1 {
		m[dottedKey] = value
		return
	}

	current := m
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]interface{}); ok {
			current = next
		} else {
			newMap := make(map[string]interface{})
			current[part] = newMap
			current = newMap
		}
	}
	current[parts[len(parts)-1]] = value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.NewInvalidConfigValueError(key, val, "must be an integer")
	}
	return i, nil
}

func getEnvBool(key string) (*bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, errors.NewInvalidConfigValueError(key, val, "must be true or false")
	}
	return &b, nil
}
