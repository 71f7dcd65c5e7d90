package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Saver writes configuration files in YAML
type Saver struct{}

// NewSaver creates a new configuration saver
func NewSaver() *Saver {
	return &Saver{}
}

// GlobalConfigPath returns ~/.formcheck.yaml
func GlobalConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".formcheck.yaml"), nil
}

// ProjectConfigPath returns <work_dir>/.formcheck/config.yaml
func ProjectConfigPath(workDir string) string {
	if workDir == "" {
		workDir = "."
	}
	return filepath.Join(workDir, ".formcheck", "config.yaml")
}

// ConfigExists reports whether a regular file exists at path
func ConfigExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GlobalConfigExists reports whether ~/.formcheck.yaml exists
func GlobalConfigExists() bool {
	path, err := GlobalConfigPath()
	if err != nil {
		return false
	}
	return ConfigExists(path)
}

// ProjectConfigExists reports whether the project config exists
func ProjectConfigExists(workDir string) bool {
	return ConfigExists(ProjectConfigPath(workDir))
}

// SaveGlobalConfig writes cfg to ~/.formcheck.yaml
func (s *Saver) SaveGlobalConfig(cfg *GlobalConfig) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return s.save(path, cfg)
}

// SaveProjectConfig writes cfg to <work_dir>/.formcheck/config.yaml
func (s *Saver) SaveProjectConfig(workDir string, cfg *GlobalConfig) error {
	return s.save(ProjectConfigPath(workDir), cfg)
}

// Marshal renders cfg as YAML without writing it
func (s *Saver) Marshal(cfg *GlobalConfig) ([]byte, error) {
	out := *cfg
	if out.Version == 0 {
		out.Version = CurrentConfigVersion
	}
	// work_dir is a runtime flag, never persisted
	out.WorkDir = ""
	return yaml.Marshal(&out)
}

func (s *Saver) save(path string, cfg *GlobalConfig) error {
	data, err := s.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
