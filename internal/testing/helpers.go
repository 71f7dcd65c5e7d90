package testing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Default URLs the simulated site answers on
const (
	TestBaseURL   = "https://demo.guru99.com/V4"
	TestSignupURL = "https://demo.guru99.com/"
)

// NewTestSite returns a simulated site on the default URLs
func NewTestSite() *Site {
	return NewGuru99Site(TestBaseURL, TestSignupURL)
}

// LoginAs drives the login form of a fresh session to the manager page
func LoginAs(t *testing.T, d *FakeDriver, uid, password string) {
	t.Helper()
	ctx := t.Context()

	if err := d.Navigate(ctx, d.site.LoginURL()); err != nil {
		t.Fatalf("Failed to open login page: %v", err)
	}
	for sel, v := range map[string]string{`input[name="uid"]`: uid, `input[name="password"]`: password} {
		el, _ := d.Locate(ctx, sel)
		if err := d.Type(ctx, el, v); err != nil {
			t.Fatalf("Failed to type into %s: %v", sel, err)
		}
	}
	btn, _ := d.Locate(ctx, `input[name="btnLogin"]`)
	if err := d.Click(ctx, btn); err != nil {
		t.Fatalf("Failed to click login: %v", err)
	}
	if url, _ := d.CurrentURL(ctx); url != d.site.ManagerURL() {
		t.Fatalf("Expected manager page after login, got %s", url)
	}
}

// AssertFileExists checks if a file exists at the given path
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist at the given path
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains the expected content
func AssertFileContains(t *testing.T, path, expected string) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), expected) {
		t.Errorf("File %s does not contain expected content.\nExpected substring: %s\nActual content:\n%s",
			path, expected, string(content))
	}
}

// WriteFile writes content under dir, creating parent directories
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	fullPath := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", fullPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
	return fullPath
}
