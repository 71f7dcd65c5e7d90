//go:build e2e

package handlers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/formcheck/internal/config"
	"github.com/user/formcheck/internal/driver"
	"github.com/user/formcheck/internal/pages"
)

// liveConfig targets the real demo site, or FORMCHECK_BASE_URL when set
func liveConfig(t *testing.T) *config.GlobalConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.WorkDir = t.TempDir()
	if url := os.Getenv("FORMCHECK_BASE_URL"); url != "" {
		cfg.Target.BaseURL = url
	}
	cfg.Browser.SkipInstall = os.Getenv("FORMCHECK_SKIP_INSTALL") != ""
	cfg.Browser.Screenshots = true
	cfg.Retries.RunMode = 1
	cfg.Report.Formats = []string{"text", "json", "html"}
	return cfg
}

func TestLive_LoginPageLoads(t *testing.T) {
	cfg := liveConfig(t)
	h := NewRunHandler(cfg, nil)

	factory, err := driver.NewPlaywrightFactory(h.DriverOptions())
	require.NoError(t, err, "Failed to start browser")
	defer factory.Close()

	ctx, cancel := context.WithTimeout(t.Context(), time.Minute)
	defer cancel()

	session, err := factory.NewSession(ctx)
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Navigate(ctx, pages.LoginURL(cfg.Target.BaseURL)))

	title, err := session.Title(ctx)
	require.NoError(t, err)
	assert.Contains(t, title, "Guru99 Bank")

	el, err := session.Locate(ctx, pages.LoginUserID)
	require.NoError(t, err)
	visible, err := session.WaitVisible(ctx, el, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, visible, "User-ID input should be visible")
}

func TestLive_SigninWorkflows(t *testing.T) {
	cfg := liveConfig(t)
	cfg.Run.Workflows = []string{pages.WorkflowSignin, pages.WorkflowSigninInvalid}

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Minute)
	defer cancel()

	rep, err := NewRunHandler(cfg, nil, WithOutput(&out)).Handle(ctx)
	t.Log(out.String())
	require.NotNil(t, rep, "Run should produce a report")
	assert.NoError(t, err)
	assert.True(t, rep.Green(), "Sign-in workflows should pass against the live site")

	reports := filepath.Join(cfg.WorkDir, ".formcheck", "reports")
	assert.FileExists(t, filepath.Join(reports, "report.json"))
	assert.FileExists(t, filepath.Join(reports, "report.html"))
}
