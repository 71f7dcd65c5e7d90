package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/formcheck/internal/driver"
	"github.com/user/formcheck/internal/tui"
)

var installBrowser string

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the Playwright driver and browser",
	Long: `Download the Playwright driver and the browser used by run. Runs
install on demand too unless browser.skip_install is set; this command is for
provisioning CI images ahead of time.`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().StringVar(&installBrowser, "browser", "", "Browser engine to install (default from config)")
}

func runInstall(cmd *cobra.Command, args []string) error {
	engine := installBrowser
	if engine == "" {
		cfg, err := loadConfig(nil)
		if err != nil {
			return HandleCommandError(err, nil, false)
		}
		engine = cfg.Browser.Engine
	}

	progress := tui.NewSimpleProgress("formcheck install")
	progress.SetWriter(cmd.OutOrStdout())
	progress.Start()
	progress.Step("Installing Playwright and " + engine)

	if err := driver.Install(engine); err != nil {
		return HandleCommandError(err, progress, true)
	}
	progress.Success("Browser installed")
	return nil
}
