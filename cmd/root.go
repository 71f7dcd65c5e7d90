package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/report"
)

var (
	debugFlag   bool
	verboseFlag bool
	workDirFlag string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "formcheck",
	Short: "Browser-driven form validation suite",
	Long: `Drive a real browser through web forms and check that every field
rejects bad input with the right message, accepts good input and that the
confirmation page shows what was submitted.

Workflows target the Guru99 banking demo by default: manager sign-in, email
signup and the new customer form.`,
	Version:       report.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code carried by the error
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !reported(err) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", errors.UserMessage(err))
		}
		os.Exit(int(errors.ExitCodeOf(err)))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show detailed log output instead of progress UI")
	rootCmd.PersistentFlags().StringVar(&workDirFlag, "work-dir", ".", "Directory holding .formcheck/ config, logs and reports")
}
