package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/formcheck/internal/handlers"
	"github.com/user/formcheck/internal/logging"
)

var listScenarios bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in workflows",
	Long: `List the workflows a run would execute, in run order, with the page
each depends on. Use --scenarios to print every planned validation step.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listScenarios, "scenarios", false, "Print the planned scenarios of each workflow")
	listCmd.Flags().StringSlice("workflow", nil, "Only list these workflows")
}

func runList(cmd *cobra.Command, args []string) error {
	overrides := make(map[string]interface{})
	if cmd.Flags().Changed("workflow") {
		names, _ := cmd.Flags().GetStringSlice("workflow")
		overrides["run.workflows"] = names
	}

	cfg, err := loadConfig(overrides)
	if err != nil {
		return HandleCommandError(err, nil, false)
	}

	handler := handlers.NewListHandler(cfg, logging.NewNopLogger(), cmd.OutOrStdout(), listScenarios)
	return HandleCommandError(handler.Handle(cmd.Context()), nil, false)
}
