package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/formcheck/internal/handlers"
	"github.com/user/formcheck/internal/logging"
)

var scheduleCron string

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the workflows on a cron schedule",
	Long: `Run the suite every time the cron expression fires until interrupted.
Accepts five-field expressions and descriptors such as @hourly or @every 30m.
A tick that fires while the previous run is still going is skipped.

Each run writes its reports and metrics file like run does; pair
--metrics-file with the node exporter textfile collector to alert on red runs.`,
	Example: `  formcheck schedule --cron "*/30 * * * *" --format json --metrics-file /var/lib/node_exporter/formcheck.prom`,
	RunE:    runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "Cron expression (default schedule.cron from config)")
	addRunFlags(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	overrides, err := runOverrides(cmd)
	if err != nil {
		return err
	}
	if scheduleCron != "" {
		overrides["schedule.cron"] = scheduleCron
	}

	cfg, err := loadConfig(overrides)
	if err != nil {
		return HandleCommandError(err, nil, false)
	}

	logger, err := InitLogger(cfg, debugFlag, verboseFlag)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting formcheck schedule",
		logging.String("cron", cfg.Schedule.Cron),
		logging.String("base_url", cfg.Target.BaseURL),
	)

	handler := handlers.NewScheduleHandler(cfg, logger, handlers.WithOutput(cmd.OutOrStdout()))
	return HandleCommandError(handler.Handle(cmd.Context()), nil, false)
}
