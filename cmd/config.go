package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/formcheck/internal/config"
	"github.com/user/formcheck/internal/errors"
)

var (
	configInitForce  bool
	configInitGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create formcheck configuration",
	Long: `Inspect and bootstrap configuration.

Configuration is merged from, highest first:
  - command line flags
  - project: <work-dir>/.formcheck/config.yaml
  - global: ~/.formcheck.yaml
  - environment: FORMCHECK_* variables, also read from .env
  - built-in defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write the default configuration to <work-dir>/.formcheck/config.yaml,
or to ~/.formcheck.yaml with --global. An existing file is kept unless
--force is given.`,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "Write ~/.formcheck.yaml instead of the project file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return HandleCommandError(err, nil, false)
	}

	data, err := config.NewSaver().Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	saver := config.NewSaver()
	cfg := config.DefaultConfig()

	path := config.ProjectConfigPath(workDirFlag)
	if configInitGlobal {
		p, err := config.GlobalConfigPath()
		if err != nil {
			return errors.WrapError(err, "failed to resolve home directory", errors.ExitIOError)
		}
		path = p
	}

	if config.ConfigExists(path) && !configInitForce {
		return HandleCommandError(
			errors.NewConfigError(fmt.Sprintf("%s already exists, use --force to overwrite", path)),
			nil, false)
	}

	var err error
	if configInitGlobal {
		err = saver.SaveGlobalConfig(cfg)
	} else {
		err = saver.SaveProjectConfig(workDirFlag, cfg)
	}
	if err != nil {
		return HandleCommandError(errors.WrapError(err, "failed to write configuration", errors.ExitIOError), nil, false)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
