package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scrybe/scrybe/cmd"
	"github.com/scrybe/scrybe/pkg/models"
)

var (
	cfg         *models.ProjectConfig
	projectRoot string
	verbose     bool
	logger      = logrus.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "scrybe",
		Short:         "Generate navigable documentation from structured source comments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project", "P", ".", "Project root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// This runs once before any subcommand
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.WarnLevel)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		v := viper.New()
		v.SetConfigName("scrybe")
		v.SetConfigType("yaml")
		v.AddConfigPath(projectRoot)
		v.SetEnvPrefix("SCRYBE")
		v.AutomaticEnv()
		if err := v.ReadInConfig(); err != nil {
			// Non-fatal: a missing config file means defaults.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("read project config: %w", err)
			}
			logger.Debug("no scrybe.yaml, using defaults")
		}

		var err error
		cfg, err = models.DecodeProjectConfig(v.AllSettings())
		if err != nil {
			return fmt.Errorf("load project config: %w", err)
		}
		return nil
	}

	rootCmd.AddCommand(cmd.NewBuildCmd(&cfg, &projectRoot, logger))
	rootCmd.AddCommand(cmd.NewCheckCmd(&cfg, &projectRoot, logger))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scrybe: %v\n", err)
		os.Exit(1)
	}
}
