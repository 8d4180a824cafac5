package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oxygene76/orbitalsim/pkg/utils"
)

var (
	cfgFile string
	verbose bool

	cfg    *utils.Config
	cfgErr error
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "orbitalsim",
		Short: "Gravitational N-body simulator for planetary systems",
		Long: `A headless N-body simulator: stars, planets and a sampled asteroid belt
advanced with a fixed time step under a selectable force policy.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return nil
			}
			return cfgErr
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.orbitalsim/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		initCmd(),
		runCmd(),
		statsCmd(),
		catalogCmd(),
		ensembleCmd(),
	)

	cobra.OnInitialize(initConfig)

	return rootCmd
}

func initConfig() {
	cfg, cfgErr = utils.LoadConfig(cfgFile)
	if cfgErr == nil && verbose {
		cfg.Log.Level = "debug"
	}
}

// newLogger builds the process logger from the log section
func newLogger(c *utils.Config) *log.Logger {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "orbitalsim",
		ReportTimestamp: true,
	})
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := utils.SaveConfig(utils.DefaultConfig(), cfgFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", path)
			return nil
		},
	}
	return cmd
}
