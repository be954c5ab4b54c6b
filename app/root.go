// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/parley-chat/parley/internal/config"
)

var (
	// configPath is the directory holding main.toml.
	configPath string

	cfg config.Config
	err error

	rootCmd = &cobra.Command{
		Use:   "parley",
		Short: "Parley is a guild permission and thread management service",
		Long: `Parley manages roles, channels, threads and permission overwrites for a
chat guild and resolves effective member permissions through a REST API.`,
		Args: cobra.OnlyValidArgs,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "etc/", "Path to the configuration directory")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
