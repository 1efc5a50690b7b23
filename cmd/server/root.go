package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/photo-diary/backend/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigName = "photo-diary.yaml"

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "photo-diary",
		Short:         "Photo diary server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configFlag)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(&configFlag))
	rootCmd.AddCommand(newRecordsCommand(&configFlag))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// resolveConfigPath returns flagValue, or the config file next to the executable.
func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exePath), defaultConfigName), nil
}

// loadConfig resolves and loads the config file. Only the server creates a
// missing file; read-only commands fall back to defaults in memory.
func loadConfig(flagValue string, create bool) (*config.AppConfig, string, error) {
	path, err := resolveConfigPath(flagValue)
	if err != nil {
		return nil, "", err
	}
	read := config.ReadConfig
	if create {
		read = config.LoadConfig
	}
	cfg, err := read(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, path, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "photo-diary %s (built %s)\n", Version, BuildTime)
			return err
		},
	}
}
