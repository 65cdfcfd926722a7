// Package config handles the command that prints the effective configuration
package config

import (
	"fmt"
	"io"
	"os"

	"wlharvey4/csv-sqlite3/cmd/root"
	appconfig "wlharvey4/csv-sqlite3/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Cmd represents the config command
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration after defaults, config.yaml, .env and
environment variables have been applied. The store DSN is never printed.`,
	Args: cobra.NoArgs,
	Run:  configFunc,
}

func configFunc(cmd *cobra.Command, args []string) {
	if root.AppConfig == nil {
		root.Log.Fatalf("Configuration not initialized")
		return
	}
	if err := Print(os.Stdout, root.AppConfig); err != nil {
		root.Log.Fatalf("Failed to print configuration: %v", err)
	}
}

// Print writes cfg to w as YAML.
func Print(w io.Writer, cfg *appconfig.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}
