// Package root contains the root command for the application
package root

import (
	"wlharvey4/csv-sqlite3/internal/config"
	"wlharvey4/csv-sqlite3/internal/container"
	"wlharvey4/csv-sqlite3/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Attach   string
	LogLevel string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.GetLogger()

	// AppConfig is the configuration loaded before any subcommand runs
	AppConfig *config.Config

	// AppContainer holds the wired dependencies for the subcommands
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "csv-sqlite3",
		Short: "Normalize US Bank CSV exports into SQLite and export them for ledger.",
		Long: `csv-sqlite3 reads US Bank CSV exports, classifies and cleans every row,
and writes each normalized transaction both to a per-account CSV mirror and to
a relational store. It also loads checks from the yearly work log and exports
account/year slices for conversion with ledger.`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := Initialize(); err != nil {
				Log.Fatalf("Failed to initialize: %v", err)
			}
		},
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Attach, "attach", "a", "", "Database base name (default database.name)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.LogLevel, "log-level", "l", "", "Log level: trace, debug, info, warn, error")
}

// Initialize loads .env and the configuration, applies the flag overrides and
// builds the container.
func Initialize() error {
	config.LoadEnv(Log)

	cfg, err := config.InitializeConfig()
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}

	Log = config.NewLogger(cfg)
	logging.SetDefault(Log)

	c, err := container.NewContainer(cfg, Log)
	if err != nil {
		return err
	}
	AppConfig = cfg
	AppContainer = c
	return nil
}

// DatabaseName returns the --attach value, or the configured database name.
func DatabaseName() string {
	if SharedFlags.Attach != "" {
		return SharedFlags.Attach
	}
	if AppConfig != nil {
		return AppConfig.Database.Name
	}
	return ""
}

// GetContainer returns the application container, nil before initialization.
func GetContainer() *container.Container {
	return AppContainer
}
