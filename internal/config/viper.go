// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"regexp"
	"strings"

	"wlharvey4/csv-sqlite3/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every automatically bound environment variable.
const EnvPrefix = "CSVSQL"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Database struct {
		Name string `mapstructure:"name" yaml:"name"`
	} `mapstructure:"database" yaml:"database"`

	Store struct {
		Driver             string `mapstructure:"driver" yaml:"driver"`
		DSN                string `mapstructure:"dsn" yaml:"-"` // may hold credentials
		MaxInflightInserts int    `mapstructure:"max_inflight_inserts" yaml:"max_inflight_inserts"`
		OnInsertError      string `mapstructure:"on_insert_error" yaml:"on_insert_error"`
	} `mapstructure:"store" yaml:"store"`

	Pipeline struct {
		Buffer int `mapstructure:"buffer" yaml:"buffer"`
	} `mapstructure:"pipeline" yaml:"pipeline"`

	Accounts map[string]string `mapstructure:"accounts" yaml:"accounts"`
	Years    []string          `mapstructure:"years" yaml:"years"`

	Ledger struct {
		Binary   string `mapstructure:"binary" yaml:"binary"`
		ZeroFile string `mapstructure:"zero_file" yaml:"zero_file"`
	} `mapstructure:"ledger" yaml:"ledger"`

	Paths struct {
		DB      string `mapstructure:"db" yaml:"db"`
		CSV     string `mapstructure:"csv" yaml:"csv"`
		Ledger  string `mapstructure:"ledger" yaml:"ledger"`
		Backup  string `mapstructure:"backup" yaml:"backup"`
		USB     string `mapstructure:"usb" yaml:"usb"`
		Worklog string `mapstructure:"worklog" yaml:"worklog"`
	} `mapstructure:"paths" yaml:"paths"`
}

// envBindings maps keys to the environment variables the workflow scripts export.
var envBindings = map[string]string{
	"paths.db":      "WORKDB",
	"paths.csv":     "WORKCSV",
	"paths.ledger":  "WORKLEDGER",
	"paths.backup":  "WORKBAK",
	"paths.usb":     "WORKUSB",
	"paths.worklog": "WORKLOG",
	"log.level":     "LOG_LEVEL",
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.csv-sqlite3")
	v.AddConfigPath(".csv-sqlite3")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. Unprefixed variables, checked after the CSVSQL_ ones
	for key, env := range envBindings {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.name", "workfin")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_inflight_inserts", 1)
	v.SetDefault("store.on_insert_error", string(models.InsertErrorAbort))

	v.SetDefault("pipeline.buffer", 64)

	// Nested defaults must be map[string]any for viper to merge file entries into them.
	accounts := make(map[string]any)
	for code, name := range models.DefaultAccounts() {
		accounts[code] = name
	}
	v.SetDefault("accounts", accounts)
	v.SetDefault("years", []string{})

	v.SetDefault("ledger.binary", "ledger")
	v.SetDefault("ledger.zero_file", "zero")

	for key := range envBindings {
		if strings.HasPrefix(key, "paths.") {
			v.SetDefault(key, "")
		}
	}
}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Database.Name == "" {
		return fmt.Errorf("database.name must not be empty")
	}

	switch config.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid store driver: %s (must be 'sqlite' or 'postgres')", config.Store.Driver)
	}
	if config.Store.Driver == "postgres" && config.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the postgres driver")
	}

	if config.Store.MaxInflightInserts < 1 || config.Store.MaxInflightInserts > 256 {
		return fmt.Errorf("store.max_inflight_inserts must be between 1 and 256, got: %d", config.Store.MaxInflightInserts)
	}

	if _, err := models.ParseInsertErrorPolicy(config.Store.OnInsertError); err != nil {
		return err
	}

	if config.Pipeline.Buffer < 0 {
		return fmt.Errorf("pipeline.buffer must not be negative, got: %d", config.Pipeline.Buffer)
	}

	for _, y := range config.Years {
		if !yearPattern.MatchString(y) {
			return fmt.Errorf("invalid year in years: %q", y)
		}
	}

	return nil
}
