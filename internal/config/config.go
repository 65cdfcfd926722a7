package config

import (
	"os"
	"path/filepath"
	"sync"

	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"
	"wlharvey4/csv-sqlite3/internal/store"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads environment variables from a .env file in the current or parent
// directory, if one exists. Variables already set are not overridden.
func LoadEnv(logger logging.Logger) {
	logger = logging.OrDefault(logger)
	envOnce.Do(func() {
		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				logger.Debug("No .env file found, using environment variables")
				return
			}
		}

		if err := godotenv.Load(envFile); err != nil {
			logger.WithError(err).Warn("Error loading .env file")
			return
		}
		logger.Debug("Loaded environment variables", logging.F(logging.FieldFile, envFile))
	})
}

// NewLogger builds the application logger from the log settings.
func NewLogger(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}

// path returns the configured directory for a paths.* key.
func (c *Config) path(key string) string {
	switch key {
	case "paths.db":
		return c.Paths.DB
	case "paths.csv":
		return c.Paths.CSV
	case "paths.ledger":
		return c.Paths.Ledger
	case "paths.backup":
		return c.Paths.Backup
	case "paths.usb":
		return c.Paths.USB
	case "paths.worklog":
		return c.Paths.Worklog
	}
	return ""
}

// RequireDirs returns a ConfigError for the first key whose directory is unset.
func (c *Config) RequireDirs(keys ...string) error {
	for _, key := range keys {
		if c.path(key) == "" {
			reason := "directory is not set"
			if env, ok := envBindings[key]; ok {
				reason += " (set " + env + ")"
			}
			return &parsererror.ConfigError{Key: key, Reason: reason}
		}
	}
	return nil
}

// EnsureDirs creates the database and CSV directories.
func (c *Config) EnsureDirs() error {
	if err := c.RequireDirs("paths.db", "paths.csv"); err != nil {
		return err
	}
	for _, dir := range []string{c.Paths.DB, c.Paths.CSV} {
		if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
			return &parsererror.ConfigError{Key: dir, Reason: err.Error()}
		}
	}
	return nil
}

// Registry returns the account registry built from accounts and years.
func (c *Config) Registry() *models.AccountRegistry {
	return models.NewAccountRegistry(c.Accounts, c.Years)
}

// InsertErrorPolicy returns the configured policy. The value is checked at load time.
func (c *Config) InsertErrorPolicy() models.InsertErrorPolicy {
	p, err := models.ParseInsertErrorPolicy(c.Store.OnInsertError)
	if err != nil {
		return models.InsertErrorAbort
	}
	return p
}

// DatabasePath returns <paths.db>/<name>.sqlite.
func (c *Config) DatabasePath(name string) string {
	return filepath.Join(c.Paths.DB, name+".sqlite")
}

// StoreOptions returns the options for opening database name. SQLite without an
// explicit DSN uses DatabasePath(name).
func (c *Config) StoreOptions(name string) store.Options {
	opts := store.Options{Driver: c.Store.Driver, DSN: c.Store.DSN}
	if opts.DSN == "" && c.Store.Driver != store.DriverPostgres {
		opts.DSN = c.DatabasePath(name)
	}
	return opts
}
