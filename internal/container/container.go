// Package container wires the application's components from configuration so
// commands receive their dependencies through constructors.
package container

import (
	"context"
	"fmt"

	"wlharvey4/csv-sqlite3/internal/bankcsv"
	"wlharvey4/csv-sqlite3/internal/checks"
	"wlharvey4/csv-sqlite3/internal/config"
	"wlharvey4/csv-sqlite3/internal/exporter"
	"wlharvey4/csv-sqlite3/internal/fileutils"
	"wlharvey4/csv-sqlite3/internal/ledger"
	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/normalizer"
	"wlharvey4/csv-sqlite3/internal/parsererror"
	"wlharvey4/csv-sqlite3/internal/pipeline"
	"wlharvey4/csv-sqlite3/internal/sink"
	"wlharvey4/csv-sqlite3/internal/store"
	"wlharvey4/csv-sqlite3/internal/worklog"
)

// Container holds the configuration, logger and account registry, and builds
// the per-command components from them. It is immutable after creation.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	registry *models.AccountRegistry
}

// NewContainer creates a Container. A nil logger is built from cfg.Log.
func NewContainer(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	c := &Container{
		logger:   logger,
		config:   cfg,
		registry: cfg.Registry(),
	}
	logger.Debug("Container initialized",
		logging.F("accounts", len(c.registry.Codes())),
		logging.F(logging.FieldDriver, cfg.Store.Driver))
	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRegistry returns the account registry.
func (c *Container) GetRegistry() *models.AccountRegistry {
	return c.registry
}

// OpenStore opens the relational store for database name. SQLite needs paths.db,
// which is created if missing.
func (c *Container) OpenStore(ctx context.Context, name string) (*store.SQLStore, error) {
	opts := c.config.StoreOptions(name)
	if opts.Driver != store.DriverPostgres && c.config.Store.DSN == "" {
		if err := c.config.RequireDirs("paths.db"); err != nil {
			return nil, err
		}
		if err := fileutils.EnsureDirectoryExists(c.config.Paths.DB); err != nil {
			return nil, &parsererror.ConfigError{Key: "paths.db", Reason: err.Error()}
		}
	}
	return store.Open(ctx, opts, c.logger)
}

// ValidateAccountYear checks acct and year against the registry.
func (c *Container) ValidateAccountYear(acct, year string) error {
	if err := c.registry.ValidateAccount(acct); err != nil {
		return &parsererror.ValidationError{FilePath: models.AccountCode(acct), Reason: err.Error()}
	}
	if err := c.registry.ValidateYear(year); err != nil {
		return &parsererror.ValidationError{FilePath: models.AccountCode(acct), Reason: err.Error()}
	}
	return nil
}

// SourcePath returns the bank export for acct and year under paths.usb.
func (c *Container) SourcePath(acct, year string) (string, error) {
	if err := c.config.RequireDirs("paths.usb"); err != nil {
		return "", err
	}
	return bankcsv.SourcePath(c.config.Paths.USB, acct, year), nil
}

// NormalizeOptions override configured pipeline settings for one run.
type NormalizeOptions struct {
	Policy      models.InsertErrorPolicy // empty uses store.on_insert_error
	MaxInFlight int                      // 0 uses store.max_inflight_inserts
}

// NewPipeline builds the reader, transformer and dual-sink writer for acct and
// year. The bank export must already exist under paths.usb. The mirror lives
// under paths.csv. ctx bounds the store inserts.
func (c *Container) NewPipeline(ctx context.Context, acct, year string, st sink.Inserter, opts NormalizeOptions) (*pipeline.Pipeline, error) {
	if err := c.ValidateAccountYear(acct, year); err != nil {
		return nil, err
	}
	if err := c.config.RequireDirs("paths.csv"); err != nil {
		return nil, err
	}
	if opts.Policy == "" {
		opts.Policy = c.config.InsertErrorPolicy()
	}
	if opts.MaxInFlight == 0 {
		opts.MaxInFlight = c.config.Store.MaxInflightInserts
	}

	// The mirror is created on open, so the source must exist first.
	src, err := c.SourcePath(acct, year)
	if err != nil {
		return nil, err
	}
	f, err := bankcsv.Open(src)
	if err != nil {
		return nil, err
	}
	_ = f.Close()

	mirror, err := sink.OpenMirror(sink.MirrorPath(c.config.Paths.CSV, acct, year))
	if err != nil {
		return nil, err
	}
	writer := sink.NewWriter(ctx, mirror, st, sink.Options{
		MaxInFlight: opts.MaxInFlight,
		Policy:      opts.Policy,
		Logger:      c.logger,
	})

	return pipeline.New(normalizer.NewTransformer(acct, year), writer, pipeline.Options{
		Buffer: c.config.Pipeline.Buffer,
		Logger: c.logger,
	}), nil
}

// NewCorrelator builds the check correlator reading work logs from paths.worklog.
// An empty policy uses store.on_insert_error.
func (c *Container) NewCorrelator(st checks.Store, policy models.InsertErrorPolicy) (*checks.Correlator, error) {
	if err := c.config.RequireDirs("paths.worklog"); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = c.config.InsertErrorPolicy()
	}
	source := worklog.NewFileSource(c.config.Paths.Worklog, c.logger)
	return checks.NewCorrelator(st, source, policy, c.logger), nil
}

// NewExporter builds the exporter over st.
func (c *Container) NewExporter(st exporter.Querier) *exporter.Exporter {
	return exporter.New(st, c.registry, c.logger)
}

// ExportPath returns <paths.csv>/<name>.csv.
func (c *Container) ExportPath(name string) (string, error) {
	if err := c.config.RequireDirs("paths.csv"); err != nil {
		return "", err
	}
	return exporter.Path(c.config.Paths.CSV, name), nil
}

// NewLedgerConverter builds the ledger converter writing into paths.ledger.
func (c *Container) NewLedgerConverter() (*ledger.Converter, error) {
	if err := c.config.RequireDirs("paths.ledger"); err != nil {
		return nil, err
	}
	return ledger.NewConverter(c.config.Ledger.Binary, c.config.Paths.Ledger, c.config.Ledger.ZeroFile, c.logger), nil
}

// NewBackup builds the housekeeping backup. paths.backup is required; the
// other directories are skipped when unset.
func (c *Container) NewBackup() (*fileutils.Backup, error) {
	if err := c.config.RequireDirs("paths.backup"); err != nil {
		return nil, err
	}
	return fileutils.NewBackup(fileutils.BackupDirs{
		DB:     c.config.Paths.DB,
		CSV:    c.config.Paths.CSV,
		Ledger: c.config.Paths.Ledger,
		Backup: c.config.Paths.Backup,
	}, c.logger), nil
}

// Close releases container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
