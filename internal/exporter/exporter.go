// Package exporter writes an account/year slice of the store to an export CSV.
package exporter

import (
	"context"
	"path/filepath"

	"wlharvey4/csv-sqlite3/internal/common"
	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"
)

// Querier is the part of the store the exporter reads from.
type Querier interface {
	TransactionsForAccountYear(ctx context.Context, acct, year string) ([]models.NormalizedTransaction, error)
}

// Exporter appends stored transactions to export files.
type Exporter struct {
	store    Querier
	registry *models.AccountRegistry
	logger   logging.Logger
}

// New creates an Exporter. A nil registry uses the default accounts.
func New(store Querier, registry *models.AccountRegistry, logger logging.Logger) *Exporter {
	if registry == nil {
		registry = models.NewAccountRegistry(nil, nil)
	}
	return &Exporter{store: store, registry: registry, logger: logging.OrDefault(logger)}
}

// Export appends every transaction of acct in year to path, in insertion order,
// and returns how many rows were written. The header is written only when path
// is new or empty.
func (e *Exporter) Export(ctx context.Context, acct, year, path string) (int, error) {
	if err := e.registry.ValidateAccount(acct); err != nil {
		return 0, &parsererror.ValidationError{FilePath: path, Reason: err.Error()}
	}
	if err := e.registry.ValidateYear(year); err != nil {
		return 0, &parsererror.ValidationError{FilePath: path, Reason: err.Error()}
	}

	txs, err := e.store.TransactionsForAccountYear(ctx, models.AccountCode(acct), year)
	if err != nil {
		return 0, &parsererror.SinkError{Sink: "store", Op: "query", Err: err}
	}

	rows := make([]models.ExportRow, 0, len(txs))
	for i := range txs {
		rows = append(rows, txs[i].ToExportRow())
	}

	out, err := common.NewCSVAppender(path, models.ExportColumns)
	if err != nil {
		return 0, &parsererror.SinkError{Sink: "export", Op: "open", Err: err}
	}
	if len(rows) > 0 {
		if err := out.Append(rows); err != nil {
			_ = out.Close()
			return 0, &parsererror.SinkError{Sink: "export", Op: "append", Err: err}
		}
	}
	if err := out.Close(); err != nil {
		return 0, &parsererror.SinkError{Sink: "export", Op: "close", Err: err}
	}

	e.logger.Info("Exported transactions",
		logging.F(logging.FieldAccount, models.AccountCode(acct)),
		logging.F(logging.FieldYear, year),
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(rows)))
	return len(rows), nil
}

// Path returns <dir>/<name>.csv.
func Path(dir, name string) string {
	return filepath.Join(dir, name+".csv")
}
