package sink

import (
	"fmt"
	"path/filepath"

	"wlharvey4/csv-sqlite3/internal/common"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"
)

// MirrorPath returns <dir>/usb_<acct>__<year>.csv.
func MirrorPath(dir, acct, year string) string {
	return filepath.Join(dir, fmt.Sprintf("%s__%s.csv", models.AccountCode(acct), year))
}

// Mirror is the append-only CSV copy of every normalized row. It is written by a
// single goroutine, in input order.
type Mirror struct {
	app *common.CSVAppender
}

// OpenMirror opens or creates the mirror file. The header is written only when
// the file is empty.
func OpenMirror(path string) (*Mirror, error) {
	app, err := common.NewCSVAppender(path, models.TransactionColumns)
	if err != nil {
		return nil, &parsererror.SinkError{Sink: "mirror", Op: "open", Err: err}
	}
	return &Mirror{app: app}, nil
}

// Path returns the mirror file path.
func (m *Mirror) Path() string {
	return m.app.Path()
}

// Append writes one row and flushes it.
func (m *Mirror) Append(tx *models.NormalizedTransaction) error {
	if err := m.app.Append([]models.NormalizedTransaction{*tx}); err != nil {
		return &parsererror.SinkError{Sink: "mirror", Op: "append", Err: err}
	}
	return nil
}

// Close flushes and closes the file.
func (m *Mirror) Close() error {
	if err := m.app.Close(); err != nil {
		return &parsererror.SinkError{Sink: "mirror", Op: "close", Err: err}
	}
	return nil
}
