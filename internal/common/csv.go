// Package common provides the CSV plumbing shared by the mirror sink and the exporter.
package common

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"

	"github.com/gocarina/gocsv"
)

// ReadCSVFile reads CSV data into a slice of structs using gocsv.
// TCSVRow is the struct type that maps to the CSV columns.
func ReadCSVFile[TCSVRow any](filePath string, logger logging.Logger) ([]TCSVRow, error) {
	logger = logging.OrDefault(logger)
	logger.Debug("Reading CSV file", logging.F(logging.FieldFile, filePath))

	file, err := os.Open(filePath) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	var rows []TCSVRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	logger.Debug("Read CSV data", logging.F(logging.FieldCount, len(rows)))
	return rows, nil
}

// CSVAppender appends gocsv-tagged rows to a file. The header is written once,
// when the file is created or found empty.
type CSVAppender struct {
	path string
	file *os.File
	w    *gocsv.SafeCSVWriter
}

// NewCSVAppender opens path for appending, creating parent directories as needed.
func NewCSVAppender(path string, header []string) (*CSVAppender, error) {
	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, models.PermissionDataFile) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("error reading CSV file info: %w", err)
	}

	a := &CSVAppender{
		path: path,
		file: file,
		w:    gocsv.NewSafeCSVWriter(csv.NewWriter(file)),
	}

	if info.Size() == 0 && len(header) > 0 {
		if err := a.w.Write(header); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("error writing CSV header: %w", err)
		}
		a.w.Flush()
		if err := a.w.Error(); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("error writing CSV header: %w", err)
		}
	}

	return a, nil
}

// Path returns the file being appended to.
func (a *CSVAppender) Path() string {
	return a.path
}

// Append marshals a slice of tagged structs without a header and flushes.
func (a *CSVAppender) Append(rows interface{}) error {
	if err := gocsv.MarshalCSVWithoutHeaders(rows, a.w); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// Close flushes pending rows and closes the file.
func (a *CSVAppender) Close() error {
	a.w.Flush()
	flushErr := a.w.Error()
	closeErr := a.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
