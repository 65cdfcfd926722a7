// Package bankcsv streams US Bank CSV exports as header-keyed raw records.
package bankcsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parser"
	"wlharvey4/csv-sqlite3/internal/parsererror"
)

const parserName = "bankcsv"

var errInvalidUTF8 = errors.New("invalid UTF-8 text")

// SourcePath returns the conventional location of a bank export:
// <dir>/usb_<acct>/<year>/usb_<acct>--<year>.csv
func SourcePath(dir, acct, year string) string {
	code := models.AccountCode(acct)
	return filepath.Join(dir, code, year, fmt.Sprintf("%s--%s.csv", code, year))
}

// Open checks that path is a readable regular file and opens it.
func Open(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &parsererror.ValidationError{FilePath: path, Reason: "file does not exist"}
		}
		return nil, &parsererror.ValidationError{FilePath: path, Reason: err.Error()}
	}
	if info.IsDir() {
		return nil, &parsererror.ValidationError{FilePath: path, Reason: "is a directory"}
	}
	f, err := os.Open(path) // #nosec G304 -- path is built from configuration
	if err != nil {
		return nil, &parsererror.ValidationError{FilePath: path, Reason: err.Error()}
	}
	return f, nil
}

// ValidateHeader requires every column in models.RequiredSourceColumns.
func ValidateHeader(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	var missing []string
	for _, col := range models.RequiredSourceColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Reader streams the rows of one bank export.
type Reader struct {
	parser.BaseParser
	path string
}

// NewReader creates a Reader. path is only used in errors and log fields.
func NewReader(path string, logger logging.Logger) *Reader {
	return &Reader{
		BaseParser: parser.NewBaseParser(parserName, logger),
		path:       path,
	}
}

// Stream implements parser.RecordStreamer.
func (r *Reader) Stream(ctx context.Context, in io.Reader, out chan<- models.RawRecord) error {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = 0
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &parsererror.ValidationError{FilePath: r.path, Reason: "empty file"}
		}
		return &parsererror.ValidationError{FilePath: r.path, Reason: fmt.Sprintf("unreadable header: %v", err)}
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if err := ValidateHeader(header); err != nil {
		return &parsererror.ValidationError{FilePath: r.path, Reason: err.Error()}
	}

	logger := r.GetLogger().WithField(logging.FieldFile, r.path)
	rows := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			return r.ParseError("row", strings.Join(fields, ","), line, err)
		}

		line, _ := cr.FieldPos(0)
		for _, f := range fields {
			if !utf8.ValidString(f) {
				return r.ParseError("row", f, line, errInvalidUTF8)
			}
		}

		rec := make(models.RawRecord, len(header))
		for i, h := range header {
			rec[h] = fields[i]
		}

		select {
		case out <- rec:
			rows++
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	logger.Debug("Finished reading bank export", logging.F(logging.FieldCount, rows))
	return nil
}
