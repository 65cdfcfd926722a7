// Package worklog reads check events out of the yearly outline-format work log.
//
// A line starting at column 0 with an ISO date opens a day:
//
//	2017-03-04 Saturday
//	    check 1234 | 6815 | Clerk of Court | filing fee | motion | 17-0042 | 435.00
//
// Indented "check" lines are check events dated by the most recent day heading.
// Their fields are check number, account, payee, subject, purpose (may be empty),
// case number and amount, separated by "|". All other lines are ignored.
package worklog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"wlharvey4/csv-sqlite3/internal/dateutils"
	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parser"
	"wlharvey4/csv-sqlite3/internal/parsererror"
)

const parserName = "worklog"

var (
	dayHeading = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\b`)
	checkLine  = regexp.MustCompile(`^\s+(?i:check)\s+(\S+)\s*\|(.*)$`)
)

// Source yields the check events recorded for a year.
type Source interface {
	Scan(ctx context.Context, year string, fn func(models.Check) error) error
}

// Path returns <dir>/worklog.<year>.otl.
func Path(dir, year string) string {
	return filepath.Join(dir, fmt.Sprintf("worklog.%s.otl", year))
}

// FileSource reads worklog.<year>.otl files from Dir.
type FileSource struct {
	parser.BaseParser
	Dir string
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a FileSource.
func NewFileSource(dir string, logger logging.Logger) *FileSource {
	return &FileSource{
		BaseParser: parser.NewBaseParser(parserName, logger),
		Dir:        dir,
	}
}

// Scan calls fn for every check event of year, in file order. A malformed check
// line stops the scan with a *parsererror.ParseError; an error from fn is returned as is.
func (s *FileSource) Scan(ctx context.Context, year string, fn func(models.Check) error) error {
	path := Path(s.Dir, year)
	f, err := os.Open(path) // #nosec G304 -- path is built from configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &parsererror.ValidationError{FilePath: path, Reason: "work log does not exist"}
		}
		return &parsererror.ValidationError{FilePath: path, Reason: err.Error()}
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.GetLogger().WithError(err).Warn("Failed to close work log")
		}
	}()

	scanner := bufio.NewScanner(f)
	var (
		day    string
		lineNo int
		found  int
	)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		line := scanner.Text()

		if m := dayHeading.FindStringSubmatch(line); m != nil {
			if _, err := dateutils.ParseISODate(m[1]); err != nil {
				return s.ParseError("date", m[1], lineNo, err)
			}
			day = m[1]
			continue
		}

		m := checkLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		check, err := s.parseCheck(m[1], m[2], day, year, lineNo)
		if err != nil {
			return err
		}
		found++
		if err := fn(check); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	s.GetLogger().Debug("Scanned work log",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, found))
	return nil
}

func (s *FileSource) parseCheck(number, rest, day, year string, lineNo int) (models.Check, error) {
	raw := strings.TrimSpace(number + " |" + rest)
	if day == "" {
		return models.Check{}, s.ParseError("date", raw, lineNo, errors.New("check before any day heading"))
	}
	if !dateutils.InYear(day, year) {
		return models.Check{}, s.ParseError("date", day, lineNo, fmt.Errorf("not in %s", year))
	}

	fields := strings.Split(rest, "|")
	if len(fields) != 6 {
		return models.Check{}, s.ParseError("check", raw, lineNo,
			fmt.Errorf("want 7 fields, got %d", len(fields)+1))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	checkNo := strings.TrimLeft(number, "0")
	if checkNo == "" {
		checkNo = "0"
	}
	if fields[0] == "" {
		return models.Check{}, s.ParseError("acct", raw, lineNo, errors.New("empty account"))
	}
	amount, err := models.ParseAmount(fields[5])
	if err != nil {
		return models.Check{}, s.ParseError("amount", fields[5], lineNo, err)
	}

	return models.Check{
		Acct:    models.AccountCode(fields[0]),
		CheckNo: checkNo,
		Date:    day,
		Payee:   fields[1],
		Subject: fields[2],
		Purpose: fields[3],
		CaseNo:  fields[4],
		Amount:  amount,
	}, nil
}
