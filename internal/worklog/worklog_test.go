package worklog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `* Work log 2017
2017-03-04 Saturday
    research for smith matter
    check 01234 | 6815 | Clerk of Court | filing fee | motion | 17-0042 | 435.00
	check 1235 | usb_6831 | Jane Client | refund |  | 17-0042 | 1,200.50
2017-03-05
    CHECK 1236 | 6815 | Process Server | service | | 17-0050 | 75
    checked the mail
`

func writeLog(t *testing.T, year, content string) *FileSource {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir, year), []byte(content), 0600))
	return NewFileSource(dir, logging.NewMockLogger())
}

func scanAll(t *testing.T, src Source, year string) ([]models.Check, error) {
	t.Helper()
	var checks []models.Check
	err := src.Scan(context.Background(), year, func(c models.Check) error {
		checks = append(checks, c)
		return nil
	})
	return checks, err
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/wl", "worklog.2017.otl"), Path("/wl", "2017"))
}

func TestScan(t *testing.T) {
	checks, err := scanAll(t, writeLog(t, "2017", sample), "2017")
	require.NoError(t, err)
	require.Len(t, checks, 3)

	assert.Equal(t, models.Check{
		Acct:    "usb_6815",
		CheckNo: "1234",
		Date:    "2017-03-04",
		Payee:   "Clerk of Court",
		Subject: "filing fee",
		Purpose: "motion",
		CaseNo:  "17-0042",
		Amount:  models.MustParseAmount("435.00"),
	}, checks[0])

	assert.Equal(t, "usb_6831", checks[1].Acct)
	assert.Equal(t, "", checks[1].Purpose)
	assert.Equal(t, "1200.50", checks[1].Amount.String())

	assert.Equal(t, "1236", checks[2].CheckNo)
	assert.Equal(t, "2017-03-05", checks[2].Date)
}

func TestScan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"check before heading", "    check 1 | 6815 | p | s | | c | 1\n", "date"},
		{"wrong field count", "2017-01-01\n    check 1 | 6815 | p | s | 1\n", "check"},
		{"bad amount", "2017-01-01\n    check 1 | 6815 | p | s | | c | lots\n", "amount"},
		{"empty account", "2017-01-01\n    check 1 |  | p | s | | c | 1\n", "acct"},
		{"other year", "2016-12-31\n    check 1 | 6815 | p | s | | c | 1\n", "date"},
		{"impossible date", "2017-02-30\n", "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scanAll(t, writeLog(t, "2017", tt.content), "2017")
			var pErr *parsererror.ParseError
			require.True(t, errors.As(err, &pErr), "got %v", err)
			assert.Equal(t, "worklog", pErr.Parser)
			assert.Equal(t, tt.field, pErr.Field)
		})
	}
}

func TestScan_MissingFile(t *testing.T) {
	_, err := scanAll(t, NewFileSource(t.TempDir(), nil), "2017")
	var vErr *parsererror.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestScan_CallbackErrorStops(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := writeLog(t, "2017", sample).Scan(context.Background(), "2017", func(models.Check) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestScan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := writeLog(t, "2017", sample).Scan(ctx, "2017", func(models.Check) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
