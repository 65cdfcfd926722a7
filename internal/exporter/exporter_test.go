package exporter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"
	"wlharvey4/csv-sqlite3/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *store.MockStore {
	t.Helper()
	st := &store.MockStore{}
	ctx := context.Background()
	for _, tx := range []models.NormalizedTransaction{
		models.NewTransactionBuilder().WithAccount("6815").WithDate("2018-01-05").
			WithAmount("45.00").WithPayee("check").WithCheckNo("1234").MustBuild(),
		models.NewTransactionBuilder().WithAccount("6831").WithDate("2018-01-06").
			WithAmount("9.99").WithPayee("other account").MustBuild(),
		models.NewTransactionBuilder().WithAccount("6815").WithDate("2017-12-31").
			WithAmount("1.00").WithPayee("last year").MustBuild(),
		models.NewTransactionBuilder().WithAccount("6815").WithDate("2018-02-01").
			WithAmount("100").WithPayee("client").WithNote("retainer").AsCredit().MustBuild(),
	} {
		_, err := st.InsertTransaction(ctx, &tx)
		require.NoError(t, err)
	}
	return st
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "workfin.csv")
	logger := logging.NewMockLogger()
	e := New(seededStore(t), nil, logger)

	n, err := e.Export(context.Background(), "6815", "2018", path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{
		"rowid,acct,date,trans,checkno,txfr,payee,category,note,caseno,amount",
		"1,usb_6815,2018-01-05,debit,1234,,check,,,,45.00",
		"4,usb_6815,2018-02-01,credit,,,client,,retainer,,100.00",
	}, readLines(t, path))
	assert.True(t, logger.HasEntry("INFO", "Exported transactions"))
}

func TestExport_AppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workfin.csv")
	e := New(seededStore(t), nil, nil)

	_, err := e.Export(context.Background(), "6815", "2018", path)
	require.NoError(t, err)
	_, err = e.Export(context.Background(), "usb_6831", "2018", path)
	require.NoError(t, err)

	lines := readLines(t, path)
	require.Len(t, lines, 4)
	assert.Equal(t, "2,usb_6831,2018-01-06,debit,,,other account,,,,9.99", lines[3])
}

func TestExport_EmptySliceWritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workfin.csv")
	n, err := New(seededStore(t), nil, nil).Export(context.Background(), "6151", "2018", path)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, readLines(t, path), 1)
}

func TestExport_Validation(t *testing.T) {
	registry := models.NewAccountRegistry(nil, []string{"2018"})
	e := New(seededStore(t), registry, nil)
	path := filepath.Join(t.TempDir(), "workfin.csv")

	tests := []struct {
		name string
		acct string
		year string
	}{
		{"unknown account", "9999", "2018"},
		{"malformed year", "6815", "18"},
		{"year not allowed", "6815", "2017"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Export(context.Background(), tt.acct, tt.year, path)
			var vErr *parsererror.ValidationError
			assert.True(t, errors.As(err, &vErr), "got %v", err)
		})
	}
	assert.NoFileExists(t, path)
}

func TestExport_QueryError(t *testing.T) {
	st := &store.MockStore{QueryError: errors.New("db down")}
	_, err := New(st, nil, nil).Export(context.Background(), "6815", "2018", filepath.Join(t.TempDir(), "x.csv"))
	var sErr *parsererror.SinkError
	assert.True(t, errors.As(err, &sErr))
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/csv", "workfin.csv"), Path("/csv", "workfin"))
}
