package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wlharvey4/csv-sqlite3/internal/bankcsv"
	"wlharvey4/csv-sqlite3/internal/common"
	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/normalizer"
	"wlharvey4/csv-sqlite3/internal/parsererror"
	"wlharvey4/csv-sqlite3/internal/sink"
	"wlharvey4/csv-sqlite3/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Date,Transaction,Name,Memo,Amount\n"

type env struct {
	source string
	mirror string
	store  *store.SQLStore
	logger *logging.MockLogger
}

func setup(t *testing.T, content string) env {
	t.Helper()
	dir := t.TempDir()
	source := bankcsv.SourcePath(filepath.Join(dir, "usb"), "6815", "2018")
	require.NoError(t, os.MkdirAll(filepath.Dir(source), 0750))
	require.NoError(t, os.WriteFile(source, []byte(content), 0600))

	s, err := store.Open(context.Background(), store.Options{DSN: filepath.Join(dir, "workfin.sqlite")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return env{
		source: source,
		mirror: sink.MirrorPath(filepath.Join(dir, "csv"), "6815", "2018"),
		store:  s,
		logger: logging.NewMockLogger(),
	}
}

func run(t *testing.T, e env, opts sink.Options) (Stats, error) {
	t.Helper()
	mirror, err := sink.OpenMirror(e.mirror)
	require.NoError(t, err)
	opts.Logger = e.logger
	w := sink.NewWriter(context.Background(), mirror, e.store, opts)
	p := New(normalizer.NewTransformer("6815", "2018"), w, Options{Buffer: 2, Logger: e.logger})
	return p.Run(context.Background(), e.source)
}

func mirrorRows(t *testing.T, path string) []models.NormalizedTransaction {
	t.Helper()
	rows, err := common.ReadCSVFile[models.NormalizedTransaction](path, nil)
	require.NoError(t, err)
	return rows
}

func storeRows(t *testing.T, s *store.SQLStore) []models.NormalizedTransaction {
	t.Helper()
	rows, err := s.TransactionsForAccountYear(context.Background(), "6815", "2018")
	require.NoError(t, err)
	return rows
}

func TestRun_OneToOne(t *testing.T) {
	content := header +
		"01/02/2018,DEBIT,CHECK,Download from usbank.com. check 00123,-45.00\n" +
		"1/5/2018,DEBIT,DEBIT PURCHASE -VISA SQ *PHIL 877-417-4551WA,Download from usbank.com. SQ *PHIL,-159.00\n" +
		"1/6/2018,CREDIT,MOBILE BANKING TRANSFER DEPOSIT 6831,,250.00\n" +
		"1/7/2018,DEBIT,OVERDRAFT PAID FEE,,-36.00\n" +
		"1/8/2018,CREDIT,ELECTRONIC DEPOSIT PAYPAL TRANSFER,PAYPAL TRANSFER,12.34\n"
	e := setup(t, content)

	stats, err := run(t, e, sink.Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 5, stats.Read)
	assert.Equal(t, 5, stats.Mirrored)
	assert.Equal(t, 5, stats.Inserted)
	assert.Zero(t, stats.InsertFailures)

	mirrored := mirrorRows(t, e.mirror)
	stored := storeRows(t, e.store)
	require.Len(t, mirrored, 5)
	require.Len(t, stored, 5)

	for i := range mirrored {
		assert.Equal(t, mirrored[i].Payee, stored[i].Payee)
		assert.Equal(t, mirrored[i].Note, stored[i].Note)
		assert.Equal(t, mirrored[i].Amount.String(), stored[i].Amount.String())
		assert.Equal(t, int64(i+1), stored[i].RowID)
	}

	assert.Equal(t, "(123) check", stored[0].Payee)
	assert.Equal(t, "123", stored[0].CheckNo)
	assert.Equal(t, "2018-01-02", stored[0].Date)
	assert.Equal(t, "45.00", stored[0].Amount.String())
	assert.Equal(t, "square *phil", stored[1].Payee)
	assert.Equal(t, "visa", stored[1].Desc2)
	assert.Equal(t, "< usb_6831", stored[2].Txfr)
	assert.Equal(t, "usbank", stored[3].Payee)
	assert.Equal(t, "< paypal", stored[4].Txfr)

	for _, entry := range e.logger.GetEntries() {
		runID, ok := entry.FieldValue(logging.FieldRunID)
		assert.True(t, ok, "entry %q carries the run id", entry.Message)
		assert.Equal(t, stats.RunID, runID)
	}
}

func TestRun_MalformedRowStopsRun(t *testing.T) {
	content := header +
		"1/1/2018,DEBIT,ONE,,-1\n" +
		"1/2/2018,DEBIT,TWO,,-2\n" +
		"1/3/2018,DEBIT,THREE,,-3\n" +
		"1/4/2018,DEBIT,FOUR,,-4\n" +
		"1/5/2018,DEBIT,FIVE\n" +
		"1/6/2018,DEBIT,SIX,,-6\n"
	e := setup(t, content)

	stats, err := run(t, e, sink.Options{})

	var pErr *parsererror.ParseError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, 6, pErr.Line)
	assert.Equal(t, 4, stats.Mirrored)
	assert.Equal(t, 4, stats.Inserted)

	mirrored := mirrorRows(t, e.mirror)
	stored := storeRows(t, e.store)
	require.Len(t, mirrored, 4)
	require.Len(t, stored, 4)
	assert.Equal(t, "four", mirrored[3].Payee)
	assert.Equal(t, "four", stored[3].Payee)
}

func TestRun_BadAmountStopsRun(t *testing.T) {
	content := header +
		"1/1/2018,DEBIT,ONE,,-1\n" +
		"1/2/2018,DEBIT,TWO,,abc\n" +
		"1/3/2018,DEBIT,THREE,,-3\n"
	e := setup(t, content)

	stats, err := run(t, e, sink.Options{})

	var pErr *parsererror.ParseError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, models.ColAmount, pErr.Field)
	assert.Equal(t, 1, stats.Mirrored)
	assert.Len(t, storeRows(t, e.store), 1)
}

func TestRun_BadHeader(t *testing.T) {
	e := setup(t, "Date,Amount\n1/1/2018,-1\n")

	stats, err := run(t, e, sink.Options{})

	var vErr *parsererror.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Zero(t, stats.Read)
	assert.Empty(t, storeRows(t, e.store))
}

func TestRun_MissingSource(t *testing.T) {
	e := setup(t, header)
	e.source = filepath.Join(filepath.Dir(e.source), "missing.csv")

	_, err := run(t, e, sink.Options{})
	var vErr *parsererror.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestRun_ConcurrentInserts(t *testing.T) {
	var b strings.Builder
	b.WriteString(header)
	for i := 1; i <= 28; i++ {
		fmt.Fprintf(&b, "2/%d/2018,DEBIT,STORE %d,,-1.00\n", i, i)
	}
	e := setup(t, b.String())

	stats, err := run(t, e, sink.Options{MaxInFlight: 4})
	require.NoError(t, err)
	assert.Equal(t, 28, stats.Inserted)
	assert.Len(t, storeRows(t, e.store), 28)
	assert.Len(t, mirrorRows(t, e.mirror), 28)
}

func TestRun_RerunAppends(t *testing.T) {
	e := setup(t, header+"1/1/2018,DEBIT,ONE,,-1\n")

	_, err := run(t, e, sink.Options{})
	require.NoError(t, err)
	_, err = run(t, e, sink.Options{})
	require.NoError(t, err)

	assert.Len(t, mirrorRows(t, e.mirror), 2)
	assert.Len(t, storeRows(t, e.store), 2)
}
