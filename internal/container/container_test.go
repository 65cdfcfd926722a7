package container

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wlharvey4/csv-sqlite3/internal/bankcsv"
	"wlharvey4/csv-sqlite3/internal/config"
	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"
	"wlharvey4/csv-sqlite3/internal/sink"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Database.Name = "workfin"
	cfg.Store.Driver = "sqlite"
	cfg.Store.MaxInflightInserts = 1
	cfg.Store.OnInsertError = "abort"
	cfg.Pipeline.Buffer = 8
	cfg.Ledger.Binary = "ledger"
	cfg.Ledger.ZeroFile = "zero"
	cfg.Paths.DB = filepath.Join(root, "db")
	cfg.Paths.CSV = filepath.Join(root, "csv")
	cfg.Paths.Ledger = filepath.Join(root, "ledger")
	cfg.Paths.Backup = filepath.Join(root, "bak")
	cfg.Paths.USB = filepath.Join(root, "usb")
	cfg.Paths.Worklog = filepath.Join(root, "worklog")
	return cfg
}

func TestNewContainer(t *testing.T) {
	_, err := NewContainer(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration cannot be nil")

	cfg := testConfig(t)
	c, err := NewContainer(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, c.GetLogger())
	assert.Same(t, cfg, c.GetConfig())
	assert.Equal(t, []string{"6151", "6815", "6831"}, c.GetRegistry().Codes())
	assert.NoError(t, c.Close())
}

func TestContainer_RequiredDirs(t *testing.T) {
	cfg := &config.Config{}
	c, err := NewContainer(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	var cfgErr *parsererror.ConfigError

	_, err = c.OpenStore(context.Background(), "workfin")
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "paths.db", cfgErr.Key)

	_, err = c.SourcePath("6815", "2018")
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "paths.usb", cfgErr.Key)

	_, err = c.NewLedgerConverter()
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "paths.ledger", cfgErr.Key)

	_, err = c.NewBackup()
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "paths.backup", cfgErr.Key)

	_, err = c.NewCorrelator(nil, "")
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "paths.worklog", cfgErr.Key)
}

func TestContainer_ValidateAccountYear(t *testing.T) {
	c, err := NewContainer(testConfig(t), logging.NewMockLogger())
	require.NoError(t, err)

	assert.NoError(t, c.ValidateAccountYear("6815", "2018"))

	var vErr *parsererror.ValidationError
	assert.True(t, errors.As(c.ValidateAccountYear("1111", "2018"), &vErr))
	assert.True(t, errors.As(c.ValidateAccountYear("6815", "18"), &vErr))
}

// End to end: normalize a small export into SQLite and the mirror, then export it.
func TestContainer_NormalizeAndExport(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	c, err := NewContainer(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	src, err := c.SourcePath("6815", "2018")
	require.NoError(t, err)
	assert.Equal(t, bankcsv.SourcePath(cfg.Paths.USB, "6815", "2018"), src)
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0750))
	require.NoError(t, os.WriteFile(src, []byte(
		"Date,Transaction,Name,Memo,Amount\n"+
			"1/5/2018,1234,CHECK,,-45.00\n"+
			"1/6/2018,CREDIT,ELECTRONIC DEPOSIT,,100.00\n"), 0600))

	st, err := c.OpenStore(ctx, cfg.Database.Name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	assert.FileExists(t, cfg.DatabasePath("workfin"))

	p, err := c.NewPipeline(ctx, "6815", "2018", st, NormalizeOptions{})
	require.NoError(t, err)
	stats, err := p.Run(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Inserted)

	path, err := c.ExportPath("workfin")
	require.NoError(t, err)
	n, err := c.NewExporter(st).Export(ctx, "6815", "2018", path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "1,usb_6815,2018-01-05,debit,1234,"))
}

func TestContainer_NewPipelineRejectsUnknownAccount(t *testing.T) {
	c, err := NewContainer(testConfig(t), logging.NewMockLogger())
	require.NoError(t, err)

	_, err = c.NewPipeline(context.Background(), "9999", "2018", nil, NormalizeOptions{Policy: models.InsertErrorSkip})
	var vErr *parsererror.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestContainer_NewPipelineMissingSourceLeavesNoMirror(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainer(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(cfg.Paths.CSV, 0o750))

	_, err = c.NewPipeline(context.Background(), "6815", "2018", nil, NormalizeOptions{})
	var vErr *parsererror.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Reason, "does not exist")

	assert.NoFileExists(t, sink.MirrorPath(cfg.Paths.CSV, "6815", "2018"))
}
