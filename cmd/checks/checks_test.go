package checks_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wlharvey4/csv-sqlite3/cmd/checks"
	"wlharvey4/csv-sqlite3/internal/config"
	"wlharvey4/csv-sqlite3/internal/container"
	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"
	"wlharvey4/csv-sqlite3/internal/worklog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksCommand_Metadata(t *testing.T) {
	assert.Equal(t, "checks <year>", checks.Cmd.Use)
	assert.Contains(t, checks.Cmd.Short, "work log")
	assert.NotNil(t, checks.Cmd.Run)
	assert.NotNil(t, checks.Cmd.Flags().Lookup("on-insert-error"))
	assert.Error(t, checks.Cmd.Args(checks.Cmd, []string{}))
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Paths.DB = filepath.Join(root, "db")
	cfg.Paths.Worklog = filepath.Join(root, "worklog")
	c, err := container.NewContainer(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(cfg.Paths.Worklog, 0750))
	require.NoError(t, os.WriteFile(worklog.Path(cfg.Paths.Worklog, "2017"), []byte(
		"2017-06-01\n"+
			"    check 501 | 6815 | Recorder | deed | | 17-9 | 30.00\n"+
			"    check 502 | 6815 | Courier | filing | | 17-9 | 15.00\n"), 0600))

	ctx := context.Background()
	res, err := checks.Run(ctx, c, "workfin", "2017", models.InsertErrorAbort)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)

	res, err = checks.Run(ctx, c, "workfin", "2017", "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 2, res.Existing)
}

func TestRun_MissingWorklogDir(t *testing.T) {
	cfg := &config.Config{}
	cfg.Paths.DB = t.TempDir()
	c, err := container.NewContainer(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	_, err = checks.Run(context.Background(), c, "workfin", "2017", "")
	var cfgErr *parsererror.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "paths.worklog", cfgErr.Key)
}
