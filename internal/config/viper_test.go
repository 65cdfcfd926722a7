package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnvVars = []string{
	"CSVSQL_LOG_LEVEL",
	"CSVSQL_LOG_FORMAT",
	"CSVSQL_DATABASE_NAME",
	"CSVSQL_STORE_DRIVER",
	"CSVSQL_STORE_DSN",
	"CSVSQL_STORE_MAX_INFLIGHT_INSERTS",
	"CSVSQL_STORE_ON_INSERT_ERROR",
	"CSVSQL_PIPELINE_BUFFER",
	"CSVSQL_YEARS",
	"CSVSQL_PATHS_DB",
	"CSVSQL_PATHS_CSV",
	"WORKDB",
	"WORKCSV",
	"WORKLEDGER",
	"WORKBAK",
	"WORKUSB",
	"WORKLOG",
	"LOG_LEVEL",
}

// isolate clears the variables under test and runs from an empty directory
// with an empty HOME so no stray config file is read.
func isolate(t *testing.T) string {
	t.Helper()
	for _, env := range testEnvVars {
		t.Setenv(env, "")
	}
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestInitializeConfig_Defaults(t *testing.T) {
	isolate(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "workfin", config.Database.Name)
	assert.Equal(t, "sqlite", config.Store.Driver)
	assert.Equal(t, 1, config.Store.MaxInflightInserts)
	assert.Equal(t, "abort", config.Store.OnInsertError)
	assert.Equal(t, 64, config.Pipeline.Buffer)
	assert.Equal(t, map[string]string{"6815": "Business", "6831": "Trust", "6151": "Personal"}, config.Accounts)
	assert.Empty(t, config.Years)
	assert.Equal(t, "ledger", config.Ledger.Binary)
	assert.Equal(t, "zero", config.Ledger.ZeroFile)
	assert.Empty(t, config.Paths.DB)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	isolate(t)

	for key, value := range map[string]string{
		"CSVSQL_LOG_FORMAT":                 "json",
		"CSVSQL_STORE_MAX_INFLIGHT_INSERTS": "8",
		"CSVSQL_STORE_ON_INSERT_ERROR":      "skip-and-log",
		"CSVSQL_YEARS":                      "2016,2017",
		"WORKDB":                            "/work/db",
		"WORKCSV":                           "/work/csv",
		"WORKLEDGER":                        "/work/ledger",
		"WORKBAK":                           "/work/bak",
		"WORKUSB":                           "/work/usb",
		"WORKLOG":                           "/work/log",
		"LOG_LEVEL":                         "debug",
	} {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, 8, config.Store.MaxInflightInserts)
	assert.Equal(t, "skip-and-log", config.Store.OnInsertError)
	assert.Equal(t, []string{"2016", "2017"}, config.Years)
	assert.Equal(t, "/work/db", config.Paths.DB)
	assert.Equal(t, "/work/csv", config.Paths.CSV)
	assert.Equal(t, "/work/ledger", config.Paths.Ledger)
	assert.Equal(t, "/work/bak", config.Paths.Backup)
	assert.Equal(t, "/work/usb", config.Paths.USB)
	assert.Equal(t, "/work/log", config.Paths.Worklog)
}

func TestInitializeConfig_PrefixedVariableWins(t *testing.T) {
	isolate(t)
	t.Setenv("WORKDB", "/legacy/db")
	t.Setenv("CSVSQL_PATHS_DB", "/prefixed/db")

	config, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, "/prefixed/db", config.Paths.DB)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	dir := isolate(t)

	content := `log:
  level: warn
database:
  name: books
accounts:
  "1234": Savings
years: ["2018"]
paths:
  csv: /from/file
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))
	t.Setenv("WORKCSV", "/from/env")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "books", config.Database.Name)
	assert.Equal(t, "Savings", config.Accounts["1234"])
	assert.Equal(t, "Business", config.Accounts["6815"], "file accounts extend the defaults")
	assert.Equal(t, []string{"2018"}, config.Years)
	assert.Equal(t, "/from/env", config.Paths.CSV, "environment overrides the file")
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		value  string
		errMsg string
	}{
		{"log level", "CSVSQL_LOG_LEVEL", "loud", "invalid log level"},
		{"log format", "CSVSQL_LOG_FORMAT", "xml", "invalid log format"},
		{"driver", "CSVSQL_STORE_DRIVER", "mysql", "invalid store driver"},
		{"postgres without dsn", "CSVSQL_STORE_DRIVER", "postgres", "store.dsn is required"},
		{"inflight", "CSVSQL_STORE_MAX_INFLIGHT_INSERTS", "0", "max_inflight_inserts"},
		{"policy", "CSVSQL_STORE_ON_INSERT_ERROR", "retry", "invalid insert error policy"},
		{"buffer", "CSVSQL_PIPELINE_BUFFER", "-1", "pipeline.buffer"},
		{"years", "CSVSQL_YEARS", "18", "invalid year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.env, tt.value)

			_, err := InitializeConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
