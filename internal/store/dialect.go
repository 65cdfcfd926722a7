package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type dialect struct {
	name   string
	schema []string
}

var sqliteDialect = dialect{
	name: DriverSQLite,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS usb (
			rowid     INTEGER PRIMARY KEY NOT NULL,
			acct      TEXT NOT NULL,
			date      TEXT NOT NULL,
			trans     TEXT NOT NULL,
			checkno   TEXT,
			txfr      TEXT,
			payee     TEXT NOT NULL,
			category  TEXT,
			note      TEXT,
			desc1     TEXT,
			desc2     TEXT,
			caseno    TEXT,
			amount    REAL NOT NULL,
			OrigPayee TEXT NOT NULL,
			OrigMemo  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS checks (
			acct    TEXT NOT NULL,
			checkno TEXT NOT NULL,
			date    TEXT NOT NULL,
			payee   TEXT NOT NULL,
			subject TEXT NOT NULL,
			purpose TEXT,
			caseno  TEXT NOT NULL,
			amount  REAL NOT NULL
		)`,
	},
}

var postgresDialect = dialect{
	name: DriverPostgres,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS usb (
			rowid     BIGSERIAL PRIMARY KEY,
			acct      TEXT NOT NULL,
			date      TEXT NOT NULL,
			trans     TEXT NOT NULL,
			checkno   TEXT,
			txfr      TEXT,
			payee     TEXT NOT NULL,
			category  TEXT,
			note      TEXT,
			desc1     TEXT,
			desc2     TEXT,
			caseno    TEXT,
			amount    NUMERIC(12,2) NOT NULL,
			OrigPayee TEXT NOT NULL,
			OrigMemo  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS checks (
			acct    TEXT NOT NULL,
			checkno TEXT NOT NULL,
			date    TEXT NOT NULL,
			payee   TEXT NOT NULL,
			subject TEXT NOT NULL,
			purpose TEXT,
			caseno  TEXT NOT NULL,
			amount  NUMERIC(12,2) NOT NULL
		)`,
	},
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case "", DriverSQLite, "sqlite3":
		return sqliteDialect, nil
	case DriverPostgres, "pgx":
		return postgresDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// rebind rewrites ? placeholders into $1, $2, ... for Postgres.
func (d dialect) rebind(query string) string {
	if d.name != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
