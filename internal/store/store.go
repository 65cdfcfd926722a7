// Package store persists normalized transactions and checks in a relational database:
// SQLite through modernc.org/sqlite by default, or Postgres through pgx.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"wlharvey4/csv-sqlite3/internal/dateutils"
	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store is the relational sink and the query surface used by export and check correlation.
type Store interface {
	// InsertTransaction stores tx and returns its surrogate key.
	InsertTransaction(ctx context.Context, tx *models.NormalizedTransaction) (int64, error)
	// TransactionsForAccountYear returns the rows of acct whose date starts with year,
	// in insertion order.
	TransactionsForAccountYear(ctx context.Context, acct, year string) ([]models.NormalizedTransaction, error)
	// CheckNumbersForYear returns the check numbers already stored for year.
	CheckNumbersForYear(ctx context.Context, year string) (map[string]struct{}, error)
	// InsertCheck stores one check.
	InsertCheck(ctx context.Context, c *models.Check) error
	// ChecksForYear returns the stored checks of year ordered by date and number.
	ChecksForYear(ctx context.Context, year string) ([]models.Check, error)
	Close() error
}

// Options selects the database.
type Options struct {
	Driver string // sqlite (default) or postgres
	// DSN is a file path for SQLite and a connection string for Postgres.
	DSN string
}

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db      *sql.DB
	pool    *pgxpool.Pool
	dialect dialect
	logger  logging.Logger
}

var _ Store = (*SQLStore)(nil)

// Open connects to the database and creates the usb and checks tables if needed.
func Open(ctx context.Context, opts Options, logger logging.Logger) (*SQLStore, error) {
	logger = logging.OrDefault(logger)

	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}
	if opts.DSN == "" {
		return nil, fmt.Errorf("store: empty DSN for driver %s", d.name)
	}

	s := &SQLStore{dialect: d, logger: logger}
	switch d.name {
	case DriverPostgres:
		pool, err := pgxpool.New(ctx, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres pool: %w", err)
		}
		s.pool = pool
		s.db = stdlib.OpenDBFromPool(pool)
	default:
		db, err := sql.Open("sqlite", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		// SQLite has a single writer.
		db.SetMaxOpenConns(1)
		s.db = db
	}

	if err := s.db.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("connect %s: %w", d.name, err)
	}
	for _, stmt := range d.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	logger.Debug("Opened store",
		logging.F(logging.FieldDriver, d.name))
	return s, nil
}

// Close releases the database handle and, for Postgres, the pool behind it.
func (s *SQLStore) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// Driver returns the dialect in use.
func (s *SQLStore) Driver() string {
	return s.dialect.name
}

// nullable maps "" to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var transactionInsert = fmt.Sprintf(
	"INSERT INTO usb (%s) VALUES (%s) RETURNING rowid",
	strings.Join(models.TransactionColumns, ", "),
	placeholders(len(models.TransactionColumns)),
)

// InsertTransaction implements Store.
func (s *SQLStore) InsertTransaction(ctx context.Context, tx *models.NormalizedTransaction) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(transactionInsert),
		tx.Acct,
		tx.Date,
		tx.Trans,
		nullable(tx.CheckNo),
		nullable(tx.Txfr),
		tx.Payee,
		nullable(tx.Category),
		nullable(tx.Note),
		nullable(tx.Desc1),
		nullable(tx.Desc2),
		nullable(tx.CaseNo),
		tx.Amount,
		tx.OrigPayee,
		tx.OrigMemo,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	tx.RowID = id
	return id, nil
}

var transactionSelect = fmt.Sprintf(
	"SELECT rowid, %s FROM usb WHERE acct = ? AND date LIKE ? ORDER BY rowid",
	strings.Join(models.TransactionColumns, ", "),
)

// TransactionsForAccountYear implements Store.
func (s *SQLStore) TransactionsForAccountYear(ctx context.Context, acct, year string) ([]models.NormalizedTransaction, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(transactionSelect),
		models.AccountCode(acct), dateutils.YearPattern(year))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.NormalizedTransaction
	for rows.Next() {
		var tx models.NormalizedTransaction
		var checkNo, txfr, category, note, d1, d2, caseNo sql.NullString
		if err := rows.Scan(
			&tx.RowID, &tx.Acct, &tx.Date, &tx.Trans, &checkNo, &txfr, &tx.Payee,
			&category, &note, &d1, &d2, &caseNo, &tx.Amount, &tx.OrigPayee, &tx.OrigMemo,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.CheckNo = checkNo.String
		tx.Txfr = txfr.String
		tx.Category = category.String
		tx.Note = note.String
		tx.Desc1 = d1.String
		tx.Desc2 = d2.String
		tx.CaseNo = caseNo.String
		out = append(out, tx)
	}
	return out, rows.Err()
}

// CheckNumbersForYear implements Store.
func (s *SQLStore) CheckNumbersForYear(ctx context.Context, year string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind("SELECT checkno FROM checks WHERE date LIKE ?"),
		dateutils.YearPattern(year))
	if err != nil {
		return nil, fmt.Errorf("query check numbers: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var checkNo string
		if err := rows.Scan(&checkNo); err != nil {
			return nil, fmt.Errorf("scan check number: %w", err)
		}
		seen[checkNo] = struct{}{}
	}
	return seen, rows.Err()
}

var checkInsert = fmt.Sprintf(
	"INSERT INTO checks (%s) VALUES (%s)",
	strings.Join(models.CheckColumns, ", "),
	placeholders(len(models.CheckColumns)),
)

// InsertCheck implements Store.
func (s *SQLStore) InsertCheck(ctx context.Context, c *models.Check) error {
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(checkInsert),
		c.Acct, c.CheckNo, c.Date, c.Payee, c.Subject, nullable(c.Purpose), c.CaseNo, c.Amount)
	if err != nil {
		return fmt.Errorf("insert check %s: %w", c.CheckNo, err)
	}
	return nil
}

var checkSelect = fmt.Sprintf(
	"SELECT %s FROM checks WHERE date LIKE ? ORDER BY date, checkno",
	strings.Join(models.CheckColumns, ", "),
)

// ChecksForYear implements Store.
func (s *SQLStore) ChecksForYear(ctx context.Context, year string) ([]models.Check, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(checkSelect), dateutils.YearPattern(year))
	if err != nil {
		return nil, fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	var out []models.Check
	for rows.Next() {
		var c models.Check
		var purpose sql.NullString
		if err := rows.Scan(&c.Acct, &c.CheckNo, &c.Date, &c.Payee, &c.Subject, &purpose, &c.CaseNo, &c.Amount); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		c.Purpose = purpose.String
		out = append(out, c)
	}
	return out, rows.Err()
}
