package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"wlharvey4/csv-sqlite3/internal/dateutils"
	"wlharvey4/csv-sqlite3/internal/models"
)

// MockStore is an in-memory Store for testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	Transactions []models.NormalizedTransaction
	Checks       []models.Check

	// Error flags for testing error conditions
	InsertTransactionError error
	InsertCheckError       error
	QueryError             error
	// FailTransaction, when set, makes InsertTransaction fail for matching rows.
	FailTransaction func(tx *models.NormalizedTransaction) bool
	// FailCheck, when set, makes InsertCheck fail for matching checks.
	FailCheck func(c *models.Check) bool

	Closed bool
}

var _ Store = (*MockStore)(nil)

// InsertTransaction appends tx and assigns the next row id.
func (m *MockStore) InsertTransaction(_ context.Context, tx *models.NormalizedTransaction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertTransactionError != nil {
		return 0, m.InsertTransactionError
	}
	if m.FailTransaction != nil && m.FailTransaction(tx) {
		return 0, fmt.Errorf("mock insert rejected %s %s", tx.Date, tx.Payee)
	}
	tx.RowID = int64(len(m.Transactions) + 1)
	m.Transactions = append(m.Transactions, *tx)
	return tx.RowID, nil
}

// TransactionsForAccountYear filters the stored transactions.
func (m *MockStore) TransactionsForAccountYear(_ context.Context, acct, year string) ([]models.NormalizedTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.QueryError != nil {
		return nil, m.QueryError
	}
	var out []models.NormalizedTransaction
	for _, tx := range m.Transactions {
		if tx.Acct == models.AccountCode(acct) && strings.HasPrefix(tx.Date, year) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// CheckNumbersForYear returns the numbers of the stored checks of year.
func (m *MockStore) CheckNumbersForYear(_ context.Context, year string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.QueryError != nil {
		return nil, m.QueryError
	}
	seen := make(map[string]struct{})
	for _, c := range m.Checks {
		if dateutils.InYear(c.Date, year) {
			seen[c.CheckNo] = struct{}{}
		}
	}
	return seen, nil
}

// InsertCheck appends c.
func (m *MockStore) InsertCheck(_ context.Context, c *models.Check) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertCheckError != nil {
		return m.InsertCheckError
	}
	if m.FailCheck != nil && m.FailCheck(c) {
		return fmt.Errorf("mock insert rejected check %s", c.CheckNo)
	}
	m.Checks = append(m.Checks, *c)
	return nil
}

// ChecksForYear returns the stored checks of year in insertion order.
func (m *MockStore) ChecksForYear(_ context.Context, year string) ([]models.Check, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.QueryError != nil {
		return nil, m.QueryError
	}
	var out []models.Check
	for _, c := range m.Checks {
		if dateutils.InYear(c.Date, year) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Close marks the store closed.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// TransactionCount returns the number of stored transactions.
func (m *MockStore) TransactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Transactions)
}
