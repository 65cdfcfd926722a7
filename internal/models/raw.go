package models

// RawRecord is one row of a bank export keyed by header text.
type RawRecord map[string]string

// Get returns the value for column, or "" when the column is absent.
func (r RawRecord) Get(column string) string {
	return r[column]
}
