package models

import "fmt"

// InsertErrorPolicy decides what a failed store insert does to the run.
type InsertErrorPolicy string

const (
	// InsertErrorAbort stops the run at the first failed insert.
	InsertErrorAbort InsertErrorPolicy = "abort"
	// InsertErrorSkip logs the failed row, counts it and carries on.
	InsertErrorSkip InsertErrorPolicy = "skip-and-log"
)

// ParseInsertErrorPolicy accepts "abort" and "skip-and-log". Empty means abort.
func ParseInsertErrorPolicy(s string) (InsertErrorPolicy, error) {
	switch InsertErrorPolicy(s) {
	case "", InsertErrorAbort:
		return InsertErrorAbort, nil
	case InsertErrorSkip:
		return InsertErrorSkip, nil
	default:
		return "", fmt.Errorf("invalid insert error policy %q: want %s or %s", s, InsertErrorAbort, InsertErrorSkip)
	}
}
