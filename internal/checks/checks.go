// Package checks loads check events from the work log into the checks table,
// skipping checks the table already holds.
package checks

import (
	"context"
	"fmt"

	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"
	"wlharvey4/csv-sqlite3/internal/worklog"
)

// Store is the part of the relational store the correlator needs.
type Store interface {
	CheckNumbersForYear(ctx context.Context, year string) (map[string]struct{}, error)
	InsertCheck(ctx context.Context, c *models.Check) error
}

// Result counts the outcome of one correlation run.
type Result struct {
	Seen     int
	Inserted int
	Existing int
	Failed   int
}

// Correlator inserts work-log checks that are not yet stored.
type Correlator struct {
	store  Store
	source worklog.Source
	policy models.InsertErrorPolicy
	logger logging.Logger
}

// NewCorrelator creates a Correlator. An empty policy means abort.
func NewCorrelator(store Store, source worklog.Source, policy models.InsertErrorPolicy, logger logging.Logger) *Correlator {
	if policy == "" {
		policy = models.InsertErrorAbort
	}
	return &Correlator{
		store:  store,
		source: source,
		policy: policy,
		logger: logging.OrDefault(logger),
	}
}

// Run correlates the checks of year. Running it twice inserts nothing the second time.
func (c *Correlator) Run(ctx context.Context, year string) (Result, error) {
	var res Result
	logger := c.logger.WithField(logging.FieldYear, year)

	known, err := c.store.CheckNumbersForYear(ctx, year)
	if err != nil {
		return res, &parsererror.SinkError{Sink: "store", Op: "load check numbers", Err: err}
	}
	logger.Debug("Loaded stored check numbers", logging.F(logging.FieldCount, len(known)))

	err = c.source.Scan(ctx, year, func(check models.Check) error {
		res.Seen++
		if _, ok := known[check.CheckNo]; ok {
			res.Existing++
			return nil
		}

		if err := c.store.InsertCheck(ctx, &check); err != nil {
			res.Failed++
			if c.policy == models.InsertErrorAbort {
				return &parsererror.SinkError{Sink: "store", Op: "insert check", Err: err}
			}
			logger.WithError(err).Warn("Skipping check that failed to insert",
				logging.F(logging.FieldCheckNo, check.CheckNo),
				logging.F(logging.FieldPolicy, string(c.policy)))
			return nil
		}
		known[check.CheckNo] = struct{}{}
		res.Inserted++
		logger.Debug("Inserted check",
			logging.F(logging.FieldCheckNo, check.CheckNo),
			logging.F(logging.FieldAccount, check.Acct))
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("correlating checks for %s: %w", year, err)
	}

	logger.Info("Check correlation finished",
		logging.F("seen", res.Seen),
		logging.F("inserted", res.Inserted),
		logging.F("existing", res.Existing),
		logging.F("failed", res.Failed))
	return res, nil
}
