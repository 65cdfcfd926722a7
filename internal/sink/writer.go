// Package sink writes each normalized transaction to both the CSV mirror and the
// relational store.
package sink

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"

	"golang.org/x/sync/errgroup"
)

// Inserter is the part of the store the writer needs.
type Inserter interface {
	InsertTransaction(ctx context.Context, tx *models.NormalizedTransaction) (int64, error)
}

// Stats counts what reached each sink.
type Stats struct {
	Mirrored       int
	Inserted       int
	InsertFailures int
}

// Options tune the writer.
type Options struct {
	// MaxInFlight bounds concurrent inserts. 1 (the default) keeps store order
	// identical to file order.
	MaxInFlight int
	Policy      models.InsertErrorPolicy
	Logger      logging.Logger
}

// Writer is the dual-sink writer. Write must be called from a single goroutine.
type Writer struct {
	mirror *Mirror
	store  Inserter
	policy models.InsertErrorPolicy
	logger logging.Logger

	group    *errgroup.Group
	groupCtx context.Context
	slots    chan struct{}
	aborted  atomic.Bool

	mirrored  int
	inserted  atomic.Int64
	failures  atomic.Int64
	closeOnce sync.Once
	closeErr  error
}

// NewWriter creates a writer whose inserts run under ctx.
func NewWriter(ctx context.Context, mirror *Mirror, store Inserter, opts Options) *Writer {
	if opts.MaxInFlight < 1 {
		opts.MaxInFlight = 1
	}
	if opts.Policy == "" {
		opts.Policy = models.InsertErrorAbort
	}

	group, groupCtx := errgroup.WithContext(ctx)

	return &Writer{
		mirror:   mirror,
		store:    store,
		policy:   opts.Policy,
		logger:   logging.OrDefault(opts.Logger),
		group:    group,
		groupCtx: groupCtx,
		slots:    make(chan struct{}, opts.MaxInFlight),
	}
}

// Write waits for a free insert slot, appends tx to the mirror, then queues its
// insert. A row reaches the mirror only once its insert is certain to be
// attempted, so after an aborted insert the mirror holds at most the rows that
// were already in flight. Under the abort policy the first failed insert is
// returned by this or a later Write, and by Close.
func (w *Writer) Write(ctx context.Context, tx models.NormalizedTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case w.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.groupCtx.Done():
		return w.stop()
	}
	if w.aborted.Load() || w.groupCtx.Err() != nil {
		<-w.slots
		return w.stop()
	}

	if err := w.mirror.Append(&tx); err != nil {
		<-w.slots
		return err
	}
	w.mirrored++

	w.group.Go(func() error {
		defer func() { <-w.slots }()
		if w.aborted.Load() || w.groupCtx.Err() != nil {
			return nil
		}
		if _, err := w.store.InsertTransaction(w.groupCtx, &tx); err != nil {
			w.failures.Add(1)
			sinkErr := &parsererror.SinkError{Sink: "store", Op: "insert", Err: err}
			if w.policy == models.InsertErrorAbort {
				// Set before the slot is released so the next Write sees it.
				w.aborted.Store(true)
				return sinkErr
			}
			w.logger.WithError(err).Warn("Skipping row the store rejected",
				logging.F(logging.FieldPolicy, string(w.policy)),
				logging.F(logging.FieldAccount, tx.Acct),
				logging.F("date", tx.Date),
				logging.F("payee", tx.Payee))
			return nil
		}
		w.inserted.Add(1)
		return nil
	})
	return nil
}

// stop closes the writer after an aborted insert and returns the failure.
func (w *Writer) stop() error {
	if err := w.Close(); err != nil {
		return err
	}
	if err := w.groupCtx.Err(); err != nil {
		return err
	}
	return context.Canceled
}

// Close waits for pending inserts, then flushes and closes the mirror.
// It is safe to call more than once.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		waitErr := w.group.Wait()
		w.closeErr = errors.Join(waitErr, w.mirror.Close())
	})
	return w.closeErr
}

// Stats reports the counts so far. Call after Close for final numbers.
func (w *Writer) Stats() Stats {
	return Stats{
		Mirrored:       w.mirrored,
		Inserted:       int(w.inserted.Load()),
		InsertFailures: int(w.failures.Load()),
	}
}
