// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"
)

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// InsertErrorPolicy parses the --on-insert-error flag. Empty defers to configuration.
func InsertErrorPolicy(flag string) (models.InsertErrorPolicy, error) {
	if flag == "" {
		return "", nil
	}
	return models.ParseInsertErrorPolicy(flag)
}

// Close closes c and logs a failure instead of returning it.
func Close(c io.Closer, what string, log logging.Logger) {
	if err := c.Close(); err != nil {
		log.WithError(err).Warn("Failed to close " + what)
	}
}

// ErrorFields describes err with the fields of the typed errors it wraps.
func ErrorFields(err error) []logging.Field {
	var (
		pErr   *parsererror.ParseError
		vErr   *parsererror.ValidationError
		cfgErr *parsererror.ConfigError
		sErr   *parsererror.SinkError
	)
	switch {
	case errors.As(err, &pErr):
		return []logging.Field{
			logging.F("parser", pErr.Parser),
			logging.F(logging.FieldLine, pErr.Line),
			logging.F("field", pErr.Field),
		}
	case errors.As(err, &vErr):
		return []logging.Field{logging.F(logging.FieldFile, vErr.FilePath)}
	case errors.As(err, &cfgErr):
		return []logging.Field{logging.F("key", cfgErr.Key)}
	case errors.As(err, &sErr):
		return []logging.Field{
			logging.F(logging.FieldSink, sErr.Sink),
			logging.F(logging.FieldOperation, sErr.Op),
		}
	}
	return nil
}

// Fail logs err with its typed fields and exits non-zero.
func Fail(log logging.Logger, msg string, err error) {
	log.WithError(err).WithFields(ErrorFields(err)...).Error(msg)
	log.Fatalf("%s: %v", msg, err)
}
