// Package pipeline wires reader, transformer and dual-sink writer into one run.
package pipeline

import (
	"context"
	"errors"
	"time"

	"wlharvey4/csv-sqlite3/internal/bankcsv"
	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/normalizer"
	"wlharvey4/csv-sqlite3/internal/parser"
	"wlharvey4/csv-sqlite3/internal/sink"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultBuffer is the number of raw records queued between reader and transformer.
const DefaultBuffer = 64

// Stats summarizes a run.
type Stats struct {
	RunID string
	Read  int
	sink.Stats
	Duration time.Duration
}

// StreamerFactory builds the reader for one source file.
type StreamerFactory func(path string, logger logging.Logger) parser.RecordStreamer

// Options tune a pipeline.
type Options struct {
	Buffer      int
	Logger      logging.Logger
	NewStreamer StreamerFactory
}

// Pipeline normalizes one bank export into the writer's sinks. It is single-use:
// Run closes the writer.
type Pipeline struct {
	transformer *normalizer.Transformer
	writer      *sink.Writer
	buffer      int
	logger      logging.Logger
	newStreamer StreamerFactory
}

// New creates a pipeline.
func New(transformer *normalizer.Transformer, writer *sink.Writer, opts Options) *Pipeline {
	if opts.Buffer < 1 {
		opts.Buffer = DefaultBuffer
	}
	if opts.NewStreamer == nil {
		opts.NewStreamer = func(path string, logger logging.Logger) parser.RecordStreamer {
			return bankcsv.NewReader(path, logger)
		}
	}
	return &Pipeline{
		transformer: transformer,
		writer:      writer,
		buffer:      opts.Buffer,
		logger:      logging.OrDefault(opts.Logger),
		newStreamer: opts.NewStreamer,
	}
}

// Run streams path through the transformer into both sinks. Rows read before a
// malformed row are still written; nothing after it is.
func (p *Pipeline) Run(ctx context.Context, path string) (Stats, error) {
	start := time.Now()
	stats := Stats{RunID: uuid.NewString()}
	rc := p.transformer.Context()
	logger := p.logger.WithFields(
		logging.F(logging.FieldRunID, stats.RunID),
		logging.F(logging.FieldAccount, rc.Acct),
		logging.F(logging.FieldYear, rc.Year),
		logging.F(logging.FieldFile, path),
	)

	f, err := bankcsv.Open(path)
	if err != nil {
		if closeErr := p.writer.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return stats, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close source file")
		}
	}()

	logger.Info("Starting normalization")

	records := make(chan models.RawRecord, p.buffer)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(records)
		return p.newStreamer(path, logger).Stream(gctx, f, records)
	})

	g.Go(func() error {
		// Drains everything the reader queued, even after the reader failed,
		// so rows before a bad row reach both sinks.
		for rec := range records {
			stats.Read++
			tx, err := p.transformer.Transform(rec)
			if err != nil {
				logger.WithError(err).Error("Failed to normalize row",
					logging.F(logging.FieldLine, stats.Read))
				return err
			}
			if err := p.writer.Write(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})

	err = g.Wait()
	if closeErr := p.writer.Close(); closeErr != nil && closeErr != err {
		err = errors.Join(err, closeErr)
	}

	stats.Stats = p.writer.Stats()
	stats.Duration = time.Since(start)

	fields := []logging.Field{
		logging.F(logging.FieldCount, stats.Read),
		logging.F("mirrored", stats.Mirrored),
		logging.F("inserted", stats.Inserted),
		logging.F("insert_failures", stats.InsertFailures),
		logging.F(logging.FieldDuration, stats.Duration.Milliseconds()),
	}
	if err != nil {
		logger.WithError(err).Error("Normalization stopped", fields...)
		return stats, err
	}
	logger.Info("Normalization finished", fields...)
	return stats, nil
}
