package parser

import (
	"context"
	"io"

	"wlharvey4/csv-sqlite3/internal/models"
)

// RecordStreamer reads a bank export and emits one RawRecord per data row, in file order.
// Implementations stop at the first malformed row and return a *parsererror.ParseError;
// rows emitted before it stay emitted. Stream never closes out.
type RecordStreamer interface {
	Stream(ctx context.Context, r io.Reader, out chan<- models.RawRecord) error
}
