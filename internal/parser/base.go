// Package parser provides the base parser functionality and common interfaces.
package parser

import (
	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/parsererror"
)

// BaseParser carries the name and logger shared by input parsers.
// Parsers embed it:
//
//	type Reader struct {
//		parser.BaseParser
//		// parser-specific fields
//	}
type BaseParser struct {
	name   string
	logger logging.Logger
}

// NewBaseParser creates a BaseParser. A nil logger falls back to the default logger.
func NewBaseParser(name string, logger logging.Logger) BaseParser {
	return BaseParser{
		name:   name,
		logger: logging.OrDefault(logger),
	}
}

// SetLogger replaces the logger. Nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger instance.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// Name identifies the parser in errors and logs.
func (b *BaseParser) Name() string {
	return b.name
}

// ParseError builds a ParseError attributed to this parser.
func (b *BaseParser) ParseError(field, value string, line int, err error) *parsererror.ParseError {
	return &parsererror.ParseError{
		Parser: b.name,
		Field:  field,
		Value:  value,
		Line:   line,
		Err:    err,
	}
}
