package parser

import (
	"errors"
	"testing"

	"wlharvey4/csv-sqlite3/internal/logging"

	"github.com/stretchr/testify/assert"
)

func TestNewBaseParser(t *testing.T) {
	mock := logging.NewMockLogger()
	b := NewBaseParser("bankcsv", mock)

	assert.Equal(t, "bankcsv", b.Name())
	assert.Same(t, mock, b.GetLogger())
}

func TestNewBaseParser_NilLogger(t *testing.T) {
	b := NewBaseParser("worklog", nil)
	assert.NotNil(t, b.GetLogger())
}

func TestBaseParser_SetLogger(t *testing.T) {
	b := NewBaseParser("bankcsv", nil)
	mock := logging.NewMockLogger()

	b.SetLogger(mock)
	assert.Same(t, mock, b.GetLogger())

	b.SetLogger(nil)
	assert.Same(t, mock, b.GetLogger())
}

func TestBaseParser_ParseError(t *testing.T) {
	b := NewBaseParser("bankcsv", nil)
	cause := errors.New("wrong number of fields")

	err := b.ParseError("row", "a,b", 4, cause)
	assert.Equal(t, "bankcsv", err.Parser)
	assert.Equal(t, 4, err.Line)
	assert.ErrorIs(t, err, cause)
}
