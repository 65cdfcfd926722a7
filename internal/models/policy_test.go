package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInsertErrorPolicy(t *testing.T) {
	p, err := ParseInsertErrorPolicy("")
	require.NoError(t, err)
	assert.Equal(t, InsertErrorAbort, p)

	p, err = ParseInsertErrorPolicy("skip-and-log")
	require.NoError(t, err)
	assert.Equal(t, InsertErrorSkip, p)

	_, err = ParseInsertErrorPolicy("retry")
	assert.Error(t, err)
}
