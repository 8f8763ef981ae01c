package app

import (
	"testing"
	"time"

	"quote-to-cash/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	got, err := parseDate("", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDate("2024-04-30", berlin)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 30, 23, 59, 59, 0, berlin), *got)

	got, err = parseDate(" 2024-04-30T12:00:00Z ", berlin)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)))

	_, err = parseDate("30/04/2024", time.UTC)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
