package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeBounds(t *testing.T) {
	now := time.Date(2025, 5, 28, 15, 0, 0, 0, time.UTC)

	since, until, err := RangeBounds("", now, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-21", since.Format(time.DateOnly))
	assert.Equal(t, "2025-05-28", until.Format(time.DateOnly))

	since, _, err = RangeBounds("90d", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-27", since.Format(time.DateOnly))

	_, _, err = RangeBounds("1y", now, time.UTC)
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	d, err := ParseDate("2025-05-27", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 27, 0, 0, 0, 0, loc), d)

	_, err = ParseDate("27/05/2025", loc)
	assert.Error(t, err)
}
