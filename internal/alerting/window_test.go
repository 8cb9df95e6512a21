package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBounds_LocalDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	since := time.Date(2025, 5, 20, 15, 30, 0, 0, loc)
	until := time.Date(2025, 5, 27, 1, 0, 0, 0, loc)
	start, end := DayBounds(since, until, loc)

	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 5, 27, 23, 59, 59, 999000000, loc), end)
}

func TestNewIncidentsQuery_SerializesAbsoluteInstants(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	q := NewIncidentsQuery(
		time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 27, 12, 0, 0, 0, time.UTC),
		loc,
	)

	// EDT is UTC-4.
	assert.Equal(t, "2025-05-20T04:00:00.000Z", q.Since)
	assert.Equal(t, "2025-05-28T03:59:59.999Z", q.Until)
	assert.Equal(t, "America/New_York", q.Timezone)
}

func TestNewIncidentsQuery_InstantInAnotherZoneUsesCallerDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2025-05-20T20:00Z is already 2025-05-21 in Tokyo.
	q := NewIncidentsQuery(
		time.Date(2025, 5, 20, 20, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 20, 20, 0, 0, 0, time.UTC),
		loc,
	)
	assert.Equal(t, "2025-05-20T15:00:00.000Z", q.Since)
	assert.Equal(t, "2025-05-21T14:59:59.999Z", q.Until)
}

func TestNewIncidentsQuery_DefaultsToUTC(t *testing.T) {
	q := NewIncidentsQuery(
		time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		nil,
	)
	assert.Equal(t, "2025-05-01T00:00:00.000Z", q.Since)
	assert.Equal(t, "2025-05-01T23:59:59.999Z", q.Until)
	assert.Equal(t, "UTC", q.Timezone)
}
