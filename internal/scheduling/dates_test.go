package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableDatesProperties(t *testing.T) {
	start := time.Date(2025, time.January, 1, 15, 30, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		today := start.AddDate(0, 0, i)
		dates := AvailableDates(today)

		require.NotEmpty(t, dates, "today=%s", today)
		assert.LessOrEqual(t, len(dates), BookingHorizonDays)
		assert.True(t, dates[0].IsEarliest, "first entry must be earliest (today=%s)", today)

		for j, d := range dates {
			assert.NotEqual(t, time.Sunday, d.Day.Weekday(), "sunday offered: %s", d.Date)
			assert.True(t, d.Day.After(today), "date %s not after today", d.Date)
			if j > 0 {
				assert.True(t, d.Day.After(dates[j-1].Day), "dates not increasing at %d", j)
				assert.False(t, d.IsEarliest, "only the first entry is earliest")
			}
		}
	}
}

func TestAvailableDatesFromSaturday(t *testing.T) {
	// Saturday: tomorrow is Sunday, so the earliest date is Monday.
	today := time.Date(2025, time.March, 8, 9, 0, 0, 0, time.UTC)
	dates := AvailableDates(today)

	require.Len(t, dates, 12)
	assert.Equal(t, "2025-03-10", dates[0].Date)
	assert.Equal(t, "Mon, Mar 10", dates[0].Display)
	assert.True(t, dates[0].IsEarliest)
	assert.Equal(t, "2025-03-22", dates[len(dates)-1].Date)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = ParseDate("03/10/2025", time.UTC)
	assert.Error(t, err)
}
