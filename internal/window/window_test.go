package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "emailstats/pkg/errors"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return ts
}

func TestForDay(t *testing.T) {
	w, err := ForDay("2024-03-10")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-10", w.Day)
	assert.True(t, mustTime(t, "2024-03-10T00:00:00.000Z").Equal(w.Start))
	assert.True(t, mustTime(t, "2024-03-10T23:59:59.999Z").Equal(w.End))
	assert.Equal(t, time.UTC, w.Start.Location())
	assert.Equal(t, "2024-03-10T23:59:59.999Z", w.End.Format("2006-01-02T15:04:05.000Z07:00"))
}

func TestForHour(t *testing.T) {
	tests := []struct {
		hour  int
		start string
		end   string
	}{
		{hour: 5, start: "2024-03-10T04:59:00Z", end: "2024-03-10T05:01:00Z"},
		{hour: 23, start: "2024-03-10T22:59:00Z", end: "2024-03-10T23:01:00Z"},
		{hour: 0, start: "2024-03-09T23:59:00Z", end: "2024-03-10T00:01:00Z"},
	}

	for _, tt := range tests {
		w, err := ForHour("2024-03-10", tt.hour)
		require.NoError(t, err)
		assert.True(t, mustTime(t, tt.start).Equal(w.Start), "hour %d start %s", tt.hour, w.Start)
		assert.True(t, mustTime(t, tt.end).Equal(w.End), "hour %d end %s", tt.hour, w.End)
		assert.Equal(t, 2*time.Minute, w.End.Sub(w.Start))
	}
}

func TestFromQueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		day     string
		hour    string
		check   func(error) bool
		message string
	}{
		{name: "missing day", day: "", hour: "3", check: errs.IsConfiguration, message: "No day specified in request, nothing to get"},
		{name: "hour too large", day: "2024-03-10", hour: "24", check: errs.IsValidation, message: "Requested hour must be within 0 and 23, query hour = 24"},
		{name: "negative hour", day: "2024-03-10", hour: "-1", check: errs.IsValidation, message: "Requested hour must be within 0 and 23, query hour = -1"},
		{name: "non numeric hour", day: "2024-03-10", hour: "noon", check: errs.IsValidation, message: "Requested hour must be within 0 and 23, query hour = noon"},
		{name: "bad day", day: "10/03/2024", hour: "", check: errs.IsValidation, message: "Requested day must be in YYYY-MM-DD format, query day = 10/03/2024"},
		{name: "impossible date", day: "2024-02-30", hour: "", check: errs.IsValidation, message: "Requested day must be in YYYY-MM-DD format, query day = 2024-02-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromQuery(tt.day, tt.hour)
			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.Equal(t, tt.message, errs.ToErrorResponse(err)["error"])
		})
	}
}

func TestFromQueryWholeDay(t *testing.T) {
	w, err := FromQuery("2024-03-10", "")
	require.NoError(t, err)
	assert.True(t, w.Contains(mustTime(t, "2024-03-10T12:00:00Z")))
	assert.False(t, w.Contains(mustTime(t, "2024-03-11T00:00:00Z")))
}

func TestFromQueryHourContainsTopOfHourRecord(t *testing.T) {
	w, err := FromQuery("2024-03-10", "5")
	require.NoError(t, err)
	assert.True(t, w.Contains(mustTime(t, "2024-03-10T05:00:02.345Z")))
	assert.False(t, w.Contains(mustTime(t, "2024-03-10T05:30:00Z")))
}
