package window

import (
	"fmt"
	"strconv"
	"time"

	"emailstats/internal/constants"
	errs "emailstats/pkg/errors"
)

const (
	// hourAnchor is the offset into an hour at which the hourly window ends.
	hourAnchor = time.Minute
	hourSpan   = 2 * time.Minute
	dayEnd     = 24*time.Hour - time.Millisecond
)

// Window is a UTC interval, inclusive at both ends, on one calendar day.
type Window struct {
	Day   string
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ForDay covers the whole day from 00:00:00.000Z to 23:59:59.999Z.
func ForDay(day string) (Window, error) {
	start, err := parseDay(day)
	if err != nil {
		return Window{}, err
	}
	return Window{Day: day, Start: start, End: start.Add(dayEnd)}, nil
}

// ForHour is the narrow band that catches the record written at the top of
// hour: it ends at hour:01:00Z and starts two minutes earlier.
func ForHour(day string, hour int) (Window, error) {
	start, err := parseDay(day)
	if err != nil {
		return Window{}, err
	}
	if hour < 0 || hour > 23 {
		return Window{}, hourError(strconv.Itoa(hour))
	}

	end := start.Add(time.Duration(hour)*time.Hour + hourAnchor)
	return Window{Day: day, Start: end.Add(-hourSpan), End: end}, nil
}

// FromQuery builds a window from raw request parameters. An empty hour means
// the whole day.
func FromQuery(day, hour string) (Window, error) {
	if day == "" {
		return Window{}, errs.ErrConfiguration.WithMessage("No day specified in request, nothing to get")
	}
	if hour == "" {
		return ForDay(day)
	}

	h, err := strconv.Atoi(hour)
	if err != nil {
		return Window{}, hourError(hour)
	}
	if h < 0 || h > 23 {
		return Window{}, hourError(hour)
	}
	return ForHour(day, h)
}

func parseDay(day string) (time.Time, error) {
	if day == "" {
		return time.Time{}, errs.ErrConfiguration.WithMessage("No day specified in request, nothing to get")
	}
	t, err := time.ParseInLocation(constants.DayLayout, day, time.UTC)
	if err != nil {
		return time.Time{}, errs.ErrValidation.WithCause(err).
			WithMessage(fmt.Sprintf("Requested day must be in YYYY-MM-DD format, query day = %s", day))
	}
	return t, nil
}

func hourError(raw string) error {
	return errs.ErrValidation.WithMessage(fmt.Sprintf("Requested hour must be within 0 and 23, query hour = %s", raw))
}
