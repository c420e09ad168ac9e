package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// DayString returns the calendar day of t in loc as YYYY-MM-DD.
func DayString(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(constants.DateFormat)
}

// ParseDay parses a YYYY-MM-DD string and returns midnight of that day in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(constants.DateFormat, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", day)
	}
	return t, nil
}

// ValidateDay reports whether day is a real calendar date in YYYY-MM-DD form.
func ValidateDay(day string) bool {
	_, err := time.Parse(constants.DateFormat, day)
	return err == nil
}

// LastNDays returns the n calendar days ending on the day of now, oldest first.
// Days are stepped with AddDate on the calendar date so DST transitions never
// skip or repeat a day.
func LastNDays(now time.Time, loc *time.Location, n int) []time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	days := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, midnight.AddDate(0, 0, -i))
	}
	return days
}

// ShortWeekday returns the three-letter weekday label, e.g. "Mon".
func ShortWeekday(t time.Time) string {
	return t.Weekday().String()[:3]
}
