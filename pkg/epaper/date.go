package epaper

import (
	"strings"
	"time"

	errs "szepaper/pkg/errors"
)

// TodayKeyword selects the current day's issue
const TodayKeyword = "today"

// issueDateLayout accepts both 2012-04-14 and 2012-4-14
const issueDateLayout = "2006-1-2"

// ParseIssueDate parses "today" or a YYYY-MM-DD date in now's location.
// The result is the civil date at midnight.
func ParseIssueDate(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, TodayKeyword) {
		return CivilDate(now), nil
	}

	date, err := time.ParseInLocation(issueDateLayout, value, now.Location())
	if err != nil {
		return time.Time{}, errs.Wrap(errs.ErrorTypeUsage, err, "invalid issue date %q, expected YYYY-MM-DD or %q", value, TodayKeyword)
	}
	return date, nil
}

// CivilDate strips the clock time from t, keeping its location
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsPublicationDay reports whether an issue is printed on date.
// The paper has no Sunday edition.
func IsPublicationDay(date time.Time) bool {
	return date.Weekday() != time.Sunday
}

// IsCurrentOrFuture reports whether date is today or later, comparing calendar days only
func IsCurrentOrFuture(date, now time.Time) bool {
	day := CivilDate(date.In(now.Location()))
	return !day.Before(CivilDate(now))
}
