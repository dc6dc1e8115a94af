// Package dates holds the date arithmetic shared by every reminder window
// computation. "N days ahead" always means N business days here.
package dates

import "time"

// AddBusinessDays advances start by n business days, one calendar day at a
// time, skipping Saturdays and Sundays.
func AddBusinessDays(start time.Time, n int) time.Time {
	t := start
	for i := 0; i < n; i++ {
		t = t.AddDate(0, 0, 1)
		for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			t = t.AddDate(0, 0, 1)
		}
	}
	return t
}

// UTCDateWithoutTime returns base advanced by n business days, truncated to
// UTC midnight.
func UTCDateWithoutTime(base time.Time, n int) time.Time {
	t := AddBusinessDays(base, n)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TruncateUTC drops the time-of-day component in UTC.
func TruncateUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsWeekday reports whether t falls on Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// SchoolYearStart returns September 1 (UTC) of the school year containing t.
func SchoolYearStart(t time.Time) time.Time {
	year := t.Year()
	if t.Month() < time.September {
		year--
	}
	return time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
}

// FormatLong renders a date the way it appears in every email body,
// e.g. "January 5, 2025". Lesson dates are treated as UTC midnight.
func FormatLong(t time.Time) string {
	return t.UTC().Format("January 2, 2006")
}
