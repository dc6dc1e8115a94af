package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddBusinessDaysSkipsWeekend(t *testing.T) {
	friday := date(2025, time.January, 3)
	assert.Equal(t, date(2025, time.January, 6), AddBusinessDays(friday, 1), "Friday +1 business day is Monday")
}

func TestAddBusinessDaysFiveSpansOneWeekend(t *testing.T) {
	monday := date(2025, time.January, 6)
	assert.Equal(t, date(2025, time.January, 13), AddBusinessDays(monday, 5))
}

func TestAddBusinessDaysZero(t *testing.T) {
	saturday := date(2025, time.January, 4)
	assert.Equal(t, saturday, AddBusinessDays(saturday, 0), "zero increments leaves the date untouched, even on a weekend")
}

func TestUTCDateWithoutTimeTruncates(t *testing.T) {
	friday := time.Date(2025, time.January, 3, 17, 42, 9, 120, time.UTC)
	got := UTCDateWithoutTime(friday, 1)
	assert.Equal(t, date(2025, time.January, 6), got)
	assert.Equal(t, 0, got.Hour())
}

func TestSchoolYearStart(t *testing.T) {
	assert.Equal(t, date(2024, time.September, 1), SchoolYearStart(date(2025, time.March, 10)))
	assert.Equal(t, date(2025, time.September, 1), SchoolYearStart(date(2025, time.October, 2)))
}

func TestFormatLong(t *testing.T) {
	assert.Equal(t, "January 5, 2025", FormatLong(date(2025, time.January, 5)))
}
