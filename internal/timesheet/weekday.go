package timesheet

import (
	"math"
	"time"
)

// Day indexes the seven output columns, Monday first.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of weekday buckets.
const DaysPerWeek = 7

var dayNames = [DaysPerWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// String returns the capitalized English weekday name.
func (d Day) String() string {
	if d < 0 || int(d) >= DaysPerWeek {
		return "Unknown"
	}
	return dayNames[d]
}

// DayOf maps a time.Weekday (0 = Sunday) onto its output column.
func DayOf(wd time.Weekday) Day {
	return Day((int(wd) + 6) % DaysPerWeek)
}

// Date serials count days from 1899-12-30, the epoch spreadsheet
// applications use so that serial 60 keeps its phantom 1900-02-29.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const (
	millisPerDay = 86_400_000
	// maxMillis bounds representable instants to ±100,000,000 days from 1970.
	maxMillis = 8.64e15
)

// DateFromSerial converts a spreadsheet date serial into a wall-clock date.
// The result is in UTC and carries no zone semantics. Fractions of a
// millisecond are truncated toward zero.
func DateFromSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	ms := math.Trunc(float64(serialEpoch.UnixMilli()) + serial*millisPerDay)
	if math.IsNaN(ms) || math.Abs(ms) > maxMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// WeekdayOf resolves a date serial to its weekday column.
func WeekdayOf(serial float64) (Day, bool) {
	t, ok := DateFromSerial(serial)
	if !ok {
		return 0, false
	}
	return DayOf(t.Weekday()), true
}
