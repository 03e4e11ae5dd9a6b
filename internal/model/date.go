package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the only accepted textual date form.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(field, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &FormatError{Field: field, Value: raw}
	}
	return parsed, nil
}

// DateOf drops the clock part of t, keeping the calendar day as seen in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a civil date by n days.
func AddDays(d time.Time, n int) time.Time {
	return DateOf(d).AddDate(0, 0, n)
}

// DaysBetween returns the signed number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

func fromColumn(d datatypes.Date) time.Time {
	return DateOf(time.Time(d))
}

// DateColumn converts a civil date into its column value for queries.
func DateColumn(d time.Time) datatypes.Date {
	return datatypes.Date(DateOf(d))
}
