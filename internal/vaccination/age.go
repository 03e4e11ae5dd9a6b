// Package vaccination holds the scheduling and status rules for child
// vaccine doses. Every function takes "today" explicitly and touches no
// storage, so callers decide where the clock and the records come from.
package vaccination

import (
	"time"

	"vaccine-reminder/internal/model"
)

// Months and years are fixed-length here. Existing schedules were computed
// this way, so calendar arithmetic would move stored dates.
const (
	daysPerMonth = 30
	daysPerYear  = 365
)

// AgeInMonths is floor(elapsed days / 30).
func AgeInMonths(dob, today time.Time) int {
	return floorDiv(model.DaysBetween(dob, today), daysPerMonth)
}

// AgeInYears is floor(elapsed days / 365).
func AgeInYears(dob, today time.Time) int {
	return floorDiv(model.DaysBetween(dob, today), daysPerYear)
}

// DueDate is the date a vaccine recommended at ageMonths falls due.
func DueDate(dob time.Time, ageMonths int) time.Time {
	return model.AddDays(dob, ageMonths*daysPerMonth)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
