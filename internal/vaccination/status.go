package vaccination

import (
	"time"

	"vaccine-reminder/internal/model"
)

// DueSoonWindow is the inclusive horizon, in days, for "due soon".
const DueSoonWindow = 7

// RecomputeStatus derives the effective status of a dose on today.
// Completed is terminal; anything else is overdue once its date has passed.
func RecomputeStatus(dose model.ScheduledDose, today time.Time) model.DoseStatus {
	if dose.Status == model.StatusCompleted {
		return model.StatusCompleted
	}
	if dose.Due().Before(model.DateOf(today)) {
		return model.StatusOverdue
	}
	return model.StatusScheduled
}

// Refresh applies RecomputeStatus in place and reports whether it changed.
func Refresh(dose *model.ScheduledDose, today time.Time) bool {
	next := RecomputeStatus(*dose, today)
	if next == dose.Status {
		return false
	}
	dose.Status = next
	return true
}

// DaysUntilDue is negative for past dates and zero for completed doses.
func DaysUntilDue(dose model.ScheduledDose, today time.Time) int {
	if dose.Status == model.StatusCompleted {
		return 0
	}
	return model.DaysBetween(today, dose.Due())
}

func IsDueSoon(dose model.ScheduledDose, today time.Time) bool {
	return IsDueWithin(dose, today, DueSoonWindow)
}

// IsDueWithin reports 0 <= DaysUntilDue <= days.
func IsDueWithin(dose model.ScheduledDose, today time.Time, days int) bool {
	n := DaysUntilDue(dose, today)
	return n >= 0 && n <= days
}

func IsOverdue(dose model.ScheduledDose, today time.Time) bool {
	return dose.Status != model.StatusCompleted && dose.Due().Before(model.DateOf(today))
}

// IsUpcoming matches scheduled doses dated today or later.
func IsUpcoming(dose model.ScheduledDose, today time.Time) bool {
	return RecomputeStatus(dose, today) == model.StatusScheduled
}
