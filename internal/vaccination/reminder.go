package vaccination

import (
	"fmt"
	"sort"
	"time"

	"vaccine-reminder/internal/model"
)

// DefaultLeadDays is how far ahead of the due date a planned reminder fires.
const DefaultLeadDays = 7

// PlanReminder derives the advance reminder for a freshly scheduled dose.
// It returns false when the reminder date would already be in the past.
func PlanReminder(dose model.ScheduledDose, childName, vaccineName string, leadDays int, today time.Time) (model.Reminder, bool) {
	due := dose.Due()
	on := model.AddDays(due, -leadDays)
	if on.Before(model.DateOf(today)) {
		return model.Reminder{}, false
	}
	return model.Reminder{
		ScheduledDoseID: dose.ID,
		ReminderDate:    model.DateColumn(on),
		Message:         ReminderMessage(childName, vaccineName, due),
	}, true
}

func ReminderMessage(childName, vaccineName string, due time.Time) string {
	return fmt.Sprintf("Reminder: %s is due for %s on %s", childName, vaccineName, model.FormatDate(due))
}

// DueReminders filters and orders reminders that should go out on today.
func DueReminders(reminders []model.Reminder, today time.Time) []model.Reminder {
	var due []model.Reminder
	for _, r := range reminders {
		if r.IsDue(today) {
			due = append(due, r)
		}
	}
	sortReminders(due)
	return due
}

func sortReminders(reminders []model.Reminder) {
	sort.SliceStable(reminders, func(i, j int) bool {
		a, b := reminders[i].Date(), reminders[j].Date()
		if !a.Equal(b) {
			return a.Before(b)
		}
		return reminders[i].ID < reminders[j].ID
	})
}
