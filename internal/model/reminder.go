package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Reminder is a one-shot notice attached to a scheduled dose.
type Reminder struct {
	ID              uint           `gorm:"primaryKey"`
	ScheduledDoseID uint           `gorm:"index;not null"`
	ReminderDate    datatypes.Date `gorm:"not null;index"`
	Message         string         `gorm:"not null"`
	Sent            bool           `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewReminder validates a reminder. The date may not be before today.
func NewReminder(doseID uint, on time.Time, message string, today time.Time) (Reminder, error) {
	if DateOf(on).Before(DateOf(today)) {
		return Reminder{}, invalid("reminder_date", "cannot be in the past")
	}
	message = strings.TrimSpace(message)
	if len([]rune(message)) < 5 {
		return Reminder{}, invalid("message", "must be at least 5 characters long")
	}
	return Reminder{
		ScheduledDoseID: doseID,
		ReminderDate:    DateColumn(on),
		Message:         message,
	}, nil
}

func (r Reminder) Date() time.Time {
	return fromColumn(r.ReminderDate)
}

// IsDue reports whether the reminder should go out on today.
func (r Reminder) IsDue(today time.Time) bool {
	return !r.Sent && !r.Date().After(DateOf(today))
}
