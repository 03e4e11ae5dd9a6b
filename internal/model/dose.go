package model

import (
	"time"

	"gorm.io/datatypes"
)

type DoseStatus string

const (
	StatusScheduled DoseStatus = "scheduled"
	StatusCompleted DoseStatus = "completed"
	StatusOverdue   DoseStatus = "overdue"
)

// ScheduledDose pairs a child with one catalog vaccine.
type ScheduledDose struct {
	ID            uint            `gorm:"primaryKey"`
	ChildID       uint            `gorm:"index;not null"`
	VaccineID     uint            `gorm:"index;not null"`
	ScheduledDate datatypes.Date  `gorm:"not null;index"`
	CompletedDate *datatypes.Date
	Status        DoseStatus `gorm:"type:text;default:scheduled;index"`
	ReminderSent  bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Vaccine       Vaccine    `gorm:"foreignKey:VaccineID"`
	Reminders     []Reminder `gorm:"foreignKey:ScheduledDoseID"`
}

// NewScheduledDose builds a dose in the scheduled state.
func NewScheduledDose(childID, vaccineID uint, on time.Time) ScheduledDose {
	return ScheduledDose{
		ChildID:       childID,
		VaccineID:     vaccineID,
		ScheduledDate: DateColumn(on),
		Status:        StatusScheduled,
	}
}

func (d ScheduledDose) Due() time.Time {
	return fromColumn(d.ScheduledDate)
}

// CompletedOn returns the completion date, if any.
func (d ScheduledDose) CompletedOn() (time.Time, bool) {
	if d.CompletedDate == nil {
		return time.Time{}, false
	}
	return fromColumn(*d.CompletedDate), true
}

func (d *ScheduledDose) SetCompleted(on time.Time) {
	col := DateColumn(on)
	d.CompletedDate = &col
	d.Status = StatusCompleted
}

func (d ScheduledDose) IsCompleted() bool {
	return d.Status == StatusCompleted
}
