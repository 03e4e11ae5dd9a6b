package vaccination

import (
	"time"

	"vaccine-reminder/internal/model"
)

// MarkCompleted records a dose as given on completedOn.
// Prior status does not matter and a second call overwrites the date.
func MarkCompleted(dose *model.ScheduledDose, completedOn, today time.Time) error {
	if model.DateOf(completedOn).After(model.DateOf(today)) {
		return &model.ValidationError{Field: "completed_date", Msg: "cannot be in the future"}
	}
	dose.SetCompleted(completedOn)
	return nil
}
