package vaccination

import (
	"time"

	"vaccine-reminder/internal/model"
)

// PlanEligibleDoses returns the doses to create for child.
//
// eligible is the catalog slice already filtered to vaccines the child is
// old enough for, ordered by recommended age. A vaccine is skipped when
// existing already holds a dose for it, so repeated calls plan nothing new.
func PlanEligibleDoses(child model.Child, eligible []model.Vaccine, existing []model.ScheduledDose) ([]model.ScheduledDose, error) {
	seen := make(map[uint]struct{}, len(existing)+len(eligible))
	for _, dose := range existing {
		seen[dose.VaccineID] = struct{}{}
	}

	dob := child.BirthDate()
	var planned []model.ScheduledDose
	for _, vaccine := range eligible {
		if _, ok := seen[vaccine.ID]; ok {
			continue
		}
		due, err := scheduledDate(dob, vaccine)
		if err != nil {
			return nil, err
		}
		seen[vaccine.ID] = struct{}{}
		planned = append(planned, model.NewScheduledDose(child.ID, vaccine.ID, due))
	}
	return planned, nil
}

// PlanManualDose schedules one vaccine on a caregiver-chosen date, which
// may not be in the past.
func PlanManualDose(child model.Child, vaccine model.Vaccine, on, today time.Time) (model.ScheduledDose, error) {
	if model.DateOf(on).Before(model.DateOf(today)) {
		return model.ScheduledDose{}, &model.ValidationError{Field: "scheduled_date", Msg: "cannot be in the past"}
	}
	if model.DateOf(on).Before(child.BirthDate()) {
		return model.ScheduledDose{}, &model.ValidationError{Field: "scheduled_date", Msg: "cannot be before the date of birth"}
	}
	return model.NewScheduledDose(child.ID, vaccine.ID, on), nil
}

func scheduledDate(dob time.Time, vaccine model.Vaccine) (time.Time, error) {
	if vaccine.RecommendedAgeMonths < 0 {
		return time.Time{}, &model.ValidationError{Field: "recommended_age_months", Msg: "must be zero or a positive integer"}
	}
	due := DueDate(dob, vaccine.RecommendedAgeMonths)
	if due.Before(dob) {
		return time.Time{}, &model.ValidationError{Field: "scheduled_date", Msg: "falls before the date of birth"}
	}
	return due, nil
}
