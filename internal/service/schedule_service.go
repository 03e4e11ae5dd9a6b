package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/repository"
	"vaccine-reminder/internal/vaccination"
)

// DoseView is a dose as the caregiver sees it on a given day.
type DoseView struct {
	Dose         model.ScheduledDose
	Child        model.Child
	DaysUntilDue int
	DueSoon      bool
}

func (v DoseView) VaccineName() string {
	return v.Dose.Vaccine.Name
}

// ScheduleService owns dose scheduling, status refresh and completion.
type ScheduleService struct {
	store       *repository.Store
	reminders   *ReminderService
	clock       Clock
	dueSoonDays int
	log         *zap.Logger
}

func NewScheduleService(store *repository.Store, reminders *ReminderService, clock Clock, dueSoonDays int, log *zap.Logger) *ScheduleService {
	if dueSoonDays < 0 {
		dueSoonDays = vaccination.DueSoonWindow
	}
	return &ScheduleService{store: store, reminders: reminders, clock: clock, dueSoonDays: dueSoonDays, log: log}
}

// ScheduleEligibleDoses creates the missing doses for every vaccine the
// child is old enough for, with their reminders. Calling it again only
// adds vaccines that became eligible since.
func (s *ScheduleService) ScheduleEligibleDoses(ctx context.Context, childID uint) ([]model.ScheduledDose, error) {
	var planned []model.ScheduledDose
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		child, err := tx.Children.FindByID(ctx, childID)
		if err != nil {
			return err
		}
		planned, err = s.scheduleEligible(ctx, tx, child)
		return err
	})
	if err != nil {
		return nil, err
	}
	return planned, nil
}

// ScheduleAll runs ScheduleEligibleDoses for every child and returns the
// number of doses added.
func (s *ScheduleService) ScheduleAll(ctx context.Context) (int, error) {
	users, err := s.store.Users.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	added := 0
	for _, user := range users {
		children, err := s.store.Children.ListByUser(ctx, user.ID)
		if err != nil {
			return added, fmt.Errorf("list children of user %d: %w", user.ID, err)
		}
		for _, child := range children {
			doses, err := s.ScheduleEligibleDoses(ctx, child.ID)
			if err != nil {
				return added, fmt.Errorf("schedule child %d: %w", child.ID, err)
			}
			added += len(doses)
		}
	}
	return added, nil
}

func (s *ScheduleService) scheduleEligible(ctx context.Context, tx *repository.Store, child *model.Child) ([]model.ScheduledDose, error) {
	age := vaccination.AgeInMonths(child.BirthDate(), s.clock.Today())
	eligible, err := tx.Vaccines.ListEligible(ctx, age)
	if err != nil {
		return nil, fmt.Errorf("list eligible vaccines: %w", err)
	}
	existing, err := tx.Doses.ListByChild(ctx, child.ID)
	if err != nil {
		return nil, fmt.Errorf("list doses: %w", err)
	}
	planned, err := vaccination.PlanEligibleDoses(*child, eligible, existing)
	if err != nil {
		return nil, err
	}

	vaccines := lo.KeyBy(eligible, func(v model.Vaccine) uint { return v.ID })
	for i := range planned {
		if err := tx.Doses.Create(ctx, &planned[i]); err != nil {
			return nil, err
		}
		planned[i].Vaccine = vaccines[planned[i].VaccineID]
		if _, err := s.reminders.planForDose(ctx, tx, planned[i], child.Name, planned[i].Vaccine.Name); err != nil {
			return nil, err
		}
	}
	if len(planned) > 0 {
		s.log.Info("doses scheduled",
			zap.Uint("child_id", child.ID),
			zap.Int("age_months", age),
			zap.Int("count", len(planned)))
	}
	return planned, nil
}

// ScheduleManual books vaccineID for the child on a caregiver-chosen date.
func (s *ScheduleService) ScheduleManual(ctx context.Context, userID, childID, vaccineID uint, on time.Time) (*model.ScheduledDose, error) {
	var dose model.ScheduledDose
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		child, err := tx.Children.FindForUser(ctx, userID, childID)
		if err != nil {
			return err
		}
		vaccine, err := tx.Vaccines.FindByID(ctx, vaccineID)
		if err != nil {
			return err
		}
		dose, err = vaccination.PlanManualDose(*child, *vaccine, on, s.clock.Today())
		if err != nil {
			return err
		}
		if err := tx.Doses.Create(ctx, &dose); err != nil {
			return err
		}
		dose.Vaccine = *vaccine
		_, err = s.reminders.planForDose(ctx, tx, dose, child.Name, vaccine.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("dose scheduled manually",
		zap.Uint("dose_id", dose.ID),
		zap.Uint("child_id", childID),
		zap.String("date", model.FormatDate(dose.Due())))
	return &dose, nil
}

// ListSchedule returns one child's doses by date with statuses refreshed.
func (s *ScheduleService) ListSchedule(ctx context.Context, userID, childID uint) ([]DoseView, error) {
	child, err := s.store.Children.FindForUser(ctx, userID, childID)
	if err != nil {
		return nil, err
	}
	return s.childDoses(ctx, *child)
}

func (s *ScheduleService) Overdue(ctx context.Context, userID uint) ([]DoseView, error) {
	today := s.clock.Today()
	return s.userDoses(ctx, userID, func(d model.ScheduledDose) bool {
		return vaccination.IsOverdue(d, today)
	})
}

func (s *ScheduleService) Upcoming(ctx context.Context, userID uint) ([]DoseView, error) {
	today := s.clock.Today()
	return s.userDoses(ctx, userID, func(d model.ScheduledDose) bool {
		return vaccination.IsUpcoming(d, today)
	})
}

// DueSoon lists open doses due within the configured window, today included.
func (s *ScheduleService) DueSoon(ctx context.Context, userID uint) ([]DoseView, error) {
	today := s.clock.Today()
	return s.userDoses(ctx, userID, func(d model.ScheduledDose) bool {
		return !d.IsCompleted() && vaccination.IsDueWithin(d, today, s.dueSoonDays)
	})
}

// GetDose loads one of the user's doses with its status refreshed.
func (s *ScheduleService) GetDose(ctx context.Context, userID, doseID uint) (*model.ScheduledDose, error) {
	dose, err := s.store.Doses.FindForUser(ctx, userID, doseID)
	if err != nil {
		return nil, err
	}
	doses := []model.ScheduledDose{*dose}
	if err := s.refresh(ctx, doses, s.clock.Today()); err != nil {
		return nil, err
	}
	return &doses[0], nil
}

// MarkCompleted records that the dose was given on completedOn.
func (s *ScheduleService) MarkCompleted(ctx context.Context, userID, doseID uint, completedOn time.Time) (*model.ScheduledDose, error) {
	dose, err := s.store.Doses.FindForUser(ctx, userID, doseID)
	if err != nil {
		return nil, err
	}
	if err := vaccination.MarkCompleted(dose, completedOn, s.clock.Today()); err != nil {
		return nil, err
	}
	if err := s.store.Doses.MarkCompleted(ctx, dose); err != nil {
		return nil, err
	}
	s.log.Info("dose completed",
		zap.Uint("dose_id", dose.ID),
		zap.String("completed_on", model.FormatDate(model.DateOf(completedOn))))
	return dose, nil
}

// DeleteDose removes a dose and its reminders.
func (s *ScheduleService) DeleteDose(ctx context.Context, userID, doseID uint) error {
	dose, err := s.store.Doses.FindForUser(ctx, userID, doseID)
	if err != nil {
		return err
	}
	return s.store.Doses.Delete(ctx, dose.ID)
}

// GroupByStatus splits views by their current status.
func GroupByStatus(views []DoseView) map[model.DoseStatus][]DoseView {
	return lo.GroupBy(views, func(v DoseView) model.DoseStatus { return v.Dose.Status })
}

func (s *ScheduleService) userDoses(ctx context.Context, userID uint, keep func(model.ScheduledDose) bool) ([]DoseView, error) {
	children, err := s.store.Children.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	var out []DoseView
	for _, child := range children {
		views, err := s.childDoses(ctx, child)
		if err != nil {
			return nil, err
		}
		out = append(out, lo.Filter(views, func(v DoseView, _ int) bool { return keep(v.Dose) })...)
	}
	return out, nil
}

func (s *ScheduleService) childDoses(ctx context.Context, child model.Child) ([]DoseView, error) {
	doses, err := s.store.Doses.ListByChild(ctx, child.ID)
	if err != nil {
		return nil, fmt.Errorf("list doses: %w", err)
	}
	today := s.clock.Today()
	if err := s.refresh(ctx, doses, today); err != nil {
		return nil, err
	}
	return lo.Map(doses, func(d model.ScheduledDose, _ int) DoseView {
		return DoseView{
			Dose:         d,
			Child:        child,
			DaysUntilDue: vaccination.DaysUntilDue(d, today),
			DueSoon:      !d.IsCompleted() && vaccination.IsDueWithin(d, today, s.dueSoonDays),
		}
	}), nil
}

// refresh recomputes statuses in place and persists the ones that moved.
func (s *ScheduleService) refresh(ctx context.Context, doses []model.ScheduledDose, today time.Time) error {
	for i := range doses {
		if !vaccination.Refresh(&doses[i], today) {
			continue
		}
		if err := s.store.Doses.UpdateStatus(ctx, doses[i].ID, doses[i].Status); err != nil {
			return err
		}
	}
	return nil
}
