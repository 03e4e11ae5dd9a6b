package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/repository"
	"vaccine-reminder/internal/vaccination"
)

// ReminderView is a reminder together with what it is about.
type ReminderView struct {
	Reminder model.Reminder
	Dose     model.ScheduledDose
	Child    model.Child
	User     model.User
}

func (v ReminderView) VaccineName() string {
	return v.Dose.Vaccine.Name
}

// ReminderService plans, lists and acknowledges dose reminders.
type ReminderService struct {
	store    *repository.Store
	clock    Clock
	leadDays int
	log      *zap.Logger
}

func NewReminderService(store *repository.Store, clock Clock, leadDays int, log *zap.Logger) *ReminderService {
	if leadDays < 0 {
		leadDays = vaccination.DefaultLeadDays
	}
	return &ReminderService{store: store, clock: clock, leadDays: leadDays, log: log}
}

// planForDose stores the advance reminder for a new dose, if its date is not already past.
func (s *ReminderService) planForDose(ctx context.Context, tx *repository.Store, dose model.ScheduledDose, childName, vaccineName string) (*model.Reminder, error) {
	reminder, ok := vaccination.PlanReminder(dose, childName, vaccineName, s.leadDays, s.clock.Today())
	if !ok {
		return nil, nil
	}
	if err := tx.Reminders.Create(ctx, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// CreateManual adds a caregiver-written reminder to one of their doses.
func (s *ReminderService) CreateManual(ctx context.Context, userID uint, doseID uint, rawDate, message string) (*model.Reminder, error) {
	on, err := model.ParseDate("reminder_date", rawDate)
	if err != nil {
		return nil, err
	}
	dose, err := s.store.Doses.FindForUser(ctx, userID, doseID)
	if err != nil {
		return nil, err
	}
	reminder, err := model.NewReminder(dose.ID, on, message, s.clock.Today())
	if err != nil {
		return nil, err
	}
	if err := s.store.Reminders.Create(ctx, &reminder); err != nil {
		return nil, err
	}
	s.log.Info("manual reminder created",
		zap.Uint("reminder_id", reminder.ID),
		zap.Uint("dose_id", dose.ID),
		zap.String("date", model.FormatDate(on)))
	return &reminder, nil
}

// DueReminders returns all unsent reminders dated today or earlier, oldest first.
// It does not mark anything as sent.
func (s *ReminderService) DueReminders(ctx context.Context) ([]model.Reminder, error) {
	reminders, err := s.store.Reminders.ListDue(ctx, s.clock.Today())
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return vaccination.DueReminders(reminders, s.clock.Today()), nil
}

// DueViews is DueReminders with the dose, child and owner resolved.
func (s *ReminderService) DueViews(ctx context.Context) ([]ReminderView, error) {
	reminders, err := s.DueReminders(ctx)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, reminders)
}

// Upcoming lists the user's unsent reminders dated within the next days.
func (s *ReminderService) Upcoming(ctx context.Context, userID uint, days int) ([]ReminderView, error) {
	today := s.clock.Today()
	reminders, err := s.store.Reminders.ListUpcoming(ctx, userID, today, model.AddDays(today, days))
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, reminders)
}

func (s *ReminderService) ListForUser(ctx context.Context, userID uint) ([]ReminderView, error) {
	reminders, err := s.store.Reminders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, reminders)
}

// MarkSent is the acknowledgement a notifier calls after delivery.
func (s *ReminderService) MarkSent(ctx context.Context, reminderID uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		reminder, err := tx.Reminders.FindByID(ctx, reminderID)
		if err != nil {
			return err
		}
		if err := tx.Reminders.MarkSent(ctx, reminder.ID); err != nil {
			return err
		}
		return tx.Doses.SetReminderSent(ctx, reminder.ScheduledDoseID)
	})
}

func (s *ReminderService) describe(ctx context.Context, reminders []model.Reminder) ([]ReminderView, error) {
	doses := make(map[uint]*model.ScheduledDose)
	children := make(map[uint]*model.Child)
	users := make(map[uint]*model.User)

	views := make([]ReminderView, 0, len(reminders))
	for _, reminder := range reminders {
		dose, ok := doses[reminder.ScheduledDoseID]
		if !ok {
			found, err := s.store.Doses.FindByID(ctx, reminder.ScheduledDoseID)
			if err != nil {
				return nil, fmt.Errorf("reminder %d: %w", reminder.ID, err)
			}
			dose = found
			doses[dose.ID] = dose
		}
		child, ok := children[dose.ChildID]
		if !ok {
			found, err := s.store.Children.FindByID(ctx, dose.ChildID)
			if err != nil {
				return nil, fmt.Errorf("reminder %d: %w", reminder.ID, err)
			}
			child = found
			children[child.ID] = child
		}
		user, ok := users[child.UserID]
		if !ok {
			found, err := s.store.Users.FindByID(ctx, child.UserID)
			if err != nil {
				return nil, fmt.Errorf("reminder %d: %w", reminder.ID, err)
			}
			user = found
			users[user.ID] = user
		}
		views = append(views, ReminderView{Reminder: reminder, Dose: *dose, Child: *child, User: *user})
	}
	return views, nil
}
