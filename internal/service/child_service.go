package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/repository"
	"vaccine-reminder/internal/vaccination"
)

// ChildInput is the raw profile a caregiver typed in.
type ChildInput struct {
	Name        string
	DateOfBirth string
	Gender      string
}

// ChildProfile is a child with ages derived for today.
type ChildProfile struct {
	Child     model.Child
	AgeMonths int
	AgeYears  int
}

// HealthOverview summarises one child's vaccination record.
type HealthOverview struct {
	Profile   ChildProfile
	Total     int
	Completed int
	Overdue   int
	Upcoming  int
	Next      *DoseView
}

// ChildService manages child profiles.
type ChildService struct {
	store    *repository.Store
	schedule *ScheduleService
	clock    Clock
	log      *zap.Logger
}

func NewChildService(store *repository.Store, schedule *ScheduleService, clock Clock, log *zap.Logger) *ChildService {
	return &ChildService{store: store, schedule: schedule, clock: clock, log: log}
}

// Create registers a child and schedules every dose they are already
// eligible for. Nothing is stored when any step fails.
func (s *ChildService) Create(ctx context.Context, userID uint, in ChildInput) (*model.Child, []model.ScheduledDose, error) {
	dob, err := model.ParseDate("date_of_birth", in.DateOfBirth)
	if err != nil {
		return nil, nil, err
	}
	child, err := model.NewChild(userID, in.Name, dob, in.Gender, s.clock.Today())
	if err != nil {
		return nil, nil, err
	}

	var doses []model.ScheduledDose
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.FindByID(ctx, userID); err != nil {
			return err
		}
		if err := tx.Children.Create(ctx, &child); err != nil {
			return err
		}
		doses, err = s.schedule.scheduleEligible(ctx, tx, &child)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("child registered",
		zap.Uint("child_id", child.ID),
		zap.Uint("user_id", userID),
		zap.Int("doses", len(doses)))
	return &child, doses, nil
}

func (s *ChildService) List(ctx context.Context, userID uint) ([]ChildProfile, error) {
	children, err := s.store.Children.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	profiles := make([]ChildProfile, 0, len(children))
	for _, child := range children {
		profiles = append(profiles, s.profile(child))
	}
	return profiles, nil
}

func (s *ChildService) Get(ctx context.Context, userID, childID uint) (*ChildProfile, error) {
	child, err := s.store.Children.FindForUser(ctx, userID, childID)
	if err != nil {
		return nil, err
	}
	profile := s.profile(*child)
	return &profile, nil
}

// Delete removes the child with all doses and reminders.
func (s *ChildService) Delete(ctx context.Context, userID, childID uint) error {
	child, err := s.store.Children.FindForUser(ctx, userID, childID)
	if err != nil {
		return err
	}
	if err := s.store.Children.Delete(ctx, child.ID); err != nil {
		return err
	}
	s.log.Info("child deleted", zap.Uint("child_id", child.ID), zap.Uint("user_id", userID))
	return nil
}

func (s *ChildService) HealthOverview(ctx context.Context, userID, childID uint) (*HealthOverview, error) {
	profile, err := s.Get(ctx, userID, childID)
	if err != nil {
		return nil, err
	}
	views, err := s.schedule.ListSchedule(ctx, userID, childID)
	if err != nil {
		return nil, err
	}

	byStatus := GroupByStatus(views)
	overview := &HealthOverview{
		Profile:   *profile,
		Total:     len(views),
		Completed: len(byStatus[model.StatusCompleted]),
		Overdue:   len(byStatus[model.StatusOverdue]),
		Upcoming:  len(byStatus[model.StatusScheduled]),
	}
	// views are ordered by date, so the first scheduled one is next.
	if upcoming := byStatus[model.StatusScheduled]; len(upcoming) > 0 {
		next := upcoming[0]
		overview.Next = &next
	}
	return overview, nil
}

func (s *ChildService) profile(child model.Child) ChildProfile {
	today := s.clock.Today()
	return ChildProfile{
		Child:     child,
		AgeMonths: vaccination.AgeInMonths(child.BirthDate(), today),
		AgeYears:  vaccination.AgeInYears(child.BirthDate(), today),
	}
}
