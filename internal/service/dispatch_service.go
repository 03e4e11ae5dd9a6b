package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"vaccine-reminder/internal/model"
)

// ErrNoRecipient is returned by a Notifier that has no address for the user.
var ErrNoRecipient = errors.New("no recipient for notifier")

// Notice is one reminder ready for delivery.
type Notice struct {
	User        model.User
	Child       model.Child
	VaccineName string
	Due         time.Time
	ReminderID  uint
	Message     string
}

// Notifier delivers a notice over one channel.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// DispatchResult counts the outcome of one dispatch run.
type DispatchResult struct {
	Sent   int
	Failed int
}

// DispatchService pushes due reminders to the notifiers and acknowledges
// delivered ones. Undelivered reminders stay due for the next run.
type DispatchService struct {
	reminders *ReminderService
	notifiers []Notifier
	log       *zap.Logger
}

func NewDispatchService(reminders *ReminderService, log *zap.Logger, notifiers ...Notifier) *DispatchService {
	return &DispatchService{reminders: reminders, notifiers: notifiers, log: log}
}

func (s *DispatchService) DispatchDue(ctx context.Context) (DispatchResult, error) {
	var result DispatchResult
	views, err := s.reminders.DueViews(ctx)
	if err != nil {
		return result, err
	}

	for _, view := range views {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		notice := Notice{
			User:        view.User,
			Child:       view.Child,
			VaccineName: view.VaccineName(),
			Due:         view.Dose.Due(),
			ReminderID:  view.Reminder.ID,
			Message:     view.Reminder.Message,
		}
		if !s.deliver(ctx, notice) {
			result.Failed++
			continue
		}
		if err := s.reminders.MarkSent(ctx, view.Reminder.ID); err != nil {
			s.log.Error("mark reminder sent", zap.Uint("reminder_id", view.Reminder.ID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Sent++
	}

	if result.Sent > 0 || result.Failed > 0 {
		s.log.Info("reminders dispatched", zap.Int("sent", result.Sent), zap.Int("failed", result.Failed))
	}
	return result, nil
}

// deliver reports whether at least one notifier accepted the notice.
func (s *DispatchService) deliver(ctx context.Context, notice Notice) bool {
	delivered := false
	for _, n := range s.notifiers {
		err := n.Notify(ctx, notice)
		switch {
		case err == nil:
			delivered = true
		case errors.Is(err, ErrNoRecipient):
		default:
			s.log.Warn("notify failed",
				zap.Uint("reminder_id", notice.ReminderID),
				zap.Uint("user_id", notice.User.ID),
				zap.Error(err))
		}
	}
	return delivered
}
