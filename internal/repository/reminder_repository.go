package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"vaccine-reminder/internal/model"
)

// ReminderRepository handles CRUD for reminders.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) FindByID(ctx context.Context, id uint) (*model.Reminder, error) {
	var reminder model.Reminder
	if err := r.db.WithContext(ctx).First(&reminder, id).Error; err != nil {
		return nil, notFound(err, "reminder", id)
	}
	return &reminder, nil
}

func (r *ReminderRepository) ListByDose(ctx context.Context, doseID uint) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Where("scheduled_dose_id = ?", doseID).
		Order("reminder_date ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListDue returns unsent reminders dated on or before today, oldest first.
func (r *ReminderRepository) ListDue(ctx context.Context, today time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Where("sent = ? AND reminder_date <= ?", false, model.DateColumn(today)).
		Order("reminder_date ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListUpcoming returns userID's unsent reminders dated within [from, to].
func (r *ReminderRepository) ListUpcoming(ctx context.Context, userID uint, from, to time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.WithContext(ctx).
		Joins("JOIN scheduled_doses ON scheduled_doses.id = reminders.scheduled_dose_id").
		Joins("JOIN children ON children.id = scheduled_doses.child_id").
		Where("children.user_id = ? AND reminders.sent = ?", userID, false).
		Where("reminders.reminder_date >= ? AND reminders.reminder_date <= ?", model.DateColumn(from), model.DateColumn(to)).
		Order("reminders.reminder_date ASC, reminders.id ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListByUser returns every reminder attached to userID's children.
func (r *ReminderRepository) ListByUser(ctx context.Context, userID uint) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.WithContext(ctx).
		Joins("JOIN scheduled_doses ON scheduled_doses.id = reminders.scheduled_dose_id").
		Joins("JOIN children ON children.id = scheduled_doses.child_id").
		Where("children.user_id = ?", userID).
		Order("reminders.reminder_date ASC, reminders.id ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepository) MarkSent(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.Reminder{}).Where("id = ?", id).Update("sent", true)
	if res.Error != nil {
		return fmt.Errorf("mark reminder sent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.NotFoundError{Entity: "reminder", ID: id}
	}
	return nil
}

func (r *ReminderRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Reminder{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete reminder: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.NotFoundError{Entity: "reminder", ID: id}
	}
	return nil
}
