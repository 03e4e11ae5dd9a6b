package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vaccine-reminder/internal/model"
)

// DoseRepository handles CRUD for scheduled doses.
type DoseRepository struct {
	db *gorm.DB
}

func NewDoseRepository(db *gorm.DB) *DoseRepository {
	return &DoseRepository{db: db}
}

func (r *DoseRepository) Create(ctx context.Context, dose *model.ScheduledDose) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(dose).Error; err != nil {
		return fmt.Errorf("create dose: %w", err)
	}
	return nil
}

func (r *DoseRepository) FindByID(ctx context.Context, id uint) (*model.ScheduledDose, error) {
	var dose model.ScheduledDose
	if err := r.db.WithContext(ctx).Preload("Vaccine").First(&dose, id).Error; err != nil {
		return nil, notFound(err, "dose", id)
	}
	return &dose, nil
}

// FindForUser loads a dose only if it belongs to one of userID's children.
func (r *DoseRepository) FindForUser(ctx context.Context, userID, doseID uint) (*model.ScheduledDose, error) {
	var dose model.ScheduledDose
	err := r.db.WithContext(ctx).Preload("Vaccine").
		Joins("JOIN children ON children.id = scheduled_doses.child_id").
		Where("children.user_id = ? AND scheduled_doses.id = ?", userID, doseID).
		First(&dose).Error
	if err != nil {
		return nil, notFound(err, "dose", doseID)
	}
	return &dose, nil
}

func (r *DoseRepository) ListByChild(ctx context.Context, childID uint) ([]model.ScheduledDose, error) {
	var doses []model.ScheduledDose
	if err := r.db.WithContext(ctx).Preload("Vaccine").Where("child_id = ?", childID).
		Order("scheduled_date ASC, id ASC").
		Find(&doses).Error; err != nil {
		return nil, err
	}
	return doses, nil
}

// UpdateStatus writes only the status column.
func (r *DoseRepository) UpdateStatus(ctx context.Context, doseID uint, status model.DoseStatus) error {
	if err := r.db.WithContext(ctx).Model(&model.ScheduledDose{}).Where("id = ?", doseID).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("update dose status: %w", err)
	}
	return nil
}

func (r *DoseRepository) MarkCompleted(ctx context.Context, dose *model.ScheduledDose) error {
	err := r.db.WithContext(ctx).Model(&model.ScheduledDose{}).Where("id = ?", dose.ID).
		Updates(map[string]interface{}{
			"status":         dose.Status,
			"completed_date": dose.CompletedDate,
		}).Error
	if err != nil {
		return fmt.Errorf("complete dose: %w", err)
	}
	return nil
}

func (r *DoseRepository) SetReminderSent(ctx context.Context, doseID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.ScheduledDose{}).Where("id = ?", doseID).
		Update("reminder_sent", true).Error; err != nil {
		return fmt.Errorf("flag dose reminder: %w", err)
	}
	return nil
}

// Delete removes a dose and its reminders atomically.
func (r *DoseRepository) Delete(ctx context.Context, doseID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scheduled_dose_id = ?", doseID).Delete(&model.Reminder{}).Error; err != nil {
			return fmt.Errorf("delete reminders: %w", err)
		}
		res := tx.Delete(&model.ScheduledDose{}, doseID)
		if res.Error != nil {
			return fmt.Errorf("delete dose: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &model.NotFoundError{Entity: "dose", ID: doseID}
		}
		return nil
	})
}
