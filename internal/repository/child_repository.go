package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vaccine-reminder/internal/model"
)

// ChildRepository manages child profiles.
type ChildRepository struct {
	db *gorm.DB
}

func NewChildRepository(db *gorm.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

func (r *ChildRepository) Create(ctx context.Context, child *model.Child) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(child).Error; err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}

func (r *ChildRepository) FindByID(ctx context.Context, id uint) (*model.Child, error) {
	var child model.Child
	if err := r.db.WithContext(ctx).First(&child, id).Error; err != nil {
		return nil, notFound(err, "child", id)
	}
	return &child, nil
}

// FindForUser returns the child only when userID owns it.
func (r *ChildRepository) FindForUser(ctx context.Context, userID, childID uint) (*model.Child, error) {
	var child model.Child
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, childID).First(&child).Error; err != nil {
		return nil, notFound(err, "child", childID)
	}
	return &child, nil
}

func (r *ChildRepository) ListByUser(ctx context.Context, userID uint) ([]model.Child, error) {
	var children []model.Child
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&children).Error; err != nil {
		return nil, err
	}
	return children, nil
}

// Delete removes a child, its doses and their reminders in one transaction.
func (r *ChildRepository) Delete(ctx context.Context, childID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doseIDs []uint
		if err := tx.Model(&model.ScheduledDose{}).Where("child_id = ?", childID).Pluck("id", &doseIDs).Error; err != nil {
			return fmt.Errorf("list doses: %w", err)
		}
		if len(doseIDs) > 0 {
			if err := tx.Where("scheduled_dose_id IN ?", doseIDs).Delete(&model.Reminder{}).Error; err != nil {
				return fmt.Errorf("delete reminders: %w", err)
			}
			if err := tx.Where("id IN ?", doseIDs).Delete(&model.ScheduledDose{}).Error; err != nil {
				return fmt.Errorf("delete doses: %w", err)
			}
		}
		res := tx.Delete(&model.Child{}, childID)
		if res.Error != nil {
			return fmt.Errorf("delete child: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &model.NotFoundError{Entity: "child", ID: childID}
		}
		return nil
	})
}
