package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"vaccine-reminder/internal/model"
)

// VaccineRepository serves the vaccine catalog.
type VaccineRepository struct {
	db *gorm.DB
}

func NewVaccineRepository(db *gorm.DB) *VaccineRepository {
	return &VaccineRepository{db: db}
}

func (r *VaccineRepository) Create(ctx context.Context, vaccine *model.Vaccine) error {
	if err := r.db.WithContext(ctx).Create(vaccine).Error; err != nil {
		return fmt.Errorf("create vaccine: %w", err)
	}
	return nil
}

func (r *VaccineRepository) FindByID(ctx context.Context, id uint) (*model.Vaccine, error) {
	var vaccine model.Vaccine
	if err := r.db.WithContext(ctx).First(&vaccine, id).Error; err != nil {
		return nil, notFound(err, "vaccine", id)
	}
	return &vaccine, nil
}

// FindByName matches the exact catalog name; ok is false when absent.
func (r *VaccineRepository) FindByName(ctx context.Context, name string) (*model.Vaccine, bool, error) {
	var vaccines []model.Vaccine
	if err := r.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&vaccines).Error; err != nil {
		return nil, false, fmt.Errorf("find vaccine: %w", err)
	}
	if len(vaccines) == 0 {
		return nil, false, nil
	}
	return &vaccines[0], true, nil
}

func (r *VaccineRepository) ListAll(ctx context.Context) ([]model.Vaccine, error) {
	var vaccines []model.Vaccine
	if err := r.db.WithContext(ctx).Order("recommended_age_months ASC, id ASC").Find(&vaccines).Error; err != nil {
		return nil, err
	}
	return vaccines, nil
}

// ListEligible returns vaccines recommended at or below ageMonths, youngest first.
func (r *VaccineRepository) ListEligible(ctx context.Context, ageMonths int) ([]model.Vaccine, error) {
	var vaccines []model.Vaccine
	if err := r.db.WithContext(ctx).Where("recommended_age_months <= ?", ageMonths).
		Order("recommended_age_months ASC, id ASC").
		Find(&vaccines).Error; err != nil {
		return nil, err
	}
	return vaccines, nil
}
