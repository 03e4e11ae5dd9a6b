package model

import (
	"strings"
	"time"
)

// Vaccine is catalog reference data.
type Vaccine struct {
	ID                   uint   `gorm:"primaryKey"`
	Name                 string `gorm:"not null;index"`
	Description          string
	RecommendedAgeMonths int `gorm:"not null;index"`
	DoseNumber           int `gorm:"not null"`
	IsRequired           bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func NewVaccine(name, description string, ageMonths, doseNumber int, required bool) (Vaccine, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	switch {
	case len([]rune(name)) < 3:
		return Vaccine{}, invalid("name", "must be at least 3 characters long")
	case len([]rune(description)) < 10:
		return Vaccine{}, invalid("description", "must be at least 10 characters long")
	case ageMonths < 0:
		return Vaccine{}, invalid("recommended_age_months", "must be zero or a positive integer")
	case doseNumber < 1:
		return Vaccine{}, invalid("dose_number", "must be a positive integer")
	}
	return Vaccine{
		Name:                 name,
		Description:          description,
		RecommendedAgeMonths: ageMonths,
		DoseNumber:           doseNumber,
		IsRequired:           required,
	}, nil
}
