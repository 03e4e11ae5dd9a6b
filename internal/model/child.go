package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders lists the accepted values in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// ParseGender accepts any casing of a known gender.
func ParseGender(raw string) (Gender, error) {
	value := Gender(strings.ToLower(strings.TrimSpace(raw)))
	for _, g := range Genders {
		if value == g {
			return g, nil
		}
	}
	return "", invalid("gender", "must be one of: male, female, other")
}

// Child is a profile owned by a caregiver.
type Child struct {
	ID          uint           `gorm:"primaryKey"`
	UserID      uint           `gorm:"index"`
	Name        string         `gorm:"not null"`
	DateOfBirth datatypes.Date `gorm:"not null"`
	Gender      Gender         `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Doses       []ScheduledDose `gorm:"foreignKey:ChildID"`
}

// NewChild validates the profile fields against today.
func NewChild(userID uint, name string, dob time.Time, gender string, today time.Time) (Child, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return Child{}, invalid("name", "must be at least 2 characters long")
	}
	if DateOf(dob).After(DateOf(today)) {
		return Child{}, invalid("date_of_birth", "cannot be in the future")
	}
	g, err := ParseGender(gender)
	if err != nil {
		return Child{}, err
	}
	return Child{
		UserID:      userID,
		Name:        name,
		DateOfBirth: DateColumn(dob),
		Gender:      g,
	}, nil
}

func (c Child) BirthDate() time.Time {
	return fromColumn(c.DateOfBirth)
}
