package model

import (
	"strings"
	"time"
)

// DefaultLanguage is the only interface language currently supported.
const DefaultLanguage = "en"

// User stores the caregiver behind a Telegram account.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	Email      string
	Language   string `gorm:"default:en"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Children   []Child `gorm:"foreignKey:UserID"`
}

// NewUser registers a Telegram account. The id must be set.
func NewUser(telegramID int64, firstName, lastName, username string) (User, error) {
	if telegramID == 0 {
		return User{}, invalid("telegram_id", "is required")
	}
	return User{
		TelegramID: telegramID,
		FirstName:  strings.TrimSpace(firstName),
		LastName:   strings.TrimSpace(lastName),
		Username:   strings.TrimSpace(username),
		Language:   DefaultLanguage,
	}, nil
}

// DisplayName picks the friendliest non-empty name.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return "caregiver"
}

// NormalizeEmail validates an address for email reminders.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !strings.Contains(email, "@") {
		return "", invalid("email", "must be a valid email address")
	}
	return email, nil
}

func ValidateLanguage(lang string) error {
	if lang != DefaultLanguage {
		return invalid("language", "must be one of: %s", DefaultLanguage)
	}
	return nil
}
