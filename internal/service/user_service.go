package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/repository"
)

// UserService manages caregiver accounts.
type UserService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewUserService(store *repository.Store, log *zap.Logger) *UserService {
	return &UserService{store: store, log: log}
}

// Register finds or creates the account behind a Telegram user.
func (s *UserService) Register(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	return s.store.Users.UpsertFromTelegram(ctx, telegramID, firstName, lastName, username)
}

func (s *UserService) Get(ctx context.Context, userID uint) (*model.User, error) {
	return s.store.Users.FindByID(ctx, userID)
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.store.Users.ListAll(ctx)
}

// SetEmail stores the address used for email reminders. An empty value
// turns email reminders off.
func (s *UserService) SetEmail(ctx context.Context, userID uint, raw string) (*model.User, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	email := ""
	if raw != "" {
		if email, err = model.NormalizeEmail(raw); err != nil {
			return nil, err
		}
	}
	user.Email = email
	if err := s.store.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetLanguage changes the interface language of the account.
func (s *UserService) SetLanguage(ctx context.Context, userID uint, lang string) (*model.User, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if err := model.ValidateLanguage(lang); err != nil {
		return nil, err
	}
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Language = lang
	if err := s.store.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user and everything they own.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if err := s.store.Users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info("account deleted", zap.Uint("user_id", userID))
	return nil
}
