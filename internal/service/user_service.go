package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linkgrab/linkgrab/internal/domain"
	"github.com/linkgrab/linkgrab/internal/repository"
)

// UserService creates chat users lazily on first contact and keeps their
// display fields current.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Ensure returns the stored user for a chat identity, creating the record on
// first contact and refreshing display fields when they changed upstream.
func (s *UserService) Ensure(ctx context.Context, telegramID int64, firstName, lastName, username, langCode string) (*domain.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, domain.ErrUserNotFound) {
		created, err := s.users.Create(ctx, &domain.User{
			TelegramID: telegramID,
			FirstName:  firstName,
			LastName:   lastName,
			Username:   username,
			LangCode:   langCode,
		})
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.logger.Info("user created", "user_id", created.ID, "telegram_id", telegramID)
		return created, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.FirstName != firstName || user.LastName != lastName ||
		user.Username != username || user.LangCode != langCode {
		user.FirstName = firstName
		user.LastName = lastName
		user.Username = username
		user.LangCode = langCode
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	return user, nil
}
