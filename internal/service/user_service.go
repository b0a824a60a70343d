package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
	"github.com/0xGingi/SuperKagi-sub001/internal/repository"
)

const (
	minUsernameLength = 2
	minPasswordLength = 4
)

type UserService struct {
	repo   *repository.UserRepository
	logger *slog.Logger
}

func NewUserService(repo *repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) Create(ctx context.Context, username, password string, isAdmin bool) (domain.User, error) {
	if len(username) < minUsernameLength {
		return domain.User{}, fmt.Errorf("username must be at least %d characters: %w", minUsernameLength, domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return domain.User{}, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domain.ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	return s.repo.Create(ctx, username, hash, isAdmin)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	return s.repo.Get(ctx, id)
}

// EnsureAdmin seeds the bootstrap admin account when no admin exists yet.
// It does nothing without a configured password.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	exists, err := s.repo.HasAdmin(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	user, err := s.Create(ctx, username, password, true)
	if err != nil {
		return err
	}
	s.logger.Info("seeded bootstrap admin", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return nil
}
