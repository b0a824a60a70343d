package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
	"github.com/0xGingi/SuperKagi-sub001/internal/repository"
)

type AuthService struct {
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	lifetime time.Duration
}

func NewAuthService(users *repository.UserRepository, sessions *repository.SessionRepository, lifetime time.Duration) *AuthService {
	return &AuthService{users: users, sessions: sessions, lifetime: lifetime}
}

func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login fails with ErrUnauthenticated for both unknown usernames and wrong
// passwords; the caller cannot learn which.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, domain.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.Session{}, fmt.Errorf("login: %w", domain.ErrUnauthenticated)
		}
		return domain.User{}, domain.Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.Session{}, fmt.Errorf("login: %w", domain.ErrUnauthenticated)
	}

	token, err := generateToken()
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}
	session, err := s.sessions.Create(ctx, user.ID, token, s.lifetime)
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}
	return user, session, nil
}

// Resolve maps a token to its user. Absent, unknown, and expired tokens all
// resolve to no user with a nil error; expired rows are deleted on the way.
func (s *AuthService) Resolve(ctx context.Context, token string) (domain.User, bool, error) {
	if token == "" {
		return domain.User{}, false, nil
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	if session.Expired(time.Now().UTC()) {
		_ = s.sessions.DeleteByToken(ctx, token)
		return domain.User{}, false, nil
	}
	user, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return user, true, nil
}

// Logout is idempotent; revoking an unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteByToken(ctx, token)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
