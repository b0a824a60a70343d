package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, userID, token string, lifetime time.Duration) (domain.Session, error) {
	now := time.Now().UTC()
	session := domain.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, session.Token, session.UserID, session.CreatedAt, session.ExpiresAt)
	return session, err
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (domain.Session, error) {
	var session domain.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, created_at, expires_at
		FROM sessions
		WHERE token = $1
	`, token).Scan(&session.Token, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	return session, err
}

// DeleteByToken is a no-op for unknown tokens.
func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE token = $1
	`, token)
	return err
}

// DeleteExpired removes sessions whose expiry is in the past. Expired rows
// are inert either way; this is cleanup, not a correctness requirement.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE expires_at < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
