package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
	"github.com/0xGingi/SuperKagi-sub001/internal/storage"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Username uniqueness is enforced by the table
// constraint so a concurrent duplicate surfaces as ErrConflict rather than
// racing a separate existence check.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string, isAdmin bool) (domain.User, error) {
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Username, user.PasswordHash, user.IsAdmin, user.CreatedAt)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return domain.User{}, fmt.Errorf("username %q: %w", username, domain.ErrConflict)
		}
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_admin, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	return user, err
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_admin, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	return user, err
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, password_hash, is_admin, created_at
		FROM users
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) HasAdmin(ctx context.Context) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE is_admin = TRUE
	`).Scan(&count)
	return count > 0, err
}
