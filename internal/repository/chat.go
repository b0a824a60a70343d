package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
)

type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Upsert stores the chat under its client-chosen id, replacing the full
// message list when the id already exists.
func (r *ChatRepository) Upsert(ctx context.Context, chat domain.Chat) (domain.Chat, error) {
	now := time.Now().UTC()
	if chat.Messages == nil {
		chat.Messages = []domain.Message{}
	}
	payload, err := json.Marshal(chat.Messages)
	if err != nil {
		return domain.Chat{}, err
	}
	chat.CreatedAt = now
	chat.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO chats (id, title, messages, message_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			messages = excluded.messages,
			message_count = excluded.message_count,
			updated_at = excluded.updated_at
	`, chat.ID, chat.Title, string(payload), len(chat.Messages), chat.CreatedAt, chat.UpdatedAt)
	return chat, err
}

func (r *ChatRepository) Get(ctx context.Context, id string) (domain.Chat, error) {
	var chat domain.Chat
	var payload string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM chats
		WHERE id = $1
	`, id).Scan(&chat.ID, &chat.Title, &payload, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return domain.Chat{}, err
	}
	if err := json.Unmarshal([]byte(payload), &chat.Messages); err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

// ListSummaries returns chats without message bodies, newest first.
func (r *ChatRepository) ListSummaries(ctx context.Context) ([]domain.ChatSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, message_count, updated_at
		FROM chats
		ORDER BY updated_at DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.ChatSummary
	for rows.Next() {
		var s domain.ChatSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.MessageCount, &s.UpdatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Delete is a no-op for unknown ids.
func (r *ChatRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = $1`, id)
	return err
}
