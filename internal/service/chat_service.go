package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
	"github.com/0xGingi/SuperKagi-sub001/internal/repository"
)

type ChatService struct {
	repo *repository.ChatRepository
}

func NewChatService(repo *repository.ChatRepository) *ChatService {
	return &ChatService{repo: repo}
}

// Save upserts the chat by its client-chosen id, replacing any previous
// message list in full.
func (s *ChatService) Save(ctx context.Context, chat domain.Chat) (domain.Chat, error) {
	if chat.ID == "" {
		return domain.Chat{}, fmt.Errorf("chat id is required: %w", domain.ErrInvalidInput)
	}
	if chat.Messages == nil {
		return domain.Chat{}, fmt.Errorf("chat messages are required: %w", domain.ErrInvalidInput)
	}
	return s.repo.Upsert(ctx, chat)
}

func (s *ChatService) Get(ctx context.Context, id string) (domain.Chat, error) {
	chat, err := s.repo.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Chat{}, fmt.Errorf("chat %q: %w", id, domain.ErrNotFound)
	}
	return chat, err
}

func (s *ChatService) List(ctx context.Context) ([]domain.ChatSummary, error) {
	return s.repo.ListSummaries(ctx)
}

// Delete is idempotent; deleting an unknown id succeeds.
func (s *ChatService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
