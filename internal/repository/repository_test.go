package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xGingi/SuperKagi-sub001/internal/config"
	"github.com/0xGingi/SuperKagi-sub001/internal/domain"
	"github.com/0xGingi/SuperKagi-sub001/internal/storage"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.NewSQLite(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.RunMigrations(context.Background(), db))
	return db
}

func createTestUser(t *testing.T, repo *UserRepository, username string) domain.User {
	t.Helper()
	user, err := repo.Create(context.Background(), username, "hash", false)
	require.NoError(t, err)
	return user
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", "hash1", false)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "alice", "hash2", true)
	assert.ErrorIs(t, err, domain.ErrConflict)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "hash1", users[0].PasswordHash)
}

func TestUserUsernameIsCaseSensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", "hash", false)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "Alice", "hash", false)
	require.NoError(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	sessions := NewSessionRepository(db)
	ctx := context.Background()

	user := createTestUser(t, users, "alice")

	created, err := sessions.Create(ctx, user.ID, "token-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, created.ExpiresAt.After(created.CreatedAt))

	got, err := sessions.GetByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, sessions.DeleteByToken(ctx, "token-1"))
	_, err = sessions.GetByToken(ctx, "token-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Deleting an unknown token is a no-op.
	require.NoError(t, sessions.DeleteByToken(ctx, "token-1"))
}

func TestSessionDeleteExpired(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	sessions := NewSessionRepository(db)
	ctx := context.Background()

	user := createTestUser(t, users, "alice")

	_, err := sessions.Create(ctx, user.ID, "stale", -time.Minute)
	require.NoError(t, err)
	_, err = sessions.Create(ctx, user.ID, "fresh", time.Hour)
	require.NoError(t, err)

	removed, err := sessions.DeleteExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = sessions.GetByToken(ctx, "fresh")
	assert.NoError(t, err)
}

func TestChatUpsertReplacesMessages(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	m1 := domain.Message{Role: "user", Content: json.RawMessage(`"hello"`)}
	m2 := domain.Message{Role: "assistant", Content: json.RawMessage(`"goodbye"`)}

	_, err := repo.Upsert(ctx, domain.Chat{ID: "42", Messages: []domain.Message{m1}})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, domain.Chat{ID: "42", Messages: []domain.Message{m2}})
	require.NoError(t, err)

	chat, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, "assistant", chat.Messages[0].Role)
	assert.JSONEq(t, `"goodbye"`, string(chat.Messages[0].Content))
}

func TestChatListSummariesOmitsBodies(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	messages := []domain.Message{
		{Role: "user", Content: json.RawMessage(`"q"`)},
		{Role: "assistant", Content: json.RawMessage(`"a"`)},
	}
	_, err := repo.Upsert(ctx, domain.Chat{ID: "1", Title: "first", Messages: messages})
	require.NoError(t, err)

	summaries, err := repo.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "first", summaries[0].Title)
	assert.Equal(t, 2, summaries[0].MessageCount)
}

func TestChatDeleteIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, domain.Chat{ID: "1", Messages: []domain.Message{}})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "1"))
	require.NoError(t, repo.Delete(ctx, "1"))
	require.NoError(t, repo.Delete(ctx, "never-existed"))
}

func TestImageOwnershipScoping(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	images := NewImageRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")

	_, err := images.Upsert(ctx, domain.Image{ID: "img-1", URL: "https://cdn/a.png"}, alice.ID)
	require.NoError(t, err)

	// Listing is strictly owner-scoped.
	aliceImages, err := images.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceImages, 1)
	bobImages, err := images.ListByOwner(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobImages)

	// A non-owner delete removes nothing and reports false.
	deleted, err := images.Delete(ctx, "img-1", bob.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	aliceImages, err = images.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceImages, 1)

	deleted, err = images.Delete(ctx, "img-1", alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestImageUpsertStampsOwner(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	images := NewImageRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")

	// The owner argument wins over whatever the struct carries.
	saved, err := images.Upsert(ctx, domain.Image{ID: "img-1", OwnerID: "someone-else", URL: "https://cdn/a.png"}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, saved.OwnerID)

	listed, err := images.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, alice.ID, listed[0].OwnerID)
}
