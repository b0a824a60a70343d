package domain

import (
	"encoding/json"
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

// Session is an opaque bearer credential. Possession of the token
// authenticates as UserID until the session is revoked or expires.
type Session struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Message content is either a plain string or an ordered list of content
// parts; it is stored and returned opaquely.
type Message struct {
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Reasoning string          `json:"reasoning,omitempty"`
	Cost      *float64        `json:"cost,omitempty"`
}

// Chat transcripts are saved wholesale: a save replaces the full message
// list. Chats carry no owner; see DESIGN.md.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatSummary is the listing view of a chat, without message bodies.
type ChatSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Image struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt,omitempty"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
