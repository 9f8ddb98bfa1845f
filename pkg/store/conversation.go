package store

import (
	"context"

	"github.com/google/uuid"
)

// Turn is a single utterance in the active conversation window.
type Turn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// ConversationState is the working copy of the conversation the user is
// currently looking at. Turns beyond PersistedCount have not been flushed
// to the database yet.
type ConversationState struct {
	SessionID      uuid.UUID `json:"session_id"`
	BotID          uuid.UUID `json:"bot_id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Title          string    `json:"title"`
	Turns          []Turn    `json:"turns"`
	PersistedCount int       `json:"persisted_count"`
}

// ConversationStateStore keeps the active conversation state between
// requests. Backed by Redis in production, by process memory in tests.
type ConversationStateStore interface {
	Save(ctx context.Context, state *ConversationState) error
	Get(ctx context.Context, sessionID uuid.UUID) (*ConversationState, bool, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}
