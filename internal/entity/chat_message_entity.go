package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one turn of a transcript. Position is a per-session
// ordinal assigned at append time; it is the transcript order.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	Position      int
	CreatedAt     time.Time
}
