package entity

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeBaseMode string

const (
	KnowledgeBaseModeDefault KnowledgeBaseMode = "default"
	KnowledgeBaseModeCustom  KnowledgeBaseMode = "custom"
)

// Theme is the per-bot presentation config. Fields are enumerated on
// purpose; no free-form style keys are accepted.
type Theme struct {
	PrimaryColor   string
	FontSizePx     int
	BorderRadiusPx int
}

// Bot is a finished chatbot configuration. Created exactly once when an
// authoring draft is submitted; afterwards only the owner may change the
// theme. Bots are readable by any authenticated user.
type Bot struct {
	Id                uuid.UUID
	OwnerId           uuid.UUID
	Name              string
	Description       string
	Personality       string
	SystemInstruction string
	KnowledgeBaseMode KnowledgeBaseMode
	FileURLs          []string
	AvatarURL         string
	Theme             Theme
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}
