package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	DraftStepBasicInfo = iota
	DraftStepPersonality
	DraftStepKnowledgeBase
	DraftStepReview

	DraftStepCount = 4
)

type DraftFile struct {
	Name    string
	Content []byte
}

// BotDraft is the wizard state accumulated across the four authoring steps.
// It lives only in the in-memory draft store and is discarded on submit.
type BotDraft struct {
	Id                uuid.UUID
	OwnerId           uuid.UUID
	Step              int
	Name              string
	Description       string
	Personality       string
	KnowledgeBaseMode KnowledgeBaseMode
	Files             []DraftFile
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
