package dto

import (
	"time"

	"github.com/google/uuid"
)

type ThemeDTO struct {
	PrimaryColor   string `json:"primary_color"`
	FontSizePx     int    `json:"font_size_px"`
	BorderRadiusPx int    `json:"border_radius_px"`
}

type BotResponse struct {
	Id                uuid.UUID `json:"id"`
	OwnerId           uuid.UUID `json:"owner_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Personality       string    `json:"personality"`
	SystemInstruction string    `json:"system_instruction"`
	KnowledgeBaseMode string    `json:"knowledge_base_mode"`
	FileURLs          []string  `json:"file_urls"`
	AvatarURL         string    `json:"avatar_url"`
	Theme             ThemeDTO  `json:"theme"`
	CreatedAt         time.Time `json:"created_at"`
}

type DraftResponse struct {
	Id                uuid.UUID `json:"id"`
	Step              int       `json:"step"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Personality       string    `json:"personality"`
	KnowledgeBaseMode string    `json:"knowledge_base_mode"`
	FileNames         []string  `json:"file_names"`
}

// UpdateDraftRequest merges the provided fields into the draft. Nothing is
// required here; validation happens once, at submit.
type UpdateDraftRequest struct {
	Name              *string `json:"name" validate:"omitempty,max=60"`
	Description       *string `json:"description" validate:"omitempty,max=300"`
	Personality       *string `json:"personality"`
	KnowledgeBaseMode *string `json:"knowledge_base_mode" validate:"omitempty,oneof=default custom"`
}

type UpdateThemeRequest struct {
	PrimaryColor   string `json:"primary_color" validate:"required,hexcolor"`
	FontSizePx     int    `json:"font_size_px" validate:"required,gte=10,lte=32"`
	BorderRadiusPx int    `json:"border_radius_px" validate:"gte=0,lte=32"`
}
