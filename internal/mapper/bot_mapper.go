package mapper

import (
	"encoding/json"
	"time"

	"chatbot-creator-be/internal/entity"
	"chatbot-creator-be/internal/model"

	"gorm.io/datatypes"
)

type BotMapper struct{}

func NewBotMapper() *BotMapper {
	return &BotMapper{}
}

func (m *BotMapper) ToEntity(b *model.Bot) *entity.Bot {
	if b == nil {
		return nil
	}

	var fileURLs []string
	if len(b.FileURLs) > 0 {
		// Corrupt JSON degrades to an empty list rather than failing a read.
		_ = json.Unmarshal(b.FileURLs, &fileURLs)
	}
	if fileURLs == nil {
		fileURLs = []string{}
	}

	var updatedAt *time.Time
	if !b.UpdatedAt.IsZero() {
		t := b.UpdatedAt
		updatedAt = &t
	}

	return &entity.Bot{
		Id:                b.Id,
		OwnerId:           b.OwnerId,
		Name:              b.Name,
		Description:       b.Description,
		Personality:       b.Personality,
		SystemInstruction: b.SystemInstruction,
		KnowledgeBaseMode: entity.KnowledgeBaseMode(b.KnowledgeBaseMode),
		FileURLs:          fileURLs,
		AvatarURL:         b.AvatarURL,
		Theme: entity.Theme{
			PrimaryColor:   b.ThemePrimaryColor,
			FontSizePx:     b.ThemeFontSizePx,
			BorderRadiusPx: b.ThemeBorderRadiusPx,
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *BotMapper) ToModel(b *entity.Bot) *model.Bot {
	if b == nil {
		return nil
	}

	fileURLs := b.FileURLs
	if fileURLs == nil {
		fileURLs = []string{}
	}
	rawURLs, _ := json.Marshal(fileURLs)

	var updatedAt time.Time
	if b.UpdatedAt != nil {
		updatedAt = *b.UpdatedAt
	}

	return &model.Bot{
		Id:                  b.Id,
		OwnerId:             b.OwnerId,
		Name:                b.Name,
		Description:         b.Description,
		Personality:         b.Personality,
		SystemInstruction:   b.SystemInstruction,
		KnowledgeBaseMode:   string(b.KnowledgeBaseMode),
		FileURLs:            datatypes.JSON(rawURLs),
		AvatarURL:           b.AvatarURL,
		ThemePrimaryColor:   b.Theme.PrimaryColor,
		ThemeFontSizePx:     b.Theme.FontSizePx,
		ThemeBorderRadiusPx: b.Theme.BorderRadiusPx,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}
