package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Bot struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId           uuid.UUID      `gorm:"type:uuid;not null;index"` // owner for listing; reads are not restricted
	Name              string         `gorm:"type:varchar(255);not null"`
	Description       string         `gorm:"type:text"`
	Personality       string         `gorm:"type:text"`
	SystemInstruction string         `gorm:"type:text;not null"`
	KnowledgeBaseMode string         `gorm:"type:varchar(50);not null;default:'default'"`
	FileURLs          datatypes.JSON `gorm:"column:file_urls"`
	AvatarURL         string         `gorm:"type:text"`

	ThemePrimaryColor   string `gorm:"type:varchar(20);not null"`
	ThemeFontSizePx     int    `gorm:"not null"`
	ThemeBorderRadiusPx int    `gorm:"not null"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Bot) TableName() string {
	return "bots"
}
