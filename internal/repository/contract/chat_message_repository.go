package contract

import (
	"context"

	"chatbot-creator-be/internal/entity"
	"chatbot-creator-be/internal/repository/specification"
)

type ChatMessageRepository interface {
	CreateBulk(ctx context.Context, messages []*entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
}
