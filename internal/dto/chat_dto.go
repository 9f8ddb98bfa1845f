package dto

import (
	"time"

	"github.com/google/uuid"
)

type SessionDTO struct {
	Id        uuid.UUID `json:"id"`
	BotId     uuid.UUID `json:"bot_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type TurnDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type SendTurnRequest struct {
	BotId         uuid.UUID  `json:"bot_id" validate:"required"`
	ChatSessionId *uuid.UUID `json:"chat_session_id"`
	Chat          string     `json:"chat" validate:"required"`
}

type SendTurnResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Title         string    `json:"title"`
	UserTurn      TurnDTO   `json:"user_turn"`
	AssistantTurn TurnDTO   `json:"assistant_turn"`
}

type SwitchSessionResponse struct {
	Session    SessionDTO `json:"session"`
	Transcript []TurnDTO  `json:"transcript"`
}
