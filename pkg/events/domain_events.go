package events

import "time"

const (
	TypeUserRegistered    = "USER_REGISTERED"
	TypeBotCreated        = "BOT_CREATED"
	TypeChatTurnCompleted = "CHAT_TURN_COMPLETED"
)

func NewUserRegistered(userID, email string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
		},
		OccurredAt: time.Now(),
	}
}

func NewBotCreated(botID, ownerID, name string) Event {
	return BaseEvent{
		Type: TypeBotCreated,
		Data: map[string]interface{}{
			"bot_id":   botID,
			"owner_id": ownerID,
			"name":     name,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatTurnCompleted(sessionID, botID, userID string) Event {
	return BaseEvent{
		Type: TypeChatTurnCompleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"bot_id":     botID,
			"user_id":    userID,
		},
		OccurredAt: time.Now(),
	}
}
