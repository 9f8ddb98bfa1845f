package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chatbot-creator-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const conversationStateTTL = 24 * time.Hour

type ConversationStateRepository struct {
	client *redis.Client
}

func NewConversationStateRepository(client *redis.Client) *ConversationStateRepository {
	return &ConversationStateRepository{
		client: client,
	}
}

func (r *ConversationStateRepository) key(sessionID uuid.UUID) string {
	return fmt.Sprintf("conversation:%s", sessionID)
}

func (r *ConversationStateRepository) Save(ctx context.Context, state *store.ConversationState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation state: %w", err)
	}
	return r.client.Set(ctx, r.key(state.SessionID), payload, conversationStateTTL).Err()
}

func (r *ConversationStateRepository) Get(ctx context.Context, sessionID uuid.UUID) (*store.ConversationState, bool, error) {
	payload, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var state store.ConversationState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal conversation state: %w", err)
	}
	return &state, true, nil
}

func (r *ConversationStateRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
