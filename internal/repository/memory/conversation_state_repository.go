package memory

import (
	"context"
	"time"

	"chatbot-creator-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ConversationStateRepository is the in-process fallback for the Redis
// backed store. Used when REDIS_URL is unset and in tests.
type ConversationStateRepository struct {
	cache *cache.Cache
}

func NewConversationStateRepository() *ConversationStateRepository {
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &ConversationStateRepository{
		cache: c,
	}
}

// copyState snapshots a state so cached entries and callers never share
// the Turns slice. Matches the Redis store, where only Save persists.
func copyState(state *store.ConversationState) *store.ConversationState {
	cp := *state
	cp.Turns = append([]store.Turn(nil), state.Turns...)
	return &cp
}

func (r *ConversationStateRepository) Save(ctx context.Context, state *store.ConversationState) error {
	r.cache.Set(state.SessionID.String(), copyState(state), cache.DefaultExpiration)
	return nil
}

func (r *ConversationStateRepository) Get(ctx context.Context, sessionID uuid.UUID) (*store.ConversationState, bool, error) {
	if x, found := r.cache.Get(sessionID.String()); found {
		return copyState(x.(*store.ConversationState)), true, nil
	}
	return nil, false, nil
}

func (r *ConversationStateRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	r.cache.Delete(sessionID.String())
	return nil
}
