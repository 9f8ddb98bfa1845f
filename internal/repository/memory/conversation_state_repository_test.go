package memory

import (
	"context"
	"testing"

	"chatbot-creator-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationStateIsolation(t *testing.T) {
	repo := NewConversationStateRepository()
	ctx := context.Background()

	state := &store.ConversationState{
		SessionID:      uuid.New(),
		BotID:          uuid.New(),
		OwnerID:        uuid.New(),
		Title:          "Conversation 1",
		Turns:          []store.Turn{{Role: "user", Content: "Hello"}},
		PersistedCount: 0,
	}
	require.NoError(t, repo.Save(ctx, state))

	// Mutating the caller's state after Save must not leak into the store.
	state.Turns = append(state.Turns, store.Turn{Role: "assistant", Content: "Hi there!"})

	got, found, err := repo.Get(ctx, state.SessionID)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got.Turns, 1)

	// Mutating a Get result must not leak either.
	got.Turns[0].Content = "changed"
	got.Turns = append(got.Turns, store.Turn{Role: "assistant", Content: "extra"})

	again, found, err := repo.Get(ctx, state.SessionID)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, again.Turns, 1)
	assert.Equal(t, "Hello", again.Turns[0].Content)
}

func TestConversationStateDelete(t *testing.T) {
	repo := NewConversationStateRepository()
	ctx := context.Background()

	state := &store.ConversationState{SessionID: uuid.New()}
	require.NoError(t, repo.Save(ctx, state))
	require.NoError(t, repo.Delete(ctx, state.SessionID))

	_, found, err := repo.Get(ctx, state.SessionID)
	require.NoError(t, err)
	assert.False(t, found)
}
