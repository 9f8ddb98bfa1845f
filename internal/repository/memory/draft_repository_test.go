package memory

import (
	"testing"

	"chatbot-creator-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftRepositoryRoundTrip(t *testing.T) {
	repo := NewDraftRepository()

	draft := &entity.BotDraft{
		Id:      uuid.New(),
		OwnerId: uuid.New(),
		Name:    "Support Bot",
	}
	repo.Save(draft)

	got, found := repo.Get(draft.Id)
	require.True(t, found)
	assert.Equal(t, "Support Bot", got.Name)
	assert.False(t, got.UpdatedAt.IsZero())

	repo.Delete(draft.Id)
	_, found = repo.Get(draft.Id)
	assert.False(t, found)
}

func TestDraftRepositoryMissing(t *testing.T) {
	repo := NewDraftRepository()
	_, found := repo.Get(uuid.New())
	assert.False(t, found)
}
