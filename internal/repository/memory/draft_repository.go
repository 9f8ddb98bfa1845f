package memory

import (
	"time"

	"chatbot-creator-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type DraftRepository struct {
	cache *cache.Cache
}

func NewDraftRepository() *DraftRepository {
	// Drafts live for an hour of inactivity, purged every 10 minutes.
	// An abandoned wizard simply evaporates.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &DraftRepository{
		cache: c,
	}
}

func (r *DraftRepository) Save(draft *entity.BotDraft) {
	draft.UpdatedAt = time.Now()
	r.cache.Set(draft.Id.String(), draft, cache.DefaultExpiration)
}

func (r *DraftRepository) Get(draftID uuid.UUID) (*entity.BotDraft, bool) {
	if x, found := r.cache.Get(draftID.String()); found {
		return x.(*entity.BotDraft), true
	}
	return nil, false
}

func (r *DraftRepository) Delete(draftID uuid.UUID) {
	r.cache.Delete(draftID.String())
}
