package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatbot-creator-be/internal/dto"
	"chatbot-creator-be/internal/entity"
	"chatbot-creator-be/internal/pkg/apperror"
	"chatbot-creator-be/internal/repository/memory"
	"chatbot-creator-be/pkg/llm"
	"chatbot-creator-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatTestEnv struct {
	db         *fakeDB
	llm        *fakeLLM
	stateStore store.ConversationStateStore
	service    IChatService
	ownerID    uuid.UUID
	bot        *entity.Bot
}

func newChatTestEnv(t *testing.T) *chatTestEnv {
	t.Helper()
	db := newFakeDB()
	llmFake := &fakeLLM{Reply: "Hi there!"}
	stateStore := memory.NewConversationStateRepository()
	svc := NewChatService(newFakeFactory(db), stateStore, llmFake, nil, nopLogger{})

	ownerID := uuid.New()
	bot := &entity.Bot{
		Id:                uuid.New(),
		OwnerId:           ownerID,
		Name:              "Helper",
		SystemInstruction: "You are Helper.",
		CreatedAt:         time.Now(),
	}
	db.bots = append(db.bots, bot)

	return &chatTestEnv{
		db:         db,
		llm:        llmFake,
		stateStore: stateStore,
		service:    svc,
		ownerID:    ownerID,
		bot:        bot,
	}
}

func TestSendTurnFirstPairCreatesSession(t *testing.T) {
	env := newChatTestEnv(t)
	ctx := context.Background()

	res, err := env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{
		BotId: env.bot.Id,
		Chat:  "Hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "user", res.UserTurn.Role)
	assert.Equal(t, "Hello", res.UserTurn.Content)
	assert.Equal(t, "assistant", res.AssistantTurn.Role)
	assert.Equal(t, "Hi there!", res.AssistantTurn.Content)
	assert.Equal(t, "Conversation 1", res.Title)

	// Exactly one session row, two messages, one transaction.
	require.Len(t, env.db.sessions, 1)
	assert.Equal(t, env.bot.Id, env.db.sessions[0].BotId)
	assert.Equal(t, env.ownerID, env.db.sessions[0].UserId)
	require.Len(t, env.db.messages, 2)
	assert.Equal(t, 0, env.db.messages[0].Position)
	assert.Equal(t, 1, env.db.messages[1].Position)
	assert.Equal(t, 1, env.db.Commits)

	// The gateway saw the system instruction plus the new user turn.
	require.Len(t, env.llm.History, 1)
	history := env.llm.History[0]
	require.Len(t, history, 2)
	assert.Equal(t, llm.Message{Role: "system", Content: "You are Helper."}, history[0])
	assert.Equal(t, llm.Message{Role: "user", Content: "Hello"}, history[1])
}

func TestSendTurnSecondPairTouchesSameSession(t *testing.T) {
	env := newChatTestEnv(t)
	ctx := context.Background()

	first, err := env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{BotId: env.bot.Id, Chat: "Hello"})
	require.NoError(t, err)

	sessionID := first.ChatSessionId
	_, err = env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{
		BotId:         env.bot.Id,
		ChatSessionId: &sessionID,
		Chat:          "And again",
	})
	require.NoError(t, err)

	assert.Len(t, env.db.sessions, 1)
	assert.Len(t, env.db.messages, 4)
	assert.Equal(t, 2, env.db.Commits)
	assert.NotNil(t, env.db.sessions[0].UpdatedAt)
}

func TestSendTurnGatewayFailureKeepsUserTurnWritesNothing(t *testing.T) {
	env := newChatTestEnv(t)
	ctx := context.Background()

	first, err := env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{BotId: env.bot.Id, Chat: "Hello"})
	require.NoError(t, err)
	writesAfterFirst := env.db.Writes

	env.llm.Err = errors.New("rate limited")
	sessionID := first.ChatSessionId
	_, err = env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{
		BotId:         env.bot.Id,
		ChatSessionId: &sessionID,
		Chat:          "Are you there?",
	})
	require.Error(t, err)
	kind, ok := apperror.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindInferenceFailed, kind)

	// No store write happened for the failed turn.
	assert.Equal(t, writesAfterFirst, env.db.Writes)
	assert.Len(t, env.db.messages, 2)

	// The user turn survives in the active state for a retry.
	state, found, err := env.stateStore.Get(ctx, sessionID)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, state.Turns, 3)
	assert.Equal(t, "Are you there?", state.Turns[2].Content)
	assert.Equal(t, 2, state.PersistedCount)
}

func TestSendTurnRejectsEmptyText(t *testing.T) {
	env := newChatTestEnv(t)

	_, err := env.service.SendTurn(context.Background(), env.ownerID, &dto.SendTurnRequest{
		BotId: env.bot.Id,
		Chat:  "   \n\t ",
	})
	require.Error(t, err)
	kind, _ := apperror.KindOf(err)
	assert.Equal(t, apperror.KindValidationFailed, kind)
	assert.Zero(t, env.db.Writes)
}

func TestSendTurnUnknownBot(t *testing.T) {
	env := newChatTestEnv(t)

	_, err := env.service.SendTurn(context.Background(), env.ownerID, &dto.SendTurnRequest{
		BotId: uuid.New(),
		Chat:  "Hello",
	})
	require.Error(t, err)
	kind, _ := apperror.KindOf(err)
	assert.Equal(t, apperror.KindNotFound, kind)
}

func TestSendTurnForeignSessionIsNotFound(t *testing.T) {
	env := newChatTestEnv(t)
	ctx := context.Background()

	first, err := env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{BotId: env.bot.Id, Chat: "Hello"})
	require.NoError(t, err)

	stranger := uuid.New()
	sessionID := first.ChatSessionId
	_, err = env.service.SendTurn(ctx, stranger, &dto.SendTurnRequest{
		BotId:         env.bot.Id,
		ChatSessionId: &sessionID,
		Chat:          "Let me in",
	})
	require.Error(t, err)
	kind, _ := apperror.KindOf(err)
	assert.Equal(t, apperror.KindNotFound, kind)
}

// blockingLLM parks inside Chat until released, so a second send can race
// the first.
type blockingLLM struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	b.entered <- struct{}{}
	<-b.release
	return "done", nil
}

func (b *blockingLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return b.Chat(ctx, nil, opts...)
}

func TestSendTurnConcurrentSendConflicts(t *testing.T) {
	env := newChatTestEnv(t)
	ctx := context.Background()

	first, err := env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{BotId: env.bot.Id, Chat: "Hello"})
	require.NoError(t, err)
	sessionID := first.ChatSessionId

	blocker := &blockingLLM{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewChatService(newFakeFactory(env.db), env.stateStore, blocker, nil, nopLogger{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{
			BotId:         env.bot.Id,
			ChatSessionId: &sessionID,
			Chat:          "slow one",
		})
		done <- err
	}()

	<-blocker.entered // the first send now holds the session lock

	_, err = svc.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{
		BotId:         env.bot.Id,
		ChatSessionId: &sessionID,
		Chat:          "impatient",
	})
	require.Error(t, err)
	kind, _ := apperror.KindOf(err)
	assert.Equal(t, apperror.KindConflict, kind)

	close(blocker.release)
	require.NoError(t, <-done)
}

func TestSwitchSessionReplacesStateAndIsIdempotent(t *testing.T) {
	env := newChatTestEnv(t)
	ctx := context.Background()

	first, err := env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{BotId: env.bot.Id, Chat: "Hello"})
	require.NoError(t, err)
	sessionID := first.ChatSessionId

	res, err := env.service.SwitchSession(ctx, env.ownerID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, res.Session.Id)
	require.Len(t, res.Transcript, 2)
	assert.Equal(t, "Hello", res.Transcript[0].Content)
	assert.Equal(t, "Hi there!", res.Transcript[1].Content)

	// Switching is read-only; repeating it changes nothing.
	again, err := env.service.SwitchSession(ctx, env.ownerID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, res.Transcript, again.Transcript)

	sessions, err := env.service.ListSessions(ctx, env.ownerID, env.bot.Id)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestSwitchSessionForeignOwnerNotFound(t *testing.T) {
	env := newChatTestEnv(t)
	ctx := context.Background()

	first, err := env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{BotId: env.bot.Id, Chat: "Hello"})
	require.NoError(t, err)

	_, err = env.service.SwitchSession(ctx, uuid.New(), first.ChatSessionId)
	require.Error(t, err)
	kind, _ := apperror.KindOf(err)
	assert.Equal(t, apperror.KindNotFound, kind)
}

func TestListSessionsOwnerIsolationAndOrder(t *testing.T) {
	env := newChatTestEnv(t)
	ctx := context.Background()
	other := uuid.New()

	env.db.sessions = append(env.db.sessions,
		&entity.ChatSession{Id: uuid.New(), BotId: env.bot.Id, UserId: env.ownerID, Title: "Conversation 1", CreatedAt: time.Now().Add(-2 * time.Hour)},
		&entity.ChatSession{Id: uuid.New(), BotId: env.bot.Id, UserId: env.ownerID, Title: "Conversation 2", CreatedAt: time.Now().Add(-1 * time.Hour)},
		&entity.ChatSession{Id: uuid.New(), BotId: env.bot.Id, UserId: other, Title: "Conversation 1", CreatedAt: time.Now()},
	)

	sessions, err := env.service.ListSessions(ctx, env.ownerID, env.bot.Id)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Conversation 2", sessions[0].Title)
	assert.Equal(t, "Conversation 1", sessions[1].Title)
}

func TestSendTurnSessionTitleCountsPriorSessions(t *testing.T) {
	env := newChatTestEnv(t)
	ctx := context.Background()

	env.db.sessions = append(env.db.sessions,
		&entity.ChatSession{Id: uuid.New(), BotId: env.bot.Id, UserId: env.ownerID, Title: "Conversation 1", CreatedAt: time.Now()},
	)

	res, err := env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{BotId: env.bot.Id, Chat: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Conversation 2", res.Title)
}

func TestSendTurnPersistenceFailure(t *testing.T) {
	env := newChatTestEnv(t)
	ctx := context.Background()

	env.db.FailCommit = errors.New("disk full")

	_, err := env.service.SendTurn(ctx, env.ownerID, &dto.SendTurnRequest{BotId: env.bot.Id, Chat: "Hello"})
	require.Error(t, err)
	kind, _ := apperror.KindOf(err)
	assert.Equal(t, apperror.KindPersistenceFailed, kind)

	// The transaction rolled back; no session or message rows remain.
	assert.Empty(t, env.db.sessions)
	assert.Empty(t, env.db.messages)
	assert.Zero(t, env.db.Commits)
}

func TestLoadBotReadableByAnyUser(t *testing.T) {
	env := newChatTestEnv(t)

	res, err := env.service.LoadBot(context.Background(), env.bot.Id)
	require.NoError(t, err)
	assert.Equal(t, env.bot.Name, res.Name)

	_, err = env.service.LoadBot(context.Background(), uuid.New())
	require.Error(t, err)
	kind, _ := apperror.KindOf(err)
	assert.Equal(t, apperror.KindNotFound, kind)
}
