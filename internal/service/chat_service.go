package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"chatbot-creator-be/internal/constant"
	"chatbot-creator-be/internal/dto"
	"chatbot-creator-be/internal/entity"
	"chatbot-creator-be/internal/pkg/apperror"
	"chatbot-creator-be/internal/pkg/logger"
	"chatbot-creator-be/internal/repository/specification"
	"chatbot-creator-be/internal/repository/unitofwork"
	"chatbot-creator-be/pkg/events"
	"chatbot-creator-be/pkg/llm"
	pktNats "chatbot-creator-be/pkg/nats"
	"chatbot-creator-be/pkg/store"

	"github.com/google/uuid"
)

type IChatService interface {
	LoadBot(ctx context.Context, botID uuid.UUID) (*dto.BotResponse, error)
	ListSessions(ctx context.Context, ownerID, botID uuid.UUID) ([]*dto.SessionDTO, error)
	SendTurn(ctx context.Context, ownerID uuid.UUID, req *dto.SendTurnRequest) (*dto.SendTurnResponse, error)
	SwitchSession(ctx context.Context, ownerID, sessionID uuid.UUID) (*dto.SwitchSessionResponse, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	stateStore     store.ConversationStateStore
	llmProvider    llm.LLMProvider
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger

	// One mutex per session id. Contention is rejected, never queued.
	sessionLocks sync.Map
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	stateStore store.ConversationStateStore,
	llmProvider llm.LLMProvider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		stateStore:     stateStore,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *chatService) lockFor(sessionID uuid.UUID) *sync.Mutex {
	actual, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

func toSessionDTO(session *entity.ChatSession) dto.SessionDTO {
	return dto.SessionDTO{
		Id:        session.Id,
		BotId:     session.BotId,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
	}
}

func turnsToDTO(turns []store.Turn) []dto.TurnDTO {
	out := make([]dto.TurnDTO, len(turns))
	for i, t := range turns {
		out[i] = dto.TurnDTO{Role: t.Role, Content: t.Content}
	}
	return out
}

func messagesToTurns(messages []*entity.ChatMessage) []store.Turn {
	turns := make([]store.Turn, len(messages))
	for i, m := range messages {
		turns[i] = store.Turn{Role: m.Role, Content: m.Content}
	}
	return turns
}

// --- Read operations ---

func (s *chatService) LoadBot(ctx context.Context, botID uuid.UUID) (*dto.BotResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	bot, err := uow.BotRepository().FindOne(ctx, specification.ByID{ID: botID})
	if err != nil {
		return nil, apperror.PersistenceFailed(err)
	}
	if bot == nil {
		return nil, apperror.NotFound("bot not found")
	}
	return toBotResponse(bot), nil
}

func (s *chatService) ListSessions(ctx context.Context, ownerID, botID uuid.UUID) ([]*dto.SessionDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.ByBotID{BotID: botID},
		specification.UserOwnedBy{UserID: ownerID},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.PersistenceFailed(err)
	}
	out := make([]*dto.SessionDTO, len(sessions))
	for i, session := range sessions {
		d := toSessionDTO(session)
		out[i] = &d
	}
	return out, nil
}

// --- SendTurn ---

// resolveState returns the active conversation state for the request,
// hydrating from the database or minting a fresh session as needed.
func (s *chatService) resolveState(ctx context.Context, uow unitofwork.UnitOfWork, ownerID uuid.UUID, req *dto.SendTurnRequest) (*store.ConversationState, error) {
	if req.ChatSessionId != nil {
		state, found, err := s.stateStore.Get(ctx, *req.ChatSessionId)
		if err != nil {
			s.logger.Warn("ChatService", "State store read failed, falling back to database", map[string]interface{}{"error": err.Error()})
		}
		if found {
			if state.OwnerID != ownerID {
				return nil, apperror.NotFound("session not found")
			}
			return state, nil
		}

		// Cold cache: rebuild from the stored transcript.
		session, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: *req.ChatSessionId},
			specification.UserOwnedBy{UserID: ownerID},
		)
		if err != nil {
			return nil, apperror.PersistenceFailed(err)
		}
		if session == nil {
			return nil, apperror.NotFound("session not found")
		}
		messages, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
			specification.OrderBy{Field: "position"},
		)
		if err != nil {
			return nil, apperror.PersistenceFailed(err)
		}
		turns := messagesToTurns(messages)
		return &store.ConversationState{
			SessionID:      session.Id,
			BotID:          session.BotId,
			OwnerID:        ownerID,
			Title:          session.Title,
			Turns:          turns,
			PersistedCount: len(turns),
		}, nil
	}

	// Fresh conversation. The session row is not written until the first
	// turn pair completes.
	count, err := uow.ChatSessionRepository().Count(ctx,
		specification.ByBotID{BotID: req.BotId},
		specification.UserOwnedBy{UserID: ownerID},
	)
	if err != nil {
		return nil, apperror.PersistenceFailed(err)
	}
	return &store.ConversationState{
		SessionID:      uuid.New(),
		BotID:          req.BotId,
		OwnerID:        ownerID,
		Title:          fmt.Sprintf("%s %d", constant.SessionTitlePrefix, count+1),
		Turns:          []store.Turn{},
		PersistedCount: 0,
	}, nil
}

// persistTurnPair flushes every unpersisted turn in one transaction. The
// first completed pair of a fresh session also creates the session row.
func (s *chatService) persistTurnPair(ctx context.Context, uow unitofwork.UnitOfWork, state *store.ConversationState) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if state.PersistedCount == 0 {
		session := &entity.ChatSession{
			Id:        state.SessionID,
			BotId:     state.BotID,
			UserId:    state.OwnerID,
			Title:     state.Title,
			CreatedAt: time.Now(),
		}
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return err
		}
	} else {
		session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: state.SessionID})
		if err != nil {
			return err
		}
		if session != nil {
			now := time.Now()
			session.UpdatedAt = &now
			if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
				return err
			}
		}
	}

	pending := state.Turns[state.PersistedCount:]
	messages := make([]*entity.ChatMessage, len(pending))
	for i, turn := range pending {
		messages[i] = &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: state.SessionID,
			Role:          turn.Role,
			Content:       turn.Content,
			Position:      state.PersistedCount + i,
			CreatedAt:     time.Now(),
		}
	}
	if err := uow.ChatMessageRepository().CreateBulk(ctx, messages); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *chatService) SendTurn(ctx context.Context, ownerID uuid.UUID, req *dto.SendTurnRequest) (*dto.SendTurnResponse, error) {
	text := strings.TrimSpace(req.Chat)
	if text == "" {
		return nil, apperror.ValidationFailed("message must not be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	bot, err := uow.BotRepository().FindOne(ctx, specification.ByID{ID: req.BotId})
	if err != nil {
		return nil, apperror.PersistenceFailed(err)
	}
	if bot == nil {
		return nil, apperror.NotFound("bot not found")
	}

	state, err := s.resolveState(ctx, uow, ownerID, req)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(state.SessionID)
	if !lock.TryLock() {
		return nil, apperror.Conflict("a send is already in progress for this session")
	}
	defer lock.Unlock()

	// The user turn lands in the active state before the gateway is
	// called and is never rolled back.
	userTurn := store.Turn{Role: constant.ChatRoleUser, Content: text}
	state.Turns = append(state.Turns, userTurn)
	if err := s.stateStore.Save(ctx, state); err != nil {
		s.logger.Warn("ChatService", "Failed to save conversation state", map[string]interface{}{"error": err.Error()})
	}

	history := make([]llm.Message, 0, len(state.Turns)+1)
	history = append(history, llm.Message{Role: constant.ChatRoleSystem, Content: bot.SystemInstruction})
	for _, turn := range state.Turns {
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	reply, err := s.llmProvider.Chat(ctx, history)
	if err != nil {
		// No store write. The trailing user turn stays in the active
		// state for a manual retry.
		return nil, apperror.InferenceFailed(err)
	}

	assistantTurn := store.Turn{Role: constant.ChatRoleAssistant, Content: reply}
	state.Turns = append(state.Turns, assistantTurn)

	if err := s.persistTurnPair(ctx, uow, state); err != nil {
		// Keep both turns in the active state; PersistedCount is
		// untouched so the next successful send flushes them too.
		if saveErr := s.stateStore.Save(ctx, state); saveErr != nil {
			s.logger.Warn("ChatService", "Failed to save conversation state", map[string]interface{}{"error": saveErr.Error()})
		}
		return nil, apperror.PersistenceFailed(err)
	}

	state.PersistedCount = len(state.Turns)
	if err := s.stateStore.Save(ctx, state); err != nil {
		s.logger.Warn("ChatService", "Failed to save conversation state", map[string]interface{}{"error": err.Error()})
	}

	if s.eventPublisher != nil {
		event := events.NewChatTurnCompleted(state.SessionID.String(), state.BotID.String(), ownerID.String())
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("ChatService", "Failed to publish CHAT_TURN_COMPLETED event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.SendTurnResponse{
		ChatSessionId: state.SessionID,
		Title:         state.Title,
		UserTurn:      dto.TurnDTO{Role: userTurn.Role, Content: userTurn.Content},
		AssistantTurn: dto.TurnDTO{Role: assistantTurn.Role, Content: assistantTurn.Content},
	}, nil
}

// --- SwitchSession ---

func (s *chatService) SwitchSession(ctx context.Context, ownerID, sessionID uuid.UUID) (*dto.SwitchSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionID},
		specification.UserOwnedBy{UserID: ownerID},
	)
	if err != nil {
		return nil, apperror.PersistenceFailed(err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "position"},
	)
	if err != nil {
		return nil, apperror.PersistenceFailed(err)
	}

	// Replace the active state wholesale with the stored transcript.
	turns := messagesToTurns(messages)
	state := &store.ConversationState{
		SessionID:      session.Id,
		BotID:          session.BotId,
		OwnerID:        ownerID,
		Title:          session.Title,
		Turns:          turns,
		PersistedCount: len(turns),
	}
	if err := s.stateStore.Save(ctx, state); err != nil {
		s.logger.Warn("ChatService", "Failed to save conversation state", map[string]interface{}{"error": err.Error()})
	}

	return &dto.SwitchSessionResponse{
		Session:    toSessionDTO(session),
		Transcript: turnsToDTO(turns),
	}, nil
}
