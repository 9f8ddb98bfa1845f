package service

import (
	"context"
	"sort"
	"sync"

	"chatbot-creator-be/internal/entity"
	"chatbot-creator-be/internal/pkg/logger"
	"chatbot-creator-be/internal/repository/contract"
	"chatbot-creator-be/internal/repository/specification"
	"chatbot-creator-be/internal/repository/unitofwork"
	"chatbot-creator-be/pkg/llm"

	"github.com/google/uuid"
)

// --- In-memory database shared by the fake repositories ---

type fakeDB struct {
	mu sync.Mutex

	users         []*entity.User
	refreshTokens []*entity.UserRefreshToken
	bots          []*entity.Bot
	sessions      []*entity.ChatSession
	messages      []*entity.ChatMessage

	// Writes counts every row-changing call; Commits counts completed
	// transactions.
	Writes  int
	Commits int

	FailCommit error

	snapshot *fakeDBSnapshot
}

type fakeDBSnapshot struct {
	sessions []*entity.ChatSession
	messages []*entity.ChatMessage
	bots     []*entity.Bot
}

func newFakeDB() *fakeDB {
	return &fakeDB{}
}

// --- Unit of work ---

type fakeUnitOfWork struct {
	db *fakeDB
}

type fakeFactory struct {
	db *fakeDB
}

func newFakeFactory(db *fakeDB) unitofwork.RepositoryFactory {
	return &fakeFactory{db: db}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{db: f.db}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	u.db.snapshot = &fakeDBSnapshot{
		sessions: append([]*entity.ChatSession(nil), u.db.sessions...),
		messages: append([]*entity.ChatMessage(nil), u.db.messages...),
		bots:     append([]*entity.Bot(nil), u.db.bots...),
	}
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	if u.db.FailCommit != nil {
		err := u.db.FailCommit
		u.restoreLocked()
		return err
	}
	u.db.snapshot = nil
	u.db.Commits++
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	u.restoreLocked()
	return nil
}

func (u *fakeUnitOfWork) restoreLocked() {
	if u.db.snapshot == nil {
		return
	}
	u.db.sessions = u.db.snapshot.sessions
	u.db.messages = u.db.snapshot.messages
	u.db.bots = u.db.snapshot.bots
	u.db.snapshot = nil
}

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return &fakeUserRepository{db: u.db}
}

func (u *fakeUnitOfWork) BotRepository() contract.BotRepository {
	return &fakeBotRepository{db: u.db}
}

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeChatSessionRepository{db: u.db}
}

func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeChatMessageRepository{db: u.db}
}

// --- User repository ---

type fakeUserRepository struct {
	db *fakeDB
}

func (r *fakeUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.users = append(r.db.users, user)
	r.db.Writes++
	return nil
}

func (r *fakeUserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if matchUser(u, specs) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.refreshTokens = append(r.db.refreshTokens, token)
	r.db.Writes++
	return nil
}

func (r *fakeUserRepository) FindRefreshToken(ctx context.Context, specs ...specification.Specification) (*entity.UserRefreshToken, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, tok := range r.db.refreshTokens {
		if matchRefreshToken(tok, specs) {
			return tok, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, tok := range r.db.refreshTokens {
		if tok.Id == id {
			tok.Revoked = true
			r.db.Writes++
		}
	}
	return nil
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if u.Id != v.ID {
				return false
			}
		case specification.ByEmail:
			if u.Email != v.Email {
				return false
			}
		}
	}
	return true
}

func matchRefreshToken(tok *entity.UserRefreshToken, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if tok.Id != v.ID {
				return false
			}
		case specification.ByTokenHash:
			if tok.TokenHash != v.Hash {
				return false
			}
		case specification.UserOwnedBy:
			if tok.UserId != v.UserID {
				return false
			}
		}
	}
	return true
}

// --- Bot repository ---

type fakeBotRepository struct {
	db *fakeDB
}

func (r *fakeBotRepository) Create(ctx context.Context, bot *entity.Bot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.bots = append(r.db.bots, bot)
	r.db.Writes++
	return nil
}

func (r *fakeBotRepository) Update(ctx context.Context, bot *entity.Bot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, b := range r.db.bots {
		if b.Id == bot.Id {
			r.db.bots[i] = bot
		}
	}
	r.db.Writes++
	return nil
}

func (r *fakeBotRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, b := range r.db.bots {
		if matchBot(b, specs) {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBotRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Bot
	for _, b := range r.db.bots {
		if matchBot(b, specs) {
			out = append(out, b)
		}
	}
	if desc, ok := orderDesc(specs); ok {
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

func matchBot(b *entity.Bot, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if b.Id != v.ID {
				return false
			}
		case specification.OwnedBy:
			if b.OwnerId != v.OwnerID {
				return false
			}
		}
	}
	return true
}

// --- Chat session repository ---

type fakeChatSessionRepository struct {
	db *fakeDB
}

func (r *fakeChatSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.sessions = append(r.db.sessions, session)
	r.db.Writes++
	return nil
}

func (r *fakeChatSessionRepository) Update(ctx context.Context, session *entity.ChatSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, s := range r.db.sessions {
		if s.Id == session.Id {
			r.db.sessions[i] = session
		}
	}
	r.db.Writes++
	return nil
}

func (r *fakeChatSessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.sessions {
		if matchSession(s, specs) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeChatSessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.ChatSession
	for _, s := range r.db.sessions {
		if matchSession(s, specs) {
			out = append(out, s)
		}
	}
	if desc, ok := orderDesc(specs); ok {
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

func (r *fakeChatSessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var count int64
	for _, s := range r.db.sessions {
		if matchSession(s, specs) {
			count++
		}
	}
	return count, nil
}

func matchSession(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.ByBotID:
			if s.BotId != v.BotID {
				return false
			}
		case specification.UserOwnedBy:
			if s.UserId != v.UserID {
				return false
			}
		}
	}
	return true
}

// --- Chat message repository ---

type fakeChatMessageRepository struct {
	db *fakeDB
}

func (r *fakeChatMessageRepository) CreateBulk(ctx context.Context, messages []*entity.ChatMessage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.messages = append(r.db.messages, messages...)
	r.db.Writes += len(messages)
	return nil
}

func (r *fakeChatMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range r.db.messages {
		if matchMessage(m, specs) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func matchMessage(m *entity.ChatMessage, specs []specification.Specification) bool {
	for _, sp := range specs {
		if v, ok := sp.(specification.ByChatSessionID); ok {
			if m.ChatSessionId != v.ChatSessionID {
				return false
			}
		}
	}
	return true
}

func orderDesc(specs []specification.Specification) (bool, bool) {
	for _, sp := range specs {
		if v, ok := sp.(specification.OrderBy); ok {
			return v.Desc, true
		}
	}
	return false, false
}

// --- LLM fake ---

type fakeLLM struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	History [][]llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.History = append(f.History, history)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// --- Blob fake ---

type fakeBlob struct {
	mu   sync.Mutex
	Err  error
	Puts map[string][]byte
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{Puts: map[string][]byte{}}
}

func (f *fakeBlob) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Puts[key] = data
	return "https://blobs.test/" + key, nil
}

// --- Logger fake ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

var _ logger.ILogger = nopLogger{}
