package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatbot-creator-be/internal/constant"
	"chatbot-creator-be/internal/dto"
	"chatbot-creator-be/internal/entity"
	"chatbot-creator-be/internal/pkg/apperror"
	"chatbot-creator-be/internal/pkg/logger"
	"chatbot-creator-be/internal/repository/memory"
	"chatbot-creator-be/internal/repository/specification"
	"chatbot-creator-be/internal/repository/unitofwork"
	"chatbot-creator-be/pkg/blob"
	"chatbot-creator-be/pkg/events"
	"chatbot-creator-be/pkg/llm"
	pktNats "chatbot-creator-be/pkg/nats"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type IBotService interface {
	CreateDraft(ctx context.Context, ownerID uuid.UUID) (*dto.DraftResponse, error)
	GetDraft(ctx context.Context, ownerID, draftID uuid.UUID) (*dto.DraftResponse, error)
	UpdateDraft(ctx context.Context, ownerID, draftID uuid.UUID, req *dto.UpdateDraftRequest) (*dto.DraftResponse, error)
	Next(ctx context.Context, ownerID, draftID uuid.UUID) (*dto.DraftResponse, error)
	Back(ctx context.Context, ownerID, draftID uuid.UUID) (*dto.DraftResponse, error)
	AttachFiles(ctx context.Context, ownerID, draftID uuid.UUID, files []entity.DraftFile) (*dto.DraftResponse, error)
	Submit(ctx context.Context, ownerID, draftID uuid.UUID) (*dto.BotResponse, error)
	ListBots(ctx context.Context, ownerID uuid.UUID) ([]*dto.BotResponse, error)
	GetBot(ctx context.Context, botID uuid.UUID) (*dto.BotResponse, error)
	UpdateTheme(ctx context.Context, ownerID, botID uuid.UUID, req *dto.UpdateThemeRequest) (*dto.BotResponse, error)
}

type botService struct {
	draftRepo      *memory.DraftRepository
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	blobStorage    blob.Storage
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewBotService(
	draftRepo *memory.DraftRepository,
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	blobStorage blob.Storage,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IBotService {
	return &botService{
		draftRepo:      draftRepo,
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		blobStorage:    blobStorage,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// --- Draft helpers ---

func (s *botService) getOwnedDraft(ownerID, draftID uuid.UUID) (*entity.BotDraft, error) {
	draft, found := s.draftRepo.Get(draftID)
	if !found {
		return nil, apperror.NotFound("draft not found")
	}
	if draft.OwnerId != ownerID {
		return nil, apperror.Unauthorized("draft belongs to another user")
	}
	return draft, nil
}

func toDraftResponse(draft *entity.BotDraft) *dto.DraftResponse {
	fileNames := make([]string, len(draft.Files))
	for i, f := range draft.Files {
		fileNames[i] = f.Name
	}
	return &dto.DraftResponse{
		Id:                draft.Id,
		Step:              draft.Step,
		Name:              draft.Name,
		Description:       draft.Description,
		Personality:       draft.Personality,
		KnowledgeBaseMode: string(draft.KnowledgeBaseMode),
		FileNames:         fileNames,
	}
}

func toBotResponse(bot *entity.Bot) *dto.BotResponse {
	return &dto.BotResponse{
		Id:                bot.Id,
		OwnerId:           bot.OwnerId,
		Name:              bot.Name,
		Description:       bot.Description,
		Personality:       bot.Personality,
		SystemInstruction: bot.SystemInstruction,
		KnowledgeBaseMode: string(bot.KnowledgeBaseMode),
		FileURLs:          bot.FileURLs,
		AvatarURL:         bot.AvatarURL,
		Theme: dto.ThemeDTO{
			PrimaryColor:   bot.Theme.PrimaryColor,
			FontSizePx:     bot.Theme.FontSizePx,
			BorderRadiusPx: bot.Theme.BorderRadiusPx,
		},
		CreatedAt: bot.CreatedAt,
	}
}

// --- Wizard operations ---

func (s *botService) CreateDraft(ctx context.Context, ownerID uuid.UUID) (*dto.DraftResponse, error) {
	draft := &entity.BotDraft{
		Id:                uuid.New(),
		OwnerId:           ownerID,
		Step:              entity.DraftStepBasicInfo,
		KnowledgeBaseMode: entity.KnowledgeBaseModeDefault,
		CreatedAt:         time.Now(),
	}
	s.draftRepo.Save(draft)
	return toDraftResponse(draft), nil
}

func (s *botService) GetDraft(ctx context.Context, ownerID, draftID uuid.UUID) (*dto.DraftResponse, error) {
	draft, err := s.getOwnedDraft(ownerID, draftID)
	if err != nil {
		return nil, err
	}
	return toDraftResponse(draft), nil
}

// UpdateDraft merges the supplied fields. There is no per-step gate; the
// wizard validates once, at submit.
func (s *botService) UpdateDraft(ctx context.Context, ownerID, draftID uuid.UUID, req *dto.UpdateDraftRequest) (*dto.DraftResponse, error) {
	draft, err := s.getOwnedDraft(ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		draft.Name = *req.Name
	}
	if req.Description != nil {
		draft.Description = *req.Description
	}
	if req.Personality != nil {
		draft.Personality = *req.Personality
	}
	if req.KnowledgeBaseMode != nil {
		draft.KnowledgeBaseMode = entity.KnowledgeBaseMode(*req.KnowledgeBaseMode)
	}
	s.draftRepo.Save(draft)
	return toDraftResponse(draft), nil
}

// Next and Back are pure index movement, clamped to the wizard range.
// Navigating past either end is a no-op, not an error.

func (s *botService) Next(ctx context.Context, ownerID, draftID uuid.UUID) (*dto.DraftResponse, error) {
	draft, err := s.getOwnedDraft(ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Step < entity.DraftStepReview {
		draft.Step++
		s.draftRepo.Save(draft)
	}
	return toDraftResponse(draft), nil
}

func (s *botService) Back(ctx context.Context, ownerID, draftID uuid.UUID) (*dto.DraftResponse, error) {
	draft, err := s.getOwnedDraft(ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Step > entity.DraftStepBasicInfo {
		draft.Step--
		s.draftRepo.Save(draft)
	}
	return toDraftResponse(draft), nil
}

func (s *botService) AttachFiles(ctx context.Context, ownerID, draftID uuid.UUID, files []entity.DraftFile) (*dto.DraftResponse, error) {
	draft, err := s.getOwnedDraft(ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperror.ValidationFailed("no files provided")
	}

	// Appended as-is; duplicate names resolve at upload time where the
	// blob key collides and the last write wins.
	draft.Files = append(draft.Files, files...)

	s.draftRepo.Save(draft)
	return toDraftResponse(draft), nil
}

// --- Submit ---

func (s *botService) knowledgeBaseSummary(draft *entity.BotDraft) string {
	if draft.KnowledgeBaseMode == entity.KnowledgeBaseModeDefault || len(draft.Files) == 0 {
		return "default"
	}
	names := make([]string, len(draft.Files))
	for i, f := range draft.Files {
		names[i] = f.Name
	}
	return "custom documents: " + strings.Join(names, ", ")
}

func (s *botService) uploadDraftFiles(ctx context.Context, draft *entity.BotDraft) ([]string, error) {
	urls := make([]string, len(draft.Files))

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range draft.Files {
		g.Go(func() error {
			key := fmt.Sprintf("chatbots/%s/%s", draft.OwnerId, file.Name)
			url, err := s.blobStorage.Put(gctx, key, file.Content, "application/octet-stream")
			if err != nil {
				return fmt.Errorf("upload %s: %w", file.Name, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (s *botService) Submit(ctx context.Context, ownerID, draftID uuid.UUID) (*dto.BotResponse, error) {
	draft, err := s.getOwnedDraft(ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(draft.Name) == "" {
		return nil, apperror.ValidationFailed("name is required")
	}

	// 1. Upload knowledge base files. If anything after this fails the
	// blobs are orphaned; uploads are not transactional.
	fileURLs, err := s.uploadDraftFiles(ctx, draft)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindPersistenceFailed, "failed to upload knowledge base files", err)
	}

	// 2. Derive the system instruction from the draft.
	instruction, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: constant.ChatRoleSystem, Content: constant.InstructionGeneratorSystemPrompt},
		{Role: constant.ChatRoleUser, Content: fmt.Sprintf(
			constant.InstructionGeneratorUserPromptTemplate,
			draft.Name, draft.Description, draft.Personality, s.knowledgeBaseSummary(draft),
		)},
	})
	if err != nil {
		return nil, apperror.InferenceFailed(err)
	}

	// 3. Persist the bot as a single row.
	bot := &entity.Bot{
		Id:                uuid.New(),
		OwnerId:           ownerID,
		Name:              draft.Name,
		Description:       draft.Description,
		Personality:       draft.Personality,
		SystemInstruction: instruction,
		KnowledgeBaseMode: draft.KnowledgeBaseMode,
		FileURLs:          fileURLs,
		AvatarURL:         constant.PlaceholderAvatarURL,
		Theme: entity.Theme{
			PrimaryColor:   constant.DefaultThemePrimaryColor,
			FontSizePx:     constant.DefaultThemeFontSizePx,
			BorderRadiusPx: constant.DefaultThemeBorderRadiusPx,
		},
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.BotRepository().Create(ctx, bot); err != nil {
		return nil, apperror.PersistenceFailed(err)
	}

	s.draftRepo.Delete(draft.Id)

	if s.eventPublisher != nil {
		event := events.NewBotCreated(bot.Id.String(), bot.OwnerId.String(), bot.Name)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("BotService", "Failed to publish BOT_CREATED event", map[string]interface{}{"error": err.Error()})
		}
	}

	s.logger.Info("BotService", "Bot created", map[string]interface{}{
		"bot_id":   bot.Id.String(),
		"owner_id": bot.OwnerId.String(),
	})

	return toBotResponse(bot), nil
}

// --- Bot queries ---

func (s *botService) ListBots(ctx context.Context, ownerID uuid.UUID) ([]*dto.BotResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	bots, err := uow.BotRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: ownerID},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.PersistenceFailed(err)
	}
	responses := make([]*dto.BotResponse, len(bots))
	for i, bot := range bots {
		responses[i] = toBotResponse(bot)
	}
	return responses, nil
}

func (s *botService) GetBot(ctx context.Context, botID uuid.UUID) (*dto.BotResponse, error) {
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

func (s *botService) UpdateTheme(ctx context.Context, ownerID, botID uuid.UUID, req *dto.UpdateThemeRequest) (*dto.BotResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	bot, err := uow.BotRepository().FindOne(ctx, specification.ByID{ID: botID})
	if err != nil {
		return nil, apperror.PersistenceFailed(err)
	}
	if bot == nil {
		return nil, apperror.NotFound("bot not found")
	}
	if bot.OwnerId != ownerID {
		return nil, apperror.Unauthorized("only the owner can change the theme")
	}

	bot.Theme = entity.Theme{
		PrimaryColor:   req.PrimaryColor,
		FontSizePx:     req.FontSizePx,
		BorderRadiusPx: req.BorderRadiusPx,
	}
	now := time.Now()
	bot.UpdatedAt = &now

	if err := uow.BotRepository().Update(ctx, bot); err != nil {
		return nil, apperror.PersistenceFailed(err)
	}
	return toBotResponse(bot), nil
}
