package bootstrap

import (
	"context"
	"log"

	"chatbot-creator-be/internal/config"
	"chatbot-creator-be/internal/controller"
	"chatbot-creator-be/internal/pkg/logger"
	"chatbot-creator-be/internal/pkg/mailer"
	"chatbot-creator-be/internal/repository/memory"
	"chatbot-creator-be/internal/repository/redisstore"
	"chatbot-creator-be/internal/repository/unitofwork"
	"chatbot-creator-be/internal/service"
	"chatbot-creator-be/pkg/blob"
	"chatbot-creator-be/pkg/llm/factory"
	pktNats "chatbot-creator-be/pkg/nats"
	"chatbot-creator-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	BotController  controller.IBotController
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Facades shared with main
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis-backed conversation state, with an in-process fallback when
	// Redis is unreachable.
	var stateStore store.ConversationStateStore
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Conversation state held in process memory", err)
		stateStore = memory.NewConversationStateRepository()
	} else {
		stateStore = redisstore.NewConversationStateRepository(rdb)
	}

	// 3. Providers
	llmProvider, err := factory.NewLLMProvider(cfg.Ai)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	blobStorage, err := blob.NewStorage(cfg.Storage, cfg.App.BaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize blob storage: %v", err)
	}
	log.Printf("[INFO] Using blob storage: %s", cfg.Storage.Provider)

	// In-memory draft storage for the authoring wizard
	draftRepo := memory.NewDraftRepository()

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.WelcomeEmailTopic)
	consumerService := service.NewConsumerService(pubSub, cfg.App.WelcomeEmailTopic, emailService)

	authService := service.NewAuthService(uowFactory, publisherService, natsPub, sysLogger)
	botService := service.NewBotService(draftRepo, uowFactory, llmProvider, blobStorage, natsPub, sysLogger)
	chatService := service.NewChatService(uowFactory, stateStore, llmProvider, natsPub, sysLogger)

	// 5. Controllers
	return &Container{
		AuthController:  controller.NewAuthController(authService),
		BotController:   controller.NewBotController(botService),
		ChatController:  controller.NewChatController(chatService),
		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
