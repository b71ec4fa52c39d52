package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/parv18050212/ai-tutor/internal/config"
	"github.com/parv18050212/ai-tutor/internal/controller"
	"github.com/parv18050212/ai-tutor/internal/pkg/logger"
	"github.com/parv18050212/ai-tutor/internal/repository/unitofwork"
	"github.com/parv18050212/ai-tutor/internal/service"
	"github.com/parv18050212/ai-tutor/internal/websocket"
	"github.com/parv18050212/ai-tutor/pkg/embedding"
	"github.com/parv18050212/ai-tutor/pkg/llm/factory"
	pktNats "github.com/parv18050212/ai-tutor/pkg/nats"
	"github.com/parv18050212/ai-tutor/pkg/rag/history"
	"github.com/parv18050212/ai-tutor/pkg/rag/retriever"
	"github.com/parv18050212/ai-tutor/pkg/rag/session"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	MaterialController controller.IMaterialController
	QuizController     controller.IQuizController

	// WebSocket relay
	ChatRelay *websocket.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(
			cfg.Keys.GoogleGemini,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.FallbackEmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s, fallback %s)", cfg.Ai.EmbeddingModel, cfg.Ai.FallbackEmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Keys.GoogleGemini,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	sessionCache := cache.New(10*time.Minute, 15*time.Minute)

	// 5. RAG Components
	chunkRepo := uowFactory.NewUnitOfWork(context.Background()).CourseChunkRepository()
	ragRetriever := retriever.New(embeddingProvider, chunkRepo)
	sessionManager := session.NewManager(uowFactory, rdb, sessionCache, sysLogger)
	historyEngine := history.NewEngine(uowFactory, llmProvider, sysLogger, cfg.Rag.HistoryWindow, cfg.Rag.SummarizeInterval)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
	)

	tutorService := service.NewTutorService(
		uowFactory,
		sessionManager,
		ragRetriever,
		historyEngine,
		llmProvider,
		natsPub,
		sysLogger,
		cfg.Rag,
	)
	materialService := service.NewMaterialService(uowFactory, publisherService)
	quizService := service.NewQuizService(
		uowFactory,
		ragRetriever,
		llmProvider,
		natsPub,
		sysLogger,
		cfg.Rag,
	)

	return &Container{
		ChatController:     controller.NewChatController(tutorService),
		MaterialController: controller.NewMaterialController(materialService),
		QuizController:     controller.NewQuizController(quizService),
		ChatRelay:          websocket.NewHandler(tutorService, sysLogger),
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}
