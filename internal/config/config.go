package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JWTSecret string
}

type APIKeys struct {
	GoogleGemini string
	IngestTopic  string // Embedding pipeline topic
}

type AIConfig struct {
	EmbeddingProvider      string // "gemini" or "ollama"
	EmbeddingModel         string
	FallbackEmbeddingModel string // one-shot fallback on primary failure
	OllamaBaseURL          string
	OllamaEmbeddingModel   string
	LLMProvider            string // "gemini" or "ollama"
	LLMModel               string
}

// RagConfig carries the tunable retrieval and memory parameters.
// Thresholds differ per use case: interactive chat starts at 0.3 and
// falls back to the exploratory threshold when nothing matches;
// quiz-content gathering casts the widest net for comprehensive questions.
type RagConfig struct {
	ChunkSize         int
	ChunkOverlap      int
	TopK              int
	ChatThreshold     float64
	ExploreThreshold  float64
	QuizThreshold     float64
	HistoryWindow     int
	SummarizeInterval int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8080"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			IngestTopic:  getEnv("EMBED_MATERIAL_TOPIC_NAME", "EMBED_COURSE_MATERIAL"),
		},
		Ai: AIConfig{
			EmbeddingProvider:      getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:         getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			FallbackEmbeddingModel: getEnv("EMBEDDING_FALLBACK_MODEL", "embedding-001"),
			OllamaBaseURL:          getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel:   getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:            getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:               getEnv("LLM_MODEL", "gemini-2.5-flash"),
		},
		Rag: RagConfig{
			ChunkSize:         getEnvAsInt("RAG_CHUNK_SIZE", 1000),
			ChunkOverlap:      getEnvAsInt("RAG_CHUNK_OVERLAP", 100),
			TopK:              getEnvAsInt("RAG_TOP_K", 5),
			ChatThreshold:     getEnvAsFloat("RAG_CHAT_THRESHOLD", 0.3),
			ExploreThreshold:  getEnvAsFloat("RAG_EXPLORE_THRESHOLD", 0.2),
			QuizThreshold:     getEnvAsFloat("RAG_QUIZ_THRESHOLD", 0.2),
			HistoryWindow:     getEnvAsInt("RAG_HISTORY_WINDOW", 6),
			SummarizeInterval: getEnvAsInt("RAG_SUMMARIZE_INTERVAL", 10),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
