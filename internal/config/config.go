package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings. It is loaded once at startup and passed
// to the components that need it; nothing reads the environment afterwards.
type Config struct {
	HTTPPort string

	// LLM provider settings
	LLMProvider    string
	GoogleAPIKey   string
	GeminiModel    string
	EmbeddingModel string

	// Vector index settings
	QdrantHost          string
	QdrantPort          int
	QdrantCollection    string
	EmbeddingVectorSize uint64

	// Retrieval settings
	TopKResults int

	// Local history store
	DatabaseURL string

	// Ingestion source
	SchemaGuidePath string

	// Admin API. Empty secret disables the admin routes.
	JWTSecret string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8001"),
		LLMProvider:         getEnv("LLM_PROVIDER", "gemini"),
		GoogleAPIKey:        getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		QdrantHost:          getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:          getEnvAsInt("QDRANT_PORT", 6334),
		QdrantCollection:    getEnv("QDRANT_COLLECTION_NAME", "schema_guide"),
		EmbeddingVectorSize: uint64(getEnvAsInt("EMBEDDING_VECTOR_SIZE", 768)),
		TopKResults:         getEnvAsInt("TOP_K_RESULTS", 3),
		DatabaseURL:         getEnv("DATABASE_URL", "hcman_ai.db"),
		SchemaGuidePath:     getEnv("SCHEMA_GUIDE_PATH", "schema_guide.txt"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
	}

	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required")
	}
	if cfg.TopKResults <= 0 {
		return nil, fmt.Errorf("TOP_K_RESULTS must be positive, got %d", cfg.TopKResults)
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
