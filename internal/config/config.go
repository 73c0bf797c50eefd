package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI     string
	DBName       string
	JWTSecret    string
	JWTExpiresIn string
	Port         string
	GinMode      string
	CORSOrigins  []string
	BcryptCost   int

	// LLM / embeddings (Google Generative AI)
	GeminiAPIKey          string
	GeminiModel           string
	GeminiTier            string
	EmbeddingsProvider    string
	GoogleEmbeddingsModel string

	// Illustrations (OpenAI DALL-E)
	OpenAIAPIKey     string
	OpenAIImageModel string

	// Speech-to-text (AssemblyAI)
	AssemblyAIAPIKey  string
	AssemblyAIBaseURL string

	// Chunking / retrieval
	MaxChunkSize        int
	ChunkOverlap        int
	RetrievalTopK       int
	VectorSearchEnabled bool
	VectorIndexName     string
	VectorDimensions    int

	// Blob storage
	FileStorageDir string
	PublicBaseURL  string
	MaxFileSize    int64

	// Redis (asynq, rate limiting)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// API rate limiting
	RateLimitReqs   int
	RateLimitWindow int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017/storyteller"),
		DBName:       getEnv("DB_NAME", "storyteller"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "24h"),
		Port:         getEnv("PORT", "8080"),
		GinMode:      getEnv("GIN_MODE", "debug"),
		CORSOrigins:  strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		BcryptCost:   getEnvInt("BCRYPT_COST", 12),

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:            getEnv("GEMINI_TIER", "free"),
		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", "google"),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),

		AssemblyAIAPIKey:  getEnv("ASSEMBLYAI_API_KEY", ""),
		AssemblyAIBaseURL: getEnv("ASSEMBLYAI_BASE_URL", "https://api.assemblyai.com/v2"),

		MaxChunkSize:        getEnvInt("MAX_CHUNK_SIZE", 1000),
		ChunkOverlap:        getEnvInt("CHUNK_OVERLAP", 200),
		RetrievalTopK:       getEnvInt("RETRIEVAL_TOP_K", 3),
		VectorSearchEnabled: getEnvBool("MONGODB_VECTOR_ENABLED", false),
		VectorIndexName:     getEnv("MONGODB_VECTOR_INDEX", "library_chunks_vector"),
		VectorDimensions:    getEnvInt("VECTOR_DIM", 768),

		FileStorageDir: getEnv("FILE_STORAGE_DIR", "./storage"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 10485760), // 10MB upload limit

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required - set it in .env file")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
