package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// S3-backed content store; filesystem store is used when unset.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"lore-content"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Embedding endpoint (OpenAI-compatible); the semantic index computes
	// embeddings internally with this.
	EmbeddingAPIKey  string `envconfig:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL string `envconfig:"EMBEDDING_BASE_URL" default:"https://api.siliconflow.cn/v1"`
	EmbeddingModel   string `envconfig:"EMBEDDING_MODEL" default:"BAAI/bge-m3"`

	// Completion endpoint (OpenAI-compatible).
	LLMAPIKey      string  `envconfig:"LLM_API_KEY"`
	LLMBaseURL     string  `envconfig:"LLM_BASE_URL" default:"https://api.deepseek.com"`
	LLMModel       string  `envconfig:"LLM_MODEL" default:"deepseek-chat"`
	LLMProvider    string  `envconfig:"LLM_PROVIDER" default:"deepseek"`
	LLMMaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"2048"`
	LLMTemperature float32 `envconfig:"LLM_TEMPERATURE" default:"0.7"`

	// Chunking defaults used by the record manager.
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"100"`
	UpsertBatch  int `envconfig:"UPSERT_BATCH" default:"10"`

	// RAG tiering and web fallback policy.
	TopK               int     `envconfig:"RAG_TOP_K" default:"5"`
	HighThreshold      float64 `envconfig:"RAG_HIGH_THRESHOLD" default:"0.6"`
	WebFallbackEnabled bool    `envconfig:"RAG_WEB_FALLBACK" default:"true"`
	MinLocalResults    int     `envconfig:"RAG_MIN_LOCAL_RESULTS" default:"1"`
	WebResults         int     `envconfig:"RAG_WEB_RESULTS" default:"3"`
	AIAnswerEnabled    bool    `envconfig:"RAG_AI_ANSWER" default:"true"`
	AllowLLMKnowledge  bool    `envconfig:"RAG_ALLOW_LLM_KNOWLEDGE" default:"true"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("LORE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	// API keys resolve through the secret file first, env second.
	if cfg.EmbeddingAPIKey == "" {
		cfg.EmbeddingAPIKey, _ = ResolveSecret(
			FileResolver(cfg.DataDir, "embedding_api_key"),
			EnvResolver("EMBEDDING_API_KEY"),
		)
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey, _ = ResolveSecret(
			FileResolver(cfg.DataDir, "llm_api_key"),
			EnvResolver("LLM_API_KEY"),
		)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasLLM() bool {
	return c.LLMAPIKey != ""
}
