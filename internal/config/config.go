package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/brightpath-ai/tutorflow/internal/domain"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"tutorflow-curriculum"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	SentryDSN         string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment string  `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
	SentrySampleRate  float64 `envconfig:"SENTRY_SAMPLE_RATE" default:"1.0"`

	// Static API key accepted by the HTTP layer. Empty disables auth,
	// which is only sensible for local development.
	APIKey string `envconfig:"API_KEY"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1200"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	RetrievalK      int     `envconfig:"RETRIEVAL_K" default:"5"`
	DiversityLambda float64 `envconfig:"DIVERSITY_LAMBDA" default:"0.7"`
	MinSimilarity   float64 `envconfig:"MIN_SIMILARITY" default:"0"`

	StageMaxAttempts int           `envconfig:"STAGE_MAX_ATTEMPTS" default:"3"`
	StageTimeout     time.Duration `envconfig:"STAGE_TIMEOUT" default:"45s"`

	RebuildPollInterval time.Duration `envconfig:"REBUILD_POLL_INTERVAL" default:"2s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("TUTORFLOW", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Validate rejects option combinations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return domain.ErrInvalidChunkSize
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return domain.ErrOverlapTooLarge
	}
	if c.RetrievalK <= 0 {
		return domain.ErrInvalidTopK
	}
	if c.DiversityLambda < 0 || c.DiversityLambda > 1 {
		return domain.ErrInvalidLambda
	}
	if c.StageMaxAttempts <= 0 {
		return domain.NewDomainError(domain.ErrCodeConfig, "stage max attempts must be positive")
	}
	if c.StageTimeout <= 0 {
		return domain.NewDomainError(domain.ErrCodeConfig, "stage timeout must be positive")
	}
	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
