package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the engine.
// Configuration comes from config.yaml with environment variable
// overrides; secrets (API keys) must only come from the environment.
type Config struct {
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Pipeline PipelineConfig `yaml:"pipeline"`

	// CachePath is where the enrichment cache document is persisted.
	CachePath string `yaml:"cache_path" env:"CACHE_PATH" env-default:"data/schema_cache.json"`

	// UsageLogPath points at the SQL usage log scanned for column
	// evidence. Absence of the file is a handled state, not an error.
	UsageLogPath string `yaml:"usage_log_path" env:"USAGE_LOG_PATH" env-default:"data/usage_logs.sql"`
}

// DatabaseConfig describes the default datasource to profile.
type DatabaseConfig struct {
	// Dialect is one of the registered adapter types: "postgres",
	// "sqlserver", "sqlite".
	Dialect string `yaml:"dialect" env:"DB_DIALECT" env-default:"sqlite"`
	DSN     string `yaml:"dsn" env:"DB_DSN" env-default:"data/demo.db"`
}

// AIConfig holds text-generation model settings.
type AIConfig struct {
	// Provider selects the chat client implementation: "openai" for any
	// OpenAI-compatible endpoint, or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML

	// MaxTurns bounds the enrichment tool-calling conversation.
	MaxTurns int `yaml:"max_turns" env:"AI_MAX_TURNS" env-default:"6"`

	// TurnTimeoutSeconds is the per-model-invocation budget.
	TurnTimeoutSeconds int `yaml:"turn_timeout_seconds" env:"AI_TURN_TIMEOUT_SECONDS" env-default:"120"`
}

// PipelineConfig holds pipeline execution settings.
type PipelineConfig struct {
	// MaxRetries bounds enrich/validate cycles per run.
	MaxRetries int `yaml:"max_retries" env:"PIPELINE_MAX_RETRIES" env-default:"3"`

	// ProfileWorkers caps concurrent table extraction/profiling workers.
	ProfileWorkers int `yaml:"profile_workers" env:"PIPELINE_PROFILE_WORKERS" env-default:"8"`

	// StatementTimeoutSeconds is the per-SQL-statement budget.
	StatementTimeoutSeconds int `yaml:"statement_timeout_seconds" env:"PIPELINE_STATEMENT_TIMEOUT_SECONDS" env-default:"30"`
}

// TurnTimeout returns the per-turn model invocation budget.
func (c *AIConfig) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSeconds) * time.Second
}

// StatementTimeout returns the per-statement SQL budget.
func (c *PipelineConfig) StatementTimeout() time.Duration {
	return time.Duration(c.StatementTimeoutSeconds) * time.Second
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config file is fine: everything then comes from
// the environment and defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("pipeline.max_retries must be >= 0")
	}
	if c.Pipeline.ProfileWorkers < 1 {
		return fmt.Errorf("pipeline.profile_workers must be >= 1")
	}
	if c.AI.MaxTurns < 1 {
		return fmt.Errorf("ai.max_turns must be >= 1")
	}
	return nil
}
