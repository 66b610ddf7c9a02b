package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// FactoryConfig selects and configures a chat completion provider.
type FactoryConfig struct {
	Provider string // "openai" or "anthropic"
	Endpoint string // optional, OpenAI-compatible base URL
	Model    string
	APIKey   string
}

// NewChatClient creates a chat client for the configured provider.
func NewChatClient(cfg *FactoryConfig, logger *zap.Logger) (ChatClient, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(&OpenAIConfig{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
		}, logger)
	case "anthropic":
		return NewAnthropicClient(&AnthropicConfig{
			Model:  cfg.Model,
			APIKey: cfg.APIKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown chat provider: %q", cfg.Provider)
	}
}
