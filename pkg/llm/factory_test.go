package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClient_NilLogger(t *testing.T) {
	client, err := NewOpenAIClient(&OpenAIConfig{Model: "gpt-4o-mini"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", client.GetModel())
}

func TestNewOpenAIClient_RequiresModel(t *testing.T) {
	_, err := NewOpenAIClient(&OpenAIConfig{}, nil)
	assert.Error(t, err)
}

func TestNewAnthropicClient_NilLogger(t *testing.T) {
	client, err := NewAnthropicClient(&AnthropicConfig{Model: "claude-sonnet-4-0", APIKey: "key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-0", client.GetModel())
}

func TestNewAnthropicClient_RequiresAPIKey(t *testing.T) {
	_, err := NewAnthropicClient(&AnthropicConfig{Model: "claude-sonnet-4-0"}, nil)
	assert.Error(t, err)
}

func TestNewChatClient_SelectsProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{"openai", "openai", false},
		{"default empty", "", false},
		{"anthropic", "anthropic", false},
		{"unknown", "cohere", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewChatClient(&FactoryConfig{
				Provider: tt.provider,
				Model:    "m",
				APIKey:   "key",
			}, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "m", client.GetModel())
		})
	}
}
