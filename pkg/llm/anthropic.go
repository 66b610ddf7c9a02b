package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

const anthropicMaxTokens = 4096

// AnthropicClient provides chat completions against the Anthropic API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// AnthropicConfig holds configuration for creating an Anthropic client.
type AnthropicConfig struct {
	Model  string
	APIKey string
}

// NewAnthropicClient creates a new Anthropic chat client.
func NewAnthropicClient(cfg *AnthropicConfig, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey),
		model:  cfg.Model,
		logger: logger.Named("anthropic"),
	}, nil
}

// Chat performs a single chat completion turn.
func (c *AnthropicClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	messages := c.buildMessages(req.Messages)
	tools := c.buildTools(req.Tools)

	c.logger.Debug("chat request",
		zap.String("model", c.model),
		zap.Int("message_count", len(messages)),
		zap.Int("tool_count", len(tools)))

	start := time.Now()
	temperature := float32(req.Temperature)

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		MaxTokens:   anthropicMaxTokens,
		System:      req.SystemPrompt,
		Messages:    messages,
		Tools:       tools,
		Temperature: &temperature,
	})
	if err != nil {
		c.logger.Error("chat request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, ClassifyError(err)
	}

	out := &ChatResponse{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
	}
	for _, block := range resp.Content {
		switch block.Type {
		case anthropic.MessagesContentTypeText:
			if block.Text != nil {
				if out.Content != "" {
					out.Content += "\n"
				}
				out.Content += *block.Text
			}
		case anthropic.MessagesContentTypeToolUse:
			if block.MessageContentToolUse != nil {
				out.ToolCalls = append(out.ToolCalls, ToolCall{
					ID:        block.MessageContentToolUse.ID,
					Name:      block.MessageContentToolUse.Name,
					Arguments: string(block.MessageContentToolUse.Input),
				})
			}
		}
	}

	c.logger.Info("chat request completed",
		zap.Int("prompt_tokens", resp.Usage.InputTokens),
		zap.Int("completion_tokens", resp.Usage.OutputTokens),
		zap.Int("tool_calls", len(out.ToolCalls)),
		zap.Duration("elapsed", time.Since(start)))

	return out, nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

// buildMessages converts neutral messages to Anthropic format. Tool
// results become user messages with tool_result content blocks.
func (c *AnthropicClient) buildMessages(messages []Message) []anthropic.Message {
	var result []anthropic.Message

	for _, msg := range messages {
		switch msg.Role {
		case RoleTool:
			result = append(result, anthropic.NewToolResultsMessage(msg.ToolCallID, msg.Content, false))
		case RoleAssistant:
			var blocks []anthropic.MessageContent
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextMessageContent(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, anthropic.MessageContent{
					Type: anthropic.MessagesContentTypeToolUse,
					MessageContentToolUse: &anthropic.MessageContentToolUse{
						ID:    tc.ID,
						Name:  tc.Name,
						Input: json.RawMessage(tc.Arguments),
					},
				})
			}
			result = append(result, anthropic.Message{
				Role:    anthropic.RoleAssistant,
				Content: blocks,
			})
		default:
			result = append(result, anthropic.NewUserTextMessage(msg.Content))
		}
	}

	return result
}

// buildTools converts tool definitions to Anthropic format.
func (c *AnthropicClient) buildTools(tools []ToolDefinition) []anthropic.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}

	result := make([]anthropic.ToolDefinition, len(tools))
	for i, def := range tools {
		result[i] = anthropic.ToolDefinition{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.Parameters,
		}
	}

	return result
}

// Ensure AnthropicClient implements ChatClient at compile time.
var _ ChatClient = (*AnthropicClient)(nil)
