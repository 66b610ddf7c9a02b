// Package llm provides chat completion clients with tool support.
package llm

import (
	"context"
)

// Message roles used in chat requests.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a provider-neutral chat message.
type Message struct {
	Role       string
	Content    string
	ToolCallID string     // set on tool result messages
	ToolCalls  []ToolCall // set on assistant messages that invoked tools
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON arguments
}

// ChatRequest holds one chat completion request.
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition
	Temperature  float64
}

// ChatResponse holds the model's reply for a single turn.
type ChatResponse struct {
	Content          string
	ToolCalls        []ToolCall
	PromptTokens     int
	CompletionTokens int
}

// ChatClient defines the interface for chat completion providers.
// Use this interface for dependency injection to enable mocking in tests.
type ChatClient interface {
	// Chat performs a single chat completion turn. The caller owns the
	// conversation loop and decides how to respond to tool calls.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// ToolExecutor executes tool calls requested by the model.
type ToolExecutor interface {
	// ExecuteTool runs the named tool with raw JSON arguments and
	// returns the result as a string to feed back to the model.
	ExecuteTool(ctx context.Context, name string, arguments string) (string, error)
}
