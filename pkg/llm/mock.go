package llm

import (
	"context"
)

// MockChatClient is a configurable mock for testing chat functionality.
// Set the function fields to control behavior in tests.
type MockChatClient struct {
	// ChatFunc is called when Chat is invoked.
	// If nil, returns an empty response and nil error.
	ChatFunc func(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification
	ChatCalls    int
	ChatRequests []*ChatRequest
}

// NewMockChatClient creates a new mock with sensible defaults.
func NewMockChatClient() *MockChatClient {
	return &MockChatClient{
		Model: "mock-model",
	}
}

// Chat implements ChatClient.
func (m *MockChatClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	m.ChatCalls++
	m.ChatRequests = append(m.ChatRequests, req)
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	return &ChatResponse{}, nil
}

// GetModel implements ChatClient.
func (m *MockChatClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Reset clears call tracking.
func (m *MockChatClient) Reset() {
	m.ChatCalls = 0
	m.ChatRequests = nil
}

// Ensure MockChatClient implements ChatClient at compile time.
var _ ChatClient = (*MockChatClient)(nil)

// MockToolExecutor is a configurable mock for testing tool execution.
type MockToolExecutor struct {
	// ExecuteToolFunc is called when ExecuteTool is invoked.
	// If nil, returns an empty JSON object and nil error.
	ExecuteToolFunc func(ctx context.Context, name string, arguments string) (string, error)

	// Call tracking
	ExecuteToolCalls []MockToolCall
}

// MockToolCall records a call to ExecuteTool.
type MockToolCall struct {
	Name      string
	Arguments string
}

// NewMockToolExecutor creates a new mock tool executor.
func NewMockToolExecutor() *MockToolExecutor {
	return &MockToolExecutor{
		ExecuteToolCalls: []MockToolCall{},
	}
}

// ExecuteTool implements ToolExecutor.
func (m *MockToolExecutor) ExecuteTool(ctx context.Context, name string, arguments string) (string, error) {
	m.ExecuteToolCalls = append(m.ExecuteToolCalls, MockToolCall{Name: name, Arguments: arguments})
	if m.ExecuteToolFunc != nil {
		return m.ExecuteToolFunc(ctx, name, arguments)
	}
	return `{}`, nil
}

// Reset clears call tracking.
func (m *MockToolExecutor) Reset() {
	m.ExecuteToolCalls = []MockToolCall{}
}

// Ensure MockToolExecutor implements ToolExecutor at compile time.
var _ ToolExecutor = (*MockToolExecutor)(nil)
