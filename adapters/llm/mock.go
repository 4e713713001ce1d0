package llm

import (
	"context"
	"sync"

	"impactdash/ports"
)

// MockChatProvider is a scripted provider for tests
type MockChatProvider struct {
	Response string // Set this for testing
	Usage    *ports.UsageData
	Error    error // Set this to simulate errors

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one Complete invocation
type MockCall struct {
	SystemPrompt string
	Messages     []ports.ChatMessage
}

func (m *MockChatProvider) Name() string { return "mock" }

func (m *MockChatProvider) Complete(ctx context.Context, systemPrompt string, messages []ports.ChatMessage) (*ports.ChatCompletion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{SystemPrompt: systemPrompt, Messages: append([]ports.ChatMessage(nil), messages...)})
	m.mu.Unlock()

	if m.Error != nil {
		return nil, m.Error
	}
	response := m.Response
	if response == "" {
		response = "Dazu habe ich leider keine Informationen in meinen Daten."
	}
	return &ports.ChatCompletion{Content: response, Usage: m.Usage}, nil
}

// Calls returns the recorded invocations
func (m *MockChatProvider) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}
