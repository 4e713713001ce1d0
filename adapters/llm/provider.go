package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"impactdash/internal/errors"
	"impactdash/ports"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultTemperature    = 0.3
	OpenAIMaxTokens       = 4096
	GeminiMaxOutputTokens = 8192
)

// Config selects and configures a chat provider
type Config struct {
	Provider      string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string
	Timeout       time.Duration
	Temperature   float64
}

// NewProvider returns the provider named by cfg.Provider. Missing API
// keys are not checked here; Complete reports them.
func NewProvider(cfg Config) (ports.ChatProvider, error) {
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = ProviderGemini
	}

	switch name {
	case ProviderGemini:
		return NewGeminiClient(cfg), nil
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("Unknown LLM provider: %s. Use 'openai' or 'gemini'.", cfg.Provider))
	}
}

// FailingProvider answers every request with the same error. It stands in
// for a provider that could not be configured so the server still starts.
type FailingProvider struct {
	Err error
}

func (p FailingProvider) Name() string { return "unconfigured" }

func (p FailingProvider) Complete(ctx context.Context, systemPrompt string, messages []ports.ChatMessage) (*ports.ChatCompletion, error) {
	return nil, p.Err
}
