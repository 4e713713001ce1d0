package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"impactdash/internal/errors"
	"impactdash/ports"
)

// NoAnswer is returned when OpenAI responds without choices
const NoAnswer = "Keine Antwort verfügbar."

// newOpenAIClient creates an OpenAI client based on config
func newOpenAIClient(config Config) *OpenAIClient {
	baseURL := strings.TrimSpace(config.OpenAIBaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(config.OpenAIModel)
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIClient{
		APIKey:      config.OpenAIKey,
		BaseURL:     baseURL,
		Model:       model,
		Timeout:     config.Timeout,
		Temperature: config.Temperature,
		MaxTokens:   OpenAIMaxTokens,
	}
}

// OpenAIClient talks to the chat completions endpoint
type OpenAIClient struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

func (c *OpenAIClient) Name() string { return ProviderOpenAI }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the system prompt followed by the conversation
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt string, messages []ports.ChatMessage) (*ports.ChatCompletion, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.ConfigInvalid("OpenAI API key not configured")
	}

	body := openAIRequest{
		Model:       c.Model,
		Messages:    make([]openAIMessage, 0, len(messages)+1),
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
	body.Messages = append(body.Messages, openAIMessage{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		body.Messages = append(body.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, errors.ExternalFailure("OpenAI API error: "+err.Error(), err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := http.StatusText(resp.StatusCode)
		var apiErr openAIError
		if json.Unmarshal(respRaw, &apiErr) == nil && apiErr.Error.Message != "" {
			detail = apiErr.Error.Message
		}
		return nil, errors.ExternalFailure("OpenAI API error: "+detail, fmt.Errorf("openai http %d", resp.StatusCode))
	}

	var decoded openAIResponse
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	out := &ports.ChatCompletion{Content: NoAnswer}
	if len(decoded.Choices) > 0 && decoded.Choices[0].Message.Content != "" {
		out.Content = decoded.Choices[0].Message.Content
	}
	if decoded.Usage != nil {
		model := decoded.Model
		if model == "" {
			model = c.Model
		}
		out.Usage = &ports.UsageData{
			PromptTokens:     decoded.Usage.PromptTokens,
			CompletionTokens: decoded.Usage.CompletionTokens,
			TotalTokens:      decoded.Usage.TotalTokens,
			Model:            model,
			Provider:         ProviderOpenAI,
		}
	}
	return out, nil
}

func (c *OpenAIClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.Timeout}
}
