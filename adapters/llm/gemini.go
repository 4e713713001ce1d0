package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"impactdash/internal/errors"
	"impactdash/ports"
)

const (
	geminiNoCandidates = "Gemini hat keine Antwort generiert"
	geminiBlocked      = "Die Anfrage wurde aus Sicherheitsgründen blockiert"
	geminiEmptyText    = "Entschuldigung, die KI konnte keine Antwort generieren. Bitte versuche eine kürzere oder spezifischere Frage."
	geminiMissingKey   = "Gemini API key not configured. Set GEMINI_API_KEY or GOOGLE_AI_API_KEY in environment variables."
)

// GeminiClient sends a single flattened prompt through the genai SDK
type GeminiClient struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float32
	httpClient  *http.Client

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiClient creates the client lazily on first use
func NewGeminiClient(cfg Config) *GeminiClient {
	model := strings.TrimSpace(cfg.GeminiModel)
	if model == "" {
		model = "gemini-2.5-pro"
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	var httpClient *http.Client
	if cfg.Timeout > 0 {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &GeminiClient{
		apiKey:      strings.TrimSpace(cfg.GeminiKey),
		model:       model,
		baseURL:     cfg.GeminiBaseURL,
		temperature: float32(temperature),
		httpClient:  httpClient,
	}
}

func (g *GeminiClient) Name() string { return ProviderGemini }

func (g *GeminiClient) genaiClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			APIVersion: "v1",
			BaseURL:    g.baseURL,
		},
		HTTPClient: g.httpClient,
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	g.client = client
	return client, nil
}

// Complete flattens the conversation into one prompt and returns the text
// of the first candidate.
func (g *GeminiClient) Complete(ctx context.Context, systemPrompt string, messages []ports.ChatMessage) (*ports.ChatCompletion, error) {
	if g.apiKey == "" {
		return nil, errors.ConfigInvalid(geminiMissingKey)
	}

	client, err := g.genaiClient(ctx)
	if err != nil {
		return nil, errors.ExternalFailure("Gemini API error: "+err.Error(), err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(GeminiPrompt(systemPrompt, messages)), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: GeminiMaxOutputTokens,
	})
	if err != nil {
		return nil, errors.ExternalFailure("Gemini API error: "+err.Error(), err)
	}

	text, err := geminiText(resp)
	if err != nil {
		return nil, err
	}

	out := &ports.ChatCompletion{Content: text}
	if resp.UsageMetadata != nil {
		out.Usage = &ports.UsageData{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
			Model:            g.model,
			Provider:         ProviderGemini,
		}
	}
	return out, nil
}

// GeminiPrompt renders the system prompt, the turns as "Nutzer:" and
// "Assistent:" lines and the closing instruction.
func GeminiPrompt(systemPrompt string, messages []ports.ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "Assistent"
		if m.Role == ports.RoleUser {
			speaker = "Nutzer"
		}
		lines = append(lines, speaker+": "+m.Content)
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\nBisheriger Gesprächsverlauf:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nBitte antworte auf die letzte Nachricht des Nutzers.")
	return b.String()
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", errors.ExternalFailure(geminiNoCandidates, nil)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", errors.ExternalFailure(geminiBlocked, nil)
	}

	var text string
	if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
		if first := candidate.Content.Parts[0]; first != nil && first.Text != "" {
			text = first.Text
		} else {
			parts := make([]string, 0, len(candidate.Content.Parts))
			for _, p := range candidate.Content.Parts {
				if p != nil && p.Text != "" {
					parts = append(parts, p.Text)
				}
			}
			text = strings.Join(parts, "")
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.ExternalFailure(geminiEmptyText, nil)
	}
	return text, nil
}
