package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"impactdash/internal/errors"
	"impactdash/ports"
)

func TestGeminiPrompt(t *testing.T) {
	got := GeminiPrompt("SYSTEM\n", []ports.ChatMessage{
		{Role: ports.RoleUser, Content: "Welche Startups gibt es in Berlin?"},
		{Role: ports.RoleAssistant, Content: "Zwei."},
		{Role: ports.RoleUser, Content: "Welche?"},
	})
	want := "SYSTEM\n\nBisheriger Gesprächsverlauf:\n" +
		"Nutzer: Welche Startups gibt es in Berlin?\n" +
		"Assistent: Zwei.\n" +
		"Nutzer: Welche?\n\n" +
		"Bitte antworte auf die letzte Nachricht des Nutzers."
	if got != want {
		t.Fatalf("prompt mismatch:\n%q\nwant\n%q", got, want)
	}
}

func TestGeminiText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr string
	}{
		{name: "nil response", resp: nil, wantErr: geminiNoCandidates},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: geminiNoCandidates},
		{
			name: "blocked",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonSafety,
				Content:      &genai.Content{Parts: []*genai.Part{{Text: "ignored"}}},
			}}},
			wantErr: geminiBlocked,
		},
		{
			name:    "empty text",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "  "}}}}}},
			wantErr: geminiEmptyText,
		},
		{
			name:    "no content",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}}},
			wantErr: geminiEmptyText,
		},
		{
			name: "first part",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "Antwort"}, {Text: " Rest"}}},
			}}},
			want: "Antwort",
		},
		{
			name: "joined parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{}, {Text: "Teil 1"}, {Text: " Teil 2"}}},
			}}},
			want: "Teil 1 Teil 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := geminiText(tt.resp)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error %q", tt.wantErr)
				}
				if msg := errors.UserMessage(err, ""); msg != tt.wantErr {
					t.Fatalf("got error %q, want %q", msg, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGeminiCompleteAgainstServer(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		body = buf.String()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hallo aus Gemini"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":4,"totalTokenCount":16}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{GeminiKey: "g-key", GeminiModel: "gemini-test", GeminiBaseURL: srv.URL})
	out, err := client.Complete(context.Background(), "SYSTEM\n", []ports.ChatMessage{{Role: ports.RoleUser, Content: "Hallo"}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.Content != "Hallo aus Gemini" {
		t.Fatalf("content = %q", out.Content)
	}
	if out.Usage == nil || out.Usage.TotalTokens != 16 {
		t.Fatalf("usage = %+v", out.Usage)
	}
	if !strings.Contains(body, "Nutzer: Hallo") || !strings.Contains(body, `"maxOutputTokens":8192`) {
		t.Fatalf("request body missing prompt or limits: %s", body)
	}
}
