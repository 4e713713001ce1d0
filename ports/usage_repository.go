package ports

import (
	"context"
	"time"
)

// UsageRecord is one persisted LLM call
type UsageRecord struct {
	ID               string    `json:"id" db:"id"`
	ClientID         string    `json:"client_id" db:"client_id"`
	Provider         string    `json:"provider" db:"provider"`
	Model            string    `json:"model" db:"model"`
	OperationType    string    `json:"operation_type" db:"operation_type"`
	PromptTokens     int       `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens" db:"total_tokens"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ModelUsage is the usage of one provider model
type ModelUsage struct {
	Provider     string `json:"provider" db:"provider"`
	Model        string `json:"model" db:"model"`
	RequestCount int    `json:"request_count" db:"request_count"`
	TotalTokens  int    `json:"total_tokens" db:"total_tokens"`
}

// UsageSummary aggregates usage for a period. ByModel is ordered by
// provider, then model.
type UsageSummary struct {
	PeriodStart  time.Time      `json:"period_start"`
	PeriodEnd    time.Time      `json:"period_end"`
	RequestCount int            `json:"request_count"`
	TotalTokens  int            `json:"total_tokens"`
	ByProvider   map[string]int `json:"by_provider"`
	ByModel      []ModelUsage   `json:"by_model"`
}

// UsageRepository persists LLM usage
type UsageRepository interface {
	RecordUsage(ctx context.Context, usage *UsageRecord) error
	Summary(ctx context.Context, start, end time.Time) (*UsageSummary, error)
}
