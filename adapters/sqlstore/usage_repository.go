package sqlstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"impactdash/ports"
)

// UsageRepository stores LLM usage rows
type UsageRepository struct {
	db *sqlx.DB
}

var _ ports.UsageRepository = (*UsageRepository)(nil)

// NewUsageRepository creates a usage repository
func NewUsageRepository(db *sqlx.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// RecordUsage records LLM usage for an API call
func (r *UsageRepository) RecordUsage(ctx context.Context, usage *ports.UsageRecord) error {
	row := *usage
	row.CreatedAt = row.CreatedAt.UTC()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_usage (
			id, client_id, provider, model, operation_type,
			prompt_tokens, completion_tokens, total_tokens, created_at
		) VALUES (
			:id, :client_id, :provider, :model, :operation_type,
			:prompt_tokens, :completion_tokens, :total_tokens, :created_at
		)
	`, &row)
	return err
}

// Summary aggregates usage in [start, end]
func (r *UsageRepository) Summary(ctx context.Context, start, end time.Time) (*ports.UsageSummary, error) {
	start, end = start.UTC(), end.UTC()
	summary := &ports.UsageSummary{
		PeriodStart: start,
		PeriodEnd:   end,
		ByProvider:  make(map[string]int),
		ByModel:     []ports.ModelUsage{},
	}

	var totals struct {
		RequestCount int `db:"request_count"`
		TotalTokens  int `db:"total_tokens"`
	}
	err := r.db.GetContext(ctx, &totals, r.db.Rebind(`
		SELECT COUNT(*) AS request_count, COALESCE(SUM(total_tokens), 0) AS total_tokens
		FROM llm_usage
		WHERE created_at >= ? AND created_at <= ?
	`), start, end)
	if err != nil {
		return nil, err
	}
	summary.RequestCount = totals.RequestCount
	summary.TotalTokens = totals.TotalTokens

	err = r.db.SelectContext(ctx, &summary.ByModel, r.db.Rebind(`
		SELECT provider, model, COUNT(*) AS request_count, COALESCE(SUM(total_tokens), 0) AS total_tokens
		FROM llm_usage
		WHERE created_at >= ? AND created_at <= ?
		GROUP BY provider, model
		ORDER BY provider, model
	`), start, end)
	if err != nil {
		return nil, err
	}
	for _, m := range summary.ByModel {
		summary.ByProvider[m.Provider] += m.TotalTokens
	}
	return summary, nil
}
