package sqlstore

import (
	"context"
	"sync"
	"time"

	"impactdash/domain/core"
	"impactdash/ports"
)

// MemoryQuotaStore keeps counters in process memory
type MemoryQuotaStore struct {
	mu     sync.Mutex
	counts map[string]int
}

var _ ports.QuotaStore = (*MemoryQuotaStore)(nil)

func NewMemoryQuotaStore() *MemoryQuotaStore {
	return &MemoryQuotaStore{counts: make(map[string]int)}
}

func quotaKey(client core.ClientID, day string) string {
	return day + "|" + client.String()
}

func (m *MemoryQuotaStore) Count(ctx context.Context, client core.ClientID, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[quotaKey(client, day)], nil
}

func (m *MemoryQuotaStore) Increment(ctx context.Context, client core.ClientID, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := quotaKey(client, day)
	m.counts[key]++
	return m.counts[key], nil
}

func (m *MemoryQuotaStore) Decrement(ctx context.Context, client core.ClientID, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := quotaKey(client, day)
	if m.counts[key] > 0 {
		m.counts[key]--
	}
	return m.counts[key], nil
}

// NopUsageRepository discards usage
type NopUsageRepository struct{}

var _ ports.UsageRepository = NopUsageRepository{}

func (NopUsageRepository) RecordUsage(ctx context.Context, usage *ports.UsageRecord) error {
	return nil
}

func (NopUsageRepository) Summary(ctx context.Context, start, end time.Time) (*ports.UsageSummary, error) {
	return &ports.UsageSummary{PeriodStart: start, PeriodEnd: end, ByProvider: map[string]int{}, ByModel: []ports.ModelUsage{}}, nil
}
