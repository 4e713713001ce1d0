package usage

import (
	"context"
	"sync"
	"time"

	"impactdash/domain/core"
	"impactdash/internal"
	"impactdash/ports"
)

// OpChat is the operation type recorded for chat replies
const OpChat = "chat"

// Service handles LLM usage tracking and persistence
type Service struct {
	repo   ports.UsageRepository
	clock  core.Clock
	logger *internal.Logger
	wg     sync.WaitGroup
}

// NewService creates a new usage service
func NewService(repo ports.UsageRepository, clock core.Clock, logger *internal.Logger) *Service {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Service{repo: repo, clock: clock, logger: logger}
}

// RecordUsage persists usage in the background. Tracking problems are
// logged and never fail the caller.
func (s *Service) RecordUsage(client core.ClientID, operationType string, usage *ports.UsageData) {
	if usage == nil {
		return
	}
	if usage.PromptTokens < 0 || usage.CompletionTokens < 0 || usage.TotalTokens < 0 {
		s.logger.Error("[UsageService] invalid token counts: %+v", usage)
		return
	}

	record := &ports.UsageRecord{
		ID:               core.NewID().String(),
		ClientID:         client.String(),
		Provider:         usage.Provider,
		Model:            usage.Model,
		OperationType:    operationType,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		CreatedAt:        s.clock.Now(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.persistWithRetry(record); err != nil {
			s.logger.Error("[UsageService] failed to persist usage after retries: %v", err)
		}
	}()
}

// persistWithRetry attempts to persist usage with linear backoff
func (s *Service) persistWithRetry(record *ports.UsageRecord) error {
	const maxRetries = 3
	const baseDelay = 100 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = s.repo.RecordUsage(ctx, record)
		cancel()
		if err == nil {
			return nil
		}
		if attempt < maxRetries-1 {
			time.Sleep(time.Duration(attempt+1) * baseDelay)
		}
	}
	return err
}

// Summary returns aggregated usage in [start, end]
func (s *Service) Summary(ctx context.Context, start, end time.Time) (*ports.UsageSummary, error) {
	return s.repo.Summary(ctx, start, end)
}

// Wait blocks until pending writes finish
func (s *Service) Wait() {
	s.wg.Wait()
}
