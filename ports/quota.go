package ports

import (
	"context"

	"impactdash/domain/core"
)

// Clock supplies the current time
type Clock = core.Clock

// QuotaStore keeps per-client daily counters
type QuotaStore interface {
	// Count returns the number of consumed requests for client on day
	Count(ctx context.Context, client core.ClientID, day string) (int, error)

	// Increment adds one and returns the new count
	Increment(ctx context.Context, client core.ClientID, day string) (int, error)

	// Decrement removes one, never going below zero, and returns the new count
	Decrement(ctx context.Context, client core.ClientID, day string) (int, error)
}
