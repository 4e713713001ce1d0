// Package quota enforces the per-client daily chat limit.
package quota

import (
	"context"
	"fmt"

	"impactdash/domain/core"
	"impactdash/internal/errors"
	"impactdash/ports"
)

// DefaultDailyLimit is the number of chat replies per client and UTC day
const DefaultDailyLimit = 20

// Status describes a client's quota for the current day
type Status struct {
	Used         int    `json:"used"`
	Remaining    int    `json:"remaining"`
	Limit        int    `json:"limit"`
	LimitReached bool   `json:"limitReached"`
	Date         string `json:"date"`
}

// Limiter counts replies per client per day. Days are UTC calendar days of
// the injected clock, so counters roll over at midnight UTC.
type Limiter struct {
	store ports.QuotaStore
	clock core.Clock
	limit int
}

// NewLimiter creates a limiter; a non-positive limit uses the default
func NewLimiter(store ports.QuotaStore, clock core.Clock, limit int) *Limiter {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &Limiter{store: store, clock: clock, limit: limit}
}

// Limit returns the daily limit
func (l *Limiter) Limit() int {
	return l.limit
}

// Status reports the quota without consuming it
func (l *Limiter) Status(ctx context.Context, client core.ClientID) (Status, error) {
	day := core.DayKey(l.clock.Now())
	used, err := l.store.Count(ctx, client, day)
	if err != nil {
		return Status{}, errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to read chat quota")
	}
	return l.status(used, day), nil
}

// Reservation is one reply slot taken before the provider is called
type Reservation struct {
	limiter *Limiter
	client  core.ClientID
	day     string
	Status  Status
}

// Reserve takes a reply slot for client. The store increments atomically,
// so concurrent requests can never hold more slots than the limit. A slot
// beyond the limit is handed back and RATE_LIMITED is returned.
func (l *Limiter) Reserve(ctx context.Context, client core.ClientID) (*Reservation, error) {
	day := core.DayKey(l.clock.Now())
	used, err := l.store.Increment(ctx, client, day)
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to update chat quota")
	}
	if used > l.limit {
		if _, err := l.store.Decrement(ctx, client, day); err != nil {
			return nil, errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to update chat quota")
		}
		limited := errors.RateLimited(fmt.Sprintf("Tageslimit von %d Nachrichten erreicht. Bitte versuche es morgen erneut.", l.limit))
		limited.Cause = core.ErrQuotaExceeded
		return nil, limited
	}
	return &Reservation{limiter: l, client: client, day: day, Status: l.status(used, day)}, nil
}

// Release gives the slot back, for replies that were never delivered.
// It counts against the day the slot was taken on.
func (r *Reservation) Release(ctx context.Context) (Status, error) {
	used, err := r.limiter.store.Decrement(ctx, r.client, r.day)
	if err != nil {
		return Status{}, errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to release chat quota")
	}
	return r.limiter.status(used, r.day), nil
}

func (l *Limiter) status(used int, day string) Status {
	remaining := l.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Used:         used,
		Remaining:    remaining,
		Limit:        l.limit,
		LimitReached: used >= l.limit,
		Date:         day,
	}
}
