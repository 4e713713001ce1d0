package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"impactdash/domain/core"
	"impactdash/ports"
)

// QuotaRepository implements ports.QuotaStore on a SQL table
type QuotaRepository struct {
	db *sqlx.DB
}

var _ ports.QuotaStore = (*QuotaRepository)(nil)

// NewQuotaRepository creates a quota repository
func NewQuotaRepository(db *sqlx.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// Count returns the consumed requests for client on day
func (r *QuotaRepository) Count(ctx context.Context, client core.ClientID, day string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`
		SELECT count FROM chat_quota WHERE client_id = ? AND day = ?
	`), client.String(), day)
	if stderrors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

// Increment adds one to the counter and returns the new value
func (r *QuotaRepository) Increment(ctx context.Context, client core.ClientID, day string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`
		INSERT INTO chat_quota (client_id, day, count) VALUES (?, ?, 1)
		ON CONFLICT (client_id, day) DO UPDATE SET count = chat_quota.count + 1
		RETURNING count
	`), client.String(), day)
	return count, err
}

// Decrement removes one from a positive counter and returns the new value
func (r *QuotaRepository) Decrement(ctx context.Context, client core.ClientID, day string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`
		UPDATE chat_quota SET count = count - 1
		WHERE client_id = ? AND day = ? AND count > 0
		RETURNING count
	`), client.String(), day)
	if stderrors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

// DeleteBefore removes counters older than day
func (r *QuotaRepository) DeleteBefore(ctx context.Context, day string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM chat_quota WHERE day < ?`), day)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
