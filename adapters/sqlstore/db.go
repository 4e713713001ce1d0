// Package sqlstore persists chat quotas and LLM usage in PostgreSQL or SQLite.
package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"impactdash/internal/errors"
	"impactdash/internal/migration"
)

// DriverFor maps a DATABASE_URL to a driver name and DSN.
// postgres:// and postgresql:// use lib/pq; sqlite:// and file: use SQLite.
func DriverFor(url string) (driver, dsn string, err error) {
	url = strings.TrimSpace(url)
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "sqlite:"):
		return "sqlite", strings.TrimPrefix(url, "sqlite:"), nil
	case strings.HasPrefix(url, "file:"):
		return "sqlite", url, nil
	default:
		return "", "", errors.ConfigInvalid(fmt.Sprintf("unsupported DATABASE_URL scheme: %q", url))
	}
}

// Open connects and runs migrations
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	driver, dsn, err := DriverFor(url)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to connect to database")
	}
	if driver == "sqlite" {
		// a single connection keeps :memory: databases shared and serializes writers
		db.SetMaxOpenConns(1)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
