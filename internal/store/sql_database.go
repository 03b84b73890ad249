package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/migrations"
	sq "github.com/Masterminds/squirrel"
)

// SQL driver names registered by the pgx and go-sqlite3 packages.
const (
	DialectPostgres = "pgx"
	DialectSQLite   = "sqlite3"
)

const (
	maxAttempts  = 3
	retryBackoff = 50 * time.Millisecond
)

// DB is a *sql.DB bound to a SQL dialect.
type DB struct {
	*sql.DB
	dialect            string
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate applies the pending embedded migrations and reports how many ran.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	return migrations.Migrate(ctx, db.DB, db.dialect)
}

// Dialect returns the driver name the connection was opened with.
func (db *DB) Dialect() string {
	return db.dialect
}

func (db *DB) placeholders() sq.PlaceholderFormat {
	if db.dialect == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

// withRetry runs fn again while the classifier reports the failure as
// transient, up to maxAttempts times.
func (db *DB) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || db.errorClassificator == nil || db.errorClassificator.Classify(err) != Retryable {
			return err
		}

		db.logger.Warn().Err(err).Int("attempt", attempt).Msg("retrying transient database error")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return err
}
