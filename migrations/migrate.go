// Package migrations embeds the SQL schema of the record store and applies
// it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedMigrations embed.FS

var (
	// ErrNilDB is returned when Migrate is called without a connection.
	ErrNilDB = errors.New("db is nil")
	// ErrUnknownDialect is returned for a driver goose has no dialect for.
	ErrUnknownDialect = errors.New("unknown migration dialect")
)

// dialects maps SQL driver names to goose dialects.
var dialects = map[string]goose.Dialect{
	"pgx":     goose.DialectPostgres,
	"sqlite3": goose.DialectSQLite3,
}

// Migrate applies every pending migration and returns how many ran.
// driver is the database/sql driver name of db ("pgx" or "sqlite3").
func Migrate(ctx context.Context, db *sql.DB, driver string) (int, error) {
	if db == nil {
		return 0, ErrNilDB
	}

	dialect, ok := dialects[driver]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, driver)
	}

	provider, err := goose.NewProvider(dialect, db, embedMigrations)
	if err != nil {
		return 0, fmt.Errorf("migration error: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("migration error: %w", err)
	}

	return len(results), nil
}
