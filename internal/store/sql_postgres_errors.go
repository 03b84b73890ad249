package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells [DB] whether a failed statement may be retried.
type ErrorClassification int

const (
	NonRetryable ErrorClassification = iota
	Retryable
)

// PostgresErrorClassifier implements [ErrorClassificator] for PostgreSQL
// reached through pgx.
//
// Retryable:
//   - class 08, connection exceptions
//   - class 40, serialization failures and deadlocks
//   - 53300 too_many_connections
//   - 57P01..57P03, the server is restarting or not accepting connections
//   - driver errors pgconn reports as safe to retry (nothing reached the server)
//
// Everything else, constraint violations included, is final.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	code := postgresErrorCode(err)
	if code == "" {
		if pgconn.SafeToRetry(err) {
			return Retryable
		}
		return NonRetryable
	}

	switch {
	case pgerrcode.IsConnectionException(code),
		pgerrcode.IsTransactionRollback(code):
		return Retryable
	}

	switch code {
	case pgerrcode.TooManyConnections,
		pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown,
		pgerrcode.CannotConnectNow:
		return Retryable
	}
	return NonRetryable
}

// postgresErrorCode returns the SQLSTATE of err, or "" when err did not come
// from the server.
func postgresErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapPostgresError translates constraint violations into store sentinels.
// Other errors are returned unchanged.
func mapPostgresError(err error) error {
	switch postgresErrorCode(err) {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %w", ErrRecordAlreadyExists, err)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	case pgerrcode.UndefinedColumn, pgerrcode.InvalidTextRepresentation:
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return err
}
