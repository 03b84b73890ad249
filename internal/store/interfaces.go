package store

import (
	"context"

	"github.com/MKhiriev/go-chat-profiles/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// RecordStore is the generic table access layer of the hosted store. Every
// record passed in or returned uses the canonical value types of the table
// columns (see [models.Kind]).
//
// Implementations must be safe for concurrent use.
type RecordStore interface {
	// Get returns the record of table with the given id.
	// Returns [ErrRecordNotFound] when no such record exists.
	Get(ctx context.Context, table models.Table, id string) (models.Record, error)

	// Create inserts rec and returns the stored record.
	// Returns [ErrRecordAlreadyExists] on a unique or primary key conflict
	// and [ErrForeignKeyViolation] when a referenced record is missing.
	Create(ctx context.Context, table models.Table, rec models.Record) (models.Record, error)

	// Update sets the columns present in changes on the record with the given
	// id and returns the updated record.
	// Returns [ErrRecordNotFound] when no such record exists.
	Update(ctx context.Context, table models.Table, id string, changes models.Record) (models.Record, error)

	// Delete removes the record with the given id.
	// Returns [ErrRecordNotFound] when no such record exists.
	Delete(ctx context.Context, table models.Table, id string) error

	// Read returns the records of table matching params, in params order.
	Read(ctx context.Context, table models.Table, params models.SearchParams) ([]models.Record, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// ErrorClassificator decides whether a failed store operation may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
