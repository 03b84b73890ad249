package store

import "errors"

// Sentinel errors returned by [RecordStore] implementations to signal
// well-known failure conditions. Callers should use [errors.Is] to match
// against these values.
var (
	// ErrRecordNotFound is returned when the addressed record does not exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordAlreadyExists is returned when an insert or update violates a
	// primary key or unique constraint.
	ErrRecordAlreadyExists = errors.New("record already exists")

	// ErrForeignKeyViolation is returned when a write references a record that
	// does not exist, or a delete would orphan dependent records.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidFilter is returned for filters, orders or columns the table
	// does not declare.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrUnknownDriver is returned by [NewStorages] for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown storage driver")

	// ErrStoreUnavailable is returned when the hosted store cannot be reached
	// or answers with a server error.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Low-level database operation errors. These are wrapped by the SQL store
// when an operation fails before any domain mapping can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
