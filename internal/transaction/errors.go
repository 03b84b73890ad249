package transaction

import "errors"

var (
	// ErrRolledBack wraps the cause of a failed transaction whose completed
	// steps were all undone.
	ErrRolledBack = errors.New("transaction rolled back")

	// ErrRollbackFailed wraps the cause of a failed transaction when at least
	// one undo failed too. The undo errors are joined to it.
	ErrRollbackFailed = errors.New("transaction rollback failed")
)
