// Package transaction sequences writes against the record store and undoes
// the completed ones when a later write fails.
//
// The store offers no transactions, so a rollback here is a set of
// compensating writes: it is best effort and not atomic. Readers may see
// intermediate states, and a crash between a step and its undo leaves
// partial data behind.
package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
)

// Compensation undoes a completed write.
type Compensation func(ctx context.Context) error

// Step is one unit of work of a transaction. Undo may be nil for steps that
// need no compensation (reads, idempotent checks).
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo Compensation
}

type undoEntry struct {
	name string
	undo Compensation
}

// Tx records the compensations of completed steps.
type Tx struct {
	steps []Step
	undos []undoEntry
}

// New returns a transaction that Run executes step by step.
func New(steps ...Step) *Tx {
	return &Tx{steps: steps}
}

// Then appends a step to be executed by Run.
func (tx *Tx) Then(step Step) *Tx {
	tx.steps = append(tx.steps, step)
	return tx
}

// Run executes the steps in order. On the first failure the undo of every
// completed step runs in reverse order (see ExecTx for the returned errors).
func (tx *Tx) Run(ctx context.Context) error {
	steps := tx.steps
	return tx.exec(ctx, func(ctx context.Context, tx *Tx) error {
		for _, step := range steps {
			if err := tx.Do(ctx, step); err != nil {
				return err
			}
		}
		return nil
	})
}

// Do executes a single step and registers its undo when it succeeds.
func (tx *Tx) Do(ctx context.Context, step Step) error {
	if err := step.Do(ctx); err != nil {
		return fmt.Errorf("%s: %w", step.Name, err)
	}
	tx.Add(step.Name, step.Undo)
	return nil
}

// Add registers the undo of work that already happened, typically the
// Compensation returned by a mapper call. A nil undo is ignored.
func (tx *Tx) Add(name string, undo Compensation) {
	if undo == nil {
		return
	}
	tx.undos = append(tx.undos, undoEntry{name: name, undo: undo})
}

// ExecTx runs fn and compensates the undos it registered when fn fails or
// panics. A panic is re-raised after the compensation.
//
// When fn fails and nothing was registered, its error is returned as is.
// Otherwise the result wraps ErrRolledBack and the cause, or, when an undo
// failed, ErrRollbackFailed and the cause joined with every undo error.
//
//	err := transaction.ExecTx(ctx, func(ctx context.Context, tx *transaction.Tx) error {
//	    conv, undo, err := conversations.Create(ctx, parts)
//	    if err != nil {
//	        return err
//	    }
//	    tx.Add("create conversation", undo)
//	    return categories.AddConversation(ctx, categoryID, conv.ID())
//	})
func ExecTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	return New().exec(ctx, fn)
}

func (tx *Tx) exec(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) (err error) {
	// a committed run is never compensated by a later one
	tx.undos = nil

	defer func() {
		if p := recover(); p != nil {
			_ = tx.rollback(ctx, fmt.Errorf("panic: %v", p))
			panic(p) // re-panic after compensation
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return tx.rollback(ctx, err)
	}
	return nil
}

func (tx *Tx) rollback(ctx context.Context, cause error) error {
	if len(tx.undos) == 0 {
		return cause
	}

	log := logger.FromContext(ctx)
	// undo even when the request that started the work was cancelled
	undoCtx := context.WithoutCancel(ctx)

	var undoErrs []error
	for i := len(tx.undos) - 1; i >= 0; i-- {
		entry := tx.undos[i]
		if err := entry.undo(undoCtx); err != nil {
			log.Err(err).Str("func", "*Tx.rollback").Str("step", entry.name).Msg("compensation failed")
			undoErrs = append(undoErrs, fmt.Errorf("undo %s: %w", entry.name, err))
		}
	}
	tx.undos = nil

	if len(undoErrs) > 0 {
		return errors.Join(append([]error{fmt.Errorf("%w: %w", ErrRollbackFailed, cause)}, undoErrs...)...)
	}

	log.Warn().Err(cause).Str("func", "*Tx.rollback").Msg("transaction rolled back")
	return fmt.Errorf("%w: %w", ErrRolledBack, cause)
}
