// Package workers runs the application's background jobs.
//
// Each job is a [Worker] that blocks until its context is cancelled.
// [Workers] starts a set of them concurrently and waits for all of them to
// return.
package workers

import "context"

// Worker is a background job. Run blocks until ctx is cancelled.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) {
//	    <-ctx.Done()
//	}
type Worker interface {
	Run(ctx context.Context)
}
