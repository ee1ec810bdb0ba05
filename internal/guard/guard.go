// Package guard implements the guaranteed-cleanup scope around a unit of
// work: the cleanup fires exactly once when the body's scope ends, whether
// the body returned normally, returned an error, or panicked. It is the
// structured equivalent of a shell `trap ... EXIT`.
package guard

import "fmt"

// Outcome records what happened inside a guarded scope.
type Outcome struct {
	// Err is the body's result. A panic inside the body is recovered and
	// reported here as an error.
	Err error

	// CleanupRan is true once the cleanup has fired. The guard sets it
	// before invoking the cleanup, so even a panicking cleanup counts as
	// having run.
	CleanupRan bool

	// CleanupErr is the cleanup's own failure, if any. It never replaces
	// Err: the scope's outcome reflects its body, not its finalizer.
	CleanupErr error
}

// Run executes body and then cleanup, exactly once each, in that order.
// The cleanup fires on every exit path out of the body, including panics,
// before Run returns to the caller.
func Run(body func() error, cleanup func() error) Outcome {
	var outcome Outcome

	func() {
		defer func() {
			outcome.CleanupRan = true
			outcome.CleanupErr = runRecovered(cleanup)
		}()
		outcome.Err = runRecovered(body)
	}()

	return outcome
}

// runRecovered invokes fn, converting a panic into an error so that the
// surrounding pipeline keeps running.
func runRecovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
