package core

import "fmt"

// ValidationError reports a review submission missing a required field. The
// submission is rejected before anything is buffered.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("review is missing required field %q", e.Field)
}

// PersistenceError wraps a storage failure. The in-memory chain is not
// affected; the caller may retry the persist step on its own.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// MiningError reports an exhausted proof-of-work nonce budget. The batch that
// failed to seal stays in the pending pool.
type MiningError struct {
	Attempts   int64
	Difficulty int
}

func (e *MiningError) Error() string {
	return fmt.Sprintf("mining: no hash with %d leading zeros within %d attempts", e.Difficulty, e.Attempts)
}
