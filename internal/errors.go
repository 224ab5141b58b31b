package internal

import (
	"errors"
	"fmt"
)

var (
	ErrNothingToCommit    = errors.New("nothing to commit")
	ErrInvalidStoragePath = errors.New("invalid storage path")
	ErrPathOutsideRoot    = errors.New("path escapes repository root")
)

// SyncError is the error every repository operation surfaces on failure. Op
// names the step that failed, Target the repository it ran against, and Err
// carries the underlying cause.
type SyncError struct {
	Op     string
	Target string
	Err    error
}

func (e *SyncError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
