package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is returned for a task that was superseded or explicitly
	// cancelled. It is not a failure and callers should not surface it.
	ErrCancelled = errors.New("analysis cancelled")
	// ErrClosed is returned for tasks started after Close.
	ErrClosed = errors.New("orchestrator closed")
)

// Stage names one of the two compute units.
type Stage string

const (
	StageA Stage = "stageA"
	StageB Stage = "stageB"
)

// StageError wraps a fault raised inside a stage worker.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
