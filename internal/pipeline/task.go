package pipeline

import (
	"context"
	"sync"

	"audioprofile/internal/analysis"
	"audioprofile/internal/classify"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a Task.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusDone      Status = "done"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError || s == StatusCancelled
}

// AnalysisResult combines the tempo, the feature summary and the
// classification of one signal. Embedded fields flatten in JSON.
type AnalysisResult struct {
	analysis.TempoEstimate
	Features analysis.FeaturesSummary `json:"features"`
	classify.Result
}

// Snapshot is a copy of a task's observable state.
type Snapshot struct {
	ID           string          `json:"id"`
	Status       Status          `json:"status"`
	Stage        Stage           `json:"stage,omitempty"`
	Result       *AnalysisResult `json:"result,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// Task tracks one analysis request. Only the Orchestrator mutates it.
type Task struct {
	id         string
	generation uint64

	mu     sync.Mutex
	status Status
	stage  Stage
	result AnalysisResult
	err    error
	done   chan struct{}
}

func newTask(generation uint64) *Task {
	return &Task{
		id:         uuid.NewString(),
		generation: generation,
		status:     StatusQueued,
		done:       make(chan struct{}),
	}
}

// ID returns the task's unique identifier.
func (t *Task) ID() string { return t.id }

// Status returns the current state.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Done is closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} { return t.done }

// ErrorMessage returns the failure message of an errored task, or "".
func (t *Task) ErrorMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusError || t.err == nil {
		return ""
	}
	return t.err.Error()
}

// Snapshot returns a consistent copy of the task state.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Snapshot{ID: t.id, Status: t.status, Stage: t.stage}
	switch t.status {
	case StatusDone:
		r := t.result
		s.Result = &r
	case StatusError:
		if t.err != nil {
			s.ErrorMessage = t.err.Error()
		}
	}
	return s
}

// Wait blocks until the task finishes or ctx ends. A cancelled task yields
// ErrCancelled; a failed one yields its stage error.
func (t *Task) Wait(ctx context.Context) (AnalysisResult, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.status {
	case StatusDone:
		return t.result, nil
	case StatusCancelled:
		return AnalysisResult{}, ErrCancelled
	default:
		return AnalysisResult{}, t.err
	}
}

// begin moves a queued task to running.
func (t *Task) begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusQueued {
		return false
	}
	t.status = StatusRunning
	return true
}

func (t *Task) enterStage(s Stage) {
	t.mu.Lock()
	t.stage = s
	t.mu.Unlock()
}

// finish records a terminal state. Calls after the first are ignored.
func (t *Task) finish(status Status, result AnalysisResult, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return false
	}
	t.status = status
	t.result = result
	t.err = err
	close(t.done)
	return true
}
