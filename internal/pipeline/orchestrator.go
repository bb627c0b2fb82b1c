// SPDX-License-Identifier: MIT
/*
Package pipeline runs analysis requests through two reusable stage workers:

	Start -> [stage A: analysis.Analyzer] -> [stage B: classify.Classifier] -> AnalysisResult

At most one task is active. Starting a new task cancels the previous one,
which moves to StatusCancelled immediately and never delivers a result.
Cancellation is checked at every stage boundary and again before the
result is stored.
*/
package pipeline

import (
	"context"
	"errors"
	"sync"

	"audioprofile/internal/analysis"
	"audioprofile/internal/classify"
	applog "audioprofile/internal/log"
	"audioprofile/internal/transport"
)

// Analyzer is the stage A contract.
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) (analysis.Summary, error)
}

// Classifier is the stage B contract.
type Classifier interface {
	Classify(bpm int, f analysis.FeaturesSummary) classify.Result
}

// EventType labels a published progress event.
type EventType string

const (
	EventStageADone EventType = "stageA-done"
	EventStageBDone EventType = "stageB-done"
	EventResult     EventType = "result"
	EventError      EventType = "error"
)

// Event is sent to the configured transport as a task progresses.
type Event struct {
	Type   EventType       `json:"type"`
	TaskID string          `json:"taskId"`
	Result *AnalysisResult `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAnalyzer replaces the default stage A analyzer.
func WithAnalyzer(a Analyzer) Option {
	return func(o *Orchestrator) { o.analyzer = a }
}

// WithClassifier replaces the default stage B classifier.
func WithClassifier(c Classifier) Option {
	return func(o *Orchestrator) { o.classifier = c }
}

// WithTransport publishes progress events through t.
func WithTransport(t transport.Transport) Option {
	return func(o *Orchestrator) { o.transport = t }
}

// Orchestrator sequences stage A and stage B for one active task at a time.
type Orchestrator struct {
	analyzer   Analyzer
	classifier Classifier
	transport  transport.Transport

	stageA *worker[analysis.Input, analysis.Summary]
	stageB *worker[analysis.Summary, classify.Result]

	mu         sync.Mutex
	generation uint64
	current    *Task
	cancel     context.CancelFunc
	closed     bool

	running   sync.WaitGroup
	closeOnce sync.Once
}

// New starts both stage workers. Call Close to terminate them.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		analyzer:   analysis.DefaultAnalyzer(),
		classifier: classify.Classifier{},
	}
	for _, opt := range opts {
		opt(o)
	}

	o.stageA = newWorker(StageA, o.analyzer.Analyze)
	o.stageB = newWorker(StageB, func(_ context.Context, s analysis.Summary) (classify.Result, error) {
		return o.classifier.Classify(s.Tempo.BPM, s.Features), nil
	})
	return o
}

// Start begins analysing a copy of in and returns without waiting. Any task
// still in flight is cancelled first.
func (o *Orchestrator) Start(in analysis.Input) *Task {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	task := newTask(o.generation)
	if o.closed {
		task.finish(StatusError, AnalysisResult{}, ErrClosed)
		return task
	}

	o.cancelCurrentLocked()
	ctx, cancel := context.WithCancel(context.Background())
	o.current, o.cancel = task, cancel

	o.running.Add(1)
	go o.run(ctx, task, in.Clone())

	applog.Debugf("Pipeline: task %s queued (generation %d)", task.ID(), task.generation)
	return task
}

// Analyze starts a task and waits for it. If ctx ends first the task is
// cancelled.
func (o *Orchestrator) Analyze(ctx context.Context, in analysis.Input) (AnalysisResult, error) {
	task := o.Start(in)
	res, err := task.Wait(ctx)
	if ctx.Err() != nil {
		o.cancelTask(task)
	}
	return res, err
}

// Current returns the most recently started task, or nil.
func (o *Orchestrator) Current() *Task {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Cancel cancels the active task, if any.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelCurrentLocked()
}

// Close cancels the active task and stops both workers. Later calls to
// Start return tasks failed with ErrClosed.
func (o *Orchestrator) Close() error {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		o.closed = true
		o.cancelCurrentLocked()
		o.mu.Unlock()

		o.running.Wait()
		o.stageA.stop()
		o.stageB.stop()
		applog.Debugf("Pipeline: workers stopped")
	})
	return nil
}

func (o *Orchestrator) cancelTask(task *Task) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == task {
		o.cancelCurrentLocked()
	}
}

func (o *Orchestrator) cancelCurrentLocked() {
	if o.current == nil {
		return
	}
	o.cancel()
	if o.current.finish(StatusCancelled, AnalysisResult{}, ErrCancelled) {
		applog.Debugf("Pipeline: task %s cancelled", o.current.ID())
	}
	o.current, o.cancel = nil, nil
}

func (o *Orchestrator) run(ctx context.Context, task *Task, in analysis.Input) {
	defer o.running.Done()
	if !task.begin() {
		return
	}

	task.enterStage(StageA)
	summary, err := await(ctx, o.stageA, in)
	if err != nil {
		o.fail(ctx, task, err)
		return
	}
	o.publish(task, Event{Type: EventStageADone, TaskID: task.ID()})

	if ctx.Err() != nil {
		o.fail(ctx, task, ctx.Err())
		return
	}

	task.enterStage(StageB)
	result, err := await(ctx, o.stageB, summary)
	if err != nil {
		o.fail(ctx, task, err)
		return
	}
	o.publish(task, Event{Type: EventStageBDone, TaskID: task.ID()})

	o.complete(ctx, task, AnalysisResult{
		TempoEstimate: summary.Tempo,
		Features:      summary.Features,
		Result:        result,
	})
}

// complete stores res unless the task was superseded or cancelled meanwhile.
func (o *Orchestrator) complete(ctx context.Context, task *Task, res AnalysisResult) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if ctx.Err() != nil || !o.isCurrentLocked(task) {
		task.finish(StatusCancelled, AnalysisResult{}, ErrCancelled)
		return
	}
	if task.finish(StatusDone, res, nil) {
		o.cancel()
		applog.Debugf("Pipeline: task %s done (bpm=%d)", task.ID(), res.BPM)
		o.sendLocked(Event{Type: EventResult, TaskID: task.ID(), Result: &res})
	}
}

func (o *Orchestrator) fail(ctx context.Context, task *Task, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if ctx.Err() != nil || errors.Is(err, context.Canceled) || !o.isCurrentLocked(task) {
		task.finish(StatusCancelled, AnalysisResult{}, ErrCancelled)
		return
	}
	if task.finish(StatusError, AnalysisResult{}, err) {
		o.cancel()
		applog.Warnf("Pipeline: task %s failed: %v", task.ID(), err)
		o.sendLocked(Event{Type: EventError, TaskID: task.ID(), Error: err.Error()})
	}
}

// publish sends ev only while task is still the active one.
func (o *Orchestrator) publish(task *Task, ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.isCurrentLocked(task) {
		o.sendLocked(ev)
	}
}

func (o *Orchestrator) isCurrentLocked(task *Task) bool {
	return o.current == task && task.generation == o.generation
}

func (o *Orchestrator) sendLocked(ev Event) {
	if o.transport == nil {
		return
	}
	if err := o.transport.Send(ev); err != nil {
		applog.Warnf("Pipeline: failed to publish %s event: %v", ev.Type, err)
	}
}
