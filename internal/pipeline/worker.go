package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type outcome[Out any] struct {
	out Out
	err error
}

type job[In, Out any] struct {
	ctx   context.Context
	in    In
	reply chan outcome[Out]
}

// worker is a long-lived goroutine that runs one stage function per job.
// It is reused across tasks and holds no analysis state between jobs.
type worker[In, Out any] struct {
	stage Stage
	fn    func(context.Context, In) (Out, error)
	jobs  chan job[In, Out]
	quit  chan struct{}
	wg    sync.WaitGroup
}

func newWorker[In, Out any](stage Stage, fn func(context.Context, In) (Out, error)) *worker[In, Out] {
	w := &worker[In, Out]{
		stage: stage,
		fn:    fn,
		jobs:  make(chan job[In, Out]),
		quit:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

func (w *worker[In, Out]) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.quit:
			return
		case j := <-w.jobs:
			// reply is buffered; the requester may already have gone away.
			j.reply <- w.run(j)
		}
	}
}

func (w *worker[In, Out]) run(j job[In, Out]) (o outcome[Out]) {
	defer func() {
		if r := recover(); r != nil {
			o = outcome[Out]{err: &StageError{Stage: w.stage, Err: fmt.Errorf("panic: %v", r)}}
		}
	}()

	out, err := w.fn(j.ctx, j.in)
	if err != nil && !errors.Is(err, context.Canceled) {
		err = &StageError{Stage: w.stage, Err: err}
	}
	return outcome[Out]{out: out, err: err}
}

// submit hands in to the worker and returns the channel its outcome will
// arrive on.
func (w *worker[In, Out]) submit(ctx context.Context, in In) (<-chan outcome[Out], error) {
	reply := make(chan outcome[Out], 1)
	select {
	case w.jobs <- job[In, Out]{ctx: ctx, in: in, reply: reply}:
		return reply, nil
	case <-w.quit:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// stop terminates the worker after any in-flight job returns.
func (w *worker[In, Out]) stop() {
	close(w.quit)
	w.wg.Wait()
}

// await submits in and suspends until the outcome arrives or ctx ends.
func await[In, Out any](ctx context.Context, w *worker[In, Out], in In) (Out, error) {
	var zero Out
	reply, err := w.submit(ctx, in)
	if err != nil {
		return zero, err
	}
	select {
	case o := <-reply:
		return o.out, o.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
