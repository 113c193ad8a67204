package pipeline

import (
	"context"
	"sync"
)

// Run is the handle of an asynchronous run started with Start.
type Run struct {
	events chan Event
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	state   State
	summary Summary
	err     error

	queueMu  sync.Mutex
	queue    []Event
	signal   chan struct{}
	finished bool
}

// Start runs root in the background. The returned handle's Events channel
// delivers progress in order and is closed after RunCompleted; callers must
// drain it.
func (o *Orchestrator) Start(ctx context.Context, root string) *Run {
	ctx, cancel := context.WithCancel(ctx)
	r := &Run{
		events: make(chan Event),
		cancel: cancel,
		done:   make(chan struct{}),
		state:  StateIdle,
		signal: make(chan struct{}, 1),
	}
	go r.pump()
	go func() {
		defer close(r.done)
		defer cancel()
		summary, err := o.execute(ctx, root, r.enqueue, r.setState)
		r.mu.Lock()
		r.summary = summary
		r.err = err
		r.mu.Unlock()
	}()
	return r
}

// Events returns the progress stream.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Cancel requests cancellation. Files already being processed finish or
// are abandoned; no new file is dispatched.
func (r *Run) Cancel() {
	r.cancel()
}

// Wait blocks until the run ends and returns its summary.
func (r *Run) Wait() (Summary, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary, r.err
}

// State returns the current lifecycle state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Run) setState(state State) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

// enqueue never blocks the run; pump forwards queued events to the channel.
func (r *Run) enqueue(evt Event) {
	r.queueMu.Lock()
	r.queue = append(r.queue, evt)
	if _, ok := evt.(RunCompleted); ok {
		r.finished = true
	}
	r.queueMu.Unlock()
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

func (r *Run) pump() {
	defer close(r.events)
	for {
		r.queueMu.Lock()
		pending := r.queue
		r.queue = nil
		finished := r.finished
		r.queueMu.Unlock()

		for _, evt := range pending {
			r.events <- evt
		}
		if finished && len(pending) == 0 {
			return
		}
		if !finished {
			<-r.signal
		}
	}
}
