package esdriver

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/atsika/esdriver/env"
	"github.com/atsika/esdriver/settings"
)

// Reactor owns the single DriverState and the single-threaded loop that
// consumes Msgs and produces Transmissions (§5: one owner, no suspension,
// FIFO ordering preserved both on input and on output).
type Reactor struct {
	env      env.Environment
	settings *settings.Settings
	log      hclog.Logger

	input  chan Msg
	output chan Transmission

	mu    sync.Mutex
	state DriverState

	closeOnce sync.Once
	done      chan struct{}
}

// NewReactor builds a Reactor. inputBuf/outputBuf size the channels;
// backpressure is implemented at these bounds per the Design Notes.
func NewReactor(e env.Environment, cfg *settings.Settings, log hclog.Logger, inputBuf, outputBuf int) *Reactor {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Reactor{
		env:      env.NewInstrumented(e, log),
		settings: cfg,
		log:      log,
		input:    make(chan Msg, inputBuf),
		output:   make(chan Transmission, outputBuf),
		state:    Init{},
		done:     make(chan struct{}),
	}
}

// Output returns the channel Transmissions are published on, in the order
// they were emitted, before any Transmission from a later Msg (§5).
func (r *Reactor) Output() <-chan Transmission { return r.output }

// Submit enqueues a Msg for processing. It never blocks on the reactor's
// internal state, only on the bounded input channel.
func (r *Reactor) Submit(ctx context.Context, msg Msg) error {
	select {
	case r.input <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return errReactorClosed
	}
}

// State returns the current DriverState. Safe to call concurrently with Run
// and Reseed, which replace the state only while holding r.mu; an Active
// stage's registry is shared with the reactor, not copied.
func (r *Reactor) State() DriverState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Run processes Msgs until ctx is cancelled or Close is called. It is
// meant to run on its own goroutine; react itself never blocks, so Run's
// only blocking point is waiting for the next Msg.
func (r *Reactor) Run(ctx context.Context) {
	defer close(r.output)
	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case <-r.done:
			return
		case msg := <-r.input:
			r.step(msg)
		}
	}
}

func (r *Reactor) step(msg Msg) {
	r.mu.Lock()
	next, out := React(r.state, msg, r.env, r.settings)
	r.state = next
	r.mu.Unlock()

	r.log.Trace("react", "msg", msg, "transmissions", len(out))
	for _, t := range out {
		r.output <- t
	}
}

func (r *Reactor) shutdown() {
	r.mu.Lock()
	if cid, ok := currentConnectionId(r.state); ok {
		r.env.CloseConnection(cid)
	}
	next, out := Shutdown(r.state)
	r.state = next
	r.mu.Unlock()
	for _, t := range out {
		r.output <- t
	}
}

// Close stops Run (if it hasn't already stopped via ctx) and marks the
// Reactor unusable. Safe to call more than once.
func (r *Reactor) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}

var errReactorClosed = reactorClosedError{}

type reactorClosedError struct{}

func (reactorClosedError) Error() string { return "esdriver: reactor closed" }
