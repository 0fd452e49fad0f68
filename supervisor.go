package esdriver

import (
	"context"
	"time"
)

// Supervisor periodically checks for a Confirming stage stuck past
// Timeout and re-seeds the reactor when it finds one. The reactor itself
// performs no implicit timeouts (§4.5); this is the "outer layer" the spec
// leaves unspecified.
type Supervisor struct {
	Reactor *Reactor
	Timeout time.Duration
	Poll    time.Duration
}

// NewSupervisor builds a Supervisor with a sensible poll interval.
func NewSupervisor(r *Reactor, timeout time.Duration) *Supervisor {
	poll := timeout / 4
	if poll <= 0 {
		poll = time.Second
	}
	return &Supervisor{Reactor: r, Timeout: timeout, Poll: poll}
}

// Run blocks until ctx is cancelled, polling the reactor's state and
// re-seeding it if a handshake has been stuck in Confirming for longer
// than Timeout.
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkOnce()
		}
	}
}

func (s *Supervisor) checkOnce() {
	state := s.Reactor.State()
	c, ok := state.(Connected)
	if !ok {
		return
	}
	confirming, ok := c.Stage.(Confirming)
	if !ok {
		return
	}
	now := s.Reactor.env.GetElapsedTime()
	if now-confirming.Started >= s.Timeout {
		s.Reactor.log.Warn("handshake stuck, reseeding", "which", confirming.Which.String())
		s.Reactor.Reseed()
	}
}
