package esdriver

import (
	"github.com/atsika/esdriver/env"
	"github.com/atsika/esdriver/settings"
	"github.com/atsika/esdriver/wire"
)

// Reseed re-seeds the reactor after a transport failure (socket closed,
// read error) or a stuck handshake timeout — neither of which is a Msg in
// spec.md's input alphabet. Per §7, the environment is expected to replace
// the state with an Awaiting(pending, ...) built from the registry's
// surviving requests, applying the same retry filter as §4.4.2's survivor
// selection, then kick off a fresh discovery cycle.
//
// Callers are the transport layer, from its own dial/read goroutines (on
// connection loss), and a Supervisor, from its own polling goroutine (on a
// stuck Confirming stage, per §4.5) — neither runs on Run's goroutine.
// Reseed is safe to call concurrently with Run because it takes r.mu for
// the same state it mutates, exactly like step; it releases the lock
// before sending to r.output, so a full output channel blocks only the
// caller of Reseed, never Run or State.
func (r *Reactor) Reseed() {
	r.mu.Lock()

	pending, out := reseedPending(r.state, r.settings, r.env)
	if cid, ok := currentConnectionId(r.state); ok {
		r.env.CloseConnection(cid)
	}

	r.env.Discover()
	r.state = Awaiting{Pending: pending, Connecting: EndpointDiscovery{}}

	r.mu.Unlock()

	for _, t := range out {
		r.output <- t
	}
}

func currentConnectionId(state DriverState) (env.ConnectionId, bool) {
	c, ok := state.(Connected)
	if !ok {
		return env.ConnectionId{}, false
	}
	return c.Cid, true
}

func reseedPending(state DriverState, cfg *settings.Settings, e env.Environment) ([]wire.Package, []Transmission) {
	c, ok := state.(Connected)
	if !ok {
		return nil, nil
	}
	switch stage := c.Stage.(type) {
	case Confirming:
		return append([]wire.Package{}, stage.Pending...), nil
	case Active:
		var pending []wire.Package
		var out []Transmission
		for _, exc := range stage.Reg.Elems() {
			if cfg.OperationRetry.MaxRetryReached(exc.RetryCount) {
				out = append(out, recvErr(BadNews{Correlation: exc.Request.Correlation, Err: Aborted{}}))
				continue
			}
			survivor, rekeyed := carryOverSurvivor(exc.Request, cfg, e)
			pending = append(pending, survivor)
			out = append(out, rekeyed...)
		}
		return pending, out
	default:
		return nil, nil
	}
}
