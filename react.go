package esdriver

import (
	"github.com/atsika/esdriver/env"
	"github.com/atsika/esdriver/registry"
	"github.com/atsika/esdriver/settings"
	"github.com/atsika/esdriver/wire"
)

// React is the reactor's pure transition function:
//
//	react : (DriverState, Msg) -> (DriverState, [Transmission])
//
// modulo the small set of synchronous effects it invokes on e along the
// way (§4.2). It never blocks and never retains goroutine-local state; all
// state lives in the returned DriverState. In the Active stage the registry
// is updated in place, so the state passed in shares it with the state
// returned.
func React(state DriverState, msg Msg, e env.Environment, cfg *settings.Settings) (DriverState, []Transmission) {
	switch st := state.(type) {
	case Init:
		return reactInit(msg, e)
	case Awaiting:
		return reactAwaiting(st, msg, e, cfg)
	case Connected:
		return reactConnected(st, msg, e, cfg)
	case Closed:
		return reactClosed(msg)
	default:
		return state, nil
	}
}

func reactInit(msg Msg, e env.Environment) (DriverState, []Transmission) {
	switch m := msg.(type) {
	case SystemInit:
		e.Discover()
		return Awaiting{Connecting: EndpointDiscovery{}}, nil
	case SendPackage:
		e.Discover()
		return Awaiting{Pending: []wire.Package{m.Pkg}, Connecting: Reconnecting{}}, nil
	default:
		return Init{}, nil
	}
}

func reactAwaiting(st Awaiting, msg Msg, e env.Environment, cfg *settings.Settings) (DriverState, []Transmission) {
	switch m := msg.(type) {
	case SendPackage:
		return Awaiting{Pending: append(append([]wire.Package{}, st.Pending...), m.Pkg), Connecting: st.Connecting}, nil

	case EstablishConnection:
		if _, ok := st.Connecting.(EndpointDiscovery); !ok {
			return st, nil
		}
		cid := e.Connect(m.EndPoint)
		return Awaiting{Pending: st.Pending, Connecting: ConnectionEstablishing{Cid: cid}}, nil

	case ConnectionEstablished:
		stage, ok := st.Connecting.(ConnectionEstablishing)
		if !ok || stage.Cid != m.Cid {
			return st, nil
		}
		now := e.GetElapsedTime()
		if cfg.DefaultUserCredentials != nil {
			u := e.GenerateID()
			pkg := buildAuthenticate(u, *cfg.DefaultUserCredentials)
			return Connected{
				Cid: m.Cid,
				Stage: Confirming{
					Pending:     st.Pending,
					Started:     now,
					Correlation: u,
					Which:       Authentication,
				},
			}, []Transmission{Send{Pkg: pkg}}
		}
		u := e.GenerateID()
		pkg := buildIdentifyClient(u, cfg)
		return Connected{
			Cid: m.Cid,
			Stage: Confirming{
				Pending:     st.Pending,
				Started:     now,
				Correlation: u,
				Which:       Identification,
			},
		}, []Transmission{Send{Pkg: pkg}}

	case PackageArrived:
		return st, []Transmission{Ignored{Pkg: m.Pkg}}

	default:
		return st, nil
	}
}

func reactConnected(st Connected, msg Msg, e env.Environment, cfg *settings.Settings) (DriverState, []Transmission) {
	arrived, isArrival := msg.(PackageArrived)
	if isArrival && arrived.Cid != st.Cid {
		return st, []Transmission{Ignored{Pkg: arrived.Pkg}}
	}

	if isArrival {
		switch arrived.Pkg.Cmd {
		case wire.HeartbeatRequest:
			resp := wire.New(wire.HeartbeatResponse, arrived.Pkg.Correlation, nil)
			return st, []Transmission{Send{Pkg: resp}}
		case wire.HeartbeatResponse:
			return st, nil
		}
	}

	switch stage := st.Stage.(type) {
	case Confirming:
		return reactConfirming(st.Cid, stage, msg, e, cfg)
	case Active:
		return reactActive(st.Cid, stage, msg, e, cfg)
	default:
		return st, nil
	}
}

func reactConfirming(cid env.ConnectionId, stage Confirming, msg Msg, e env.Environment, cfg *settings.Settings) (DriverState, []Transmission) {
	switch m := msg.(type) {
	case SendPackage:
		pending := append(append([]wire.Package{}, stage.Pending...), m.Pkg)
		return Connected{Cid: cid, Stage: Confirming{
			Pending: pending, Started: stage.Started, Correlation: stage.Correlation, Which: stage.Which,
		}}, nil

	case PackageArrived:
		if m.Pkg.Correlation != stage.Correlation {
			return Connected{Cid: cid, Stage: stage}, nil
		}

		if stage.Which == Authentication && (m.Pkg.Cmd == wire.Authenticated || m.Pkg.Cmd == wire.NotAuthenticated) {
			now := e.GetElapsedTime()
			u := e.GenerateID()
			idPkg := buildIdentifyClient(u, cfg)
			return Connected{Cid: cid, Stage: Confirming{
				Pending: stage.Pending, Started: now, Correlation: u, Which: Identification,
			}}, []Transmission{Send{Pkg: idPkg}}
		}

		if stage.Which == Identification && m.Pkg.Cmd == wire.ClientIdentified {
			reg, sends := drain(stage.Pending, e)
			return Connected{Cid: cid, Stage: Active{Reg: reg}}, sends
		}

		return Connected{Cid: cid, Stage: stage}, []Transmission{Ignored{Pkg: m.Pkg}}

	default:
		return Connected{Cid: cid, Stage: stage}, nil
	}
}

func reactActive(cid env.ConnectionId, stage Active, msg Msg, e env.Environment, cfg *settings.Settings) (DriverState, []Transmission) {
	switch m := msg.(type) {
	case SendPackage:
		stage.Reg.Insert(m.Pkg.Correlation, registry.Exchange{
			Request: m.Pkg,
			Started: e.GetElapsedTime(),
		})
		return Connected{Cid: cid, Stage: stage}, []Transmission{Send{Pkg: m.Pkg}}

	case PackageArrived:
		exc, ok := stage.Reg.RemoveAndGet(m.Pkg.Correlation)
		if !ok {
			return Connected{Cid: cid, Stage: stage}, []Transmission{Ignored{Pkg: m.Pkg}}
		}

		switch m.Pkg.Cmd {
		case wire.BadRequest:
			return Connected{Cid: cid, Stage: stage}, []Transmission{recvErr(BadNews{
				Correlation: m.Pkg.Correlation,
				Err:         ServerError{Reason: string(m.Pkg.Payload)},
			})}

		case wire.NotAuthenticated:
			return Connected{Cid: cid, Stage: stage}, []Transmission{recvErr(BadNews{
				Correlation: m.Pkg.Correlation,
				Err:         NotAuthenticatedOp{},
			})}

		case wire.NotHandled:
			return reactNotHandled(cid, stage, m.Pkg, exc, e, cfg)

		default:
			return Connected{Cid: cid, Stage: stage}, []Transmission{recvOk(m.Pkg)}
		}

	default:
		return Connected{Cid: cid, Stage: stage}, nil
	}
}

func reactNotHandled(cid env.ConnectionId, stage Active, pkg wire.Package, exc registry.Exchange, e env.Environment, cfg *settings.Settings) (DriverState, []Transmission) {
	info, err := wire.DecodeNotHandled(pkg.Payload)
	if err != nil || info.Reason != wire.NotMaster {
		// Malformed or non-master NotHandled: generic retry branch (§7).
		if cfg.OperationRetry.MaxRetryReached(exc.RetryCount) {
			return Connected{Cid: cid, Stage: stage}, []Transmission{recvErr(BadNews{
				Correlation: pkg.Correlation,
				Err:         Aborted{},
			})}
		}
		exc.RetryCount++
		stage.Reg.Insert(pkg.Correlation, exc)
		return Connected{Cid: cid, Stage: stage}, []Transmission{Send{Pkg: exc.Request}}
	}

	node := *info.Node
	newCid := e.ForceReconnect(pkg.Correlation, node)

	primary, out := carryOverSurvivor(exc.Request, cfg, e)
	pending := []wire.Package{primary}
	for _, other := range stage.Reg.Elems() {
		if cfg.OperationRetry.MaxRetryReached(other.RetryCount) {
			out = append(out, recvErr(BadNews{
				Correlation: other.Request.Correlation,
				Err:         Aborted{},
			}))
			continue
		}
		survivor, rekeyed := carryOverSurvivor(other.Request, cfg, e)
		pending = append(pending, survivor)
		out = append(out, rekeyed...)
	}

	newState := Awaiting{Pending: pending, Connecting: ConnectionEstablishing{Cid: newCid}}
	return newState, out
}

// carryOverSurvivor prepares a pending exchange's request for resubmission
// after a forced reconnect. When PreserveCorrelationsOnReconnect is true
// (the default) the request is carried over unchanged. Otherwise it's
// rekeyed under a fresh correlation id and a Rekeyed Transmission is
// returned so the caller can retarget its own bookkeeping.
func carryOverSurvivor(req wire.Package, cfg *settings.Settings, e env.Environment) (wire.Package, []Transmission) {
	if cfg.PreserveCorrelationsOnReconnect {
		return req, nil
	}
	old := req.Correlation
	req.Correlation = e.GenerateID()
	return req, []Transmission{Rekeyed{Old: old, New: req.Correlation}}
}

// drain builds a fresh registry from pending submissions, preserving
// ordering, per §4.4.1.
func drain(pending []wire.Package, e env.Environment) (*registry.Reg, []Transmission) {
	reg := registry.New()
	sends := make([]Transmission, 0, len(pending))
	now := e.GetElapsedTime()
	for _, pkg := range pending {
		reg.Insert(pkg.Correlation, registry.Exchange{Request: pkg, Started: now})
		sends = append(sends, Send{Pkg: pkg})
	}
	return reg, sends
}

func reactClosed(msg Msg) (DriverState, []Transmission) {
	if m, ok := msg.(SendPackage); ok {
		return Closed{}, []Transmission{recvErr(BadNews{
			Correlation: m.Pkg.Correlation,
			Err:         Aborted{},
		})}
	}
	return Closed{}, nil
}

// Shutdown transitions any state to Closed, draining every in-flight
// exchange known to the registry as Recv(Err(Aborted)) first (§5
// Cancellation). It is invoked by the owning Reactor, not delivered as a Msg,
// since spec.md's Msg set has no shutdown message of its own.
func Shutdown(state DriverState) (DriverState, []Transmission) {
	active, ok := connectedActive(state)
	if !ok {
		return Closed{}, nil
	}
	elems := active.Reg.Elems()
	out := make([]Transmission, 0, len(elems))
	for _, exc := range elems {
		out = append(out, recvErr(BadNews{Correlation: exc.Request.Correlation, Err: Aborted{}}))
	}
	return Closed{}, out
}

func connectedActive(state DriverState) (Active, bool) {
	c, ok := state.(Connected)
	if !ok {
		return Active{}, false
	}
	a, ok := c.Stage.(Active)
	return a, ok
}
