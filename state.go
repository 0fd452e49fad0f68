// Package esdriver implements the connection driver core: a
// single-threaded, event-driven state machine mediating between
// user-initiated operation requests and a framed request/response
// protocol spoken over a TCP connection to an EventStore cluster node.
//
// The package's mutable objects are Reactor and the registry held by an
// Active stage; the transition function itself, React, is a function of
// (DriverState, Msg) plus the injected Environment effects, returning a new
// DriverState and the Transmissions to emit. It updates an Active stage's
// registry in place.
package esdriver

import (
	"time"

	"github.com/google/uuid"

	"github.com/atsika/esdriver/env"
	"github.com/atsika/esdriver/registry"
	"github.com/atsika/esdriver/wire"
)

// DriverState is the sum of the four states described in §3: Init,
// Awaiting, Connected, Closed. It is a discriminated union rendered as an
// interface with an unexported marker method, the idiomatic Go stand-in
// for a tagged union (see Design Notes §9).
type DriverState interface {
	isDriverState()
}

// Init is the state before any message has been processed.
type Init struct{}

func (Init) isDriverState() {}

// Awaiting is the state with no live session: user submissions queue in
// Pending while connection setup (Connecting) proceeds.
type Awaiting struct {
	Pending    []wire.Package
	Connecting ConnectingStage
}

func (Awaiting) isDriverState() {}

// Connected is the state once a TCP session is bound to Cid.
type Connected struct {
	Cid   env.ConnectionId
	Stage ConnectedStage
}

func (Connected) isDriverState() {}

// Closed is the terminal state.
type Closed struct{}

func (Closed) isDriverState() {}

// ConnectingStage distinguishes the phases of acquiring a TCP session
// before a DriverState reaches Connected.
type ConnectingStage interface {
	isConnectingStage()
}

// Reconnecting means discovery has not yet started.
type Reconnecting struct{}

func (Reconnecting) isConnectingStage() {}

// EndpointDiscovery means discovery is in flight.
type EndpointDiscovery struct{}

func (EndpointDiscovery) isConnectingStage() {}

// ConnectionEstablishing means a TCP socket is opening against Cid.
type ConnectionEstablishing struct {
	Cid env.ConnectionId
}

func (ConnectionEstablishing) isConnectingStage() {}

// ConnectedStage distinguishes the handshake phase from steady state once
// a DriverState reaches Connected.
type ConnectedStage interface {
	isConnectedStage()
}

// HandshakeKind names which handshake step a Confirming stage is waiting on.
type HandshakeKind int

const (
	Authentication HandshakeKind = iota
	Identification
)

func (k HandshakeKind) String() string {
	if k == Authentication {
		return "Authentication"
	}
	return "Identification"
}

// Confirming is the handshake stage: Correlation identifies the single
// outstanding handshake package; Pending holds user submissions queued
// before the handshake completes.
type Confirming struct {
	Pending     []wire.Package
	Started     time.Duration
	Correlation uuid.UUID
	Which       HandshakeKind
}

func (Confirming) isConnectedStage() {}

// Active is steady state: user packages are registered in Reg and
// exchanged freely.
type Active struct {
	Reg *registry.Reg
}

func (Active) isConnectedStage() {}
