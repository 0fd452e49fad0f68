// Package env defines the abstract effects the driver reactor invokes on
// its surroundings: connecting sockets, discovering cluster endpoints,
// minting identifiers, and reading the clock. Production code satisfies
// this with real sockets; tests satisfy it with a deterministic recorder.
package env

import (
	"time"

	"github.com/google/uuid"

	"github.com/atsika/esdriver/wire"
)

// ConnectionId is an opaque handle minted when a TCP connection is
// established. Packages bearing a stale ConnectionId are ignored by the
// reactor rather than mutating state.
type ConnectionId uuid.UUID

func (c ConnectionId) String() string { return uuid.UUID(c).String() }

// Environment is the full set of effects the reactor may invoke. Every
// method is assumed synchronous and infallible from the reactor's point of
// view: transport errors surface later as Msgs, not as returned errors
// here (Connect/ForceReconnect mint an id optimistically; failures to
// actually dial arrive as a fresh discovery cycle).
type Environment interface {
	// Connect opens a TCP connection to ep and returns its id.
	Connect(ep wire.EndPoint) ConnectionId
	// CloseConnection closes the connection identified by cid. The reactor
	// calls it once for the connection of a Connected state when it
	// re-seeds or shuts down. The socket replaced by ForceReconnect is
	// closed by ForceReconnect itself, and a connection still in
	// ConnectionEstablishing is not closed through this method.
	CloseConnection(cid ConnectionId)
	// Discover kicks off asynchronous endpoint discovery. Completion
	// arrives later as an EstablishConnection Msg on the reactor's input.
	Discover()
	// GenerateID returns a fresh correlation/connection identifier.
	GenerateID() uuid.UUID
	// GetElapsedTime returns monotonic elapsed time since the driver started.
	GetElapsedTime() time.Duration
	// ForceReconnect closes the current socket and opens a new one to the
	// master indicated by node, returning the new connection id.
	ForceReconnect(correlation uuid.UUID, node wire.NodeEndPoints) ConnectionId
}
