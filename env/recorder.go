package env

import (
	"time"

	"github.com/google/uuid"

	"github.com/atsika/esdriver/wire"
)

// Invocation records a single effect call for assertions in tests.
type Invocation struct {
	Name     string
	EndPoint wire.EndPoint
	Node     wire.NodeEndPoints
}

// Recorder is a deterministic, scriptable Environment fake. Tests preload
// Ids and Elapsed, then assert against Calls after running a trace through
// the reactor.
type Recorder struct {
	Calls []Invocation

	Ids     []uuid.UUID // popped in order by GenerateID and Connect/ForceReconnect
	idIndex int

	Elapsed time.Duration

	Discovered int
	Closed     []ConnectionId
}

// NewRecorder builds a Recorder that hands out ids from the given list in order.
func NewRecorder(ids ...uuid.UUID) *Recorder {
	return &Recorder{Ids: ids}
}

func (r *Recorder) nextID() uuid.UUID {
	if r.idIndex >= len(r.Ids) {
		// Deterministic fallback so tests that don't care about the exact
		// id still get distinct, stable values.
		var id uuid.UUID
		id[0], id[1] = byte(r.idIndex>>8), byte(r.idIndex)
		r.idIndex++
		return id
	}
	id := r.Ids[r.idIndex]
	r.idIndex++
	return id
}

func (r *Recorder) Connect(ep wire.EndPoint) ConnectionId {
	r.Calls = append(r.Calls, Invocation{Name: "Connect", EndPoint: ep})
	return ConnectionId(r.nextID())
}

func (r *Recorder) CloseConnection(cid ConnectionId) {
	r.Calls = append(r.Calls, Invocation{Name: "CloseConnection"})
	r.Closed = append(r.Closed, cid)
}

func (r *Recorder) Discover() {
	r.Calls = append(r.Calls, Invocation{Name: "Discover"})
	r.Discovered++
}

func (r *Recorder) GenerateID() uuid.UUID {
	id := r.nextID()
	r.Calls = append(r.Calls, Invocation{Name: "GenerateID"})
	return id
}

func (r *Recorder) GetElapsedTime() time.Duration {
	return r.Elapsed
}

func (r *Recorder) ForceReconnect(correlation uuid.UUID, node wire.NodeEndPoints) ConnectionId {
	r.Calls = append(r.Calls, Invocation{Name: "ForceReconnect", Node: node})
	return ConnectionId(r.nextID())
}
