package env

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/atsika/esdriver/wire"
)

// Instrumented wraps an Environment and logs its effect invocations.
// Mirrors the teacher's metricsDriver decorator: same interface, one field
// added, every method forwards; all but GetElapsedTime also report.
type Instrumented struct {
	Environment
	log hclog.Logger
}

// NewInstrumented wraps env so effect calls are logged: ForceReconnect at
// warn level, GetElapsedTime not at all, every other effect at trace level.
func NewInstrumented(e Environment, log hclog.Logger) *Instrumented {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Instrumented{Environment: e, log: log}
}

func (i *Instrumented) Connect(ep wire.EndPoint) ConnectionId {
	cid := i.Environment.Connect(ep)
	i.log.Trace("connect", "endpoint", ep.String(), "cid", cid.String())
	return cid
}

func (i *Instrumented) CloseConnection(cid ConnectionId) {
	i.log.Trace("close-connection", "cid", cid.String())
	i.Environment.CloseConnection(cid)
}

func (i *Instrumented) Discover() {
	i.log.Trace("discover")
	i.Environment.Discover()
}

func (i *Instrumented) GenerateID() uuid.UUID {
	id := i.Environment.GenerateID()
	i.log.Trace("generate-id", "id", id.String())
	return id
}

func (i *Instrumented) GetElapsedTime() time.Duration {
	return i.Environment.GetElapsedTime()
}

func (i *Instrumented) ForceReconnect(correlation uuid.UUID, node wire.NodeEndPoints) ConnectionId {
	cid := i.Environment.ForceReconnect(correlation, node)
	i.log.Warn("force-reconnect", "correlation", correlation.String(), "node", node.TCP.String(), "cid", cid.String())
	return cid
}
