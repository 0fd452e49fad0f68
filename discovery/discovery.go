// Package discovery provides the cluster-node discovery collaborator the
// driver treats as an external dependency (§1, §4.2). Real DNS/gossip
// discovery is out of scope; this package supplies just enough of a
// concrete implementation to drive the reactor end to end.
package discovery

import (
	"sync"

	"github.com/atsika/esdriver/wire"
)

// Discoverer resolves the next candidate endpoint to connect to.
type Discoverer interface {
	Next() wire.EndPoint
}

// StaticDiscoverer round-robins over a fixed endpoint list, the simplest
// possible stand-in for DNS/gossip-based discovery.
type StaticDiscoverer struct {
	mu        sync.Mutex
	endpoints []wire.EndPoint
	next      int
}

// NewStatic builds a StaticDiscoverer over the given endpoints. Panics if
// endpoints is empty, mirroring misconfiguration being a programmer error.
func NewStatic(endpoints ...wire.EndPoint) *StaticDiscoverer {
	if len(endpoints) == 0 {
		panic("discovery: NewStatic requires at least one endpoint")
	}
	return &StaticDiscoverer{endpoints: endpoints}
}

// Next returns the next endpoint in round-robin order.
func (s *StaticDiscoverer) Next() wire.EndPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	ep := s.endpoints[s.next]
	s.next = (s.next + 1) % len(s.endpoints)
	return ep
}
