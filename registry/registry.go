// Package registry implements the correlation registry (§4.3): a map from
// correlation UUID to Exchange, owned exclusively by the reactor. Lookup
// and delete are combined into one call, RemoveAndGet; over Go's built-in
// map it is a lookup followed by a delete, so the key is hashed twice.
package registry

import (
	"time"

	"github.com/google/uuid"

	"github.com/atsika/esdriver/wire"
)

// Exchange tracks one outstanding request.
type Exchange struct {
	Request    wire.Package
	RetryCount int
	Started    time.Duration
}

// Reg is the correlation registry. The zero value is ready to use.
type Reg struct {
	m map[uuid.UUID]Exchange
}

// New returns an empty registry.
func New() *Reg {
	return &Reg{m: make(map[uuid.UUID]Exchange)}
}

// Insert adds or overwrites the exchange for id.
func (r *Reg) Insert(id uuid.UUID, exc Exchange) {
	if r.m == nil {
		r.m = make(map[uuid.UUID]Exchange)
	}
	r.m[id] = exc
}

// RemoveAndGet deletes id from the registry and returns its exchange, if any.
func (r *Reg) RemoveAndGet(id uuid.UUID) (Exchange, bool) {
	exc, ok := r.m[id]
	if ok {
		delete(r.m, id)
	}
	return exc, ok
}

// Elems returns every exchange currently registered, in unspecified order.
func (r *Reg) Elems() []Exchange {
	out := make([]Exchange, 0, len(r.m))
	for _, e := range r.m {
		out = append(out, e)
	}
	return out
}

// Size returns the number of outstanding exchanges.
func (r *Reg) Size() int {
	return len(r.m)
}
