package esdriver

import (
	"github.com/google/uuid"

	"github.com/atsika/esdriver/wire"
)

// Transmission is the reactor's output alphabet.
type Transmission interface {
	isTransmission()
}

// Send asks the I/O layer to frame and write Pkg to the socket.
type Send struct{ Pkg wire.Package }

func (Send) isTransmission() {}

// Rekeyed reports that a survivor exchange was resent under a fresh
// correlation id after a forced reconnect, because
// Settings.PreserveCorrelationsOnReconnect is false. Callers that tracked
// the exchange under Old must retarget their bookkeeping to New to observe
// its eventual Recv.
type Rekeyed struct {
	Old uuid.UUID
	New uuid.UUID
}

func (Rekeyed) isTransmission() {}

// Ignored reports a received package with no matching exchange, or one
// belonging to a stale connection. Purely informational.
type Ignored struct{ Pkg wire.Package }

func (Ignored) isTransmission() {}

// Recv delivers a completed exchange's result to the caller that submitted
// it. Exactly one of Pkg/Err is meaningful, mirroring Result<Package, BadNews>.
type Recv struct {
	Pkg *wire.Package
	Err *BadNews
}

func (Recv) isTransmission() {}

// Ok reports whether this Recv carries a successful result.
func (r Recv) Ok() bool { return r.Err == nil }

func recvOk(p wire.Package) Recv { return Recv{Pkg: &p} }
func recvErr(b BadNews) Recv     { return Recv{Err: &b} }
