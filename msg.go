package esdriver

import (
	"github.com/atsika/esdriver/env"
	"github.com/atsika/esdriver/wire"
)

// Msg is the reactor's input alphabet.
type Msg interface {
	isMsg()
}

// SystemInit boots the reactor: it's the first Msg a fresh Reactor should process.
type SystemInit struct{}

func (SystemInit) isMsg() {}

// EstablishConnection carries a discovery result.
type EstablishConnection struct {
	EndPoint wire.EndPoint
}

func (EstablishConnection) isMsg() {}

// ConnectionEstablished signals the TCP socket for Cid is up.
type ConnectionEstablished struct {
	Cid env.ConnectionId
}

func (ConnectionEstablished) isMsg() {}

// PackageArrived carries a Package read from the socket for connection Cid.
type PackageArrived struct {
	Cid env.ConnectionId
	Pkg wire.Package
}

func (PackageArrived) isMsg() {}

// SendPackage is a user-initiated submission.
type SendPackage struct {
	Pkg wire.Package
}

func (SendPackage) isMsg() {}
