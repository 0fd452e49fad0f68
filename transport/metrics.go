package transport

import "sync/atomic"

// Metrics tracks wire-level traffic for a Dialer. Mirrors the teacher's
// atomic-counter Metrics implementation (metrics.go), narrowed to the
// counters a framed TCP client actually needs.
type Metrics struct {
	packagesSent     int64
	packagesReceived int64
	bytesSent        int64
	bytesReceived    int64
	reconnects       int64
}

func (m *Metrics) incSent(n int)     { atomic.AddInt64(&m.packagesSent, 1); atomic.AddInt64(&m.bytesSent, int64(n)) }
func (m *Metrics) incReceived(n int) {
	atomic.AddInt64(&m.packagesReceived, 1)
	atomic.AddInt64(&m.bytesReceived, int64(n))
}
func (m *Metrics) incReconnect() { atomic.AddInt64(&m.reconnects, 1) }

// PackagesSent returns the number of packages written to the wire.
func (m *Metrics) PackagesSent() int64 { return atomic.LoadInt64(&m.packagesSent) }

// PackagesReceived returns the number of packages decoded off the wire.
func (m *Metrics) PackagesReceived() int64 { return atomic.LoadInt64(&m.packagesReceived) }

// BytesSent returns the total on-wire bytes written, per wire.FrameLen.
func (m *Metrics) BytesSent() int64 { return atomic.LoadInt64(&m.bytesSent) }

// BytesReceived returns the total on-wire bytes read, per wire.FrameLen.
func (m *Metrics) BytesReceived() int64 { return atomic.LoadInt64(&m.bytesReceived) }

// Reconnects returns the number of times ForceReconnect has fired.
func (m *Metrics) Reconnects() int64 { return atomic.LoadInt64(&m.reconnects) }
