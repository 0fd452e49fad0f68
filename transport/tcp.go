// Package transport provides a concrete env.Environment over net.Dial TCP
// sockets: it dials the driver's discovered endpoints, frames/deframes
// wire.Packages, and feeds the reactor's input channel as reads complete.
package transport

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	esdriver "github.com/atsika/esdriver"
	"github.com/atsika/esdriver/discovery"
	"github.com/atsika/esdriver/env"
	"github.com/atsika/esdriver/wire"
)

// maxPackageSize bounds a single frame so a corrupt length prefix can't
// exhaust memory.
const maxPackageSize = 16 * 1024 * 1024

// Dialer implements env.Environment over real TCP sockets. It must be
// Attach()ed to the Reactor it serves before Run is called, since the
// effects it implements need somewhere to deliver their eventual
// completions (ConnectionEstablished, PackageArrived).
type Dialer struct {
	discoverer  discovery.Discoverer
	log         hclog.Logger
	secure      bool
	dialTimeout time.Duration
	start       time.Time
	backoff     *adaptiveBackoff
	metrics     *Metrics

	mu      sync.Mutex
	reactor *esdriver.Reactor
	conns   map[env.ConnectionId]*tcpConn
	active  env.ConnectionId
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Dialer.
type Option func(*Dialer)

// WithSecure enables a Noise NN handshake on every dialed socket before
// the driver's own Authenticate/IdentifyClient handshake begins.
func WithSecure() Option { return func(d *Dialer) { d.secure = true } }

// WithDialTimeout bounds how long a single dial attempt may take.
func WithDialTimeout(t time.Duration) Option {
	return func(d *Dialer) {
		if t > 0 {
			d.dialTimeout = t
		}
	}
}

// WithLogger attaches a logger; defaults to a null logger.
func WithLogger(log hclog.Logger) Option {
	return func(d *Dialer) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDialer builds a Dialer. Call Attach with the Reactor that will
// consume its effects before starting the reactor's Run loop.
func NewDialer(disc discovery.Discoverer, opts ...Option) *Dialer {
	d := &Dialer{
		discoverer:  disc,
		log:         hclog.NewNullLogger(),
		dialTimeout: 10 * time.Second,
		start:       time.Now(),
		backoff:     newAdaptiveBackoff(DefaultFastBackoff, DefaultSteadyBackoff),
		conns:       make(map[env.ConnectionId]*tcpConn),
		metrics:     &Metrics{},
	}
	for _, o := range opts {
		o(d)
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d
}

// Metrics returns the Dialer's traffic counters.
func (d *Dialer) Metrics() *Metrics { return d.metrics }

// Attach binds the Dialer to the Reactor whose effects it implements.
func (d *Dialer) Attach(r *esdriver.Reactor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reactor = r
}

// Close tears down every open connection and stops background dial goroutines.
func (d *Dialer) Close() {
	d.cancel()
	d.mu.Lock()
	conns := make([]*tcpConn, 0, len(d.conns))
	for _, c := range d.conns {
		conns = append(conns, c)
	}
	d.mu.Unlock()
	for _, c := range conns {
		_ = c.conn.Close()
	}
	d.wg.Wait()
}

// tcpConn is one dialed socket plus its framing reader.
type tcpConn struct {
	id      env.ConnectionId
	conn    net.Conn
	secure  *secureSession
	reader  *bufio.Reader
}

// Connect implements env.Environment. It mints a ConnectionId immediately
// and dials ep in the background; success arrives later as a
// ConnectionEstablished Msg submitted to the attached Reactor.
func (d *Dialer) Connect(ep wire.EndPoint) env.ConnectionId {
	cid := env.ConnectionId(uuid.New())
	d.wg.Add(1)
	go d.dial(cid, ep)
	return cid
}

func (d *Dialer) dial(cid env.ConnectionId, ep wire.EndPoint) {
	defer d.wg.Done()

	raw, err := net.DialTimeout("tcp", ep.String(), d.dialTimeout)
	if err != nil {
		d.log.Warn("dial failed", "endpoint", ep.String(), "err", err)
		d.reseedAfterFailure()
		return
	}

	tc := &tcpConn{id: cid, conn: raw, reader: bufio.NewReader(raw)}
	if d.secure {
		sess, err := newSecureSession(raw, true)
		if err != nil {
			d.log.Warn("noise handshake failed", "endpoint", ep.String(), "err", err)
			_ = raw.Close()
			d.reseedAfterFailure()
			return
		}
		tc.secure = sess
	}

	d.mu.Lock()
	d.conns[cid] = tc
	d.active = cid
	reactor := d.reactor
	d.mu.Unlock()

	d.backoff.reset()
	d.log.Info("connected", "endpoint", ep.String(), "cid", cid.String())

	if reactor != nil {
		_ = reactor.Submit(d.ctx, esdriver.ConnectionEstablished{Cid: cid})
	}

	d.wg.Add(1)
	go d.readLoop(tc)
}

func (d *Dialer) readLoop(tc *tcpConn) {
	defer d.wg.Done()
	for {
		pkg, err := d.readPackage(tc)
		if err != nil {
			if err != io.EOF {
				d.log.Warn("read error", "cid", tc.id.String(), "err", err)
			}
			d.forgetConn(tc.id)
			d.reseedAfterFailure()
			return
		}

		d.metrics.incReceived(wire.FrameLen(pkg))

		d.mu.Lock()
		reactor := d.reactor
		d.mu.Unlock()
		if reactor != nil {
			_ = reactor.Submit(d.ctx, esdriver.PackageArrived{Cid: tc.id, Pkg: pkg})
		}
	}
}

func (d *Dialer) readPackage(tc *tcpConn) (wire.Package, error) {
	if tc.secure != nil {
		plaintext, err := tc.secure.Read()
		if err != nil {
			return wire.Package{}, err
		}
		return wire.Decode(plaintext)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(tc.reader, lenBuf[:]); err != nil {
		return wire.Package{}, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxPackageSize {
		return wire.Package{}, io.ErrShortBuffer
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(tc.reader, body); err != nil {
		return wire.Package{}, err
	}
	full := make([]byte, 4+len(body))
	copy(full[:4], lenBuf[:])
	copy(full[4:], body)
	return wire.Decode(full)
}

// Write sends pkg over the connection identified by cid.
func (d *Dialer) Write(cid env.ConnectionId, pkg wire.Package) error {
	d.mu.Lock()
	tc, ok := d.conns[cid]
	d.mu.Unlock()
	if !ok {
		return net.ErrClosed
	}
	d.metrics.incSent(wire.FrameLen(pkg))
	if tc.secure != nil {
		_, err := tc.secure.Write(wire.Encode(pkg))
		return err
	}
	_, err := tc.conn.Write(wire.Encode(pkg))
	return err
}

// WriteActive sends pkg over whichever connection was most recently dialed
// successfully. The reactor only ever has one live connection at a time,
// so its own Connected.Cid always matches this; Pump uses it to turn a Send
// Transmission into a socket write without needing the reactor to thread
// a ConnectionId through wire.Package itself.
func (d *Dialer) WriteActive(pkg wire.Package) error {
	d.mu.Lock()
	cid := d.active
	d.mu.Unlock()
	return d.Write(cid, pkg)
}

func (d *Dialer) forgetConn(cid env.ConnectionId) {
	d.mu.Lock()
	delete(d.conns, cid)
	if d.active == cid {
		d.active = env.ConnectionId{}
	}
	d.mu.Unlock()
}

func (d *Dialer) reseedAfterFailure() {
	d.mu.Lock()
	reactor := d.reactor
	d.mu.Unlock()
	if reactor == nil {
		return
	}
	d.backoff.wait()
	reactor.Reseed()
}

// CloseConnection implements env.Environment.
func (d *Dialer) CloseConnection(cid env.ConnectionId) {
	d.mu.Lock()
	tc, ok := d.conns[cid]
	delete(d.conns, cid)
	if d.active == cid {
		d.active = env.ConnectionId{}
	}
	d.mu.Unlock()
	if ok {
		_ = tc.conn.Close()
	}
}

// Discover implements env.Environment by picking the next endpoint from
// the configured Discoverer and submitting it as an EstablishConnection Msg.
func (d *Dialer) Discover() {
	d.mu.Lock()
	reactor := d.reactor
	d.mu.Unlock()
	if reactor == nil {
		return
	}
	ep := d.discoverer.Next()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = reactor.Submit(d.ctx, esdriver.EstablishConnection{EndPoint: ep})
	}()
}

// GenerateID implements env.Environment.
func (d *Dialer) GenerateID() uuid.UUID { return uuid.New() }

// GetElapsedTime implements env.Environment.
func (d *Dialer) GetElapsedTime() time.Duration { return time.Since(d.start) }

// ForceReconnect implements env.Environment: it closes every open
// connection and dials the redirection target.
func (d *Dialer) ForceReconnect(correlation uuid.UUID, node wire.NodeEndPoints) env.ConnectionId {
	d.metrics.incReconnect()
	d.mu.Lock()
	for cid, tc := range d.conns {
		_ = tc.conn.Close()
		delete(d.conns, cid)
	}
	d.mu.Unlock()

	return d.Connect(node.TCP)
}
