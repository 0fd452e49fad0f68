package esdriver_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	esdriver "github.com/atsika/esdriver"
	"github.com/atsika/esdriver/env"
	"github.com/atsika/esdriver/settings"
)

// TestSupervisorReseedsStuckHandshake drives a Reactor into Confirming,
// advances the Recorder's clock past the timeout without ever delivering
// the handshake reply, and checks the Supervisor's poll loop re-seeds it
// per §4.5's "outer layer may inject a synthetic Msg" allowance.
func TestSupervisorReseedsStuckHandshake(t *testing.T) {
	connCid := uuid.New()
	identCorr := uuid.New()
	rec := env.NewRecorder(connCid, identCorr)
	cfg := settings.Default()

	r := esdriver.NewReactor(rec, cfg, nil, 8, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	require.NoError(t, r.Submit(ctx, esdriver.SystemInit{}))
	require.NoError(t, r.Submit(ctx, esdriver.EstablishConnection{EndPoint: ep}))
	require.NoError(t, r.Submit(ctx, esdriver.ConnectionEstablished{Cid: env.ConnectionId(connCid)}))
	drainOne(t, r.Output())
	require.Eventually(t, func() bool {
		c, ok := r.State().(esdriver.Connected)
		if !ok {
			return false
		}
		_, ok = c.Stage.(esdriver.Confirming)
		return ok
	}, time.Second, time.Millisecond)

	rec.Elapsed = time.Minute

	sup := esdriver.NewSupervisor(r, 5*time.Second)
	go sup.Run(ctx)

	require.Eventually(t, func() bool {
		aw, ok := r.State().(esdriver.Awaiting)
		if !ok {
			return false
		}
		_, ok = aw.Connecting.(esdriver.EndpointDiscovery)
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	require.GreaterOrEqual(t, rec.Discovered, 2)
}
