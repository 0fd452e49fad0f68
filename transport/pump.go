package transport

import (
	"context"

	esdriver "github.com/atsika/esdriver"
)

// Pump drains a Reactor's Output channel, turning Send Transmissions into
// socket writes on d and handing everything else (Recv, Ignored) to sink.
// It returns when ctx is cancelled or the Reactor's output channel closes,
// whichever comes first.
func (d *Dialer) Pump(ctx context.Context, r *esdriver.Reactor, sink func(esdriver.Transmission)) {
	out := r.Output()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-out:
			if !ok {
				return
			}
			switch tr := t.(type) {
			case esdriver.Send:
				if err := d.WriteActive(tr.Pkg); err != nil {
					d.log.Warn("send failed", "err", err)
				}
			default:
				if sink != nil {
					sink(t)
				}
			}
		}
	}
}
