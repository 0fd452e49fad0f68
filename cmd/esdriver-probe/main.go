// Command esdriver-probe dials a single EventStore node, runs the
// connection/authentication handshake to completion, and logs every Recv
// and Ignored Transmission the reactor emits until interrupted. It exists to exercise
// the driver end to end against a real socket, the way azurl exercised a
// real storage account.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	esdriver "github.com/atsika/esdriver"
	"github.com/atsika/esdriver/discovery"
	"github.com/atsika/esdriver/settings"
	"github.com/atsika/esdriver/transport"
	"github.com/atsika/esdriver/wire"
)

func main() {
	hostFlag := flag.String("host", "127.0.0.1", "EventStore node host")
	portFlag := flag.Int("port", 1113, "EventStore node TCP port")
	userFlag := flag.String("user", "", "Authenticate username (skip Authenticate if empty)")
	passFlag := flag.String("pass", "", "Authenticate password")
	nameFlag := flag.String("name", "", "Connection name sent with IdentifyClient")
	secureFlag := flag.Bool("secure", false, "Wrap the socket in a Noise NN handshake")
	timeoutFlag := flag.Duration("handshake-timeout", 5*time.Second, "Max time the Confirming stage may stay stuck before re-seeding")
	logLevelFlag := flag.String("log-level", "info", "hclog level (trace, debug, info, warn, error)")

	flag.Usage = printUsage
	flag.Parse()

	host, portStr := *hostFlag, strconv.Itoa(*portFlag)
	if _, _, err := net.SplitHostPort(net.JoinHostPort(host, portStr)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid host/port: %v\n", err)
		os.Exit(1)
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "esdriver-probe",
		Level: hclog.LevelFromString(*logLevelFlag),
	})

	opts := []settings.Option{}
	if *userFlag != "" {
		opts = append(opts, settings.WithDefaultCredentials(*userFlag, *passFlag))
	}
	if *nameFlag != "" {
		opts = append(opts, settings.WithConnectionName(*nameFlag))
	}
	cfg := settings.Default(opts...)

	ep := wire.EndPoint{Host: host, Port: uint16(*portFlag)}
	disc := discovery.NewStatic(ep)

	var dialerOpts []transport.Option
	dialerOpts = append(dialerOpts, transport.WithLogger(log.Named("transport")))
	if *secureFlag {
		dialerOpts = append(dialerOpts, transport.WithSecure())
	}
	dialer := transport.NewDialer(disc, dialerOpts...)

	reactor := esdriver.NewReactor(dialer, cfg, log.Named("reactor"), 32, 32)
	dialer.Attach(reactor)

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("shutting down")
		cancel()
	}()

	go reactor.Run(ctx)
	go dialer.Pump(ctx, reactor, func(t esdriver.Transmission) {
		switch tr := t.(type) {
		case esdriver.Recv:
			if tr.Ok() {
				log.Info("recv", "pkg", tr.Pkg.String())
			} else {
				log.Warn("recv failed", "err", tr.Err)
			}
		case esdriver.Ignored:
			log.Debug("ignored", "pkg", tr.Pkg.String())
		}
	})

	sup := esdriver.NewSupervisor(reactor, *timeoutFlag)
	go sup.Run(ctx)

	if err := reactor.Submit(ctx, esdriver.SystemInit{}); err != nil {
		log.Error("submit SystemInit failed", "err", err)
		os.Exit(1)
	}

	<-ctx.Done()
	dialer.Close()
	reactor.Close()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "esdriver-probe connects to a single EventStore node and drives the connection driver core to completion.\n\n")
	flag.PrintDefaults()
}
