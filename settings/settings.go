// Package settings holds the functional-options configuration consumed by
// the driver: default credentials, default connection name, and the
// operation retry policy.
package settings

import (
	"time"

	"github.com/atsika/esdriver/retry"
	"github.com/atsika/esdriver/wire"
)

const (
	// DefaultConnectionNamePrefix prefixes the random connection name used
	// when no explicit name is configured.
	DefaultConnectionNamePrefix = "ES-"
	// DefaultClientVersion is sent with every IdentifyClient package.
	DefaultClientVersion = int32(1)
	// DefaultHeartbeatInterval is unused by the reactor itself (heartbeats
	// are server-initiated) but documents the expected cadence for transport
	// implementations that also send their own pings.
	DefaultHeartbeatInterval = 750 * time.Millisecond
)

// Option configures a Settings value.
type Option func(*Settings)

// Settings is the configuration the reactor consults. The zero value is
// invalid; build one with Default() and Options.
type Settings struct {
	DefaultUserCredentials *wire.Credentials
	DefaultConnectionName  string

	OperationRetry retry.Policy

	// PreserveCorrelationsOnReconnect keeps a surviving exchange's original
	// correlation id when it's re-sent after a forced reconnect. See the
	// "correlation stability across reconnect" Open Question.
	PreserveCorrelationsOnReconnect bool
}

// Default returns library defaults: no credentials, a random connection
// name minted by the caller, the AtMost(3) retry policy, correlations preserved
// across reconnect.
func Default(opts ...Option) *Settings {
	s := &Settings{
		OperationRetry:                  retry.AtMost(3),
		PreserveCorrelationsOnReconnect: true,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// WithDefaultCredentials sets the credentials attached to the handshake
// Authenticate package. When unset, the driver skips authentication and
// goes straight to IdentifyClient.
func WithDefaultCredentials(username, password string) Option {
	return func(s *Settings) {
		s.DefaultUserCredentials = &wire.Credentials{Username: username, Password: password}
	}
}

// WithConnectionName overrides the name sent in IdentifyClient.
func WithConnectionName(name string) Option {
	return func(s *Settings) {
		if name != "" {
			s.DefaultConnectionName = name
		}
	}
}

// WithOperationRetry sets the retry policy applied to NotHandled responses.
func WithOperationRetry(p retry.Policy) Option {
	return func(s *Settings) {
		if p != nil {
			s.OperationRetry = p
		}
	}
}

// WithPreserveCorrelations controls whether exchanges survive a forced
// reconnect under their original correlation id (true, the default) or are
// rekeyed by the reactor under a fresh id, reported as a Rekeyed
// Transmission (false).
func WithPreserveCorrelations(preserve bool) Option {
	return func(s *Settings) {
		s.PreserveCorrelationsOnReconnect = preserve
	}
}
