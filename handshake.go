package esdriver

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/atsika/esdriver/settings"
	"github.com/atsika/esdriver/wire"
)

// connectionName resolves the name sent with IdentifyClient: the settings
// override if present, else "ES-<random-uuid>" per §4.4.
func connectionName(s *settings.Settings, fresh uuid.UUID) string {
	if s.DefaultConnectionName != "" {
		return s.DefaultConnectionName
	}
	return settings.DefaultConnectionNamePrefix + fresh.String()
}

// encodeIdentifyPayload packs the client version and connection name. The
// exact wire representation is opaque to peers outside this driver pair
// (§6 treats IdentifyClient's payload as opaque beyond the handshake).
func encodeIdentifyPayload(clientVersion int32, name string) []byte {
	out := make([]byte, 4+1+len(name))
	binary.LittleEndian.PutUint32(out[:4], uint32(clientVersion))
	out[4] = byte(len(name))
	copy(out[5:], name)
	return out
}

func buildAuthenticate(correlation uuid.UUID, creds wire.Credentials) wire.Package {
	return wire.New(wire.Authenticate, correlation, nil).WithCredentials(creds)
}

func buildIdentifyClient(correlation uuid.UUID, s *settings.Settings) wire.Package {
	name := connectionName(s, correlation)
	payload := encodeIdentifyPayload(settings.DefaultClientVersion, name)
	return wire.New(wire.IdentifyClient, correlation, payload)
}
