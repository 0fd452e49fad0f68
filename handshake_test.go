package esdriver

import (
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/atsika/esdriver/settings"
	"github.com/atsika/esdriver/wire"
)

func TestConnectionNameUsesOverrideWhenSet(t *testing.T) {
	s := settings.Default(settings.WithConnectionName("my-app"))
	require.Equal(t, "my-app", connectionName(s, uuid.New()))
}

func TestConnectionNameFallsBackToPrefixedUUID(t *testing.T) {
	s := settings.Default()
	id := uuid.New()
	require.Equal(t, settings.DefaultConnectionNamePrefix+id.String(), connectionName(s, id))
}

func TestBuildAuthenticateAttachesCredentials(t *testing.T) {
	corr := uuid.New()
	creds := wire.Credentials{Username: "alice", Password: "hunter2"}
	pkg := buildAuthenticate(corr, creds)

	require.Equal(t, wire.Authenticate, pkg.Cmd)
	require.Equal(t, corr, pkg.Correlation)
	require.NotNil(t, pkg.Credentials)
	require.Equal(t, creds, *pkg.Credentials)
}

func TestBuildIdentifyClientEncodesVersionAndName(t *testing.T) {
	corr := uuid.New()
	s := settings.Default(settings.WithConnectionName("probe"))
	pkg := buildIdentifyClient(corr, s)

	require.Equal(t, wire.IdentifyClient, pkg.Cmd)
	require.Equal(t, corr, pkg.Correlation)

	version := int32(binary.LittleEndian.Uint32(pkg.Payload[:4]))
	require.Equal(t, settings.DefaultClientVersion, version)
	nameLen := int(pkg.Payload[4])
	require.Equal(t, "probe", string(pkg.Payload[5:5+nameLen]))
}
