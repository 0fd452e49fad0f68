package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeNotHandledSimpleReason(t *testing.T) {
	info, err := DecodeNotHandled(EncodeNotHandled(NotHandledInfo{Reason: TooBusy}))
	require.NoError(t, err)
	require.Equal(t, TooBusy, info.Reason)
	require.Nil(t, info.Node)
}

func TestDecodeNotHandledNotMasterRoundTrip(t *testing.T) {
	node := &NodeEndPoints{TCP: EndPoint{Host: "node2.cluster.local", Port: 1113}}
	encoded := EncodeNotHandled(NotHandledInfo{Reason: NotMaster, Node: node})

	info, err := DecodeNotHandled(encoded)
	require.NoError(t, err)
	require.Equal(t, NotMaster, info.Reason)
	require.NotNil(t, info.Node)
	require.Equal(t, node.TCP, info.Node.TCP)
	require.Nil(t, info.Node.Secure)
}

func TestDecodeNotHandledNotMasterWithSecureEndpoint(t *testing.T) {
	secure := EndPoint{Host: "node2.cluster.local", Port: 2113}
	node := &NodeEndPoints{TCP: EndPoint{Host: "node2.cluster.local", Port: 1113}, Secure: &secure}
	encoded := EncodeNotHandled(NotHandledInfo{Reason: NotMaster, Node: node})

	info, err := DecodeNotHandled(encoded)
	require.NoError(t, err)
	require.NotNil(t, info.Node.Secure)
	require.Equal(t, secure, *info.Node.Secure)
}

func TestDecodeNotHandledEmptyPayload(t *testing.T) {
	_, err := DecodeNotHandled(nil)
	require.ErrorIs(t, err, ErrMalformedNotHandled)
}

func TestDecodeNotHandledTruncatedEndpoint(t *testing.T) {
	_, err := DecodeNotHandled([]byte{byte(NotMaster), 0x05, 0x00})
	require.ErrorIs(t, err, ErrMalformedNotHandled)
}

func TestEndPointString(t *testing.T) {
	require.Equal(t, "es1.cluster.local:1113", EndPoint{Host: "es1.cluster.local", Port: 1113}.String())
	require.Equal(t, "localhost:0", EndPoint{Host: "localhost", Port: 0}.String())
}
