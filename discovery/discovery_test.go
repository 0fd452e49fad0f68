package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atsika/esdriver/wire"
)

func TestStaticDiscovererRoundRobins(t *testing.T) {
	a := wire.EndPoint{Host: "node1", Port: 1113}
	b := wire.EndPoint{Host: "node2", Port: 1113}
	d := NewStatic(a, b)

	require.Equal(t, a, d.Next())
	require.Equal(t, b, d.Next())
	require.Equal(t, a, d.Next())
}

func TestStaticDiscovererSingleEndpoint(t *testing.T) {
	a := wire.EndPoint{Host: "node1", Port: 1113}
	d := NewStatic(a)
	require.Equal(t, a, d.Next())
	require.Equal(t, a, d.Next())
}

func TestNewStaticPanicsOnEmpty(t *testing.T) {
	require.Panics(t, func() { NewStatic() })
}
