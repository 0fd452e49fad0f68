package retry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtMostMaxRetryReached(t *testing.T) {
	p := AtMost(3)
	require.False(t, p.MaxRetryReached(0))
	require.False(t, p.MaxRetryReached(1))
	require.True(t, p.MaxRetryReached(2))
	require.True(t, p.MaxRetryReached(5))
}

func TestAtMostZeroAbortsImmediately(t *testing.T) {
	p := AtMost(0)
	require.True(t, p.MaxRetryReached(0))
}

func TestKeepRetryingNeverReached(t *testing.T) {
	require.False(t, KeepRetrying.MaxRetryReached(0))
	require.False(t, KeepRetrying.MaxRetryReached(1000))
}
