package settings

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atsika/esdriver/retry"
)

func TestDefaultSettings(t *testing.T) {
	s := Default()
	require.Nil(t, s.DefaultUserCredentials)
	require.Empty(t, s.DefaultConnectionName)
	require.True(t, s.PreserveCorrelationsOnReconnect)
	require.False(t, s.OperationRetry.MaxRetryReached(0))
}

func TestWithDefaultCredentials(t *testing.T) {
	s := Default(WithDefaultCredentials("alice", "hunter2"))
	require.NotNil(t, s.DefaultUserCredentials)
	require.Equal(t, "alice", s.DefaultUserCredentials.Username)
	require.Equal(t, "hunter2", s.DefaultUserCredentials.Password)
}

func TestWithConnectionNameIgnoresEmpty(t *testing.T) {
	s := Default(WithConnectionName(""))
	require.Empty(t, s.DefaultConnectionName)

	s = Default(WithConnectionName("my-app"))
	require.Equal(t, "my-app", s.DefaultConnectionName)
}

func TestWithOperationRetry(t *testing.T) {
	s := Default(WithOperationRetry(retry.AtMost(1)))
	require.True(t, s.OperationRetry.MaxRetryReached(0))
}

func TestWithOperationRetryIgnoresNil(t *testing.T) {
	s := Default(WithOperationRetry(nil))
	require.NotNil(t, s.OperationRetry)
}

func TestWithPreserveCorrelations(t *testing.T) {
	s := Default(WithPreserveCorrelations(false))
	require.False(t, s.PreserveCorrelationsOnReconnect)
}
