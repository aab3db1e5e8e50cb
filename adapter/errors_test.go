package adapter_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperlane-xyz/lander/adapter"
)

func TestIsNonRetryable(t *testing.T) {
	t.Parallel()

	require.False(t, adapter.IsNonRetryable(nil))
	require.False(t, adapter.IsNonRetryable(errors.New("rpc timeout")))

	// transient mempool conditions stay retryable
	require.False(t, adapter.IsNonRetryable(adapter.ErrTxAlreadyKnown))
	require.False(t, adapter.IsNonRetryable(adapter.ErrTxReplaced))

	require.True(t, adapter.IsNonRetryable(adapter.ErrInsufficientFunds))
	require.True(t, adapter.IsNonRetryable(adapter.ErrSimulationFailed))

	// explicit wrapping marks anything as terminal, and survives fmt wrapping
	wrapped := adapter.NonRetryable(errors.New("nonce too low"))
	require.True(t, adapter.IsNonRetryable(wrapped))
	require.True(t, adapter.IsNonRetryable(fmt.Errorf("submit: %w", wrapped)))
	require.True(t, adapter.IsNonRetryable(fmt.Errorf("status: %w", adapter.ErrInsufficientFunds)))

	require.Nil(t, adapter.NonRetryable(nil))
}
