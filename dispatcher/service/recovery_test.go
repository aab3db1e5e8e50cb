package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hyperlane-xyz/lander/dispatcher/config"
	"github.com/hyperlane-xyz/lander/testutil"
	"github.com/hyperlane-xyz/lander/types"
)

func newRecoveryDispatcher(t *testing.T, fx *stageFixture) *Dispatcher {
	cfg := config.DefaultConfigWithHome(t.TempDir())
	cfg.ChainID = fx.state.ChainID
	cfg.SignerAddress = testutil.GenSignerAddress(fx.r)

	d, err := NewDispatcherWithStores(
		&cfg,
		testutil.GetTestLogger(t),
		fx.state.Payloads,
		fx.state.Txs,
		fx.nonces,
		fx.adapter,
		fx.state.Metrics,
	)
	require.NoError(t, err)

	return d
}

// TestRecoverFinishesInterruptedDropRecycle seeds the exact crash window drop
// handling leaves behind: the transaction is persisted dropped while its
// payloads are still linked to it. Recovery must finish the recycle and queue
// each payload exactly once.
func TestRecoverFinishesInterruptedDropRecycle(t *testing.T) {
	t.Parallel()
	fx := newStageFixture(t, 70)

	payloads := fx.storedPayloads(t, 2)
	tx := fx.storedTransaction(t, payloads...)
	require.NoError(t, fx.state.Txs.SetTransactionStatus(tx.UUID, types.StatusDropped(types.TxDropDroppedByChain)))

	// an unrelated ready payload with a later arrival index
	fresh := fx.storedPayloads(t, 1)[0]

	d := newRecoveryDispatcher(t, fx)
	require.NoError(t, d.recover())

	queued := d.queue.PopFront(10)
	require.Len(t, queued, 3)

	counts := make(map[uuid.UUID]int)
	for _, p := range queued {
		counts[p.UUID()]++
	}
	for id, count := range counts {
		require.Equal(t, 1, count, "payload %s enqueued %d times", id, count)
	}

	// recycled constituents re-enter at the front, ahead of fresh work
	require.Equal(t, payloads[0].UUID(), queued[0].UUID())
	require.Equal(t, payloads[1].UUID(), queued[1].UUID())
	require.Equal(t, fresh.UUID(), queued[2].UUID())

	for _, p := range payloads {
		fx.requirePayloadStatus(t, p, types.PayloadReadyToSubmit)
		owner, err := fx.state.Payloads.TxUUIDByPayloadUUID(p.UUID())
		require.NoError(t, err)
		require.Equal(t, uuid.Nil, owner)
	}
}

// TestRecoverSkipsAlreadyRequeuedConstituents covers a crash midway through
// the per-payload resets: one constituent was already reset and unlinked, the
// other still points at the dropped transaction. The already-reset payload
// must not be queued a second time when the recycle is finished.
func TestRecoverSkipsAlreadyRequeuedConstituents(t *testing.T) {
	t.Parallel()
	fx := newStageFixture(t, 71)

	payloads := fx.storedPayloads(t, 2)
	tx := fx.storedTransaction(t, payloads...)
	require.NoError(t, fx.state.Txs.SetTransactionStatus(tx.UUID, types.StatusDropped(types.TxDropDroppedByChain)))

	// drop handling got through the first payload before the crash
	require.NoError(t, fx.state.Payloads.SetPayloadStatus(payloads[0].UUID(), types.PayloadReadyToSubmit))
	require.NoError(t, fx.state.Payloads.StoreTxUUIDByPayloadUUID(payloads[0].UUID(), uuid.Nil))

	d := newRecoveryDispatcher(t, fx)
	require.NoError(t, d.recover())

	queued := d.queue.PopFront(10)
	require.Len(t, queued, 2)
	require.Equal(t, payloads[1].UUID(), queued[0].UUID())
	require.Equal(t, payloads[0].UUID(), queued[1].UUID())

	fx.requirePayloadStatus(t, payloads[1], types.PayloadReadyToSubmit)
}

// TestNewDispatcherRequiresChainIdentity checks a dispatcher cannot be built
// with an empty chain or signer, which would silently namespace the stores
// under empty keys.
func TestNewDispatcherRequiresChainIdentity(t *testing.T) {
	t.Parallel()
	fx := newStageFixture(t, 72)

	cfg := config.DefaultConfigWithHome(t.TempDir())
	cfg.SignerAddress = testutil.GenSignerAddress(fx.r)

	_, err := NewDispatcherWithStores(&cfg, testutil.GetTestLogger(t),
		fx.state.Payloads, fx.state.Txs, fx.nonces, fx.adapter, fx.state.Metrics)
	require.ErrorContains(t, err, "chain id cannot be empty")

	cfg.ChainID = fx.state.ChainID
	cfg.SignerAddress = ""
	_, err = NewDispatcherWithStores(&cfg, testutil.GetTestLogger(t),
		fx.state.Payloads, fx.state.Txs, fx.nonces, fx.adapter, fx.state.Metrics)
	require.ErrorContains(t, err, "signer address cannot be empty")
}
