package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hyperlane-xyz/lander/adapter"
	"github.com/hyperlane-xyz/lander/types"
)

func newInclusionFixture(t *testing.T, seed int64) (*stageFixture, *InclusionStage, chan *types.Transaction) {
	fx := newStageFixture(t, seed)
	finalityCh := make(chan *types.Transaction, 1)
	is := NewInclusionStage(fx.state, fx.queue, make(chan *types.Transaction), finalityCh, 3, fx.quit)

	return fx, is, finalityCh
}

func TestInclusionStageSubmitsPendingTransaction(t *testing.T) {
	t.Parallel()
	fx, is, finalityCh := newInclusionFixture(t, 40)

	payloads := fx.storedPayloads(t, 1)
	tx := fx.storedTransaction(t, payloads...)
	is.pool.Insert(tx)

	fx.adapter.EXPECT().TxStatus(gomock.Any(), gomock.Any()).Return(types.StatusPendingInclusion, nil)
	fx.adapter.EXPECT().SimulateTx(gomock.Any(), gomock.Any()).Return(true, nil)
	fx.adapter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, is.processTransaction(context.Background(), tx))

	require.Empty(t, finalityCh)
	require.True(t, is.pool.Contains(tx.UUID))

	stored, err := fx.state.Txs.GetTransaction(tx.UUID)
	require.NoError(t, err)
	require.Equal(t, types.StatusMempool, stored.Status)
	require.Equal(t, uint32(1), stored.SubmissionAttempts)
	require.False(t, stored.LastSubmissionAt.IsZero())

	fx.requirePayloadStatus(t, payloads[0], types.PayloadInTransaction(types.StatusMempool))
}

func TestInclusionStageForwardsIncludedTransaction(t *testing.T) {
	t.Parallel()
	fx, is, finalityCh := newInclusionFixture(t, 41)

	payloads := fx.storedPayloads(t, 1)
	tx := fx.storedTransaction(t, payloads...)
	tx.Status = types.StatusMempool
	is.pool.Insert(tx)

	fx.adapter.EXPECT().TxStatus(gomock.Any(), gomock.Any()).Return(types.StatusIncluded, nil)

	require.NoError(t, is.processTransaction(context.Background(), tx))

	forwarded := <-finalityCh
	require.Equal(t, tx.UUID, forwarded.UUID)
	require.False(t, is.pool.Contains(tx.UUID))

	stored, err := fx.state.Txs.GetTransaction(tx.UUID)
	require.NoError(t, err)
	require.Equal(t, types.StatusIncluded, stored.Status)
	fx.requirePayloadStatus(t, payloads[0], types.PayloadInTransaction(types.StatusIncluded))
}

func TestInclusionStageRecyclesDroppedTransaction(t *testing.T) {
	t.Parallel()
	fx, is, finalityCh := newInclusionFixture(t, 42)

	payloads := fx.storedPayloads(t, 2)
	tx := fx.storedTransaction(t, payloads...)
	is.pool.Insert(tx)

	fx.adapter.EXPECT().TxStatus(gomock.Any(), gomock.Any()).Return(types.StatusDropped(types.TxDropDroppedByChain), nil)

	require.NoError(t, is.processTransaction(context.Background(), tx))

	require.Empty(t, finalityCh)
	require.False(t, is.pool.Contains(tx.UUID))

	// payloads jump back to the front of the building queue in order
	recycled := fx.queue.PopFront(10)
	require.Len(t, recycled, 2)
	require.Equal(t, payloads[0].UUID(), recycled[0].UUID())
	require.Equal(t, payloads[1].UUID(), recycled[1].UUID())

	stored, err := fx.state.Txs.GetTransaction(tx.UUID)
	require.NoError(t, err)
	require.Equal(t, types.StatusDropped(types.TxDropDroppedByChain), stored.Status)

	for _, p := range payloads {
		fx.requirePayloadStatus(t, p, types.PayloadReadyToSubmit)
		owner, err := fx.state.Payloads.TxUUIDByPayloadUUID(p.UUID())
		require.NoError(t, err)
		require.Equal(t, uuid.Nil, owner)
	}
}

func TestInclusionStageDropsOnNonRetryableSubmit(t *testing.T) {
	t.Parallel()
	fx, is, _ := newInclusionFixture(t, 43)

	payloads := fx.storedPayloads(t, 1)
	tx := fx.storedTransaction(t, payloads...)
	is.pool.Insert(tx)

	fx.adapter.EXPECT().TxStatus(gomock.Any(), gomock.Any()).Return(types.StatusPendingInclusion, nil)
	fx.adapter.EXPECT().SimulateTx(gomock.Any(), gomock.Any()).Return(true, nil)
	fx.adapter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(adapter.ErrInsufficientFunds)

	require.NoError(t, is.processTransaction(context.Background(), tx))

	require.False(t, is.pool.Contains(tx.UUID))
	stored, err := fx.state.Txs.GetTransaction(tx.UUID)
	require.NoError(t, err)
	require.Equal(t, types.StatusDropped(types.TxDropDroppedByChain), stored.Status)
	fx.requirePayloadStatus(t, payloads[0], types.PayloadReadyToSubmit)
}

func TestInclusionStageDropsOnFailedSimulation(t *testing.T) {
	t.Parallel()
	fx, is, _ := newInclusionFixture(t, 44)

	payloads := fx.storedPayloads(t, 1)
	tx := fx.storedTransaction(t, payloads...)
	is.pool.Insert(tx)

	fx.adapter.EXPECT().TxStatus(gomock.Any(), gomock.Any()).Return(types.StatusPendingInclusion, nil)
	fx.adapter.EXPECT().SimulateTx(gomock.Any(), gomock.Any()).Return(false, nil)

	require.NoError(t, is.processTransaction(context.Background(), tx))

	stored, err := fx.state.Txs.GetTransaction(tx.UUID)
	require.NoError(t, err)
	require.Equal(t, types.StatusDropped(types.TxDropFailedSimulation), stored.Status)
}

func TestInclusionStageExhaustsSubmissionAttempts(t *testing.T) {
	t.Parallel()
	fx, is, _ := newInclusionFixture(t, 45)

	payloads := fx.storedPayloads(t, 1)
	tx := fx.storedTransaction(t, payloads...)
	tx.SubmissionAttempts = 3 // fixture max
	is.pool.Insert(tx)

	fx.adapter.EXPECT().TxStatus(gomock.Any(), gomock.Any()).Return(types.StatusMempool, nil)

	require.NoError(t, is.processTransaction(context.Background(), tx))

	stored, err := fx.state.Txs.GetTransaction(tx.UUID)
	require.NoError(t, err)
	require.Equal(t, types.StatusDropped(types.TxDropSubmissionExhausted), stored.Status)
	fx.requirePayloadStatus(t, payloads[0], types.PayloadReadyToSubmit)
}

func TestInclusionStageTreatsAlreadyKnownAsSubmitted(t *testing.T) {
	t.Parallel()
	fx, is, _ := newInclusionFixture(t, 46)

	payloads := fx.storedPayloads(t, 1)
	tx := fx.storedTransaction(t, payloads...)
	is.pool.Insert(tx)

	fx.adapter.EXPECT().TxStatus(gomock.Any(), gomock.Any()).Return(types.StatusPendingInclusion, nil)
	fx.adapter.EXPECT().SimulateTx(gomock.Any(), gomock.Any()).Return(true, nil)
	fx.adapter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(adapter.ErrTxAlreadyKnown)

	require.NoError(t, is.processTransaction(context.Background(), tx))

	stored, err := fx.state.Txs.GetTransaction(tx.UUID)
	require.NoError(t, err)
	require.Equal(t, types.StatusMempool, stored.Status)
	require.Equal(t, uint32(1), stored.SubmissionAttempts)
}
