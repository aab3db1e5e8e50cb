package service

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/hyperlane-xyz/lander/adapter"
	"github.com/hyperlane-xyz/lander/dispatcher/nonce"
	"github.com/hyperlane-xyz/lander/types"
)

const finalityStageName = "finality"

// FinalityStage watches included transactions until their block becomes
// irreversible. Reorgs are first-class here: an included transaction that the
// chain reports dropped is recycled through the building queue, and payloads
// whose effects reverted inside a landed transaction are terminally dropped.
type FinalityStage struct {
	state     *DispatcherState
	pool      *TxPool
	queue     *BuildingQueue
	nonceMgr  *nonce.Manager
	inboundCh <-chan *types.Transaction
	quit      <-chan struct{}
}

// NewFinalityStage returns a finality stage consuming included transactions
// from inboundCh.
func NewFinalityStage(
	state *DispatcherState,
	queue *BuildingQueue,
	nonceMgr *nonce.Manager,
	inboundCh <-chan *types.Transaction,
	quit <-chan struct{},
) *FinalityStage {
	return &FinalityStage{
		state:     state,
		pool:      NewTxPool(),
		queue:     queue,
		nonceMgr:  nonceMgr,
		inboundCh: inboundCh,
		quit:      quit,
	}
}

// Pool exposes the stage pool for recovery seeding.
func (fs *FinalityStage) Pool() *TxPool {
	return fs.pool
}

// receiveLoop drains included transactions into the pool.
func (fs *FinalityStage) receiveLoop() {
	for {
		select {
		case tx := <-fs.inboundCh:
			fs.pool.Insert(tx)
		case <-fs.quit:
			return
		}
	}
}

// processLoop re-evaluates the pool once per estimated block time.
func (fs *FinalityStage) processLoop(ctx context.Context) {
	fs.state.Logger.Info("starting finality stage")
	defer fs.state.Logger.Info("finality stage stopped")

	ticker := time.NewTicker(fs.state.Adapter.EstimatedBlockTime())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fs.processPool(ctx)
			fs.state.Metrics.RecordStageLiveness(finalityStageName, fs.state.ChainID)
			fs.state.Metrics.RecordQueueLength(finalityStageName, fs.state.ChainID, fs.pool.Len())
		case <-fs.quit:
			return
		}
	}
}

func (fs *FinalityStage) processPool(ctx context.Context) {
	for _, tx := range fs.pool.Snapshot() {
		select {
		case <-fs.quit:
			return
		default:
		}

		if err := fs.processTransaction(ctx, tx); err != nil {
			fs.state.Logger.Error("failed to process included transaction",
				zap.String("tx_uuid", tx.UUID.String()),
				zap.Error(err),
			)
		}
	}
}

func (fs *FinalityStage) processTransaction(ctx context.Context, tx *types.Transaction) error {
	status, err := fs.txStatus(ctx, tx)
	if err != nil {
		if adapter.IsNonRetryable(err) {
			return handleDroppedTransaction(fs.state, fs.queue, fs.pool, tx, types.TxDropDroppedByChain)
		}
		// transient; the next block tick retries
		return err
	}

	switch status.State {
	case types.TxStateIncluded:
		// still reversible; reverted payloads can already be written off
		return fs.dropRevertedPayloads(ctx, tx)

	case types.TxStateFinalized:
		return fs.finalize(ctx, tx)

	case types.TxStateDropped:
		// reorged out after inclusion
		return handleDroppedTransaction(fs.state, fs.queue, fs.pool, tx, types.TxDropDroppedByChain)

	case types.TxStatePendingInclusion, types.TxStateMempool:
		fs.state.Logger.Error("included transaction regressed to pre-inclusion state",
			zap.String("tx_uuid", tx.UUID.String()),
			zap.String("status", status.String()),
		)

		return nil

	default:
		return nil
	}
}

// finalize persists the terminal state, writes off reverted payloads, and
// advances the signer's finalized nonce boundary.
func (fs *FinalityStage) finalize(ctx context.Context, tx *types.Transaction) error {
	if err := fs.state.UpdateTransactionStatus(tx, types.StatusFinalized); err != nil {
		return err
	}

	if err := fs.dropRevertedPayloads(ctx, tx); err != nil {
		return err
	}

	if err := fs.nonceMgr.BumpFinalizedNonce(tx.Nonce); err != nil {
		return err
	}

	fs.state.Metrics.IncFinalizedTx(fs.state.ChainID)
	fs.pool.Remove(tx.UUID)

	fs.state.Logger.Info("transaction finalized",
		zap.String("tx_uuid", tx.UUID.String()),
		zap.String("tx_hash", tx.Hash),
		zap.Int("payload_count", len(tx.PayloadDetails)),
	)

	return nil
}

// dropRevertedPayloads terminally drops payloads whose effects reverted even
// though the enclosing transaction landed. Such payloads are never resubmitted.
func (fs *FinalityStage) dropRevertedPayloads(ctx context.Context, tx *types.Transaction) error {
	var reverted []types.PayloadDetails
	if err := retry.Do(func() error {
		var err error
		reverted, err = fs.state.Adapter.RevertedPayloads(ctx, tx)

		return classifyAdapterError(err)
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		fs.state.Logger.Debug(
			"failed to query reverted payloads",
			zap.String("tx_uuid", tx.UUID.String()),
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		return err
	}

	if len(reverted) == 0 {
		return nil
	}

	fs.state.Logger.Warn("payloads reverted inside landed transaction",
		zap.String("tx_uuid", tx.UUID.String()),
		zap.Int("reverted_count", len(reverted)),
	)

	return fs.state.DropPayloads(reverted, types.PayloadDropReverted)
}

func (fs *FinalityStage) txStatus(ctx context.Context, tx *types.Transaction) (types.TransactionStatus, error) {
	var status types.TransactionStatus
	if err := retry.Do(func() error {
		var err error
		status, err = fs.state.Adapter.TxStatus(ctx, tx)

		return classifyAdapterError(err)
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		fs.state.Logger.Debug(
			"failed to query transaction status",
			zap.String("tx_uuid", tx.UUID.String()),
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		return types.TransactionStatus{}, err
	}

	return status, nil
}
