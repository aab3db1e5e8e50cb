package service

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/hyperlane-xyz/lander/adapter"
	"github.com/hyperlane-xyz/lander/types"
)

const inclusionStageName = "inclusion"

// InclusionStage shepherds built transactions into a block. It holds a pool
// of in-flight transactions and re-evaluates each of them once per estimated
// block: pending ones are simulated and (re)submitted with fee escalation,
// included ones move on to the finality stage, and dropped ones are recycled
// back to the building queue.
type InclusionStage struct {
	state      *DispatcherState
	pool       *TxPool
	queue      *BuildingQueue
	inboundCh  <-chan *types.Transaction
	finalityCh chan<- *types.Transaction

	maxSubmissionAttempts uint32
	quit                  <-chan struct{}
}

// NewInclusionStage returns an inclusion stage wired between the building and
// finality stages.
func NewInclusionStage(
	state *DispatcherState,
	queue *BuildingQueue,
	inboundCh <-chan *types.Transaction,
	finalityCh chan<- *types.Transaction,
	maxSubmissionAttempts uint32,
	quit <-chan struct{},
) *InclusionStage {
	return &InclusionStage{
		state:                 state,
		pool:                  NewTxPool(),
		queue:                 queue,
		inboundCh:             inboundCh,
		finalityCh:            finalityCh,
		maxSubmissionAttempts: maxSubmissionAttempts,
		quit:                  quit,
	}
}

// Pool exposes the stage pool for recovery seeding.
func (is *InclusionStage) Pool() *TxPool {
	return is.pool
}

// receiveLoop drains newly built transactions into the pool.
func (is *InclusionStage) receiveLoop() {
	for {
		select {
		case tx := <-is.inboundCh:
			is.pool.Insert(tx)
		case <-is.quit:
			return
		}
	}
}

// processLoop re-evaluates the pool once per estimated block time.
func (is *InclusionStage) processLoop(ctx context.Context) {
	is.state.Logger.Info("starting inclusion stage")
	defer is.state.Logger.Info("inclusion stage stopped")

	ticker := time.NewTicker(is.state.Adapter.EstimatedBlockTime())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			is.processPool(ctx)
			is.state.Metrics.RecordStageLiveness(inclusionStageName, is.state.ChainID)
			is.state.Metrics.RecordQueueLength(inclusionStageName, is.state.ChainID, is.pool.Len())
		case <-is.quit:
			return
		}
	}
}

func (is *InclusionStage) processPool(ctx context.Context) {
	for _, tx := range is.pool.Snapshot() {
		select {
		case <-is.quit:
			return
		default:
		}

		if err := is.processTransaction(ctx, tx); err != nil {
			is.state.Logger.Error("failed to process in-flight transaction",
				zap.String("tx_uuid", tx.UUID.String()),
				zap.Error(err),
			)
		}
	}
}

func (is *InclusionStage) processTransaction(ctx context.Context, tx *types.Transaction) error {
	status, err := is.txStatus(ctx, tx)
	if err != nil {
		if adapter.IsNonRetryable(err) {
			return handleDroppedTransaction(is.state, is.queue, is.pool, tx, types.TxDropDroppedByChain)
		}
		// transient; the next block tick retries
		return err
	}

	switch status.State {
	case types.TxStateIncluded, types.TxStateFinalized:
		if err := is.state.UpdateTransactionStatus(tx, status); err != nil {
			return err
		}
		select {
		case is.finalityCh <- tx:
			is.pool.Remove(tx.UUID)
		case <-is.quit:
		}

		return nil

	case types.TxStateDropped:
		return handleDroppedTransaction(is.state, is.queue, is.pool, tx, types.TxDropDroppedByChain)

	case types.TxStatePendingInclusion, types.TxStateMempool:
		return is.submit(ctx, tx)

	default:
		return nil
	}
}

// submit simulates and (re)submits the transaction. Each call past the first
// escalates the fee on chains that support replacement, so the attempt count
// is bounded by config.
func (is *InclusionStage) submit(ctx context.Context, tx *types.Transaction) error {
	if tx.SubmissionAttempts >= is.maxSubmissionAttempts {
		return handleDroppedTransaction(is.state, is.queue, is.pool, tx, types.TxDropSubmissionExhausted)
	}

	ok, err := is.simulate(ctx, tx)
	if err != nil {
		if adapter.IsNonRetryable(err) {
			return handleDroppedTransaction(is.state, is.queue, is.pool, tx, types.TxDropFailedSimulation)
		}

		return err
	}
	if !ok {
		return handleDroppedTransaction(is.state, is.queue, is.pool, tx, types.TxDropFailedSimulation)
	}

	err = retry.Do(func() error {
		return classifyAdapterError(is.state.Adapter.Submit(ctx, tx))
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		is.state.Logger.Debug(
			"failed to submit transaction",
			zap.String("tx_uuid", tx.UUID.String()),
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	}))
	switch {
	case err == nil:
	case errors.Is(err, adapter.ErrTxAlreadyKnown):
		// the node already holds these exact bytes; count it as submitted
	case adapter.IsNonRetryable(err) || errors.Is(err, adapter.ErrTxReplaced):
		return handleDroppedTransaction(is.state, is.queue, is.pool, tx, types.TxDropDroppedByChain)
	default:
		return err
	}

	tx.SubmissionAttempts++
	tx.LastSubmissionAt = time.Now().UTC()
	tx.Status = types.StatusMempool

	if err := is.state.StoreTransaction(tx); err != nil {
		return err
	}
	is.state.Metrics.IncSubmission(is.state.ChainID)

	is.state.Logger.Debug("submitted transaction",
		zap.String("tx_uuid", tx.UUID.String()),
		zap.String("tx_hash", tx.Hash),
		zap.Uint32("submission_attempts", tx.SubmissionAttempts),
	)

	return nil
}

func (is *InclusionStage) txStatus(ctx context.Context, tx *types.Transaction) (types.TransactionStatus, error) {
	var status types.TransactionStatus
	if err := retry.Do(func() error {
		var err error
		status, err = is.state.Adapter.TxStatus(ctx, tx)

		return classifyAdapterError(err)
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		is.state.Logger.Debug(
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

func (is *InclusionStage) simulate(ctx context.Context, tx *types.Transaction) (bool, error) {
	var ok bool
	if err := retry.Do(func() error {
		var err error
		ok, err = is.state.Adapter.SimulateTx(ctx, tx)

		return classifyAdapterError(err)
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		is.state.Logger.Debug(
			"failed to simulate transaction",
			zap.String("tx_uuid", tx.UUID.String()),
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		return false, err
	}

	return ok, nil
}
