package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperlane-xyz/lander/dispatcher/nonce"
	"github.com/hyperlane-xyz/lander/types"
)

const buildingStageName = "building"

// BuildingStage turns queued payloads into signed, nonce-bound transactions
// and hands them to the inclusion stage. A transaction is always persisted,
// together with its payload links, before it is sent downstream; the channel
// send is the last step so a crash can only lose in-memory work that the
// recovery scan re-derives from the stores.
type BuildingStage struct {
	state        *DispatcherState
	queue        *BuildingQueue
	nonceMgr     *nonce.Manager
	inclusionCh  chan<- *types.Transaction
	batchSize    uint32
	pollInterval time.Duration
	quit         <-chan struct{}
}

// NewBuildingStage returns a building stage reading from queue and writing to
// inclusionCh until quit closes.
func NewBuildingStage(
	state *DispatcherState,
	queue *BuildingQueue,
	nonceMgr *nonce.Manager,
	inclusionCh chan<- *types.Transaction,
	batchSize uint32,
	pollInterval time.Duration,
	quit <-chan struct{},
) *BuildingStage {
	if limit := state.Adapter.MaxBatchSize(); limit > 0 && batchSize > limit {
		batchSize = limit
	}

	return &BuildingStage{
		state:        state,
		queue:        queue,
		nonceMgr:     nonceMgr,
		inclusionCh:  inclusionCh,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		quit:         quit,
	}
}

func (bs *BuildingStage) loop(ctx context.Context) {
	bs.state.Logger.Info("starting building stage")
	defer bs.state.Logger.Info("building stage stopped")

	for {
		select {
		case <-bs.quit:
			return
		default:
		}

		batch := bs.queue.PopFront(int(bs.batchSize))
		bs.state.Metrics.RecordQueueLength(buildingStageName, bs.state.ChainID, bs.queue.Len())

		if len(batch) == 0 {
			select {
			case <-bs.quit:
				return
			case <-time.After(bs.pollInterval):
			}

			continue
		}

		if !bs.processBatch(ctx, batch) {
			return
		}
		bs.state.Metrics.RecordStageLiveness(buildingStageName, bs.state.ChainID)
	}
}

// processBatch builds the batch into transactions and forwards the results.
// It returns false when the stage should shut down.
func (bs *BuildingStage) processBatch(ctx context.Context, batch []*types.FullPayload) bool {
	byUUID := make(map[string]*types.FullPayload, len(batch))
	for _, payload := range batch {
		byUUID[payload.UUID().String()] = payload
	}

	results := bs.state.Adapter.BuildTransactions(ctx, batch)

	for _, result := range results {
		if result.Tx == nil {
			// build failures are not terminal for the payload: it stays
			// ready-to-submit and is retried on a later pass
			bs.state.Logger.Warn("failed to build transaction, requeueing payloads",
				zap.Int("payload_count", len(result.Payloads)),
			)
			bs.requeue(result.Payloads, byUUID)

			continue
		}

		tx := result.Tx

		assigned, err := bs.nonceMgr.AssignNextNonce(tx.UUID, tx.Nonce)
		if err != nil {
			bs.state.Logger.Error("failed to assign nonce, requeueing payloads",
				zap.String("tx_uuid", tx.UUID.String()),
				zap.Error(err),
			)
			bs.requeue(result.Payloads, byUUID)

			continue
		}
		tx.Nonce = assigned

		if err := bs.state.StoreTransaction(tx); err != nil {
			bs.state.Logger.Error("failed to persist built transaction, requeueing payloads",
				zap.String("tx_uuid", tx.UUID.String()),
				zap.Error(err),
			)
			bs.requeue(result.Payloads, byUUID)

			continue
		}

		bs.state.Logger.Debug("built transaction",
			zap.String("tx_uuid", tx.UUID.String()),
			zap.Uint64("nonce", tx.Nonce.Uint64()),
			zap.Int("payload_count", len(tx.PayloadDetails)),
		)

		select {
		case bs.inclusionCh <- tx:
		case <-bs.quit:
			return false
		}
	}

	return true
}

// requeue pushes the in-memory payloads of a transiently failed result to the
// back of the queue so fresher work is not starved by a flapping build.
func (bs *BuildingStage) requeue(details []types.PayloadDetails, byUUID map[string]*types.FullPayload) {
	for _, detail := range details {
		if payload, ok := byUUID[detail.UUID.String()]; ok {
			bs.queue.PushBack(payload)
		}
	}
}
