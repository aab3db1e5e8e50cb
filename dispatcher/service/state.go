package service

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperlane-xyz/lander/adapter"
	"github.com/hyperlane-xyz/lander/dispatcher/store"
	"github.com/hyperlane-xyz/lander/metrics"
	"github.com/hyperlane-xyz/lander/types"
)

// DispatcherState bundles the stores, the chain adapter and the observability
// handles shared by all pipeline stages of one chain.
type DispatcherState struct {
	Logger   *zap.Logger
	ChainID  string
	Payloads *store.PayloadStore
	Txs      *store.TransactionStore
	Adapter  adapter.ChainAdapter
	Metrics  *metrics.DispatcherMetrics
}

// NewDispatcherState returns the shared stage state for one chain.
func NewDispatcherState(
	logger *zap.Logger,
	chainID string,
	payloads *store.PayloadStore,
	txs *store.TransactionStore,
	chainAdapter adapter.ChainAdapter,
	m *metrics.DispatcherMetrics,
) *DispatcherState {
	return &DispatcherState{
		Logger:   logger.With(zap.String("chain", chainID)),
		ChainID:  chainID,
		Payloads: payloads,
		Txs:      txs,
		Adapter:  chainAdapter,
		Metrics:  m,
	}
}

// StoreTransaction persists the transaction and points every constituent
// payload at it. The transaction record is written first so a crash between
// the writes leaves payloads pointing at a persisted transaction or at
// nothing, never at a missing one.
func (s *DispatcherState) StoreTransaction(tx *types.Transaction) error {
	if err := s.Txs.StoreTransaction(tx); err != nil {
		return err
	}

	for _, detail := range tx.PayloadDetails {
		if err := s.Payloads.StoreTxUUIDByPayloadUUID(detail.UUID, tx.UUID); err != nil {
			return fmt.Errorf("failed to link payload %s to transaction: %w", detail.UUID, err)
		}
		if err := s.Payloads.SetPayloadStatus(detail.UUID, types.PayloadInTransaction(tx.Status)); err != nil {
			return fmt.Errorf("failed to update status of payload %s: %w", detail.UUID, err)
		}
	}

	return nil
}

// UpdateTransactionStatus persists the new status on the transaction and
// mirrors it onto all constituent payloads.
func (s *DispatcherState) UpdateTransactionStatus(tx *types.Transaction, status types.TransactionStatus) error {
	tx.Status = status
	if err := s.Txs.SetTransactionStatus(tx.UUID, status); err != nil {
		return err
	}

	return s.UpdateStatusForPayloads(tx.PayloadDetails, types.PayloadInTransaction(status))
}

// UpdateStatusForPayloads persists the given status on every listed payload.
func (s *DispatcherState) UpdateStatusForPayloads(details []types.PayloadDetails, status types.PayloadStatus) error {
	for _, detail := range details {
		if err := s.Payloads.SetPayloadStatus(detail.UUID, status); err != nil {
			return fmt.Errorf("failed to update status of payload %s: %w", detail.UUID, err)
		}
		s.Logger.Debug("updated payload status",
			zap.String("payload_uuid", detail.UUID.String()),
			zap.String("payload_label", detail.Label),
			zap.String("status", status.String()),
		)
	}

	return nil
}

// DropPayloads terminally drops every listed payload with the given reason.
func (s *DispatcherState) DropPayloads(details []types.PayloadDetails, reason types.PayloadDropReason) error {
	if err := s.UpdateStatusForPayloads(details, types.PayloadDropped(reason)); err != nil {
		return err
	}
	for range details {
		s.Metrics.IncDroppedPayload(s.ChainID, reason.String())
	}

	return nil
}

// handleDroppedTransaction recycles a transaction the chain will never land:
// the transaction is marked dropped (freeing its nonce for reassignment), its
// payloads go back to the front of the building queue as ready-to-submit with
// their ownership pointer cleared, and the transaction leaves the pool.
//
// Every step is idempotent, so a crash partway through converges on the next
// recovery scan instead of double-submitting.
func handleDroppedTransaction(
	state *DispatcherState,
	queue *BuildingQueue,
	pool *TxPool,
	tx *types.Transaction,
	reason types.TxDropReason,
) error {
	state.Logger.Warn("handling dropped transaction",
		zap.String("tx_uuid", tx.UUID.String()),
		zap.String("reason", reason.String()),
		zap.Int("payload_count", len(tx.PayloadDetails)),
	)

	tx.Status = types.StatusDropped(reason)
	if err := state.Txs.SetTransactionStatus(tx.UUID, tx.Status); err != nil {
		return fmt.Errorf("failed to mark transaction as dropped: %w", err)
	}
	state.Metrics.IncDroppedTx(state.ChainID, reason.String())

	recycled, err := recyclePayloads(state, tx.PayloadDetails)
	if err != nil {
		return err
	}

	queue.PushFront(recycled...)
	pool.Remove(tx.UUID)

	return nil
}

// recyclePayloads resets the listed payloads to ready-to-submit with their
// ownership pointer cleared and returns the reloaded records for requeueing.
func recyclePayloads(state *DispatcherState, details []types.PayloadDetails) ([]*types.FullPayload, error) {
	recycled := make([]*types.FullPayload, 0, len(details))
	for _, detail := range details {
		if err := state.Payloads.SetPayloadStatus(detail.UUID, types.PayloadReadyToSubmit); err != nil {
			return nil, fmt.Errorf("failed to reset status of payload %s: %w", detail.UUID, err)
		}
		if err := state.Payloads.StoreTxUUIDByPayloadUUID(detail.UUID, uuid.Nil); err != nil {
			return nil, fmt.Errorf("failed to unlink payload %s: %w", detail.UUID, err)
		}

		payload, err := state.Payloads.GetPayload(detail.UUID)
		if err != nil {
			return nil, fmt.Errorf("failed to load payload %s for requeue: %w", detail.UUID, err)
		}
		recycled = append(recycled, payload)
	}

	return recycled, nil
}
