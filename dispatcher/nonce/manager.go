// Package nonce assigns per-signer sequence numbers to transaction attempts.
//
// The manager scans for the lowest reusable nonce instead of blindly
// incrementing: nonces freed by dropped or replaced transactions are handed
// out again, which bounds nonce growth under chain instability and keeps
// gap-rejecting chains happy. Assignment is serialized per signer.
package nonce

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/hyperlane-xyz/lander/dispatcher/store"
	"github.com/hyperlane-xyz/lander/metrics"
)

// Manager owns one signer's nonce space. All reads and writes of the
// tracking ledger go through the manager's mutex, so no two concurrent
// assignments can pick the same free nonce.
type Manager struct {
	mu sync.Mutex

	logger  *zap.Logger
	chainID string
	signer  string
	nonces  *store.NonceStore
	txs     *store.TransactionStore
	metrics *metrics.DispatcherMetrics

	// reserved holds nonces assigned since process start whose transactions
	// may not be persisted yet. A nonce tracked by a missing transaction is
	// only free when it is not reserved: after a restart the map is empty, so
	// nonces orphaned by a crash become reusable again.
	reserved map[[32]byte]struct{}
}

// NewManager returns a nonce manager for one (chain, signer) pair.
func NewManager(
	logger *zap.Logger,
	chainID string,
	signer string,
	nonces *store.NonceStore,
	txs *store.TransactionStore,
	m *metrics.DispatcherMetrics,
) *Manager {
	return &Manager{
		logger:   logger.With(zap.String("signer", signer)),
		chainID:  chainID,
		signer:   signer,
		nonces:   nonces,
		txs:      txs,
		metrics:  m,
		reserved: make(map[[32]byte]struct{}),
	}
}

// AssignNextNonce picks a nonce for the transaction attempt identified by
// txUUID. previousNonce is non-nil when this is a re-attempt (fee bump or
// rebuild) of an already tracked transaction; its old tracking entry is
// cleared first so the same transaction never holds two nonces.
//
// The lowest free nonce in [finalized, upper) wins; a nonce is free when it
// is untracked, tracked by a dropped transaction, or tracked by a transaction
// missing from the store without being reserved this session (a crash between
// tracking and persisting). When no nonce is free, upper is assigned and
// incremented.
func (m *Manager) AssignNextNonce(txUUID uuid.UUID, previousNonce *uint256.Int) (*uint256.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if previousNonce != nil {
		if err := m.nonces.ClearTrackedTxUUID(previousNonce); err != nil {
			return nil, fmt.Errorf("failed to clear previous nonce tracking: %w", err)
		}
		delete(m.reserved, previousNonce.Bytes32())
		m.logger.Debug("cleared nonce tracking for re-attempted transaction",
			zap.String("tx_uuid", txUUID.String()),
			zap.Uint64("previous_nonce", previousNonce.Uint64()),
		)
	}

	finalized, finalizedFound, upper, err := m.nonces.Boundaries()
	if err != nil {
		return nil, fmt.Errorf("failed to read boundary nonces: %w", err)
	}

	start := uint256.NewInt(0)
	if finalizedFound {
		start = finalized
	}

	var chosen *uint256.Int
	for n := start.Clone(); n.Lt(upper); n.AddUint64(n, 1) {
		free, err := m.nonceFree(n)
		if err != nil {
			return nil, err
		}
		if free {
			chosen = n.Clone()

			break
		}
	}

	if chosen == nil {
		// every nonce below upper is held by a live transaction
		chosen = upper.Clone()
		next := new(uint256.Int).AddUint64(upper, 1)
		if err := m.nonces.SetUpperNonce(next); err != nil {
			return nil, fmt.Errorf("failed to extend upper nonce: %w", err)
		}
		m.metrics.RecordUpperNonce(m.chainID, m.signer, next.Uint64())
	}

	if err := m.nonces.SetTrackedTxUUID(chosen, txUUID); err != nil {
		return nil, fmt.Errorf("failed to track assigned nonce: %w", err)
	}
	m.reserved[chosen.Bytes32()] = struct{}{}

	m.logger.Debug("assigned nonce",
		zap.String("tx_uuid", txUUID.String()),
		zap.Uint64("nonce", chosen.Uint64()),
	)

	return chosen, nil
}

// nonceFree reports whether the nonce can be handed out. Callers must hold
// the manager mutex.
func (m *Manager) nonceFree(nonce *uint256.Int) (bool, error) {
	tracked, err := m.nonces.TrackedTxUUID(nonce)
	if err != nil {
		return false, fmt.Errorf("failed to read nonce tracking: %w", err)
	}
	if tracked == uuid.Nil {
		return true, nil
	}

	tx, err := m.txs.GetTransaction(tracked)
	if errors.Is(err, store.ErrTransactionNotFound) {
		if _, ok := m.reserved[nonce.Bytes32()]; ok {
			// assigned this session; the transaction just has not hit the
			// store yet
			return false, nil
		}
		// tracked but never persisted: a crash hit between tracking the
		// nonce and storing the transaction
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load tracking transaction: %w", err)
	}

	return tx.Status.IsDropped(), nil
}

// BumpFinalizedNonce advances the finalized boundary to nonce if it is higher
// than the current one. The boundary never moves backwards, and upper is
// raised alongside so the invariant finalized < upper holds.
func (m *Manager) BumpFinalizedNonce(nonce *uint256.Int) error {
	if nonce == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	finalized, found, upper, err := m.nonces.Boundaries()
	if err != nil {
		return fmt.Errorf("failed to read boundary nonces: %w", err)
	}
	if found && !finalized.Lt(nonce) {
		return nil
	}

	if err := m.nonces.SetFinalizedNonce(nonce); err != nil {
		return fmt.Errorf("failed to advance finalized nonce: %w", err)
	}
	m.metrics.RecordFinalizedNonce(m.chainID, m.signer, nonce.Uint64())

	if next := new(uint256.Int).AddUint64(nonce, 1); upper.Lt(next) {
		if err := m.nonces.SetUpperNonce(next); err != nil {
			return fmt.Errorf("failed to raise upper nonce: %w", err)
		}
		m.metrics.RecordUpperNonce(m.chainID, m.signer, next.Uint64())
	}

	return nil
}
