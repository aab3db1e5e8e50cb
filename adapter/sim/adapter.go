// Package sim provides an in-memory chain adapter that includes and
// finalizes transactions on a timer. It backs the daemon's demo mode and
// pipeline tests that need a whole chain lifecycle without a node.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/hyperlane-xyz/lander/adapter"
	"github.com/hyperlane-xyz/lander/types"
)

const (
	defaultGasLimit = 21000

	// blocks a submitted transaction waits before it counts as included,
	// and additionally before it counts as finalized
	blocksToInclusion = 1
	blocksToFinality  = 2
)

// Adapter simulates a chain: a submitted transaction reaches the mempool
// immediately, is included after one block time and finalized two block
// times later. Transactions are never dropped or reverted.
type Adapter struct {
	mu          sync.Mutex
	blockTime   time.Duration
	maxBatch    uint32
	submittedAt map[uuid.UUID]time.Time
}

var _ adapter.ChainAdapter = (*Adapter)(nil)

// New returns a simulated adapter with the given block cadence and batch cap.
func New(blockTime time.Duration, maxBatch uint32) *Adapter {
	return &Adapter{
		blockTime:   blockTime,
		maxBatch:    maxBatch,
		submittedAt: make(map[uuid.UUID]time.Time),
	}
}

func (a *Adapter) EstimateGasLimit(_ context.Context, _ *types.FullPayload) (*uint256.Int, error) {
	return uint256.NewInt(defaultGasLimit), nil
}

// BuildTransactions bundles the whole batch into a single transaction.
func (a *Adapter) BuildTransactions(_ context.Context, payloads []*types.FullPayload) []adapter.TxBuildingResult {
	details := make([]types.PayloadDetails, 0, len(payloads))
	data := make([]byte, 0)
	for _, p := range payloads {
		details = append(details, p.Details)
		data = append(data, p.Data...)
	}

	tx := types.NewTransaction(uuid.New(), details, data)

	return []adapter.TxBuildingResult{{Payloads: details, Tx: tx}}
}

func (a *Adapter) Submit(_ context.Context, tx *types.Transaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.submittedAt[tx.UUID]; !ok {
		a.submittedAt[tx.UUID] = time.Now()
	}
	tx.Hash = tx.UUID.String()

	return nil
}

func (a *Adapter) TxStatus(_ context.Context, tx *types.Transaction) (types.TransactionStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	firstSeen, ok := a.submittedAt[tx.UUID]
	if !ok {
		return types.StatusPendingInclusion, nil
	}

	elapsed := time.Since(firstSeen)
	switch {
	case elapsed < time.Duration(blocksToInclusion)*a.blockTime:
		return types.StatusMempool, nil
	case elapsed < time.Duration(blocksToInclusion+blocksToFinality)*a.blockTime:
		return types.StatusIncluded, nil
	default:
		return types.StatusFinalized, nil
	}
}

func (a *Adapter) RevertedPayloads(_ context.Context, _ *types.Transaction) ([]types.PayloadDetails, error) {
	return nil, nil
}

func (a *Adapter) SimulateTx(_ context.Context, _ *types.Transaction) (bool, error) {
	return true, nil
}

func (a *Adapter) EstimatedBlockTime() time.Duration {
	return a.blockTime
}

func (a *Adapter) MaxBatchSize() uint32 {
	return a.maxBatch
}
