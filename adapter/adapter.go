package adapter

import (
	"context"
	"time"

	"github.com/holiman/uint256"

	"github.com/hyperlane-xyz/lander/types"
)

// TxBuildingResult pairs the payload details handed to BuildTransactions with
// the transaction they were built into. Tx is nil when building failed for
// those payloads.
type TxBuildingResult struct {
	Payloads []types.PayloadDetails
	Tx       *types.Transaction
}

// ChainAdapter is the capability set one target chain exposes to the
// submission pipeline. Implementations wrap the chain's RPC client and byte
// formats; the pipeline never inspects chain-specific data.
//
//go:generate mockgen -source=adapter.go -destination=mocks/chain_adapter_mock.go -package=mocks ChainAdapter
type ChainAdapter interface {
	// EstimateGasLimit estimates the cost of a single payload. A nil result
	// with nil error means the chain has no meaningful per-payload estimate.
	EstimateGasLimit(ctx context.Context, payload *types.FullPayload) (*uint256.Int, error)

	// BuildTransactions turns a batch of payloads into one or more signed
	// transaction precursors. Payload order inside each result's transaction
	// must match the order of the input batch. The adapter owns cost
	// estimation and capping for the batch: payloads that do not fit a
	// transaction's cost budget come back in a separate result.
	BuildTransactions(ctx context.Context, payloads []*types.FullPayload) []TxBuildingResult

	// Submit broadcasts the transaction, filling in chain data such as the
	// hash and gas price on the passed transaction. Calling it again for the
	// same transaction escalates the fee on chains that support replacement.
	Submit(ctx context.Context, tx *types.Transaction) error

	// TxStatus queries the chain for the transaction's current status.
	TxStatus(ctx context.Context, tx *types.Transaction) (types.TransactionStatus, error)

	// RevertedPayloads returns the details of payloads whose effects were
	// reverted on-chain even though the enclosing transaction landed.
	RevertedPayloads(ctx context.Context, tx *types.Transaction) ([]types.PayloadDetails, error)

	// SimulateTx dry-runs the transaction against the current chain state.
	SimulateTx(ctx context.Context, tx *types.Transaction) (bool, error)

	// EstimatedBlockTime returns the chain's block cadence. Stage pools are
	// re-evaluated once per block rather than on a wall-clock timer.
	EstimatedBlockTime() time.Duration

	// MaxBatchSize returns the maximum number of payloads the adapter is
	// willing to bundle into one transaction. Zero means one at a time.
	MaxBatchSize() uint32
}
