package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// TxState is the lifecycle state of a transaction on its way to finality.
type TxState int

const (
	// TxStatePendingInclusion means the transaction was built and signed but
	// has not been seen by the chain yet.
	TxStatePendingInclusion TxState = iota
	// TxStateMempool means the transaction was accepted by a node but is not
	// included in a block.
	TxStateMempool
	// TxStateIncluded means the transaction is in a block that is not yet
	// irreversible.
	TxStateIncluded
	// TxStateFinalized means the block containing the transaction can no
	// longer be reorganized away. Terminal.
	TxStateFinalized
	// TxStateDropped means the transaction will never land (replaced,
	// underpriced, expired, reorged out). Terminal, frees its nonce.
	TxStateDropped
)

func (s TxState) String() string {
	switch s {
	case TxStatePendingInclusion:
		return "PendingInclusion"
	case TxStateMempool:
		return "Mempool"
	case TxStateIncluded:
		return "Included"
	case TxStateFinalized:
		return "Finalized"
	case TxStateDropped:
		return "Dropped"
	default:
		return fmt.Sprintf("TxState(%d)", int(s))
	}
}

// TxDropReason explains why a transaction was dropped.
type TxDropReason int

const (
	TxDropNone TxDropReason = iota
	TxDropDroppedByChain
	TxDropFailedSimulation
	TxDropSubmissionExhausted
)

func (r TxDropReason) String() string {
	switch r {
	case TxDropNone:
		return "None"
	case TxDropDroppedByChain:
		return "DroppedByChain"
	case TxDropFailedSimulation:
		return "FailedSimulation"
	case TxDropSubmissionExhausted:
		return "SubmissionExhausted"
	default:
		return fmt.Sprintf("TxDropReason(%d)", int(r))
	}
}

// TransactionStatus is a TxState plus the drop reason when the state is
// TxStateDropped. The zero value is PendingInclusion.
type TransactionStatus struct {
	State  TxState      `json:"state"`
	Reason TxDropReason `json:"reason,omitempty"`
}

var (
	StatusPendingInclusion = TransactionStatus{State: TxStatePendingInclusion}
	StatusMempool          = TransactionStatus{State: TxStateMempool}
	StatusIncluded         = TransactionStatus{State: TxStateIncluded}
	StatusFinalized        = TransactionStatus{State: TxStateFinalized}
)

// StatusDropped returns a dropped status with the given reason.
func StatusDropped(reason TxDropReason) TransactionStatus {
	return TransactionStatus{State: TxStateDropped, Reason: reason}
}

// IsDropped reports whether the status is terminal-dropped.
func (s TransactionStatus) IsDropped() bool {
	return s.State == TxStateDropped
}

// IsFinalized reports whether the status is terminal-finalized.
func (s TransactionStatus) IsFinalized() bool {
	return s.State == TxStateFinalized
}

func (s TransactionStatus) String() string {
	if s.State == TxStateDropped {
		return fmt.Sprintf("Dropped(%s)", s.Reason)
	}

	return s.State.String()
}

// Transaction is a signed, nonce-bound bundle of one or more payloads
// submitted to the chain as a single operation. The transaction exclusively
// owns the association to its constituent payloads; payloads only keep a
// back-reference through the payload store.
type Transaction struct {
	UUID uuid.UUID `json:"uuid"`
	// PayloadDetails is ordered, one entry per constituent payload. The
	// order is preserved from the building batch for deterministic auditing.
	PayloadDetails []PayloadDetails `json:"payload_details"`
	// VMSpecificData carries the opaque chain-specific precursor or signed
	// bytes produced by the chain adapter. The core never inspects it.
	VMSpecificData []byte            `json:"vm_specific_data,omitempty"`
	Hash           string            `json:"hash,omitempty"`
	Nonce          *uint256.Int      `json:"nonce,omitempty"`
	Status         TransactionStatus `json:"status"`
	// SubmissionAttempts counts calls to the adapter's Submit. Each retry
	// may escalate the gas price on chains that support replacement.
	SubmissionAttempts uint32    `json:"submission_attempts"`
	LastSubmissionAt   time.Time `json:"last_submission_at,omitempty"`
}

// NewTransaction returns a pending-inclusion transaction wrapping the given
// payload details.
func NewTransaction(txUUID uuid.UUID, details []PayloadDetails, vmData []byte) *Transaction {
	return &Transaction{
		UUID:           txUUID,
		PayloadDetails: details,
		VMSpecificData: vmData,
		Status:         StatusPendingInclusion,
	}
}
