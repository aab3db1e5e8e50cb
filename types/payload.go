package types

import (
	"fmt"

	"github.com/google/uuid"
)

// PayloadState is the lifecycle state of a payload.
type PayloadState int

const (
	// PayloadStateReadyToSubmit means the payload is waiting in the building
	// queue and is not owned by any live transaction.
	PayloadStateReadyToSubmit PayloadState = iota
	// PayloadStateInTransaction means the payload is owned by a transaction;
	// the wrapped transaction status tells how far along that transaction is.
	PayloadStateInTransaction
	// PayloadStateDropped means the payload's effects will never land
	// (e.g. reverted on-chain). Terminal.
	PayloadStateDropped
)

func (s PayloadState) String() string {
	switch s {
	case PayloadStateReadyToSubmit:
		return "ReadyToSubmit"
	case PayloadStateInTransaction:
		return "InTransaction"
	case PayloadStateDropped:
		return "Dropped"
	default:
		return fmt.Sprintf("PayloadState(%d)", int(s))
	}
}

// PayloadDropReason explains why a payload was dropped.
type PayloadDropReason int

const (
	PayloadDropNone PayloadDropReason = iota
	PayloadDropReverted
)

func (r PayloadDropReason) String() string {
	switch r {
	case PayloadDropNone:
		return "None"
	case PayloadDropReverted:
		return "Reverted"
	default:
		return fmt.Sprintf("PayloadDropReason(%d)", int(r))
	}
}

// PayloadStatus is a PayloadState plus the transaction status while in a
// transaction, or the drop reason when dropped. The zero value is
// ReadyToSubmit.
type PayloadStatus struct {
	State    PayloadState      `json:"state"`
	TxStatus TransactionStatus `json:"tx_status,omitempty"`
	Reason   PayloadDropReason `json:"reason,omitempty"`
}

var PayloadReadyToSubmit = PayloadStatus{State: PayloadStateReadyToSubmit}

// PayloadInTransaction returns the status of a payload owned by a transaction
// with the given status.
func PayloadInTransaction(txStatus TransactionStatus) PayloadStatus {
	return PayloadStatus{State: PayloadStateInTransaction, TxStatus: txStatus}
}

// PayloadDropped returns a terminal dropped status with the given reason.
func PayloadDropped(reason PayloadDropReason) PayloadStatus {
	return PayloadStatus{State: PayloadStateDropped, Reason: reason}
}

func (s PayloadStatus) String() string {
	switch s.State {
	case PayloadStateInTransaction:
		return fmt.Sprintf("InTransaction(%s)", s.TxStatus)
	case PayloadStateDropped:
		return fmt.Sprintf("Dropped(%s)", s.Reason)
	default:
		return s.State.String()
	}
}

// PayloadDetails is the compact cross-referencing view of a payload carried
// inside transactions and adapter results.
type PayloadDetails struct {
	UUID uuid.UUID `json:"uuid"`
	// Label is a human-readable identifier used in logs and metrics, e.g.
	// the message id the payload was derived from.
	Label string `json:"label,omitempty"`
}

// FullPayload is one unit of chain-bound work awaiting submission. Data is an
// opaque chain-specific instruction blob produced upstream; the core only
// moves it through the pipeline.
type FullPayload struct {
	Details PayloadDetails `json:"details"`
	Data    []byte         `json:"data,omitempty"`
	// SuccessCriteria optionally carries chain-specific bytes the adapter
	// uses to detect whether the payload's effects were reverted even though
	// the enclosing transaction landed.
	SuccessCriteria []byte        `json:"success_criteria,omitempty"`
	Status          PayloadStatus `json:"status"`
}

// NewFullPayload returns a ready-to-submit payload with a fresh UUID.
func NewFullPayload(label string, data []byte) *FullPayload {
	return &FullPayload{
		Details: PayloadDetails{UUID: uuid.New(), Label: label},
		Data:    data,
		Status:  PayloadReadyToSubmit,
	}
}

// UUID returns the payload's unique identifier.
func (p *FullPayload) UUID() uuid.UUID {
	return p.Details.UUID
}
