package adapter

import "errors"

// Chain-semantic rejections. Adapters classify raw RPC failures into these
// sentinels so the stages can tell a transient hiccup from a submission that
// will never succeed without a rebuild.
var (
	// ErrInsufficientFunds means the signer cannot pay for the transaction.
	// Retrying without intervention is pointless.
	ErrInsufficientFunds = errors.New("insufficient funds for submission")

	// ErrTxAlreadyKnown means the node already has this exact transaction in
	// its mempool. Safe to treat as a successful submission.
	ErrTxAlreadyKnown = errors.New("transaction already known to the node")

	// ErrTxReplaced means the tracked transaction was replaced by another
	// one with the same nonce.
	ErrTxReplaced = errors.New("transaction replaced by a competing one")

	// ErrSimulationFailed means the dry-run of the transaction reverted.
	ErrSimulationFailed = errors.New("transaction simulation failed")
)

// NonRetryableError marks an adapter error that must not be retried at the
// call site; the enclosing transaction should be dropped and rebuilt instead.
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return "non-retryable chain error: " + e.Err.Error()
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// NonRetryable wraps err so that IsNonRetryable reports true for it.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}

	return &NonRetryableError{Err: err}
}

// IsNonRetryable reports whether err is a terminal chain-semantic rejection.
func IsNonRetryable(err error) bool {
	var nre *NonRetryableError
	if errors.As(err, &nre) {
		return true
	}

	return errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrSimulationFailed)
}
