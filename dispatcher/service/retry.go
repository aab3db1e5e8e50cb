package service

import (
	"errors"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/hyperlane-xyz/lander/adapter"
)

var (
	RtyAttNum = uint(5)
	RtyAtt    = retry.Attempts(RtyAttNum)
	RtyDel    = retry.Delay(time.Millisecond * 400)
	RtyErr    = retry.LastErrorOnly(true)
)

// classifyAdapterError stops retry-go from re-attempting calls whose failure
// the chain already made permanent.
func classifyAdapterError(err error) error {
	if err == nil {
		return nil
	}
	if adapter.IsNonRetryable(err) ||
		errors.Is(err, adapter.ErrTxAlreadyKnown) ||
		errors.Is(err, adapter.ErrTxReplaced) {
		return retry.Unrecoverable(err)
	}

	return err
}
