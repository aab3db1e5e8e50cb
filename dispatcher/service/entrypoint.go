package service

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/hyperlane-xyz/lander/types"
)

// SendPayload persists the payload and enqueues it for building. The write
// happens before the enqueue, so an accepted payload survives a crash even if
// it never reached the in-memory queue.
func (d *Dispatcher) SendPayload(payload *types.FullPayload) error {
	if !d.isStarted.Load() {
		return ErrDispatcherShutDown
	}
	if payload == nil {
		return fmt.Errorf("cannot send nil payload")
	}

	payload.Status = types.PayloadReadyToSubmit
	if err := d.state.Payloads.StorePayload(payload); err != nil {
		return fmt.Errorf("failed to persist payload: %w", err)
	}

	d.queue.PushBack(payload)

	d.logger.Info("accepted payload",
		zap.String("payload_uuid", payload.UUID().String()),
		zap.String("payload_label", payload.Details.Label),
	)

	return nil
}

// PayloadStatus returns the persisted status of a payload by UUID.
func (d *Dispatcher) PayloadStatus(id uuid.UUID) (types.PayloadStatus, error) {
	payload, err := d.state.Payloads.GetPayload(id)
	if err != nil {
		return types.PayloadStatus{}, err
	}

	return payload.Status, nil
}

// EstimateGasLimit asks the chain adapter for the cost of a single payload
// without submitting anything.
func (d *Dispatcher) EstimateGasLimit(ctx context.Context, payload *types.FullPayload) (*uint256.Int, error) {
	var gasLimit *uint256.Int
	if err := retry.Do(func() error {
		var err error
		gasLimit, err = d.state.Adapter.EstimateGasLimit(ctx, payload)

		return classifyAdapterError(err)
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		d.logger.Debug(
			"failed to estimate gas limit",
			zap.String("payload_uuid", payload.UUID().String()),
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		return nil, err
	}

	return gasLimit, nil
}
