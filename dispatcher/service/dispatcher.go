package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/kvdb"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/hyperlane-xyz/lander/adapter"
	"github.com/hyperlane-xyz/lander/dispatcher/config"
	"github.com/hyperlane-xyz/lander/dispatcher/nonce"
	"github.com/hyperlane-xyz/lander/dispatcher/store"
	"github.com/hyperlane-xyz/lander/metrics"
	"github.com/hyperlane-xyz/lander/types"
)

// Dispatcher runs one chain's submission pipeline: a building stage feeding
// an inclusion stage feeding a finality stage, all sharing persistent stores
// and one nonce manager. Payloads enter through SendPayload and leave the
// pipeline only in a terminal state.
type Dispatcher struct {
	startOnce sync.Once
	stopOnce  sync.Once
	isStarted *atomic.Bool
	wg        sync.WaitGroup
	quit      chan struct{}
	cancel    context.CancelFunc

	logger *zap.Logger
	cfg    *config.Config

	state    *DispatcherState
	queue    *BuildingQueue
	nonceMgr *nonce.Manager

	building  *BuildingStage
	inclusion *InclusionStage
	finality  *FinalityStage
}

// NewDispatcher opens the stores on the given database backend and wires up
// the stages for one chain.
func NewDispatcher(
	cfg *config.Config,
	logger *zap.Logger,
	db kvdb.Backend,
	chainAdapter adapter.ChainAdapter,
	m *metrics.DispatcherMetrics,
) (*Dispatcher, error) {
	if err := validateDispatcherConfig(cfg); err != nil {
		return nil, err
	}

	payloads, err := store.NewPayloadStore(db, cfg.ChainID)
	if err != nil {
		return nil, err
	}
	txs, err := store.NewTransactionStore(db, cfg.ChainID)
	if err != nil {
		return nil, err
	}
	nonces, err := store.NewNonceStore(db, cfg.ChainID, cfg.SignerAddress)
	if err != nil {
		return nil, err
	}

	return NewDispatcherWithStores(cfg, logger, payloads, txs, nonces, chainAdapter, m)
}

// NewDispatcherWithStores wires up the stages for one chain from
// already-opened stores.
func NewDispatcherWithStores(
	cfg *config.Config,
	logger *zap.Logger,
	payloads *store.PayloadStore,
	txs *store.TransactionStore,
	nonces *store.NonceStore,
	chainAdapter adapter.ChainAdapter,
	m *metrics.DispatcherMetrics,
) (*Dispatcher, error) {
	if err := validateDispatcherConfig(cfg); err != nil {
		return nil, err
	}

	state := NewDispatcherState(logger, cfg.ChainID, payloads, txs, chainAdapter, m)
	queue := NewBuildingQueue()
	nonceMgr := nonce.NewManager(state.Logger, cfg.ChainID, cfg.SignerAddress, nonces, txs, m)

	quit := make(chan struct{})
	inclusionCh := make(chan *types.Transaction, cfg.ChannelBufferSize)
	finalityCh := make(chan *types.Transaction, cfg.ChannelBufferSize)

	d := &Dispatcher{
		isStarted: atomic.NewBool(false),
		quit:      quit,
		logger:    state.Logger,
		cfg:       cfg,
		state:     state,
		queue:     queue,
		nonceMgr:  nonceMgr,
	}

	d.building = NewBuildingStage(state, queue, nonceMgr, inclusionCh, cfg.BatchSize, cfg.QueuePollInterval, quit)
	d.inclusion = NewInclusionStage(state, queue, inclusionCh, finalityCh, cfg.MaxSubmissionAttempts, quit)
	d.finality = NewFinalityStage(state, queue, nonceMgr, finalityCh, quit)

	return d, nil
}

// validateDispatcherConfig checks the parts of the config a dispatcher cannot
// run without. ChainID and SignerAddress have no usable defaults, so they are
// required here rather than in Config.Validate.
func validateDispatcherConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid dispatcher config: %w", err)
	}
	if cfg.ChainID == "" {
		return fmt.Errorf("chain id cannot be empty")
	}
	if cfg.SignerAddress == "" {
		return fmt.Errorf("signer address cannot be empty")
	}

	return nil
}

// Start recovers in-flight work from the stores and launches the stage loops.
func (d *Dispatcher) Start() error {
	var startErr error
	d.startOnce.Do(func() {
		d.logger.Info("starting the dispatcher")

		if err := d.recover(); err != nil {
			startErr = fmt.Errorf("failed to recover persisted state: %w", err)

			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		d.cancel = cancel

		d.wg.Add(5)
		go func() {
			defer d.wg.Done()
			d.building.loop(ctx)
		}()
		go func() {
			defer d.wg.Done()
			d.inclusion.receiveLoop()
		}()
		go func() {
			defer d.wg.Done()
			d.inclusion.processLoop(ctx)
		}()
		go func() {
			defer d.wg.Done()
			d.finality.receiveLoop()
		}()
		go func() {
			defer d.wg.Done()
			d.finality.processLoop(ctx)
		}()

		d.isStarted.Store(true)
		d.logger.Info("the dispatcher is successfully started")
	})

	return startErr
}

// Stop terminates the stage loops and waits for them to drain. In-flight work
// stays in the stores and is picked up by the recovery scan on the next Start.
func (d *Dispatcher) Stop() error {
	if !d.isStarted.Load() {
		return ErrDispatcherNotStarted
	}

	var stopErr error
	d.stopOnce.Do(func() {
		d.logger.Info("stopping the dispatcher")

		d.isStarted.Store(false)
		close(d.quit)
		if d.cancel != nil {
			d.cancel()
		}
		d.wg.Wait()

		d.logger.Info("the dispatcher is successfully stopped")
	})

	return stopErr
}

// recover rebuilds the in-memory queue and pools from the stores by walking
// payloads in arrival order. Ready payloads re-enter the building queue; a
// payload owned by a live transaction re-seeds the pool matching that
// transaction's persisted state.
//
// Finishing a dropped transaction's recycle resets every constituent payload
// to ready-to-submit, so the scan tracks which payloads are already queued and
// never enqueues one twice. A double-queued payload would be built into two
// live transactions and could execute twice on-chain.
func (d *Dispatcher) recover() error {
	highest, err := d.state.Payloads.HighestIndex()
	if err != nil {
		return err
	}

	seenTxs := make(map[uuid.UUID]struct{})
	enqueued := make(map[uuid.UUID]struct{})
	recovered := 0

	for index := uint32(1); index <= highest; index++ {
		payload, err := d.state.Payloads.PayloadByIndex(index)
		if err != nil {
			return fmt.Errorf("failed to load payload at index %d: %w", index, err)
		}

		if _, ok := enqueued[payload.UUID()]; ok {
			// already requeued while finishing another constituent's recycle
			continue
		}

		switch payload.Status.State {
		case types.PayloadStateReadyToSubmit:
			d.queue.PushBack(payload)
			enqueued[payload.UUID()] = struct{}{}
			recovered++

		case types.PayloadStateInTransaction:
			txUUID, err := d.state.Payloads.TxUUIDByPayloadUUID(payload.UUID())
			if err != nil {
				return err
			}
			if txUUID == uuid.Nil {
				// crashed between resetting the status and clearing the link
				d.queue.PushBack(payload)
				enqueued[payload.UUID()] = struct{}{}
				recovered++

				continue
			}
			if _, ok := seenTxs[txUUID]; ok {
				continue
			}
			seenTxs[txUUID] = struct{}{}

			if err := d.recoverTransaction(txUUID, payload, enqueued); err != nil {
				return err
			}
			recovered++

		case types.PayloadStateDropped:
			// terminal, nothing to do
		}
	}

	d.logger.Info("recovered persisted state",
		zap.Uint32("scanned_payloads", highest),
		zap.Int("recovered", recovered),
	)

	return nil
}

func (d *Dispatcher) recoverTransaction(txUUID uuid.UUID, payload *types.FullPayload, enqueued map[uuid.UUID]struct{}) error {
	tx, err := d.state.Txs.GetTransaction(txUUID)
	if err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			// crashed between linking the payload and persisting the tx
			d.queue.PushBack(payload)
			enqueued[payload.UUID()] = struct{}{}

			return nil
		}

		return err
	}

	switch tx.Status.State {
	case types.TxStatePendingInclusion, types.TxStateMempool:
		d.inclusion.Pool().Insert(tx)
	case types.TxStateIncluded:
		d.finality.Pool().Insert(tx)
	case types.TxStateDropped:
		// crashed partway through drop handling; finish the recycle for the
		// constituents that are not already queued
		pending := make([]types.PayloadDetails, 0, len(tx.PayloadDetails))
		for _, detail := range tx.PayloadDetails {
			if _, ok := enqueued[detail.UUID]; !ok {
				pending = append(pending, detail)
			}
		}

		recycled, err := recyclePayloads(d.state, pending)
		if err != nil {
			return err
		}
		d.queue.PushFront(recycled...)
		for _, detail := range tx.PayloadDetails {
			enqueued[detail.UUID] = struct{}{}
		}
	case types.TxStateFinalized:
		// terminal, nothing to do
	}

	return nil
}
