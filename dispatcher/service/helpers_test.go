package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperlane-xyz/lander/adapter/mocks"
	"github.com/hyperlane-xyz/lander/dispatcher/config"
	"github.com/hyperlane-xyz/lander/dispatcher/nonce"
	"github.com/hyperlane-xyz/lander/dispatcher/store"
	"github.com/hyperlane-xyz/lander/metrics"
	"github.com/hyperlane-xyz/lander/testutil"
	"github.com/hyperlane-xyz/lander/types"
)

const testBlockTime = 10 * time.Millisecond

// stageFixture wires the shared stage state onto temp-dir stores and a
// mocked chain adapter.
type stageFixture struct {
	r        *rand.Rand
	state    *DispatcherState
	queue    *BuildingQueue
	nonceMgr *nonce.Manager
	nonces   *store.NonceStore
	adapter  *mocks.MockChainAdapter
	quit     chan struct{}
}

func newStageFixture(t *testing.T, seed int64) *stageFixture {
	r := rand.New(rand.NewSource(seed))

	cfg := config.DefaultDBConfigWithHomePath(t.TempDir())
	db, err := cfg.GetDBBackend()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	chainID := testutil.GenChainID(r)
	signer := testutil.GenSignerAddress(r)

	payloads, err := store.NewPayloadStore(db, chainID)
	require.NoError(t, err)
	txs, err := store.NewTransactionStore(db, chainID)
	require.NoError(t, err)
	nonces, err := store.NewNonceStore(db, chainID, signer)
	require.NoError(t, err)

	mockAdapter := testutil.PrepareMockedAdapter(t, testBlockTime, 10)
	m := metrics.NewDispatcherMetrics()
	state := NewDispatcherState(testutil.GetTestLogger(t), chainID, payloads, txs, mockAdapter, m)

	return &stageFixture{
		r:        r,
		state:    state,
		queue:    NewBuildingQueue(),
		nonceMgr: nonce.NewManager(state.Logger, chainID, signer, nonces, txs, m),
		nonces:   nonces,
		adapter:  mockAdapter,
		quit:     make(chan struct{}),
	}
}

// storedPayloads generates n payloads and persists them.
func (fx *stageFixture) storedPayloads(t *testing.T, n int) []*types.FullPayload {
	payloads := testutil.GenRandomPayloads(fx.r, n)
	for _, p := range payloads {
		require.NoError(t, fx.state.Payloads.StorePayload(p))
	}

	return payloads
}

// storedTransaction persists a transaction over the payloads with all links
// in place, as the building stage leaves it.
func (fx *stageFixture) storedTransaction(t *testing.T, payloads ...*types.FullPayload) *types.Transaction {
	tx := testutil.GenRandomTransaction(fx.r, payloads...)
	require.NoError(t, fx.nonces.SetTrackedTxUUID(tx.Nonce, tx.UUID))
	require.NoError(t, fx.state.StoreTransaction(tx))

	return tx
}

func (fx *stageFixture) requirePayloadStatus(t *testing.T, p *types.FullPayload, want types.PayloadStatus) {
	stored, err := fx.state.Payloads.GetPayload(p.UUID())
	require.NoError(t, err)
	require.Equal(t, want, stored.Status)
}
