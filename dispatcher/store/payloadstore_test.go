package store_test

import (
	"math/rand"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hyperlane-xyz/lander/dispatcher/config"
	"github.com/hyperlane-xyz/lander/dispatcher/store"
	"github.com/hyperlane-xyz/lander/testutil"
	"github.com/hyperlane-xyz/lander/types"
)

// FuzzPayloadStore tests storing and retrieving payloads along with the
// arrival index bookkeeping.
func FuzzPayloadStore(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		homePath := t.TempDir()
		cfg := config.DefaultDBConfigWithHomePath(homePath)

		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		ps, err := store.NewPayloadStore(db, testutil.GenChainID(r))
		require.NoError(t, err)

		defer func() {
			err := db.Close()
			require.NoError(t, err)
			err = os.RemoveAll(homePath)
			require.NoError(t, err)
		}()

		payload := testutil.GenRandomPayload(r)

		// unknown payloads are reported as not found
		_, err = ps.GetPayload(payload.UUID())
		require.ErrorIs(t, err, store.ErrPayloadNotFound)

		err = ps.StorePayload(payload)
		require.NoError(t, err)

		stored, err := ps.GetPayload(payload.UUID())
		require.NoError(t, err)
		require.Equal(t, payload.Details, stored.Details)
		require.Equal(t, payload.Data, stored.Data)
		require.Equal(t, types.PayloadReadyToSubmit, stored.Status)

		// first store assigned index 1
		highest, err := ps.HighestIndex()
		require.NoError(t, err)
		require.Equal(t, uint32(1), highest)

		byIndex, err := ps.PayloadByIndex(1)
		require.NoError(t, err)
		require.Equal(t, payload.UUID(), byIndex.UUID())

		// re-storing keeps the index and does not bump the counter
		err = ps.StorePayload(payload)
		require.NoError(t, err)
		highest, err = ps.HighestIndex()
		require.NoError(t, err)
		require.Equal(t, uint32(1), highest)

		// a second payload gets the next index
		second := testutil.GenRandomPayload(r)
		err = ps.StorePayload(second)
		require.NoError(t, err)
		highest, err = ps.HighestIndex()
		require.NoError(t, err)
		require.Equal(t, uint32(2), highest)

		byIndex, err = ps.PayloadByIndex(2)
		require.NoError(t, err)
		require.Equal(t, second.UUID(), byIndex.UUID())

		_, err = ps.PayloadByIndex(3)
		require.ErrorIs(t, err, store.ErrPayloadNotFound)
	})
}

// FuzzPayloadStoreStatusAndOwnership tests the status transitions and the
// payload to transaction ownership pointer.
func FuzzPayloadStoreStatusAndOwnership(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		homePath := t.TempDir()
		cfg := config.DefaultDBConfigWithHomePath(homePath)

		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		ps, err := store.NewPayloadStore(db, testutil.GenChainID(r))
		require.NoError(t, err)

		defer func() {
			err := db.Close()
			require.NoError(t, err)
			err = os.RemoveAll(homePath)
			require.NoError(t, err)
		}()

		payload := testutil.GenRandomPayload(r)

		// status updates on unknown payloads fail
		err = ps.SetPayloadStatus(payload.UUID(), types.PayloadDropped(types.PayloadDropReverted))
		require.ErrorIs(t, err, store.ErrPayloadNotFound)

		err = ps.StorePayload(payload)
		require.NoError(t, err)

		status := types.PayloadInTransaction(types.StatusMempool)
		err = ps.SetPayloadStatus(payload.UUID(), status)
		require.NoError(t, err)

		stored, err := ps.GetPayload(payload.UUID())
		require.NoError(t, err)
		require.Equal(t, status, stored.Status)

		// unowned payloads point at the zero uuid
		owner, err := ps.TxUUIDByPayloadUUID(payload.UUID())
		require.NoError(t, err)
		require.Equal(t, uuid.Nil, owner)

		txUUID := testutil.GenRandomUUID(r)
		err = ps.StoreTxUUIDByPayloadUUID(payload.UUID(), txUUID)
		require.NoError(t, err)

		owner, err = ps.TxUUIDByPayloadUUID(payload.UUID())
		require.NoError(t, err)
		require.Equal(t, txUUID, owner)

		// clearing stores the zero uuid rather than deleting
		err = ps.StoreTxUUIDByPayloadUUID(payload.UUID(), uuid.Nil)
		require.NoError(t, err)

		owner, err = ps.TxUUIDByPayloadUUID(payload.UUID())
		require.NoError(t, err)
		require.Equal(t, uuid.Nil, owner)
	})
}
