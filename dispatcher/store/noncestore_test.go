package store_test

import (
	"math/rand"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/hyperlane-xyz/lander/dispatcher/config"
	"github.com/hyperlane-xyz/lander/dispatcher/store"
	"github.com/hyperlane-xyz/lander/testutil"
)

// FuzzNonceStore tests the tracked nonce ledger and the boundary nonces.
func FuzzNonceStore(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		t.Parallel()
		r := rand.New(rand.NewSource(seed))

		homePath := t.TempDir()
		cfg := config.DefaultDBConfigWithHomePath(homePath)

		db, err := cfg.GetDBBackend()
		require.NoError(t, err)
		ns, err := store.NewNonceStore(db, testutil.GenChainID(r), testutil.GenSignerAddress(r))
		require.NoError(t, err)

		defer func() {
			err := db.Close()
			require.NoError(t, err)
			err = os.RemoveAll(homePath)
			require.NoError(t, err)
		}()

		nonce := uint256.NewInt(r.Uint64() % 1000)

		// untracked nonces report the zero uuid
		tracked, err := ns.TrackedTxUUID(nonce)
		require.NoError(t, err)
		require.Equal(t, uuid.Nil, tracked)

		txUUID := testutil.GenRandomUUID(r)
		err = ns.SetTrackedTxUUID(nonce, txUUID)
		require.NoError(t, err)

		tracked, err = ns.TrackedTxUUID(nonce)
		require.NoError(t, err)
		require.Equal(t, txUUID, tracked)

		err = ns.ClearTrackedTxUUID(nonce)
		require.NoError(t, err)

		tracked, err = ns.TrackedTxUUID(nonce)
		require.NoError(t, err)
		require.Equal(t, uuid.Nil, tracked)

		// boundaries default to (absent, zero)
		finalized, found, upper, err := ns.Boundaries()
		require.NoError(t, err)
		require.False(t, found)
		require.True(t, finalized.IsZero())
		require.True(t, upper.IsZero())

		newUpper := uint256.NewInt(r.Uint64()%1000 + 1)
		err = ns.SetUpperNonce(newUpper)
		require.NoError(t, err)

		newFinalized := uint256.NewInt(r.Uint64() % 1000)
		err = ns.SetFinalizedNonce(newFinalized)
		require.NoError(t, err)

		finalized, found, upper, err = ns.Boundaries()
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, 0, newFinalized.Cmp(finalized))
		require.Equal(t, 0, newUpper.Cmp(upper))

		single, err := ns.UpperNonce()
		require.NoError(t, err)
		require.Equal(t, 0, newUpper.Cmp(single))

		got, gotFound, err := ns.FinalizedNonce()
		require.NoError(t, err)
		require.True(t, gotFound)
		require.Equal(t, 0, newFinalized.Cmp(got))
	})
}

// TestNonceStoreSignerIsolation checks two signers never see each other's
// tracking entries or boundaries.
func TestNonceStoreSignerIsolation(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(10))

	homePath := t.TempDir()
	cfg := config.DefaultDBConfigWithHomePath(homePath)

	db, err := cfg.GetDBBackend()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()

	chainID := testutil.GenChainID(r)
	alice, err := store.NewNonceStore(db, chainID, testutil.GenSignerAddress(r))
	require.NoError(t, err)
	bob, err := store.NewNonceStore(db, chainID, testutil.GenSignerAddress(r))
	require.NoError(t, err)

	nonce := uint256.NewInt(7)
	require.NoError(t, alice.SetTrackedTxUUID(nonce, testutil.GenRandomUUID(r)))
	require.NoError(t, alice.SetUpperNonce(uint256.NewInt(8)))

	tracked, err := bob.TrackedTxUUID(nonce)
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, tracked)

	upper, err := bob.UpperNonce()
	require.NoError(t, err)
	require.True(t, upper.IsZero())
}
