package store

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/lightningnetwork/lnd/kvdb"
)

var (
	// mapping (chain, signer, nonce) -> tracking transaction uuid
	nonceTrackedBucketName = []byte("nonce_tracked")
	// mapping (chain, signer) -> finalized/upper boundary nonces
	nonceBoundsBucketName = []byte("nonce_bounds")

	upperNonceKey     = []byte("upper")
	finalizedNonceKey = []byte("finalized")
)

// NonceStore persists the per-signer nonce allocation ledger: the boundary
// nonces and the sparse nonce -> transaction tracking map. Two signers' nonce
// spaces never interact; all keys carry the (chain, signer) namespace.
type NonceStore struct {
	db      kvdb.Backend
	chainID string
	signer  string
}

// NewNonceStore returns a nonce store backed by db, scoped to one
// (chain, signer) pair.
func NewNonceStore(db kvdb.Backend, chainID, signer string) (*NonceStore, error) {
	s := &NonceStore{db: db, chainID: chainID, signer: signer}
	if err := s.initBuckets(); err != nil {
		return nil, fmt.Errorf("failed to initialize nonce buckets: %w", err)
	}

	return s, nil
}

func (s *NonceStore) initBuckets() error {
	return kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		for _, name := range [][]byte{nonceTrackedBucketName, nonceBoundsBucketName} {
			if _, err := tx.CreateTopLevelBucket(name); err != nil {
				return err
			}
		}

		return nil
	})
}

// trackedKey is (chain || signer || nonce-as-32-big-endian-bytes) so keys
// sort in nonce order within a signer's namespace.
func (s *NonceStore) trackedKey(nonce *uint256.Int) []byte {
	n := nonce.Bytes32()

	return namespacedKey(s.chainID, namespacedKey(s.signer, n[:]))
}

func (s *NonceStore) boundsKey(name []byte) []byte {
	return namespacedKey(s.chainID, namespacedKey(s.signer, name))
}

// TrackedTxUUID returns the UUID of the transaction tracking the nonce, or
// uuid.Nil when the nonce is untracked (or was cleared).
func (s *NonceStore) TrackedTxUUID(nonce *uint256.Int) (uuid.UUID, error) {
	tracked := uuid.Nil

	if err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(nonceTrackedBucketName)
		if bucket == nil {
			return ErrCorruptedNonceDB
		}

		raw := bucket.Get(s.trackedKey(nonce))
		if raw == nil {
			return nil
		}

		parsed, err := uuid.FromBytes(raw)
		if err != nil {
			return ErrCorruptedNonceDB
		}
		tracked = parsed

		return nil
	}, func() {}); err != nil {
		return uuid.Nil, err
	}

	return tracked, nil
}

// SetTrackedTxUUID records txUUID as the tracker of the nonce, overwriting
// any previous tracker.
func (s *NonceStore) SetTrackedTxUUID(nonce *uint256.Int, txUUID uuid.UUID) error {
	return kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(nonceTrackedBucketName)
		if bucket == nil {
			return ErrCorruptedNonceDB
		}

		return bucket.Put(s.trackedKey(nonce), txUUID[:])
	})
}

// ClearTrackedTxUUID frees the nonce for reuse by storing the zero UUID.
// The entry is kept rather than deleted so history stays auditable.
func (s *NonceStore) ClearTrackedTxUUID(nonce *uint256.Int) error {
	return s.SetTrackedTxUUID(nonce, uuid.Nil)
}

// UpperNonce returns one past the highest nonce ever assigned for the signer;
// zero when nothing was assigned yet.
func (s *NonceStore) UpperNonce() (*uint256.Int, error) {
	upper := uint256.NewInt(0)

	if err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(nonceBoundsBucketName)
		if bucket == nil {
			return ErrCorruptedNonceDB
		}

		if raw := bucket.Get(s.boundsKey(upperNonceKey)); raw != nil {
			upper.SetBytes(raw)
		}

		return nil
	}, func() {}); err != nil {
		return nil, err
	}

	return upper, nil
}

// SetUpperNonce overwrites the upper boundary nonce.
func (s *NonceStore) SetUpperNonce(nonce *uint256.Int) error {
	return s.setBound(upperNonceKey, nonce)
}

// FinalizedNonce returns the highest nonce known irreversibly consumed. The
// boolean is false when no nonce was finalized yet for the signer.
func (s *NonceStore) FinalizedNonce() (*uint256.Int, bool, error) {
	finalized := uint256.NewInt(0)
	found := false

	if err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(nonceBoundsBucketName)
		if bucket == nil {
			return ErrCorruptedNonceDB
		}

		if raw := bucket.Get(s.boundsKey(finalizedNonceKey)); raw != nil {
			finalized.SetBytes(raw)
			found = true
		}

		return nil
	}, func() {}); err != nil {
		return nil, false, err
	}

	return finalized, found, nil
}

// SetFinalizedNonce overwrites the finalized boundary nonce.
func (s *NonceStore) SetFinalizedNonce(nonce *uint256.Int) error {
	return s.setBound(finalizedNonceKey, nonce)
}

func (s *NonceStore) setBound(name []byte, nonce *uint256.Int) error {
	if nonce == nil {
		return fmt.Errorf("cannot store nil nonce")
	}
	n := nonce.Bytes32()

	return kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(nonceBoundsBucketName)
		if bucket == nil {
			return ErrCorruptedNonceDB
		}

		return bucket.Put(s.boundsKey(name), n[:])
	})
}

// Boundaries reads (finalized, upper) in one db view so the free-nonce scan
// sees a consistent pair.
func (s *NonceStore) Boundaries() (finalized *uint256.Int, finalizedFound bool, upper *uint256.Int, err error) {
	finalized = uint256.NewInt(0)
	upper = uint256.NewInt(0)

	if err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(nonceBoundsBucketName)
		if bucket == nil {
			return ErrCorruptedNonceDB
		}

		if raw := bucket.Get(s.boundsKey(finalizedNonceKey)); raw != nil {
			finalized.SetBytes(raw)
			finalizedFound = true
		}
		if raw := bucket.Get(s.boundsKey(upperNonceKey)); raw != nil {
			upper.SetBytes(raw)
		}

		return nil
	}, func() {}); err != nil {
		return nil, false, nil, err
	}

	return finalized, finalizedFound, upper, nil
}
