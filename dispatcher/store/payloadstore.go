package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/kvdb"

	"github.com/hyperlane-xyz/lander/types"
)

var (
	// mapping payload uuid -> types.FullPayload
	payloadBucketName = []byte("payloads")
	// mapping payload uuid -> owning transaction uuid
	payloadTxUUIDBucketName = []byte("payload_tx_uuid")
	// mapping payload uuid -> arrival index
	payloadIndexBucketName = []byte("payload_index_by_uuid")
	// mapping arrival index -> payload uuid
	payloadUUIDByIndexBucketName = []byte("payload_uuid_by_index")
	// single-key bucket holding the highest assigned arrival index
	payloadMetaBucketName = []byte("payload_meta")

	highestPayloadIndexKey = []byte("highest_index")
)

// PayloadStore persists payloads and their back-reference to the owning
// transaction. Records are never deleted: terminal payloads keep their record
// for auditing, and clearing the ownership pointer stores the zero UUID.
//
// On first store each payload is assigned a monotonically increasing arrival
// index, which store-driven recovery uses to re-derive the building queue in
// arrival order after a restart.
type PayloadStore struct {
	db      kvdb.Backend
	chainID string
}

// NewPayloadStore returns a payload store backed by db, namespaced to chainID.
func NewPayloadStore(db kvdb.Backend, chainID string) (*PayloadStore, error) {
	s := &PayloadStore{db: db, chainID: chainID}
	if err := s.initBuckets(); err != nil {
		return nil, fmt.Errorf("failed to initialize payload buckets: %w", err)
	}

	return s, nil
}

func (s *PayloadStore) initBuckets() error {
	return kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		for _, name := range [][]byte{
			payloadBucketName,
			payloadTxUUIDBucketName,
			payloadIndexBucketName,
			payloadUUIDByIndexBucketName,
			payloadMetaBucketName,
		} {
			if _, err := tx.CreateTopLevelBucket(name); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *PayloadStore) key(id uuid.UUID) []byte {
	return namespacedKey(s.chainID, id[:])
}

// StorePayload saves the payload, assigning a fresh arrival index if this
// UUID has not been stored before. Re-storing an existing payload overwrites
// the record but keeps its index.
func (s *PayloadStore) StorePayload(payload *types.FullPayload) error {
	if payload == nil {
		return fmt.Errorf("cannot store nil payload")
	}

	marshalled, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	key := s.key(payload.UUID())

	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		payloadBucket := tx.ReadWriteBucket(payloadBucketName)
		indexBucket := tx.ReadWriteBucket(payloadIndexBucketName)
		uuidByIndexBucket := tx.ReadWriteBucket(payloadUUIDByIndexBucketName)
		metaBucket := tx.ReadWriteBucket(payloadMetaBucketName)
		if payloadBucket == nil || indexBucket == nil || uuidByIndexBucket == nil || metaBucket == nil {
			return ErrCorruptedPayloadDB
		}

		if indexBucket.Get(key) == nil {
			next := highestIndex(metaBucket, s.chainID) + 1
			if err := putIndex(metaBucket, namespacedKey(s.chainID, highestPayloadIndexKey), next); err != nil {
				return err
			}
			if err := putIndex(indexBucket, key, next); err != nil {
				return err
			}
			id := payload.UUID()
			if err := uuidByIndexBucket.Put(s.indexKey(next), id[:]); err != nil {
				return err
			}
		}

		return payloadBucket.Put(key, marshalled)
	}); err != nil {
		return fmt.Errorf("failed to store payload: %w", err)
	}

	return nil
}

// GetPayload fetches a payload by UUID; ErrPayloadNotFound if absent.
func (s *PayloadStore) GetPayload(id uuid.UUID) (*types.FullPayload, error) {
	var payload types.FullPayload

	if err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(payloadBucketName)
		if bucket == nil {
			return ErrCorruptedPayloadDB
		}

		payloadBytes := bucket.Get(s.key(id))
		if payloadBytes == nil {
			return ErrPayloadNotFound
		}

		if err := json.Unmarshal(payloadBytes, &payload); err != nil {
			return ErrCorruptedPayloadDB
		}

		return nil
	}, func() {}); err != nil {
		return nil, err
	}

	return &payload, nil
}

// SetPayloadStatus overwrites the status of a stored payload.
func (s *PayloadStore) SetPayloadStatus(id uuid.UUID, status types.PayloadStatus) error {
	return s.setPayloadState(id, func(p *types.FullPayload) error {
		p.Status = status

		return nil
	})
}

func (s *PayloadStore) setPayloadState(
	id uuid.UUID,
	stateTransitionFn func(payload *types.FullPayload) error,
) error {
	key := s.key(id)

	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(payloadBucketName)
		if bucket == nil {
			return ErrCorruptedPayloadDB
		}

		payloadBytes := bucket.Get(key)
		if payloadBytes == nil {
			return ErrPayloadNotFound
		}

		var payload types.FullPayload
		if err := json.Unmarshal(payloadBytes, &payload); err != nil {
			return ErrCorruptedPayloadDB
		}

		if err := stateTransitionFn(&payload); err != nil {
			return err
		}

		marshalled, err := json.Marshal(&payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}

		return bucket.Put(key, marshalled)
	}); err != nil {
		return fmt.Errorf("failed to set payload state: %w", err)
	}

	return nil
}

// StoreTxUUIDByPayloadUUID records which transaction currently owns the
// payload. Ownership is single-valued: the pointer is overwritten, never
// multi-valued. Passing uuid.Nil clears the pointer without deleting the
// record.
func (s *PayloadStore) StoreTxUUIDByPayloadUUID(payloadUUID, txUUID uuid.UUID) error {
	return kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(payloadTxUUIDBucketName)
		if bucket == nil {
			return ErrCorruptedPayloadDB
		}

		return bucket.Put(s.key(payloadUUID), txUUID[:])
	})
}

// TxUUIDByPayloadUUID returns the UUID of the transaction owning the payload,
// or uuid.Nil when the payload is unowned.
func (s *PayloadStore) TxUUIDByPayloadUUID(payloadUUID uuid.UUID) (uuid.UUID, error) {
	txUUID := uuid.Nil

	if err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(payloadTxUUIDBucketName)
		if bucket == nil {
			return ErrCorruptedPayloadDB
		}

		raw := bucket.Get(s.key(payloadUUID))
		if raw == nil {
			return nil
		}

		parsed, err := uuid.FromBytes(raw)
		if err != nil {
			return ErrCorruptedPayloadDB
		}
		txUUID = parsed

		return nil
	}, func() {}); err != nil {
		return uuid.Nil, err
	}

	return txUUID, nil
}

// HighestIndex returns the highest arrival index assigned so far, zero when
// no payload has ever been stored.
func (s *PayloadStore) HighestIndex() (uint32, error) {
	var highest uint32

	if err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(payloadMetaBucketName)
		if bucket == nil {
			return ErrCorruptedPayloadDB
		}
		highest = highestIndexRead(bucket, s.chainID)

		return nil
	}, func() {}); err != nil {
		return 0, err
	}

	return highest, nil
}

// PayloadByIndex fetches a payload by its arrival index; ErrPayloadNotFound
// if no payload holds the index.
func (s *PayloadStore) PayloadByIndex(index uint32) (*types.FullPayload, error) {
	var id uuid.UUID

	if err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(payloadUUIDByIndexBucketName)
		if bucket == nil {
			return ErrCorruptedPayloadDB
		}

		raw := bucket.Get(s.indexKey(index))
		if raw == nil {
			return ErrPayloadNotFound
		}

		parsed, err := uuid.FromBytes(raw)
		if err != nil {
			return ErrCorruptedPayloadDB
		}
		id = parsed

		return nil
	}, func() {}); err != nil {
		return nil, err
	}

	return s.GetPayload(id)
}

func (s *PayloadStore) indexKey(index uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], index)

	return namespacedKey(s.chainID, buf[:])
}

// namespacedKey prefixes raw with the chain namespace so one backend can hold
// several chains' records without collision.
func namespacedKey(chainID string, raw []byte) []byte {
	key := make([]byte, 0, len(chainID)+1+len(raw))
	key = append(key, chainID...)
	key = append(key, '/')
	key = append(key, raw...)

	return key
}

func highestIndex(bucket walletdb.ReadWriteBucket, chainID string) uint32 {
	raw := bucket.Get(namespacedKey(chainID, highestPayloadIndexKey))
	if len(raw) != 4 {
		return 0
	}

	return binary.BigEndian.Uint32(raw)
}

func highestIndexRead(bucket walletdb.ReadBucket, chainID string) uint32 {
	raw := bucket.Get(namespacedKey(chainID, highestPayloadIndexKey))
	if len(raw) != 4 {
		return 0
	}

	return binary.BigEndian.Uint32(raw)
}

func putIndex(bucket walletdb.ReadWriteBucket, key []byte, index uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], index)

	return bucket.Put(key, buf[:])
}
