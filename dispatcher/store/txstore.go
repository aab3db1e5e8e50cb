package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/kvdb"

	"github.com/hyperlane-xyz/lander/types"
)

var (
	// mapping tx uuid -> types.Transaction
	transactionBucketName = []byte("transactions")
)

// TransactionStore persists signed transactions keyed by UUID. Like payloads,
// transaction records are never deleted; terminal transactions stay on disk
// for auditing and for the nonce manager's free-nonce scan.
type TransactionStore struct {
	db      kvdb.Backend
	chainID string
}

// NewTransactionStore returns a transaction store backed by db, namespaced to
// chainID.
func NewTransactionStore(db kvdb.Backend, chainID string) (*TransactionStore, error) {
	s := &TransactionStore{db: db, chainID: chainID}
	if err := s.initBuckets(); err != nil {
		return nil, fmt.Errorf("failed to initialize transaction buckets: %w", err)
	}

	return s, nil
}

func (s *TransactionStore) initBuckets() error {
	return kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		_, err := tx.CreateTopLevelBucket(transactionBucketName)

		return err
	})
}

func (s *TransactionStore) key(id uuid.UUID) []byte {
	return namespacedKey(s.chainID, id[:])
}

// StoreTransaction saves or overwrites the transaction record.
func (s *TransactionStore) StoreTransaction(txn *types.Transaction) error {
	if txn == nil {
		return fmt.Errorf("cannot store nil transaction")
	}

	marshalled, err := json.Marshal(txn)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(transactionBucketName)
		if bucket == nil {
			return ErrCorruptedTransactionDB
		}

		return bucket.Put(s.key(txn.UUID), marshalled)
	}); err != nil {
		return fmt.Errorf("failed to store transaction: %w", err)
	}

	return nil
}

// GetTransaction fetches a transaction by UUID; ErrTransactionNotFound if
// absent.
func (s *TransactionStore) GetTransaction(id uuid.UUID) (*types.Transaction, error) {
	var txn types.Transaction

	if err := s.db.View(func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(transactionBucketName)
		if bucket == nil {
			return ErrCorruptedTransactionDB
		}

		txBytes := bucket.Get(s.key(id))
		if txBytes == nil {
			return ErrTransactionNotFound
		}

		if err := json.Unmarshal(txBytes, &txn); err != nil {
			return ErrCorruptedTransactionDB
		}

		return nil
	}, func() {}); err != nil {
		return nil, err
	}

	return &txn, nil
}

// SetTransactionStatus overwrites the status of a stored transaction.
func (s *TransactionStore) SetTransactionStatus(id uuid.UUID, status types.TransactionStatus) error {
	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(transactionBucketName)
		if bucket == nil {
			return ErrCorruptedTransactionDB
		}

		key := s.key(id)
		txBytes := bucket.Get(key)
		if txBytes == nil {
			return ErrTransactionNotFound
		}

		var txn types.Transaction
		if err := json.Unmarshal(txBytes, &txn); err != nil {
			return ErrCorruptedTransactionDB
		}

		txn.Status = status

		marshalled, err := json.Marshal(&txn)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}

		return bucket.Put(key, marshalled)
	}); err != nil {
		return fmt.Errorf("failed to set transaction status: %w", err)
	}

	return nil
}
