package store

import "errors"

var (
	// ErrCorruptedPayloadDB the payload db on-disk representation changed
	ErrCorruptedPayloadDB = errors.New("payload db is corrupted")

	// ErrPayloadNotFound the payload we try to fetch is not in db
	ErrPayloadNotFound = errors.New("payload not found")

	// ErrCorruptedTransactionDB the transaction db on-disk representation changed
	ErrCorruptedTransactionDB = errors.New("transaction db is corrupted")

	// ErrTransactionNotFound the transaction we try to fetch is not in db
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrCorruptedNonceDB the nonce db on-disk representation changed
	ErrCorruptedNonceDB = errors.New("nonce db is corrupted")
)
