package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hyperlane-xyz/lander/types"
)

// TxPool holds the in-flight transactions a stage re-evaluates on every
// block tick. Snapshots preserve insertion order so older transactions are
// always processed first.
type TxPool struct {
	mu    sync.Mutex
	txs   map[uuid.UUID]*types.Transaction
	order []uuid.UUID
}

// NewTxPool returns an empty pool.
func NewTxPool() *TxPool {
	return &TxPool{txs: make(map[uuid.UUID]*types.Transaction)}
}

// Insert adds the transaction to the pool. Inserting a UUID already pooled
// replaces the stored transaction without changing its position.
func (p *TxPool) Insert(tx *types.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.txs[tx.UUID]; !ok {
		p.order = append(p.order, tx.UUID)
	}
	p.txs[tx.UUID] = tx
}

// Remove deletes the transaction with the given UUID, if pooled.
func (p *TxPool) Remove(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.txs[id]; !ok {
		return
	}
	delete(p.txs, id)
	for i, o := range p.order {
		if o == id {
			p.order = append(p.order[:i], p.order[i+1:]...)

			break
		}
	}
}

// Contains reports whether a transaction with the given UUID is pooled.
func (p *TxPool) Contains(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.txs[id]

	return ok
}

// Snapshot returns the pooled transactions in insertion order. The slice is
// a copy; the pool may change while the caller iterates it.
func (p *TxPool) Snapshot() []*types.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := make([]*types.Transaction, 0, len(p.order))
	for _, id := range p.order {
		snapshot = append(snapshot, p.txs[id])
	}

	return snapshot
}

// Len returns the number of pooled transactions.
func (p *TxPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.txs)
}
