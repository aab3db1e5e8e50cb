package service

import (
	"sync"

	"github.com/hyperlane-xyz/lander/types"
)

// BuildingQueue is the FIFO of payloads waiting to be built into a
// transaction. Fresh payloads enter at the back; payloads recycled from a
// dropped transaction re-enter at the front so they are retried before newer
// work.
type BuildingQueue struct {
	mu    sync.Mutex
	items []*types.FullPayload
}

// NewBuildingQueue returns an empty building queue.
func NewBuildingQueue() *BuildingQueue {
	return &BuildingQueue{}
}

// PushBack appends payloads at the back of the queue in the given order.
func (q *BuildingQueue) PushBack(payloads ...*types.FullPayload) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, payloads...)
}

// PushFront prepends payloads at the front of the queue, keeping their
// relative order, so payloads[0] is popped first.
func (q *BuildingQueue) PushFront(payloads ...*types.FullPayload) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(append(make([]*types.FullPayload, 0, len(payloads)+len(q.items)), payloads...), q.items...)
}

// PopFront removes and returns up to max payloads from the front of the
// queue. It returns nil when the queue is empty.
func (q *BuildingQueue) PopFront(max int) []*types.FullPayload {
	q.mu.Lock()
	defer q.mu.Unlock()

	if max <= 0 || len(q.items) == 0 {
		return nil
	}
	if max > len(q.items) {
		max = len(q.items)
	}

	popped := q.items[:max]
	q.items = append([]*types.FullPayload(nil), q.items[max:]...)

	return popped
}

// Len returns the number of queued payloads.
func (q *BuildingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
