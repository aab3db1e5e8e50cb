package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperlane-xyz/lander/testutil"
)

func TestBuildingQueueOrdering(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(10))

	q := NewBuildingQueue()
	require.Equal(t, 0, q.Len())
	require.Nil(t, q.PopFront(5))

	payloads := testutil.GenRandomPayloads(r, 5)
	q.PushBack(payloads...)
	require.Equal(t, 5, q.Len())

	// pops come out in arrival order
	first := q.PopFront(2)
	require.Len(t, first, 2)
	require.Equal(t, payloads[0].UUID(), first[0].UUID())
	require.Equal(t, payloads[1].UUID(), first[1].UUID())

	// recycled payloads jump the line and keep their relative order
	q.PushFront(first...)
	again := q.PopFront(3)
	require.Len(t, again, 3)
	require.Equal(t, payloads[0].UUID(), again[0].UUID())
	require.Equal(t, payloads[1].UUID(), again[1].UUID())
	require.Equal(t, payloads[2].UUID(), again[2].UUID())

	// popping more than queued drains the queue
	rest := q.PopFront(10)
	require.Len(t, rest, 2)
	require.Equal(t, 0, q.Len())
}

func TestTxPool(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(20))

	pool := NewTxPool()
	require.Equal(t, 0, pool.Len())

	tx1 := testutil.GenRandomTransaction(r, testutil.GenRandomPayload(r))
	tx2 := testutil.GenRandomTransaction(r, testutil.GenRandomPayload(r))

	pool.Insert(tx1)
	pool.Insert(tx2)
	require.Equal(t, 2, pool.Len())
	require.True(t, pool.Contains(tx1.UUID))

	// re-inserting keeps the position
	pool.Insert(tx1)
	snapshot := pool.Snapshot()
	require.Len(t, snapshot, 2)
	require.Equal(t, tx1.UUID, snapshot[0].UUID)
	require.Equal(t, tx2.UUID, snapshot[1].UUID)

	pool.Remove(tx1.UUID)
	require.False(t, pool.Contains(tx1.UUID))
	require.Equal(t, 1, pool.Len())

	// removing an unknown uuid is a no-op
	pool.Remove(tx1.UUID)
	require.Equal(t, 1, pool.Len())
}
