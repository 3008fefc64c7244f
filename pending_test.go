package clustermux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingQueueFIFO(t *testing.T) {
	var q pendingQueue
	a, b, c := &Packet{}, &Packet{}, &Packet{}

	q.pushBack(a)
	q.pushBack(b)
	q.pushBack(c)
	require.Equal(t, 3, q.len())

	assert.Same(t, a, q.popFront())
	assert.Same(t, b, q.popFront())
	assert.Equal(t, 1, q.len())
	assert.Same(t, c, q.popFront())
	assert.Equal(t, 0, q.len())
	assert.Nil(t, q.popFront())
}

func TestPendingQueueForEachStopsEarly(t *testing.T) {
	var q pendingQueue
	a, b, c := &Packet{}, &Packet{}, &Packet{}
	q.pushBack(a)
	q.pushBack(b)
	q.pushBack(c)

	var visited []*Packet
	q.forEach(func(root *Packet) bool {
		visited = append(visited, root)
		return root != b
	})
	assert.Equal(t, []*Packet{a, b}, visited)
}

func TestPendingQueueEmptyAfterDrain(t *testing.T) {
	var q pendingQueue
	q.pushBack(&Packet{})
	q.popFront()
	// Internal head/tail bookkeeping must be fully reset, not just n==0.
	q.pushBack(&Packet{})
	assert.Equal(t, 1, q.len())
}
