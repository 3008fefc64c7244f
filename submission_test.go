package clustermux

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionStackPopAllRestoresPushOrder(t *testing.T) {
	var s submissionStack
	var shutdown atomic.Bool
	pool := newPacketPool(3, &shutdown)

	p1, _ := pool.acquire()
	p2, _ := pool.acquire()
	p3, _ := pool.acquire()

	s.push(p1)
	s.push(p2)
	s.push(p3)

	got := s.popAll()
	assert.Equal(t, []*Packet{p1, p2, p3}, got)
}

func TestSubmissionStackPopAllEmpty(t *testing.T) {
	var s submissionStack
	assert.Nil(t, s.popAll())
}

func TestSubmissionStackConcurrentPushSingleDrain(t *testing.T) {
	var s submissionStack
	var shutdown atomic.Bool
	const producers = 32
	pool := newPacketPool(producers, &shutdown)

	packets := make([]*Packet, producers)
	for i := range packets {
		p, status := pool.acquire()
		if status != AcquireOK {
			t.Fatalf("acquire failed: %v", status)
		}
		packets[i] = p
	}

	var wg sync.WaitGroup
	for _, p := range packets {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.push(p)
		}()
	}
	wg.Wait()

	got := s.popAll()
	assert.Len(t, got, producers, "every pushed packet must be drained exactly once")
}
