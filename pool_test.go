package clustermux

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketPoolAcquireRelease(t *testing.T) {
	var shutdown atomic.Bool
	pool := newPacketPool(4, &shutdown)

	p1, status := pool.acquire()
	require.Equal(t, AcquireOK, status)
	require.NotNil(t, p1)

	p1.Data = []byte("hello")
	p1.UserTag = 42
	pool.release(p1)

	assert.Nil(t, p1.Data, "release must reset transient fields")
	assert.Nil(t, p1.UserTag)
}

func TestPacketPoolExhaustion(t *testing.T) {
	var shutdown atomic.Bool
	pool := newPacketPool(2, &shutdown)

	_, s1 := pool.acquire()
	_, s2 := pool.acquire()
	require.Equal(t, AcquireOK, s1)
	require.Equal(t, AcquireOK, s2)

	_, s3 := pool.acquire()
	assert.Equal(t, AcquireConcurrencyMaxExceeded, s3)
}

func TestPacketPoolShutdownTakesPriority(t *testing.T) {
	var shutdown atomic.Bool
	pool := newPacketPool(2, &shutdown)
	shutdown.Store(true)

	_, status := pool.acquire()
	assert.Equal(t, AcquireShutdown, status)
}

func TestPacketPoolShutdownDisambiguatesExhaustion(t *testing.T) {
	var shutdown atomic.Bool
	pool := newPacketPool(1, &shutdown)
	_, s1 := pool.acquire()
	require.Equal(t, AcquireOK, s1)

	// Pool is empty but not shut down: concurrency_max_exceeded.
	_, s2 := pool.acquire()
	assert.Equal(t, AcquireConcurrencyMaxExceeded, s2)

	shutdown.Store(true)
	_, s3 := pool.acquire()
	assert.Equal(t, AcquireShutdown, s3)
}

func TestPacketPoolDrainAllCountsEveryPacket(t *testing.T) {
	var shutdown atomic.Bool
	pool := newPacketPool(8, &shutdown)

	_, n := pool.drainAll()
	assert.Equal(t, 8, n)
	assert.Equal(t, 8, pool.size())

	// A second drain sees nothing: the stack was already detached.
	_, n2 := pool.drainAll()
	assert.Equal(t, 0, n2)
}

func TestPacketPoolAtRecoversByIndex(t *testing.T) {
	var shutdown atomic.Bool
	pool := newPacketPool(4, &shutdown)
	p, status := pool.acquire()
	require.Equal(t, AcquireOK, status)
	assert.Same(t, p, pool.at(p.Index()))
}

func TestPacketPoolConcurrentAcquireRelease(t *testing.T) {
	var shutdown atomic.Bool
	const size = 16
	pool := newPacketPool(size, &shutdown)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				p, status := pool.acquire()
				if status == AcquireOK {
					pool.release(p)
				}
			}
		}()
	}
	wg.Wait()

	_, n := pool.drainAll()
	assert.Equal(t, size, n, "every packet must return to the free stack exactly once")
}
