package clustermux

import "sync/atomic"

// MaxConcurrency is the upper bound of the concurrency_max configuration
// option (spec.md §4.1).
const MaxConcurrency = 8192

// packetPool is a fixed-size array of packets, chosen at init, with a
// lock-free intrusive free-list stack for O(1) acquire/release. Modeled on
// the corpus's preference for intrusive linked structures over owning
// containers (DESIGN NOTES "Intrusive chains over owning containers"):
// packets already exist as pool slots, so the free list is just a Treiber
// stack over the Packet.next field.
type packetPool struct {
	storage  []Packet
	free     atomic.Pointer[Packet]
	shutdown *atomic.Bool // shared with Context; acquire-ordered load on the fast path
}

// newPacketPool allocates concurrencyMax packets and fills the free stack.
// concurrencyMax must already have been validated by the caller.
func newPacketPool(concurrencyMax int, shutdown *atomic.Bool) *packetPool {
	p := &packetPool{
		storage:  make([]Packet, concurrencyMax),
		shutdown: shutdown,
	}
	var head *Packet
	for i := range p.storage {
		p.storage[i].index = uint32(i)
		p.storage[i].next = head
		head = &p.storage[i]
	}
	p.free.Store(head)
	return p
}

// acquire pops one packet from the free stack. Safe from any goroutine.
func (p *packetPool) acquire() (*Packet, AcquireStatus) {
	if p.shutdown.Load() {
		return nil, AcquireShutdown
	}
	for {
		top := p.free.Load()
		if top == nil {
			// Re-check shutdown: a concurrent deinit may have raced the
			// pool empty via drainAll, in which case shutdown is the
			// more accurate status to report than transient pressure.
			if p.shutdown.Load() {
				return nil, AcquireShutdown
			}
			return nil, AcquireConcurrencyMaxExceeded
		}
		next := top.next
		if p.free.CompareAndSwap(top, next) {
			top.next = nil
			return top, AcquireOK
		}
	}
}

// release pushes one packet back onto the free stack. Safe from any
// goroutine. The packet's transient fields are reset first so no stale
// Data/UserTag/completion reference outlives the release.
func (p *packetPool) release(packet *Packet) {
	packet.reset()
	for {
		top := p.free.Load()
		packet.next = top
		if p.free.CompareAndSwap(top, packet) {
			return
		}
	}
}

// drainAll atomically detaches the entire free stack, returning its head
// and length. Used only by the reactor goroutine during shutdown to count
// packets as they are returned; safe to call concurrently with release
// (acquire must not be in progress, which shutdown's flag already
// guarantees by the time drainAll is used).
func (p *packetPool) drainAll() (*Packet, int) {
	head := p.free.Swap(nil)
	n := 0
	for c := head; c != nil; c = c.next {
		n++
	}
	return head, n
}

// size returns the total number of packets owned by the pool.
func (p *packetPool) size() int {
	return len(p.storage)
}

// at returns the packet at the given pool index, for recovering a *Packet
// from an opaque index handed across the FFI boundary (see ffi/) without
// exposing a raw pointer. index must be a value previously returned by
// Packet.Index for a packet acquired from this pool.
func (p *packetPool) at(index uint32) *Packet {
	return &p.storage[index]
}
