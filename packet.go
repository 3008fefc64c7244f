package clustermux

// OperationCode identifies which request variant a Packet carries.
type OperationCode uint8

// CompletionFunc is invoked exactly once per successfully submitted
// Packet, on the reactor goroutine, with the packet's terminal Status
// already set and the reply slice (nil on failure). Implementations that
// wish to retain the reply must copy it; its backing storage is only valid
// for the duration of the call.
type CompletionFunc func(packet *Packet, reply []byte)

// Packet is the unit of submission: an application-visible, pool-allocated
// descriptor representing one request. A packet is owned, at any instant,
// by exactly one of: the free stack, the caller, the submission stack, the
// pending queue, an inflight batch chain, or the reactor goroutine while
// completing it.
type Packet struct {
	// Operation identifies which request variant this packet carries.
	Operation OperationCode

	// Data is caller-owned and must remain immutable between Submit and
	// completion. It is never copied by the core except into a protocol
	// message body at dispatch time.
	Data []byte

	// UserTag is returned verbatim to the caller; the core never
	// inspects it.
	UserTag any

	// Status is set before the completion callback runs.
	Status Status

	// completion is captured at Submit time; it is not part of the
	// caller-facing contract and is cleared once invoked.
	completion CompletionFunc

	// intrusive link shared by the free stack (pool.go), the submission
	// stack (submission.go) and the pending queue (pending.go); a packet
	// is on at most one of them at a time.
	next *Packet

	// batch-chain links; only meaningful on a batch root. batchNext links
	// to the next member; batchTail points at the chain's tail for O(1)
	// append; batchSize is the running sum of member Data lengths.
	batchNext *Packet
	batchTail *Packet
	batchSize uint32

	// index within the packet storage array, used by the FFI handle
	// table (see ffi/) to recover a *Packet from an opaque index without
	// exposing a raw pointer across the boundary.
	index uint32
}

// Index returns the packet's fixed slot index within its pool, stable for
// the packet's entire lifetime. Used by the FFI handle table (see ffi/) to
// pass packets across the C-ABI boundary as opaque integers instead of raw
// pointers.
func (p *Packet) Index() uint32 { return p.index }

// eventCount returns the number of fixed-size events data_size encodes for
// the given per-event size. Callers must have already validated that
// data_size is a positive multiple of eventSize.
func (p *Packet) eventCount(eventSize uint32) uint32 {
	return uint32(len(p.Data)) / eventSize
}

// reset clears a packet's transient fields before it re-enters the free
// stack. Data and UserTag are caller-owned and are cleared so a stale
// reference cannot outlive the packet's release.
func (p *Packet) reset() {
	p.Operation = 0
	p.Data = nil
	p.UserTag = nil
	p.Status = StatusOK
	p.completion = nil
	p.batchNext = nil
	p.batchTail = nil
	p.batchSize = 0
}

// complete sets the packet's terminal status and invokes its completion
// callback with the given reply slice. It does not return the packet to
// the free stack; callers (the dispatcher's release path) are responsible
// for that, per the "reply during shutdown" open question resolution: the
// callback always fires, and the packet always goes back to free.
func (p *Packet) complete(status Status, reply []byte) {
	p.Status = status
	fn := p.completion
	p.completion = nil
	if fn != nil {
		fn(p, reply)
	}
}
