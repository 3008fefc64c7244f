package clustermux

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clustermux-go/clustermux/internal/clog"
	"github.com/clustermux-go/clustermux/internal/reactor"
)

// Context is the long-lived core object described by spec.md §3: it owns
// packet storage, the free stack, the submission stack, the pending FIFO,
// the protocol client, the reactor, the message pool, the shutdown flag,
// and the reactor goroutine handle. A Context is created once per client
// id and spawns exactly one reactor goroutine.
type Context struct {
	clusterID [16]byte
	clientID  [16]byte
	addresses []string

	pool       *packetPool
	submission submissionStack
	pending    pendingQueue
	dispatcher dispatcher

	reactorImpl reactorSignal
	tickInterval time.Duration

	log *clog.Logger

	shutdown   atomic.Bool
	registered bool // reactor-goroutine only, no synchronization needed

	reactorExited chan struct{}
	deinitOnce    sync.Once
}

// New performs the init sequence of spec.md §4.7: validates concurrency
// bounds, allocates the packet pool, parses the address list, wires the
// reactor/protocol client/message pool collaborators, spawns the reactor
// goroutine, and initiates the registration handshake. Any error rewinds
// everything acquired so far, in reverse order.
func New(clusterID [16]byte, addressList string, concurrencyMax uint32, opts ...Option) (*Context, error) {
	var rollback []func()
	defer func() {
		for i := len(rollback) - 1; i >= 0; i-- {
			rollback[i]()
		}
	}()

	cfg := resolveConfig(opts)

	clientID, err := newClientID()
	if err != nil {
		return nil, err
	}

	if concurrencyMax == 0 || concurrencyMax > MaxConcurrency {
		return nil, fmt.Errorf("%w: %d", ErrConcurrencyMaxInvalid, concurrencyMax)
	}

	addresses, err := parseAddresses(addressList)
	if err != nil {
		return nil, err
	}

	if cfg.protocol == nil || cfg.messagePool == nil {
		return nil, fmt.Errorf("%w: protocol client and message pool are required", ErrUnexpected)
	}

	c := &Context{
		clusterID:     clusterID,
		clientID:      clientID,
		addresses:     addresses,
		tickInterval:  cfg.tickInterval,
		log:           cfg.log,
		reactorExited: make(chan struct{}),
	}
	c.pool = newPacketPool(int(concurrencyMax), &c.shutdown)
	c.dispatcher = dispatcher{messagePool: cfg.messagePool, protocol: cfg.protocol}

	if cfg.reactor != nil {
		c.reactorImpl = cfg.reactor
	} else {
		r := reactor.NewTimerReactor()
		c.reactorImpl = r
		rollback = append(rollback, func() { _ = r.Close() })
	}

	go c.runReactor()
	rollback = append(rollback, func() {
		c.shutdown.Store(true)
		c.reactorImpl.Notify()
		<-c.reactorExited
	})

	// Registration gate (spec.md §4.7): no application requests may
	// precede this callback.
	c.dispatcher.protocol.Register(func() {
		c.registered = true
		c.log.Info("registration complete", nil)
		c.reactorImpl.Notify()
	})

	// Success: disarm the rollback.
	rollback = nil
	return c, nil
}

// AcquirePacket removes one packet from the free stack. Safe from any
// goroutine.
func (c *Context) AcquirePacket() (*Packet, AcquireStatus) {
	p, status := c.pool.acquire()
	if status == AcquireConcurrencyMaxExceeded {
		c.log.Warn("packet pool exhausted", map[string]any{
			"concurrency_max": c.pool.size(),
		})
	}
	return p, status
}

// PacketAt recovers the *Packet for a given pool index, the inverse of
// Packet.Index. Used by the FFI handle table (see ffi/) to turn an opaque
// integer handed back across the C-ABI boundary into a usable packet
// without exposing a raw pointer to the caller.
func (c *Context) PacketAt(index uint32) *Packet {
	return c.pool.at(index)
}

// ReleasePacket returns a packet the caller decided not to submit back to
// the free stack. Safe from any goroutine. Submitted packets must not be
// released directly; they are released automatically on completion.
func (c *Context) ReleasePacket(p *Packet) {
	c.pool.release(p)
}

// Submit hands a packet to the core for admission and eventual dispatch.
// completion is invoked exactly once, on the reactor goroutine, once the
// packet's result (or validation failure) is known. Submit is
// fire-and-forget: it never blocks the caller on the wire round trip.
func (c *Context) Submit(p *Packet, completion CompletionFunc) {
	p.completion = completion
	c.submission.push(p)
	c.reactorImpl.Notify()
}

// Deinit sets the shutdown flag; the first caller (guarded by a
// sync.Once) joins the reactor goroutine and tears down every owned
// resource in reverse initialization order. Subsequent calls are no-ops
// (spec.md §4.7's "Shutdown").
func (c *Context) Deinit() {
	c.deinitOnce.Do(func() {
		c.log.Info("shutdown phase entered", nil)
		c.shutdown.Store(true)
		c.reactorImpl.Notify()
		<-c.reactorExited
		_ = c.reactorImpl.Close()
	})
}

// runReactor is the body of the one reactor goroutine spawned by New. It
// performs the registration gate, the admission/batching/dispatch loop,
// and the shutdown drain of spec.md §4.7.
func (c *Context) runReactor() {
	defer close(c.reactorExited)

	var drained int
	for {
		// Drain submissions whenever registered, shutting down or not:
		// packets submitted just before shutdown was observed must still
		// be admitted, dispatched or validated, and completed — per
		// SPEC_FULL.md's "reply during shutdown" resolution, shutdown
		// never drops a callback.
		if c.registered {
			c.drainSubmissions()
		} else {
			c.log.Warn("waiting for protocol client registration", nil)
		}

		if c.shutdown.Load() {
			_, n := c.pool.drainAll()
			drained += n
			if drained >= c.pool.size() {
				c.log.Info("reactor exiting, all packets drained", map[string]any{
					"drained": drained,
				})
				return
			}
		}

		c.dispatcher.protocol.Tick()
		_ = c.reactorImpl.RunFor(c.tickInterval)
	}
}

// drainSubmissions pops the entire submission stack and admits each
// packet in turn (spec.md §4.4). While the registration gate is closed
// (c.registered == false), this is never called, per spec.md §4.7:
// "signal callbacks return without draining submissions."
func (c *Context) drainSubmissions() {
	for _, p := range c.submission.popAll() {
		c.admit(p)
	}
}

// completeBatch demultiplexes a reply across root's batch chain and
// releases every member, per spec.md §4.6. If err is non-nil the reply is
// a transport-level failure: every member completes with StatusTransport
// and a nil reply, but — per SPEC_FULL.md's "reply during shutdown"
// resolution — completion and release always happen, even mid-shutdown.
func (c *Context) completeBatch(root *Packet, reply []byte, err error) {
	if err != nil {
		c.log.Error("reply demultiplexed", map[string]any{
			"operation": root.Operation,
			"error":     err.Error(),
		})
		for member := root; member != nil; {
			next := member.batchNext
			member.batchNext = nil
			c.completeAndRelease(member, StatusTransport, nil)
			member = next
		}
		return
	}

	info, ok := lookupOperation(root.Operation)
	if !ok {
		// Unreachable: admit() already validated the operation before
		// this packet could become a batch root.
		panic("clustermux: batch root has unknown operation")
	}

	c.log.Debug("reply demultiplexed", map[string]any{
		"operation": root.Operation,
		"size":      len(reply),
	})

	var eventOffset uint32
	for member := root; member != nil; {
		next := member.batchNext
		member.batchNext = nil
		eventCount := member.eventCount(info.eventSize)
		slice := info.demux.demux(reply, member, eventCount, eventOffset)
		eventOffset += eventCount
		c.completeAndRelease(member, StatusOK, slice)
		member = next
	}
}
