// Package fake provides in-memory ProtocolClient, MessagePool, and Message
// test doubles satisfying the clustermux collaborator interfaces, used to
// drive the end-to-end scenarios from spec.md §8 without any real network
// or cluster. Reply and registration delivery is deliberately deferred to
// Tick (never fired directly from RawRequest or Register), matching the
// contract documented on clustermux.ProtocolClient: the core's
// registration-gate and single-inflight bookkeeping assume both only ever
// change on the reactor goroutine.
package fake

import (
	"sync"

	"github.com/clustermux-go/clustermux"
)

// Message is an in-memory protocol request message, pooled via sync.Pool
// in MessagePool, mirroring the corpus's chunk-recycling idiom
// (eventloop.chunkPool in ingress.go).
type Message struct {
	ClusterID [16]byte
	ClientID  [16]byte
	Operation clustermux.OperationCode
	body      []byte
}

// SetHeader implements clustermux.Message.
func (m *Message) SetHeader(clusterID, clientID [16]byte, operation clustermux.OperationCode, bodySize uint32) {
	m.ClusterID = clusterID
	m.ClientID = clientID
	m.Operation = operation
	if uint32(cap(m.body)) < bodySize {
		m.body = make([]byte, bodySize)
	} else {
		m.body = m.body[:bodySize]
	}
}

// Body implements clustermux.Message.
func (m *Message) Body() []byte { return m.body }

// MessagePool implements clustermux.MessagePool over a sync.Pool of
// Message buffers.
type MessagePool struct {
	pool sync.Pool
}

// NewMessagePool constructs a ready-to-use MessagePool.
func NewMessagePool() *MessagePool {
	return &MessagePool{
		pool: sync.Pool{New: func() any { return &Message{} }},
	}
}

// GetMessage implements clustermux.MessagePool.
func (p *MessagePool) GetMessage() clustermux.Message {
	return p.pool.Get().(*Message)
}

// ReleaseMessage implements clustermux.MessagePool.
func (p *MessagePool) ReleaseMessage(m clustermux.Message) {
	p.pool.Put(m.(*Message))
}

// pendingReply models a reply queued by a test for delivery on the next
// Tick.
type pendingReply struct {
	reply []byte
	err   error
}

// ProtocolClient is an in-memory ProtocolClient double. All exported
// methods are safe for concurrent use; replies and registration are only
// ever delivered from Tick.
type ProtocolClient struct {
	mu sync.Mutex

	inflightMsg      clustermux.Message
	inflightCallback func(reply []byte, err error)

	pending *pendingReply

	onRegistered   func()
	wantRegistered bool
	registered     bool

	// AutoRegister, if true (the default via NewProtocolClient), arms
	// registration for delivery on the first Tick after Register is
	// called, so tests that do not care about the registration gate
	// don't need to drive it manually.
	AutoRegister bool

	ticks int
}

// NewProtocolClient constructs a ProtocolClient with AutoRegister enabled.
func NewProtocolClient() *ProtocolClient {
	return &ProtocolClient{AutoRegister: true}
}

// RequestInflight implements clustermux.ProtocolClient.
func (p *ProtocolClient) RequestInflight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflightCallback != nil
}

// InflightMessage returns the message most recently handed to RawRequest,
// for inspecting dispatched batch shape. Returns nil if nothing is
// inflight. For tests only.
func (p *ProtocolClient) InflightMessage() *Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inflightMsg == nil {
		return nil
	}
	return p.inflightMsg.(*Message)
}

// RawRequest implements clustermux.ProtocolClient. It panics if a request
// is already inflight, enforcing the single-inflight precondition from
// the caller's (the dispatcher's) side, same as a real protocol client
// would assert.
func (p *ProtocolClient) RawRequest(msg clustermux.Message, onReply func(reply []byte, err error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inflightCallback != nil {
		panic("fake: RawRequest called while a request is already inflight")
	}
	p.inflightMsg = msg
	p.inflightCallback = onReply
}

// Register implements clustermux.ProtocolClient.
func (p *ProtocolClient) Register(onRegistered func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRegistered = onRegistered
	if p.AutoRegister {
		p.wantRegistered = true
	}
}

// CompleteRegistration arms registration for delivery on the next Tick.
// Safe to call from any goroutine; no-op if AutoRegister already did so.
func (p *ProtocolClient) CompleteRegistration() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wantRegistered = true
}

// IsRegistered reports whether registration has completed.
func (p *ProtocolClient) IsRegistered() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registered
}

// Reply arms the currently inflight request for completion, with the
// given reply bytes and error, for delivery on the next Tick. Safe to
// call from any goroutine. Panics if no request is currently inflight.
func (p *ProtocolClient) Reply(reply []byte, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inflightCallback == nil {
		panic("fake: Reply called with no request inflight")
	}
	p.pending = &pendingReply{reply: reply, err: err}
}

// Ticks returns the number of times Tick has been called, for assertions
// about dispatch pipelining.
func (p *ProtocolClient) Ticks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticks
}

// Tick implements clustermux.ProtocolClient. It is the only place
// Register's and RawRequest's callbacks are ever invoked, matching the
// reactor-goroutine-only contract documented on clustermux.ProtocolClient.
func (p *ProtocolClient) Tick() {
	p.mu.Lock()
	p.ticks++

	var fireRegistered func()
	if p.wantRegistered && !p.registered {
		p.registered = true
		fireRegistered = p.onRegistered
	}

	var (
		callback func(reply []byte, err error)
		reply    []byte
		replyErr error
	)
	if p.pending != nil {
		callback = p.inflightCallback
		reply, replyErr = p.pending.reply, p.pending.err
		p.pending = nil
		p.inflightCallback = nil
		p.inflightMsg = nil
	}
	p.mu.Unlock()

	if fireRegistered != nil {
		fireRegistered()
	}
	if callback != nil {
		callback(reply, replyErr)
	}
}
