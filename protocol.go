package clustermux

// Message is a protocol request message obtained from a MessagePool. The
// dispatcher writes a header then copies each chained packet's data into
// the body before handing it to a ProtocolClient.
type Message interface {
	// SetHeader writes the request header: cluster id, client id,
	// operation code, and the batch's total body size.
	SetHeader(clusterID, clientID [16]byte, operation OperationCode, bodySize uint32)

	// Body returns a mutable buffer of at least bodySize bytes (per the
	// most recent SetHeader call) for the dispatcher to copy batch
	// member data into, in chain order.
	Body() []byte
}

// MessagePool is the out-of-scope "message buffer pooling" capability
// assumed by spec.md §1. The core only ever holds at most one outstanding
// request message, matching the single-inflight discipline.
type MessagePool interface {
	GetMessage() Message
	ReleaseMessage(Message)
}

// ProtocolClient is the out-of-scope cluster consensus/replication
// protocol capability assumed by spec.md §1: "a protocol client capability
// offering send_request(op, body, callback) with at-most-one-inflight
// semantics and a registration handshake."
//
// Implementations must guarantee: RawRequest is never called while
// RequestInflight reports true; exactly one onReply call per RawRequest,
// even if shutdown begins mid-flight (per SPEC_FULL.md's "reply during
// shutdown" resolution, the core always returns the packet and always
// fires the user's completion); and Register's onRegistered callback runs
// at most once.
type ProtocolClient interface {
	// RequestInflight reports whether a request is currently outstanding.
	RequestInflight() bool

	// RawRequest hands msg to the wire. onReply is invoked exactly once,
	// on the reactor goroutine, with the reply body (nil on transport
	// failure, in which case err is non-nil).
	RawRequest(msg Message, onReply func(reply []byte, err error))

	// Register performs the one-shot registration handshake; no
	// RawRequest call may precede onRegistered firing. onRegistered must
	// be invoked only from within a call to Tick, never from Register
	// itself or from any other goroutine — the core relies on this to
	// treat its registration-gate flag as reactor-goroutine-only state,
	// requiring no synchronization (spec.md §5).
	Register(onRegistered func())

	// Tick lets the protocol client perform periodic bookkeeping, called
	// once per reactor loop iteration.
	Tick()
}
