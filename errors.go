package clustermux

import "errors"

// Init-time errors, returned from New. These mirror the taxonomy in
// spec.md §7; they are never panicked, always wrapped with additional
// context via fmt.Errorf("%w: ..."), and unwrappable via errors.Is.
var (
	// ErrConcurrencyMaxInvalid is returned when concurrency_max falls
	// outside [1, MaxConcurrency].
	ErrConcurrencyMaxInvalid = errors.New("clustermux: concurrency_max out of range")

	// ErrAddressInvalid is returned when an address list entry fails to
	// parse as host:port.
	ErrAddressInvalid = errors.New("clustermux: address invalid")

	// ErrAddressLimitExceeded is returned when the address list exceeds
	// the replica cap.
	ErrAddressLimitExceeded = errors.New("clustermux: address limit exceeded")

	// ErrSystemResources reports an OS-level resource failure during
	// init; New returns it when the random client id cannot be read from
	// the system random source.
	ErrSystemResources = errors.New("clustermux: system resources exhausted")

	// ErrOutOfMemory is returned when packet pool or message pool
	// allocation fails.
	ErrOutOfMemory = errors.New("clustermux: out of memory")

	// ErrUnexpected is the catch-all init error.
	ErrUnexpected = errors.New("clustermux: unexpected error")
)

// AcquireStatus is the result of Context.AcquirePacket.
type AcquireStatus uint8

const (
	// AcquireOK indicates a packet was successfully acquired.
	AcquireOK AcquireStatus = iota
	// AcquireConcurrencyMaxExceeded indicates every packet in the pool is
	// currently in use.
	AcquireConcurrencyMaxExceeded
	// AcquireShutdown indicates the Context is terminating.
	AcquireShutdown
)

func (s AcquireStatus) String() string {
	switch s {
	case AcquireOK:
		return "ok"
	case AcquireConcurrencyMaxExceeded:
		return "concurrency_max_exceeded"
	case AcquireShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Status is the terminal state of a completed Packet, set before its
// completion callback runs. It is never surfaced as a Go error; transport
// failures are opaque to the core and are conveyed through Status as the
// ProtocolClient defines.
type Status uint8

const (
	// StatusOK indicates the completion carries a valid reply slice.
	StatusOK Status = iota
	// StatusTooMuchData indicates data_size exceeded the maximum protocol
	// message body.
	StatusTooMuchData
	// StatusInvalidOperation indicates an unknown operation code.
	StatusInvalidOperation
	// StatusInvalidDataSize indicates data_size was zero, or not a
	// multiple of the operation's event size.
	StatusInvalidDataSize
	// StatusTransport indicates a transport-level failure: the core
	// assigns it to every member of a batch whose ProtocolClient reply
	// carried a non-nil error.
	StatusTransport
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTooMuchData:
		return "too_much_data"
	case StatusInvalidOperation:
		return "invalid_operation"
	case StatusInvalidDataSize:
		return "invalid_data_size"
	case StatusTransport:
		return "transport"
	default:
		return "unknown"
	}
}
