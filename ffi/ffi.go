// Package ffi is the cgo-exportable C-ABI shim named by spec.md §6 and
// SPEC_FULL.md §12: the literal foreign-function boundary a non-Go caller
// links against. It exposes clients and packets as opaque handles — a
// runtime/cgo.Handle for the client, a plain pool-slot index for the
// packet — never a raw Go pointer, per spec.md's "FFI opaqueness" design
// note.
//
// The protocol client and message pool are out of scope per spec.md §1
// (they are consumed capabilities, not provided); this shim cannot
// construct them from a bare C function pointer without reimplementing a
// large slice of the wire protocol in C. Instead, Init resolves them
// through RegisterFactories, a Go-side
// registration point a host binary populates once at startup with
// concrete implementations (e.g. a real protocol client wired to a
// cluster). The reactor is not supplied by the host: Init uses
// clustermux.New's default reactor. This mirrors how the real tb_client's
// C-ABI is backed by a statically-linked native client library, not by
// callbacks supplied at the call site.
package ffi

/*
#include <stddef.h>
#include <stdint.h>
#include <stdlib.h>

typedef void (*clustermux_completion_fn)(
	uintptr_t completion_ctx,
	uintptr_t client,
	uint32_t packet_index,
	uint8_t status,
	const void *reply_ptr,
	size_t reply_len
);

static inline void clustermux_call_completion(
	clustermux_completion_fn fn,
	uintptr_t completion_ctx,
	uintptr_t client,
	uint32_t packet_index,
	uint8_t status,
	const void *reply_ptr,
	size_t reply_len
) {
	fn(completion_ctx, client, packet_index, status, reply_ptr, reply_len);
}
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/clustermux-go/clustermux"
)

// AcquireStatus mirrors clustermux.AcquireStatus across the C boundary as
// a small integer, per spec.md §6's `{ ok, concurrency_max_exceeded,
// shutdown }` result shape.
type AcquireStatus = C.uint8_t

const (
	acquireOK                   C.uint8_t = 0
	acquireConcurrencyMaxExceed C.uint8_t = 1
	acquireShutdown             C.uint8_t = 2
)

// ProtocolClientFactory and MessagePoolFactory construct the per-client
// collaborators spec.md treats as out-of-scope capabilities. A host binary
// must call RegisterFactories before Init.
type ProtocolClientFactory func() clustermux.ProtocolClient
type MessagePoolFactory func() clustermux.MessagePool

var (
	protocolClientFactory ProtocolClientFactory
	messagePoolFactory    MessagePoolFactory
)

// RegisterFactories installs the collaborator factories every subsequent
// Init call uses. Not safe to call concurrently with Init; intended to run
// once at process startup.
func RegisterFactories(protocol ProtocolClientFactory, messagePool MessagePoolFactory) {
	protocolClientFactory = protocol
	messagePoolFactory = messagePool
}

type clientState struct {
	ctx           *clustermux.Context
	completionCtx C.uintptr_t
	completionFn  C.clustermux_completion_fn
}

//export clustermux_init
func clustermux_init(
	clusterIDHi, clusterIDLo C.uint64_t,
	addresses *C.char,
	concurrencyMax C.uint32_t,
	completionCtx C.uintptr_t,
	completionFn C.clustermux_completion_fn,
	outClient *C.uintptr_t,
) C.uint8_t {
	if protocolClientFactory == nil || messagePoolFactory == nil {
		return statusCode(clustermux.ErrUnexpected)
	}

	var clusterID [16]byte
	putU64(clusterID[0:8], uint64(clusterIDLo))
	putU64(clusterID[8:16], uint64(clusterIDHi))

	ctx, err := clustermux.New(
		clusterID,
		C.GoString(addresses),
		uint32(concurrencyMax),
		clustermux.WithProtocolClient(protocolClientFactory()),
		clustermux.WithMessagePool(messagePoolFactory()),
	)
	if err != nil {
		return statusCode(err)
	}

	state := &clientState{ctx: ctx, completionCtx: completionCtx, completionFn: completionFn}
	handle := cgo.NewHandle(state)
	*outClient = C.uintptr_t(handle)
	return 0
}

//export clustermux_acquire_packet
func clustermux_acquire_packet(client C.uintptr_t, outPacketIndex *C.uint32_t) C.uint8_t {
	state := clientFromHandle(client)
	packet, status := state.ctx.AcquirePacket()
	switch status {
	case clustermux.AcquireOK:
		*outPacketIndex = C.uint32_t(packet.Index())
		return acquireOK
	case clustermux.AcquireShutdown:
		return acquireShutdown
	default:
		return acquireConcurrencyMaxExceed
	}
}

//export clustermux_release_packet
func clustermux_release_packet(client C.uintptr_t, packetIndex C.uint32_t) {
	state := clientFromHandle(client)
	state.ctx.ReleasePacket(state.ctx.PacketAt(uint32(packetIndex)))
}

//export clustermux_submit
func clustermux_submit(client C.uintptr_t, packetIndex C.uint32_t, operation C.uint8_t, data unsafe.Pointer, dataLen C.uint32_t) {
	state := clientFromHandle(client)
	packet := state.ctx.PacketAt(uint32(packetIndex))
	packet.Operation = clustermux.OperationCode(operation)
	if dataLen > 0 {
		packet.Data = C.GoBytes(data, C.int(dataLen))
	} else {
		packet.Data = nil
	}

	clientHandle := client
	state.ctx.Submit(packet, func(p *clustermux.Packet, reply []byte) {
		invokeCompletion(state, clientHandle, p, reply)
	})
}

//export clustermux_deinit
func clustermux_deinit(client C.uintptr_t) {
	handle := cgo.Handle(client)
	state := handle.Value().(*clientState)
	state.ctx.Deinit()
	handle.Delete()
}

func clientFromHandle(client C.uintptr_t) *clientState {
	return cgo.Handle(client).Value().(*clientState)
}

// invokeCompletion runs on the reactor goroutine (it is the packet's
// CompletionFunc); it copies the reply into C-owned memory for the
// duration of the call, per the cgo pointer-passing rules, and frees it
// immediately after the callback returns.
func invokeCompletion(state *clientState, client C.uintptr_t, p *clustermux.Packet, reply []byte) {
	if state.completionFn == nil {
		return
	}
	var ptr unsafe.Pointer
	if len(reply) > 0 {
		ptr = C.CBytes(reply)
		defer C.free(ptr)
	}
	C.clustermux_call_completion(
		state.completionFn,
		state.completionCtx,
		client,
		C.uint32_t(p.Index()),
		C.uint8_t(p.Status),
		ptr,
		C.size_t(len(reply)),
	)
}

func putU64(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

func statusCode(err error) C.uint8_t {
	switch {
	case err == nil:
		return 0
	default:
		// Non-zero is sufficient for init-time failures; the caller is
		// expected to consult the Go-side error domain (or a future
		// richer status export) for detail. spec.md §7 does not mandate a
		// specific wire encoding for init errors, only that they roll
		// back all acquired resources, which clustermux.New already does.
		return 255
	}
}
