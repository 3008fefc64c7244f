// Package clustermux implements the client-side request multiplexer that
// sits between an application, via a stable foreign-function boundary, and
// a replicated transaction-processing cluster.
//
// # Architecture
//
// A [Context] is the long-lived core object. It owns a fixed [Packet] pool,
// a lock-free multi-producer/single-consumer submission stack, a
// single-threaded pending FIFO of batch roots, and exactly one reactor
// goroutine that drains submissions, coalesces compatible packets into
// batches, dispatches one batch at a time to a [ProtocolClient] under a
// strict single-inflight discipline, and demultiplexes the reply back to
// each submitter's completion callback.
//
// # Usage
//
//	ctx, err := clustermux.New(clusterID, "127.0.0.1:3000", 256,
//	    clustermux.WithProtocolClient(proto),
//	    clustermux.WithMessagePool(messagePool),
//	    clustermux.WithReactor(reactor),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Deinit()
//
//	packet, status := ctx.AcquirePacket()
//	if status != clustermux.AcquireOK {
//	    log.Fatal(status)
//	}
//	packet.Operation = OpCreateAccounts
//	packet.Data = accountBytes
//	ctx.Submit(packet, func(p *Packet, reply []byte) {
//	    // runs on the reactor goroutine; copy reply before returning.
//	})
//
// # Thread safety
//
// [Context.AcquirePacket], [Context.Submit], [Context.ReleasePacket], and
// [Context.Deinit] are safe to call from any goroutine. Completion
// callbacks are invoked only on the reactor goroutine, never on a caller's
// goroutine.
package clustermux
