package clustermux

import "fmt"

// dispatcher holds the single-inflight invariant for the ProtocolClient
// (spec.md §4.5). All of its methods run only on the reactor goroutine.
type dispatcher struct {
	messagePool MessagePool
	protocol    ProtocolClient
}

// hasInflight reports whether the protocol client currently has an
// outstanding request.
func (d *dispatcher) hasInflight() bool {
	return d.protocol.RequestInflight()
}

// submit builds a protocol request message from root's batch chain and
// hands it to the protocol client. Precondition: !d.hasInflight().
func (d *dispatcher) submit(c *Context, root *Packet) {
	if d.hasInflight() {
		panic("clustermux: dispatcher.submit called while a request is inflight")
	}

	msg := d.messagePool.GetMessage()
	msg.SetHeader(c.clusterID, c.clientID, root.Operation, root.batchSize)

	body := msg.Body()
	var written, members uint32
	for member := root; member != nil; member = member.batchNext {
		n := copy(body[written:], member.Data)
		written += uint32(n)
		members++
	}
	if written != root.batchSize {
		panic(fmt.Sprintf("clustermux: batch body mismatch: wrote %d, expected %d", written, root.batchSize))
	}

	c.log.Debug("dispatch issued", map[string]any{
		"operation": root.Operation,
		"size":      written,
		"members":   members,
	})

	d.protocol.RawRequest(msg, func(reply []byte, err error) {
		d.messagePool.ReleaseMessage(msg)
		d.onReply(c, root, reply, err)
	})
}

// onReply runs when the wire completes root's request. Per spec.md §4.5's
// "pop-then-demultiplex" rationale, the next pending root (if any) is
// dispatched immediately, before this reply's completions — which may run
// arbitrary application code at the FFI boundary — are processed. This
// keeps the wire busy through user callbacks.
func (d *dispatcher) onReply(c *Context, root *Packet, reply []byte, err error) {
	if next := c.pending.popFront(); next != nil {
		d.submit(c, next)
	}
	c.completeBatch(root, reply, err)
}
