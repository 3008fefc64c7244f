package clustermux

// admit runs the admission + batching algorithm of spec.md §4.4 for one
// freshly-submitted packet. It is called only from the reactor goroutine.
func (c *Context) admit(packet *Packet) {
	info, ok := lookupOperation(packet.Operation)
	if !ok {
		c.log.Debug("packet validation failed", map[string]any{
			"operation": packet.Operation,
			"reason":    "invalid_operation",
		})
		c.completeAndRelease(packet, StatusInvalidOperation, nil)
		return
	}

	size := uint32(len(packet.Data))
	if size == 0 || size%info.eventSize != 0 {
		c.log.Debug("packet validation failed", map[string]any{
			"operation": packet.Operation,
			"reason":    "invalid_data_size",
			"size":      size,
		})
		c.completeAndRelease(packet, StatusInvalidDataSize, nil)
		return
	}
	if size > MaxMessageBody {
		c.log.Debug("packet validation failed", map[string]any{
			"operation": packet.Operation,
			"reason":    "too_much_data",
			"size":      size,
		})
		c.completeAndRelease(packet, StatusTooMuchData, nil)
		return
	}

	// Initialize as a singleton root (spec.md §4.4 step 3).
	packet.batchNext = nil
	packet.batchTail = packet
	packet.batchSize = size

	// Immediate-dispatch fast path: no request inflight.
	if !c.dispatcher.hasInflight() {
		c.log.Debug("batch formed", map[string]any{
			"operation": packet.Operation,
			"size":      packet.batchSize,
			"path":      "fast",
		})
		c.dispatcher.submit(c, packet)
		return
	}

	// Try to merge into an existing compatible pending root.
	if info.batchingAllowed {
		var merged bool
		c.pending.forEach(func(root *Packet) bool {
			if root.Operation != packet.Operation {
				return true
			}
			if root.batchSize+packet.batchSize > MaxMessageBody {
				return true
			}
			root.batchTail.batchNext = packet
			root.batchTail = packet
			root.batchSize += packet.batchSize
			merged = true
			return false
		})
		if merged {
			c.log.Debug("batch formed", map[string]any{
				"operation": packet.Operation,
				"size":      packet.batchSize,
				"path":      "merged",
			})
			return
		}
	}

	// Otherwise enqueue as a new pending root.
	c.log.Debug("batch formed", map[string]any{
		"operation": packet.Operation,
		"size":      packet.batchSize,
		"path":      "new_root",
	})
	c.pending.pushBack(packet)
}

// completeAndRelease finalizes a packet that never entered the pending
// queue or the wire (validation failures), invoking its completion and
// returning it to the free stack.
func (c *Context) completeAndRelease(packet *Packet, status Status, reply []byte) {
	packet.complete(status, reply)
	c.pool.release(packet)
}
