package clustermux

import "encoding/binary"

// Demuxer carves a batched reply into per-packet slices. Implementations
// are selected per-operation via the operation table (see operations.go)
// and resolved once at batch-completion time, per DESIGN NOTES
// "Compile-time operation dispatch".
//
// demux is called once per member of a batch chain, in chain order, with
// the full reply buffer and the member's event count (data_size /
// eventSize). It must return exactly the subrange of reply corresponding
// to that member's submitted events. The reply buffer's lifetime ends when
// the dispatcher's demultiplexing pass returns; implementations must not
// retain it.
type Demuxer interface {
	demux(reply []byte, member *Packet, eventCount uint32, eventOffset uint32) []byte
}

// indexAlignedDemuxer slices reply-event-aligned operations (the bulk
// lookups) by offset: member N's reply occupies events
// [eventOffset, eventOffset+eventCount) of the full reply, where
// eventOffset is the sum of event counts of all earlier members in the
// chain. This is the straightforward case named in spec.md §4.6.
type indexAlignedDemuxer struct {
	replyEventSize uint32
}

func (d indexAlignedDemuxer) demux(reply []byte, member *Packet, eventCount uint32, eventOffset uint32) []byte {
	start := eventOffset * d.replyEventSize
	end := start + eventCount*d.replyEventSize
	if end > uint32(len(reply)) {
		end = uint32(len(reply))
	}
	if start > end {
		start = end
	}
	return reply[start:end]
}

// sparseIndexDemuxer partitions a reply that contains only a sparse subset
// of {index, result} pairs — the shape returned by create_accounts and
// create_transfers, where only failed events are reported. It scans the
// reply once, bucketing each result by which member's local event range
// its global index falls into, and rebases the index to be local to that
// member before re-encoding, exactly as a caller submitting N separate
// singleton packets would have observed for their own events.
type sparseIndexDemuxer struct {
	resultSize uint32 // bytes per {index uint32, result uint32} entry
}

func (d sparseIndexDemuxer) demux(reply []byte, member *Packet, eventCount uint32, eventOffset uint32) []byte {
	out := make([]byte, 0, d.resultSize)
	lo, hi := eventOffset, eventOffset+eventCount
	for off := uint32(0); off+d.resultSize <= uint32(len(reply)); off += d.resultSize {
		entry := reply[off : off+d.resultSize]
		index := binary.LittleEndian.Uint32(entry[0:4])
		if index < lo || index >= hi {
			continue
		}
		rebased := make([]byte, d.resultSize)
		copy(rebased, entry)
		binary.LittleEndian.PutUint32(rebased[0:4], index-lo)
		out = append(out, rebased...)
	}
	return out
}

// wholeReplyDemuxer returns the entire reply to the single packet,
// asserting the batch is indeed a singleton. Used for operations where
// batchingAllowed is false: per spec.md §4.6's invariant, the single
// result slice always equals the entire reply. The assertion catches an
// operation accidentally entering the batcher's merge path — a bug, per
// DESIGN NOTES "non-batchable reply demux", not a supported code path.
type wholeReplyDemuxer struct{}

func (wholeReplyDemuxer) demux(reply []byte, member *Packet, eventCount uint32, eventOffset uint32) []byte {
	if eventOffset != 0 || member.batchNext != nil {
		panic("clustermux: non-batchable operation was batched")
	}
	return reply
}
