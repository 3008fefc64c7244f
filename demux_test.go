package clustermux

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexAlignedDemuxer(t *testing.T) {
	d := indexAlignedDemuxer{replyEventSize: 16}
	reply := make([]byte, 16*5)
	for i := range reply {
		reply[i] = byte(i)
	}

	// Member owning events [2, 4) (eventOffset=2, eventCount=2).
	got := d.demux(reply, &Packet{}, 2, 2)
	assert.Equal(t, reply[32:64], got)
}

func TestIndexAlignedDemuxerClampsOutOfRange(t *testing.T) {
	d := indexAlignedDemuxer{replyEventSize: 16}
	reply := make([]byte, 16*2)
	got := d.demux(reply, &Packet{}, 5, 5)
	assert.Empty(t, got)
}

func TestSparseIndexDemuxerRebasesLocalIndex(t *testing.T) {
	d := sparseIndexDemuxer{resultSize: 8}

	// Reply carries two failures: global index 0 (belongs to member A, events
	// [0,2)) and global index 3 (belongs to member B, events [2,4)).
	reply := make([]byte, 16)
	binary.LittleEndian.PutUint32(reply[0:4], 0)
	binary.LittleEndian.PutUint32(reply[4:8], 99)
	binary.LittleEndian.PutUint32(reply[8:12], 3)
	binary.LittleEndian.PutUint32(reply[12:16], 7)

	memberA := d.demux(reply, &Packet{}, 2, 0)
	require.Len(t, memberA, 8)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(memberA[0:4]))
	assert.Equal(t, uint32(99), binary.LittleEndian.Uint32(memberA[4:8]))

	memberB := d.demux(reply, &Packet{}, 2, 2)
	require.Len(t, memberB, 8)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(memberB[0:4]), "global index 3 rebased to local index 1 within [2,4)")
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(memberB[4:8]))
}

func TestSparseIndexDemuxerEmptyWhenNoFailuresInRange(t *testing.T) {
	d := sparseIndexDemuxer{resultSize: 8}
	reply := make([]byte, 8)
	binary.LittleEndian.PutUint32(reply[0:4], 10)
	got := d.demux(reply, &Packet{}, 2, 0)
	assert.Empty(t, got)
}

func TestWholeReplyDemuxerReturnsEntireReply(t *testing.T) {
	d := wholeReplyDemuxer{}
	reply := []byte("the whole reply")
	got := d.demux(reply, &Packet{}, 1, 0)
	assert.Equal(t, reply, got)
}

func TestWholeReplyDemuxerPanicsOnBatchedMember(t *testing.T) {
	d := wholeReplyDemuxer{}
	assert.Panics(t, func() {
		d.demux([]byte("x"), &Packet{}, 1, 1)
	})
	assert.Panics(t, func() {
		member := &Packet{batchNext: &Packet{}}
		d.demux([]byte("x"), member, 1, 0)
	})
}
