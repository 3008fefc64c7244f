package clustermux

import "sort"

// Operation codes. These mirror the TigerBeetle wire protocol's request
// variants referenced by original_source/src/clients/go/tb_client_test.go,
// supplementing spec.md's abstract "operation" with a concrete closed
// enumeration, per SPEC_FULL.md §12.
const (
	OpCreateAccounts OperationCode = iota + 1
	OpCreateTransfers
	OpLookupAccounts
	OpLookupTransfers
	OpGetAccountTransfers
	OpQueryAccounts
	OpQueryTransfers
	OpGetAccountBalances
)

// operationInfo is the compile-time-resolved, table-driven description of
// one operation: its per-event wire size, whether batching is permitted,
// and which Demuxer strategy partitions its replies. Per DESIGN NOTES
// "Compile-time operation dispatch", a closed table keyed by OperationCode
// is used in preference to a type-per-operation hierarchy, trading a
// little inlineability for a much smaller surface.
type operationInfo struct {
	eventSize       uint32
	batchingAllowed bool
	demux           Demuxer
}

// MaxMessageBody is the maximum protocol message body size a batch may
// accumulate to, mirroring the cluster's fixed message size. It is
// expressed in bytes, like Packet.Data lengths: a batch root's batchSize
// must never exceed MaxMessageBody.
const MaxMessageBody = 1 << 20 // 1 MiB, matching a conservative TigerBeetle message size.

var operationTable = map[OperationCode]operationInfo{
	OpCreateAccounts:      {eventSize: accountEventSize, batchingAllowed: true, demux: sparseIndexDemuxer{resultSize: createAccountsResultSize}},
	OpCreateTransfers:     {eventSize: transferEventSize, batchingAllowed: true, demux: sparseIndexDemuxer{resultSize: createTransfersResultSize}},
	OpLookupAccounts:      {eventSize: idEventSize, batchingAllowed: true, demux: indexAlignedDemuxer{replyEventSize: accountEventSize}},
	OpLookupTransfers:     {eventSize: idEventSize, batchingAllowed: true, demux: indexAlignedDemuxer{replyEventSize: transferEventSize}},
	OpGetAccountTransfers: {eventSize: accountFilterEventSize, batchingAllowed: false, demux: wholeReplyDemuxer{}},
	OpGetAccountBalances:  {eventSize: accountFilterEventSize, batchingAllowed: false, demux: wholeReplyDemuxer{}},
	OpQueryAccounts:       {eventSize: queryFilterEventSize, batchingAllowed: false, demux: wholeReplyDemuxer{}},
	OpQueryTransfers:      {eventSize: queryFilterEventSize, batchingAllowed: false, demux: wholeReplyDemuxer{}},
}

// lookupOperation returns the table entry for op, and whether it exists.
func lookupOperation(op OperationCode) (operationInfo, bool) {
	info, ok := operationTable[op]
	return info, ok
}

// batchingAllowed reports whether op's members may be coalesced into a
// multi-packet batch. Operations for which this is false are always
// enqueued as singleton roots (§4.4 "Otherwise enqueue").
func batchingAllowed(op OperationCode) bool {
	info, ok := operationTable[op]
	return ok && info.batchingAllowed
}

// knownOperations returns the sorted set of registered operation codes,
// used only by tests and diagnostics.
func knownOperations() []OperationCode {
	out := make([]OperationCode, 0, len(operationTable))
	for op := range operationTable {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
