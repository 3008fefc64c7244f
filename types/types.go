// Package types provides the fixed-size wire structs the core's demuxers
// slice batched replies into, mirroring the real TigerBeetle Go client's
// github.com/tigerbeetle/tigerbeetle-go/pkg/types package referenced by
// original_source/src/clients/go/tb_client_test.go. Field layouts match the
// struct sizes asserted there (128 bytes for Account and Transfer, 16 for a
// bare Uint128 id) closely enough to exercise the core's per-event-size
// batching and demultiplexing logic; this package is a supplement named by
// SPEC_FULL.md §12, not a byte-for-byte reimplementation of the real wire
// protocol.
package types

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
)

// Uint128 is a 128-bit unsigned integer stored little-endian, matching the
// real client's representation of ids and amounts.
type Uint128 [16]byte

// ToUint128 converts a uint64 into a Uint128 with the high bits zeroed.
func ToUint128(v uint64) Uint128 {
	var out Uint128
	binary.LittleEndian.PutUint64(out[0:8], v)
	return out
}

// ID generates a new random, non-zero Uint128 suitable for use as an
// account or transfer id. Unlike the real client's monotonic-ish TSID
// generator, this draws from crypto/rand: the core has no access to a
// cluster-synchronized clock, and a supplemental convenience type has no
// need to approximate one.
func ID() Uint128 {
	var out Uint128
	for {
		if _, err := rand.Read(out[:]); err != nil {
			panic(err)
		}
		if out != (Uint128{}) {
			return out
		}
	}
}

// BigInt returns u interpreted as an unsigned little-endian integer.
func (u Uint128) BigInt() big.Int {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = u[15-i]
	}
	var out big.Int
	out.SetBytes(be)
	return out
}

// AccountFlags are the bit flags packed into Account.Flags.
type AccountFlags struct {
	Linked                     bool
	DebitsMustNotExceedCredits bool
	CreditsMustNotExceedDebits bool
	History                    bool
}

// ToUint16 packs the flags into their wire representation.
func (f AccountFlags) ToUint16() uint16 {
	var out uint16
	if f.Linked {
		out |= 1 << 0
	}
	if f.DebitsMustNotExceedCredits {
		out |= 1 << 1
	}
	if f.CreditsMustNotExceedDebits {
		out |= 1 << 2
	}
	if f.History {
		out |= 1 << 3
	}
	return out
}

// Account is the create_accounts/lookup_accounts event struct.
type Account struct {
	ID             Uint128
	DebitsPending  Uint128
	DebitsPosted   Uint128
	CreditsPending Uint128
	CreditsPosted  Uint128
	UserData128    Uint128
	UserData64     uint64
	UserData32     uint32
	Reserved       uint32
	Ledger         uint32
	Code           uint16
	Flags          uint16
	Timestamp      uint64
}

// TransferFlags are the bit flags packed into Transfer.Flags.
type TransferFlags struct {
	Linked              bool
	Pending             bool
	PostPendingTransfer bool
	VoidPendingTransfer bool
	BalancingDebit      bool
	BalancingCredit     bool
}

// ToUint16 packs the flags into their wire representation.
func (f TransferFlags) ToUint16() uint16 {
	var out uint16
	if f.Linked {
		out |= 1 << 0
	}
	if f.Pending {
		out |= 1 << 1
	}
	if f.PostPendingTransfer {
		out |= 1 << 2
	}
	if f.VoidPendingTransfer {
		out |= 1 << 3
	}
	if f.BalancingDebit {
		out |= 1 << 4
	}
	if f.BalancingCredit {
		out |= 1 << 5
	}
	return out
}

// Transfer is the create_transfers/lookup_transfers event struct.
type Transfer struct {
	ID              Uint128
	DebitAccountID  Uint128
	CreditAccountID Uint128
	Amount          Uint128
	PendingID       Uint128
	UserData128     Uint128
	UserData64      uint64
	UserData32      uint32
	Timeout         uint32
	Ledger          uint32
	Code            uint16
	Flags           uint16
	Timestamp       uint64
}

// CreateAccountsResult codes, a closed subset of the real client's
// CreateAccountResult enumeration sufficient to exercise the sparse-index
// demuxer's bucketing and rebasing.
type CreateAccountsResult uint32

const (
	CreateAccountOK CreateAccountsResult = iota
	CreateAccountLinkedEventFailed
	CreateAccountExists
	CreateAccountExistsWithDifferentFlags
)

// AccountEventResult is one {index, result} entry in a create_accounts
// reply, matching the 8-byte createAccountsResultSize the core's wire.go
// declares.
type AccountEventResult struct {
	Index  uint32
	Result CreateAccountsResult
}

// CreateTransfersResult codes, a closed subset of the real client's
// CreateTransferResult enumeration.
type CreateTransfersResult uint32

const (
	CreateTransferOK CreateTransfersResult = iota
	CreateTransferLinkedEventFailed
	CreateTransferExists
	CreateTransferExistsWithDifferentFlags
)

// TransferEventResult is one {index, result} entry in a create_transfers
// reply.
type TransferEventResult struct {
	Index  uint32
	Result CreateTransfersResult
}

// AccountFilterFlags select which side(s) of an account's ledger entries
// GetAccountTransfers/GetAccountBalances returns, and in which order.
type AccountFilterFlags struct {
	Debits   bool
	Credits  bool
	Reversed bool
}

// ToUint32 packs the flags into their wire representation.
func (f AccountFilterFlags) ToUint32() uint32 {
	var out uint32
	if f.Debits {
		out |= 1 << 0
	}
	if f.Credits {
		out |= 1 << 1
	}
	if f.Reversed {
		out |= 1 << 2
	}
	return out
}

// AccountFilter is the filter struct for get_account_transfers and
// get_account_balances, a non-batchable whole-reply operation. Sized to
// exactly accountFilterEventSize (64 bytes, see the core's wire.go) so the
// admission size check (data_size must be a positive multiple of
// eventSize) passes for a single filter.
type AccountFilter struct {
	AccountID    Uint128
	TimestampMin uint64
	TimestampMax uint64
	Limit        uint32
	Flags        uint32
	Reserved     [24]byte
}

// QueryFilter is the filter struct for query_accounts and query_transfers.
// Sized to exactly queryFilterEventSize (64 bytes).
type QueryFilter struct {
	Ledger       uint32
	Code         uint16
	Reserved1    [2]byte
	TimestampMin uint64
	TimestampMax uint64
	Limit        uint32
	Flags        uint32
	Reserved2    [32]byte
}
