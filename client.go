package clustermux

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/clustermux-go/clustermux/types"
)

// Client is the synchronous convenience API layered on Context.Submit,
// exactly as the real TigerBeetle Go client layers a blocking Client
// interface over the callback-based tb_client core (see
// original_source/src/clients/go/tb_client_test.go's WithClient/NewClient).
// spec.md's Non-goals exclude a blocking API from the core itself; Client
// is a separate, optional wrapper built entirely from Context's public
// surface.
type Client struct {
	ctx *Context
}

// NewClient wraps an already-constructed Context.
func NewClient(ctx *Context) *Client {
	return &Client{ctx: ctx}
}

// Close releases the underlying Context. Idempotent.
func (c *Client) Close() {
	c.ctx.Deinit()
}

// call submits one packet for op carrying data, blocks for its completion,
// and returns the raw reply slice (copied out, since the completion
// callback's slice is only valid for the call's duration) or a *StatusError
// if the packet did not complete with StatusOK.
func (c *Client) call(op OperationCode, data []byte) ([]byte, error) {
	packet, acquireStatus := c.ctx.AcquirePacket()
	if acquireStatus != AcquireOK {
		return nil, &AcquireError{Status: acquireStatus}
	}
	packet.Operation = op
	packet.Data = data

	done := make(chan struct{})
	var (
		status Status
		reply  []byte
	)
	c.ctx.Submit(packet, func(p *Packet, r []byte) {
		status = p.Status
		if len(r) > 0 {
			reply = append([]byte(nil), r...)
		}
		close(done)
	})
	<-done

	if status != StatusOK {
		return nil, &StatusError{Status: status}
	}
	return reply, nil
}

// StatusError reports a packet-level failure (spec.md §7's per-packet
// Status enum) surfaced through the synchronous Client API.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("clustermux: request failed: %s", e.Status)
}

// AcquireError reports a packet pool acquisition failure surfaced through
// the synchronous Client API.
type AcquireError struct {
	Status AcquireStatus
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("clustermux: could not acquire packet: %s", e.Status)
}

// CreateAccounts submits a create_accounts batch and returns the sparse
// set of per-account failures (empty on full success, matching the real
// client's "assert.Empty(t, results)" idiom).
func (c *Client) CreateAccounts(accounts []types.Account) ([]types.AccountEventResult, error) {
	reply, err := c.call(OpCreateAccounts, marshalAccounts(accounts))
	if err != nil {
		return nil, err
	}
	return unmarshalAccountResults(reply), nil
}

// CreateTransfers submits a create_transfers batch.
func (c *Client) CreateTransfers(transfers []types.Transfer) ([]types.TransferEventResult, error) {
	reply, err := c.call(OpCreateTransfers, marshalTransfers(transfers))
	if err != nil {
		return nil, err
	}
	return unmarshalTransferResults(reply), nil
}

// LookupAccounts submits a lookup_accounts batch.
func (c *Client) LookupAccounts(ids []types.Uint128) ([]types.Account, error) {
	reply, err := c.call(OpLookupAccounts, marshalIDs(ids))
	if err != nil {
		return nil, err
	}
	return unmarshalAccounts(reply), nil
}

// LookupTransfers submits a lookup_transfers batch.
func (c *Client) LookupTransfers(ids []types.Uint128) ([]types.Transfer, error) {
	reply, err := c.call(OpLookupTransfers, marshalIDs(ids))
	if err != nil {
		return nil, err
	}
	return unmarshalTransfers(reply), nil
}

// GetAccountTransfers submits a non-batchable get_account_transfers
// request.
func (c *Client) GetAccountTransfers(filter types.AccountFilter) ([]types.Transfer, error) {
	reply, err := c.call(OpGetAccountTransfers, marshalAccountFilter(filter))
	if err != nil {
		return nil, err
	}
	return unmarshalTransfers(reply), nil
}

// GetAccountBalances submits a non-batchable get_account_balances request.
func (c *Client) GetAccountBalances(filter types.AccountFilter) ([]types.Account, error) {
	reply, err := c.call(OpGetAccountBalances, marshalAccountFilter(filter))
	if err != nil {
		return nil, err
	}
	return unmarshalAccounts(reply), nil
}

// ConcurrentCreateTransfers fans batches out across up to concurrencyMax
// goroutines and collects the first error, grounded directly in
// original_source/src/clients/go/tb_client_test.go's "can create
// concurrent transfers" subtest — which hand-rolls a semaphore channel and
// a sync.WaitGroup for the same purpose. errgroup.Group.SetLimit is the
// idiomatic replacement for that pattern.
func (c *Client) ConcurrentCreateTransfers(batches [][]types.Transfer, concurrencyMax int) ([][]types.TransferEventResult, error) {
	results := make([][]types.TransferEventResult, len(batches))
	var g errgroup.Group
	g.SetLimit(concurrencyMax)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			r, err := c.CreateTransfers(batch)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func marshalIDs(ids []types.Uint128) []byte {
	out := make([]byte, 0, len(ids)*16)
	for _, id := range ids {
		out = append(out, id[:]...)
	}
	return out
}

func marshalAccounts(accounts []types.Account) []byte {
	out := make([]byte, 0, len(accounts)*accountEventSize)
	for _, a := range accounts {
		var buf [accountEventSize]byte
		putUint128(buf[0:16], a.ID)
		putUint128(buf[16:32], a.DebitsPending)
		putUint128(buf[32:48], a.DebitsPosted)
		putUint128(buf[48:64], a.CreditsPending)
		putUint128(buf[64:80], a.CreditsPosted)
		putUint128(buf[80:96], a.UserData128)
		binary.LittleEndian.PutUint64(buf[96:104], a.UserData64)
		binary.LittleEndian.PutUint32(buf[104:108], a.UserData32)
		binary.LittleEndian.PutUint32(buf[108:112], a.Reserved)
		binary.LittleEndian.PutUint32(buf[112:116], a.Ledger)
		binary.LittleEndian.PutUint16(buf[116:118], a.Code)
		binary.LittleEndian.PutUint16(buf[118:120], a.Flags)
		binary.LittleEndian.PutUint64(buf[120:128], a.Timestamp)
		out = append(out, buf[:]...)
	}
	return out
}

func unmarshalAccounts(reply []byte) []types.Account {
	n := len(reply) / accountEventSize
	out := make([]types.Account, n)
	for i := range out {
		buf := reply[i*accountEventSize : (i+1)*accountEventSize]
		out[i] = types.Account{
			ID:             getUint128(buf[0:16]),
			DebitsPending:  getUint128(buf[16:32]),
			DebitsPosted:   getUint128(buf[32:48]),
			CreditsPending: getUint128(buf[48:64]),
			CreditsPosted:  getUint128(buf[64:80]),
			UserData128:    getUint128(buf[80:96]),
			UserData64:     binary.LittleEndian.Uint64(buf[96:104]),
			UserData32:     binary.LittleEndian.Uint32(buf[104:108]),
			Reserved:       binary.LittleEndian.Uint32(buf[108:112]),
			Ledger:         binary.LittleEndian.Uint32(buf[112:116]),
			Code:           binary.LittleEndian.Uint16(buf[116:118]),
			Flags:          binary.LittleEndian.Uint16(buf[118:120]),
			Timestamp:      binary.LittleEndian.Uint64(buf[120:128]),
		}
	}
	return out
}

func marshalTransfers(transfers []types.Transfer) []byte {
	out := make([]byte, 0, len(transfers)*transferEventSize)
	for _, t := range transfers {
		var buf [transferEventSize]byte
		putUint128(buf[0:16], t.ID)
		putUint128(buf[16:32], t.DebitAccountID)
		putUint128(buf[32:48], t.CreditAccountID)
		putUint128(buf[48:64], t.Amount)
		putUint128(buf[64:80], t.PendingID)
		putUint128(buf[80:96], t.UserData128)
		binary.LittleEndian.PutUint64(buf[96:104], t.UserData64)
		binary.LittleEndian.PutUint32(buf[104:108], t.UserData32)
		binary.LittleEndian.PutUint32(buf[108:112], t.Timeout)
		binary.LittleEndian.PutUint32(buf[112:116], t.Ledger)
		binary.LittleEndian.PutUint16(buf[116:118], t.Code)
		binary.LittleEndian.PutUint16(buf[118:120], t.Flags)
		binary.LittleEndian.PutUint64(buf[120:128], t.Timestamp)
		out = append(out, buf[:]...)
	}
	return out
}

func unmarshalTransfers(reply []byte) []types.Transfer {
	n := len(reply) / transferEventSize
	out := make([]types.Transfer, n)
	for i := range out {
		buf := reply[i*transferEventSize : (i+1)*transferEventSize]
		out[i] = types.Transfer{
			ID:              getUint128(buf[0:16]),
			DebitAccountID:  getUint128(buf[16:32]),
			CreditAccountID: getUint128(buf[32:48]),
			Amount:          getUint128(buf[48:64]),
			PendingID:       getUint128(buf[64:80]),
			UserData128:     getUint128(buf[80:96]),
			UserData64:      binary.LittleEndian.Uint64(buf[96:104]),
			UserData32:      binary.LittleEndian.Uint32(buf[104:108]),
			Timeout:         binary.LittleEndian.Uint32(buf[108:112]),
			Ledger:          binary.LittleEndian.Uint32(buf[112:116]),
			Code:            binary.LittleEndian.Uint16(buf[116:118]),
			Flags:           binary.LittleEndian.Uint16(buf[118:120]),
			Timestamp:       binary.LittleEndian.Uint64(buf[120:128]),
		}
	}
	return out
}

func unmarshalAccountResults(reply []byte) []types.AccountEventResult {
	n := len(reply) / createAccountsResultSize
	out := make([]types.AccountEventResult, n)
	for i := range out {
		buf := reply[i*createAccountsResultSize : (i+1)*createAccountsResultSize]
		out[i] = types.AccountEventResult{
			Index:  binary.LittleEndian.Uint32(buf[0:4]),
			Result: types.CreateAccountsResult(binary.LittleEndian.Uint32(buf[4:8])),
		}
	}
	return out
}

func unmarshalTransferResults(reply []byte) []types.TransferEventResult {
	n := len(reply) / createTransfersResultSize
	out := make([]types.TransferEventResult, n)
	for i := range out {
		buf := reply[i*createTransfersResultSize : (i+1)*createTransfersResultSize]
		out[i] = types.TransferEventResult{
			Index:  binary.LittleEndian.Uint32(buf[0:4]),
			Result: types.CreateTransfersResult(binary.LittleEndian.Uint32(buf[4:8])),
		}
	}
	return out
}

func marshalAccountFilter(f types.AccountFilter) []byte {
	var buf [accountFilterEventSize]byte
	putUint128(buf[0:16], f.AccountID)
	binary.LittleEndian.PutUint64(buf[16:24], f.TimestampMin)
	binary.LittleEndian.PutUint64(buf[24:32], f.TimestampMax)
	binary.LittleEndian.PutUint32(buf[32:36], f.Limit)
	binary.LittleEndian.PutUint32(buf[36:40], f.Flags)
	return buf[:]
}

func putUint128(dst []byte, v types.Uint128) { copy(dst, v[:]) }

func getUint128(src []byte) types.Uint128 {
	var out types.Uint128
	copy(out[:], src)
	return out
}
