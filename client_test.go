package clustermux_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clustermux-go/clustermux"
	"github.com/clustermux-go/clustermux/internal/fake"
	"github.com/clustermux-go/clustermux/types"
)

func newTestClient(t *testing.T, concurrencyMax uint32) (*clustermux.Client, *fake.ProtocolClient) {
	t.Helper()
	ctx, proto := newTestContext(t, concurrencyMax)
	return clustermux.NewClient(ctx), proto
}

// serveOnce waits for a request to become inflight and replies with reply,
// running the dispatch loop exactly one round trip.
func serveOnce(t *testing.T, proto *fake.ProtocolClient, reply []byte) {
	t.Helper()
	waitForInflight(t, proto)
	proto.Reply(reply, nil)
}

func TestClientCreateAccountsSuccess(t *testing.T) {
	client, proto := newTestClient(t, 4)

	done := make(chan struct{})
	var results []types.AccountEventResult
	var callErr error
	go func() {
		results, callErr = client.CreateAccounts([]types.Account{
			{ID: types.ID(), Ledger: 1, Code: 1},
			{ID: types.ID(), Ledger: 1, Code: 2},
		})
		close(done)
	}()

	serveOnce(t, proto, nil) // empty reply: no per-account failures

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("CreateAccounts did not return")
	}
	require.NoError(t, callErr)
	assert.Empty(t, results)
}

func TestClientCreateAccountsSurfacesFailure(t *testing.T) {
	client, proto := newTestClient(t, 4)

	done := make(chan struct{})
	var results []types.AccountEventResult
	var callErr error
	go func() {
		results, callErr = client.CreateAccounts([]types.Account{{ID: types.ID()}})
		close(done)
	}()

	reply := make([]byte, 8)
	binary.LittleEndian.PutUint32(reply[0:4], 0)
	binary.LittleEndian.PutUint32(reply[4:8], uint32(types.CreateAccountExists))
	serveOnce(t, proto, reply)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("CreateAccounts did not return")
	}
	require.NoError(t, callErr)
	require.Len(t, results, 1)
	assert.Equal(t, types.CreateAccountExists, results[0].Result)
}

func TestClientLookupAccountsRoundTrip(t *testing.T) {
	client, proto := newTestClient(t, 4)

	want := types.Account{ID: types.ID(), Ledger: 1, Code: 7, Timestamp: 123}
	reply := marshalOneAccountForTest(want)

	done := make(chan struct{})
	var got []types.Account
	var callErr error
	go func() {
		got, callErr = client.LookupAccounts([]types.Uint128{want.ID})
		close(done)
	}()

	serveOnce(t, proto, reply)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("LookupAccounts did not return")
	}
	require.NoError(t, callErr)
	require.Len(t, got, 1)
	assert.Equal(t, want.ID, got[0].ID)
	assert.Equal(t, want.Ledger, got[0].Ledger)
	assert.Equal(t, want.Code, got[0].Code)
	assert.Equal(t, want.Timestamp, got[0].Timestamp)
}

func TestClientAcquireErrorSurfacesAsError(t *testing.T) {
	ctx, _ := newTestContext(t, 1)
	client := clustermux.NewClient(ctx)

	// Exhaust the single packet slot directly through the underlying
	// Context so the Client's own acquire fails.
	held, status := ctx.AcquirePacket()
	require.Equal(t, clustermux.AcquireOK, status)
	// Return the slot before cleanup: Deinit waits for every packet.
	defer ctx.ReleasePacket(held)

	_, err := client.LookupAccounts([]types.Uint128{types.ID()})
	require.Error(t, err)
	var acquireErr *clustermux.AcquireError
	require.ErrorAs(t, err, &acquireErr)
	assert.Equal(t, clustermux.AcquireConcurrencyMaxExceeded, acquireErr.Status)
}

func TestClientConcurrentCreateTransfersBoundedFanOut(t *testing.T) {
	client, proto := newTestClient(t, 16)

	stop := make(chan struct{})
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if proto.RequestInflight() {
				proto.Reply(nil, nil)
			}
			time.Sleep(time.Millisecond)
		}
	}()
	defer func() {
		close(stop)
		<-serverDone
	}()

	batches := make([][]types.Transfer, 6)
	for i := range batches {
		batches[i] = []types.Transfer{{
			ID:              types.ID(),
			CreditAccountID: types.ID(),
			DebitAccountID:  types.ID(),
			Amount:          types.ToUint128(uint64(i + 1)),
			Ledger:          1,
			Code:            1,
		}}
	}

	results, err := client.ConcurrentCreateTransfers(batches, 3)
	require.NoError(t, err)
	require.Len(t, results, len(batches))
	for _, r := range results {
		assert.Empty(t, r)
	}
}

func marshalOneAccountForTest(a types.Account) []byte {
	buf := make([]byte, 128)
	copy(buf[0:16], a.ID[:])
	binary.LittleEndian.PutUint32(buf[112:116], a.Ledger)
	binary.LittleEndian.PutUint16(buf[116:118], a.Code)
	binary.LittleEndian.PutUint16(buf[118:120], a.Flags)
	binary.LittleEndian.PutUint64(buf[120:128], a.Timestamp)
	return buf
}
