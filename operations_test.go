package clustermux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupOperationKnown(t *testing.T) {
	for _, op := range knownOperations() {
		info, ok := lookupOperation(op)
		assert.True(t, ok)
		assert.NotZero(t, info.eventSize)
		assert.NotNil(t, info.demux)
	}
}

func TestLookupOperationUnknown(t *testing.T) {
	_, ok := lookupOperation(OperationCode(0xFF))
	assert.False(t, ok)
}

func TestBatchingAllowed(t *testing.T) {
	assert.True(t, batchingAllowed(OpCreateAccounts))
	assert.True(t, batchingAllowed(OpCreateTransfers))
	assert.True(t, batchingAllowed(OpLookupAccounts))
	assert.True(t, batchingAllowed(OpLookupTransfers))

	assert.False(t, batchingAllowed(OpGetAccountTransfers))
	assert.False(t, batchingAllowed(OpGetAccountBalances))
	assert.False(t, batchingAllowed(OpQueryAccounts))
	assert.False(t, batchingAllowed(OpQueryTransfers))

	assert.False(t, batchingAllowed(OperationCode(0xFF)))
}

func TestKnownOperationsSorted(t *testing.T) {
	ops := knownOperations()
	for i := 1; i < len(ops); i++ {
		assert.Less(t, ops[i-1], ops[i])
	}
	assert.Len(t, ops, 8)
}
