package clustermux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientIDNonZero(t *testing.T) {
	id, err := newClientID()
	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, id)
}

func TestNewClientIDDistinct(t *testing.T) {
	a, err := newClientID()
	require.NoError(t, err)
	b, err := newClientID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
