package clustermux

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddressesCommaSeparated(t *testing.T) {
	got, err := parseAddresses("127.0.0.1:3000,127.0.0.1:3001")
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1:3000", "127.0.0.1:3001"}, got)
}

func TestParseAddressesWhitespaceSeparated(t *testing.T) {
	got, err := parseAddresses("127.0.0.1:3000 127.0.0.1:3001\t127.0.0.1:3002")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestParseAddressesEmpty(t *testing.T) {
	_, err := parseAddresses("")
	assert.ErrorIs(t, err, ErrAddressInvalid)
}

func TestParseAddressesMalformed(t *testing.T) {
	_, err := parseAddresses("not-a-host-port")
	assert.ErrorIs(t, err, ErrAddressInvalid)
}

func TestParseAddressesLimitExceeded(t *testing.T) {
	addrs := make([]string, MaxReplicas+1)
	for i := range addrs {
		addrs[i] = "127.0.0.1:3000"
	}
	_, err := parseAddresses(strings.Join(addrs, ","))
	assert.ErrorIs(t, err, ErrAddressLimitExceeded)
}

func TestParseAddressesAtLimit(t *testing.T) {
	addrs := make([]string, MaxReplicas)
	for i := range addrs {
		addrs[i] = "127.0.0.1:3000"
	}
	got, err := parseAddresses(strings.Join(addrs, ","))
	require.NoError(t, err)
	assert.Len(t, got, MaxReplicas)
}

func TestParseAddressesWrapsSentinel(t *testing.T) {
	_, err := parseAddresses("")
	var target error = ErrAddressInvalid
	assert.True(t, errors.Is(err, target))
}
