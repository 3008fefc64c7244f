package clustermux

import (
	"crypto/rand"
	"fmt"
)

// newClientID draws a nonzero random 128-bit client id (spec.md §4.7 init
// step (b)). crypto/rand is used directly rather than a third-party UUID
// library: the corpus's only UUID dependency (google/uuid, in the
// ADKA2006-Vibranium_Quadsquad example) is not carried by the chosen
// teacher, and a bare 128-bit random value — not a structured UUID with
// version/variant bits — is exactly what the wire protocol needs here, so
// pulling in a UUID library would add a format the client never uses.
func newClientID() ([16]byte, error) {
	var id [16]byte
	for {
		if _, err := rand.Read(id[:]); err != nil {
			return id, fmt.Errorf("%w: %v", ErrSystemResources, err)
		}
		if id != [16]byte{} {
			return id, nil
		}
	}
}
