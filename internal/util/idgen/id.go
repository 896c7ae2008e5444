package idgen

import (
	crand "crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

// ID returns a time-ordered unique id for requests and asset versions.
func ID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SecureKey returns n bytes from the system CSPRNG. Used for cookie signing keys.
func SecureKey(n int) ([]byte, error) {
	key := make([]byte, n)
	if _, err := crand.Read(key); err != nil {
		return nil, fmt.Errorf("crypto rand: %w", err)
	}
	return key, nil
}
