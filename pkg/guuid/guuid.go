// Package guuid provides a Go-native Unique Universal Identifier
// implementation used to tag every sender/receiver session with a stable
// correlation ID for log lines. It never appears on the wire; it exists
// purely so the log lines of one transfer can be grepped out of a busy
// server's output.
package guuid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GUUID is a 16-byte session correlation identifier.
type GUUID [16]byte

// New generates a new GUUID using crypto/rand for high entropy.
func New() (GUUID, error) {
	var g GUUID
	_, err := rand.Read(g[:])
	if err != nil {
		return GUUID{}, fmt.Errorf("failed to generate GUUID: %w", err)
	}
	return g, nil
}

// String returns the hex string representation of the GUUID.
func (g GUUID) String() string {
	return hex.EncodeToString(g[:])
}
