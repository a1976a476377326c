// Package hash provides the one-way password digest used by the user store.
package hash

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Sha3Hasher produces deterministic SHA3-256 hex digests.
// Credential login matches login and digest in a single store query, so the
// digest for a given plaintext must always be the same.
type Sha3Hasher struct{}

// NewSha3Hasher creates a new Sha3Hasher.
func NewSha3Hasher() *Sha3Hasher {
	return &Sha3Hasher{}
}

// Hash returns the SHA3-256 digest of the plaintext as a hex string.
func (h *Sha3Hasher) Hash(plaintext string) string {
	sum := sha3.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
