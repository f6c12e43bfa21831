package fair

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// ServerSeedBytes is the entropy of a server seed (256 bits, 64 hex chars on the wire).
const ServerSeedBytes = 32

// DefaultClientSeed is used when the player does not supply a seed of their own.
const DefaultClientSeed = "default"

// NewServerSeed generates a fresh server seed from crypto/rand.
// A seed is generated once per round and never reused.
func NewServerSeed() (string, error) {
	b := make([]byte, ServerSeedBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Commitment returns the SHA256 hash of the server seed. The commitment is
// shown to the player at round start; the seed itself stays secret until the
// round finishes.
func Commitment(serverSeed string) string {
	h := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(h[:])
}
