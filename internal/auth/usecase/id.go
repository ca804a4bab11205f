package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// sessionIDBytes is the entropy of a session identifier. 32 bytes = 256 bits,
// rendered as 64 hex characters. The identifier carries no structure; its
// security rests entirely on unguessability.
const sessionIDBytes = 32

// generateSessionID returns a new opaque session identifier from the
// cryptographically secure random source. It is never derived from user data,
// timestamps, or any other predictable input.
func generateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
