package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a random v4 UUID for jobs and worker runs.
func GenerateUUID() string {
	return uuid.NewString()
}

// GenerateShortID returns the first 8 hex characters of a fresh UUID.
func GenerateShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Fingerprint hashes parts into a stable hex key. Parts are separated by a
// NUL byte so ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
