package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// StatusKey derives a deterministic key for the document rendered from the
// named probes. Different probe selections never share a key.
// Format: <scope>:<hash> where hash is the first 16 hex characters of
// SHA-256 over the NUL-separated names.
func StatusKey(scope string, names []string) string {
	h := sha256.New()
	for _, n := range names {
		h.Write([]byte(n))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return scope + ":" + hex.EncodeToString(sum[:8])
}
