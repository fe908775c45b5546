// internal/engine/commitment.go
//
// Commit-reveal primitive. The answer is fixed before any guess is seen by
// storing only SHA-256(answer); the plaintext is materialized only after a
// successful Verify. Verification uses a constant-time comparison.

package engine

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Commitment is a SHA-256 digest binding the puzzle creator to an answer
// without revealing it.
type Commitment [sha256.Size]byte

// Seal computes the commitment for an answer.
func Seal(answer []byte) Commitment {
	return sha256.Sum256(answer)
}

// Verify reports whether answer hashes to this commitment.
func (c Commitment) Verify(answer []byte) bool {
	digest := sha256.Sum256(answer)
	return subtle.ConstantTimeCompare(digest[:], c[:]) == 1
}

// String renders the commitment as lowercase hex.
func (c Commitment) String() string {
	return hex.EncodeToString(c[:])
}

// ParseCommitment decodes a 64-char hex string into a Commitment.
func ParseCommitment(s string) (Commitment, error) {
	var c Commitment
	b, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("parse commitment: %w", err)
	}
	if len(b) != sha256.Size {
		return c, fmt.Errorf("parse commitment: want %d bytes, got %d", sha256.Size, len(b))
	}
	copy(c[:], b)
	return c, nil
}
