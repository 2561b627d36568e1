package calendar

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashICS fingerprints the exact ICS bytes. It detects changes; it is not an
// authenticity check.
func HashICS(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
