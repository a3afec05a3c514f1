package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/goliatone/go-errors"
)

// resetTokenBytes is the entropy of the reset token plaintext.
const resetTokenBytes = 32

// DefaultResetTokenDuration is how long a reset token stays valid.
const DefaultResetTokenDuration = "10m"

// NewResetToken generates the reset token plaintext and its digest.
// The plaintext is handed to the user exactly once; only the digest is
// ever stored.
func NewResetToken() (plaintext, digest string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", errors.Wrap(err, errors.CategoryInternal, "failed to generate reset token")
	}

	plaintext = hex.EncodeToString(buf)
	return plaintext, HashResetToken(plaintext), nil
}

// HashResetToken computes the stored digest of a reset token. A fast
// digest is enough here: the input carries 256 bits of entropy, unlike
// a password.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
