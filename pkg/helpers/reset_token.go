package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// KeyPasswordReset is the Redis key holding the user id for a reset digest.
func KeyPasswordReset(digest string) string {
	return "pwreset:" + digest
}

// GenResetToken returns a random 32-byte token (hex) and its SHA-256 digest.
// Only the digest is stored; the plain token goes to the user.
func GenResetToken() (plain, digest string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(b)
	return plain, DigestToken(plain), nil
}

func DigestToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
