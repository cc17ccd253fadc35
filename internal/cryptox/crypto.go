// Package cryptox holds the credential-hashing primitives: a slow salted
// hash for storing secrets, a deterministic keyed fingerprint used as a
// lookup index for API keys, and raw secret generation.
package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashSecret hashes a password or raw API key with bcrypt. The salt is
// generated internally and embedded in the digest.
func HashSecret(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifySecret reports whether secret matches the bcrypt digest. A malformed
// digest yields false, never an error.
func VerifySecret(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// Fingerprint computes a deterministic HMAC-SHA256 of the secret under the
// given key, hex encoded. Unlike the bcrypt digest it is stable across
// calls, so it can serve as a unique store index for "find key by secret"
// lookups. The bcrypt digest stays authoritative for verification.
func Fingerprint(secret string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewRawSecret generates a random 32-character lowercase hex secret for a
// new API key. The value exists in plaintext only until the create response
// is returned to the caller.
func NewRawSecret() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
