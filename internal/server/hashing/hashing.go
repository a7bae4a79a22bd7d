// Package hashing derives and verifies salted password hashes using
// PBKDF2-SHA256.
package hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 iteration count applied to every password.
	Iterations = 10000
	// KeyLength is the derived hash size in bytes.
	KeyLength = 32
	// SaltLength is the random per-user salt size in bytes.
	SaltLength = 32
)

// Hash generates a random salt and derives a hash from the password.
// Both values are returned for storage. Empty passwords are not rejected
// here; field presence is validated upstream.
func Hash(password string) (hash, salt []byte, err error) {
	salt = make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}

	hash = pbkdf2.Key([]byte(password), salt, Iterations, KeyLength, sha256.New)
	return hash, salt, nil
}

// Verify re-derives the hash from the password and the stored salt and
// compares it to the expected value in constant time. A length mismatch
// is reported as a plain mismatch.
func Verify(password string, salt, expected []byte) bool {
	candidate := pbkdf2.Key([]byte(password), salt, Iterations, KeyLength, sha256.New)
	return subtle.ConstantTimeCompare(candidate, expected) == 1
}
