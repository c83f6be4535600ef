// Package password owns the credential digest formats. New digests are
// always bcrypt; verification additionally accepts legacy records that
// predate hashing and still hold the raw password. The two formats are told
// apart by bcrypt's self-describing "$2" prefix, so nothing besides this
// package needs to know a legacy format exists.
package password

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt digests start with $2a$, $2b$ or $2y$ depending on the
// implementation that produced them.
const bcryptPrefix = "$2"

var ErrEmptyPassword = errors.New("password must not be empty")

// Hash produces a bcrypt digest for the given plaintext.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plaintext matches the stored digest. Bcrypt digests
// are compared through bcrypt; legacy plaintext records match only on exact
// equality. Legacy support exists for migration-era records and goes away
// once those records have been rewritten with a hashed password.
func Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	if IsHashed(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(plaintext), []byte(digest)) == 1
}

// IsHashed reports whether the digest is in the bcrypt format.
func IsHashed(digest string) bool {
	return strings.HasPrefix(digest, bcryptPrefix)
}
