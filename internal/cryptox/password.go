package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32
)

var ErrMalformedHash = errors.New("malformed password hash")

// DeriveKey stretches password with argon2id using the given salt.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// NewSalt returns a fresh random salt suitable for DeriveKey.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword returns hex encoded salt and derived key for storage.
func HashPassword(password string) (hash string, salt string) {
	s := NewSalt()
	return hex.EncodeToString(DeriveKey([]byte(password), s)), hex.EncodeToString(s)
}

// VerifyPassword reports whether password matches the stored hash and salt.
// The comparison runs in constant time.
func VerifyPassword(password, hash, salt string) (bool, error) {
	s, err := hex.DecodeString(salt)
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	want, err := hex.DecodeString(hash)
	if err != nil {
		return false, fmt.Errorf("%w: hash: %v", ErrMalformedHash, err)
	}
	got := DeriveKey([]byte(password), s)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
