// Package cryptox holds the key derivation and sealing used for the local
// job history.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/securapass/internal/common"
)

var ErrKeySize = errors.New("key must be 16, 24 or 32 bytes")

// MakeVerifier returns the value stored locally to check a master key
// without keeping the key itself.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveMasterKey stretches password with argon2id into a 32-byte key.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM under key and a fresh random nonce.
func Seal(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open reverses Seal. It fails if the key is wrong or the data was altered.
func Open(ciphertext, nonce, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, errors.New("invalid nonce size")
	}
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}
