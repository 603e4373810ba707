// Package hashx recognises hash formats and checks plaintexts against them
// locally. It never cracks anything; that is the cracker service's job.
package hashx

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"hash"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Type string

const (
	Unknown Type = "unknown"
	MD5     Type = "md5"
	SHA1    Type = "sha1"
	SHA256  Type = "sha256"
	Bcrypt  Type = "bcrypt"
)

var ErrUnsupported = errors.New("unsupported hash type")

// Detect guesses the algorithm of h from its length and prefix.
func Detect(h string) Type {
	h = strings.TrimSpace(h)
	if strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$") {
		return Bcrypt
	}
	if _, err := hex.DecodeString(h); err != nil {
		return Unknown
	}
	switch len(h) {
	case 32:
		return MD5
	case 40:
		return SHA1
	case 64:
		return SHA256
	}
	return Unknown
}

func newHash(t Type) (hash.Hash, bool) {
	switch t {
	case MD5:
		return md5.New(), true
	case SHA1:
		return sha1.New(), true
	case SHA256:
		return sha256.New(), true
	}
	return nil, false
}

// Digest returns the lowercase hex digest of text. Bcrypt is not supported
// since its output is salted.
func Digest(t Type, text string) (string, error) {
	h, ok := newHash(t)
	if !ok {
		return "", ErrUnsupported
	}
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify reports whether plaintext hashes to target. It returns
// ErrUnsupported when the type of target cannot be detected.
func Verify(plaintext, target string) (bool, error) {
	target = strings.TrimSpace(target)
	t := Detect(target)
	if t == Bcrypt {
		err := bcrypt.CompareHashAndPassword([]byte(target), []byte(plaintext))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	}

	got, err := Digest(t, plaintext)
	if err != nil {
		return false, err
	}
	return Equal(got, target), nil
}

// Equal compares two hex digests ignoring case and surrounding space.
func Equal(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
