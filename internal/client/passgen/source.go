package passgen

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Source yields uniform integers in [0, n). n is always positive.
type Source interface {
	IntN(n int) int
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

func (CryptoSource) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic("passgen: crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

// SeededSource returns a deterministic Source, for tests and reproducible runs.
func SeededSource(seed uint64) Source {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
