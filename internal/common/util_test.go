package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandByteArray(t *testing.T) {
	a := GenerateRandByteArray(32)
	b := GenerateRandByteArray(32)

	assert.Len(t, a, 32)
	assert.Len(t, b, 32)
	assert.NotEqual(t, a, b)
	assert.Empty(t, GenerateRandByteArray(0))
}

func TestWipeByteArray(t *testing.T) {
	key := []byte("master-key-bytes")
	WipeByteArray(key)
	assert.Equal(t, make([]byte, 16), key)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
