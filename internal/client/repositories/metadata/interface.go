// Package metadata stores small key/value settings of the local cache: the
// history salt and verifier, and the time of the last entry listing.
package metadata

import (
	"context"
	"time"
)

const (
	KeySalt             = "salt"
	KeyVerifier         = "verifier"
	KeyEntriesFetchedAt = "entries_fetched_at"
)

// Repository is a key/value store. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the given keys; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// GetTime reads a value written by SetTime; ok is false if absent.
	GetTime(ctx context.Context, key string) (t time.Time, ok bool, err error)
	SetTime(ctx context.Context, key string, t time.Time) error
}
