package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return NewSQLiteRepository(db), db
}

func TestRepository_SaltRoundTrip(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	v, err := r.Get(ctx, KeySalt)
	require.NoError(t, err)
	assert.Nil(t, v, "missing key reads as nil")

	salt := []byte{0x00, 0xff, 0x10, 0x00}
	require.NoError(t, r.Set(ctx, KeySalt, salt))

	v, err = r.Get(ctx, KeySalt)
	require.NoError(t, err)
	assert.Equal(t, salt, v)

	require.NoError(t, r.Set(ctx, KeySalt, []byte("rotated")))
	v, err = r.Get(ctx, KeySalt)
	require.NoError(t, err)
	assert.Equal(t, []byte("rotated"), v)
}

func TestRepository_SetNilStoresEmpty(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyVerifier, nil))
	v, err := r.Get(ctx, KeyVerifier)
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Empty(t, v)
}

func TestRepository_Delete(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeySalt, []byte("s")))
	require.NoError(t, r.Set(ctx, KeyVerifier, []byte("v")))
	require.NoError(t, r.SetTime(ctx, KeyEntriesFetchedAt, time.Now()))

	require.NoError(t, r.Delete(ctx, KeySalt, KeyVerifier, "never-set"))
	require.NoError(t, r.Delete(ctx))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	assert.Equal(t, 1, n)

	_, ok, err := r.GetTime(ctx, KeyEntriesFetchedAt)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepository_Time(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	_, ok, err := r.GetTime(ctx, KeyEntriesFetchedAt)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 5, 1, 12, 30, 0, 123_456_789, time.UTC)
	require.NoError(t, r.SetTime(ctx, KeyEntriesFetchedAt, at))

	got, ok, err := r.GetTime(ctx, KeyEntriesFetchedAt)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(at.Truncate(time.Millisecond)))
}

func TestRepository_TimeCorrupt(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyEntriesFetchedAt, []byte("yesterday")))
	_, ok, err := r.GetTime(ctx, KeyEntriesFetchedAt)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), KeyEntriesFetchedAt)
}

func TestRepository_ErrorsWrapped(t *testing.T) {
	r, db := newRepo(t)
	require.NoError(t, db.Close())
	ctx := context.Background()

	_, err := r.Get(ctx, KeySalt)
	require.ErrorContains(t, err, `read setting "salt"`)
	require.ErrorContains(t, r.Set(ctx, KeySalt, []byte("x")), `write setting "salt"`)
	require.ErrorContains(t, r.Delete(ctx, KeySalt), "delete settings")
}
