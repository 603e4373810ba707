package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	return n
}

func insert(ctx context.Context, tx DBTX, k string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO kv (k, v) VALUES (?, 'x')`, k)
	return err
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if err := insert(ctx, tx, "salt"); err != nil {
			return err
		}
		return insert(ctx, tx, "verifier")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, countRows(t, db))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insert(ctx, tx, "salt"))
		// duplicate key
		return insert(ctx, tx, "salt")
	})
	require.Error(t, err)
	assert.Zero(t, countRows(t, db), "the first insert is rolled back too")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	require.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, insert(ctx, tx, "salt"))
			panic("kaput")
		})
	})
	assert.Zero(t, countRows(t, db))
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

func TestWithTxValue(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	n, err := WithTxValue(ctx, db, nil, func(ctx context.Context, tx DBTX) (int, error) {
		if err := insert(ctx, tx, "a"); err != nil {
			return 0, err
		}
		var n int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv`).Scan(&n)
		return n, err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	boom := errors.New("boom")
	s, err := WithTxValue(ctx, db, nil, func(ctx context.Context, tx DBTX) (string, error) {
		require.NoError(t, insert(ctx, tx, "b"))
		return "discarded", boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, s)
	assert.Equal(t, 1, countRows(t, db))
}
