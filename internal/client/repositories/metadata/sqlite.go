package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/securapass/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read setting %q: %w", key, err)
	}
	if value == nil {
		// the driver scans an empty blob as nil
		value = []byte{}
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := `DELETE FROM metadata WHERE key IN (?` + strings.Repeat(`, ?`, len(keys)-1) + `)`
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete settings %v: %w", keys, err)
	}
	return nil
}

// Times are stored as decimal unix milliseconds.

func (r *SQLiteRepository) GetTime(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := r.Get(ctx, key)
	if err != nil || raw == nil {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("setting %q is not a timestamp: %w", key, err)
	}
	return time.UnixMilli(ms), true, nil
}

func (r *SQLiteRepository) SetTime(ctx context.Context, key string, t time.Time) error {
	return r.Set(ctx, key, []byte(strconv.FormatInt(t.UnixMilli(), 10)))
}
