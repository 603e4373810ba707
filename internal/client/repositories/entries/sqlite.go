package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const upsertQuery = `INSERT INTO entries (id, website, username, created_at, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET website = excluded.website,
			username = excluded.username,
			created_at = excluded.created_at,
			fetched_at = excluded.fetched_at`

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, list []models.Entry, fetchedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	for _, e := range list {
		if err := r.Upsert(ctx, e, fetchedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e models.Entry, fetchedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, upsertQuery, e.ID, e.Website, e.Username, e.CreatedAt, fetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert entry %d: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Entry, error) {
	query := `SELECT id, website, username, created_at FROM entries ORDER BY website, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.Website, &e.Username, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Entry, error) {
	query := `SELECT id, website, username, created_at FROM entries WHERE id = ?`

	e := &models.Entry{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Website, &e.Username, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}
	return nil
}
