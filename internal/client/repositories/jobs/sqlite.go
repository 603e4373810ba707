package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const columns = `id, remote_id, kind, subject, state, error, result, nonce, submitted_at, finished_at`

func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.JobRecord) error {
	query := `INSERT INTO jobs (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var finished sql.NullInt64
	if rec.FinishedAt != nil {
		finished = sql.NullInt64{Int64: rec.FinishedAt.UnixMilli(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.RemoteID, string(rec.Kind), rec.Subject, rec.State, rec.Error,
		rec.Result, rec.Nonce, rec.SubmittedAt.UnixMilli(), finished)
	if err != nil {
		return fmt.Errorf("failed to insert job %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Finish(ctx context.Context, id, state, errText string, result, nonce []byte, finishedAt time.Time) error {
	query := `UPDATE jobs SET state = ?, error = ?, result = ?, nonce = ?, finished_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, state, errText, result, nonce, finishedAt.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to finish job %s: %w", id, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.JobRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM jobs WHERE id = ?`, id)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.JobRecord, error) {
	query := `SELECT ` + columns + ` FROM jobs ORDER BY submitted_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select jobs: %w", err)
	}
	defer rows.Close()

	var result []models.JobRecord
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	query := `DELETE FROM jobs WHERE id NOT IN (
		SELECT id FROM jobs ORDER BY submitted_at DESC, id LIMIT ?)`
	res, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune jobs: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.JobRecord, error) {
	var (
		rec       models.JobRecord
		kind      string
		submitted int64
		finished  sql.NullInt64
	)
	err := s.Scan(&rec.ID, &rec.RemoteID, &kind, &rec.Subject, &rec.State, &rec.Error,
		&rec.Result, &rec.Nonce, &submitted, &finished)
	if err != nil {
		return nil, err
	}

	rec.Kind = models.JobKind(kind)
	rec.SubmittedAt = time.UnixMilli(submitted)
	if finished.Valid {
		t := time.UnixMilli(finished.Int64)
		rec.FinishedAt = &t
	}
	return &rec, nil
}
