package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securapass/internal/client/client"
	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/client/repositories/entries"
	"github.com/dmitrijs2005/securapass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/securapass/internal/dbx"
	"github.com/dmitrijs2005/securapass/internal/logging"
)

// EntryList is the result of EntryService.List. Stale is set when the
// entries come from the local cache because the service was unreachable.
type EntryList struct {
	Entries   []models.Entry
	Stale     bool
	FetchedAt time.Time
}

// EntryService manages password manager entries. Listings are mirrored into
// the local cache without passwords; revealed passwords are never stored.
type EntryService struct {
	client client.ManagerClient
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

func NewEntryService(c client.ManagerClient, db *sql.DB, logger logging.Logger) *EntryService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &EntryService{client: c, db: db, logger: logger, now: time.Now}
}

func (s *EntryService) List(ctx context.Context) (*EntryList, error) {
	list, err := s.client.ListEntries(ctx)
	if errors.Is(err, client.ErrUnavailable) {
		cached, cerr := s.cached(ctx)
		if cerr != nil {
			s.logger.Warn(ctx, "entry cache unavailable", "error", cerr)
			return nil, err
		}
		s.logger.Warn(ctx, "password manager unavailable, using cached entries", "fetched_at", cached.FetchedAt)
		return cached, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	fetched := s.now()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := entries.NewSQLiteRepository(tx).ReplaceAll(ctx, list, fetched); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).SetTime(ctx, metadata.KeyEntriesFetchedAt, fetched)
	})
	if err != nil {
		s.logger.Warn(ctx, "failed to refresh entry cache", "error", err)
	}

	return &EntryList{Entries: list, FetchedAt: fetched}, nil
}

// cached returns the last stored listing. A cache that was never filled is
// an error.
func (s *EntryService) cached(ctx context.Context) (*EntryList, error) {
	fetched, ok, err := metadata.NewSQLiteRepository(s.db).GetTime(ctx, metadata.KeyEntriesFetchedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, client.ErrLocalDataNotAvailable
	}

	list, err := entries.NewSQLiteRepository(s.db).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return &EntryList{Entries: list, Stale: true, FetchedAt: fetched}, nil
}

func (s *EntryService) Add(ctx context.Context, in models.EntryInput) (*models.Entry, error) {
	e, err := s.client.CreateEntry(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	if err := entries.NewSQLiteRepository(s.db).Upsert(ctx, *e, s.now()); err != nil {
		s.logger.Warn(ctx, "failed to cache entry", "id", e.ID, "error", err)
	}
	return e, nil
}

func (s *EntryService) Update(ctx context.Context, id int64, upd models.EntryUpdate) error {
	if err := s.client.UpdateEntry(ctx, id, upd); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			s.forget(ctx, id)
		}
		return fmt.Errorf("update entry: %w", err)
	}

	repo := entries.NewSQLiteRepository(s.db)
	e, err := repo.GetByID(ctx, id)
	if errors.Is(err, entries.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn(ctx, "failed to read cached entry", "id", id, "error", err)
		return nil
	}
	if upd.Website != nil {
		e.Website = *upd.Website
	}
	if upd.Username != nil {
		e.Username = *upd.Username
	}
	if err := repo.Upsert(ctx, *e, s.now()); err != nil {
		s.logger.Warn(ctx, "failed to cache entry", "id", id, "error", err)
	}
	return nil
}

// Delete removes the entry remotely and from the cache. An entry the service
// no longer knows is dropped from the cache too.
func (s *EntryService) Delete(ctx context.Context, id int64) error {
	err := s.client.DeleteEntry(ctx, id)
	if err == nil || errors.Is(err, client.ErrNotFound) {
		s.forget(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Reveal fetches the entry including its password.
func (s *EntryService) Reveal(ctx context.Context, id int64) (*models.Entry, error) {
	e, err := s.client.GetEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

func (s *EntryService) forget(ctx context.Context, id int64) {
	if err := entries.NewSQLiteRepository(s.db).DeleteByID(ctx, id); err != nil {
		s.logger.Warn(ctx, "failed to drop cached entry", "id", id, "error", err)
	}
}
