package entries

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/securapass/internal/client/models"
)

var ErrNotFound = errors.New("entry not cached")

// Repository describes the local entry cache.
type Repository interface {
	// ReplaceAll drops every cached row and stores list instead.
	ReplaceAll(ctx context.Context, list []models.Entry, fetchedAt time.Time) error

	// Upsert stores or refreshes a single entry.
	Upsert(ctx context.Context, e models.Entry, fetchedAt time.Time) error

	// GetAll returns the cached entries ordered by website, then id.
	GetAll(ctx context.Context) ([]models.Entry, error)

	// GetByID returns ErrNotFound when id is not cached.
	GetByID(ctx context.Context, id int64) (*models.Entry, error)

	// DeleteByID removes id from the cache. A missing row is not an error.
	DeleteByID(ctx context.Context, id int64) error
}
