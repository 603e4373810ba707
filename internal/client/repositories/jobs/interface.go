package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/securapass/internal/client/models"
)

var ErrNotFound = errors.New("job record not found")

type Repository interface {
	Insert(ctx context.Context, rec *models.JobRecord) error

	// Finish stores the final state of a record. result and nonce may be nil.
	Finish(ctx context.Context, id, state, errText string, result, nonce []byte, finishedAt time.Time) error

	GetByID(ctx context.Context, id string) (*models.JobRecord, error)

	// List returns the newest records first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.JobRecord, error)

	// Prune deletes all but the newest keep records and returns how many
	// were removed.
	Prune(ctx context.Context, keep int) (int64, error)
}
