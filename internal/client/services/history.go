package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/securapass/internal/client/client"
	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/client/poller"
	"github.com/dmitrijs2005/securapass/internal/client/repositories/jobs"
	"github.com/dmitrijs2005/securapass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/securapass/internal/common"
	"github.com/dmitrijs2005/securapass/internal/cryptox"
	"github.com/dmitrijs2005/securapass/internal/dbx"
	"github.com/dmitrijs2005/securapass/internal/logging"
)

// HistoryKeep is how many job records survive pruning.
const HistoryKeep = 200

const saltSize = 32

var (
	// ErrLocked is returned when sealed history is read before Unlock.
	ErrLocked = errors.New("history is locked")
	// ErrNoResult is returned for records without a stored result.
	ErrNoResult = errors.New("no stored result")
)

// HistoryService keeps a local record of submitted jobs. Results are sealed
// with a key derived from the master password and are only stored while the
// history is unlocked.
type HistoryService struct {
	client client.ManagerClient
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time

	mu  sync.Mutex
	key []byte
}

func NewHistoryService(c client.ManagerClient, db *sql.DB, logger logging.Logger) *HistoryService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &HistoryService{client: c, db: db, logger: logger, now: time.Now}
}

// Unlock checks the master password and keeps the derived key in memory.
// The password manager is asked first; when it is unavailable the locally
// stored verifier is used instead.
func (h *HistoryService) Unlock(ctx context.Context, password []byte) error {
	ok, err := h.client.VerifyMaster(ctx, password)
	switch {
	case errors.Is(err, client.ErrUnavailable):
		h.logger.Warn(ctx, "password manager unavailable, verifying offline")
		return h.unlockOffline(ctx, password)
	case err != nil:
		return fmt.Errorf("verify master password: %w", err)
	case !ok:
		return client.ErrUnauthorized
	}

	key, err := h.saveVerifier(ctx, password)
	if err != nil {
		return fmt.Errorf("offline data saving error: %w", err)
	}
	h.setKey(key)
	return nil
}

func (h *HistoryService) unlockOffline(ctx context.Context, password []byte) error {
	repo := metadata.NewSQLiteRepository(h.db)

	salt, err := repo.Get(ctx, metadata.KeySalt)
	if err != nil {
		return err
	}
	verifier, err := repo.Get(ctx, metadata.KeyVerifier)
	if err != nil {
		return err
	}
	if salt == nil || verifier == nil {
		return client.ErrLocalDataNotAvailable
	}

	key := cryptox.DeriveMasterKey(password, salt)
	if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(key)) == 0 {
		return client.ErrUnauthorized
	}
	h.setKey(key)
	return nil
}

// saveVerifier derives the key with the stored salt, creating the salt on
// first use, and stores the matching verifier.
func (h *HistoryService) saveVerifier(ctx context.Context, password []byte) ([]byte, error) {
	return dbx.WithTxValue(ctx, h.db, nil, func(ctx context.Context, tx dbx.DBTX) ([]byte, error) {
		repo := metadata.NewSQLiteRepository(tx)

		salt, err := repo.Get(ctx, metadata.KeySalt)
		if err != nil {
			return nil, err
		}
		if salt == nil {
			salt = common.GenerateRandByteArray(saltSize)
			if err := repo.Set(ctx, metadata.KeySalt, salt); err != nil {
				return nil, err
			}
		}

		key := cryptox.DeriveMasterKey(password, salt)
		if err := repo.Set(ctx, metadata.KeyVerifier, cryptox.MakeVerifier(key)); err != nil {
			return nil, err
		}
		return key, nil
	})
}

func (h *HistoryService) setKey(key []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	common.WipeByteArray(h.key)
	h.key = key
}

// Lock forgets the key.
func (h *HistoryService) Lock() {
	h.setKey(nil)
}

func (h *HistoryService) Locked() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.key == nil
}

func (h *HistoryService) currentKey() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.key == nil {
		return nil
	}
	return append([]byte(nil), h.key...)
}

// Record stores a new submitted job and prunes old records.
func (h *HistoryService) Record(ctx context.Context, kind models.JobKind, remoteID, subject string) (*models.JobRecord, error) {
	rec := &models.JobRecord{
		ID:          uuid.NewString(),
		RemoteID:    remoteID,
		Kind:        kind,
		Subject:     subject,
		State:       poller.Submitted.String(),
		SubmittedAt: h.now(),
	}

	repo := jobs.NewSQLiteRepository(h.db)
	if err := repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("record job: %w", err)
	}
	if n, err := repo.Prune(ctx, HistoryKeep); err != nil {
		h.logger.Warn(ctx, "history prune failed", "error", err)
	} else if n > 0 {
		h.logger.Debug(ctx, "history pruned", "removed", n)
	}
	return rec, nil
}

// Finish stores the final state of a record. result is sealed when the
// history is unlocked and dropped otherwise.
func (h *HistoryService) Finish(ctx context.Context, id, state string, jobErr error, result any) error {
	var errText string
	if jobErr != nil {
		errText = jobErr.Error()
	}

	var sealed, nonce []byte
	if key := h.currentKey(); key != nil && result != nil {
		plain, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		sealed, nonce, err = cryptox.Seal(plain, key)
		if err != nil {
			return fmt.Errorf("encryption error: %w", err)
		}
	}

	repo := jobs.NewSQLiteRepository(h.db)
	if err := repo.Finish(ctx, id, state, errText, sealed, nonce, h.now()); err != nil {
		return fmt.Errorf("finish job record: %w", err)
	}
	return nil
}

// List returns the newest records first.
func (h *HistoryService) List(ctx context.Context, limit int) ([]models.JobRecord, error) {
	return jobs.NewSQLiteRepository(h.db).List(ctx, limit)
}

// Get returns one record; jobs.ErrNotFound when it does not exist.
func (h *HistoryService) Get(ctx context.Context, id string) (*models.JobRecord, error) {
	return jobs.NewSQLiteRepository(h.db).GetByID(ctx, id)
}

// Result opens the sealed result of record id into v.
func (h *HistoryService) Result(ctx context.Context, id string, v any) error {
	key := h.currentKey()
	if key == nil {
		return ErrLocked
	}

	rec, err := jobs.NewSQLiteRepository(h.db).GetByID(ctx, id)
	if err != nil {
		return err
	}
	if len(rec.Result) == 0 {
		return ErrNoResult
	}

	plain, err := cryptox.Open(rec.Result, rec.Nonce, key)
	if err != nil {
		return fmt.Errorf("error decrypting result: %w", err)
	}
	return json.Unmarshal(plain, v)
}

// Clear wipes the history and the offline verifier.
func (h *HistoryService) Clear(ctx context.Context) error {
	h.Lock()
	return dbx.WithTx(ctx, h.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := jobs.NewSQLiteRepository(tx).Prune(ctx, 0); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).Delete(ctx, metadata.KeySalt, metadata.KeyVerifier)
	})
}

// begin records a job for a service and returns the record id. It returns ""
// when h is nil or recording failed; failures are only logged.
func (h *HistoryService) begin(ctx context.Context, kind models.JobKind, jobID, subject string) string {
	if h == nil {
		return ""
	}
	rec, err := h.Record(ctx, kind, jobID, subject)
	if err != nil {
		h.logger.Warn(ctx, "failed to record job", "kind", string(kind), "job_id", jobID, "error", err)
		return ""
	}
	return rec.ID
}

// end is the counterpart of begin.
func (h *HistoryService) end(ctx context.Context, recID string, state poller.State, jobErr error, result any) {
	if h == nil || recID == "" {
		return
	}
	if err := h.Finish(ctx, recID, state.String(), jobErr, result); err != nil {
		h.logger.Warn(ctx, "failed to update job history", "record", recID, "error", err)
	}
}
