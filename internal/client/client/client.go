package client

import (
	"context"

	"github.com/dmitrijs2005/securapass/internal/client/models"
)

// CrackerClient covers the cracker/hash service.
type CrackerClient interface {
	// StartCrackJob submits a crack job and returns its id. Either
	// req.TargetHash or req.UseSamples must be set.
	StartCrackJob(ctx context.Context, req models.CrackRequest) (string, error)
	// GetJobStatus fetches the current state of any job.
	GetJobStatus(ctx context.Context, jobID string) (*models.Job, error)
	// RunCrackSync cracks req.TargetHash and blocks until the result is known.
	RunCrackSync(ctx context.Context, req models.CrackRequest) (*models.CrackResult, error)
	StartHashJob(ctx context.Context, req models.HashRequest) (string, error)
	RunHashSync(ctx context.Context, req models.HashRequest) (*models.HashResult, error)
}

// ManagerClient covers the password manager service.
type ManagerClient interface {
	Health(ctx context.Context) error
	VerifyMaster(ctx context.Context, password []byte) (bool, error)
	// ListEntries returns all entries without passwords.
	ListEntries(ctx context.Context) ([]models.Entry, error)
	CreateEntry(ctx context.Context, in models.EntryInput) (*models.Entry, error)
	UpdateEntry(ctx context.Context, id int64, upd models.EntryUpdate) error
	DeleteEntry(ctx context.Context, id int64) error
	// GetEntry is the only call that returns the plaintext password.
	GetEntry(ctx context.Context, id int64) (*models.Entry, error)
}

type Client interface {
	CrackerClient
	ManagerClient
}
