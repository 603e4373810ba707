package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securapass/internal/client/client"
	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/client/poller"
	"github.com/dmitrijs2005/securapass/internal/hashx"
	"github.com/dmitrijs2005/securapass/internal/logging"
)

// HashOutcome is the result of a hash run. Mismatch is set when the digest
// returned by the service differs from the locally computed MD5.
type HashOutcome struct {
	JobID    string
	State    poller.State
	Result   *models.HashResult
	Local    string
	Mismatch bool
	Err      error
}

type HashService struct {
	client  client.CrackerClient
	poller  *poller.Poller
	history *HistoryService
	logger  logging.Logger
}

// NewHashService wires the hash flow. history may be nil.
func NewHashService(c client.CrackerClient, p *poller.Poller, history *HistoryService, logger logging.Logger) *HashService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &HashService{client: c, poller: p, history: history, logger: logger}
}

// Run hashes req.Text on the blocking endpoint.
func (s *HashService) Run(ctx context.Context, req models.HashRequest) (*HashOutcome, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("%w: text required", client.ErrInvalidInput)
	}
	local := localDigest(req.Text)
	recID := s.history.begin(ctx, models.JobKindHash, "", local)

	res, err := s.client.RunHashSync(ctx, req)
	if err != nil {
		s.history.end(ctx, recID, poller.Errored, err, nil)
		return nil, fmt.Errorf("hash: %w", err)
	}
	s.history.end(ctx, recID, poller.Completed, nil, res)

	return s.check(ctx, &HashOutcome{State: poller.Completed, Result: res, Local: local}), nil
}

// Start submits a hash job and polls it in the background.
func (s *HashService) Start(ctx context.Context, req models.HashRequest, notify func(*HashOutcome), opts ...poller.StartOption) (*poller.Handle, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("%w: text required", client.ErrInvalidInput)
	}
	local := localDigest(req.Text)

	var recID string
	start := func(ctx context.Context) (string, error) {
		jobID, err := s.client.StartHashJob(ctx, req)
		if err != nil {
			return "", err
		}
		recID = s.history.begin(ctx, models.JobKindHash, jobID, local)
		return jobID, nil
	}

	hookCtx := context.WithoutCancel(ctx)
	done := poller.WithDone(func(o poller.Outcome) {
		out := s.complete(hookCtx, recID, local, o)
		if notify != nil {
			notify(out)
		}
	})

	h, err := s.poller.Submit(ctx, start, append([]poller.StartOption{done}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("start hash job: %w", err)
	}
	s.logger.Info(ctx, "hash job started", "job_id", h.JobID(), "append", req.Append)
	return h, nil
}

func (s *HashService) complete(ctx context.Context, recID, local string, o poller.Outcome) *HashOutcome {
	out := &HashOutcome{JobID: o.JobID, State: o.State, Local: local, Err: o.Err}
	if o.State != poller.Completed {
		s.history.end(ctx, recID, o.State, o.Err, nil)
		return out
	}

	var res models.HashResult
	err := o.Decode(&res)
	if err == nil && res.Hash == "" {
		err = errors.New("empty hash")
	}
	if err != nil {
		out.State, out.Err = poller.Errored, fmt.Errorf("%w: %v", client.ErrUnexpectedResponse, err)
		s.history.end(ctx, recID, out.State, out.Err, nil)
		return out
	}
	out.Result = &res
	s.history.end(ctx, recID, poller.Completed, nil, res)
	return s.check(ctx, out)
}

func (s *HashService) check(ctx context.Context, out *HashOutcome) *HashOutcome {
	if out.Result != nil && !hashx.Equal(out.Result.Hash, out.Local) {
		out.Mismatch = true
		s.logger.Warn(ctx, "remote digest differs from local MD5",
			"remote", out.Result.Hash, "local", out.Local)
	}
	return out
}

func localDigest(text string) string {
	d, _ := hashx.Digest(hashx.MD5, text)
	return d
}
