package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/securapass/internal/client/client"
	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/client/poller"
	"github.com/dmitrijs2005/securapass/internal/client/reports"
	"github.com/dmitrijs2005/securapass/internal/logging"
)

// CrackOutcome is what a finished crack run produced. For a job that did not
// complete only JobID, State and Err are set.
type CrackOutcome struct {
	JobID  string
	State  poller.State
	Result *models.CrackResult
	Report *reports.Report
	Saved  reports.Saved
	// ReportErr is set when the report could not be written or uploaded.
	ReportErr error
	Err       error
}

type CrackService struct {
	client  client.CrackerClient
	poller  *poller.Poller
	history *HistoryService
	reports *reports.Writer
	logger  logging.Logger
	now     func() time.Time
}

// NewCrackService wires the crack flow. history and writer may be nil.
func NewCrackService(c client.CrackerClient, p *poller.Poller, history *HistoryService, writer *reports.Writer, logger logging.Logger) *CrackService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &CrackService{client: c, poller: p, history: history, reports: writer, logger: logger, now: time.Now}
}

// Run cracks req.TargetHash on the blocking endpoint.
func (s *CrackService) Run(ctx context.Context, req models.CrackRequest) (*CrackOutcome, error) {
	req.TargetHash = strings.TrimSpace(req.TargetHash)
	if req.TargetHash == "" {
		return nil, fmt.Errorf("%w: target hash required", client.ErrInvalidInput)
	}

	recID := s.history.begin(ctx, models.JobKindCrack, "", crackSubject(req))

	res, err := s.client.RunCrackSync(ctx, req)
	if err != nil {
		s.history.end(ctx, recID, poller.Errored, err, nil)
		return nil, fmt.Errorf("crack: %w", err)
	}
	s.history.end(ctx, recID, poller.Completed, nil, res)

	out := &CrackOutcome{State: poller.Completed, Result: res}
	s.writeReport(ctx, out, req.TargetHash)
	return out, nil
}

// Start submits a crack job and polls it in the background. notify, when
// set, receives the outcome after history and report have been written.
func (s *CrackService) Start(ctx context.Context, req models.CrackRequest, notify func(*CrackOutcome), opts ...poller.StartOption) (*poller.Handle, error) {
	req.TargetHash = strings.TrimSpace(req.TargetHash)

	var recID string
	start := func(ctx context.Context) (string, error) {
		jobID, err := s.client.StartCrackJob(ctx, req)
		if err != nil {
			return "", err
		}
		recID = s.history.begin(ctx, models.JobKindCrack, jobID, crackSubject(req))
		return jobID, nil
	}

	// the hook outlives a cancelled ctx so that aborted jobs are recorded
	hookCtx := context.WithoutCancel(ctx)
	done := poller.WithDone(func(o poller.Outcome) {
		out := s.complete(hookCtx, recID, req, o)
		if notify != nil {
			notify(out)
		}
	})

	h, err := s.poller.Submit(ctx, start, append([]poller.StartOption{done}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("start crack job: %w", err)
	}
	s.logger.Info(ctx, "crack job started", "job_id", h.JobID(), "samples", req.UseSamples)
	return h, nil
}

func (s *CrackService) complete(ctx context.Context, recID string, req models.CrackRequest, o poller.Outcome) *CrackOutcome {
	out := &CrackOutcome{JobID: o.JobID, State: o.State, Err: o.Err}
	if o.State != poller.Completed {
		s.history.end(ctx, recID, o.State, o.Err, nil)
		return out
	}

	var res models.CrackResult
	if err := o.Decode(&res); err != nil {
		out.State, out.Err = poller.Errored, fmt.Errorf("%w: %v", client.ErrUnexpectedResponse, err)
		s.history.end(ctx, recID, out.State, out.Err, nil)
		return out
	}
	out.Result = &res
	s.history.end(ctx, recID, poller.Completed, nil, res)
	s.writeReport(ctx, out, req.TargetHash)
	return out
}

func (s *CrackService) writeReport(ctx context.Context, out *CrackOutcome, target string) {
	rep := reports.FromCrack(out.JobID, target, *out.Result, s.now())
	out.Report = &rep
	if s.reports == nil {
		return
	}
	out.Saved, out.ReportErr = s.reports.Save(ctx, rep)
}

func crackSubject(req models.CrackRequest) string {
	if req.UseSamples {
		return "samples"
	}
	return req.TargetHash
}
