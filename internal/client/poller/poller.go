package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/logging"
)

const DefaultInterval = time.Second

// StatusGetter is the part of the backend client the poller needs.
type StatusGetter interface {
	GetJobStatus(ctx context.Context, jobID string) (*models.Job, error)
}

type Options struct {
	// Interval between status requests; DefaultInterval when zero.
	Interval time.Duration
	// MaxAttempts bounds the number of status requests; 0 means no bound.
	MaxAttempts int
	// Deadline bounds the total polling time; 0 means no bound.
	Deadline time.Duration
	// OnUpdate observes every status returned by the service.
	OnUpdate func(job *models.Job)
}

type Poller struct {
	client StatusGetter
	logger logging.Logger
	opts   Options
}

func New(client StatusGetter, logger logging.Logger, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Poller{client: client, logger: logger, opts: opts}
}

type startConfig struct {
	opts     Options
	onUpdate []func(*models.Job)
	onDone   []func(Outcome)
}

type StartOption func(*startConfig)

// WithUpdate adds an observer of every status seen for this job.
func WithUpdate(fn func(*models.Job)) StartOption {
	return func(c *startConfig) { c.onUpdate = append(c.onUpdate, fn) }
}

// WithDone registers fn to run with the outcome before Done is closed. fn
// runs on the polling goroutine and must not call Cancel on the same handle.
func WithDone(fn func(Outcome)) StartOption {
	return func(c *startConfig) { c.onDone = append(c.onDone, fn) }
}

// WithBounds overrides MaxAttempts and Deadline for one job.
func WithBounds(maxAttempts int, deadline time.Duration) StartOption {
	return func(c *startConfig) {
		c.opts.MaxAttempts = maxAttempts
		c.opts.Deadline = deadline
	}
}

// Outcome is the terminal result of polling one job.
type Outcome struct {
	JobID    string
	State    State
	Job      *models.Job // last observed status, nil if none was received
	Attempts int
	Err      error
}

// Decode unmarshals the result payload of a completed job into v.
func (o Outcome) Decode(v any) error {
	if o.State != Completed || o.Job == nil {
		return fmt.Errorf("job %s is %s, no result", o.JobID, o.State)
	}
	if len(o.Job.Result) == 0 {
		return fmt.Errorf("job %s completed without result", o.JobID)
	}
	return json.Unmarshal(o.Job.Result, v)
}

// Handle controls one polling goroutine.
type Handle struct {
	jobID  string
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	state   State
	outcome Outcome
}

func (h *Handle) JobID() string { return h.jobID }

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done is closed once the outcome is final.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel stops polling and waits for the goroutine to exit. It is safe to
// call more than once and after completion.
func (h *Handle) Cancel() {
	h.cancel()
	<-h.done
}

// Outcome blocks until polling has finished.
func (h *Handle) Outcome() Outcome {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome
}

// Wait is Outcome bounded by ctx. Cancelling ctx does not stop polling.
func (h *Handle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-h.done:
		return h.Outcome(), nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (h *Handle) setState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// Start begins polling jobID in a new goroutine. Cancelling ctx aborts it.
func (p *Poller) Start(ctx context.Context, jobID string, opts ...StartOption) *Handle {
	cfg := &startConfig{opts: p.opts}
	if p.opts.OnUpdate != nil {
		cfg.onUpdate = append(cfg.onUpdate, p.opts.OnUpdate)
	}
	for _, o := range opts {
		o(cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		jobID:  jobID,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  Submitted,
	}

	go p.run(ctx, h, cfg)
	return h
}

// Submit calls start to create the job and then polls it. No handle is
// returned when start fails.
func (p *Poller) Submit(ctx context.Context, start func(ctx context.Context) (string, error), opts ...StartOption) (*Handle, error) {
	jobID, err := start(ctx)
	if err != nil {
		return nil, err
	}
	return p.Start(ctx, jobID, opts...), nil
}

func (p *Poller) run(ctx context.Context, h *Handle, cfg *startConfig) {
	out := Outcome{JobID: h.jobID}
	log := p.logger.With("job_id", h.jobID)

	defer func() {
		h.cancel()
		h.mu.Lock()
		h.state = out.State
		h.outcome = out
		h.mu.Unlock()

		log.Debug(ctx, "polling finished", "state", out.State.String(), "attempts", out.Attempts)
		for _, fn := range cfg.onDone {
			fn(out)
		}
		close(h.done)
	}()

	reqCtx := ctx
	var deadline <-chan struct{}
	if cfg.opts.Deadline > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, cfg.opts.Deadline)
		defer cancel()
		deadline = reqCtx.Done()
	}

	ticker := time.NewTicker(cfg.opts.Interval)
	defer ticker.Stop()

	h.setState(Polling)

	for {
		select {
		case <-ctx.Done():
		case <-deadline:
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			out.State, out.Err = Aborted, ErrPollingAborted
			return
		}
		if reqCtx.Err() != nil {
			out.State, out.Err = Expired, ErrPollingExpired
			return
		}

		out.Attempts++
		job, err := p.client.GetJobStatus(reqCtx, h.jobID)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				out.State, out.Err = Aborted, ErrPollingAborted
			case errors.Is(reqCtx.Err(), context.DeadlineExceeded):
				out.State, out.Err = Expired, ErrPollingExpired
			default:
				log.Warn(ctx, "job status request failed", "error", err)
				out.State, out.Err = Errored, err
			}
			return
		}

		out.Job = job
		for _, fn := range cfg.onUpdate {
			fn(job)
		}

		switch job.Status {
		case models.JobDone:
			out.State = Completed
			return
		case models.JobFailed:
			out.State, out.Err = Failed, &JobFailedError{JobID: h.jobID, Message: job.Error}
			return
		}

		log.Debug(ctx, "job not finished", "status", string(job.Status), "attempt", out.Attempts)

		if cfg.opts.MaxAttempts > 0 && out.Attempts >= cfg.opts.MaxAttempts {
			out.State, out.Err = Expired, ErrPollingExpired
			return
		}
	}
}
