package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"

	"github.com/dmitrijs2005/securapass/internal/client/client"
	"github.com/dmitrijs2005/securapass/internal/client/config"
	"github.com/dmitrijs2005/securapass/internal/client/passgen"
	"github.com/dmitrijs2005/securapass/internal/client/poller"
	"github.com/dmitrijs2005/securapass/internal/client/reports"
	"github.com/dmitrijs2005/securapass/internal/client/services"
	"github.com/dmitrijs2005/securapass/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	client *client.HTTPClient

	gen     *passgen.Generator
	crack   *services.CrackService
	hash    *services.HashService
	entries *services.EntryService
	history *services.HistoryService

	reader *bufio.Reader

	outMu sync.Mutex
	out   io.Writer

	jobsMu sync.Mutex
	jobs   map[string]*runningJob
}

// runningJob is a background job the user can list and cancel.
type runningJob struct {
	id      string
	kind    string
	subject string
	handle  *poller.Handle
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	db, err := client.InitDatabase(ctx, c.CacheDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(client.Options{
		CrackerBaseURL: c.CrackerBaseURL,
		ManagerBaseURL: c.ManagerBaseURL,
		AuthToken:      c.AuthToken,
		Timeout:        c.RequestTimeout,
		RetryAttempts:  c.RetryAttempts,
		RetryDelay:     c.RetryDelay,
		Logger:         logger.With("component", "client"),
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var uploader reports.Uploader
	if c.S3.Bucket != "" {
		s3u, err := reports.NewS3Uploader(ctx, reports.S3Config{
			Endpoint:  c.S3.Endpoint,
			Region:    c.S3.Region,
			Bucket:    c.S3.Bucket,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
		}, &http.Client{Timeout: c.RequestTimeout})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		uploader = s3u
	}

	p := poller.New(apiClient, logger.With("component", "poller"), poller.Options{
		Interval:    c.PollInterval,
		MaxAttempts: c.PollMaxAttempts,
		Deadline:    c.PollDeadline,
	})
	hs := services.NewHistoryService(apiClient, db, logger)
	writer := reports.NewWriter(c.ReportsDir, uploader, logger)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		client:  apiClient,
		gen:     passgen.New(nil),
		crack:   services.NewCrackService(apiClient, p, hs, writer, logger),
		hash:    services.NewHashService(apiClient, p, hs, logger),
		entries: services.NewEntryService(apiClient, db, logger),
		history: hs,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		jobs:    make(map[string]*runningJob),
	}, nil
}

// Run starts the REPL on stdin and blocks until the user exits or stdin is
// closed. Running jobs are cancelled on return.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	a.println("Welcome to SecuraPass CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.println, bufio.NewScanner(a.reader))
}

// Close cancels all running jobs and closes the local cache.
func (a *App) Close(ctx context.Context) {
	for _, j := range a.snapshotJobs() {
		j.handle.Cancel()
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn(ctx, "error closing cache", "error", err)
	}
}

func (a *App) status() string {
	s := a.config.Mode
	if n := a.runningCount(); n > 0 {
		s += fmt.Sprintf(" %d running", n)
	}
	if !a.history.Locked() {
		s += " unlocked"
	}
	return s
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) track(jobID, kind, subject string, h *poller.Handle) {
	a.jobsMu.Lock()
	defer a.jobsMu.Unlock()
	// the state turns terminal before the completion hook untracks the job
	if h.State().Terminal() {
		return
	}
	a.jobs[jobID] = &runningJob{id: jobID, kind: kind, subject: subject, handle: h}
}

func (a *App) untrack(jobID string) {
	a.jobsMu.Lock()
	defer a.jobsMu.Unlock()
	delete(a.jobs, jobID)
}

func (a *App) runningCount() int {
	a.jobsMu.Lock()
	defer a.jobsMu.Unlock()
	return len(a.jobs)
}

// snapshotJobs returns the running jobs ordered by id.
func (a *App) snapshotJobs() []*runningJob {
	a.jobsMu.Lock()
	defer a.jobsMu.Unlock()

	ids := make([]string, 0, len(a.jobs))
	for id := range a.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*runningJob, 0, len(ids))
	for _, id := range ids {
		out = append(out, a.jobs[id])
	}
	return out
}
