package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/securapass/internal/client/client"
	"github.com/dmitrijs2005/securapass/internal/client/clienttest"
	"github.com/dmitrijs2005/securapass/internal/client/poller"
	"github.com/dmitrijs2005/securapass/internal/client/reports"
)

type env struct {
	cracker *clienttest.Cracker
	manager *clienttest.Manager
	client  *client.HTTPClient
	db      *sql.DB
	poller  *poller.Poller
	history *HistoryService
	dir     string
	writer  *reports.Writer
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		cracker: clienttest.NewCracker(t),
		manager: clienttest.NewManager(t),
		dir:     t.TempDir(),
	}

	var err error
	e.client, err = client.NewHTTPClient(client.Options{
		CrackerBaseURL: e.cracker.URL,
		ManagerBaseURL: e.manager.URL,
		Timeout:        5 * time.Second,
	})
	require.NoError(t, err)

	e.db, err = client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.db.Close() })

	e.poller = poller.New(e.client, nil, poller.Options{Interval: time.Millisecond})
	e.history = NewHistoryService(e.client, e.db, nil)
	e.writer = reports.NewWriter(e.dir, nil, nil)
	return e
}

// wait blocks until h is done or fails the test.
func wait(t *testing.T, h *poller.Handle) poller.Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := h.Wait(ctx)
	require.NoError(t, err, "job did not finish in time")
	return out
}
