package services

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/securapass/internal/client/client"
	"github.com/dmitrijs2005/securapass/internal/client/clienttest"
	"github.com/dmitrijs2005/securapass/internal/client/models"
	"github.com/dmitrijs2005/securapass/internal/client/poller"
)

const passwordMD5 = "5f4dcc3b5aa765d61d8327deb882cf99"

func fixedNow() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func TestCrackService_Run(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.history.Unlock(ctx, []byte("secret")))

	svc := NewCrackService(e.client, e.poller, e.history, e.writer, nil)
	svc.now = fixedNow

	out, err := svc.Run(ctx, models.CrackRequest{TargetHash: " " + passwordMD5 + " "})
	require.NoError(t, err)
	assert.Equal(t, poller.Completed, out.State)
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.Found)
	assert.Equal(t, "password", out.Result.Plaintext)

	require.NoError(t, out.ReportErr)
	body, err := os.ReadFile(out.Saved.Path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Hash: "+passwordMD5+"\n")
	assert.Contains(t, string(body), "Status: Cracked: password\n")
	assert.Regexp(t, `^report-20240501T120000Z-sync-[0-9a-f]{8}\.txt$`, out.Report.FileName())

	list, err := e.history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.JobKindCrack, list[0].Kind)
	assert.Equal(t, passwordMD5, list[0].Subject)
	assert.Equal(t, "Completed", list[0].State)

	var stored models.CrackResult
	require.NoError(t, e.history.Result(ctx, list[0].ID, &stored))
	assert.Equal(t, "password", stored.Plaintext)
}

func TestCrackService_RunRequiresHash(t *testing.T) {
	e := newEnv(t)
	svc := NewCrackService(e.client, e.poller, nil, nil, nil)

	_, err := svc.Run(context.Background(), models.CrackRequest{UseSamples: true})
	require.ErrorIs(t, err, client.ErrInvalidInput)
	assert.Empty(t, e.cracker.RequestIDs())
}

func TestCrackService_StartSingle(t *testing.T) {
	e := newEnv(t)
	e.cracker.QueueJobIDs("abc")
	svc := NewCrackService(e.client, e.poller, e.history, e.writer, nil)
	ctx := context.Background()

	got := make(chan *CrackOutcome, 1)
	h, err := svc.Start(ctx, models.CrackRequest{TargetHash: passwordMD5}, func(o *CrackOutcome) { got <- o })
	require.NoError(t, err)
	assert.Equal(t, "abc", h.JobID())

	assert.Equal(t, poller.Completed, wait(t, h).State)
	out := <-got
	assert.Equal(t, "abc", out.JobID)
	require.NotNil(t, out.Result)
	assert.Equal(t, "password", out.Result.Plaintext)
	require.NoError(t, out.ReportErr)
	assert.True(t, strings.HasSuffix(out.Saved.Path, "-abc.txt"), out.Saved.Path)

	list, err := e.history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "abc", list[0].RemoteID)
	assert.Equal(t, "Completed", list[0].State)
	assert.Empty(t, list[0].Result, "locked history keeps no result")
}

func TestCrackService_StartSamples(t *testing.T) {
	e := newEnv(t)
	svc := NewCrackService(e.client, e.poller, e.history, e.writer, nil)

	got := make(chan *CrackOutcome, 1)
	h, err := svc.Start(context.Background(), models.CrackRequest{UseSamples: true}, func(o *CrackOutcome) { got <- o })
	require.NoError(t, err)
	wait(t, h)

	out := <-got
	require.NotNil(t, out.Report)
	assert.Len(t, out.Report.Rows, 5)
	assert.Equal(t, 4, out.Report.Stats.Total)

	body, err := os.ReadFile(out.Saved.Path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Total Cracked: 4\n")
	assert.Contains(t, string(body), "Status: Not Found\n")

	starts := e.cracker.Starts()
	require.Len(t, starts, 1)
	assert.True(t, starts[0].UseSamples)
}

func TestCrackService_StartFailedJob(t *testing.T) {
	e := newEnv(t)
	e.cracker.QueueJobIDs("bad")
	e.cracker.Script("bad", clienttest.Status(models.JobRunning), clienttest.Failed("wordlist not found"))
	svc := NewCrackService(e.client, e.poller, e.history, e.writer, nil)
	ctx := context.Background()

	got := make(chan *CrackOutcome, 1)
	h, err := svc.Start(ctx, models.CrackRequest{TargetHash: passwordMD5}, func(o *CrackOutcome) { got <- o })
	require.NoError(t, err)
	wait(t, h)

	out := <-got
	assert.Equal(t, poller.Failed, out.State)
	var jf *poller.JobFailedError
	require.ErrorAs(t, out.Err, &jf)
	assert.Nil(t, out.Report)

	list, err := e.history.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Failed", list[0].State)
	assert.Contains(t, list[0].Error, "wordlist not found")

	entries, err := os.ReadDir(e.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCrackService_StartCancelledIsRecorded(t *testing.T) {
	e := newEnv(t)
	e.cracker.QueueJobIDs("slow")
	e.cracker.Script("slow", clienttest.Status(models.JobRunning))
	svc := NewCrackService(e.client, e.poller, e.history, nil, nil)
	ctx := context.Background()

	h, err := svc.Start(ctx, models.CrackRequest{TargetHash: passwordMD5}, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return e.cracker.StatusCalls("slow") >= 2 }, 5*time.Second, time.Millisecond)

	h.Cancel()
	assert.Equal(t, poller.Aborted, h.State())

	list, err := e.history.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Aborted", list[0].State)
}

func TestCrackService_StartRejected(t *testing.T) {
	e := newEnv(t)
	svc := NewCrackService(e.client, e.poller, e.history, nil, nil)

	h, err := svc.Start(context.Background(), models.CrackRequest{}, nil)
	require.ErrorIs(t, err, client.ErrInvalidInput)
	assert.Nil(t, h)

	list, err := e.history.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
