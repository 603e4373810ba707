package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/securapass/internal/client/client"
	"github.com/dmitrijs2005/securapass/internal/client/clienttest"
	"github.com/dmitrijs2005/securapass/internal/client/config"
	"github.com/dmitrijs2005/securapass/internal/client/models"
)

const passwordMD5 = "5f4dcc3b5aa765d61d8327deb882cf99"

type testApp struct {
	*App
	cracker *clienttest.Cracker
	manager *clienttest.Manager
	buf     *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()

	cr := clienttest.NewCracker(t)
	mg := clienttest.NewManager(t)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.CrackerBaseURL = cr.URL
	cfg.ManagerBaseURL = mg.URL
	cfg.RequestTimeout = 5 * time.Second
	cfg.RetryAttempts = 0
	cfg.PollInterval = time.Millisecond
	cfg.CacheDSN = ":memory:"
	cfg.ReportsDir = t.TempDir()

	app, err := NewApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(context.Background()) })

	buf := &bytes.Buffer{}
	app.out = buf
	app.reader = bufio.NewReader(strings.NewReader(input))

	return &testApp{App: app, cracker: cr, manager: mg, buf: buf}
}

func (ta *testApp) output() string {
	ta.outMu.Lock()
	defer ta.outMu.Unlock()
	return ta.buf.String()
}

func (ta *testApp) waitOutput(t *testing.T, want string) {
	t.Helper()
	require.Eventually(t, func() bool { return strings.Contains(ta.output(), want) },
		5*time.Second, time.Millisecond, "output never contained %q:\n%s", want, ta.output())
}

func TestApp_Gen(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.Gen(context.Background(), []string{"-l", "20", "-c", "ld", "-n", "3"}))

	lines := strings.Split(strings.TrimSpace(a.output()), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		pw, strength, ok := strings.Cut(l, "\t")
		require.True(t, ok)
		assert.Len(t, pw, 20)
		assert.NotEmpty(t, strength)
	}

	require.Error(t, a.Gen(context.Background(), []string{"-c", "x"}))
	require.Error(t, a.Gen(context.Background(), []string{"-l", "0"}))
}

func TestApp_Suggest(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.Suggest(context.Background(), []string{"alice"}))
	assert.Contains(t, a.output(), "@Alice123\t")
	require.ErrorIs(t, a.Suggest(context.Background(), nil), client.ErrInvalidInput)
}

func TestApp_CrackSync(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.Crack(context.Background(), []string{"-sync", passwordMD5}))
	out := a.output()
	assert.Contains(t, out, passwordMD5+"\tCracked: password\n")
	assert.Contains(t, out, "Report saved to ")
	assert.NotContains(t, out, "[job")
}

func TestApp_CrackAsync(t *testing.T) {
	a := newTestApp(t, "")
	a.cracker.QueueJobIDs("abc")

	require.NoError(t, a.Crack(context.Background(), []string{passwordMD5}))
	assert.Contains(t, a.output(), "Job abc submitted")

	a.waitOutput(t, "[job abc] "+passwordMD5+"\tCracked: password")
	a.waitOutput(t, "[job abc] Report saved to ")
	require.Eventually(t, func() bool { return a.runningCount() == 0 }, 5*time.Second, time.Millisecond)
}

func TestApp_CrackUsage(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()

	require.ErrorIs(t, a.Crack(ctx, nil), client.ErrInvalidInput)
	require.ErrorIs(t, a.Crack(ctx, []string{"-sync", "-async", passwordMD5}), client.ErrInvalidInput)
	assert.Empty(t, a.cracker.Starts())
}

func TestApp_CrackWarnsOnUnknownHash(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.Crack(context.Background(), []string{"-sync", "zzz"}))
	assert.Contains(t, a.output(), `Warning: "zzz" does not look like`)
	assert.Contains(t, a.output(), "zzz\tNot Found")
}

func TestApp_Samples(t *testing.T) {
	a := newTestApp(t, "")
	a.cracker.QueueJobIDs("s1")

	require.NoError(t, a.Samples(context.Background(), nil))
	a.waitOutput(t, "[job s1] Cracked 4, average length")
	assert.Contains(t, a.output(), "[job s1] ffffffffffffffffffffffffffffffff\tNot Found")
}

func TestApp_JobsAndCancel(t *testing.T) {
	a := newTestApp(t, "")
	a.cracker.QueueJobIDs("slow")
	a.cracker.Script("slow", clienttest.Status(models.JobRunning))
	ctx := context.Background()

	require.NoError(t, a.Jobs(ctx, nil))
	assert.Contains(t, a.output(), "No running jobs")

	require.NoError(t, a.Crack(ctx, []string{passwordMD5}))
	require.Eventually(t, func() bool { return a.cracker.StatusCalls("slow") > 0 }, 5*time.Second, time.Millisecond)

	require.NoError(t, a.Jobs(ctx, nil))
	assert.Contains(t, a.output(), "slow\tcrack\t"+passwordMD5+"\tPolling")

	require.ErrorIs(t, a.Cancel(ctx, []string{"ghost"}), errNoSuchJob)
	require.NoError(t, a.Cancel(ctx, []string{"slow"}))
	assert.Contains(t, a.output(), "[job slow] Aborted")
	assert.Zero(t, a.runningCount())
}

func TestApp_CancelAll(t *testing.T) {
	a := newTestApp(t, "")
	a.cracker.QueueJobIDs("j1", "j2")
	a.cracker.Script("j1", clienttest.Status(models.JobRunning))
	a.cracker.Script("j2", clienttest.Status(models.JobPending))
	ctx := context.Background()

	require.NoError(t, a.Crack(ctx, []string{passwordMD5}))
	require.NoError(t, a.Samples(ctx, nil))
	assert.Equal(t, 2, a.runningCount())

	require.NoError(t, a.Cancel(ctx, []string{"all"}))
	assert.Zero(t, a.runningCount())
	assert.Contains(t, a.output(), "[job j1] Aborted")
	assert.Contains(t, a.output(), "[job j2] Aborted")
}

func TestApp_CrackFailedJob(t *testing.T) {
	a := newTestApp(t, "")
	a.cracker.QueueJobIDs("bad")
	a.cracker.Script("bad", clienttest.Failed("wordlist not found"))

	require.NoError(t, a.Crack(context.Background(), []string{"-w", "nope.txt", passwordMD5}))
	a.waitOutput(t, "[job bad] Failed: wordlist not found")
	assert.Equal(t, "nope.txt", a.cracker.Starts()[0].Wordlist)
}

func TestApp_Hash(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, a.Hash(ctx, []string{"-sync", "-append", "password"}))
	assert.Contains(t, a.output(), "MD5: "+passwordMD5+"\n")
	assert.Contains(t, a.output(), "Appended to samples/hashes.txt")

	stubPassword(t, "password", nil)
	a.cracker.QueueJobIDs("h1")
	require.NoError(t, a.Hash(ctx, nil))
	a.waitOutput(t, "[job h1] MD5: "+passwordMD5)
}

func TestApp_EntryLifecycle(t *testing.T) {
	a := newTestApp(t, "n\ny\n")
	stubPassword(t, "x", nil)
	ctx := context.Background()

	require.NoError(t, a.Add(ctx, []string{"example.com", "bob"}))
	assert.Contains(t, a.output(), "Entry 1 added")

	require.NoError(t, a.List(ctx, nil))
	assert.Contains(t, a.output(), "1\texample.com\tbob\t")

	require.NoError(t, a.Reveal(ctx, []string{"1"}))
	assert.Contains(t, a.output(), "Password: x\n")

	require.NoError(t, a.Update(ctx, []string{"-u", "robert", "-g", "24", "1"}))
	assert.Contains(t, a.output(), "Entry 1 updated")
	pw, ok := a.manager.Password(1)
	require.True(t, ok)
	assert.Len(t, pw, 24)

	require.NoError(t, a.Delete(ctx, []string{"1"}))
	assert.Contains(t, a.output(), "Cancelled")
	require.NoError(t, a.Delete(ctx, []string{"1"}))
	assert.Contains(t, a.output(), "Entry 1 deleted")

	require.ErrorIs(t, a.Reveal(ctx, []string{"1"}), client.ErrNotFound)
	require.ErrorIs(t, a.Reveal(ctx, []string{"one"}), client.ErrInvalidInput)
	require.ErrorIs(t, a.Update(ctx, []string{"1"}), client.ErrInvalidInput)
}

func TestApp_AddPromptsForUsername(t *testing.T) {
	a := newTestApp(t, "carol\n")
	stubPassword(t, "x", nil)

	require.NoError(t, a.Add(context.Background(), []string{"example.org"}))
	require.NoError(t, a.List(context.Background(), nil))
	assert.Contains(t, a.output(), "example.org\tcarol")
}

func TestApp_ListStale(t *testing.T) {
	a := newTestApp(t, "")
	a.manager.Seed("example.com", "bob", "x")
	ctx := context.Background()

	require.NoError(t, a.List(ctx, nil))
	a.manager.Close()

	require.NoError(t, a.List(ctx, nil))
	assert.Contains(t, a.output(), "Password manager unreachable, showing entries cached at")
}

func TestApp_VerifyAndHistory(t *testing.T) {
	a := newTestApp(t, "")
	a.manager.SetMaster("secret")
	ctx := context.Background()

	stubPassword(t, "wrong", nil)
	require.NoError(t, a.Verify(ctx, nil))
	assert.Contains(t, a.output(), "Master password rejected")

	require.NoError(t, a.Crack(ctx, []string{"-sync", passwordMD5}))
	list, err := a.history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.ErrorContains(t, a.History(ctx, []string{"-show", list[0].ID}), "locked")

	stubPassword(t, "secret", nil)
	require.NoError(t, a.Verify(ctx, nil))
	assert.Contains(t, a.output(), "history unlocked")
	assert.Contains(t, a.status(), "unlocked")

	require.NoError(t, a.Crack(ctx, []string{"-sync", passwordMD5}))
	require.NoError(t, a.History(ctx, []string{"-n", "5"}))
	assert.Contains(t, a.output(), "\tcrack\tsync\t"+passwordMD5+"\tCompleted")

	list, err = a.history.List(ctx, 0)
	require.NoError(t, err)
	var sealed string
	for _, r := range list {
		if len(r.Result) > 0 {
			sealed = r.ID
		}
	}
	require.NotEmpty(t, sealed)
	require.NoError(t, a.History(ctx, []string{"-show", sealed}))
	assert.Contains(t, a.output(), "found=true plaintext=password")

	require.ErrorContains(t, a.History(ctx, []string{"-show", "missing"}), "no such history record")
}

func TestApp_Health(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, a.Health(ctx, nil))
	assert.Contains(t, a.output(), "Password manager: ok")

	a.manager.Close()
	require.NoError(t, a.Health(ctx, nil))
	assert.Contains(t, a.output(), "Password manager: unavailable")
}

func TestApp_Run(t *testing.T) {
	a := newTestApp(t, "gen -l 8\nsuggest bob\nbogus\nexit\n")

	a.Run(context.Background())

	out := a.output()
	assert.Contains(t, out, "Welcome to SecuraPass CLI")
	assert.Contains(t, out, "@Bob123")
	assert.Contains(t, out, "Unknown command: bogus")
	assert.Contains(t, out, "Bye!")
	assert.Equal(t, 4, strings.Count(out, "sp (async)> "), "every prompt goes to the app output")
}
