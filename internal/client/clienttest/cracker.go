package clienttest

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-pkgz/rest"

	"github.com/dmitrijs2005/securapass/internal/client/models"
)

// Samples are the hashes a samples run cracks, with their plaintexts.
var Samples = map[string]string{
	"5f4dcc3b5aa765d61d8327deb882cf99": "password",
	"e10adc3949ba59abbe56e057f20f883e": "123456",
	"d8578edf8458ce06fbc5bb76a58c5ca4": "qwerty",
	"0d107d09f5bbe40cade3de5c71e9e9b7": "letmein",
	"ffffffffffffffffffffffffffffffff": "",
}

// Cracker fakes the cracker/hash service. A started job reports pending on
// its first status call and done with a computed result afterwards, unless a
// script was set for its id.
type Cracker struct {
	*httptest.Server

	mu          sync.Mutex
	queuedIDs   []string
	seq         int
	jobs        map[string]*fakeJob
	statusCalls map[string]int
	requestIDs  []string
	starts      []models.CrackRequest
	hashStarts  []models.HashRequest
	appended    []string
}

type fakeJob struct {
	final  models.Job
	script []models.Job
}

func NewCracker(t testing.TB) *Cracker {
	t.Helper()

	c := &Cracker{
		jobs:        make(map[string]*fakeJob),
		statusCalls: make(map[string]int),
	}

	router := newRouter()
	router.Use(c.recordRequestID)
	router.HandleFunc("POST /api/cracker/start", c.handleCrackStart)
	router.HandleFunc("POST /api/cracker/run", c.handleCrackRun)
	router.HandleFunc("POST /api/hash/start", c.handleHashStart)
	router.HandleFunc("POST /api/hash/run", c.handleHashRun)
	router.HandleFunc("GET /api/job/{id}", c.handleJob)

	c.Server = httptest.NewServer(router)
	t.Cleanup(c.Close)
	return c
}

// QueueJobIDs makes the next started jobs use the given ids in order.
func (c *Cracker) QueueJobIDs(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queuedIDs = append(c.queuedIDs, ids...)
}

// Script fixes the statuses returned for jobID. Each status call consumes one
// step; the last step repeats forever. The job need not have been started.
func (c *Cracker) Script(jobID string, steps ...models.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	j, ok := c.jobs[jobID]
	if !ok {
		j = &fakeJob{}
		c.jobs[jobID] = j
	}
	j.script = append([]models.Job(nil), steps...)
}

// StatusCalls returns how many times the status of jobID was requested.
func (c *Cracker) StatusCalls(jobID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusCalls[jobID]
}

func (c *Cracker) RequestIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.requestIDs...)
}

// Starts returns the bodies of all crack start requests.
func (c *Cracker) Starts() []models.CrackRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CrackRequest(nil), c.starts...)
}

// Appended returns the digests the hash service was asked to keep.
func (c *Cracker) Appended() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.appended...)
}

func (c *Cracker) recordRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.requestIDs = append(c.requestIDs, r.Header.Get("X-Request-ID"))
		c.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (c *Cracker) nextJobID() string {
	if len(c.queuedIDs) > 0 {
		id := c.queuedIDs[0]
		c.queuedIDs = c.queuedIDs[1:]
		return id
	}
	c.seq++
	return fmt.Sprintf("job-%d", c.seq)
}

// register stores a started job whose final state is final. An existing
// script for the same id wins.
func (c *Cracker) register(final models.Job) string {
	id := c.nextJobID()
	if j, ok := c.jobs[id]; ok {
		j.final = final
		return id
	}
	c.jobs[id] = &fakeJob{final: final}
	return id
}

func (c *Cracker) handleCrackStart(w http.ResponseWriter, r *http.Request) {
	var req models.CrackRequest
	if err := decode(r, &req); err != nil {
		render(w, http.StatusBadRequest, rest.JSON{"error": err.Error()})
		return
	}

	var final models.Job
	if req.UseSamples {
		final = doneJob(crackSamples())
	} else if req.TargetHash == "" {
		final = models.Job{Status: models.JobFailed, Error: "target_hash required"}
	} else {
		final = doneJob(crackOne(req.TargetHash))
	}

	c.mu.Lock()
	c.starts = append(c.starts, req)
	id := c.register(final)
	c.mu.Unlock()

	render(w, http.StatusAccepted, rest.JSON{"ok": true, "job_id": id})
}

func (c *Cracker) handleCrackRun(w http.ResponseWriter, r *http.Request) {
	var req models.CrackRequest
	if err := decode(r, &req); err != nil || req.TargetHash == "" {
		render(w, http.StatusBadRequest, rest.JSON{"error": "target_hash required"})
		return
	}
	render(w, http.StatusOK, rest.JSON{"ok": true, "result": crackOne(req.TargetHash)})
}

func (c *Cracker) handleHashStart(w http.ResponseWriter, r *http.Request) {
	var req models.HashRequest
	if err := decode(r, &req); err != nil || req.Text == "" {
		render(w, http.StatusBadRequest, rest.JSON{"error": "text is required"})
		return
	}

	c.mu.Lock()
	c.hashStarts = append(c.hashStarts, req)
	res := c.hash(req)
	id := c.register(doneJob(res))
	c.mu.Unlock()

	render(w, http.StatusAccepted, rest.JSON{"job_id": id})
}

func (c *Cracker) handleHashRun(w http.ResponseWriter, r *http.Request) {
	var req models.HashRequest
	if err := decode(r, &req); err != nil || req.Text == "" {
		render(w, http.StatusBadRequest, rest.JSON{"error": "text is required"})
		return
	}

	c.mu.Lock()
	res := c.hash(req)
	c.mu.Unlock()

	render(w, http.StatusOK, rest.JSON{"ok": true, "result": res})
}

func (c *Cracker) handleJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	c.mu.Lock()
	c.statusCalls[id]++
	calls := c.statusCalls[id]
	j, ok := c.jobs[id]
	c.mu.Unlock()

	if !ok {
		render(w, http.StatusNotFound, rest.JSON{"error": "job not found"})
		return
	}

	var job models.Job
	switch {
	case len(j.script) > 0:
		step := calls - 1
		if step >= len(j.script) {
			step = len(j.script) - 1
		}
		job = j.script[step]
	case calls == 1:
		job = models.Job{Status: models.JobPending, StartedAt: 1700000000}
	default:
		job = j.final
	}
	render(w, http.StatusOK, job)
}

// hash must be called with c.mu held.
func (c *Cracker) hash(req models.HashRequest) models.HashResult {
	sum := md5.Sum([]byte(req.Text))
	res := models.HashResult{Hash: hex.EncodeToString(sum[:])}
	if req.Append {
		c.appended = append(c.appended, res.Hash)
		res.AppendedTo = "samples/hashes.txt"
	}
	return res
}

// Done builds a finished job status carrying result.
func Done(result any) models.Job {
	return doneJob(result)
}

func Failed(msg string) models.Job {
	return models.Job{Status: models.JobFailed, Error: msg, StartedAt: 1700000000, FinishedAt: 1700000001}
}

func Status(s models.JobStatus) models.Job {
	return models.Job{Status: s, StartedAt: 1700000000}
}

func doneJob(result any) models.Job {
	raw, err := json.Marshal(result)
	if err != nil {
		panic(err)
	}
	return models.Job{Status: models.JobDone, Result: raw, StartedAt: 1700000000, FinishedAt: 1700000002.5}
}

func crackOne(target string) models.CrackResult {
	target = strings.ToLower(strings.TrimSpace(target))
	if p, ok := Samples[target]; ok && p != "" {
		return models.CrackResult{Found: true, Plaintext: p}
	}
	return models.CrackResult{Found: false}
}

func crackSamples() models.CrackResult {
	hashes := []string{
		"5f4dcc3b5aa765d61d8327deb882cf99",
		"e10adc3949ba59abbe56e057f20f883e",
		"d8578edf8458ce06fbc5bb76a58c5ca4",
		"0d107d09f5bbe40cade3de5c71e9e9b7",
		"ffffffffffffffffffffffffffffffff",
	}
	res := models.CrackResult{Report: []models.CrackReportRow{}, Cracked: []string{}}
	for _, h := range hashes {
		one := crackOne(h)
		res.Report = append(res.Report, models.CrackReportRow{Hash: h, Found: one.Found, Plaintext: one.Plaintext})
		if one.Found {
			res.Cracked = append(res.Cracked, one.Plaintext)
		}
	}
	res.TotalCracked = len(res.Cracked)
	return res
}
