package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobPending.Terminal())
	assert.False(t, JobRunning.Terminal())
	assert.False(t, JobStatus("queued").Terminal())
	assert.True(t, JobDone.Terminal())
	assert.True(t, JobFailed.Terminal())
}

func TestJob_Duration(t *testing.T) {
	assert.Equal(t, time.Duration(0), Job{StartedAt: 10}.Duration())
	assert.Equal(t, time.Duration(0), Job{StartedAt: 10, FinishedAt: 5}.Duration())
	assert.Equal(t, 1500*time.Millisecond, Job{StartedAt: 10, FinishedAt: 11.5}.Duration())
}

func TestJob_DecodesServerBody(t *testing.T) {
	body := `{"status":"done","result":{"found":true,"plaintext":"password"},"started_at":1.0,"finished_at":2.0}`

	var j Job
	require.NoError(t, json.Unmarshal([]byte(body), &j))
	assert.Equal(t, JobDone, j.Status)

	var res CrackResult
	require.NoError(t, json.Unmarshal(j.Result, &res))
	assert.True(t, res.Found)
	assert.Equal(t, "password", res.Plaintext)
	assert.False(t, res.IsSamples())
}

func TestCrackResult_Stats(t *testing.T) {
	assert.Equal(t, CrackStats{}, CrackResult{}.Stats())

	r := CrackResult{Report: []CrackReportRow{}, Cracked: []string{"abc", "password", "qwerty"}}
	st := r.Stats()
	assert.True(t, r.IsSamples())
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, "abc", st.Shortest)
	assert.Equal(t, "password", st.Longest)
	assert.InDelta(t, 17.0/3.0, st.AverageLength, 1e-9)
}

func TestEntry_Created(t *testing.T) {
	e := Entry{CreatedAt: "2024-05-01T10:20:30.123456Z"}
	ts, ok := e.Created()
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())

	_, ok = Entry{CreatedAt: "yesterday"}.Created()
	assert.False(t, ok)
}

func TestEntry_PasswordOmittedWhenEmpty(t *testing.T) {
	b, err := json.Marshal(Entry{ID: 1, Website: "example.com"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.False(t, Entry{}.Revealed())
	assert.True(t, Entry{Password: "x"}.Revealed())
}

func TestEntryUpdate_Empty(t *testing.T) {
	assert.True(t, EntryUpdate{}.Empty())
	site := "example.com"
	assert.False(t, EntryUpdate{Website: &site}.Empty())

	b, err := json.Marshal(EntryUpdate{Website: &site})
	require.NoError(t, err)
	assert.JSONEq(t, `{"website":"example.com"}`, string(b))
}
