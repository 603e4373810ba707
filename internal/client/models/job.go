// Package models defines the data exchanged with the SecuraPass backends and
// the records kept in the local cache.
package models

import (
	"encoding/json"
	"time"
)

// JobStatus is the remote lifecycle state of an asynchronous job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Terminal reports whether no further status change can follow.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobFailed
}

// Job is the body of GET /api/job/{id}. Result is set only when Status is
// done, Error only when it is failed.
type Job struct {
	ID         string          `json:"-"`
	Status     JobStatus       `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  float64         `json:"started_at,omitempty"`
	FinishedAt float64         `json:"finished_at,omitempty"`
}

// Duration is the server-side run time, zero until the job has finished.
func (j Job) Duration() time.Duration {
	if j.StartedAt == 0 || j.FinishedAt == 0 || j.FinishedAt < j.StartedAt {
		return 0
	}
	return time.Duration((j.FinishedAt - j.StartedAt) * float64(time.Second))
}

// JobKind tells which backend module a job belongs to.
type JobKind string

const (
	JobKindCrack JobKind = "crack"
	JobKindHash  JobKind = "hash"
)

// JobRecord is a locally kept history row for a submitted job.
type JobRecord struct {
	ID          string
	RemoteID    string
	Kind        JobKind
	Subject     string
	State       string
	Error       string
	Result      []byte
	Nonce       []byte
	SubmittedAt time.Time
	FinishedAt  *time.Time
}
