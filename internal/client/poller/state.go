package poller

import (
	"errors"
	"fmt"
)

type State int

const (
	Submitted State = iota
	Polling
	Completed
	Failed
	Aborted
	Expired
	Errored
)

var stateNames = [...]string{"Submitted", "Polling", "Completed", "Failed", "Aborted", "Expired", "Errored"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s >= Completed
}

var (
	// ErrPollingAborted is the outcome error after Cancel or context
	// cancellation.
	ErrPollingAborted = errors.New("polling aborted")
	// ErrPollingExpired is the outcome error when MaxAttempts or Deadline
	// ran out before the job finished.
	ErrPollingExpired = errors.New("polling expired")
)

// JobFailedError carries the message of a job that reported failed.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("job %s failed", e.JobID)
	}
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}
