// Package poller drives the lifecycle of an asynchronous backend job.
//
// A job moves Submitted -> Polling and ends in exactly one of Completed,
// Failed, Aborted, Expired or Errored. Each started job is observed by its own
// goroutine, owned by a Handle; cancelling the handle (or the context passed
// to Start) is the only way to stop it early, and once Cancel has returned no
// further status request is made.
//
//	p := poller.New(cl, logger, poller.Options{Interval: time.Second})
//	h := p.Start(ctx, jobID)
//	defer h.Cancel()
//	out := h.Outcome() // blocks until a terminal state
package poller
