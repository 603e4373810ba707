// Package jobs keeps the local history of submitted cracker and hash jobs.
//
// Times are stored as unix milliseconds. A record is inserted when a job is
// submitted and finished once the poller or the synchronous call has an
// outcome; Result and Nonce hold the sealed result payload when the history
// is unlocked.
package jobs
