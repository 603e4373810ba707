// Package cli provides the interactive SecuraPass command-line client.
//
// It wires configuration, the local cache, the backend client and the
// application services into a read-eval-print loop. Crack and hash commands
// run either synchronously or as background jobs that are polled until they
// finish; running jobs can be listed and cancelled.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewApp and runREPL for details.
package cli
