// Package client talks to the two SecuraPass backends over HTTP.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic contracts: CrackerClient (crack and hash jobs on the
//     cracker service) and ManagerClient (credential entries on the password
//     manager service), combined as Client.
//  2. HTTPClient, the JSON-over-HTTP implementation. Each operation issues
//     one request against the configured base URL and decodes the response.
//  3. Local cache bootstrap (InitDatabase, RunMigrations) wiring SQLite and
//     the embedded goose migrations.
//
// # Error Handling
//
// Missing required input fails with ErrInvalidInput before any request is
// sent. A non-2xx response yields a *RequestError carrying the status code
// and the server-supplied message; it matches ErrRequestFailed with
// errors.Is, as well as ErrUnauthorized (401/403) or ErrNotFound (404).
// Transport failures wrap ErrUnavailable.
//
// # Retries
//
// By default no request is retried. Options.RetryAttempts > 1 enables
// exponential backoff for transport failures only; an HTTP response, whatever
// its status, is never retried.
package client
