// Package common contains constants and small helpers shared by the
// SecuraPass client packages.
package common

const (
	// RequestIDHeaderName carries a per-request correlation id on every
	// outbound backend call.
	RequestIDHeaderName = "X-Request-ID"

	// AuthorizationHeaderName carries the optional bearer token.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "
)
