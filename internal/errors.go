package dashboard

import "errors"

// Sentinel errors for the dashboard domain. The server package maps these to
// HTTP statuses in one place.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUpstream     = errors.New("upstream failure")
)
