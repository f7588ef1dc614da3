package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrRunNotFound        = fmt.Errorf("migration run not found")

	// Matching errors, recovered at the per-track boundary
	ErrMalformedDuration   = fmt.Errorf("malformed duration")
	ErrNoCandidate         = fmt.Errorf("no acceptable candidate")
	ErrDestinationMutation = fmt.Errorf("destination mutation failed")

	// Pipeline prerequisites, fatal for a migration run
	ErrSourceFetch    = fmt.Errorf("failed to fetch source tracks")
	ErrPlaylistCreate = fmt.Errorf("failed to create destination playlist")

	// Reported after a run when unmatched tracks are treated as failure
	ErrUnmatchedTracks = fmt.Errorf("unmatched tracks remain")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
