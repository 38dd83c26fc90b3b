package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed   = fmt.Errorf("authentication failed")
	ErrMissingCode  = fmt.Errorf("missing authorization code")
	ErrMissingToken = fmt.Errorf("missing access token")
	ErrTimeout      = fmt.Errorf("operation timed out")

	// Upstream (Spotify) errors
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrUpstream            = fmt.Errorf("upstream request failed")
	ErrInvalidUpstreamJSON = fmt.Errorf("upstream returned invalid JSON")
	ErrServiceUnavailable  = fmt.Errorf("service unavailable")

	// Session errors
	ErrSessionNotFound   = fmt.Errorf("session not found")
	ErrSessionExists     = fmt.Errorf("session already exists")
	ErrSessionIncomplete = fmt.Errorf("session is not complete")
	ErrInvalidUser       = fmt.Errorf("invalid user")

	// Input validation errors
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrInvalidTimeRange = fmt.Errorf("invalid time range")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
)
