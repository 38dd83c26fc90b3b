package services

import (
	"errors"
	"fmt"

	"github.com/desertthunder/resonate/internal/shared"
)

const diagnosticBodyLimit = 512

// UpstreamError describes a failed call to Spotify with enough detail to return as a diagnostic payload.
//
// It matches [shared.ErrUpstream] or [shared.ErrInvalidUpstreamJSON] (Kind) with errors.Is.
type UpstreamError struct {
	Kind        error
	Op          string
	StatusCode  int
	Body        string
	Code        string
	Description string
	Err         error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Details returns the diagnostic fields sent back to HTTP callers.
func (e *UpstreamError) Details() map[string]any {
	d := map[string]any{"operation": e.Op}
	if e.StatusCode != 0 {
		d["status"] = e.StatusCode
	}
	if e.Code != "" {
		d["error"] = e.Code
	}
	if e.Description != "" {
		d["error_description"] = e.Description
	}
	if e.Body != "" {
		d["body"] = shared.Truncate(e.Body, diagnosticBodyLimit)
	}
	if e.Err != nil && e.StatusCode == 0 {
		d["cause"] = e.Err.Error()
	}
	return d
}

// AsUpstreamError extracts an [UpstreamError] from err's chain.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
