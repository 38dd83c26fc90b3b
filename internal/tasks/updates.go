package tasks

import (
	"fmt"

	"github.com/desertthunder/resonate/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchTracks Phase = iota
	FetchArtists
	SaveProfile
)

func (p Phase) String() string {
	switch p {
	case FetchTracks:
		return "fetch_tracks"
	case FetchArtists:
		return "fetch_artists"
	case SaveProfile:
		return "save_profile"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func phaseFor(kind services.TopItemKind) Phase {
	if kind == services.TopArtistsKind {
		return FetchArtists
	}
	return FetchTracks
}

func fetchingUpdate(kind services.TopItemKind) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phaseFor(kind),
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching top %s from Spotify...", kind),
	}
}

func fetchedUpdate(kind services.TopItemKind, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phaseFor(kind),
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ %d top %s", count, kind),
		Data:    count,
	}
}

func fetchFailedUpdate(kind services.TopItemKind, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phaseFor(kind),
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✗ top %s: %v", kind, err),
	}
}

func savingUpdate(code, user string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveProfile,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Saving profile to session %s as %s...", code, user),
	}
}

func savedUpdate(code, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveProfile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s (%s)", message, code),
	}
}
