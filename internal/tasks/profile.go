package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
)

// TopFetcher fetches a raw page of top items. Implemented by [services.SpotifyService].
type TopFetcher interface {
	TopItems(ctx context.Context, token string, kind services.TopItemKind, timeRange string) (json.RawMessage, error)
}

// SessionSaver stores a user's data in a session on a relay. Implemented by [services.APIService].
type SessionSaver interface {
	SaveSessionData(ctx context.Context, code, user string, data models.UserData) (string, error)
}

// Profile is a user's top tracks and artists as fetched from Spotify.
//
// Raw bodies are kept so they can be saved into a session unchanged.
type Profile struct {
	Tracks     json.RawMessage
	Artists    json.RawMessage
	TopTracks  []services.SpotifyTrack
	TopArtists []services.SpotifyArtist
	Genres     []string
}

// UserData returns the profile in the shape stored in a session slot.
func (p *Profile) UserData() models.UserData {
	return models.UserData{Tracks: p.Tracks, Artists: p.Artists}
}

type fetchResult struct {
	raw json.RawMessage
	err error
}

// FetchProfile fetches top tracks and top artists concurrently.
//
// Both requests always run to completion; if either fails the errors are joined and no profile is returned.
func FetchProfile(ctx context.Context, svc TopFetcher, token, timeRange string, progress chan<- ProgressUpdate) (*Profile, error) {
	if svc == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	kinds := []services.TopItemKind{services.TopTracksKind, services.TopArtistsKind}
	results := make([]fetchResult, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind services.TopItemKind) {
			defer wg.Done()
			sendProgress(progress, fetchingUpdate(kind))
			raw, err := svc.TopItems(ctx, token, kind, timeRange)
			results[i] = fetchResult{raw: raw, err: err}
		}(i, kind)
	}
	wg.Wait()

	var errs []error
	for i, res := range results {
		if res.err != nil {
			sendProgress(progress, fetchFailedUpdate(kinds[i], res.err))
			errs = append(errs, res.err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	profile := &Profile{Tracks: results[0].raw, Artists: results[1].raw}

	var tracks services.Paging[services.SpotifyTrack]
	if err := json.Unmarshal(profile.Tracks, &tracks); err != nil {
		return nil, fmt.Errorf("%w: top tracks: %v", shared.ErrInvalidUpstreamJSON, err)
	}
	var artists services.Paging[services.SpotifyArtist]
	if err := json.Unmarshal(profile.Artists, &artists); err != nil {
		return nil, fmt.Errorf("%w: top artists: %v", shared.ErrInvalidUpstreamJSON, err)
	}

	profile.TopTracks = tracks.Items
	profile.TopArtists = artists.Items
	profile.Genres = services.Genres(artists.Items)

	sendProgress(progress, fetchedUpdate(services.TopTracksKind, len(profile.TopTracks)))
	sendProgress(progress, fetchedUpdate(services.TopArtistsKind, len(profile.TopArtists)))

	return profile, nil
}

// ShareProfile fetches the user's profile and saves it into slot user of session code.
func ShareProfile(ctx context.Context, svc TopFetcher, saver SessionSaver, code, user, token, timeRange string, progress chan<- ProgressUpdate) (*Profile, error) {
	if saver == nil {
		return nil, fmt.Errorf("%w: relay client not initialized", shared.ErrServiceUnavailable)
	}
	if _, ok := models.ParseUserSlot(user); !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrInvalidUser, user)
	}

	profile, err := FetchProfile(ctx, svc, token, timeRange, progress)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, savingUpdate(code, user))
	msg, err := saver.SaveSessionData(ctx, code, user, profile.UserData())
	if err != nil {
		return profile, fmt.Errorf("failed to save profile: %w", err)
	}
	sendProgress(progress, savedUpdate(code, msg))

	return profile, nil
}
