package services

import (
	"context"
	"encoding/json"
)

// Service defines the Spotify operations used by the HTTP relay and the CLI.
type Service interface {
	// AuthURL returns the Spotify authorize URL for the given state.
	AuthURL(state string) string

	// ExchangeCode exchanges a one-time authorization code for tokens.
	ExchangeCode(ctx context.Context, code string) (*TokenResponse, error)

	// TopItems returns the raw JSON page of the user's top tracks or artists.
	TopItems(ctx context.Context, token string, kind TopItemKind, timeRange string) (json.RawMessage, error)

	// TopTracks decodes the user's top tracks.
	TopTracks(ctx context.Context, token, timeRange string) (*Paging[SpotifyTrack], error)

	// TopArtists decodes the user's top artists.
	TopArtists(ctx context.Context, token, timeRange string) (*Paging[SpotifyArtist], error)

	// Name returns the name of the service
	Name() string
}

// TokenResponse is a typed view of the token payload returned by Spotify's token endpoint.
//
// Raw holds the endpoint's JSON body byte for byte, including fields the typed view does not name.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Body returns the upstream JSON when it was captured, otherwise the typed view encoded as JSON.
func (t *TokenResponse) Body() (json.RawMessage, error) {
	if len(t.Raw) > 0 {
		return t.Raw, nil
	}
	return json.Marshal(t)
}

// TopItemKind selects the "top items" endpoint.
type TopItemKind string

const (
	TopTracksKind  TopItemKind = "tracks"
	TopArtistsKind TopItemKind = "artists"
)

// Valid reports whether k names a known endpoint.
func (k TopItemKind) Valid() bool {
	return k == TopTracksKind || k == TopArtistsKind
}

// Time ranges accepted by the top items endpoints.
const (
	ShortTerm  = "short_term"
	MediumTerm = "medium_term"
	LongTerm   = "long_term"
)

// ValidTimeRange reports whether tr is empty (upstream default) or a known range.
func ValidTimeRange(tr string) bool {
	switch tr {
	case "", ShortTerm, MediumTerm, LongTerm:
		return true
	default:
		return false
	}
}
