// Spotify Web API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/resonate/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// TopItemsLimit is the fixed page size requested from the top items endpoints.
	TopItemsLimit = 10

	defaultRedirectURI = "http://127.0.0.1:5173/callback"
)

// Scopes requested during authorization.
var Scopes = []string{"user-top-read"}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genres     []string       `json:"genres"`
	Images     []SpotifyImage `json:"images"`
	Popularity int            `json:"popularity"`
	URI        string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// ArtistNames joins the names of the track's artists with ", ".
func (t SpotifyTrack) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Paging is Spotify's paging object.
type Paging[T any] struct {
	Href     string  `json:"href"`
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// SpotifyOpts configures a [SpotifyService]. Endpoint overrides exist for tests.
type SpotifyOpts struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	HTTPClient   *http.Client
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
}

// SpotifyService implements the [Service] interface for Spotify API interactions.
// Uses [oauth2] for the code exchange and to attach caller-supplied bearer tokens.
type SpotifyService struct {
	config     *oauth2.Config
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service. Client credentials may be empty, in which case
// only the resource proxy is usable and [SpotifyService.ExchangeCode] fails with [shared.ErrMissingCredentials].
func NewSpotifyService(opts SpotifyOpts) *SpotifyService {
	if opts.RedirectURI == "" {
		opts.RedirectURI = defaultRedirectURI
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.AuthURL == "" {
		opts.AuthURL = spotifyAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = spotifyBaseURL
	}

	config := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   opts.AuthURL,
			TokenURL:  opts.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return &SpotifyService{
		config:     config,
		baseURL:    strings.TrimRight(opts.APIBaseURL, "/"),
		httpClient: opts.HTTPClient,
	}
}

// NewSpotifyServiceFromConfig builds a service from the [shared.SpotifyConfig] section.
func NewSpotifyServiceFromConfig(cfg shared.SpotifyConfig) *SpotifyService {
	return NewSpotifyService(SpotifyOpts{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		HTTPClient:   &http.Client{Timeout: cfg.Timeout()},
	})
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// RedirectURI returns the redirect URI registered for the exchange.
func (s *SpotifyService) RedirectURI() string {
	return s.config.RedirectURL
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// WithRedirectURI returns a copy of the service that exchanges codes against redirectURI.
//
// The CLI uses this to point the flow at its temporary callback server.
func (s *SpotifyService) WithRedirectURI(redirectURI string) *SpotifyService {
	config := *s.config
	config.RedirectURL = redirectURI
	return &SpotifyService{config: &config, baseURL: s.baseURL, httpClient: s.httpClient}
}

// clientContext carries the configured HTTP client into oauth2 calls.
func (s *SpotifyService) clientContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	if s.httpClient.Timeout > 0 {
		return context.WithTimeout(ctx, s.httpClient.Timeout)
	}
	return context.WithCancel(ctx)
}

// bodyRecorder keeps a copy of the last response body it relays.
type bodyRecorder struct {
	base http.RoundTripper
	body []byte
}

func (b *bodyRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := b.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	b.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// recordingClient returns a copy of the configured client whose transport records response bodies.
func (s *SpotifyService) recordingClient() (*http.Client, *bodyRecorder) {
	base := s.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	recorder := &bodyRecorder{base: base}

	client := *s.httpClient
	client.Transport = recorder
	return &client, recorder
}

// ExchangeCode performs a single authorization_code grant against the token endpoint using HTTP Basic
// client credentials. An empty code is rejected before any network call.
//
// The returned [TokenResponse] carries the endpoint's JSON body unchanged in Raw.
func (s *SpotifyService) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.ErrMissingCode
	}
	if s.config.ClientID == "" || s.config.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client credentials are not configured", shared.ErrMissingCredentials)
	}

	client, recorder := s.recordingClient()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	if client.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.Timeout)
		defer cancel()
	}

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		ue := &UpstreamError{Kind: shared.ErrUpstream, Op: "token exchange", Err: err}

		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			if re.Response != nil {
				ue.StatusCode = re.Response.StatusCode
			}
			ue.Body = string(re.Body)
			ue.Code = re.ErrorCode
			ue.Description = re.ErrorDescription
		}
		return nil, ue
	}

	resp := newTokenResponse(token)
	if json.Valid(recorder.body) {
		resp.Raw = json.RawMessage(recorder.body)
	}
	return resp, nil
}

// newTokenResponse rebuilds the token endpoint payload from an [oauth2.Token].
func newTokenResponse(token *oauth2.Token) *TokenResponse {
	resp := &TokenResponse{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    token.ExpiresIn,
	}

	if scope, ok := token.Extra("scope").(string); ok {
		resp.Scope = scope
	}

	if resp.ExpiresIn == 0 {
		switch v := token.Extra("expires_in").(type) {
		case float64:
			resp.ExpiresIn = int64(v)
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				resp.ExpiresIn = n
			}
		}
	}

	return resp
}

// TopItems fetches one page (limit [TopItemsLimit]) of the user's top tracks or artists and returns the body
// unchanged. The token is attached as a bearer credential; a blank token is rejected before any network call.
func (s *SpotifyService) TopItems(ctx context.Context, token string, kind TopItemKind, timeRange string) (json.RawMessage, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, shared.ErrMissingToken
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown top item kind %q", shared.ErrInvalidArgument, kind)
	}
	if !ValidTimeRange(timeRange) {
		return nil, fmt.Errorf("%w: %q", shared.ErrInvalidTimeRange, timeRange)
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(TopItemsLimit))
	if timeRange != "" {
		query.Set("time_range", timeRange)
	}

	op := "top " + string(kind)
	endpoint := fmt.Sprintf("%s/me/top/%s?%s", s.baseURL, kind, query.Encode())

	ctx, cancel := s.clientContext(ctx)
	defer cancel()

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Kind: shared.ErrUpstream, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Kind: shared.ErrUpstream, Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Kind: shared.ErrUpstream, Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if !json.Valid(body) {
		return nil, &UpstreamError{Kind: shared.ErrInvalidUpstreamJSON, Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return json.RawMessage(body), nil
}

// TopTracks retrieves and decodes the user's top tracks.
func (s *SpotifyService) TopTracks(ctx context.Context, token, timeRange string) (*Paging[SpotifyTrack], error) {
	return decodeTopItems[SpotifyTrack](ctx, s, token, TopTracksKind, timeRange)
}

// TopArtists retrieves and decodes the user's top artists.
func (s *SpotifyService) TopArtists(ctx context.Context, token, timeRange string) (*Paging[SpotifyArtist], error) {
	return decodeTopItems[SpotifyArtist](ctx, s, token, TopArtistsKind, timeRange)
}

func decodeTopItems[T any](ctx context.Context, s *SpotifyService, token string, kind TopItemKind, timeRange string) (*Paging[T], error) {
	raw, err := s.TopItems(ctx, token, kind, timeRange)
	if err != nil {
		return nil, err
	}

	var page Paging[T]
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, &UpstreamError{Kind: shared.ErrInvalidUpstreamJSON, Op: "top " + string(kind), Err: err}
	}
	return &page, nil
}

// Genres flattens the artists' genre lists into a de-duplicated list, keeping first-seen order.
func Genres(artists []SpotifyArtist) []string {
	seen := make(map[string]bool)
	genres := []string{}
	for _, a := range artists {
		for _, g := range a.Genres {
			if g == "" || seen[g] {
				continue
			}
			seen[g] = true
			genres = append(genres, g)
		}
	}
	return genres
}
