package server

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
)

// Spotify relay routes.
const (
	routeSpotifyToken      = "/api/spotify/token"
	routeSpotifyLogin      = "/api/spotify/login"
	routeSpotifyTopTracks  = "/api/spotify/top-tracks"
	routeSpotifyTopArtists = "/api/spotify/top-artists"
	routeSpotifyTopGenres  = "/api/spotify/top-genres"
)

// SpotifyHandler relays the token exchange and the top items endpoints.
type SpotifyHandler struct {
	svc    services.Service
	logger *log.Logger
}

// NewSpotifyHandler creates a [SpotifyHandler] backed by svc.
func NewSpotifyHandler(svc services.Service, logger *log.Logger) *SpotifyHandler {
	return &SpotifyHandler{svc: svc, logger: logger}
}

func (h *SpotifyHandler) Routes() []string {
	return []string{
		routeSpotifyToken,
		routeSpotifyLogin,
		routeSpotifyTopTracks,
		routeSpotifyTopArtists,
		routeSpotifyTopGenres,
	}
}

func (h *SpotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeSpotifyToken:
		if allowMethod(w, r, http.MethodPost) {
			h.token(w, r)
		}
	case routeSpotifyLogin:
		if allowMethod(w, r, http.MethodGet) {
			h.login(w, r)
		}
	case routeSpotifyTopTracks:
		if allowMethod(w, r, http.MethodGet) {
			h.topItems(w, r, services.TopTracksKind)
		}
	case routeSpotifyTopArtists:
		if allowMethod(w, r, http.MethodGet) {
			h.topItems(w, r, services.TopArtistsKind)
		}
	case routeSpotifyTopGenres:
		if allowMethod(w, r, http.MethodGet) {
			h.topGenres(w, r)
		}
	default:
		notFound(w, r)
	}
}

type tokenRequest struct {
	Code string `json:"code"`
}

// token exchanges {code} and relays the Spotify token payload verbatim.
func (h *SpotifyHandler) token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.svc.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	body, err := token.Body()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

type loginResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// login returns the authorize URL. A state is generated when the caller does not supply one.
func (h *SpotifyHandler) login(w http.ResponseWriter, r *http.Request) {
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	if state == "" {
		state = shared.GenerateID()
	}
	writeJSON(w, http.StatusOK, loginResponse{URL: h.svc.AuthURL(state), State: state})
}

// topItems proxies one top items page and writes the upstream JSON unchanged.
func (h *SpotifyHandler) topItems(w http.ResponseWriter, r *http.Request, kind services.TopItemKind) {
	body, err := h.svc.TopItems(r.Context(), bearerToken(r), kind, r.URL.Query().Get("time_range"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

type genresResponse struct {
	Genres []string `json:"genres"`
}

func (h *SpotifyHandler) topGenres(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.TopArtists(r.Context(), bearerToken(r), r.URL.Query().Get("time_range"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, genresResponse{Genres: services.Genres(page.Items)})
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
// Anything else yields an empty token.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
