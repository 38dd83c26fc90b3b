package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/resonate/internal/formatter"
	"github.com/desertthunder/resonate/internal/server"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// authTimeout bounds how long SpotifyAuth waits for the browser callback.
var authTimeout = 2 * time.Minute

// SpotifyAuth performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server on the redirect URI, opens the browser for user authorization and
// exchanges the returned code for tokens. The token is printed, not stored.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if err := r.config.Credentials.Spotify.Validate(); err != nil {
		return fmt.Errorf("%w (set them in config.toml or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET)", err)
	}

	token, err := r.doOAuth(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(token, true); err != nil {
			return err
		}
	} else {
		r.writePlainln("✓ Authorization successful")
		r.writePlain("Access token: %s\n", token.AccessToken)
		r.writePlain("Expires in:   %ds\n", token.ExpiresIn)
		if token.Scope != "" {
			r.writePlain("Scope:        %s\n", token.Scope)
		}
		r.writePlain("\nexport SPOTIFY_ACCESS_TOKEN=%s\n", token.AccessToken)
	}

	if cmd.Bool("no-profile") {
		return nil
	}

	profile, err := r.fetchProfile(ctx, token.AccessToken, "")
	if err != nil {
		r.logger.Warn("connected but failed to fetch profile", "error", err)
		return nil
	}
	r.writeProfileSummary(profile)
	return nil
}

// redirectURI returns the redirect URI the Spotify service was built with.
func (r *Runner) redirectURI() string {
	if s, ok := r.spotify.(interface{ RedirectURI() string }); ok {
		return s.RedirectURI()
	}
	return r.config.Credentials.Spotify.RedirectURI
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context) (*services.TokenResponse, error) {
	redirect, err := url.Parse(r.redirectURI())
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("%w: redirect URI %q", shared.ErrInvalidConfig, r.redirectURI())
	}
	if redirect.Port() == "" {
		return nil, fmt.Errorf("%w: redirect URI %q must include a port", shared.ErrInvalidConfig, r.redirectURI())
	}

	state := shared.GenerateID()
	authURL := r.spotify.AuthURL(state)

	oauthHandler := server.NewOAuthHandler(r.spotify, state, redirect.Path)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", redirect.Host)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", authTimeout)

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, authTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// topOptions reads the flags shared by the top-* commands.
func (r *Runner) topOptions(cmd *cli.Command) (token, timeRange string, format formatter.Format, err error) {
	if r.spotify == nil {
		return "", "", "", fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	token = strings.TrimSpace(cmd.String("token"))
	if token == "" {
		return "", "", "", fmt.Errorf("%w: pass --token or set SPOTIFY_ACCESS_TOKEN (see 'resonate spotify auth')", shared.ErrMissingToken)
	}

	timeRange = cmd.String("time-range")
	if !services.ValidTimeRange(timeRange) {
		return "", "", "", fmt.Errorf("%w: %q", shared.ErrInvalidTimeRange, timeRange)
	}

	format, err = formatter.ParseFormat(cmd.String("format"))
	return token, timeRange, format, err
}

// SpotifyTopTracks lists the user's top tracks.
func (r *Runner) SpotifyTopTracks(ctx context.Context, cmd *cli.Command) error {
	token, timeRange, format, err := r.topOptions(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("fetching top tracks", "time_range", timeRange)
	page, err := r.spotify.TopTracks(ctx, token, timeRange)
	if err != nil {
		return err
	}

	data, err := formatter.Tracks(page.Items, format)
	if err != nil {
		return err
	}
	return r.emit(cmd.String("output"), data)
}

// SpotifyTopArtists lists the user's top artists.
func (r *Runner) SpotifyTopArtists(ctx context.Context, cmd *cli.Command) error {
	token, timeRange, format, err := r.topOptions(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("fetching top artists", "time_range", timeRange)
	page, err := r.spotify.TopArtists(ctx, token, timeRange)
	if err != nil {
		return err
	}

	data, err := formatter.Artists(page.Items, format)
	if err != nil {
		return err
	}
	return r.emit(cmd.String("output"), data)
}

// SpotifyTopGenres lists the distinct genres of the user's top artists in first-seen order.
func (r *Runner) SpotifyTopGenres(ctx context.Context, cmd *cli.Command) error {
	token, timeRange, format, err := r.topOptions(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("fetching top genres", "time_range", timeRange)
	page, err := r.spotify.TopArtists(ctx, token, timeRange)
	if err != nil {
		return err
	}

	data, err := formatter.Genres(services.Genres(page.Items), format)
	if err != nil {
		return err
	}
	return r.emit(cmd.String("output"), data)
}

// SpotifyProfile fetches top tracks and artists concurrently and prints all three lists.
func (r *Runner) SpotifyProfile(ctx context.Context, cmd *cli.Command) error {
	token, timeRange, format, err := r.topOptions(cmd)
	if err != nil {
		return err
	}

	profile, err := r.fetchProfile(ctx, token, timeRange)
	if err != nil {
		return err
	}

	if format == formatter.JSON {
		return r.writeJSON(map[string]any{
			"tracks":  profile.TopTracks,
			"artists": profile.TopArtists,
			"genres":  profile.Genres,
		}, true)
	}

	tracks, err := formatter.Tracks(profile.TopTracks, format)
	if err != nil {
		return err
	}
	artists, err := formatter.Artists(profile.TopArtists, format)
	if err != nil {
		return err
	}
	genres, err := formatter.Genres(profile.Genres, format)
	if err != nil {
		return err
	}

	return r.writeBytes(bytes.Join([][]byte{tracks, artists, genres}, []byte("\n")))
}

func (r *Runner) fetchProfile(ctx context.Context, token, timeRange string) (*tasks.Profile, error) {
	progress, wait := r.trackProgress()
	profile, err := tasks.FetchProfile(ctx, r.spotify, token, timeRange, progress)
	wait()
	return profile, err
}

// trackProgress logs progress updates until the returned func is called.
func (r *Runner) trackProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) writeProfileSummary(p *tasks.Profile) {
	const shown = 5

	r.writePlain("\n")
	r.writePlainHeader("Top tracks")
	for i, t := range p.TopTracks[:min(shown, len(p.TopTracks))] {
		r.writePlain("%d. %s - %s\n", i+1, t.ArtistNames(), t.Name)
	}

	r.writePlain("\n")
	r.writePlainHeader("Top artists")
	for i, a := range p.TopArtists[:min(shown, len(p.TopArtists))] {
		r.writePlain("%d. %s\n", i+1, a.Name)
	}

	if len(p.Genres) > 0 {
		r.writePlain("\n")
		r.writePlainHeader("Top genres")
		r.writePlain("%s\n", strings.Join(p.Genres[:min(shown, len(p.Genres))], ", "))
	}
}

// emit writes data to path when set, otherwise to the runner's output.
func (r *Runner) emit(path string, data []byte) error {
	if path != "" {
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		r.logger.Info("output written", "path", path, "bytes", len(data))
		return r.writePlain("✓ Wrote %s\n", path)
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return r.writeBytes(data)
}
