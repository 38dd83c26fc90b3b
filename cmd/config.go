package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
			Sources: cli.EnvVars("RESONATE_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "spotify-client-id",
			Usage:   "Spotify application client ID",
			Sources: cli.EnvVars("SPOTIFY_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:    "spotify-client-secret",
			Usage:   "Spotify application client secret",
			Sources: cli.EnvVars("SPOTIFY_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:    "spotify-redirect-uri",
			Usage:   "Redirect URI registered with the Spotify application",
			Sources: cli.EnvVars("SPOTIFY_REDIRECT_URI"),
		},
		&cli.StringFlag{
			Name:    "server",
			Usage:   "Base URL of a running resonate server (default: http://<server.host>:<server.port>)",
			Sources: cli.EnvVars("RESONATE_SERVER"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// Load reads the configuration, applies flag and environment overrides and builds the services.
//
// A missing or unreadable config file falls back to the embedded defaults.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")

	config, err := shared.LoadConfigOrDefault(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		config = shared.DefaultConfig()
	}

	applySpotifyOverrides(cmd, &config.Credentials.Spotify)

	level := shared.ParseLogLevel(config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	r.config = config
	r.spotify = services.NewSpotifyServiceFromConfig(config.Credentials.Spotify)
	r.api = services.NewAPIService(serverURL(cmd.String("server"), config.Server), r.httpClient)

	r.logger.Debug("configuration loaded", "path", path, "store", config.Session.Store, "server", r.api.BaseURL())
	return ctx, nil
}

func applySpotifyOverrides(cmd *cli.Command, spotify *shared.SpotifyConfig) {
	if cmd.IsSet("spotify-client-id") {
		spotify.ClientID = cmd.String("spotify-client-id")
	}
	if cmd.IsSet("spotify-client-secret") {
		spotify.ClientSecret = cmd.String("spotify-client-secret")
	}
	if cmd.IsSet("spotify-redirect-uri") {
		spotify.RedirectURI = cmd.String("spotify-redirect-uri")
	}
}

// serverURL returns explicit when set, otherwise an address reachable from this host for cfg.
func serverURL(explicit string, cfg shared.ServerConfig) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}

	host := cfg.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Port)
}
