// submodule cmd contains command definitions
package main

import (
	"fmt"

	"github.com/desertthunder/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "token",
		Aliases: []string{"t"},
		Usage:   "Spotify access token",
		Sources: cli.EnvVars("SPOTIFY_ACCESS_TOKEN"),
	}
}

func timeRangeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "time-range",
		Usage: "Affinity window: short_term, medium_term or long_term",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, markdown, csv or json",
		Value:   "text",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write output to a file instead of stdout",
	}
}

// serveCommand starts the HTTP relay
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the resonate API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				Sources: cli.EnvVars("RESONATE_PORT", "PORT"),
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Session store: memory, sqlite or redis",
				Sources: cli.EnvVars("RESONATE_SESSION_STORE"),
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "SQLite database path for the sqlite store",
				Sources: cli.EnvVars("RESONATE_DATABASE"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the redis store",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
		},
		Action: r.Serve,
	}
}

// setupCommand writes a config file and prepares the session database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml (if missing) and run database migrations",
		Action: r.Setup,
	}
}

// migrateCommand manages the session database schema
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply, roll back or inspect database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration",
			},
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Show applied and pending migrations",
			},
		},
		Action: r.Migrate,
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	topFlags := func() []cli.Flag {
		return []cli.Flag{tokenFlag(), timeRangeFlag(), formatFlag(), outputFlag()}
	}

	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify account and top items",
		Commands: []*cli.Command{
			{
				Name:  "auth",
				Usage: "Connect a Spotify account using OAuth2 and print the token",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full token response as JSON",
					},
					&cli.BoolFlag{
						Name:  "no-profile",
						Usage: "Skip fetching top tracks and artists after connecting",
					},
				},
				Action: r.SpotifyAuth,
			},
			{
				Name:   "top-tracks",
				Usage:  "List your top tracks",
				Flags:  topFlags(),
				Action: r.SpotifyTopTracks,
			},
			{
				Name:   "top-artists",
				Usage:  "List your top artists",
				Flags:  topFlags(),
				Action: r.SpotifyTopArtists,
			},
			{
				Name:   "top-genres",
				Usage:  "List genres derived from your top artists",
				Flags:  topFlags(),
				Action: r.SpotifyTopGenres,
			},
			{
				Name:   "profile",
				Usage:  "Fetch top tracks and artists concurrently",
				Flags:  []cli.Flag{tokenFlag(), timeRangeFlag(), formatFlag()},
				Action: r.SpotifyProfile,
			},
		},
	}
}

// sessionCommand drives the session endpoints of a running server
func sessionCommand(r *Runner) *cli.Command {
	codeArg := []cli.Argument{&cli.StringArg{Name: "code"}}

	return &cli.Command{
		Name:  "session",
		Usage: "Create, join and compare sessions on a resonate server",
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Create a new session and print its code",
				Action: r.SessionCreate,
			},
			{
				Name:      "join",
				Usage:     "Join an existing session",
				Arguments: codeArg,
				Action:    r.SessionJoin,
			},
			{
				Name:      "save",
				Usage:     "Fetch your top tracks and artists and save them into a session slot",
				Arguments: codeArg,
				Flags: []cli.Flag{
					tokenFlag(),
					timeRangeFlag(),
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Slot to save into: userA or userB",
						Value:   "userA",
					},
				},
				Action: r.SessionSave,
			},
			{
				Name:      "show",
				Usage:     "Show a session and its slots",
				Arguments: codeArg,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SessionShow,
			},
			{
				Name:      "compare",
				Usage:     "Compare the two saved profiles of a session",
				Arguments: codeArg,
				Flags:     []cli.Flag{formatFlag()},
				Action:    r.SessionCompare,
			},
		},
	}
}

// apiCommand handles direct calls to a resonate server
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to a resonate server",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET request",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Compact JSON output",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON body to send",
						Value:   "{}",
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand launches the interactive browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse your top tracks, artists and genres and share them to a session",
		Flags:  []cli.Flag{tokenFlag(), timeRangeFlag()},
		Action: r.TUI,
	}
}

// requireArg returns the named positional argument or ErrMissingArgument.
func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.StringArg(name)
	if v == "" {
		return "", fmt.Errorf("%w: <%s>", shared.ErrMissingArgument, name)
	}
	return v, nil
}
