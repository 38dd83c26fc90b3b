package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/resonate/internal/server"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/session"
	"github.com/desertthunder/resonate/internal/shared"
	tu "github.com/desertthunder/resonate/internal/testing"
	"github.com/urfave/cli/v3"
)

// testEnv is a runner wired to a fake Spotify and a live relay backed by an in-memory store.
type testEnv struct {
	runner  *Runner
	output  *bytes.Buffer
	fake    *tu.FakeSpotify
	relay   *httptest.Server
	manager *session.Manager
}

func newTestEnv(t *testing.T, codes ...string) *testEnv {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	fake := tu.NewFakeSpotify(t)

	spotify := services.NewSpotifyService(services.SpotifyOpts{
		ClientID:     fake.ClientID,
		ClientSecret: fake.ClientSecret,
		RedirectURI:  "http://127.0.0.1:5173/callback",
		AuthURL:      fake.AuthURL(),
		TokenURL:     fake.TokenURL(),
		APIBaseURL:   fake.APIBaseURL(),
		HTTPClient:   &http.Client{Timeout: 5 * time.Second},
	})

	opts := session.ManagerOpts{Logger: logger}
	if len(codes) > 0 {
		i := 0
		opts.Generator = func() (string, error) {
			code := codes[i%len(codes)]
			i++
			return code, nil
		}
	}
	manager := session.NewManager(session.NewMemoryStore(), opts)

	app := server.NewApp(server.AppOpts{
		Config:   shared.DefaultConfig().Server,
		Spotify:  spotify,
		Sessions: manager,
		Logger:   logger,
	})
	relay := httptest.NewServer(app.Handler())
	t.Cleanup(relay.Close)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Spotify: spotify,
		API:     services.NewAPIService(relay.URL, relay.Client()),
		Logger:  logger,
		Output:  output,
	})

	return &testEnv{runner: runner, output: output, fake: fake, relay: relay, manager: manager}
}

// run executes args against a root command built from the runner, skipping config loading.
func run(r *Runner, args ...string) error {
	app := &cli.Command{
		Name:      "resonate",
		Flags:     rootFlags(),
		Commands:  r.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return app.Run(context.Background(), append([]string{"resonate"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := services.NewAPIService("", nil)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("emit", func(t *testing.T) {
		t.Run("appends a trailing newline", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.emit("", []byte("data")); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "data\n" {
				t.Errorf("expected %q, got %q", "data\n", output.String())
			}
		})

		t.Run("writes to a file", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})
			path := filepath.Join(t.TempDir(), "out.txt")

			if err := runner.emit(path, []byte("data")); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			tu.AssertFileExists(t, path)
			if got := tu.MustReadFile(t, path); got != "data" {
				t.Errorf("expected file contents %q, got %q", "data", got)
			}
			if !strings.Contains(output.String(), "Wrote "+path) {
				t.Errorf("expected confirmation, got %q", output.String())
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		names := map[string]bool{}
		for i, cmd := range NewRunner(RunnerOpts{}).register() {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"serve", "setup", "migrate", "spotify", "session", "api", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestServerURL(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		cfg      shared.ServerConfig
		want     string
	}{
		{"explicit wins", " http://relay.example:8080 ", shared.ServerConfig{Host: "127.0.0.1", Port: 5000}, "http://relay.example:8080"},
		{"configured host", "", shared.ServerConfig{Host: "10.0.0.5", Port: 5001}, "http://10.0.0.5:5001"},
		{"wildcard host", "", shared.ServerConfig{Host: "0.0.0.0", Port: 5000}, "http://127.0.0.1:5000"},
		{"empty host", "", shared.ServerConfig{Port: 5000}, "http://127.0.0.1:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serverURL(tt.explicit, tt.cfg); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOverrides(t *testing.T) {
	t.Run("Spotify", func(t *testing.T) {
		var spotify shared.SpotifyConfig
		spotify.RedirectURI = "http://127.0.0.1:5173/callback"

		app := &cli.Command{
			Name:  "resonate",
			Flags: rootFlags(),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				applySpotifyOverrides(cmd, &spotify)
				return nil
			},
		}
		if err := app.Run(context.Background(), []string{"resonate", "--spotify-client-id", "id", "--spotify-client-secret", "secret"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if spotify.ClientID != "id" || spotify.ClientSecret != "secret" {
			t.Errorf("expected credentials from flags, got %+v", spotify)
		}
		if spotify.RedirectURI != "http://127.0.0.1:5173/callback" {
			t.Errorf("expected unset flag to keep config value, got %q", spotify.RedirectURI)
		}
	})

	t.Run("Serve", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		serve := serveCommand(NewRunner(RunnerOpts{}))
		serve.Action = func(ctx context.Context, cmd *cli.Command) error {
			applyServeOverrides(cmd, cfg)
			return nil
		}

		args := []string{"serve", "--host", "0.0.0.0", "--port", "6001", "--store", "sqlite", "--db", "/tmp/sessions.db"}
		if err := serve.Run(context.Background(), args); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 6001 {
			t.Errorf("expected listen overrides, got %s", cfg.Server.Addr())
		}
		if cfg.Session.Store != shared.StoreSQLite || cfg.Database.Path != "/tmp/sessions.db" {
			t.Errorf("expected store overrides, got %q at %q", cfg.Session.Store, cfg.Database.Path)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected overridden config to validate, got %v", err)
		}
	})
}

func TestOpenStore(t *testing.T) {
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})

	t.Run("Memory", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Session.Store = shared.StoreMemory

		store, closeStore, err := runner.openStore(cfg)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer closeStore()

		if _, ok := store.(*session.MemoryStore); !ok {
			t.Errorf("expected *session.MemoryStore, got %T", store)
		}
	})

	t.Run("SQLite", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Session.Store = shared.StoreSQLite
		cfg.Database.Path = filepath.Join(t.TempDir(), "sessions.db")

		store, closeStore, err := runner.openStore(cfg)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer closeStore()

		manager := session.NewManager(store, session.ManagerOpts{Logger: runner.logger})
		code, err := manager.CreateSession(context.Background())
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if _, err := manager.JoinSession(context.Background(), code); err != nil {
			t.Errorf("expected session to be joinable, got %v", err)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Session.Store = "etcd"

		if _, _, err := runner.openStore(cfg); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestMigrate(t *testing.T) {
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})
	runner.config.Database.Path = filepath.Join(t.TempDir(), "resonate.db")

	if err := run(runner, "migrate"); err != nil {
		t.Fatalf("expected migrations to apply, got %v", err)
	}
	if !strings.Contains(output.String(), "Migrations applied") {
		t.Errorf("expected confirmation, got %q", output.String())
	}

	output.Reset()
	if err := run(runner, "migrate", "--status"); err != nil {
		t.Fatalf("expected status to succeed, got %v", err)
	}
	if !strings.Contains(output.String(), "applied") || strings.Contains(output.String(), "pending") {
		t.Errorf("expected every migration applied, got %q", output.String())
	}

	output.Reset()
	if err := run(runner, "migrate", "--rollback"); err != nil {
		t.Fatalf("expected rollback to succeed, got %v", err)
	}
	if err := run(runner, "migrate", "--status"); err != nil {
		t.Fatalf("expected status to succeed, got %v", err)
	}
	if !strings.Contains(output.String(), "pending") {
		t.Errorf("expected a pending migration after rollback, got %q", output.String())
	}

	if err := run(runner, "migrate", "--rollback", "--status"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSpotifyCommands(t *testing.T) {
	t.Setenv("SPOTIFY_ACCESS_TOKEN", "")

	t.Run("Top Tracks", func(t *testing.T) {
		env := newTestEnv(t)

		if err := run(env.runner, "spotify", "top-tracks", "--token", "BQD-test"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := env.output.String()
		if !strings.Contains(out, "Tracks: 2") || !strings.Contains(out, "1. Artist One - Song One") {
			t.Errorf("unexpected output %q", out)
		}

		reqs := env.fake.Requests()
		if len(reqs) != 1 || reqs[0].Header.Get("Authorization") != "Bearer BQD-test" {
			t.Errorf("expected one authorized upstream call, got %d", len(reqs))
		}
	})

	t.Run("Top Artists CSV", func(t *testing.T) {
		env := newTestEnv(t)

		if err := run(env.runner, "spotify", "top-artists", "--token", "BQD-test", "--format", "csv"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(env.output.String(), "Rank,ID,Name,Genres,Popularity") {
			t.Errorf("expected CSV header, got %q", env.output.String())
		}
	})

	t.Run("Top Genres To File", func(t *testing.T) {
		env := newTestEnv(t)
		path := filepath.Join(t.TempDir(), "genres.json")

		if err := run(env.runner, "spotify", "top-genres", "--token", "BQD-test", "--format", "json", "--output", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := tu.MustReadFile(t, path)
		for _, genre := range []string{"indie rock", "shoegaze", "dream pop"} {
			if !strings.Contains(got, genre) {
				t.Errorf("expected %q in %s", genre, got)
			}
		}
		if strings.Count(got, "shoegaze") != 1 {
			t.Errorf("expected genres to be de-duplicated, got %s", got)
		}
	})

	t.Run("Profile", func(t *testing.T) {
		env := newTestEnv(t)

		if err := run(env.runner, "spotify", "profile", "--token", "BQD-test", "--format", "json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		body := tu.MustJSON(t, env.output.Bytes())
		if tracks, _ := body["tracks"].([]any); len(tracks) != 2 {
			t.Errorf("expected 2 tracks, got %v", body["tracks"])
		}
		if genres, _ := body["genres"].([]any); len(genres) != 3 {
			t.Errorf("expected 3 genres, got %v", body["genres"])
		}
	})

	t.Run("Errors", func(t *testing.T) {
		env := newTestEnv(t)

		if err := run(env.runner, "spotify", "top-tracks"); !errors.Is(err, shared.ErrMissingToken) {
			t.Errorf("expected ErrMissingToken, got %v", err)
		}
		if err := run(env.runner, "spotify", "top-tracks", "--token", "x", "--time-range", "forever"); !errors.Is(err, shared.ErrInvalidTimeRange) {
			t.Errorf("expected ErrInvalidTimeRange, got %v", err)
		}
		if err := run(env.runner, "spotify", "top-tracks", "--token", "x", "--format", "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if len(env.fake.Requests()) != 0 {
			t.Error("expected no upstream calls for rejected input")
		}

		env.fake.TopStatus = http.StatusUnauthorized
		env.fake.TopBody = `{"error":{"status":401,"message":"The access token expired"}}`
		if err := run(env.runner, "spotify", "top-tracks", "--token", "expired"); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("Auth", func(t *testing.T) {
		t.Run("requires credentials", func(t *testing.T) {
			env := newTestEnv(t)

			if err := run(env.runner, "spotify", "auth"); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("requires a redirect port", func(t *testing.T) {
			env := newTestEnv(t)
			env.runner.config.Credentials.Spotify.ClientID = "id"
			env.runner.config.Credentials.Spotify.ClientSecret = "secret"
			env.runner.spotify = services.NewSpotifyService(services.SpotifyOpts{
				ClientID:     "id",
				ClientSecret: "secret",
				RedirectURI:  "http://127.0.0.1/callback",
			})

			if err := run(env.runner, "spotify", "auth"); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})
}

func TestSessionCommands(t *testing.T) {
	t.Setenv("SPOTIFY_ACCESS_TOKEN", "")

	t.Run("Full Flow", func(t *testing.T) {
		env := newTestEnv(t, "B7K9QZ")

		if err := run(env.runner, "session", "create"); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if !strings.Contains(env.output.String(), "B7K9QZ") {
			t.Fatalf("expected code in output, got %q", env.output.String())
		}

		env.output.Reset()
		if err := run(env.runner, "session", "join", "B7K9QZ"); err != nil {
			t.Fatalf("join failed: %v", err)
		}
		if !strings.Contains(env.output.String(), "Joined session") {
			t.Errorf("expected join message, got %q", env.output.String())
		}

		for _, user := range []string{"userA", "userB"} {
			env.output.Reset()
			if err := run(env.runner, "session", "save", "B7K9QZ", "--user", user, "--token", "BQD-test"); err != nil {
				t.Fatalf("save as %s failed: %v", user, err)
			}
			if !strings.Contains(env.output.String(), "Saved 2 tracks and 2 artists") {
				t.Errorf("unexpected save output %q", env.output.String())
			}
		}

		env.output.Reset()
		if err := run(env.runner, "session", "show", "B7K9QZ"); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		out := env.output.String()
		if !strings.Contains(out, "userA:   saved (2 tracks, 2 artists)") || !strings.Contains(out, "session compare B7K9QZ") {
			t.Errorf("unexpected show output %q", out)
		}

		env.output.Reset()
		if err := run(env.runner, "session", "compare", "B7K9QZ"); err != nil {
			t.Fatalf("compare failed: %v", err)
		}
		out = env.output.String()
		if !strings.Contains(out, "Score: 100/100") || !strings.Contains(out, "Artist One - Song One") {
			t.Errorf("unexpected compare output %q", out)
		}
	})

	t.Run("Show JSON", func(t *testing.T) {
		env := newTestEnv(t, "C8L0RA")
		if err := run(env.runner, "session", "create"); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		env.output.Reset()
		if err := run(env.runner, "session", "show", "C8L0RA", "--json"); err != nil {
			t.Fatalf("show failed: %v", err)
		}

		body := tu.MustJSON(t, env.output.Bytes())
		if body["sessionId"] != "C8L0RA" || body["userA"] != nil || body["userB"] != nil {
			t.Errorf("unexpected session %v", body)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		env := newTestEnv(t, "D9M1SB")
		if err := run(env.runner, "session", "create"); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if err := run(env.runner, "session", "join"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(env.runner, "session", "join", "ZZZZZZ"); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
		if err := run(env.runner, "session", "save", "D9M1SB", "--user", "userC", "--token", "x"); !errors.Is(err, shared.ErrInvalidUser) {
			t.Errorf("expected ErrInvalidUser, got %v", err)
		}
		if err := run(env.runner, "session", "save", "D9M1SB"); !errors.Is(err, shared.ErrMissingToken) {
			t.Errorf("expected ErrMissingToken, got %v", err)
		}
		if err := run(env.runner, "session", "compare", "D9M1SB"); !errors.Is(err, shared.ErrSessionIncomplete) {
			t.Errorf("expected ErrSessionIncomplete, got %v", err)
		}
		if err := run(env.runner, "session", "compare", "D9M1SB", "--format", "csv"); !errors.Is(err, shared.ErrSessionIncomplete) {
			t.Errorf("expected the server error before formatting, got %v", err)
		}
	})

	t.Run("No Relay", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})

		if err := run(runner, "session", "create"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestSlotSummary(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"spotify page", tu.TopTracksJSON, "2"},
		{"bare array", `[{"id":"t1"}]`, "1"},
		{"null", `null`, "0"},
		{"scalar", `"tracks"`, "?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := itemCount([]byte(tt.raw)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if got := slotSummary(nil); got != "empty" {
		t.Errorf("expected empty slot, got %q", got)
	}
}

func TestAPICommands(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		env := newTestEnv(t)

		if err := run(env.runner, "api", "get", "health", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.TrimSpace(env.output.String()) != `{"status":"ok"}` {
			t.Errorf("unexpected output %q", env.output.String())
		}
	})

	t.Run("Get Text", func(t *testing.T) {
		env := newTestEnv(t)

		if err := run(env.runner, "api", "get", "/"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if env.output.String() != "Resonate API running\n" {
			t.Errorf("unexpected output %q", env.output.String())
		}
	})

	t.Run("Post", func(t *testing.T) {
		env := newTestEnv(t, "E1N2TC")

		if err := run(env.runner, "api", "post", "/api/session/create"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), `"sessionId": "E1N2TC"`) {
			t.Errorf("unexpected output %q", env.output.String())
		}
	})

	t.Run("Errors", func(t *testing.T) {
		env := newTestEnv(t)

		if err := run(env.runner, "api", "get"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(env.runner, "api", "post", "/api/session/join", "--data", "{nope"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}

		err := run(env.runner, "api", "get", "/api/nowhere")
		if !errors.Is(err, shared.ErrAPIRequest) || !strings.Contains(err.Error(), "status 404") {
			t.Errorf("expected ErrAPIRequest with status, got %v", err)
		}
	})
}

func TestTUIRequiresToken(t *testing.T) {
	t.Setenv("SPOTIFY_ACCESS_TOKEN", "")
	env := newTestEnv(t)

	if err := run(env.runner, "tui"); !errors.Is(err, shared.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}
