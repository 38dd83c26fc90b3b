package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/resonate/internal/repositories"
	"github.com/desertthunder/resonate/internal/server"
	"github.com/desertthunder/resonate/internal/session"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve starts the HTTP relay and blocks until SIGINT/SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := *r.config
	applyServeOverrides(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Credentials.Spotify.Validate(); err != nil {
		r.logger.Warn("spotify credentials not configured, token exchange will fail", "error", err)
	}

	store, closeStore, err := r.openStore(&cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	manager := session.NewManager(store, session.ManagerOpts{
		Logger: shared.WithLogger(r.logger, "component", "sessions"),
	})

	app := server.NewApp(server.AppOpts{
		Config:   cfg.Server,
		Spotify:  r.spotify,
		Sessions: manager,
		Logger:   r.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting server", "addr", app.Addr(), "store", cfg.Session.Store)
	return app.Run(ctx)
}

func applyServeOverrides(cmd *cli.Command, cfg *shared.Config) {
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("store") {
		cfg.Session.Store = cmd.String("store")
	}
	if cmd.IsSet("db") {
		cfg.Database.Path = cmd.String("db")
	}
	if cmd.IsSet("redis-addr") {
		cfg.Redis.Addr = cmd.String("redis-addr")
	}
	if cmd.IsSet("redis-password") {
		cfg.Redis.Password = cmd.String("redis-password")
	}
}

// openStore builds the configured session store. The returned func releases its connections.
func (r *Runner) openStore(cfg *shared.Config) (session.Store, func(), error) {
	switch cfg.Session.Store {
	case shared.StoreSQLite:
		db, err := shared.OpenSessionDatabase(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session database: %w", err)
		}
		r.logger.Debug("using sqlite session store", "path", cfg.Database.Path)
		return repositories.NewSessionRepository(db), func() { db.Close() }, nil
	case shared.StoreRedis:
		client, err := shared.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		r.logger.Debug("using redis session store", "addr", cfg.Redis.Addr)
		return repositories.NewRedisSessionRepository(client), func() { client.Close() }, nil
	case shared.StoreMemory, "":
		r.logger.Debug("using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown session store %q", shared.ErrInvalidConfig, cfg.Session.Store)
	}
}
