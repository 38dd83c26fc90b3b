package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/session"
	"github.com/desertthunder/resonate/internal/shared"
)

// AppOpts configures an [App].
type AppOpts struct {
	Config   shared.ServerConfig
	Spotify  services.Service
	Sessions *session.Manager
	Logger   *log.Logger
}

// App is the relay HTTP server: router, middleware stack and lifecycle.
type App struct {
	router          *BasicRouter
	http            *http.Server
	logger          *log.Logger
	shutdownTimeout time.Duration
}

// NewApp wires the middleware stack and every relay route.
func NewApp(opts AppOpts) *App {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewManager(session.NewMemoryStore(), session.ManagerOpts{Logger: opts.Logger})
	}

	router := NewBasicRouter()
	router.Use(
		Recover(opts.Logger),
		RequestID(),
		Logger(opts.Logger),
		CORS(opts.Config.AllowedOrigins),
		RateLimit(opts.Config.RateLimit, opts.Config.RateBurst),
	)

	router.Handle(http.MethodGet, "/{$}", http.HandlerFunc(index))
	router.Handle(http.MethodGet, "/health", http.HandlerFunc(health))
	if opts.Spotify != nil {
		router.Handler(NewSpotifyHandler(opts.Spotify, shared.WithLogger(opts.Logger, "handler", "spotify")))
	}
	router.Handler(NewSessionHandler(opts.Sessions, shared.WithLogger(opts.Logger, "handler", "session")))

	return &App{
		router: router,
		http: &http.Server{
			Addr:              opts.Config.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:          opts.Logger,
		shutdownTimeout: opts.Config.ShutdownTimeout(),
	}
}

// Handler returns the fully wrapped router.
func (a *App) Handler() http.Handler {
	return a.router
}

// Addr returns the configured listen address.
func (a *App) Addr() string {
	return a.http.Addr
}

// Run listens on the configured address and serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.http.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("resonate api listening", "addr", ln.Addr().String())
		errCh <- a.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("resonate api stopped cleanly")
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (a *App) Shutdown(ctx context.Context) error {
	return a.http.Shutdown(ctx)
}

func index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Resonate API running"))
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
