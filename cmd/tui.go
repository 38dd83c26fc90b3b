package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/resonate-tui.log"

// TUI launches the interactive browser for top tracks, artists and genres.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	token := strings.TrimSpace(cmd.String("token"))
	if token == "" {
		return fmt.Errorf("%w: pass --token or set SPOTIFY_ACCESS_TOKEN", shared.ErrMissingToken)
	}
	timeRange := cmd.String("time-range")
	if !services.ValidTimeRange(timeRange) {
		return fmt.Errorf("%w: %q", shared.ErrInvalidTimeRange, timeRange)
	}

	// Logs would tear the alt screen, so they go to a file.
	logFile, err := openLogFile(tuiLogPath)
	if err != nil {
		r.logger.Warn("failed to open TUI log file, discarding logs", "error", err)
		r.SetLogger(shared.NewLogger(io.Discard))
	} else {
		defer logFile.Close()
		r.SetLogger(shared.NewLogger(logFile))
	}

	opts := ui.Options{Fetcher: r.spotify, Token: token, TimeRange: timeRange}
	if r.api != nil {
		opts.Saver = r.api
	}

	p := tea.NewProgram(ui.NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
