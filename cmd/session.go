package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/resonate/internal/formatter"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
	"github.com/desertthunder/resonate/internal/ui"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireAPI() error {
	if r.api == nil {
		return fmt.Errorf("%w: relay client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// SessionCreate creates a session on the server and prints its code.
func (r *Runner) SessionCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}

	code, err := r.api.CreateSession(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("session created", "code", code, "server", r.api.BaseURL())
	r.writePlain("%s\n", ui.Success("✓ Session created: "+code))
	r.writePlain("Share this code, then run: resonate session save %s --user userA\n", code)
	return nil
}

// SessionJoin checks that a session exists on the server.
func (r *Runner) SessionJoin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}
	code, err := requireArg(cmd, "code")
	if err != nil {
		return err
	}

	msg, err := r.api.JoinSession(ctx, strings.TrimSpace(code))
	if err != nil {
		return err
	}

	r.writePlain("✓ %s: %s\n", msg, code)
	return nil
}

// SessionSave fetches the user's top tracks and artists and saves them into a session slot.
func (r *Runner) SessionSave(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}
	code, err := requireArg(cmd, "code")
	if err != nil {
		return err
	}

	user := cmd.String("user")
	if _, ok := models.ParseUserSlot(user); !ok {
		return fmt.Errorf("%w: %q (want userA or userB)", shared.ErrInvalidUser, user)
	}

	token := strings.TrimSpace(cmd.String("token"))
	if token == "" {
		return fmt.Errorf("%w: pass --token or set SPOTIFY_ACCESS_TOKEN", shared.ErrMissingToken)
	}
	timeRange := cmd.String("time-range")
	if !services.ValidTimeRange(timeRange) {
		return fmt.Errorf("%w: %q", shared.ErrInvalidTimeRange, timeRange)
	}

	progress, wait := r.trackProgress()
	profile, err := tasks.ShareProfile(ctx, r.spotify, r.api, code, user, token, timeRange, progress)
	wait()
	if err != nil {
		return err
	}

	r.writePlain("✓ Saved %d tracks and %d artists to %s as %s\n",
		len(profile.TopTracks), len(profile.TopArtists), code, user)
	return nil
}

// SessionShow prints a session and the state of its slots.
func (r *Runner) SessionShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}
	code, err := requireArg(cmd, "code")
	if err != nil {
		return err
	}

	sess, err := r.api.GetSession(ctx, code)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(sess, true)
	}

	r.writePlainHeader("Session " + sess.Code)
	r.writePlain("Created: %s\n", sess.CreatedAt.Local().Format(time.DateTime))
	r.writePlain("Updated: %s\n", sess.UpdatedAt.Local().Format(time.DateTime))
	for _, user := range []models.UserSlot{models.UserA, models.UserB} {
		r.writePlain("%s:   %s\n", user, slotSummary(sess.Slot(user)))
	}
	if sess.Complete() {
		r.writePlain("\nBoth slots saved. Run: resonate session compare %s\n", sess.Code)
	}
	return nil
}

// slotSummary describes a slot as "empty" or with its item counts when the payloads are Spotify pages or arrays.
func slotSummary(d *models.UserData) string {
	if d == nil {
		return "empty"
	}
	return fmt.Sprintf("saved (%s tracks, %s artists)", itemCount(d.Tracks), itemCount(d.Artists))
}

func itemCount(raw json.RawMessage) string {
	var page struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &page); err == nil && page.Items != nil {
		return fmt.Sprint(len(page.Items))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return fmt.Sprint(len(items))
	}
	return "?"
}

// SessionCompare prints the comparison of a complete session.
func (r *Runner) SessionCompare(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}
	code, err := requireArg(cmd, "code")
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	raw, err := r.api.CompareSession(ctx, code)
	if err != nil {
		return err
	}

	var comparison tasks.Comparison
	if err := json.Unmarshal(raw, &comparison); err != nil {
		return fmt.Errorf("failed to decode comparison: %w", err)
	}

	data, err := formatter.Comparison(&comparison, format)
	if err != nil {
		return err
	}
	return r.emit("", data)
}
