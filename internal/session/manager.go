package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
)

const defaultCreateAttempts = 8

// SlotSaver is implemented by stores that can replace a single slot atomically.
//
// When the configured [Store] does not implement it, the [Manager] falls back to get-modify-update
// serialised by its own mutex.
type SlotSaver interface {
	SaveSlot(ctx context.Context, code string, user models.UserSlot, data *models.UserData) error
}

// ManagerOpts configures a [Manager].
type ManagerOpts struct {
	Generator   CodeGenerator // defaults to [GenerateCode]
	MaxAttempts int           // code draws per CreateSession, defaults to 8
	Logger      *log.Logger
}

// Manager implements create/join/save on top of an injected [Store].
type Manager struct {
	store       Store
	generate    CodeGenerator
	maxAttempts int
	logger      *log.Logger
	mu          sync.Mutex
}

// NewManager creates a [Manager] backed by store.
func NewManager(store Store, opts ManagerOpts) *Manager {
	if opts.Generator == nil {
		opts.Generator = GenerateCode
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultCreateAttempts
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Manager{
		store:       store,
		generate:    opts.Generator,
		maxAttempts: opts.MaxAttempts,
		logger:      opts.Logger,
	}
}

// CreateSession stores a new session with both slots empty and returns its code.
//
// A code that is already live is never overwritten; a new one is drawn instead.
func (m *Manager) CreateSession(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		code, err := m.generate()
		if err != nil {
			return "", err
		}

		err = m.store.Create(ctx, models.NewSession(code))
		if err == nil {
			m.logger.Debug("session created", "code", code, "attempt", attempt)
			return code, nil
		}

		if !errors.Is(err, shared.ErrSessionExists) {
			return "", fmt.Errorf("failed to create session: %w", err)
		}

		m.logger.Warn("session code collision", "code", code, "attempt", attempt)
	}

	return "", fmt.Errorf("%w: no free code after %d attempts", shared.ErrSessionExists, m.maxAttempts)
}

// JoinSession returns code when the session exists. It does not claim a slot.
func (m *Manager) JoinSession(ctx context.Context, code string) (string, error) {
	if _, err := m.store.Get(ctx, code); err != nil {
		return "", err
	}
	return code, nil
}

// GetSession returns the stored session for code.
func (m *Manager) GetSession(ctx context.Context, code string) (*models.Session, error) {
	return m.store.Get(ctx, code)
}

// SaveSessionData replaces user's slot in the session with the given tracks and artists.
//
// Unknown sessions fail with [shared.ErrSessionNotFound] before the user is checked;
// users other than "userA" and "userB" fail with [shared.ErrInvalidUser].
func (m *Manager) SaveSessionData(ctx context.Context, code, user string, data models.UserData) error {
	if _, err := m.store.Get(ctx, code); err != nil {
		return err
	}

	slot, ok := models.ParseUserSlot(user)
	if !ok {
		return fmt.Errorf("%w: %q", shared.ErrInvalidUser, user)
	}

	if saver, ok := m.store.(SlotSaver); ok {
		return saver.SaveSlot(ctx, code, slot, &data)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.store.Get(ctx, code)
	if err != nil {
		return err
	}
	if err := sess.SetSlot(slot, &data); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidUser, err)
	}
	return m.store.Update(ctx, sess)
}

// CompareSession compares the two saved slots of a complete session.
func (m *Manager) CompareSession(ctx context.Context, code string) (*tasks.Comparison, error) {
	sess, err := m.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	if !sess.Complete() {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionIncomplete, code)
	}

	return tasks.Compare(sess.UserA, sess.UserB)
}

// DeleteSession removes the session. Deleting an unknown code is not an error.
func (m *Manager) DeleteSession(ctx context.Context, code string) error {
	return m.store.Delete(ctx, code)
}
