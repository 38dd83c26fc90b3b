package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
)

// Store defines how sessions are persisted and retrieved.
//
// Create must fail with [shared.ErrSessionExists] when the code is already stored.
// Get and Update must fail with [shared.ErrSessionNotFound] for unknown codes.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, code string) (*models.Session, error)
	Update(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, code string) error
}

// MemoryStore keeps sessions in a map guarded by a read/write mutex.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (m *MemoryStore) Create(_ context.Context, s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.Code]; ok {
		return fmt.Errorf("%w: %s", shared.ErrSessionExists, s.Code)
	}
	m.sessions[s.Code] = s.Clone()
	return nil
}

// Get returns a deep copy of the stored session; mutating it, slots included, does not affect the store.
func (m *MemoryStore) Get(_ context.Context, code string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, code)
	}
	return s.Clone(), nil
}

// Update replaces an existing session and sets its UpdatedAt.
func (m *MemoryStore) Update(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.Code]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, s.Code)
	}
	s.UpdatedAt = time.Now().UTC()
	m.sessions[s.Code] = s.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, code)
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SaveSlot replaces one slot under the store lock.
func (m *MemoryStore) SaveSlot(_ context.Context, code string, user models.UserSlot, data *models.UserData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[code]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, code)
	}
	if err := s.SetSlot(user, data.Clone()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidUser, err)
	}
	return nil
}
