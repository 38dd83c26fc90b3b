package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/mattn/go-sqlite3"
)

// SessionRepository implements session.Store for [models.Session] persistence in SQLite.
//
// Slots are stored as JSON text; an empty slot is NULL.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session. A duplicate code fails with [shared.ErrSessionExists].
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	userA, err := encodeSlot(s.UserA)
	if err != nil {
		return err
	}
	userB, err := encodeSlot(s.UserB)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (code, user_a, user_b, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query, s.Code, userA, userB, s.CreatedAt, s.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrSessionExists, s.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by code
func (r *SessionRepository) Get(ctx context.Context, code string) (*models.Session, error) {
	query := `
		SELECT code, user_a, user_b, created_at, updated_at
		FROM sessions
		WHERE code = ?
	`

	var (
		s            models.Session
		userA, userB sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, code).Scan(&s.Code, &userA, &userB, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if s.UserA, err = decodeSlot(userA); err != nil {
		return nil, err
	}
	if s.UserB, err = decodeSlot(userB); err != nil {
		return nil, err
	}

	return &s, nil
}

// Update replaces both slots of an existing session
func (r *SessionRepository) Update(ctx context.Context, s *models.Session) error {
	userA, err := encodeSlot(s.UserA)
	if err != nil {
		return err
	}
	userB, err := encodeSlot(s.UserB)
	if err != nil {
		return err
	}

	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE sessions
		SET user_a = ?, user_b = ?, updated_at = ?
		WHERE code = ?
	`

	result, err := r.db.ExecContext(ctx, query, userA, userB, s.UpdatedAt, s.Code)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return expectAffected(result, s.Code)
}

// SaveSlot replaces a single slot in one statement, leaving the other column untouched.
func (r *SessionRepository) SaveSlot(ctx context.Context, code string, user models.UserSlot, data *models.UserData) error {
	var query string
	switch user {
	case models.UserA:
		query = `UPDATE sessions SET user_a = ?, updated_at = ? WHERE code = ?`
	case models.UserB:
		query = `UPDATE sessions SET user_b = ?, updated_at = ? WHERE code = ?`
	default:
		return fmt.Errorf("%w: %q", shared.ErrInvalidUser, user)
	}

	value, err := encodeSlot(data)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, value, time.Now().UTC(), code)
	if err != nil {
		return fmt.Errorf("failed to save session slot: %w", err)
	}

	return expectAffected(result, code)
}

// Delete removes a session by code. Unknown codes are not an error.
func (r *SessionRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE code = ?`, code); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Count returns the number of stored sessions.
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

func expectAffected(result sql.Result, code string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, code)
	}
	return nil
}

func encodeSlot(d *models.UserData) (sql.NullString, error) {
	if d == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("%w: failed to encode slot: %v", shared.ErrInvalidInput, err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeSlot(v sql.NullString) (*models.UserData, error) {
	if !v.Valid {
		return nil, nil
	}
	var d models.UserData
	if err := json.Unmarshal([]byte(v.String), &d); err != nil {
		return nil, fmt.Errorf("failed to decode slot: %w", err)
	}
	return &d, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
}
