// package models defines the data model for the Resonate session relay
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// UserSlot names one of the two parties in a [Session].
type UserSlot string

const (
	UserA UserSlot = "userA"
	UserB UserSlot = "userB"
)

// ParseUserSlot returns the slot for s, which must be exactly "userA" or "userB".
func ParseUserSlot(s string) (UserSlot, bool) {
	switch UserSlot(s) {
	case UserA, UserB:
		return UserSlot(s), true
	default:
		return "", false
	}
}

// UserData is the per-user payload saved into a session slot.
//
// Tracks and Artists are whatever the client sent, kept as raw JSON.
type UserData struct {
	Tracks  json.RawMessage `json:"tracks"`
	Artists json.RawMessage `json:"artists"`
}

// Session pairs two users under a short shared code.
type Session struct {
	Code      string    `json:"sessionId"`
	UserA     *UserData `json:"userA"`
	UserB     *UserData `json:"userB"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSession returns an empty session for code with both slots unset.
func NewSession(code string) *Session {
	now := time.Now().UTC()
	return &Session{Code: code, CreatedAt: now, UpdatedAt: now}
}

// Slot returns the data stored for user, or nil when the slot is empty.
func (s *Session) Slot(user UserSlot) *UserData {
	switch user {
	case UserA:
		return s.UserA
	case UserB:
		return s.UserB
	default:
		return nil
	}
}

// SetSlot replaces the data for user and bumps UpdatedAt. The other slot is untouched.
func (s *Session) SetSlot(user UserSlot, data *UserData) error {
	switch user {
	case UserA:
		s.UserA = data
	case UserB:
		s.UserB = data
	default:
		return fmt.Errorf("unknown user slot %q", user)
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete reports whether both slots are populated.
func (s *Session) Complete() bool {
	return s.UserA != nil && s.UserB != nil
}

// Clone returns a copy of d that shares no memory with it.
func (d *UserData) Clone() *UserData {
	if d == nil {
		return nil
	}
	return &UserData{Tracks: bytes.Clone(d.Tracks), Artists: bytes.Clone(d.Artists)}
}

// Clone returns a deep copy of s, slots included.
func (s *Session) Clone() *Session {
	c := *s
	c.UserA = s.UserA.Clone()
	c.UserB = s.UserB.Clone()
	return &c
}

// Validate checks the session code is present.
func (s *Session) Validate() error {
	if s.Code == "" {
		return fmt.Errorf("session code is required")
	}
	return nil
}
