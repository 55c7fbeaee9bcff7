package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"notes-app/src/domain"
)

// ErrNoSession is returned when nobody is logged in
var ErrNoSession = errors.New("not logged in")

// Session is the authenticated state of one user against one server.
// It only comes from a successful login or registration.
type Session struct {
	ServerURL string            `json:"serverUrl"`
	Token     string            `json:"token"`
	User      domain.PublicUser `json:"user"`
	CreatedAt time.Time         `json:"createdAt"`
}

// SessionStore persists a session between CLI invocations
type SessionStore struct {
	path string
}

// NewSessionStore stores the session in a JSON file at path
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath ~/.config/notectl/session.json
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "notectl", "session.json"), nil
}

// Path returns the file backing the store
func (s *SessionStore) Path() string {
	return s.path
}

// Load reads the saved session; ErrNoSession when there is none
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", s.path, err)
	}
	if session.Token == "" {
		return nil, ErrNoSession
	}
	return &session, nil
}

// Save writes the session readable by the current user only
func (s *SessionStore) Save(session *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Clear destroys the saved session. Clearing twice is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
