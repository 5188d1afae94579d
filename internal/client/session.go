// Package client is a Go client for the miniblog API: an explicit session
// context persisted between runs, a typed HTTP wrapper over the REST surface,
// and an in-memory post-list container.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"miniblog/internal/domain/model"
)

// Session holds the authenticated identity for one user of the API. It is
// passed explicitly to the Client rather than living in a package global.
// The token is written to a JSON file so later invocations pick it up.
type Session struct {
	path string

	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoadSession reads a previously saved session from path. A missing file
// yields an empty (unauthenticated) session bound to that path.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	return s, nil
}

func (s *Session) Authenticated() bool {
	return s.Token != ""
}

// SetIdentity records a fresh login and persists it.
func (s *Session) SetIdentity(token string, user *model.User) error {
	s.Token = token
	s.UserID = user.ID
	s.Username = user.Username
	s.Email = user.Email
	return s.save()
}

// Clear is the logout teardown: it wipes the in-memory identity and removes
// the persisted file.
func (s *Session) Clear() error {
	s.Token = ""
	s.UserID = 0
	s.Username = ""
	s.Email = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

func (s *Session) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}
