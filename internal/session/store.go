package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"
)

// DefaultStoreFile is the default name of the session file
const DefaultStoreFile = "sessions.yaml"

// Entry is the stored credential of one role.
type Entry struct {
	// Key is the storage key the web dashboards use for this role.
	Key        string    `yaml:"key"`
	Token      string    `yaml:"token"`
	UserID     string    `yaml:"user_id,omitempty"`
	LoggedInAt time.Time `yaml:"logged_in_at"`
}

// Expiry returns the exp claim of a JWT token. Tokens that are not JWTs, or carry no
// exp claim, never expire on the client side.
func (e Entry) Expiry() (time.Time, bool) {
	return TokenExpiry(e.Token)
}

type storeFile struct {
	Sessions map[Role]Entry `yaml:"sessions"`
}

// Store holds the role credentials on disk. Writes happen only at login, logout and
// when a user id is cached; reads may happen from any goroutine.
type Store struct {
	mu      sync.RWMutex
	path    string
	entries map[Role]Entry
}

// GetDefaultStorePath returns the default path for the session file, next to the CLI
// config.
func GetDefaultStorePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "draze", DefaultStoreFile), nil
}

// Open loads the store at path. A missing file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[Role]Entry),
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, ErrStoreIO.Err(err)
	}
	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, ErrStoreIO.MsgErr("unable to parse session file", err)
	}
	for role, e := range f.Sessions {
		if _, err := ParseRole(string(role)); err != nil {
			continue
		}
		s.entries[role] = e
	}
	return s, nil
}

// NewMemoryStore returns a store that is never written to disk.
func NewMemoryStore() *Store {
	return &Store{entries: make(map[Role]Entry)}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(role Role) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[role]
	return e, ok
}

// Token returns the bearer token of role. It fails with ErrNotAuthenticated when no
// token is stored and ErrTokenExpired when the token's exp claim is in the past.
func (s *Store) Token(role Role, now time.Time) (string, error) {
	e, ok := s.Get(role)
	if !ok || e.Token == "" {
		return "", ErrNotAuthenticated
	}
	if exp, ok := e.Expiry(); ok && !now.Before(exp) {
		return "", ErrTokenExpired
	}
	return e.Token, nil
}

// Put stores a new token for role, dropping any cached user id, and persists the store.
func (s *Store) Put(role Role, token string, now time.Time) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	s.entries[role] = Entry{
		Key:        role.StorageKey(),
		Token:      token,
		LoggedInAt: now.UTC(),
	}
	s.mu.Unlock()
	return s.Save()
}

// Delete removes role's credential (logout).
func (s *Store) Delete(role Role) error {
	s.mu.Lock()
	_, ok := s.entries[role]
	delete(s.entries, role)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Save()
}

func (s *Store) SetUserID(role Role, id string) error {
	s.mu.Lock()
	e, ok := s.entries[role]
	if !ok {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	e.UserID = id
	s.entries[role] = e
	s.mu.Unlock()
	return s.Save()
}

// Roles returns the roles with a stored credential.
func (s *Store) Roles() []Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var roles []Role
	for _, r := range allRoles {
		if _, ok := s.entries[r]; ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// Save writes the store to its file with owner-only permissions.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	data, err := yaml.Marshal(storeFile{Sessions: s.entries})
	s.mu.RUnlock()
	if err != nil {
		return ErrStoreIO.MsgErr("unable to encode sessions", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return ErrStoreIO.Err(err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return ErrStoreIO.Err(err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return ErrStoreIO.Err(err)
	}
	return nil
}

// TokenExpiry reads the exp claim without verifying the signature; verification is the
// server's job and the token is otherwise treated as opaque.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
