// Package snapshot keeps the last successful list response of every endpoint so the
// command line can show it without a network call.
package snapshot

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when no snapshot was stored under the key.
var ErrNotFound = errors.New("no snapshot available")

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Store is a directory of snappy compressed snapshots.
type Store struct {
	dir string
}

// GetDefaultDir returns the snapshot directory under the user's cache directory.
func GetDefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "unable to locate cache directory")
	}
	return filepath.Join(cacheDir, "draze", "snapshots"), nil
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Key builds a snapshot key scoped to a role and, once known, the user logged in as
// that role.
func Key(role, userID, endpoint string) string {
	return role + "_" + userID + "_" + endpoint
}

func (s *Store) file(key string) string {
	return filepath.Join(s.dir, unsafeChars.ReplaceAllString(key, "_")+".sz")
}

// Put replaces the snapshot stored under key.
func (s *Store) Put(key string, raw []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, "unable to create snapshot directory")
	}
	path := s.file(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, snappy.Encode(nil, raw), 0o600); err != nil {
		return errors.Wrapf(err, "unable to write snapshot %s", key)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "unable to write snapshot %s", key)
	}
	return nil
}

// Get returns the snapshot stored under key and when it was taken.
func (s *Store) Get(key string) ([]byte, time.Time, error) {
	path := s.file(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, errors.Wrapf(err, "unable to read snapshot %s", key)
	}
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, time.Time{}, errors.Wrapf(err, "snapshot %s is corrupt", key)
	}
	var taken time.Time
	if fi, err := os.Stat(path); err == nil {
		taken = fi.ModTime()
	}
	return raw, taken, nil
}

// Clear removes the snapshots of role, or every snapshot when role is empty.
func (s *Store) Clear(role string) error {
	if role == "" {
		return errors.Wrap(os.RemoveAll(s.dir), "unable to clear snapshots")
	}
	files, err := filepath.Glob(filepath.Join(s.dir, unsafeChars.ReplaceAllString(role, "_")+"_*.sz"))
	if err != nil {
		return errors.Wrap(err, "unable to clear snapshots")
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "unable to remove snapshot %s", filepath.Base(f))
		}
	}
	return nil
}
