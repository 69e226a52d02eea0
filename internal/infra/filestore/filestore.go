// Package filestore persists the state tree as key-prefixed JSON blobs on
// disk, mirroring the browser local-storage layout of the frontend. One key
// holds the whole tree; writes are atomic (temp file + rename).
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"

	"go.uber.org/zap"
)

const (
	stateKey       = "appState"
	credentialsKey = "credentials"
)

// Store reads and writes namespaced JSON blobs under a directory.
type Store struct {
	dir    string
	prefix string
	logger *zap.Logger
}

// New creates the store and its directory.
func New(dir, prefix string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &Store{dir: dir, prefix: prefix, logger: logger}, nil
}

// snapshot is the persisted envelope: the state tree plus a write stamp.
type snapshot struct {
	User          domain.UserProfile    `json:"user"`
	Subscriptions []domain.Subscription `json:"subscriptions"`
	Emails        []domain.EmailSource  `json:"emails"`
	UI            domain.UIState        `json:"ui"`
	PWA           domain.PWAState       `json:"pwa"`
	LastUpdated   string                `json:"lastUpdated"`
}

// SaveState writes the whole tree as one JSON blob.
func (s *Store) SaveState(state domain.State) error {
	return s.setItem(stateKey, snapshot{
		User:          state.User,
		Subscriptions: state.Subscriptions,
		Emails:        state.Emails,
		UI:            state.UI,
		PWA:           state.PWA,
		LastUpdated:   time.Now().Format(time.RFC3339),
	})
}

// LoadState restores the tree. The second return is false when no snapshot
// exists yet.
func (s *Store) LoadState() (domain.State, bool, error) {
	var snap snapshot
	ok, err := s.getItem(stateKey, &snap)
	if err != nil || !ok {
		return domain.State{}, false, err
	}

	return domain.State{
		User:          snap.User,
		Subscriptions: snap.Subscriptions,
		Emails:        snap.Emails,
		UI:            snap.UI,
		PWA:           snap.PWA,
	}, true, nil
}

// SaveCredentials persists the demo account.
func (s *Store) SaveCredentials(creds domain.Credentials) error {
	return s.setItem(credentialsKey, creds)
}

// LoadCredentials restores the demo account, if registered.
func (s *Store) LoadCredentials() (domain.Credentials, bool, error) {
	var creds domain.Credentials
	ok, err := s.getItem(credentialsKey, &creds)
	return creds, ok, err
}

// RemoveItem deletes one key. Missing keys are not an error.
func (s *Store) RemoveItem(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) setItem(key string, value any) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	path := s.path(key)
	tmp, err := os.CreateTemp(s.dir, s.prefix+key+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	s.logger.Debug("filestore write", zap.String("key", key), zap.Int("bytes", len(raw)))
	return nil
}

func (s *Store) getItem(key string, out any) (bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, s.prefix+key+".json")
}
