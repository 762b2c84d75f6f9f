package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FileStore keeps one JSON file per session under <root>/<user>/<session>.json.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("history root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create history root: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) Load(_ context.Context, userID, sessionID string) ([]Interaction, error) {
	path, err := s.sessionPath(userID, sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Interaction{}, nil
		}
		return nil, fmt.Errorf("read session %s/%s: %w", userID, sessionID, err)
	}

	var interactions []Interaction
	if err := json.Unmarshal(data, &interactions); err != nil {
		return nil, fmt.Errorf("decode session %s/%s: %w: %v", userID, sessionID, ErrCorrupt, err)
	}
	if interactions == nil {
		interactions = []Interaction{}
	}
	return interactions, nil
}

func (s *FileStore) Save(_ context.Context, userID, sessionID string, interactions []Interaction) error {
	path, err := s.sessionPath(userID, sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create user namespace: %w", err)
	}

	if interactions == nil {
		interactions = []Interaction{}
	}
	data, err := json.MarshalIndent(interactions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s/%s: %w", userID, sessionID, err)
	}

	// Write to a sibling temp file and rename so readers never observe a
	// partially written session.
	tmp := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session %s/%s: %w", userID, sessionID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit session %s/%s: %w", userID, sessionID, err)
	}
	return nil
}

func (s *FileStore) ListSessions(_ context.Context, userID string) ([]string, error) {
	dir, err := s.userDir(userID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list sessions for %s: %w", userID, err)
	}

	sessions := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(sessions)
	return sessions, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) userDir(userID string) (string, error) {
	if err := validateKey(userID); err != nil {
		return "", fmt.Errorf("user id: %w", err)
	}
	return filepath.Join(s.root, userID), nil
}

func (s *FileStore) sessionPath(userID, sessionID string) (string, error) {
	dir, err := s.userDir(userID)
	if err != nil {
		return "", err
	}
	if err := validateKey(sessionID); err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	return filepath.Join(dir, sessionID+".json"), nil
}

// validateKey rejects ids that would escape the store root when used as a
// path component.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("must not be empty")
	}
	if key == "." || key == ".." {
		return fmt.Errorf("invalid value %q", key)
	}
	if strings.ContainsAny(key, "/\\") || strings.ContainsRune(key, os.PathSeparator) {
		return fmt.Errorf("must not contain path separators")
	}
	return nil
}
