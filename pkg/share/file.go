package share

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/heightchart/pkg/errors"
)

// FileStore keeps one JSON file per item. It backs the local server the
// CLI starts with `serve --share-store file`.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "share file store needs a directory")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create share dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) itemPath(id ItemID) (string, error) {
	if err := errors.ValidatePath(string(id) + ".json"); err != nil || filepath.Base(string(id)) != string(id) {
		return "", ErrNotFound
	}
	return filepath.Join(s.baseDir, string(id)+".json"), nil
}

func (s *FileStore) Put(ctx context.Context, item Item) error {
	path, err := s.itemPath(item.ID)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid item id %q", item.ID)
	}
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal share item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write share item: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id ItemID) (Item, error) {
	path, err := s.itemPath(id)
	if err != nil {
		return Item{}, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("read share item: %w", err)
	}

	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return Item{}, fmt.Errorf("parse share item: %w", err)
	}
	if item.IsExpired() {
		s.mu.Lock()
		os.Remove(path)
		s.mu.Unlock()
		return Item{}, ErrNotFound
	}
	return item, nil
}

// Path returns the base directory.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
