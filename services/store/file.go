package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/logger"
	crawlerrors "sjsage522/menufinder/pkg/errors"
)

// FileStore keeps recipes in a flat JSON file
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the cache file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the cache file
func (s *FileStore) Load(ctx context.Context) ([]crawler.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, crawlerrors.NewStore("file", "failed to read "+s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNotFound
	}

	var recipes []crawler.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, crawlerrors.NewStore("file", "failed to decode "+s.path, err)
	}
	return recipes, nil
}

// Save writes the recipes to a temp file and renames it over the cache file
func (s *FileStore) Save(ctx context.Context, recipes []crawler.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipes == nil {
		recipes = []crawler.Recipe{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(recipes); err != nil {
		return crawlerrors.NewStore("file", "failed to encode recipes", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return crawlerrors.NewStore("file", "failed to create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return crawlerrors.NewStore("file", "failed to write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return crawlerrors.NewStore("file", "failed to close temp file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return crawlerrors.NewStore("file", "failed to replace "+s.path, err)
	}

	logger.ForStore().Debug().Str("path", s.path).Int("recipes", len(recipes)).Msg("Saved recipe cache")
	return nil
}

// Clear deletes the cache file
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return crawlerrors.NewStore("file", "failed to remove "+s.path, err)
	}
	return nil
}

// Close is a no-op for the file store
func (s *FileStore) Close() error {
	return nil
}
